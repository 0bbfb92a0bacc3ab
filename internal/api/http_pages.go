package api

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"authpages/internal/entity/dto"
	"authpages/internal/form"
	"authpages/internal/schema"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templatesFS embed.FS

func parsePages() (*template.Template, error) {
	return template.New("pages").ParseFS(templatesFS, "templates/*.html")
}

type pageData struct {
	Title       string
	Description string
	Form        form.Snapshot
	User        *dto.UserSummary
}

// HomePage 登录后的落地页
func (h *HTTPHandler) HomePage(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}
	c.HTML(http.StatusOK, "home.html", pageData{Title: "Home", User: user})
}

// LoginPage 渲染登录表单
func (h *HTTPHandler) LoginPage(c *gin.Context) {
	if CurrentUser(c) != nil {
		c.Redirect(http.StatusSeeOther, h.cfg.RedirectPath)
		return
	}
	ctrl := form.NewLogin(h.provider, h.formOptions(nil))
	c.HTML(http.StatusOK, "login.html", loginPage(ctrl.Snapshot()))
}

// SignupPage 渲染注册表单
func (h *HTTPHandler) SignupPage(c *gin.Context) {
	if CurrentUser(c) != nil {
		c.Redirect(http.StatusSeeOther, h.cfg.RedirectPath)
		return
	}
	ctrl := form.NewSignup(h.provider, h.formOptions(nil))
	c.HTML(http.StatusOK, "signup.html", signupPage(ctrl.Snapshot()))
}

// LoginSubmit 处理登录表单提交
func (h *HTTPHandler) LoginSubmit(c *gin.Context) {
	h.submitPage(c, "login.html", loginPage, func(nav form.Navigator) *form.Controller {
		return form.NewLogin(h.provider, h.formOptions(nav))
	})
}

// SignupSubmit 处理注册表单提交
func (h *HTTPHandler) SignupSubmit(c *gin.Context) {
	h.submitPage(c, "signup.html", signupPage, func(nav form.Navigator) *form.Controller {
		return form.NewSignup(h.provider, h.formOptions(nav))
	})
}

// LogoutSubmit 清除会话并返回登录页
func (h *HTTPHandler) LogoutSubmit(c *gin.Context) {
	h.clearSession(c)
	c.Redirect(http.StatusSeeOther, "/login")
}

func loginPage(snap form.Snapshot) pageData {
	return pageData{
		Title:       "Login to your account",
		Description: "Enter your credentials below to login to your account.",
		Form:        snap,
	}
}

func signupPage(snap form.Snapshot) pageData {
	return pageData{
		Title:       "Create an account",
		Description: "Create your account below to continue.",
		Form:        snap,
	}
}

func (h *HTTPHandler) submitPage(c *gin.Context, page string, render func(form.Snapshot) pageData, build func(form.Navigator) *form.Controller) {
	var redirect string
	ctrl := build(form.NavigatorFunc(func(path string) { redirect = path }))
	for _, field := range ctrl.Fields() {
		if value, ok := c.GetPostForm(field); ok {
			ctrl.SetField(field, value)
		} else {
			ctrl.SetField(field, nil)
		}
	}

	ctx, cancel := submitContext(c)
	defer cancel()

	err := ctrl.Submit(ctx)
	snap := ctrl.Snapshot()

	var verrs schema.Errors
	switch {
	case err == nil:
		h.issueSession(c, snap.Session)
		c.Redirect(http.StatusSeeOther, redirect)
	case errors.As(err, &verrs):
		c.HTML(http.StatusBadRequest, page, render(snap))
	default:
		status, _ := backendFailureStatus(err)
		c.HTML(status, page, render(snap))
	}
}
