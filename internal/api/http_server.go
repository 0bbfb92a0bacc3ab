package api

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"authpages/internal/auth"
	"authpages/internal/config"
	"authpages/internal/form"
	"authpages/internal/provider"

	"github.com/gin-gonic/gin"
)

// 单次表单提交等待认证后端的最长时间
const submitTimeout = 15 * time.Second

// HTTPHandler HTTP 请求处理器
type HTTPHandler struct {
	cfg      config.Config
	provider provider.Provider
	tokens   *auth.Manager
	pages    *template.Template
}

// NewHTTPHandler 创建 HTTP 处理器实例
func NewHTTPHandler(cfg config.Config, p provider.Provider, tokens *auth.Manager) (*HTTPHandler, error) {
	if p == nil {
		return nil, errors.New("auth provider is required")
	}
	if tokens == nil {
		return nil, errors.New("token manager is required")
	}
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	cfg.RedirectPath = normaliseRedirect(cfg.RedirectPath)
	return &HTTPHandler{
		cfg:      cfg,
		provider: p,
		tokens:   tokens,
		pages:    pages,
	}, nil
}

// RegisterRoutes 注册页面与 API 路由
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	r.SetHTMLTemplate(h.pages)
	r.Use(h.SessionMiddleware())

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	r.GET("/", h.HomePage)
	r.GET("/login", h.LoginPage)
	r.POST("/login", h.LoginSubmit)
	r.GET("/signup", h.SignupPage)
	r.POST("/signup", h.SignupSubmit)
	r.POST("/logout", h.LogoutSubmit)

	authGroup := r.Group("/api/auth")
	authGroup.POST("/login", h.Login)
	authGroup.POST("/signup", h.Signup)
	authGroup.POST("/logout", h.Logout)
	authGroup.GET("/me", h.RequireSession(), h.Me)
}

func (h *HTTPHandler) formOptions(nav form.Navigator) form.Options {
	return form.Options{
		ValidateOnChange: h.cfg.ValidateOnChange,
		SuccessPath:      h.cfg.RedirectPath,
		Navigator:        nav,
	}
}

func submitContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), submitTimeout)
}

// normaliseRedirect 只允许站内路径
func normaliseRedirect(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || !strings.HasPrefix(trimmed, "/") || strings.HasPrefix(trimmed, "//") {
		return "/"
	}
	return trimmed
}
