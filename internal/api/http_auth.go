package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"authpages/internal/entity/dto"
	"authpages/internal/form"
	"authpages/internal/provider"
	"authpages/internal/schema"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Login 校验登录表单并通过认证后端登录
func (h *HTTPHandler) Login(c *gin.Context) {
	h.submitJSON(c, func(nav form.Navigator) *form.Controller {
		return form.NewLogin(h.provider, h.formOptions(nav))
	})
}

// Signup 校验注册表单并通过认证后端创建账户
func (h *HTTPHandler) Signup(c *gin.Context) {
	h.submitJSON(c, func(nav form.Navigator) *form.Controller {
		return form.NewSignup(h.provider, h.formOptions(nav))
	})
}

// Logout 清除会话 Cookie
func (h *HTTPHandler) Logout(c *gin.Context) {
	h.clearSession(c)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Me 返回当前会话用户; 后端支持时从数据库重新加载
func (h *HTTPHandler) Me(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	lookup, ok := h.provider.(provider.UserLookup)
	if !ok {
		c.JSON(http.StatusOK, user)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	fresh, err := lookup.User(ctx, user.ID)
	if errors.Is(err, provider.ErrUnknownUser) {
		h.clearSession(c)
		ErrorResponse(c, http.StatusUnauthorized, ErrCodeSessionExpired, "session user no longer exists")
		return
	}
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to load user profile")
		InternalError(c, "failed to load profile")
		return
	}
	c.JSON(http.StatusOK, fresh)
}

func (h *HTTPHandler) submitJSON(c *gin.Context, build func(form.Navigator) *form.Controller) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		InvalidPayload(c)
		return
	}

	var redirect string
	ctrl := build(form.NavigatorFunc(func(path string) { redirect = path }))
	bindCandidate(ctrl, body)

	ctx, cancel := submitContext(c)
	defer cancel()

	err := ctrl.Submit(ctx)
	snap := ctrl.Snapshot()

	var verrs schema.Errors
	switch {
	case err == nil:
		h.issueSession(c, snap.Session)
		c.JSON(http.StatusOK, authResponse(snap.Session, redirect))
	case errors.As(err, &verrs):
		ValidationFailed(c, verrs)
	default:
		status, code := backendFailureStatus(err)
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Warn("auth submission rejected")
		ErrorResponse(c, status, code, snap.Error)
	}
}

// bindCandidate copies the schema fields out of a decoded JSON body. Absent
// keys are stored as nil so they fail as missing rather than as empty.
func bindCandidate(ctrl *form.Controller, body map[string]any) {
	for _, field := range ctrl.Fields() {
		ctrl.SetField(field, body[field])
	}
}

// backendFailureStatus 后端明确拒绝(4xx)时透传状态码, 其余视为上游故障
func backendFailureStatus(err error) (int, string) {
	var perr *provider.Error
	if errors.As(err, &perr) && perr.Status >= 400 && perr.Status < 500 {
		return perr.Status, ErrCodeAuthFailed
	}
	return http.StatusBadGateway, ErrCodeAuthBackend
}

func authResponse(session *dto.Session, redirect string) dto.AuthResponse {
	resp := dto.AuthResponse{Redirect: redirect}
	if session != nil {
		resp.Token = session.AccessToken
		resp.ExpiresAt = session.ExpiresAt
		resp.User = session.User
	}
	return resp
}
