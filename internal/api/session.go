package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"authpages/internal/auth"
	"authpages/internal/entity/dto"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const currentUserContextKey = "current-user"

// SessionMiddleware 从 Cookie 或 Bearer Token 中解析会话; 解析失败时按匿名处理
func (h *HTTPHandler) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := h.sessionToken(c)
		if token == "" {
			c.Next()
			return
		}
		claims, err := h.tokens.ParseToken(token)
		if err != nil {
			entry := logrus.WithError(err)
			if errors.Is(err, auth.ErrUnsupportedSigningMethod) {
				// 令牌本身可能有效, 但本服务只能校验 HS256
				entry.Warn("session token uses a signing method that JWT_SECRET cannot verify")
			} else {
				entry.Debug("ignoring invalid session token")
			}
			c.Next()
			return
		}
		user := claims.Summary()
		c.Set(currentUserContextKey, &user)
		c.Next()
	}
}

// RequireSession 要求请求携带有效会话
func (h *HTTPHandler) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeSessionExpired,
				Message: "authentication required",
			})
			return
		}
		c.Next()
	}
}

func (h *HTTPHandler) sessionToken(c *gin.Context) string {
	if header := strings.TrimSpace(c.GetHeader("Authorization")); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := c.Cookie(h.cfg.SessionCookieName); err == nil {
		return cookie
	}
	return ""
}

// CurrentUser 从上下文获取当前会话用户
func CurrentUser(c *gin.Context) *dto.UserSummary {
	value, exists := c.Get(currentUserContextKey)
	if !exists {
		return nil
	}
	user, ok := value.(*dto.UserSummary)
	if !ok {
		return nil
	}
	return user
}

// issueSession 写入会话 Cookie; 需要邮件确认的注册没有令牌, 不写 Cookie
func (h *HTTPHandler) issueSession(c *gin.Context, session *dto.Session) {
	if session == nil || session.AccessToken == "" {
		return
	}
	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	if session.ExpiresAt.IsZero() || maxAge <= 0 {
		maxAge = 0
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.SessionCookieName, session.AccessToken, maxAge, "/", "", h.cfg.SessionCookieSecure, true)
}

func (h *HTTPHandler) clearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.SessionCookieName, "", -1, "/", "", h.cfg.SessionCookieSecure, true)
}
