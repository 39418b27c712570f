package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/models"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/session"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/utils"
)

// ContextKey 用于在context中存储会话信息的键
type ContextKey string

const (
	SessionContextKey ContextKey = "session"
)

// LoginPath is where unauthenticated browsers are sent.
const LoginPath = "/login"

// SessionLoader restores the session named by the request cookie.
type SessionLoader interface {
	FromRequest(r *http.Request) (*session.Session, error)
}

// Authenticate puts the session into the request context when the cookie names a
// live one. Requests without a session pass through unchanged.
func Authenticate(loader SessionLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := loader.FromRequest(r)
			if err != nil {
				if !errors.Is(err, session.ErrNoSession) {
					fmt.Printf("⚠️  Auth middleware: failed to restore session: %v\n", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

// RequireSession 要求已登录：浏览器跳转到登录页，JSON 客户端返回 401
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s, ok := GetSessionFromContext(r.Context()); ok && s.State() == session.Authenticated {
			next.ServeHTTP(w, r)
			return
		}
		DenySession(w, r)
	})
}

// DenySession answers a request that has no usable session.
func DenySession(w http.ResponseWriter, r *http.Request) {
	if utils.WantsJSON(r) {
		utils.WriteUnauthorizedResponse(w, "Login required")
		return
	}
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

// WithSession 将会话写入context
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, SessionContextKey, s)
}

// GetSessionFromContext 从context中获取会话
func GetSessionFromContext(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(SessionContextKey).(*session.Session)
	return s, ok && s != nil
}

// GetPrincipalFromContext 从context中获取当前用户
func GetPrincipalFromContext(ctx context.Context) (*models.Principal, bool) {
	s, ok := GetSessionFromContext(ctx)
	if !ok || s.Principal == nil {
		return nil, false
	}
	return s.Principal, true
}
