// Package session keeps who is logged in. The browser holds a signed cookie with a
// session id; the principal and the backend bearer token are stored server side
// under the keys "user" and "token" of that session.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/backend"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/database"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/models"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/utils"
)

// Storage keys, namespaced by session id.
const (
	KeyUser  = "user"
	KeyToken = "token"
)

// CookieName 会话 cookie 名称
const CookieName = "tt_session"

var (
	// ErrInvalidCredentials is returned for any failed password login.
	ErrInvalidCredentials = errors.New("Invalid credentials")
	// ErrNotProvisioned is returned when the identity provider vouched for the user
	// but the backend does not know them.
	ErrNotProvisioned = errors.New("User not found in system. Please contact admin.")
	// ErrNoSession 没有有效会话
	ErrNoSession = errors.New("no active session")
)

// State 会话状态
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Session 已登录的会话
type Session struct {
	ID        string
	Principal *models.Principal
	// Token is the bearer token sent to the backend; empty when the backend
	// issued none.
	Token string
}

// State 返回会话状态
func (s *Session) State() State {
	if s == nil || s.Principal == nil {
		return Unauthenticated
	}
	return Authenticated
}

// Manager 会话管理器
type Manager struct {
	store  database.DatabaseInterface
	api    backend.API
	jwt    *utils.JWTService
	secure bool
}

// NewManager 创建会话管理器
func NewManager(store database.DatabaseInterface, api backend.API, jwt *utils.JWTService) *Manager {
	return &Manager{store: store, api: api, jwt: jwt}
}

// WithSecureCookies marks issued cookies Secure (production over https).
func (m *Manager) WithSecureCookies(secure bool) *Manager {
	m.secure = secure
	return m
}

// Login exchanges email and password for a principal.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	resp, err := m.api.Login(ctx, email, password)
	if err != nil {
		log.Printf("❌ Login failed for %s: %v", email, err)
		return nil, ErrInvalidCredentials
	}

	principal := resp.Principal
	if principal.Email == "" {
		principal.Email = email
	}
	log.Printf("✅ Login successful for %s (role: %s)", principal.Email, principal.Role)
	return m.establish(ctx, &principal, resp.BearerToken())
}

// LoginSSO looks up the role of a user the identity provider already verified.
// The id token doubles as the bearer token for later requests.
func (m *Manager) LoginSSO(ctx context.Context, idToken, name, email string) (*Session, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, ErrNotProvisioned
	}

	resp, err := m.api.GetRole(ctx, idToken)
	if err != nil {
		log.Printf("❌ SSO role lookup failed for %s: %v", email, err)
		return nil, ErrNotProvisioned
	}

	principal := &models.Principal{
		ID:    resp.ID,
		Name:  name,
		Email: email,
		Role:  models.ParseRole(resp.Role),
	}
	log.Printf("✅ SSO login successful for %s (role: %s)", email, principal.Role)
	return m.establish(ctx, principal, idToken)
}

func (m *Manager) establish(ctx context.Context, p *models.Principal, token string) (*Session, error) {
	sid := uuid.NewString()

	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode principal: %w", err)
	}

	ttl := m.jwt.TTL()
	if err := m.store.Set(ctx, key(sid, KeyUser), string(data), ttl); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	if token != "" {
		if err := m.store.Set(ctx, key(sid, KeyToken), token, ttl); err != nil {
			return nil, fmt.Errorf("failed to store session token: %w", err)
		}
	}

	return &Session{ID: sid, Principal: p, Token: token}, nil
}

// Restore rehydrates a session from storage without asking the backend.
func (m *Manager) Restore(ctx context.Context, sid string) (*Session, error) {
	if sid == "" {
		return nil, ErrNoSession
	}

	raw, err := m.store.Get(ctx, key(sid, KeyUser))
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var p models.Principal
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("corrupt session %s: %w", sid, err)
	}

	token, err := m.store.Get(ctx, key(sid, KeyToken))
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("failed to read session token: %w", err)
	}

	return &Session{ID: sid, Principal: &p, Token: token}, nil
}

// Logout clears the stored principal and token. Logging out twice is harmless.
func (m *Manager) Logout(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	if err := m.store.Delete(ctx, key(sid, KeyUser), key(sid, KeyToken)); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Cookie 为会话签发 cookie
func (m *Manager) Cookie(s *Session) (*http.Cookie, error) {
	token, expiry, err := m.jwt.GenerateSessionToken(s.ID)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiry,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// ClearCookie 返回删除 cookie 的 Set-Cookie
func (m *Manager) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SessionID extracts and verifies the session id carried by the request cookie.
func (m *Manager) SessionID(r *http.Request) (string, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", ErrNoSession
	}
	claims, err := m.jwt.ValidateSessionToken(c.Value)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	return claims.SessionID, nil
}

// FromRequest 从请求恢复会话
func (m *Manager) FromRequest(r *http.Request) (*Session, error) {
	sid, err := m.SessionID(r)
	if err != nil {
		return nil, err
	}
	return m.Restore(r.Context(), sid)
}

func key(sid, name string) string {
	return "session:" + sid + ":" + name
}
