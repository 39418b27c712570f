package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/middleware"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/session"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/store"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/templates"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/utils"
)

// errSignInUnavailable is shown when a session could not be started.
const errSignInUnavailable = "Sign-in is unavailable right now. Please try again."

// oauthStateCookie carries the state parameter of a pending Google sign-in.
const oauthStateCookie = "tt_oauth_state"

// AuthHandler 认证处理器
type AuthHandler struct {
	*App
	oauth *oauth2.Config
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(app *App) *AuthHandler {
	h := &AuthHandler{App: app}
	if app.cfg.GoogleSSOEnabled() {
		h.oauth = &oauth2.Config{
			ClientID:     app.cfg.GoogleClientID,
			ClientSecret: app.cfg.GoogleClientSecret,
			RedirectURL:  app.cfg.OAuthRedirectURI,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     app.oauthEndpoint,
		}
	}
	return h
}

// LoginPage GET /login
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if s, ok := middleware.GetSessionFromContext(r.Context()); ok && s.State() == session.Authenticated {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.loginPage(w, http.StatusOK, templates.LoginBody{Error: r.URL.Query().Get("error")})
}

func (h *AuthHandler) loginPage(w http.ResponseWriter, status int, body templates.LoginBody) {
	body.GoogleEnabled = h.oauth != nil
	h.html(w, status, templates.PageLogin, templates.PageData{Title: "Login", Body: body})
}

// Login POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	values, err := formValues(r)
	if err != nil {
		utils.WriteBadRequestResponse(w, err.Error())
		return
	}
	email := strings.TrimSpace(values.Get("email"))

	s, err := h.sessions.Login(r.Context(), email, values.Get("password"))
	if err != nil {
		h.loginFailed(w, r, email, err)
		return
	}
	h.establish(w, r, s)
}

// ssoRequest POST /auth/sso 请求体
type ssoRequest struct {
	IDToken string `json:"id_token"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

// SSOLogin accepts an id token the browser obtained from the identity provider.
func (h *AuthHandler) SSOLogin(w http.ResponseWriter, r *http.Request) {
	values, err := formValues(r)
	if err != nil {
		utils.WriteBadRequestResponse(w, err.Error())
		return
	}
	req := ssoRequest{
		IDToken: strings.TrimSpace(values.Get("id_token")),
		Name:    strings.TrimSpace(values.Get("name")),
		Email:   strings.TrimSpace(values.Get("email")),
	}
	if req.IDToken == "" {
		utils.WriteBadRequestResponse(w, "id_token is required")
		return
	}
	if req.Name == "" || req.Email == "" {
		name, email := identityFromIDToken(req.IDToken)
		if req.Name == "" {
			req.Name = name
		}
		if req.Email == "" {
			req.Email = email
		}
	}

	s, err := h.sessions.LoginSSO(r.Context(), req.IDToken, req.Name, req.Email)
	if err != nil {
		h.loginFailed(w, r, "", err)
		return
	}
	h.establish(w, r, s)
}

// GoogleLogin GET /auth/google 跳转到 Google 授权页
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.oauth == nil {
		h.fail(w, r, http.StatusNotFound, "Google sign-in is not configured")
		return
	}
	state, err := utils.GenerateURLToken(24)
	if err != nil {
		log.Printf("❌ Failed to generate OAuth state: %v", err)
		h.fail(w, r, http.StatusInternalServerError, "Failed to start Google sign-in")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/auth/google",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline), http.StatusFound)
}

// GoogleCallback GET /auth/google/callback
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.oauth == nil {
		h.fail(w, r, http.StatusNotFound, "Google sign-in is not configured")
		return
	}
	q := r.URL.Query()
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Value: "", Path: "/auth/google", MaxAge: -1})

	if e := q.Get("error"); e != "" {
		log.Printf("⚠️  Google sign-in returned error: %s", e)
		h.loginPage(w, http.StatusUnauthorized, templates.LoginBody{Error: "Google sign-in was cancelled"})
		return
	}
	c, err := r.Cookie(oauthStateCookie)
	if err != nil || c.Value == "" || c.Value != q.Get("state") {
		h.loginPage(w, http.StatusBadRequest, templates.LoginBody{Error: "Sign-in expired, please try again"})
		return
	}

	tok, err := h.oauth.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		log.Printf("❌ Google code exchange failed: %v", err)
		h.loginPage(w, http.StatusUnauthorized, templates.LoginBody{Error: "Google sign-in failed"})
		return
	}
	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		log.Printf("❌ Google token response carried no id_token")
		h.loginPage(w, http.StatusUnauthorized, templates.LoginBody{Error: "Google sign-in failed"})
		return
	}

	name, email := identityFromIDToken(idToken)
	s, err := h.sessions.LoginSSO(r.Context(), idToken, name, email)
	if err != nil {
		h.loginFailed(w, r, email, err)
		return
	}
	h.establish(w, r, s)
}

// loginFailed shows rejected credentials to the user. Any other error (session
// storage) is logged and answered with a generic 500.
func (h *AuthHandler) loginFailed(w http.ResponseWriter, r *http.Request, email string, err error) {
	if !errors.Is(err, session.ErrInvalidCredentials) && !errors.Is(err, session.ErrNotProvisioned) {
		log.Printf("❌ Failed to start session for %s: %v", email, err)
		if utils.WantsJSON(r) {
			utils.WriteInternalServerErrorResponse(w, errSignInUnavailable)
			return
		}
		h.loginPage(w, http.StatusInternalServerError, templates.LoginBody{Email: email, Error: errSignInUnavailable})
		return
	}
	if utils.WantsJSON(r) {
		utils.WriteUnauthorizedResponse(w, err.Error())
		return
	}
	h.loginPage(w, http.StatusUnauthorized, templates.LoginBody{Email: email, Error: err.Error()})
}

// establish issues the cookie for a new session and loads its workspace.
func (h *AuthHandler) establish(w http.ResponseWriter, r *http.Request, s *session.Session) {
	cookie, err := h.sessions.Cookie(s)
	if err != nil {
		log.Printf("❌ Failed to issue session cookie: %v", err)
		_ = h.sessions.Logout(r.Context(), s.ID)
		utils.WriteInternalServerErrorResponse(w, "Failed to create session")
		return
	}
	http.SetCookie(w, cookie)

	ws := h.spaces.Get(s.ID)
	if err := ws.Load(r.Context(), h.api, s.Token); err != nil {
		log.Printf("⚠️  Initial load for %s incomplete: %v", s.Principal.Email, err)
	}

	if utils.WantsJSON(r) {
		utils.WriteSuccessResponse(w, map[string]interface{}{"principal": s.Principal})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sid, err := h.sessions.SessionID(r)
	if err == nil {
		h.endSession(w, r, sid)
	} else {
		http.SetCookie(w, h.sessions.ClearCookie())
	}
	if utils.WantsJSON(r) {
		utils.WriteSuccessResponse(w, map[string]interface{}{"logged_out": true})
		return
	}
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}

// Refresh POST /refresh 重新拉取三个集合
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	rq, ok := h.begin(w, r)
	if !ok {
		return
	}
	if err := rq.ws.Load(r.Context(), h.api, rq.s.Token); err != nil {
		if h.rejected(w, r, rq.s.ID, err) {
			return
		}
		rq.ws.Notify(store.NoticeError, "Some data could not be refreshed. Please try again.")
	}
	done(w, r, backTo(r, "/"), http.StatusOK, map[string]interface{}{"snapshot": rq.ws.Snapshot()})
}

// HealthCheck 健康检查
func (h *AuthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	storeStatus := "healthy"
	if err := h.db.HealthCheck(); err != nil {
		// sessions cannot be restored without the store
		status = "degraded"
		storeStatus = "unhealthy: " + err.Error()
	}
	backendStatus := "healthy"
	if err := h.api.HealthCheck(r.Context()); err != nil {
		backendStatus = "unhealthy: " + err.Error()
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"service":        "task-tracker-frontend",
		"version":        "1.0.0",
		"environment":    h.cfg.Environment,
		"session_store":  h.cfg.SessionStore,
		"store_status":   storeStatus,
		"backend_status": backendStatus,
		"timestamp":      h.now().Unix(),
		"status":         status,
	})
}

// identityFromIDToken reads the name and email claims of an id token. The token
// is not verified here: the backend verifies it on the role lookup.
func identityFromIDToken(idToken string) (name, email string) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return "", ""
	}
	name, _ = claims["name"].(string)
	email, _ = claims["email"].(string)
	return name, email
}
