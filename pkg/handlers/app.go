package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/backend"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/config"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/database"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/middleware"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/policy"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/session"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/store"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/templates"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/utils"
)

// App 处理器共享的依赖
type App struct {
	cfg      *config.Config
	db       database.DatabaseInterface
	api      backend.API
	sessions *session.Manager
	spaces   *store.Registry
	pages    *templates.Renderer
	now      func() time.Time

	oauthEndpoint oauth2.Endpoint
}

// NewApp wires the session manager and the workspace registry on top of the
// session storage and the backend client.
func NewApp(cfg *config.Config, db database.DatabaseInterface, api backend.API, pages *templates.Renderer) *App {
	jwtService := utils.NewJWTService(cfg.SessionSecret, cfg.SessionTTL)
	return &App{
		cfg:      cfg,
		db:       db,
		api:      api,
		sessions: session.NewManager(db, api, jwtService).WithSecureCookies(cfg.IsProduction()),
		spaces:   store.NewRegistry().WithIdleTimeout(cfg.SessionTTL),
		pages:    pages,
		now:      time.Now,

		oauthEndpoint: google.Endpoint,
	}
}

// WithClock 替换时钟（测试用）
func (a *App) WithClock(now func() time.Time) *App {
	a.now = now
	return a
}

// WithOAuthEndpoint points the Google sign-in flow at another provider endpoint.
func (a *App) WithOAuthEndpoint(ep oauth2.Endpoint) *App {
	a.oauthEndpoint = ep
	return a
}

// Sessions 会话管理器
func (a *App) Sessions() *session.Manager {
	return a.sessions
}

// Workspaces 工作区注册表
func (a *App) Workspaces() *store.Registry {
	return a.spaces
}

// request is one authenticated request: the session and its workspace.
type request struct {
	s  *session.Session
	ws *store.Workspace
}

// begin resolves the session of r and makes sure its workspace has been loaded
// once. It answers the request itself and returns false when there is no usable
// session.
func (a *App) begin(w http.ResponseWriter, r *http.Request) (*request, bool) {
	s, ok := middleware.GetSessionFromContext(r.Context())
	if !ok || s.State() != session.Authenticated {
		middleware.DenySession(w, r)
		return nil, false
	}

	ws, ok := a.spaces.Lookup(s.ID)
	if !ok {
		// restored session (new process or new instance): bulk load once
		ws = a.spaces.Get(s.ID)
		if err := ws.Load(r.Context(), a.api, s.Token); err != nil && a.rejected(w, r, s.ID, err) {
			return nil, false
		}
	}
	return &request{s: s, ws: ws}, true
}

// rejected logs the session out when the backend refused its token, and answers
// the request like any other request without a session.
func (a *App) rejected(w http.ResponseWriter, r *http.Request, sid string, err error) bool {
	if !errors.Is(err, backend.ErrUnauthorized) && !errors.Is(err, store.ErrStale) {
		return false
	}
	log.Printf("🔒 Session %s is no longer accepted by the backend, logging out", sid)
	a.endSession(w, r, sid)
	middleware.DenySession(w, r)
	return true
}

// endSession 清除会话存储、工作区和 cookie
func (a *App) endSession(w http.ResponseWriter, r *http.Request, sid string) {
	if err := a.sessions.Logout(r.Context(), sid); err != nil {
		log.Printf("⚠️  Failed to clear session %s: %v", sid, err)
	}
	a.spaces.Drop(sid)
	http.SetCookie(w, a.sessions.ClearCookie())
}

// page renders an HTML page, or the JSON view of the same data.
func (a *App) page(w http.ResponseWriter, r *http.Request, rq *request, name, title string, body, data interface{}) {
	notices := rq.ws.TakeNotices()
	if utils.WantsJSON(r) {
		if notices == nil {
			notices = []store.Notice{}
		}
		utils.WriteSuccessResponse(w, map[string]interface{}{
			"principal": rq.s.Principal,
			"notices":   notices,
			name:        data,
		})
		return
	}
	a.html(w, http.StatusOK, name, templates.PageData{
		Title:     title,
		Active:    name,
		Principal: rq.s.Principal,
		ShowUsers: policy.CanManageUsers(rq.s.Principal),
		Notices:   notices,
		Body:      body,
	})
}

// html 渲染 HTML 页面
func (a *App) html(w http.ResponseWriter, status int, name string, data templates.PageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := a.pages.Render(w, name, data); err != nil {
		log.Printf("❌ Failed to render %s: %v", name, err)
	}
}

// fail answers with an error page or the JSON error envelope.
func (a *App) fail(w http.ResponseWriter, r *http.Request, status int, message string) {
	if utils.WantsJSON(r) {
		writeError(w, status, message)
		return
	}
	data := templates.PageData{
		Title: http.StatusText(status),
		Body:  templates.ErrorBody{Status: status, Message: message},
	}
	if p, ok := middleware.GetPrincipalFromContext(r.Context()); ok {
		data.Principal = p
		data.ShowUsers = policy.CanManageUsers(p)
	}
	a.html(w, status, templates.PageError, data)
}

// writeError picks the error code of the JSON envelope from the status.
func writeError(w http.ResponseWriter, status int, message string) {
	switch status {
	case http.StatusForbidden:
		utils.WriteForbiddenResponse(w, message)
	case http.StatusNotFound:
		utils.WriteNotFoundResponse(w, message)
	case http.StatusBadGateway:
		utils.WriteBadGatewayResponse(w, message)
	default:
		utils.WriteErrorResponse(w, status, message)
	}
}

// NotFound 404处理
func (a *App) NotFound(w http.ResponseWriter, r *http.Request) {
	a.fail(w, r, http.StatusNotFound, fmt.Sprintf("Route not found: %s %s", r.Method, r.URL.Path))
}

// MethodNotAllowed 405处理
func (a *App) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	a.fail(w, r, http.StatusMethodNotAllowed, fmt.Sprintf("Method %s not allowed for %s", r.Method, r.URL.Path))
}

// done finishes a form action: browsers are sent back to the page, JSON clients
// get data.
func done(w http.ResponseWriter, r *http.Request, target string, status int, data interface{}) {
	if utils.WantsJSON(r) {
		if status == http.StatusCreated {
			utils.WriteCreatedResponse(w, data)
			return
		}
		utils.WriteJSONResponse(w, status, data)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// mutationFailed answers a failed create, update or delete. The notice is already
// queued on the workspace.
func (a *App) mutationFailed(w http.ResponseWriter, r *http.Request, rq *request, target, verb, kind string, err error) {
	if a.rejected(w, r, rq.s.ID, err) {
		return
	}
	if utils.WantsJSON(r) {
		msg := backend.DetailOf(err)
		if msg == "" {
			msg = fmt.Sprintf("Failed to %s %s. Please try again.", verb, kind)
		}
		status := http.StatusBadGateway
		if code := backend.StatusOf(err); code >= 400 && code < 500 {
			status = code
		}
		// the JSON answer carries the message; drop the queued copy
		rq.ws.TakeNotices()
		writeError(w, status, msg)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// invalid answers a submission with field errors. Browsers see the form again.
func invalid(w http.ResponseWriter, r *http.Request, target string, errs map[string]string) {
	if utils.WantsJSON(r) {
		utils.WriteValidationErrorResponse(w, "Please correct the highlighted fields", errs)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// formValues reads a submitted form. JSON bodies are accepted too, flattened
// into the same field names.
func formValues(r *http.Request) (url.Values, error) {
	if strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		var raw map[string]interface{}
		if err := utils.ParseJSONBody(r, &raw); err != nil {
			return nil, fmt.Errorf("invalid JSON body: %w", err)
		}
		values := url.Values{}
		for k, v := range raw {
			switch val := v.(type) {
			case nil:
			case string:
				values.Set(k, val)
			case float64:
				values.Set(k, strconv.FormatFloat(val, 'f', -1, 64))
			default:
				values.Set(k, fmt.Sprint(val))
			}
		}
		return values, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form: %w", err)
	}
	return r.PostForm, nil
}

// backTo returns the local path the browser came from, or fallback.
func backTo(r *http.Request, fallback string) string {
	ref := r.Referer()
	if ref == "" {
		return fallback
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != r.Host) || !strings.HasPrefix(u.Path, "/") {
		return fallback
	}
	if u.Path == middleware.LoginPath {
		return fallback
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}
