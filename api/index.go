package handler

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/backend"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/config"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/database"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/handlers"
	customMiddleware "github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/middleware"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/templates"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/utils"
)

// maxFormBytes bounds submitted forms.
const maxFormBytes = 1 << 20

var (
	routerOnce sync.Once
	router     http.Handler
	routerErr  error
)

// Handler 是Vercel函数的入口点
// 路由器在冷启动时创建一次，之后的请求共享会话工作区
func Handler(w http.ResponseWriter, r *http.Request) {
	routerOnce.Do(func() {
		cfg := config.GetCached()
		if err := cfg.Validate(); err != nil {
			routerErr = fmt.Errorf("configuration error: %w", err)
			return
		}
		app, err := NewApp(cfg)
		if err != nil {
			routerErr = err
			return
		}
		router = NewRouter(cfg, app)
	})
	if routerErr != nil {
		utils.WriteInternalServerErrorResponse(w, routerErr.Error())
		return
	}
	router.ServeHTTP(w, r)
}

// NewApp builds the handler dependencies from configuration.
func NewApp(cfg *config.Config) (*handlers.App, error) {
	// 会话存储经由连接池访问（配置变化或健康检查失败时重建）
	db, err := database.NewPooledDatabase(database.DatabaseConfig{
		Driver:      cfg.SessionStore,
		DataDir:     cfg.DataDir,
		PostgresDSN: cfg.PostgresDSN,
		RedisURL:    cfg.RedisURL,
		Debug:       cfg.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("session store unavailable: %w", err)
	}

	pages, err := templates.New()
	if err != nil {
		return nil, err
	}

	api := backend.NewClient(cfg.BackendHost, cfg.BackendTimeout)
	return handlers.NewApp(cfg, db, api, pages), nil
}

// NewRouter 创建Chi路由器并注册中间件和路由
func NewRouter(cfg *config.Config, app *handlers.App) *chi.Mux {
	r := chi.NewRouter()
	setupMiddleware(r, cfg, app)
	setupRoutes(r, cfg, app)
	return r
}

// setupMiddleware 设置全局中间件
func setupMiddleware(router *chi.Mux, cfg *config.Config, app *handlers.App) {
	// 基础中间件
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	// Normalize path before session lookup, logging and routing
	router.Use(customMiddleware.Normalize())
	router.Use(customMiddleware.Authenticate(app.Sessions()))
	router.Use(customMiddleware.Logger(cfg))
	router.Use(customMiddleware.Recovery(cfg))

	// CORS中间件
	router.Use(customMiddleware.CORS(cfg))

	// 超时中间件（Vercel函数有时间限制）
	router.Use(middleware.Timeout(25 * time.Second)) // 留5秒缓冲

	// 压缩中间件
	router.Use(middleware.Compress(5))

	// 开发环境额外中间件
	if cfg.IsDevelopment() {
		router.Use(middleware.Heartbeat("/ping"))
	}
}

// setupRoutes 设置所有路由
func setupRoutes(router *chi.Mux, cfg *config.Config, app *handlers.App) {
	authHandler := handlers.NewAuthHandler(app)
	dashboardHandler := handlers.NewDashboardHandler(app)
	taskHandler := handlers.NewTaskHandler(app)
	projectHandler := handlers.NewProjectHandler(app)
	userHandler := handlers.NewUserHandler(app)

	// 健康检查端点
	router.Get("/health", authHandler.HealthCheck)

	// 会话存储状态端点（调试用）
	if cfg.Debug {
		router.Get("/debug/session-store", func(w http.ResponseWriter, r *http.Request) {
			stats := database.GetConnectionStats()
			stats["workspaces"] = app.Workspaces().Len()
			stats["vercel"] = database.IsVercelEnvironment()
			utils.WriteSuccessResponse(w, stats)
		})

		// 环境变量检查端点
		router.Get("/debug/env-check", func(w http.ResponseWriter, r *http.Request) {
			utils.WriteSuccessResponse(w, map[string]interface{}{
				"backend_host":         cfg.BackendHost,
				"session_store":        cfg.SessionStore,
				"google_client_id":     cfg.GoogleClientID != "",
				"google_client_secret": cfg.GoogleClientSecret != "",
				"oauth_redirect_uri":   cfg.OAuthRedirectURI,
			})
		})
	}

	// 公开路由（不需要登录）
	router.Get("/login", authHandler.LoginPage)
	router.Get("/auth/google", authHandler.GoogleLogin)
	router.Get("/auth/google/callback", authHandler.GoogleCallback)
	router.Group(func(r chi.Router) {
		r.Use(customMiddleware.FormContentTypes)
		r.Use(customMiddleware.MaxBodySize(maxFormBytes))
		r.Post("/logout", authHandler.Logout)

		// 登录限流
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.RateLimitByIP(cfg.LoginRateLimit))
			r.Post("/login", authHandler.Login)
			r.Post("/auth/sso", authHandler.SSOLogin)
		})
	})

	// 需要登录的路由
	router.Group(func(r chi.Router) {
		r.Use(customMiddleware.RequireSession)
		r.Use(customMiddleware.FormContentTypes)
		r.Use(customMiddleware.MaxBodySize(maxFormBytes))

		r.Get("/", dashboardHandler.Show)
		r.Post("/refresh", authHandler.Refresh)

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.List)
			r.Post("/new", taskHandler.New)
			r.Post("/save", taskHandler.Save)
			r.Post("/cancel", taskHandler.Cancel)
			r.Post("/delete/cancel", taskHandler.CancelDelete)
			r.Post("/{id}/edit", taskHandler.Edit)
			r.Post("/{id}/delete", taskHandler.RequestDelete)
			r.Post("/{id}/delete/confirm", taskHandler.ConfirmDelete)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", projectHandler.List)
			r.Post("/new", projectHandler.New)
			r.Post("/save", projectHandler.Save)
			r.Post("/cancel", projectHandler.Cancel)
			r.Post("/delete/cancel", projectHandler.CancelDelete)
			r.Post("/{id}/edit", projectHandler.Edit)
			r.Post("/{id}/delete", projectHandler.RequestDelete)
			r.Post("/{id}/delete/confirm", projectHandler.ConfirmDelete)
		})

		// 用户管理（仅管理员，其他角色返回 403）
		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.List)
			r.Post("/new", userHandler.New)
			r.Post("/save", userHandler.Save)
			r.Post("/cancel", userHandler.Cancel)
			r.Post("/delete/cancel", userHandler.CancelDelete)
			r.Post("/{id}/edit", userHandler.Edit)
			r.Post("/{id}/delete", userHandler.RequestDelete)
			r.Post("/{id}/delete/confirm", userHandler.ConfirmDelete)
		})
	})

	// 404处理
	router.NotFound(app.NotFound)

	// 405处理
	router.MethodNotAllowed(app.MethodNotAllowed)
}
