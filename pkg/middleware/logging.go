package middleware

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/config"
)

// logOutput 请求日志输出位置
var logOutput io.Writer = os.Stdout

// Logger 创建日志中间件
// Production gets one JSON line per request, other environments a colored line.
func Logger(cfg *config.Config) func(http.Handler) http.Handler {
	return CustomLogger(cfg)
}

// CustomLogger 自定义日志中间件，记录当前用户
func CustomLogger(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// 创建响应写入器包装器来捕获状态码
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			duration := time.Since(start)

			userInfo := "anonymous"
			if p, ok := GetPrincipalFromContext(r.Context()); ok {
				userInfo = p.Email
			}

			if cfg.IsProduction() {
				logProductionRequest(r, ww, duration, userInfo)
			} else {
				logDevelopmentRequest(r, ww, duration, userInfo)
			}
		})
	}
}

// logProductionRequest 生产环境日志格式
func logProductionRequest(r *http.Request, ww middleware.WrapResponseWriter, duration time.Duration, userInfo string) {
	fmt.Fprintf(logOutput, `{"time":"%s","request_id":"%s","method":"%s","path":"%s","status":%d,"duration":"%s","user":"%s","ip":"%s"}`+"\n",
		time.Now().Format(time.RFC3339),
		middleware.GetReqID(r.Context()),
		r.Method,
		r.URL.Path,
		ww.Status(),
		duration,
		userInfo,
		r.RemoteAddr,
	)
}

// logDevelopmentRequest 开发环境日志格式
func logDevelopmentRequest(r *http.Request, ww middleware.WrapResponseWriter, duration time.Duration, userInfo string) {
	fmt.Fprintf(logOutput, "%s %s%s\033[0m \033[36m%s\033[0m %s%d\033[0m %s %s\n",
		time.Now().Format("15:04:05"),
		getMethodColor(r.Method),
		r.Method,
		r.URL.Path,
		getStatusColor(ww.Status()),
		ww.Status(),
		duration,
		userInfo,
	)
}

// getStatusColor 根据HTTP状态码返回颜色代码
func getStatusColor(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "\033[32m" // 绿色
	case status >= 300 && status < 400:
		return "\033[33m" // 黄色
	case status >= 400 && status < 500:
		return "\033[31m" // 红色
	case status >= 500:
		return "\033[35m" // 紫色
	default:
		return "\033[0m"
	}
}

// getMethodColor 根据HTTP方法返回颜色代码
func getMethodColor(method string) string {
	switch method {
	case http.MethodGet:
		return "\033[34m"
	case http.MethodPost:
		return "\033[32m"
	default:
		return "\033[0m"
	}
}
