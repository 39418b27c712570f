package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/config"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/utils"
)

// Recovery 恢复中间件，处理panic并返回友好的错误信息
func Recovery(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				stack := debug.Stack()
				fmt.Printf("❌ PANIC: %v\n", rec)
				fmt.Printf("📍 Stack trace:\n%s\n", stack)

				if !utils.WantsJSON(r) {
					http.Error(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
					return
				}
				if cfg.IsDevelopment() {
					// 开发环境：显示详细错误信息
					utils.WriteErrorResponseWithCode(w, http.StatusInternalServerError,
						"INTERNAL_SERVER_ERROR",
						fmt.Sprintf("Internal server error: %v", rec),
						string(stack))
					return
				}
				utils.WriteInternalServerErrorResponse(w, "Internal server error occurred")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
