// Command server runs the task tracker as a long-lived HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	handler "github.com/GaneshSuryvanshi/task-tracker-frontend/api"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/config"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/database"
)

func main() {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	app, err := handler.NewApp(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to start: %v", err)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.NewRouter(cfg, app),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("🛑 Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
		if err := database.ClosePool(); err != nil {
			log.Printf("⚠️  Failed to close session store: %v", err)
		}
		log.Println("✅ Server stopped gracefully")
	}()

	log.Printf("🚀 Server starting on :%s (%s)", cfg.Port, cfg.Environment)
	log.Printf("🔗 Backend API: %s", cfg.BackendHost)
	log.Printf("💚 Health check at http://localhost:%s/health", cfg.Port)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("❌ Server failed to start: %v", err)
	}
	<-stopped
}
