package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpadapter "github.com/kirillkom/roadsign-assistant/internal/adapters/http"
	"github.com/kirillkom/roadsign-assistant/internal/bootstrap"
	"github.com/kirillkom/roadsign-assistant/internal/config"
	"github.com/kirillkom/roadsign-assistant/internal/observability/logging"
	"github.com/kirillkom/roadsign-assistant/internal/observability/metrics"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("api", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()
	slog.Info("corpus_ready", "entries", len(app.Corpus.Entries), "dimension", app.Corpus.Dimension)

	queryMetrics := metrics.NewQueryMetrics("api")
	router := httpadapter.NewRouter(app.Answerer, queryMetrics, cfg.APIRateLimitRPS, cfg.APIRateLimitBurst).Handler()
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_error", "error", err)
	}
}
