// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/kabo-gg/kabo/internal/archive"
	"github.com/kabo-gg/kabo/internal/auth"
	"github.com/kabo-gg/kabo/internal/config"
	"github.com/kabo-gg/kabo/internal/history"
	"github.com/kabo-gg/kabo/internal/middleware"
	"github.com/kabo-gg/kabo/internal/server"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	if err := auth.Init(); err != nil {
		log.Fatalf("auth init failed: %v", err)
	}

	var hist *history.Publisher
	if cfg.RedisAddr != "" {
		var err error
		hist, err = history.Connect(cfg.RedisAddr, cfg.RedisDB, cfg.HistoryQueue, logger)
		if err != nil {
			logger.WithError(err).Warn("action history disabled")
		} else {
			defer hist.Close()
		}
	}

	var arch *archive.Store
	if cfg.DatabaseURL != "" {
		var err error
		arch, err = archive.Connect(context.Background(), cfg.DatabaseURL, logger)
		if err != nil {
			logger.WithError(err).Warn("round archive disabled")
		} else {
			defer arch.Close()
		}
	}

	srv := server.New(logger, hist, arch)

	mux := http.NewServeMux()
	mux.Handle("/ws", middleware.LogMiddleware(logger)(srv.WSHandler()))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	logger.Infof("listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
