package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/dom/jobtracker/internal/config"
	"github.com/dom/jobtracker/internal/logging"
	"github.com/dom/jobtracker/internal/offline"
	"github.com/dom/jobtracker/internal/websocket"
)

func main() {
	cfg, err := config.LoadEdge()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.Environment)

	origin, err := url.Parse(cfg.UpstreamURL)
	if err != nil || !origin.IsAbs() {
		logger.Error("invalid UPSTREAM_URL", "url", cfg.UpstreamURL, "error", err)
		os.Exit(1)
	}

	// Page message channel
	hub := websocket.NewHub()
	registration := offline.NewRegistration(hub)
	hub.SetMessageHandler(offline.MessageHandler(registration))
	hub.SetConnectHandler(offline.ConnectHandler(registration))
	go hub.Run()

	storage := offline.NewStorage()
	newWorker := func() (*offline.Worker, error) {
		return offline.NewWorker(storage, offline.Options{
			CacheName:            cfg.CacheName,
			StaticAssets:         cfg.StaticAssets,
			Origin:               origin,
			Network:              &http.Client{Timeout: 30 * time.Second},
			SkipWaitingOnInstall: cfg.SkipWaiting,
		})
	}

	if _, err := newWorker(); err != nil {
		logger.Error("failed to create worker", "error", err)
		os.Exit(1)
	}

	// Requests are proxied straight to the upstream until a worker is active.
	installCtx, cancelInstall := context.WithCancel(context.Background())
	defer cancelInstall()
	go func() {
		w, err := registration.InstallWithRetry(installCtx, newWorker, offline.DefaultInstallBackOff(), time.Minute)
		if err != nil {
			logger.Error("worker install abandoned", "error", err)
			return
		}
		logger.Info("worker installed", "worker_id", w.ID(), "state", w.State())
	}()

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Get("/sw/ws", websocket.ServeWS(hub))
	r.Handle("/*", offline.NewHandler(registration, origin))

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("edge starting", "port", cfg.Port, "upstream", origin.String(), "cache", cfg.CacheName)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start edge", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down edge")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cancelInstall()
	hub.Stop()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("edge forced to shutdown", "error", err)
	}

	logger.Info("edge stopped")
}
