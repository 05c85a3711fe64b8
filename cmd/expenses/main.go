package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/go-expense-tracker/internal/clients"
	"github.com/pribylovaa/go-expense-tracker/internal/config"
	"github.com/pribylovaa/go-expense-tracker/internal/metrics"
	"github.com/pribylovaa/go-expense-tracker/internal/observability"
	"github.com/pribylovaa/go-expense-tracker/internal/session"
	"github.com/pribylovaa/go-expense-tracker/internal/shell"
	"github.com/pribylovaa/go-expense-tracker/internal/tokenstore"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// version задаётся при сборке: -ldflags "-X main.version=...".
var version = "dev"

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting expense-tracker client", "env", cfg.Env, "version", version)

	if err := observability.InitSentry(cfg.Sentry.DSN, cfg.Env, version); err != nil {
		log.Warn("sentry_init_failed", slog.String("err", err.Error()))
	}
	defer observability.FlushSentry()

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	var m *metrics.Metrics
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		m = metrics.New(prometheus.DefaultRegisterer)
		metricsSrv = startMetrics(log, cfg.Metrics.Addr())
	}

	store := tokenstore.New()

	cl, err := clients.New(*cfg, store, log, m)
	if err != nil {
		log.Error("clients_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	sess := session.New(cl.Auth, cl.Users, store, log)

	// Тихое восстановление сессии по refresh-cookie. Неудача — обычный анонимный старт.
	_ = sess.CheckAuth(rootCtx)

	sh := shell.New(sess, cl.Expenses, os.Stdout, log)
	if u := sess.User(); u != nil {
		fmt.Fprintf(os.Stdout, "Welcome back, %s. Type help for commands.\n", u.Username)
	} else {
		fmt.Fprintln(os.Stdout, "Type help for commands.")
	}

	done := make(chan error, 1)
	go func() { done <- sh.Run(rootCtx, os.Stdin) }()

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-done:
		if err != nil {
			log.Error("shell_failed", slog.String("err", err.Error()))
		}
	}

	if metricsSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			log.Warn("metrics_shutdown_failed", slog.String("err", err.Error()))
		}
		shutdownCancel()
	}

	log.Info("client_stopped")
}

// startMetrics поднимает /metrics и /livez на addr.
func startMetrics(log *slog.Logger, addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("metrics_listen_start", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics_serve_failed", slog.String("err", err.Error()))
		}
	}()

	return srv
}

// setupLogger настраивает slog по окружению. Логи идут в stderr: stdout занят оболочкой.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}

	return log
}
