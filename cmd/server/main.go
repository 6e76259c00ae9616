package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/term"

	"findash/internal/config"
	dashboardhandlers "findash/internal/handlers/dashboard"
	apphttp "findash/internal/http"
	"findash/internal/logging"
	"findash/internal/services/cache"
	"findash/internal/services/classifier"
	"findash/internal/services/dashboard"
	"findash/internal/services/dataloader"
	"findash/internal/services/daterange"
	"findash/internal/services/storage"
	"findash/internal/services/telemetry"
	"findash/internal/version"
)

var (
	cfg     *config.Config
	logger  *logging.Logger
	store   *storage.Storage
	metrics *telemetry.PrometheusCollector
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "findash:", err)
		os.Exit(1)
	}
}

func run() error {
	var err error
	if cfg, err = config.Load(); err != nil {
		return err
	}
	if logger, err = logging.New(cfg.Logging()); err != nil {
		return err
	}
	defer logger.Sync()

	info := version.Get()
	logger.Info("starting findash",
		zap.String("version", info.Short()),
		zap.String("addr", cfg.ListenAddr),
		zap.String("dataDir", cfg.DataDirectory),
	)

	if store, err = storage.New(cfg.DataDirectory); err != nil {
		return err
	}
	if store.IsEncrypted() {
		if err := unlock(store); err != nil {
			return err
		}
		logger.Info("storage unlocked")
	}

	if err := SetupDependencies(cfg); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.ListenAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	store.Lock()
	return nil
}

// SetupDependencies wires the services and handlers for cfg. Package-level
// logger and store are created when unset.
func SetupDependencies(c *config.Config) error {
	cfg = c

	var err error
	if logger == nil {
		if logger, err = logging.New(cfg.Logging()); err != nil {
			return err
		}
	}
	if store == nil {
		if store, err = storage.New(cfg.DataDirectory); err != nil {
			return err
		}
	}
	if metrics, err = telemetry.NewPrometheusCollector(cfg.MetricsNamespace); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	rules, err := cfg.LoadRules()
	if err != nil {
		return err
	}

	loader := dataloader.New(store, logger)
	svc := dashboard.NewService(dashboard.Config{
		Source:     loader,
		Cache:      cache.New(cache.Config{TTL: cfg.CacheTTL, Metrics: metrics}),
		Resolver:   daterange.New(cfg.Location(), nil),
		Classifier: classifier.New(rules),
		Metrics:    metrics,
		Logger:     logger,
	})
	dashboardhandlers.Initialize(svc, loader, logger)
	return nil
}

// SetupRouter builds the HTTP routes. SetupDependencies must run first.
func SetupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apphttp.RequestLogger(logger, metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/health", http.StatusTemporaryRedirect)
	})
	r.Get("/api/health", handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	dashboardhandlers.RegisterRoutes(r)

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if !store.IsUnlocked() {
		status, code = "locked", http.StatusServiceUnavailable
	}
	apphttp.WriteJSON(w, code, map[string]any{
		"status":    status,
		"version":   version.Get().Short(),
		"encrypted": store.IsEncrypted(),
	})
}

// unlock reads the password from FINDASH_PASSWORD or prompts on the terminal
func unlock(s *storage.Storage) error {
	password := os.Getenv("FINDASH_PASSWORD")
	if password == "" {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return errors.New("data directory is encrypted: set FINDASH_PASSWORD or run interactively")
		}
		fmt.Fprint(os.Stderr, "Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = string(raw)
	}
	return s.Unlock(password)
}
