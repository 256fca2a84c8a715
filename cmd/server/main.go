package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/securecookie"

	"fitdash/internal/adapters/backend"
	exerciseStore "fitdash/internal/adapters/backend/exercise"
	programStore "fitdash/internal/adapters/backend/program"
	userStore "fitdash/internal/adapters/backend/user"
	web "fitdash/internal/adapters/http"
	"fitdash/internal/adapters/http/middleware"
	"fitdash/internal/adapters/http/perf"
	"fitdash/internal/application/orchestrators"
	"fitdash/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		slog.Error("config_invalid", "error", err)
		os.Exit(2)
	}
	slog.SetDefault(newLogger(cfg))

	if err := run(cfg); err != nil {
		slog.Error("server_failed", "error", err)
		os.Exit(1)
	}
}

// run serves until SIGINT or SIGTERM, then drains in-flight requests.
// POST: every deferred cleanup has run when it returns
func run(cfg config.Config) error {
	hashKey, err := sessionKey(cfg)
	if err != nil {
		return err
	}

	// Performance instrumentation: one collector for inbound requests and backend calls
	collector := perf.NewCollector(perf.DefaultRingSize)
	client := backend.New(cfg.APIBaseURL,
		backend.WithTimeout(cfg.BackendTimeout),
		backend.WithCollector(collector),
		backend.WithSlowThreshold(cfg.SlowBackendCall()),
	)

	exercises := exerciseStore.NewAPIStore(client)
	stores := web.Stores{
		Users:     userStore.NewAPIStore(client),
		Programs:  programStore.NewAPIStore(client),
		Exercises: exercises,
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerSecond, time.Second)
	defer limiter.Stop()

	mux := web.NewMux(web.Deps{
		Stores:      stores,
		Cookies:     middleware.NewCookieStoreFactory(hashKey, cfg.SecureCookies()),
		Workspaces:  orchestrators.NewExerciseManagers(exercises, orchestrators.DefaultWorkspaceIdle),
		Collector:   collector,
		Limiter:     limiter,
		SlowRequest: cfg.SlowRequest(),
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.BackendTimeout + 30*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}
	slog.Info("server_starting",
		"version", version,
		"addr", ln.Addr().String(),
		"env", cfg.Env,
		"api_base_url", cfg.APIBaseURL,
	)
	if err := serve(ctx, srv, ln, shutdownTimeout); err != nil {
		return err
	}
	slog.Info("server_stopped")
	return nil
}

const shutdownTimeout = 30 * time.Second

// serve runs srv on ln until ctx is done, then waits for in-flight requests.
// POST: returns only after Shutdown has finished or timed out
func serve(ctx context.Context, srv *http.Server, ln net.Listener, timeout time.Duration) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		// The listener failed before any shutdown was requested.
		return err
	case <-ctx.Done():
	}
	slog.Info("shutdown_signal_received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// sessionKey returns the configured signing key. Outside production an unset
// key is replaced by a random one, so sessions do not survive a restart.
func sessionKey(cfg config.Config) ([]byte, error) {
	if cfg.SessionKey != "" {
		return []byte(cfg.SessionKey), nil
	}
	key := securecookie.GenerateRandomKey(config.MinSessionKeyLen)
	if key == nil {
		return nil, errors.New("generate session key")
	}
	slog.Warn("session_key_generated", "reason", "FITDASH_SESSION_KEY unset")
	return key, nil
}

// newLogger writes JSON in production and text everywhere else.
func newLogger(cfg config.Config) *slog.Logger {
	// Validate already rejected unknown levels.
	level, _ := cfg.Level()
	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
