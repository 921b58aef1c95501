package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/pgstay/internal/auth"
	"github.com/mmynk/pgstay/internal/config"
	"github.com/mmynk/pgstay/internal/middleware"
	"github.com/mmynk/pgstay/internal/service"
)

const shutdownTimeout = 10 * time.Second

var (
	servePort     int
	serveInsecure bool
)

// serveCmd runs the Connect API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Connect API server",
	Long: `Serve every pgstay.v1 service over HTTP/1.1 and h2c, plus /healthz and
/metrics.

Requests need a bearer token from 'pgstay token' unless --insecure is given or
JWT_SECRET is empty in development.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (default: PORT or 8080)")
	serveCmd.Flags().BoolVar(&serveInsecure, "insecure", false, "Disable authentication")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if servePort != 0 {
		cfg.Port = servePort
	}
	if err := cfg.ValidateServer(serveInsecure); err != nil {
		return err
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.AppEnv,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
		}); err != nil {
			slog.Error("Sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	a, err := newApp(cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if report := a.boot.CheckAccess(ctx); report.OK {
		slog.Info("Spreadsheet reachable", "title", report.Title, "missing_tabs", report.Missing)
	} else {
		slog.Warn("Spreadsheet not reachable, reads will be served from fallbacks", "error", report.Err)
	}

	interceptors := []connect.Interceptor{middleware.LoggingInterceptor()}
	if cfg.JWTSecret != "" && !serveInsecure {
		jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
		interceptors = append(interceptors, middleware.RequireAuth(jwtManager))
	} else {
		slog.Warn("Authentication disabled", "insecure", serveInsecure, "env", cfg.AppEnv)
	}

	mux := http.NewServeMux()
	service.Register(mux, a.repo, a.boot, connect.WithInterceptors(interceptors...))
	mux.Handle("GET /metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	// Add logging and CORS middleware
	handler := loggingMiddleware(corsMiddleware(mux))

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		// Wrap with h2c for HTTP/2 without TLS
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", srv.Addr, "url", fmt.Sprintf("http://localhost%s", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
