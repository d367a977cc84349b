//go:build !wasm

// Command profiled serves the account and profile API backed by SQLite.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	user "github.com/anhnnhe176642/giupviecvat-sub001"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// dbExecutor adapts *sql.DB to user.Executor.
type dbExecutor struct {
	*sql.DB
}

func (e dbExecutor) Exec(query string, args ...any) error {
	_, err := e.DB.Exec(query, args...)
	return err
}

func (e dbExecutor) Query(query string, args ...any) (user.Rows, error) {
	return e.DB.Query(query, args...)
}

func (e dbExecutor) QueryRow(query string, args ...any) user.Scanner {
	return e.DB.QueryRow(query, args...)
}

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := run(log); err != nil {
		log.Fatal("profiled stopped", zap.Error(err))
	}
}

func run(log *zap.Logger) error {
	addr := envOrDefault("ADDR", ":8080")
	dbPath := envOrDefault("DATABASE_PATH", "profile.db")

	ttl, err := strconv.Atoi(envOrDefault("SESSION_TTL", "86400"))
	if err != nil {
		return err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return err
	}
	defer db.Close()

	cfg := user.Config{
		SessionCookieName: envOrDefault("SESSION_COOKIE", "session"),
		SessionTTL:        ttl,
		TrustProxy:        os.Getenv("TRUST_PROXY") == "true",
		Logger:            log,
	}
	if id := os.Getenv("GOOGLE_CLIENT_ID"); id != "" {
		cfg.OAuthProviders = append(cfg.OAuthProviders, &user.GoogleProvider{
			ClientID:     id,
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		})
	}
	if id := os.Getenv("MICROSOFT_CLIENT_ID"); id != "" {
		cfg.OAuthProviders = append(cfg.OAuthProviders, &user.MicrosoftProvider{
			ClientID:     id,
			ClientSecret: os.Getenv("MICROSOFT_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("MICROSOFT_REDIRECT_URL"),
		})
	}

	if err := user.Init(dbExecutor{db}, cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go purgeLoop(ctx, log)

	srv := &http.Server{
		Addr:              addr,
		Handler:           user.APIHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	log.Info("listening", zap.String("addr", ln.Addr().String()))
	return serve(ctx, srv, ln, log)
}

// serve runs srv on ln until ctx is cancelled, then drains in-flight
// requests. It returns only after Shutdown has finished, so callers may
// release what the handlers use.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, log *zap.Logger) error {
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}

// purgeLoop drops expired sessions and OAuth states every hour.
func purgeLoop(ctx context.Context, log *zap.Logger) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := user.PurgeExpiredSessions(); err != nil {
				log.Warn("purge sessions", zap.Error(err))
			}
			if err := user.PurgeExpiredOAuthStates(); err != nil {
				log.Warn("purge oauth states", zap.Error(err))
			}
		}
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
