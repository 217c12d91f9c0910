package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	accountspg "github.com/nicodev/portfolio-server/accounts/postgres"
	"github.com/nicodev/portfolio-server/auth"
	"github.com/nicodev/portfolio-server/internal/config"
	"github.com/nicodev/portfolio-server/server"
	"github.com/nicodev/portfolio-server/sessions"
	sessionspg "github.com/nicodev/portfolio-server/sessions/postgres"
	"github.com/nicodev/portfolio-server/storage/postgres"
)

const sessionCleanupInterval = 1 * time.Hour

func main() {
	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	ctx := context.Background()

	if err := postgres.RunMigrations(c.GetDatabaseURL()); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	pool, err := postgres.NewPool(ctx, c.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	accountRepo := accountspg.NewAccountRepo(pool)
	sessionRepo := sessionspg.NewSessionRepo(pool)

	metrics := server.NewMetrics(prometheus.DefaultRegisterer)

	sessionManager, err := sessions.NewManager(sessionRepo, sessionPolicy(c),
		sessions.WithCounters(metrics.SessionsCreated, metrics.SessionsEvicted))
	if err != nil {
		return fmt.Errorf("create session manager: %w", err)
	}

	authService, err := auth.NewService(accountRepo, sessionManager, auth.NewArgon2idHasher())
	if err != nil {
		return fmt.Errorf("create auth service: %w", err)
	}

	srv, err := server.New(c, authService, accountRepo, metrics)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()
	go runSessionCleanup(cleanupCtx, sessionManager)

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func sessionPolicy(c config.Config) sessions.Policy {
	return sessions.Policy{
		Duration:        c.GetSessionDuration(),
		IdleTimeout:     c.GetSessionIdleTimeout(),
		MaxConcurrent:   c.GetMaxConcurrentSessions(),
		BindToIP:        c.GetBindSessionToIP(),
		BindToUserAgent: c.GetBindSessionToUserAgent(),
		ExtendOnAccess:  c.GetExtendSessionOnAccess(),
		CleanupOnCheck:  c.GetCleanupOnValidate(),
	}
}

// runSessionCleanup purges expired and inactive sessions on a fixed interval
// until the context is cancelled.
func runSessionCleanup(ctx context.Context, manager *sessions.Manager) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := manager.CleanupExpired(ctx); err != nil {
				log.Err(err).Msg("Session cleanup failed")
			}
		}
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
