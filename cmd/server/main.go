package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	goslack "github.com/slack-go/slack"

	"github.com/Ted0011/slack-app-rating/internal/admission"
	"github.com/Ted0011/slack-app-rating/internal/app"
	"github.com/Ted0011/slack-app-rating/internal/config"
	"github.com/Ted0011/slack-app-rating/internal/logging"
	"github.com/Ted0011/slack-app-rating/internal/registry"
	"github.com/Ted0011/slack-app-rating/internal/server"
	"github.com/Ted0011/slack-app-rating/internal/slack"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func verifySlackAuth(client *goslack.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	identity, err := client.AuthTestContext(ctx)
	if err != nil {
		slog.Error("Slack auth check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Slack auth verified", "bot_user", identity.User, "team", identity.Team)
}

func runGracefulShutdown(srv *server.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	client := goslack.New(cfg.SlackBotToken)
	verifySlackAuth(client)

	gateway := slack.NewGateway(client, clock)
	requests := registry.New(clock)
	admissionCtrl := admission.New(clock, cfg.RateLimitMaxRequests, cfg.RateLimitWindow)

	appSvc := app.NewService(requests, admissionCtrl, gateway)

	srv := server.NewServer(cfg, appSvc, client)
	done := runGracefulShutdown(srv)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
