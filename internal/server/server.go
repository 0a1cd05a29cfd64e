// Package server wires the HTTP transport: Slack webhook endpoints,
// observability routes and middleware.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/slack-go/slack"

	"github.com/Ted0011/slack-app-rating/internal/config"
	"github.com/Ted0011/slack-app-rating/internal/domain"
	apperrors "github.com/Ted0011/slack-app-rating/internal/errors"
)

// authTester is the slice of *slack.Client used by the readiness probe.
type authTester interface {
	AuthTestContext(ctx context.Context) (*slack.AuthTestResponse, error)
}

// webhookResponder posts an asynchronous message to a Slack response_url.
// Swappable in tests; defaults to slack.PostWebhookContext.
type webhookResponder func(ctx context.Context, url string, msg *slack.WebhookMessage) error

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	app       domain.RatingService
	auth      authTester
	respond   webhookResponder
	startTime time.Time
}

func NewServer(cfg *config.Config, app domain.RatingService, auth authTester) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(correlationMiddleware())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:      e,
		config:    cfg,
		app:       app,
		auth:      auth,
		respond:   slack.PostWebhookContext,
		startTime: time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
