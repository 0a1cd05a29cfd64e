package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints (no signature check)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/version", s.handleVersion)

	// Slack webhooks - every request must carry a valid signature
	s.echo.POST("/slack/commands", s.handleSlashCommand, s.verifySignature)
	s.echo.POST("/slack/interactions", s.handleInteraction, s.verifySignature)
}
