package server

import (
	"bytes"
	"io"

	"github.com/labstack/echo/v4"
	"github.com/slack-go/slack"

	"github.com/Ted0011/slack-app-rating/internal/correlation"
	apperrors "github.com/Ted0011/slack-app-rating/internal/errors"
)

// correlationMiddleware assigns every request a correlation id so all log
// lines of one trigger can be tied together.
func correlationMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := correlation.WithID(c.Request().Context(), correlation.NewID())
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// verifySignature checks Slack's request signature (v0 HMAC over the raw
// body, 5 minute timestamp tolerance) before any webhook handler runs.
// The body is restored so handlers can parse the form payload.
func (s *Server) verifySignature(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return apperrors.ValidationError("failed to read request body")
		}
		c.Request().Body = io.NopCloser(bytes.NewReader(body))

		verifier, err := slack.NewSecretsVerifier(c.Request().Header, s.config.SlackSigningSecret)
		if err != nil {
			return apperrors.UnauthorizedError("invalid slack signature headers").
				WithField("path", c.Request().URL.Path)
		}
		if _, err := verifier.Write(body); err != nil {
			return apperrors.InternalError("failed to verify request body", err)
		}
		if err := verifier.Ensure(); err != nil {
			return apperrors.UnauthorizedError("slack signature mismatch").
				WithField("path", c.Request().URL.Path)
		}

		return next(c)
	}
}
