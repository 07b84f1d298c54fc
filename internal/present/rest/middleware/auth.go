package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/questlog/questd/internal/domain"
	"github.com/questlog/questd/internal/present/rest/presenter"
	"github.com/questlog/questd/internal/service"
)

var tracer = otel.Tracer("auth")

type AuthMiddleware struct {
	sessions *service.SessionService
}

func NewAuthMiddleware(sessions *service.SessionService) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// RequireSession resolves the bearer token to an account and stashes the
// requester ID in the request context. Requests without a valid session are
// rejected before reaching the handler.
func (m *AuthMiddleware) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.RequireSession")
		defer span.End()

		authHeader := c.Request().Header.Get("authorization")
		split := strings.Split(authHeader, " ")
		if len(split) != 2 || split[0] != "Bearer" {
			return presenter.Unauthorized(c, "missing or malformed authorization header")
		}
		token := split[1]

		accountID, err := m.sessions.Resolve(ctx, token)
		if err != nil {
			span.RecordError(errors.Wrap(err, "resolving session"))
			return presenter.Unauthorized(c, "invalid session")
		}

		ctx = context.WithValue(ctx, domain.RequesterIDCtxKey, accountID)
		ctx = context.WithValue(ctx, domain.SessionTokenCtxKey, token)
		span.SetAttributes(attribute.String("RequesterId", accountID))

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
