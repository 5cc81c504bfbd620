package middleware

import (
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/indokarya/registration-portal/cmd/server/internal/response"
	"github.com/indokarya/registration-portal/internal/session"
)

const name string = "github.com/indokarya/registration-portal/server/middleware"

var tracer = otel.Tracer(name)

// Name of the session cookie set on login.
const SessionCookie = "portal_session"

const userContextKey = "user"

// CurrentUser returns the username attached by WithSession or
// RequireSession.
func CurrentUser(c echo.Context) (string, bool) {
	user, ok := c.Get(userContextKey).(string)
	return user, ok
}

func resolve(c echo.Context, sessions *session.Manager) (string, bool) {
	cookie, err := c.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return sessions.Validate(cookie.Value)
}

// WithSession attaches the username for a valid session cookie and lets the
// request through either way. Handlers whose output merely differs by role
// use this.
func WithSession(sessions *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			_, span := tracer.Start(c.Request().Context(), "WithSession")
			defer span.End()

			if user, ok := resolve(c, sessions); ok {
				c.Set(userContextKey, user)
				span.AddEvent("resolved session")
			}

			span.SetStatus(codes.Ok, "resolved optional session")
			return next(c)
		}
	}
}

// RequireSession rejects the request before the handler runs unless the
// session cookie validates. No side effect happens on the gated path without
// a live session.
func RequireSession(sessions *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			_, span := tracer.Start(c.Request().Context(), "RequireSession")
			defer span.End()

			user, ok := resolve(c, sessions)
			if !ok {
				span.SetStatus(codes.Ok, "missing or expired session")
				return response.UnauthorizedError
			}

			c.Set(userContextKey, user)

			span.SetStatus(codes.Ok, "session validated")
			return next(c)
		}
	}
}
