package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	servermiddleware "github.com/indokarya/registration-portal/cmd/server/internal/middleware"
	"github.com/indokarya/registration-portal/cmd/server/internal/response"
	"github.com/indokarya/registration-portal/internal/audit"
	"github.com/indokarya/registration-portal/internal/logger"
	"github.com/indokarya/registration-portal/internal/types"
)

// One generic failure for unknown usernames and wrong passwords alike, so
// the endpoint cannot be used to enumerate accounts.
const loginFailedMessage = "invalid credentials"

func (h *Handler) Login(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Login")
	defer span.End()

	type requestData struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	var rdata requestData

	err := c.Bind(&rdata)
	if err != nil {
		span.SetStatus(codes.Ok, "malformed request body")
		return echo.NewHTTPError(
			http.StatusBadRequest,
			types.StringError("failed parsing request data"),
		)
	}

	err = c.Validate(rdata)
	if err != nil {
		span.SetStatus(codes.Ok, "validation failed")
		return echo.NewHTTPError(http.StatusBadRequest, types.ValidationError(err))
	}

	span.SetAttributes(attribute.String("username", rdata.Username))

	ok, err := h.Creds.Verify(ctx, rdata.Username, rdata.Password)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to verify credentials")
		logger.Logger.ErrorContext(ctx, "credential verification failed", "error", err)
		return response.InternalServerError
	}

	if !ok {
		span.AddEvent("failed login attempt")
		span.SetStatus(codes.Ok, "rejected login")
		logger.Logger.InfoContext(ctx, "rejected login", "username", rdata.Username)
		audit.LogLoginFailed(rdata.Username)
		return c.JSON(http.StatusOK, types.StatusResponse{
			Success: false,
			Message: loginFailedMessage,
		})
	}

	token := h.Sessions.Create(rdata.Username)

	c.SetCookie(&http.Cookie{
		Name:     servermiddleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.Config.SessionTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	span.AddEvent("successful login attempt")
	span.SetStatus(codes.Ok, "logged in")
	logger.Logger.InfoContext(ctx, "successful login", "username", rdata.Username)
	audit.LogLoginSucceeded(rdata.Username)

	return c.JSON(http.StatusOK, types.StatusResponse{Success: true})
}

func (h *Handler) Logout(c echo.Context) error {
	_, span := tracer.Start(c.Request().Context(), "Logout")
	defer span.End()

	if cookie, err := c.Cookie(servermiddleware.SessionCookie); err == nil {
		h.Sessions.Destroy(cookie.Value)
	}

	c.SetCookie(&http.Cookie{
		Name:     servermiddleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	span.SetStatus(codes.Ok, "logged out")
	return c.JSON(http.StatusOK, types.StatusResponse{Success: true})
}

func (h *Handler) CheckAuth(c echo.Context) error {
	_, span := tracer.Start(c.Request().Context(), "CheckAuth")
	defer span.End()

	user, ok := servermiddleware.CurrentUser(c)
	if !ok {
		span.SetStatus(codes.Ok, "no session")
		return c.JSON(http.StatusOK, types.CheckAuthResponse{Authenticated: false})
	}

	span.SetStatus(codes.Ok, "session present")
	return c.JSON(http.StatusOK, types.CheckAuthResponse{
		Authenticated: true,
		User:          &types.AuthUser{Username: user},
	})
}
