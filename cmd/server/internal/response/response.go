package response

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/indokarya/registration-portal/internal/types"
)

// Storage and I/O failures surface as the generic message only; detail goes
// to the log, never to the caller.
var (
	InternalServerError = echo.NewHTTPError(
		http.StatusInternalServerError,
		types.StringError("something went wrong"),
	)
	NotFoundError     = echo.NewHTTPError(http.StatusNotFound, types.StringError("not found"))
	UnauthorizedError = echo.NewHTTPError(http.StatusUnauthorized, types.StringError("Unauthorized"))
)
