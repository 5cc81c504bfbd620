package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	servermiddleware "github.com/indokarya/registration-portal/cmd/server/internal/middleware"
	"github.com/indokarya/registration-portal/cmd/server/internal/response"
	"github.com/indokarya/registration-portal/internal/archive"
	"github.com/indokarya/registration-portal/internal/audit"
	"github.com/indokarya/registration-portal/internal/logger"
	"github.com/indokarya/registration-portal/internal/view"
)

// DownloadZip streams every artifact the record store references into one
// zip. Files missing on disk are skipped, not errors.
func (h *Handler) DownloadZip(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "DownloadZip")
	defer span.End()

	records, err := h.Records.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list records")
		logger.Logger.ErrorContext(ctx, "failed to list records", "error", err)
		return response.InternalServerError
	}

	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.File
	}

	span.SetAttributes(attribute.Int("files", len(names)))

	c.Response().Header().Set(echo.HeaderContentType, "application/zip")
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=uploads.zip")
	c.Response().WriteHeader(http.StatusOK)

	if err := archive.WriteZip(ctx, c.Response(), h.Files.Dir(), names); err != nil {
		// headers are gone already; all we can do is log and cut the stream
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write archive")
		logger.Logger.ErrorContext(ctx, "failed to write archive", "error", err)
		return err
	}

	user, _ := servermiddleware.CurrentUser(c)
	logger.Logger.InfoContext(ctx, "exported zip archive", "files", len(names), "by", user)
	audit.LogArchiveExported(user, len(names))

	span.SetStatus(codes.Ok, "streamed archive")
	return nil
}

// ExportCSV renders the currently displayed admin set (optionally category
// filtered) as the dashboard's CSV download.
func (h *Handler) ExportCSV(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "ExportCSV")
	defer span.End()

	records, err := h.Records.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list records")
		logger.Logger.ErrorContext(ctx, "failed to list records", "error", err)
		return response.InternalServerError
	}

	shown := view.FilterCategory(view.NewestFirst(records), c.QueryParam("category"))

	span.SetAttributes(attribute.Int("records", len(shown)))

	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=peserta_export.csv")

	user, _ := servermiddleware.CurrentUser(c)
	audit.LogCSVExported(user, len(shown))

	span.SetStatus(codes.Ok, "exported csv")
	return c.Blob(http.StatusOK, "text/csv", []byte(view.CSV(shown)))
}
