package api

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/indokarya/registration-portal/cmd/server/internal/response"
	"github.com/indokarya/registration-portal/internal/audit"
	"github.com/indokarya/registration-portal/internal/logger"
	"github.com/indokarya/registration-portal/internal/types"
)

// 10 MiB cap on the file part; the route's body limit sits just above it.
const maxUploadBytes = 10 << 20

// Upload accepts a public multipart submission: the four free-text fields
// plus exactly one file part. The file lands in the upload directory under a
// generated name before the record is appended; if the append fails the
// orphaned file is tolerated and the caller gets a structured failure.
func (h *Handler) Upload(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Upload")
	defer span.End()

	file, err := c.FormFile("file")
	if err != nil {
		span.SetStatus(codes.Ok, "missing file part")
		return echo.NewHTTPError(
			http.StatusBadRequest,
			types.Error{Message: "validation error", Fields: &map[string]string{
				"file": "a file is required",
			}},
		)
	}

	if file.Size > maxUploadBytes {
		span.SetStatus(codes.Ok, "file too large")
		return echo.NewHTTPError(
			http.StatusRequestEntityTooLarge,
			types.Error{Message: "validation error", Fields: &map[string]string{
				"file": "must be <= 10 MiB",
			}},
		)
	}

	id := uuid.NewString()
	storedName := id + filepath.Ext(file.Filename)

	span.SetAttributes(
		attribute.String("record.id", id),
		attribute.String("artifact", storedName),
		attribute.Int64("size", file.Size),
	)

	src, err := file.Open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open uploaded file")
		logger.Logger.ErrorContext(ctx, "failed to open uploaded file", "error", err)
		return response.InternalServerError
	}
	defer src.Close()

	if _, err := h.Files.Save(ctx, storedName, src); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to store artifact")
		logger.Logger.ErrorContext(ctx, "failed to store artifact", "error", err)
		return response.InternalServerError
	}

	record := types.SubmissionRecord{
		ID:                  id,
		Name:                c.FormValue("name"),
		SchoolOrigin:        c.FormValue("schoolOrigin"),
		CompetitionCategory: c.FormValue("competitionCategory"),
		Level:               c.FormValue("level"),
		File:                storedName,
		UploadedAt:          time.Now().UTC().Format(types.UploadedAtFormat),
	}

	if err := h.Records.Append(ctx, record); err != nil {
		// the artifact file is orphaned; tolerated, the record never existed
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to append record")
		logger.Logger.ErrorContext(ctx, "failed to append record",
			"error", err, "artifact", storedName)
		return response.InternalServerError
	}

	logger.Logger.InfoContext(ctx, "stored submission",
		"id", record.ID, "artifact", record.File)
	audit.LogSubmissionCreated(record)

	span.SetStatus(codes.Ok, "stored submission")
	return c.JSON(http.StatusOK, types.UploadResponse{Success: true, Item: &record})
}
