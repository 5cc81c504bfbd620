package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	servermiddleware "github.com/indokarya/registration-portal/cmd/server/internal/middleware"
	"github.com/indokarya/registration-portal/cmd/server/internal/response"
	"github.com/indokarya/registration-portal/internal/audit"
	"github.com/indokarya/registration-portal/internal/logger"
	"github.com/indokarya/registration-portal/internal/types"
	"github.com/indokarya/registration-portal/internal/view"
)

// visible returns the record set the caller is allowed to see, newest
// first. Admin sessions see everything; the public view is capped at the
// most recent public_list_limit records with the identical field set.
func (h *Handler) visible(c echo.Context) ([]types.SubmissionRecord, error) {
	records, err := h.Records.List(c.Request().Context())
	if err != nil {
		return nil, err
	}

	if _, admin := servermiddleware.CurrentUser(c); !admin {
		records = view.Tail(records, h.Config.PublicListLimit)
	}

	return view.NewestFirst(records), nil
}

func (h *Handler) List(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "List")
	defer span.End()

	records, err := h.visible(c)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list records")
		logger.Logger.ErrorContext(ctx, "failed to list records", "error", err)
		return response.InternalServerError
	}

	if q := c.QueryParam("q"); q != "" {
		records = view.FilterQuery(records, q)
	}

	if records == nil {
		records = []types.SubmissionRecord{}
	}

	span.SetAttributes(attribute.Int("records", len(records)))
	span.SetStatus(codes.Ok, "listed records")
	return c.JSON(http.StatusOK, records)
}

func (h *Handler) Item(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Item")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("record.id", id))

	records, err := h.visible(c)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list records")
		logger.Logger.ErrorContext(ctx, "failed to list records", "error", err)
		return response.InternalServerError
	}

	record := view.Find(records, id)
	if record == nil {
		span.SetStatus(codes.Ok, "record not found")
		return response.NotFoundError
	}

	span.SetStatus(codes.Ok, "found record")
	return c.JSON(http.StatusOK, record)
}

// Stats feeds the admin dashboard: the distinct categories for the filter
// dropdown (always over the full set) and the level histogram for the bar
// chart, computed over the optionally category-filtered set.
func (h *Handler) Stats(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Stats")
	defer span.End()

	records, err := h.Records.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list records")
		logger.Logger.ErrorContext(ctx, "failed to list records", "error", err)
		return response.InternalServerError
	}

	resp := types.StatsResponse{
		Categories: view.Categories(records),
		Levels:     view.LevelHistogram(view.FilterCategory(records, c.QueryParam("category"))),
	}

	span.SetStatus(codes.Ok, "computed stats")
	return c.JSON(http.StatusOK, resp)
}

// Delete is idempotent: the record goes first, then its artifact file (a
// file already gone is fine), and an unknown id still reports success.
func (h *Handler) Delete(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Delete")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("record.id", id))

	removed, err := h.Records.Remove(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to remove record")
		logger.Logger.ErrorContext(ctx, "failed to remove record", "error", err)
		return response.InternalServerError
	}

	if removed != nil {
		if err := h.Files.Remove(ctx, removed.File); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to remove artifact")
			logger.Logger.ErrorContext(ctx, "failed to remove artifact",
				"error", err, "artifact", removed.File)
			return response.InternalServerError
		}

		user, _ := servermiddleware.CurrentUser(c)
		logger.Logger.InfoContext(ctx, "deleted submission",
			"id", id, "artifact", removed.File, "by", user)
		audit.LogSubmissionDeleted(user, id, removed.File)
	}

	span.SetStatus(codes.Ok, "deleted")
	return c.JSON(http.StatusOK, types.StatusResponse{Success: true})
}
