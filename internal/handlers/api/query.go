package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"plangenie/internal/catalog"
	"plangenie/internal/governor"
	"plangenie/internal/middleware"
	"plangenie/internal/models"
	"plangenie/internal/validation"
)

// GenericErrorMessage is returned for failures that must not leak detail.
const GenericErrorMessage = "Sorry, a server error occurred."

// Querier runs one query turn.
type Querier interface {
	Query(ctx context.Context, client string, req models.QueryRequest) (*models.QueryResponse, error)
}

// QueryHandler serves POST /query.
type QueryHandler struct {
	pipeline Querier
	logger   *zap.Logger
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(pipeline Querier, logger *zap.Logger) *QueryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryHandler{pipeline: pipeline, logger: logger}
}

// Query answers a free-text plan question.
func (h *QueryHandler) Query(c fiber.Ctx) error {
	var req models.QueryRequest
	if err := c.Bind().JSON(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	req.Text = validation.NormalizeQueryText(req.Text)
	if valid, msg := validation.ValidateQueryText(req.Text); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	resp, err := h.pipeline.Query(c.Context(), middleware.ClientID(c), req)
	if err != nil {
		return h.queryError(c, err)
	}
	return jsonSuccess(c, resp)
}

func (h *QueryHandler) queryError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, governor.ErrEmptyQuery):
		return jsonError(c, fiber.StatusBadRequest, "Query text is required")
	case errors.Is(err, governor.ErrRateLimited):
		return jsonError(c, fiber.StatusTooManyRequests, "Rate limit exceeded. Please wait.")
	case errors.Is(err, catalog.ErrCatalogUnavailable):
		return jsonCatalogUnavailable(c)
	default:
		h.logger.Error("query failed", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, GenericErrorMessage)
	}
}
