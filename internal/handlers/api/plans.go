package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"

	"plangenie/internal/catalog"
	"plangenie/internal/models"
	"plangenie/internal/ranking"
)

const (
	defaultPlansLimit = 50
	maxPlansLimit     = 500
)

// PlansHandler serves GET /api/plans, a direct filtered listing of the
// normalized catalog without any LLM involvement.
type PlansHandler struct {
	catalog CatalogState
}

// NewPlansHandler creates a new plans handler.
func NewPlansHandler(cat CatalogState) *PlansHandler {
	return &PlansHandler{catalog: cat}
}

// List accepts operator, type, budget, validity, features (comma separated),
// offset and limit query parameters.
func (h *PlansHandler) List(c fiber.Ctx) error {
	filter, err := filterFromQuery(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	offset, err := intParam(c, "offset", 0)
	if err != nil || offset < 0 {
		return jsonError(c, fiber.StatusBadRequest, "offset must be a non-negative integer")
	}
	limit, err := intParam(c, "limit", defaultPlansLimit)
	if err != nil || limit <= 0 {
		return jsonError(c, fiber.StatusBadRequest, "limit must be a positive integer")
	}
	if limit > maxPlansLimit {
		limit = maxPlansLimit
	}

	snap, err := h.catalog.EnsureFresh(c.Context())
	if err != nil {
		if errors.Is(err, catalog.ErrCatalogUnavailable) {
			return jsonCatalogUnavailable(c)
		}
		return jsonError(c, fiber.StatusInternalServerError, GenericErrorMessage)
	}

	result := ranking.Apply(snap.Plans, filter, offset, limit)
	return jsonSuccess(c, models.PlansResponse{Total: result.Total, Plans: result.Page})
}

func filterFromQuery(c fiber.Ctx) (models.Filter, error) {
	var f models.Filter
	if op := strings.ToLower(strings.TrimSpace(c.Query("operator"))); op != "" {
		if corrected, ok := models.CorrectOperator(op, nil); ok {
			op = corrected
		}
		f.Operator = &op
	}
	if typ := strings.ToLower(strings.TrimSpace(c.Query("type"))); typ != "" {
		f.Type = &typ
	}
	if raw := c.Query("budget"); raw != "" {
		budget, err := strconv.ParseFloat(raw, 64)
		if err != nil || budget <= 0 {
			return f, errors.New("budget must be a positive number")
		}
		f.Budget = &budget
	}
	if raw := c.Query("validity"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			return f, errors.New("validity must be a positive number of days")
		}
		f.Validity = &days
	}
	if raw := c.Query("features"); raw != "" {
		for _, token := range strings.Split(raw, ",") {
			if token = strings.ToLower(strings.TrimSpace(token)); token != "" {
				f.Features = append(f.Features, token)
			}
		}
	}
	return f, nil
}

func intParam(c fiber.Ctx, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
