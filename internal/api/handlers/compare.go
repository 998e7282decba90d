package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"weatherdash/internal/core"
	"weatherdash/internal/types"
)

// CompareServiceInterface defines the service contract for the comparison
// handler. Defined locally to avoid tight coupling to the compare package.
type CompareServiceInterface interface {
	Compare(ctx context.Context, city1, city2 string) (*types.ComparisonSet, error)
	GetCurrent(ctx context.Context, city string, unit types.Unit) (*types.CurrentConditions, error)
}

// CompareHandler maps HTTP requests to the comparison and current-conditions
// paths.
type CompareHandler struct {
	service   CompareServiceInterface
	validator *core.Validator
	logger    *slog.Logger
}

// NewCompareHandler creates a CompareHandler with the provided dependencies.
func NewCompareHandler(
	svc CompareServiceInterface,
	val *core.Validator,
	logger *slog.Logger,
) *CompareHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CompareHandler{
		service:   svc,
		validator: val,
		logger:    logger,
	}
}

// RegisterRoutes mounts the comparison and current-conditions endpoints.
func (h *CompareHandler) RegisterRoutes(r chi.Router) {
	r.Get("/current", h.HandleGetCurrent)
	r.Get("/compare", h.HandleCompare)
}

// compareQuery is the bound two-city query parameter set.
type compareQuery struct {
	City1 string `validate:"required,max=120"`
	City2 string `validate:"required,max=120"`
}

// HandleGetCurrent handles GET /v1/current.
//
//	GET /v1/current?city=Johannesburg&unit=celsius
//
// Returns one city's current conditions in the requested unit.
func (h *CompareHandler) HandleGetCurrent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	unit, err := types.ParseUnit(q.Get("unit"))
	if err != nil {
		core.Error(w, r, err)
		return
	}

	current, err := h.service.GetCurrent(r.Context(), q.Get("city"), unit)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: current})
}

// HandleCompare handles GET /v1/compare.
//
//	GET /v1/compare?city1=Johannesburg&city2=Cape%20Town
//
// Composes the two-city comparison set. The comparison is metric-only by
// design, so no unit parameter is accepted. A failure fetching either city
// surfaces as one aggregate compare_incomplete error.
func (h *CompareHandler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := compareQuery{
		City1: q.Get("city1"),
		City2: q.Get("city2"),
	}
	if err := h.validator.ValidateStruct(query); err != nil {
		core.Error(w, r, err)
		return
	}

	set, err := h.service.Compare(r.Context(), query.City1, query.City2)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: set})
}
