package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"weatherdash/internal/core"
	"weatherdash/internal/types"
)

// ClimateServiceInterface defines the service contract for the historical
// climate handler. Defined locally to avoid tight coupling to the climate
// package.
type ClimateServiceInterface interface {
	GetDailyHistory(ctx context.Context, city string, start, end time.Time) (*types.ClimateHistory, error)
}

// ClimateHandler maps HTTP requests to the historical climate path.
type ClimateHandler struct {
	service   ClimateServiceInterface
	validator *core.Validator
	logger    *slog.Logger
}

// NewClimateHandler creates a ClimateHandler with the provided dependencies.
func NewClimateHandler(
	svc ClimateServiceInterface,
	val *core.Validator,
	logger *slog.Logger,
) *ClimateHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClimateHandler{
		service:   svc,
		validator: val,
		logger:    logger,
	}
}

// RegisterRoutes mounts the climate endpoints onto the mux.
func (h *ClimateHandler) RegisterRoutes(r chi.Router) {
	r.Get("/climate/daily", h.HandleDailyHistory)
}

// climateQuery is the bound query parameter set for the daily history
// endpoint. Presence and size are checked here; the date format and range
// rules live with the types parsing helpers and the service.
type climateQuery struct {
	City  string `validate:"required,max=120"`
	Start string `validate:"required"`
	End   string `validate:"required"`
}

// HandleDailyHistory handles GET /v1/climate/daily.
//
//	GET /v1/climate/daily?city=Johannesburg&start=2023-01-01&end=2023-12-31
//
// Returns the filtered daily climate series with the sunrise/sunset
// enrichment; soft enrichment failures travel as meta warnings rather than
// failing the request.
func (h *ClimateHandler) HandleDailyHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := climateQuery{
		City:  q.Get("city"),
		Start: q.Get("start"),
		End:   q.Get("end"),
	}
	if err := h.validator.ValidateStruct(query); err != nil {
		core.Error(w, r, err)
		return
	}

	start, err := types.ParseClimateDate(query.Start)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	end, err := types.ParseClimateDate(query.End)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	history, err := h.service.GetDailyHistory(r.Context(), query.City, start, end)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	resp := core.APIResponse{Data: history}
	if len(history.Warnings) > 0 {
		resp.Meta = &types.ResponseMeta{Warnings: history.Warnings}
	}
	core.JSON(w, r, http.StatusOK, resp)
}
