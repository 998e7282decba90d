// Package handlers contains the HTTP handler implementations for the
// weatherdash API. Each handler binds query parameters, delegates to its
// domain service, and renders the standard response envelope. Handlers own
// no business logic: everything they expose is a thin mapping onto the
// service interfaces they declare locally.
package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"weatherdash/internal/core"
	"weatherdash/internal/forecasts"
	"weatherdash/internal/types"
)

// ForecastServiceInterface defines the service contract for the forecast
// handler. Matches the ForecastService interface from the forecasts package
// but is defined locally to avoid tight coupling per the handler injection
// pattern.
type ForecastServiceInterface interface {
	GetForecast(ctx context.Context, city string, days int, unit types.Unit) (*types.ForecastBundle, error)
}

// ForecastHandler maps HTTP requests to the forecast pipeline.
type ForecastHandler struct {
	service   ForecastServiceInterface
	validator *core.Validator
	logger    *slog.Logger
}

// NewForecastHandler creates a ForecastHandler with the provided dependencies.
func NewForecastHandler(
	svc ForecastServiceInterface,
	val *core.Validator,
	logger *slog.Logger,
) *ForecastHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ForecastHandler{
		service:   svc,
		validator: val,
		logger:    logger,
	}
}

// RegisterRoutes mounts the forecast endpoints onto the mux.
func (h *ForecastHandler) RegisterRoutes(r chi.Router) {
	r.Get("/forecast", h.HandleGetForecast)
	r.Get("/forecast/export", h.HandleExportCSV)
}

// forecastQuery is the bound and validated query parameter set shared by the
// forecast endpoints.
type forecastQuery struct {
	City string
	Days int
	Unit types.Unit
}

// bindForecastQuery parses city, days, and unit from the query string,
// applying the documented defaults (days 3, unit celsius).
func bindForecastQuery(r *http.Request) (forecastQuery, error) {
	q := r.URL.Query()

	query := forecastQuery{
		City: q.Get("city"),
		Days: types.DefaultForecastDays,
	}

	if daysStr := q.Get("days"); daysStr != "" {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return forecastQuery{}, types.NewAppError(types.ErrCodeValidationInvalidDays,
				"days must be an integer", err)
		}
		query.Days = days
	}

	unit, err := types.ParseUnit(q.Get("unit"))
	if err != nil {
		return forecastQuery{}, err
	}
	query.Unit = unit

	return query, nil
}

// HandleGetForecast handles GET /v1/forecast.
//
//	GET /v1/forecast?city=Johannesburg&days=3&unit=celsius
//
// Runs the full pipeline (geocode, fetch, normalize, aggregate, alerts)
// and returns the ForecastBundle in the standard envelope. Range and
// presence validation is owned by the service, which is the single source
// of the validation error codes.
func (h *ForecastHandler) HandleGetForecast(w http.ResponseWriter, r *http.Request) {
	query, err := bindForecastQuery(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	bundle, err := h.service.GetForecast(r.Context(), query.City, query.Days, query.Unit)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: bundle})
}

// HandleExportCSV handles GET /v1/forecast/export.
//
//	GET /v1/forecast/export?city=Johannesburg&days=3&unit=celsius&compress=gzip
//
// Runs the same pipeline as HandleGetForecast and streams the hourly table
// as a CSV download; compress=gzip wraps the body and switches the filename.
func (h *ForecastHandler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	query, err := bindForecastQuery(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	compressed := false
	switch r.URL.Query().Get("compress") {
	case "":
	case "gzip":
		compressed = true
	default:
		core.Error(w, r, types.NewAppError(types.ErrCodeValidationInvalidQuery,
			`compress must be "gzip" or omitted`, nil))
		return
	}

	bundle, err := h.service.GetForecast(r.Context(), query.City, query.Days, query.Unit)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	filename := forecasts.CSVFilename
	contentType := "text/csv"
	if compressed {
		filename = forecasts.CSVFilenameGzip
		contentType = "application/gzip"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	// Headers are already on the wire; a mid-stream failure can only be
	// logged, not surfaced as an error response.
	if err := forecasts.ExportCSV(w, bundle.Points, bundle.Unit, compressed); err != nil {
		h.logger.ErrorContext(r.Context(), "csv export write failed",
			"city", query.City,
			"error", err,
		)
	}
}
