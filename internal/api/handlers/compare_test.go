package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"weatherdash/internal/core"
	"weatherdash/internal/types"
)

type mockCompareService struct {
	set     *types.ComparisonSet
	current *types.CurrentConditions
	err     error

	gotCity1 string
	gotCity2 string
	gotCity  string
	gotUnit  types.Unit
}

func (m *mockCompareService) Compare(_ context.Context, city1, city2 string) (*types.ComparisonSet, error) {
	m.gotCity1 = city1
	m.gotCity2 = city2
	if m.err != nil {
		return nil, m.err
	}
	return m.set, nil
}

func (m *mockCompareService) GetCurrent(_ context.Context, city string, unit types.Unit) (*types.CurrentConditions, error) {
	m.gotCity = city
	m.gotUnit = unit
	if m.err != nil {
		return nil, m.err
	}
	return m.current, nil
}

func newCompareRouter(svc CompareServiceInterface) http.Handler {
	h := NewCompareHandler(svc, core.NewValidator(discardLogger()), discardLogger())
	r := chi.NewRouter()
	r.Route("/v1", h.RegisterRoutes)
	return r
}

func TestHandleCompare_Success(t *testing.T) {
	svc := &mockCompareService{
		set: &types.ComparisonSet{
			Records: [2]types.CityWeatherRecord{
				{City: "Johannesburg", Lat: -26.2, Lon: 28.04, Population: types.Population{Value: 2026469, Available: true}, TemperatureC: 22.0, Conditions: "clear sky"},
				{City: "Cape Town", Lat: -33.92, Lon: 18.42, Population: types.Population{Value: 433688, Available: true}, TemperatureC: 18.5, Conditions: "light rain"},
			},
			Midpoint:             types.Location{Lat: -30.06, Lon: 23.23},
			PopulationComparable: true,
		},
	}
	router := newCompareRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/compare?city1=Johannesburg&city2=Cape+Town", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotCity1 != "Johannesburg" || svc.gotCity2 != "Cape Town" {
		t.Errorf("unexpected service args: %q %q", svc.gotCity1, svc.gotCity2)
	}

	var resp struct {
		Data types.ComparisonSet `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !resp.Data.PopulationComparable {
		t.Error("expected population_comparable true")
	}
	if resp.Data.Records[1].City != "Cape Town" {
		t.Errorf("unexpected second record %+v", resp.Data.Records[1])
	}
}

func TestHandleCompare_MissingCity(t *testing.T) {
	router := newCompareRouter(&mockCompareService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/compare?city1=Johannesburg", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "validation_invalid_query") || !strings.Contains(body, "city2") {
		t.Errorf("expected city2 validation failure, got %s", body)
	}
}

func TestHandleCompare_Incomplete(t *testing.T) {
	svc := &mockCompareService{
		err: types.NewAppError(types.ErrCodeCompareIncomplete,
			"Could not fetch complete data for both cities.", nil),
	}
	router := newCompareRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/compare?city1=a&city2=b", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "compare_incomplete") {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestHandleGetCurrent_Success(t *testing.T) {
	svc := &mockCompareService{
		current: &types.CurrentConditions{
			City:        "Johannesburg",
			Lat:         -26.2,
			Lon:         28.04,
			Temperature: 71.6,
			Unit:        types.UnitFahrenheit,
			Humidity:    48,
			Conditions:  "clear sky",
			Icon:        "01d",
			IconURL:     types.IconURLLarge("01d"),
		},
	}
	router := newCompareRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/v1/current?city=Johannesburg&unit=fahrenheit", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotCity != "Johannesburg" || svc.gotUnit != types.UnitFahrenheit {
		t.Errorf("unexpected service args: %q %s", svc.gotCity, svc.gotUnit)
	}

	var resp struct {
		Data types.CurrentConditions `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Data.Temperature != 71.6 || resp.Data.Unit != types.UnitFahrenheit {
		t.Errorf("unexpected data %+v", resp.Data)
	}
}

func TestHandleGetCurrent_BadUnit(t *testing.T) {
	router := newCompareRouter(&mockCompareService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/current?city=x&unit=kelvin", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "validation_invalid_unit") {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}
