package climate

import (
	"context"
	"errors"
	"testing"
	"time"

	"weatherdash/internal/types"
)

// --- Mock Dependencies ---

type mockGeocoder struct {
	loc   types.Location
	err   error
	calls int
}

func (m *mockGeocoder) Geocode(_ context.Context, _ string) (types.Location, error) {
	m.calls++
	if m.err != nil {
		return types.Location{}, m.err
	}
	return m.loc, nil
}

type mockSun struct {
	times types.SunTimes
	err   error
}

func (m *mockSun) Times(_ context.Context, _, _ float64) (types.SunTimes, error) {
	if m.err != nil {
		return types.SunTimes{}, m.err
	}
	return m.times, nil
}

type mockArchive struct {
	days  []types.ClimateDay
	err   error
	calls int
}

func (m *mockArchive) DailyArchive(_ context.Context, _, _ float64) ([]types.ClimateDay, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.days, nil
}

// --- Helpers ---

func archiveDays(dates ...string) []types.ClimateDay {
	days := make([]types.ClimateDay, 0, len(dates))
	for _, d := range dates {
		days = append(days, types.ClimateDay{
			Date:            d,
			TemperatureC:    20,
			PrecipitationMM: 1.5,
			Humidity:        60,
		})
	}
	return days
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.DateOnly, value)
	if err != nil {
		t.Fatalf("bad test date %q: %v", value, err)
	}
	return parsed
}

func testService(geocoder *mockGeocoder, sun *mockSun, archive *mockArchive) ClimateService {
	return NewClimateService(geocoder, sun, archive, nil)
}

// --- Tests ---

func TestGetDailyHistory_Success(t *testing.T) {
	sunrise := time.Date(2026, 3, 14, 4, 12, 33, 0, time.UTC)
	geocoder := &mockGeocoder{loc: types.Location{Name: "Johannesburg", Lat: -26.2, Lon: 28.04}}
	sun := &mockSun{times: types.SunTimes{Sunrise: sunrise, Sunset: sunrise.Add(12 * time.Hour)}}
	archive := &mockArchive{days: archiveDays("2022-01-01", "2022-01-02", "2022-01-03")}
	svc := testService(geocoder, sun, archive)

	history, err := svc.GetDailyHistory(context.Background(), "Johannesburg",
		mustDate(t, "2022-01-01"), mustDate(t, "2024-12-31"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if history.Location.Name != "Johannesburg" {
		t.Errorf("unexpected location %+v", history.Location)
	}
	if history.Sun == nil || !history.Sun.Sunrise.Equal(sunrise) {
		t.Errorf("unexpected sun block %+v", history.Sun)
	}
	if len(history.Days) != 3 {
		t.Errorf("expected 3 days, got %d", len(history.Days))
	}
	if len(history.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", history.Warnings)
	}
}

func TestGetDailyHistory_SunFailureIsSoft(t *testing.T) {
	geocoder := &mockGeocoder{loc: types.Location{Lat: -26.2, Lon: 28.04}}
	sun := &mockSun{err: types.NewAppError(types.ErrCodeDataUnavailable, "Could not fetch sunrise/sunset data.", nil)}
	archive := &mockArchive{days: archiveDays("2022-01-01")}
	svc := testService(geocoder, sun, archive)

	history, err := svc.GetDailyHistory(context.Background(), "Johannesburg",
		mustDate(t, "2022-01-01"), mustDate(t, "2024-12-31"))
	if err != nil {
		t.Fatalf("expected the render to survive a sun failure, got %v", err)
	}

	if history.Sun != nil {
		t.Errorf("expected no sun block, got %+v", history.Sun)
	}
	if len(history.Warnings) != 1 || history.Warnings[0] != "Could not fetch sunrise/sunset data." {
		t.Errorf("unexpected warnings %v", history.Warnings)
	}
	if len(history.Days) != 1 {
		t.Errorf("expected the archive to load despite the warning, got %d days", len(history.Days))
	}
}

// The range filter keeps both endpoints.
func TestGetDailyHistory_InclusiveRangeFilter(t *testing.T) {
	geocoder := &mockGeocoder{loc: types.Location{Lat: -26.2, Lon: 28.04}}
	sun := &mockSun{}
	archive := &mockArchive{days: archiveDays(
		"2022-06-01", "2022-06-02", "2022-06-03", "2022-06-04", "2022-06-05")}
	svc := testService(geocoder, sun, archive)

	history, err := svc.GetDailyHistory(context.Background(), "Johannesburg",
		mustDate(t, "2022-06-02"), mustDate(t, "2022-06-04"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(history.Days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(history.Days))
	}
	if history.Days[0].Date != "2022-06-02" || history.Days[2].Date != "2022-06-04" {
		t.Errorf("unexpected bounds %s .. %s", history.Days[0].Date, history.Days[2].Date)
	}
}

func TestGetDailyHistory_GeocodeFailureIsFatal(t *testing.T) {
	geocoder := &mockGeocoder{err: types.NewAppError(types.ErrCodeNotFoundCity, "City not found.", nil)}
	archive := &mockArchive{days: archiveDays("2022-01-01")}
	svc := testService(geocoder, &mockSun{}, archive)

	_, err := svc.GetDailyHistory(context.Background(), "Atlantis",
		mustDate(t, "2022-01-01"), mustDate(t, "2024-12-31"))
	if err == nil {
		t.Fatal("expected error")
	}

	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != types.ErrCodeNotFoundCity {
		t.Errorf("expected error code %s, got %s", types.ErrCodeNotFoundCity, appErr.Code)
	}
	if archive.calls != 0 {
		t.Errorf("expected no archive fetch after geocode failure, got %d", archive.calls)
	}
}

func TestGetDailyHistory_ArchiveFailureIsFatal(t *testing.T) {
	geocoder := &mockGeocoder{loc: types.Location{Lat: -26.2, Lon: 28.04}}
	archive := &mockArchive{err: types.NewAppError(types.ErrCodeUpstreamMalformed, "Data not found.", nil)}
	svc := testService(geocoder, &mockSun{}, archive)

	_, err := svc.GetDailyHistory(context.Background(), "Johannesburg",
		mustDate(t, "2022-01-01"), mustDate(t, "2024-12-31"))
	if err == nil {
		t.Fatal("expected error")
	}

	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != types.ErrCodeUpstreamMalformed {
		t.Errorf("expected error code %s, got %s", types.ErrCodeUpstreamMalformed, appErr.Code)
	}
}

func TestGetDailyHistory_RangeValidation(t *testing.T) {
	cases := []struct {
		name  string
		start string
		end   string
	}{
		{"swapped bounds", "2023-06-15", "2023-06-01"},
		{"before window", "2021-12-31", "2022-06-01"},
		{"after window", "2024-01-01", "2025-01-01"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			geocoder := &mockGeocoder{loc: types.Location{Lat: -26.2, Lon: 28.04}}
			svc := testService(geocoder, &mockSun{}, &mockArchive{})

			_, err := svc.GetDailyHistory(context.Background(), "Johannesburg",
				mustDate(t, tc.start), mustDate(t, tc.end))
			if err == nil {
				t.Fatal("expected error")
			}

			var appErr *types.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("expected AppError, got %T", err)
			}
			if appErr.Code != types.ErrCodeValidationDateRange {
				t.Errorf("expected error code %s, got %s", types.ErrCodeValidationDateRange, appErr.Code)
			}
			if geocoder.calls != 0 {
				t.Errorf("expected no geocode call, got %d", geocoder.calls)
			}
		})
	}
}

// Provider fill values ride through the filter untouched.
func TestGetDailyHistory_FillValuesPassThrough(t *testing.T) {
	geocoder := &mockGeocoder{loc: types.Location{Lat: -26.2, Lon: 28.04}}
	archive := &mockArchive{days: []types.ClimateDay{
		{Date: "2022-01-01", TemperatureC: -999, PrecipitationMM: -999, Humidity: -999},
	}}
	svc := testService(geocoder, &mockSun{}, archive)

	history, err := svc.GetDailyHistory(context.Background(), "Johannesburg",
		mustDate(t, "2022-01-01"), mustDate(t, "2022-01-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(history.Days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(history.Days))
	}
	if history.Days[0].TemperatureC != -999 {
		t.Errorf("expected fill value to pass through, got %v", history.Days[0].TemperatureC)
	}
}
