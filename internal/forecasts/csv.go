package forecasts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/klauspost/compress/gzip"

	"weatherdash/internal/types"
)

// Download filenames offered to export consumers.
const (
	CSVFilename     = "weather_forecast.csv"
	CSVFilenameGzip = "weather_forecast.csv.gz"
)

// ExportCSV writes the hourly forecast table for a normalized series. One
// row per sample: local datetime, temperature in the render unit, humidity,
// wind speed, description, icon code, and the sample's calendar date. When
// compressed is true the output is gzip-wrapped for download.
func ExportCSV(w io.Writer, points []types.NormalizedForecastPoint, unit types.Unit, compressed bool) error {
	if !compressed {
		return writeCSV(w, points, unit)
	}
	gz := gzip.NewWriter(w)
	if err := writeCSV(gz, points, unit); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}

// writeCSV renders the table itself.
func writeCSV(w io.Writer, points []types.NormalizedForecastPoint, unit types.Unit) error {
	cw := csv.NewWriter(w)
	header := []string{
		"Datetime",
		fmt.Sprintf("Temperature (%s)", unit.Symbol()),
		"Humidity (%)",
		"Wind Speed (m/s)",
		"Description",
		"Weather Icon",
		"Date",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range points {
		row := []string{
			p.Timestamp.Format(time.DateTime),
			formatValue(p.Temperature),
			formatValue(p.Humidity),
			formatValue(p.WindSpeed),
			p.Description,
			p.Icon,
			p.Timestamp.Format(time.DateOnly),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatValue renders a numeric cell in the shortest exact decimal form, so
// integral values carry no trailing ".0".
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
