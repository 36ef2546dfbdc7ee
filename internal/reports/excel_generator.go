package reports

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Deven107/weather-etl-pipeline/internal/models"
	"github.com/Deven107/weather-etl-pipeline/internal/pkg/logger"
)

// Generator renders a city's daily measurements and rollup into an xlsx
// workbook.
type Generator interface {
	GenerateDailyReport(
		city string,
		day time.Time,
		weather []models.WeatherRecord,
		air []models.AirQualityRecord,
		stat *models.DailyStat,
	) ([]byte, error)
}

type ExcelGenerator struct {
	logger logger.Logger
}

func NewExcelGenerator(log logger.Logger) *ExcelGenerator {
	return &ExcelGenerator{
		logger: log.WithField("component", "excel_generator"),
	}
}

func (e *ExcelGenerator) GenerateDailyReport(
	city string,
	day time.Time,
	weather []models.WeatherRecord,
	air []models.AirQualityRecord,
	stat *models.DailyStat,
) ([]byte, error) {
	e.logger.Infof("Generating daily report for %s on %s", city, day.Format("2006-01-02"))

	f := excelize.NewFile()
	defer f.Close()

	f.SetDocProps(&excelize.DocProperties{
		Title:       fmt.Sprintf("Daily Weather Report - %s", city),
		Subject:     "Weather and Air Quality",
		Creator:     "Weather ETL Pipeline",
		Description: fmt.Sprintf("Daily measurements for %s on %s", city, day.Format("2006-01-02")),
	})

	if err := e.createWeatherSheet(f, city, day, weather); err != nil {
		return nil, fmt.Errorf("failed to create weather sheet: %w", err)
	}
	if err := e.createAirQualitySheet(f, air); err != nil {
		return nil, fmt.Errorf("failed to create air quality sheet: %w", err)
	}
	if err := e.createSummarySheet(f, stat); err != nil {
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}

	f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel to buffer: %w", err)
	}

	e.logger.Infof("Generated report with %d weather and %d air quality rows", len(weather), len(air))
	return buf.Bytes(), nil
}

func (e *ExcelGenerator) createWeatherSheet(f *excelize.File, city string, day time.Time, data []models.WeatherRecord) error {
	sheetName := "Weather"
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	f.SetCellValue(sheetName, "A1", fmt.Sprintf("Weather: %s, %s", city, day.Format("2006-01-02")))
	f.MergeCell(sheetName, "A1", "J1")

	headers := []string{
		"Time (UTC)", "Temperature (°C)", "Feels Like (°C)", "Heat Index (°C)",
		"Category", "Humidity (%)", "Pressure (hPa)", "Wind (m/s)",
		"Clouds (%)", "Day Length (h)",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIdx, item := range data {
		row := rowIdx + 3
		values := []interface{}{
			item.RecordedAt.Format("15:04"),
			item.Temperature,
			item.FeelsLike,
			item.HeatIndex,
			string(item.TempCategory),
			item.Humidity,
			item.Pressure,
			item.WindSpeed,
			item.CloudsPercent,
			float64(item.DayLengthSeconds) / 3600.0,
		}
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	return f.SetColWidth(sheetName, "A", "J", 16.0)
}

func (e *ExcelGenerator) createAirQualitySheet(f *excelize.File, data []models.AirQualityRecord) error {
	sheetName := "Air Quality"
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	headers := []string{
		"Time (UTC)", "AQI", "Category",
		"PM2.5 (µg/m³)", "PM10 (µg/m³)", "NO2 (µg/m³)", "O3 (µg/m³)", "SO2 (µg/m³)", "CO (µg/m³)",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIdx, item := range data {
		row := rowIdx + 2
		values := []interface{}{
			item.RecordedAt.Format("15:04"),
			item.AQI,
			string(item.AQICategory),
			item.PM25,
			item.PM10,
			item.NO2,
			item.O3,
			item.SO2,
			item.CO,
		}
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	return f.SetColWidth(sheetName, "A", "I", 14.0)
}

func (e *ExcelGenerator) createSummarySheet(f *excelize.File, stat *models.DailyStat) error {
	sheetName := "Summary"
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	rows := []struct {
		label string
		value interface{}
	}{
		{"Average Temperature (°C)", floatOrEmpty(nil)},
		{"Max Temperature (°C)", floatOrEmpty(nil)},
		{"Min Temperature (°C)", floatOrEmpty(nil)},
		{"Average Humidity (%)", floatOrEmpty(nil)},
		{"Average AQI", floatOrEmpty(nil)},
		{"Dominant Category", ""},
		{"Samples", 0},
	}

	if stat != nil {
		rows[0].value = floatOrEmpty(stat.AvgTemperature)
		rows[1].value = floatOrEmpty(stat.MaxTemperature)
		rows[2].value = floatOrEmpty(stat.MinTemperature)
		rows[3].value = floatOrEmpty(stat.AvgHumidity)
		rows[4].value = floatOrEmpty(stat.AvgAQI)
		rows[5].value = string(stat.DominantCategory)
		rows[6].value = stat.SampleCount
	}

	for i, row := range rows {
		labelCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+1)
		f.SetCellValue(sheetName, labelCell, row.label)
		f.SetCellValue(sheetName, valueCell, row.value)
	}

	return f.SetColWidth(sheetName, "A", "B", 26.0)
}

func floatOrEmpty(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
