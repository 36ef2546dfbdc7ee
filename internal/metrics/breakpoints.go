package metrics

import (
	"math"

	"github.com/Deven107/weather-etl-pipeline/internal/models"
)

// tempBracket maps a lower bound to a category. Brackets are ordered by
// lower bound; the last bracket whose lower bound does not exceed the
// temperature wins, so every real number maps to exactly one category.
type tempBracket struct {
	lower    float64
	category models.TempCategory
}

var tempBrackets = []tempBracket{
	{math.Inf(-1), models.TempFreezing},
	{0, models.TempCold},
	{10, models.TempMild},
	{20, models.TempWarm},
	{30, models.TempHot},
}

// aqiBand maps a concentration interval to an index interval. Sub-indices
// are piecewise-linear inside a band.
type aqiBand struct {
	cLow, cHigh float64
	iLow, iHigh int
}

// pollutantScale registers the breakpoint bands for one pollutant.
// Concentrations are µg/m³ as delivered by the provider.
type pollutantScale struct {
	required bool
	bands    []aqiBand
}

var pollutantScales = map[string]pollutantScale{
	models.PollutantPM25: {
		required: true,
		bands: []aqiBand{
			{0, 12.0, 0, 50},
			{12.1, 35.4, 51, 100},
			{35.5, 55.4, 101, 150},
			{55.5, 150.4, 151, 200},
			{150.5, 250.4, 201, 300},
			{250.5, 500.4, 301, 500},
		},
	},
	models.PollutantPM10: {
		required: true,
		bands: []aqiBand{
			{0, 54, 0, 50},
			{55, 154, 51, 100},
			{155, 254, 101, 150},
			{255, 354, 151, 200},
			{355, 424, 201, 300},
			{425, 604, 301, 500},
		},
	},
	models.PollutantNO2: {
		bands: []aqiBand{
			{0, 100, 0, 50},
			{101, 360, 51, 100},
			{361, 649, 101, 150},
			{650, 1249, 151, 200},
			{1250, 2049, 201, 300},
			{2050, 3840, 301, 500},
		},
	},
	models.PollutantO3: {
		bands: []aqiBand{
			{0, 160, 0, 50},
			{161, 200, 51, 100},
			{201, 330, 101, 150},
			{331, 410, 151, 200},
			{411, 800, 201, 300},
			{801, 1200, 301, 500},
		},
	},
	models.PollutantSO2: {
		bands: []aqiBand{
			{0, 90, 0, 50},
			{91, 200, 51, 100},
			{201, 485, 101, 150},
			{486, 800, 151, 200},
			{801, 1600, 201, 300},
			{1601, 2630, 301, 500},
		},
	},
	models.PollutantCO: {
		bands: []aqiBand{
			{0, 5000, 0, 50},
			{5001, 10000, 51, 100},
			{10001, 14000, 101, 150},
			{14001, 17000, 151, 200},
			{17001, 34000, 201, 300},
			{34001, 57500, 301, 500},
		},
	},
}

// categoryBands partition the index range. Anything above the last lower
// bound is hazardous.
type categoryBand struct {
	lower    int
	category models.AQICategory
}

var aqiCategoryBands = []categoryBand{
	{0, models.AQIGood},
	{51, models.AQIModerate},
	{101, models.AQIUnhealthySensitive},
	{151, models.AQIUnhealthy},
	{201, models.AQIVeryUnhealthy},
	{301, models.AQIHazardous},
}
