package metrics

import (
	"math"
	"time"

	"github.com/Deven107/weather-etl-pipeline/internal/models"
)

// ComfortThresholdC is the temperature below which the heat index equals the
// air temperature. The regression is only meaningful in warm, humid air.
const ComfortThresholdC = 27.0

// maxAQI is the top of the index scale; concentrations beyond the last
// registered band clamp here.
const maxAQI = 500

// HeatIndex returns the apparent temperature in °C for the given air
// temperature and relative humidity. Below ComfortThresholdC the input
// temperature is returned unchanged; above it the Rothfusz regression is
// applied in Fahrenheit and converted back. The result is never below the
// input temperature when humidity exceeds 40%.
func HeatIndex(tempC, humidityPct float64) float64 {
	if tempC < ComfortThresholdC {
		return tempC
	}

	t := tempC*9/5 + 32
	r := humidityPct

	hi := -42.379 +
		2.04901523*t +
		10.14333127*r -
		0.22475541*t*r -
		0.00683783*t*t -
		0.05481717*r*r +
		0.00122874*t*t*r +
		0.00085282*t*r*r -
		0.00000199*t*t*r*r

	hiC := (hi - 32) * 5 / 9

	if humidityPct > 40 && hiC < tempC {
		return tempC
	}
	return hiC
}

// DayLengthSeconds returns sunset minus sunrise in whole seconds. A negative
// length or one exceeding 24 hours means the timestamps come from different
// calendar days without normalization.
func DayLengthSeconds(sunrise, sunset time.Time) (int, error) {
	d := sunset.Sub(sunrise)
	if d < 0 {
		return 0, models.InvalidRangeError{Field: "day_length", Reason: "sunset precedes sunrise"}
	}
	if d > 24*time.Hour {
		return 0, models.InvalidRangeError{Field: "day_length", Reason: "exceeds 24 hours"}
	}
	return int(d.Seconds()), nil
}

// TemperatureCategory maps a temperature to its bracket. The table is total:
// every real number, including the infinities, lands in exactly one bracket.
func TemperatureCategory(tempC float64) models.TempCategory {
	category := tempBrackets[0].category
	for _, b := range tempBrackets {
		if tempC >= b.lower {
			category = b.category
		}
	}
	return category
}

// ComputeAQI derives the overall air quality index from pollutant
// concentrations (µg/m³). Each registered pollutant contributes a sub-index
// via piecewise-linear interpolation over its breakpoint bands; the overall
// index is the worst sub-index. Required pollutants must be present;
// pollutants without a registered scale and absent optional pollutants are
// skipped.
func ComputeAQI(pollutants map[string]float64) (int, models.AQICategory, error) {
	for name, scale := range pollutantScales {
		if !scale.required {
			continue
		}
		if _, ok := pollutants[name]; !ok {
			return 0, "", models.UnknownPollutantError{Pollutant: name}
		}
	}

	aqi := 0
	for name, concentration := range pollutants {
		scale, ok := pollutantScales[name]
		if !ok {
			continue
		}
		sub := subIndex(scale.bands, concentration)
		if sub > aqi {
			aqi = sub
		}
	}

	return aqi, AQICategoryFor(aqi), nil
}

// AQICategoryFor maps an index value to its category band.
func AQICategoryFor(aqi int) models.AQICategory {
	category := aqiCategoryBands[0].category
	for _, b := range aqiCategoryBands {
		if aqi >= b.lower {
			category = b.category
		}
	}
	return category
}

func subIndex(bands []aqiBand, concentration float64) int {
	if concentration < 0 {
		concentration = 0
	}
	for _, b := range bands {
		if concentration <= b.cHigh {
			// Gaps between bands collapse onto the lower index bound.
			if concentration < b.cLow {
				return b.iLow
			}
			frac := (concentration - b.cLow) / (b.cHigh - b.cLow)
			return b.iLow + int(math.Round(frac*float64(b.iHigh-b.iLow)))
		}
	}
	return maxAQI
}

// RequiredPollutants lists the pollutants ComputeAQI refuses to run without.
func RequiredPollutants() []string {
	var required []string
	for name, scale := range pollutantScales {
		if scale.required {
			required = append(required, name)
		}
	}
	return required
}
