package reading

import (
	"strconv"
	"strings"
)

// AirQualityPolicy selects how raw device channels are normalized before
// taking the worst-of value.
type AirQualityPolicy string

const (
	// PolicyBanded reduces the raw 0-100 scale to 0-10 and thresholds it
	// into the four quality bands used by the vendor app:
	// good (2), fair (3), inferior (4), poor (5).
	PolicyBanded AirQualityPolicy = "banded"

	// PolicyPassthrough keeps the raw integer value unchanged.
	PolicyPassthrough AirQualityPolicy = "passthrough"
)

// ParsePolicy returns the policy named by s, defaulting to banded.
func ParsePolicy(s string) AirQualityPolicy {
	if AirQualityPolicy(strings.ToLower(s)) == PolicyPassthrough {
		return PolicyPassthrough
	}
	return PolicyBanded
}

// Quality band thresholds on the reduced 0-10 scale.
const (
	bandGoodMax     = 3
	bandFairMax     = 6
	bandInferiorMax = 8
)

// Quality band values, matching the vendor app's scale.
const (
	bandGood     = 2
	bandFair     = 3
	bandInferior = 4
	bandPoor     = 5
)

// numericValue converts a raw channel string to an integer.
// Missing values and state words ("INIT", "OFF") yield 0.
func numericValue(raw string) int {
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return v
}

// bandedValue reduces a raw channel to its 2-5 quality band.
// A channel that is absent, warming up, or reading zero stays 0 so it
// never masquerades as a measured "good".
func bandedValue(raw string) int {
	v := numericValue(raw)
	if v == 0 {
		return 0
	}
	v /= 10
	switch {
	case v <= bandGoodMax:
		return bandGood
	case v <= bandFairMax:
		return bandFair
	case v <= bandInferiorMax:
		return bandInferior
	default:
		return bandPoor
	}
}

// normalize applies the policy to one raw channel.
func (p AirQualityPolicy) normalize(raw string) int {
	if p == PolicyPassthrough {
		return numericValue(raw)
	}
	return bandedValue(raw)
}

// worstAirQuality takes the worst (highest) normalized value across the
// particulate and gas channels. The channel set is fixed by the device's
// sensor suite.
func worstAirQuality(data SensorData, policy AirQualityPolicy) int {
	worst := 0
	for _, raw := range []string{data.PM25, data.PM10, data.VA10, data.NOXL, data.PACT, data.VACT} {
		if v := policy.normalize(raw); v > worst {
			worst = v
		}
	}
	return worst
}

// deciKelvinToCelsius converts the device's deci-Kelvin temperature channel.
func deciKelvinToCelsius(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return v/10 - 273
}
