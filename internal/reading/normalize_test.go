package reading

import (
	"testing"
	"time"
)

func TestNumericValue(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"0045", 45},
		{"45", 45},
		{"0", 0},
		{"", 0},
		{"INIT", 0},
		{"OFF", 0},
		{" 0003 ", 3},
	}

	for _, tt := range tests {
		if got := numericValue(tt.raw); got != tt.want {
			t.Errorf("numericValue(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestBandedValue(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 0},     // missing channel stays unmeasured
		{"INIT", 0}, // warming sensor stays unmeasured
		{"0000", 0},
		{"0005", bandGood},     // 5/10 = 0
		{"0030", bandGood},     // 30/10 = 3, still good
		{"0039", bandGood},     // 39/10 = 3
		{"0040", bandFair},     // 40/10 = 4
		{"0060", bandFair},     // 60/10 = 6
		{"0070", bandInferior}, // 70/10 = 7
		{"0080", bandInferior}, // 80/10 = 8
		{"0090", bandPoor},     // 90/10 = 9
		{"0100", bandPoor},
	}

	for _, tt := range tests {
		if got := bandedValue(tt.raw); got != tt.want {
			t.Errorf("bandedValue(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		input string
		want  AirQualityPolicy
	}{
		{"banded", PolicyBanded},
		{"passthrough", PolicyPassthrough},
		{"PASSTHROUGH", PolicyPassthrough},
		{"", PolicyBanded},
		{"unknown", PolicyBanded},
	}

	for _, tt := range tests {
		if got := ParsePolicy(tt.input); got != tt.want {
			t.Errorf("ParsePolicy(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// TestFromSensorDataPassthrough pins the conversion math for the raw
// passthrough policy: worst channel wins unmodified, tact is deci-Kelvin.
func TestFromSensorDataPassthrough(t *testing.T) {
	data := SensorData{
		PM25: "0045",
		PM10: "0010",
		TACT: "2930",
		HACT: "0055",
		NOXL: "0003",
	}
	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	rd := FromSensorData(data, at, "prod", "Bedroom", PolicyPassthrough)

	if rd.AirQuality != 45 {
		t.Errorf("AirQuality = %d, want 45 (max of 45,10,0,3,0,0)", rd.AirQuality)
	}
	if rd.TemperatureCelsius != 20.0 {
		t.Errorf("TemperatureCelsius = %v, want 20.0 (2930/10 - 273)", rd.TemperatureCelsius)
	}
	if rd.HumidityPercent != 55 {
		t.Errorf("HumidityPercent = %d, want 55", rd.HumidityPercent)
	}
	if rd.NitrogenDioxide != 3 {
		t.Errorf("NitrogenDioxide = %d, want 3", rd.NitrogenDioxide)
	}
	if !rd.CapturedAt.Equal(at) {
		t.Errorf("CapturedAt = %v, want local receipt time %v", rd.CapturedAt, at)
	}
	if rd.Source != "prod" || rd.Location != "Bedroom" {
		t.Errorf("Source/Location = %q/%q, want prod/Bedroom", rd.Source, rd.Location)
	}
}

// TestFromSensorDataBanded covers the same sample under the banded policy:
// pm25 45 → band 3 (fair), everything else good, so the worst is 3.
func TestFromSensorDataBanded(t *testing.T) {
	data := SensorData{
		PM25: "0045",
		PM10: "0010",
		TACT: "2930",
		HACT: "0055",
		NOXL: "0003",
	}

	rd := FromSensorData(data, time.Now(), "prod", "Bedroom", PolicyBanded)

	if rd.AirQuality != bandFair {
		t.Errorf("AirQuality = %d, want %d (banded worst-of)", rd.AirQuality, bandFair)
	}
	// Non-air fields are policy-independent.
	if rd.NitrogenDioxide != 3 {
		t.Errorf("NitrogenDioxide = %d, want raw 3 under any policy", rd.NitrogenDioxide)
	}
}

func TestWorstAirQualityAllChannelsAbsent(t *testing.T) {
	// A device with every air channel warming up reports 0, not a band:
	// nothing was measured, so nothing reads as good.
	data := SensorData{PM25: "INIT", PM10: "INIT"}

	if got := worstAirQuality(data, PolicyBanded); got != 0 {
		t.Errorf("worstAirQuality banded = %d, want 0 for unmeasured channels", got)
	}
	if got := worstAirQuality(data, PolicyPassthrough); got != 0 {
		t.Errorf("worstAirQuality passthrough = %d, want 0 for unmeasured channels", got)
	}
}

func TestWorstAirQualityAllChannelsConsidered(t *testing.T) {
	// vact is the worst channel here; the max must pick it up.
	data := SensorData{
		PM25: "0001",
		VACT: "0099",
	}

	if got := worstAirQuality(data, PolicyPassthrough); got != 99 {
		t.Errorf("worstAirQuality = %d, want 99 from vact", got)
	}
	if got := worstAirQuality(data, PolicyBanded); got != bandPoor {
		t.Errorf("worstAirQuality banded = %d, want %d", got, bandPoor)
	}
}

func TestDeciKelvinToCelsius(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"2930", 20.0},
		{"2730", 0.0},
		{"2980", 25.0},
		{"", 0},
		{"OFF", 0},
	}

	for _, tt := range tests {
		if got := deciKelvinToCelsius(tt.raw); got != tt.want {
			t.Errorf("deciKelvinToCelsius(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
