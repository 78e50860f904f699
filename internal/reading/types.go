package reading

import (
	"time"
)

// Message discriminators used on the device's pub/sub channels.
const (
	// MsgCurrentSensorData tags the status push carrying environmental
	// sensor values. It is the only push type that produces a Reading.
	MsgCurrentSensorData = "ENVIRONMENTAL-CURRENT-SENSOR-DATA"

	// MsgRequestCurrentState is the command that forces the device to push
	// its current state immediately.
	MsgRequestCurrentState = "REQUEST-CURRENT-STATE"
)

// Reading is one timestamped sensor sample from the device.
//
// CapturedAt is the local clock at receipt, not the device clock — the
// appliance's clock drifts and is not trusted for ordering.
type Reading struct {
	CapturedAt         time.Time `json:"time"`
	Source             string    `json:"sender"`
	Location           string    `json:"location"`
	AirQuality         int       `json:"air"`
	TemperatureCelsius float64   `json:"temperature"`
	HumidityPercent    int       `json:"humidity"`
	NitrogenDioxide    int       `json:"nitrogen"`
}

// Envelope is the JSON wrapper on every inbound status push.
// Pushes whose Msg is not MsgCurrentSensorData carry no Data worth reading.
type Envelope struct {
	Msg  string     `json:"msg"`
	Time string     `json:"time"`
	Data SensorData `json:"data"`
}

// SensorData holds the raw environmental channels from a sensor-data push.
//
// The device reports every channel as a zero-padded decimal string, or a
// state word such as "INIT"/"OFF" while a sensor warms up. Fields beyond
// these are present on the wire but ignored.
type SensorData struct {
	PM25 string `json:"pm25"`
	PM10 string `json:"pm10"`
	VA10 string `json:"va10"`
	NOXL string `json:"noxl"`
	PACT string `json:"pact"`
	VACT string `json:"vact"`
	TACT string `json:"tact"`
	HACT string `json:"hact"`
}

// FromSensorData builds a Reading from a sensor-data push.
//
// Conversions:
//   - AirQuality: worst (highest) of the six particulate/gas channels,
//     each normalized under the given policy
//   - TemperatureCelsius: tact is deci-Kelvin → value/10 − 273
//   - HumidityPercent: integer parse of hact
//   - NitrogenDioxide: integer parse of noxl, 0 if absent
//
// Parameters:
//   - data: Raw channels from the push
//   - at: Local receipt time (becomes CapturedAt)
//   - source: Deployment environment tag
//   - location: Fixed physical placement of the device
//   - policy: Air-quality normalization policy
func FromSensorData(data SensorData, at time.Time, source, location string, policy AirQualityPolicy) Reading {
	return Reading{
		CapturedAt:         at,
		Source:             source,
		Location:           location,
		AirQuality:         worstAirQuality(data, policy),
		TemperatureCelsius: deciKelvinToCelsius(data.TACT),
		HumidityPercent:    numericValue(data.HACT),
		NitrogenDioxide:    numericValue(data.NOXL),
	}
}

// Bucket is one fixed-width aggregation window over stored readings.
//
// Temperature, humidity and nitrogen are averaged across the window;
// AirQuality keeps the window's minimum rather than an average, so a
// single good sample shows through even in a noisy window.
type Bucket struct {
	BucketStart time.Time `json:"timeofday"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	AirQuality  int       `json:"air_quality"`
	Nitrogen    float64   `json:"nitrogen"`
}
