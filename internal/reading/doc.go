// Package reading defines the sensor sample model and its persistence.
//
// A Reading is built from one qualifying device push (discriminator
// ENVIRONMENTAL-CURRENT-SENSOR-DATA), handed to the repository for a
// single-row insert, and then discarded; durability lives entirely in the
// time-series store.
//
// The repository also serves the read side: time-bucketed aggregation over
// a keyword-selected lookback window, the latest reading, and retention
// purges. Aggregations are fetched newest-first from the store and reversed
// before being returned, so callers always receive ascending time order —
// that reversal is a contract with the display services, not an accident.
package reading
