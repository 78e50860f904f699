// Package collector polls the appliance and fans readings out to storage.
//
// # Poll Cycle
//
// On a fixed interval the collector publishes a REQUEST-CURRENT-STATE
// command and waits for the matching ENVIRONMENTAL-CURRENT-SENSOR-DATA
// push on the status topic. The push is normalized into a Reading and
// written to the time-series store, then mirrored and cached on a best
// effort basis. Every cycle's outcome lands in the poll journal.
//
// Cycles are strictly sequential: a cycle ends, by completion or by
// timeout, before the next one starts. The appliance answers one request
// at a time and overlapping requests confuse its firmware.
//
// # Unsolicited Pushes
//
// The appliance also pushes sensor data on its own schedule. Qualifying
// pushes are persisted exactly like polled ones; whichever arrives first
// also completes the cycle in flight, if any. Pushes with a different
// message discriminator are ignored.
//
// # Reconnects
//
// A reconnect kicks an immediate poll rather than waiting out the
// interval, so a freshly returned appliance is sampled right away.
package collector
