// Package journal records the outcome of every poll cycle in the
// embedded SQLite store.
//
// The journal answers operational questions the time-series data cannot:
// did the last cycle time out, has the appliance been refusing publishes,
// how often does the store reject writes. The API surfaces it on /status.
package journal
