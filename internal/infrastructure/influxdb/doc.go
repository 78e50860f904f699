// Package influxdb provides the optional InfluxDB mirror for sensor
// readings.
//
// TimescaleDB is the system of record; the mirror exists for households
// already running an InfluxDB/Grafana stack. Writes are non-blocking and
// batched, and a mirror outage never fails a poll cycle — errors surface
// through the SetOnError callback and are logged.
package influxdb
