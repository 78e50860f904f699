package influxdb

import (
	"context"
	"testing"
	"time"

	"github.com/nerrad567/hearth-core/internal/infrastructure/config"
	"github.com/nerrad567/hearth-core/internal/reading"
)

func TestConnectDisabled(t *testing.T) {
	_, err := Connect(config.InfluxDBConfig{Enabled: false})
	if err != ErrDisabled {
		t.Errorf("Connect with disabled config: err = %v, want ErrDisabled", err)
	}
}

func TestWriteReadingOnClosedMirrorIsNoOp(t *testing.T) {
	m := &Mirror{}

	// Must not panic with a nil writeAPI.
	m.WriteReading(reading.Reading{
		CapturedAt: time.Now(),
		Source:     "test",
		Location:   "Bedroom",
	})
}

func TestFlushOnClosedMirrorIsNoOp(t *testing.T) {
	m := &Mirror{}
	m.Flush()
}

func TestCloseOnZeroMirror(t *testing.T) {
	m := &Mirror{}
	if err := m.Close(); err != nil {
		t.Errorf("Close on zero mirror: %v", err)
	}
}

func TestHealthCheckNotConnected(t *testing.T) {
	m := &Mirror{}
	if err := m.HealthCheck(context.Background()); err != ErrNotConnected {
		t.Errorf("HealthCheck = %v, want ErrNotConnected", err)
	}
}
