package influxdb

import (
	"context"
	"fmt"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/hearth-core/internal/infrastructure/config"
	"github.com/nerrad567/hearth-core/internal/reading"
)

// Default timeouts for InfluxDB operations.
const (
	defaultConnectTimeout = 10 * time.Second
	defaultPingTimeout    = 5 * time.Second

	// millisecondsPerSecond converts seconds to milliseconds for the InfluxDB API.
	millisecondsPerSecond = 1000

	// measurement is the single measurement all mirrored readings land in.
	measurement = "air_quality"
)

// Mirror wraps the InfluxDB v2 client as a write-only reading mirror.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Write operations are non-blocking and batched.
type Mirror struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	cfg      config.InfluxDBConfig

	connected bool
	mu        sync.RWMutex

	// onError is called when async write errors occur.
	onError func(err error)
}

// Connect establishes a connection to the InfluxDB server.
//
// It performs the following setup:
//  1. Creates the client with token authentication
//  2. Verifies connectivity with a ping
//  3. Configures the non-blocking write API with batching
//  4. Starts the error-drain goroutine for async write failures
//
// Parameters:
//   - cfg: InfluxDB configuration from config.yaml
//
// Returns:
//   - *Mirror: Connected mirror ready for use
//   - error: ErrDisabled if the mirror is off, or a connection error
func Connect(cfg config.InfluxDBConfig) (*Mirror, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 20
	}
	flushInterval := cfg.FlushInterval
	if flushInterval <= 0 {
		flushInterval = 10
	}

	// #nosec G115 -- values validated above to be positive
	client := influxdb2.NewClientWithOptions(
		cfg.URL,
		cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(uint(batchSize)).
			SetFlushInterval(uint(flushInterval)*millisecondsPerSecond),
	)

	ctx, cancel := context.WithTimeout(context.Background(), defaultConnectTimeout)
	defer cancel()

	healthy, err := client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	writeAPI := client.WriteAPI(cfg.Org, cfg.Bucket)

	m := &Mirror{
		client:    client,
		writeAPI:  writeAPI,
		cfg:       cfg,
		connected: true,
	}

	go m.handleWriteErrors(writeAPI.Errors())

	return m, nil
}

// handleWriteErrors processes async write errors from the WriteAPI.
func (m *Mirror) handleWriteErrors(errorsCh <-chan error) {
	for err := range errorsCh {
		m.mu.RLock()
		callback := m.onError
		m.mu.RUnlock()

		if callback != nil {
			callback(err)
		}
	}
}

// WriteReading mirrors a single sensor reading.
//
// The write is non-blocking; the point is batched and sent asynchronously
// with the reading's own capture time as the point timestamp. Silently a
// no-op on a closed mirror.
func (m *Mirror) WriteReading(rd reading.Reading) {
	if !m.IsConnected() {
		return
	}

	point := write.NewPoint(
		measurement,
		map[string]string{
			"sender":   rd.Source,
			"location": rd.Location,
		},
		map[string]interface{}{
			"air":         rd.AirQuality,
			"temperature": rd.TemperatureCelsius,
			"humidity":    rd.HumidityPercent,
			"nitrogen":    rd.NitrogenDioxide,
		},
		rd.CapturedAt,
	)

	m.writeAPI.WritePoint(point)
}

// Flush forces all pending writes to be sent.
//
// Blocks until buffered points are written. Safe to call on a closed mirror.
func (m *Mirror) Flush() {
	if m.writeAPI == nil {
		return
	}

	m.mu.RLock()
	connected := m.connected
	m.mu.RUnlock()

	if !connected {
		return
	}

	m.writeAPI.Flush()
}

// Close flushes pending writes and shuts down the client.
//
// Returns:
//   - error: Always nil; kept for lifecycle symmetry with the other stores
func (m *Mirror) Close() error {
	if m.client == nil {
		return nil
	}

	m.mu.Lock()
	m.connected = false
	m.mu.Unlock()

	m.writeAPI.Flush()
	m.client.Close()

	return nil
}

// HealthCheck verifies the InfluxDB connection is alive and functioning.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (m *Mirror) HealthCheck(ctx context.Context) error {
	if !m.IsConnected() {
		return ErrNotConnected
	}

	checkCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	healthy, err := m.client.Ping(checkCtx)
	if err != nil {
		return fmt.Errorf("influxdb health check failed: %w", err)
	}
	if !healthy {
		return fmt.Errorf("influxdb health check failed: server not healthy")
	}

	return nil
}

// IsConnected returns the current connection state.
func (m *Mirror) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// SetOnError sets a callback to be invoked when async write errors occur.
//
// Since writes are non-blocking, errors are delivered asynchronously.
// Use this callback to log mirror failures.
func (m *Mirror) SetOnError(callback func(err error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onError = callback
}
