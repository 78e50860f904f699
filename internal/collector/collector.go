package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nerrad567/hearth-core/internal/infrastructure/config"
	"github.com/nerrad567/hearth-core/internal/infrastructure/logging"
	"github.com/nerrad567/hearth-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/hearth-core/internal/journal"
	"github.com/nerrad567/hearth-core/internal/reading"
)

// qosCommand is the QoS level for state requests. At-least-once: a
// duplicated request just provokes an extra push, which is harmless.
const qosCommand = 1

// Transport is the device-facing MQTT surface the collector needs.
// *mqtt.Client satisfies it.
type Transport interface {
	SetOnConnect(callback func())
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Publish(topic string, payload []byte, qos byte) error
	IsConnected() bool
	Reconnect() error
	Disconnect()
}

// Persister writes readings to the system of record.
// *reading.Repository satisfies it.
type Persister interface {
	Insert(ctx context.Context, rd reading.Reading) error
}

// MirrorWriter duplicates readings into a secondary store, best effort.
// *influxdb.Mirror satisfies it.
type MirrorWriter interface {
	WriteReading(rd reading.Reading)
}

// LatestWriter keeps the most recent reading hot for the API.
// *cache.Cache satisfies it.
type LatestWriter interface {
	SetLatest(ctx context.Context, rd reading.Reading) error
}

// CycleJournal records how each poll cycle ended.
// *journal.Recorder satisfies it.
type CycleJournal interface {
	Record(ctx context.Context, rec journal.CycleRecord) error
}

// Deps carries the collector's collaborators. Transport, Store and Logger
// are required; the rest are optional and nil simply disables them.
type Deps struct {
	Transport Transport
	Store     Persister
	Mirror    MirrorWriter
	Cache     LatestWriter
	Journal   CycleJournal
	Logger    *logging.Logger
}

// Collector drives the poll loop against a single appliance.
type Collector struct {
	cfg    *config.Config
	deps   Deps
	topics mqtt.Topics
	policy reading.AirQualityPolicy

	// completed receives the result of the in-flight cycle's persistence.
	// Buffered so an unsolicited push outside any cycle never blocks the
	// message handler.
	completed chan error

	// kick requests an immediate poll, e.g. after a reconnect.
	kick chan struct{}

	saved  atomic.Uint64
	failed atomic.Uint64
}

// New creates a Collector. Call Run to start polling.
func New(cfg *config.Config, deps Deps) *Collector {
	return &Collector{
		cfg:  cfg,
		deps: deps,
		topics: mqtt.Topics{
			TypeCode: cfg.Device.TypeCode,
			Username: cfg.Device.Username,
		},
		policy:    reading.ParsePolicy(cfg.Device.AirQualityPolicy),
		completed: make(chan error, 1),
		kick:      make(chan struct{}, 1),
	}
}

// Run subscribes to the status topic and polls until ctx is cancelled.
//
// The first cycle starts immediately; subsequent cycles follow the
// configured poll interval, except that a reconnect schedules an
// immediate cycle.
//
// Returns:
//   - error: Only if the initial subscription fails outright
func (c *Collector) Run(ctx context.Context) error {
	if err := c.deps.Transport.Subscribe(c.topics.StatusCurrent(), qosCommand, c.handleMessage); err != nil {
		return fmt.Errorf("subscribing to status topic: %w", err)
	}

	c.deps.Transport.SetOnConnect(func() {
		select {
		case c.kick <- struct{}{}:
		default:
		}
	})

	c.deps.Logger.Info("collector started",
		"device", c.cfg.Device.Username,
		"poll_interval", c.cfg.PollInterval().String(),
		"air_quality_policy", string(c.policy),
	)

	ticker := time.NewTicker(c.cfg.PollInterval())
	defer ticker.Stop()

	for {
		c.runCycle(ctx)

		select {
		case <-ctx.Done():
			c.deps.Logger.Info("collector stopping",
				"saved", c.saved.Load(),
				"failed", c.failed.Load(),
			)
			return nil
		case <-ticker.C:
		case <-c.kick:
			// Reconnect: poll now, and realign the interval to it.
			ticker.Reset(c.cfg.PollInterval())
		}
	}
}

// runCycle executes one poll cycle and journals its outcome.
func (c *Collector) runCycle(ctx context.Context) {
	startedAt := time.Now()

	if !c.deps.Transport.IsConnected() {
		if err := c.deps.Transport.Reconnect(); err != nil {
			c.deps.Logger.Warn("device unreachable, skipping cycle", "error", err)
			c.journal(ctx, startedAt, journal.OutcomePublishFailed, err.Error())
			return
		}
	}

	// Drain any completion left over from an unsolicited push between
	// cycles; this cycle must wait for its own.
	select {
	case <-c.completed:
	default:
	}

	payload := stateRequestPayload(reading.MsgRequestCurrentState, startedAt)
	if err := c.deps.Transport.Publish(c.topics.Command(), payload, qosCommand); err != nil {
		c.deps.Logger.Warn("state request publish failed", "error", err)
		c.journal(ctx, startedAt, journal.OutcomePublishFailed, err.Error())
		return
	}

	select {
	case <-ctx.Done():
		return
	case <-time.After(c.cfg.CycleTimeout()):
		c.deps.Logger.Warn("cycle timed out waiting for sensor push",
			"timeout", c.cfg.CycleTimeout().String(),
		)
		c.journal(ctx, startedAt, journal.OutcomeTimedOut, "")
	case err := <-c.completed:
		if err != nil {
			c.journal(ctx, startedAt, journal.OutcomeStoreFailed, err.Error())
			return
		}
		c.journal(ctx, startedAt, journal.OutcomeCompleted, "")
		if c.cfg.Device.DisconnectAfterRead {
			c.deps.Transport.Disconnect()
		}
	}
}

// handleMessage processes every push on the status topic, solicited or not.
//
// Only ENVIRONMENTAL-CURRENT-SENSOR-DATA pushes produce readings; anything
// else (state changes, fault broadcasts) is ignored without completing the
// cycle, so a poll keeps waiting for actual sensor data.
func (c *Collector) handleMessage(topic string, payload []byte) error {
	var env reading.Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return fmt.Errorf("decoding status push: %w", err)
	}

	if env.Msg != reading.MsgCurrentSensorData {
		c.deps.Logger.Debug("ignoring status push", "msg", env.Msg, "topic", topic)
		return nil
	}

	rd := reading.FromSensorData(
		env.Data,
		time.Now().UTC(),
		c.cfg.Service.Environment,
		c.cfg.Device.Location,
		c.policy,
	)

	err := c.persist(rd)
	c.signalCompleted(err)
	return err
}

// persist writes the reading to the store and fans it out to the
// optional sinks.
func (c *Collector) persist(rd reading.Reading) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.CycleTimeout())
	defer cancel()

	if err := c.deps.Store.Insert(ctx, rd); err != nil {
		c.failed.Add(1)
		c.deps.Logger.Error("reading not persisted", "error", err)
		return err
	}
	c.saved.Add(1)

	c.deps.Logger.Info("reading persisted",
		"air", rd.AirQuality,
		"temperature", rd.TemperatureCelsius,
		"humidity", rd.HumidityPercent,
		"nitrogen", rd.NitrogenDioxide,
	)

	// Secondary sinks never fail a cycle.
	if c.deps.Mirror != nil {
		c.deps.Mirror.WriteReading(rd)
	}
	if c.deps.Cache != nil {
		if err := c.deps.Cache.SetLatest(ctx, rd); err != nil {
			c.deps.Logger.Warn("latest-reading cache update failed", "error", err)
		}
	}

	return nil
}

// signalCompleted hands the persistence result to the cycle in flight
// without blocking when no cycle is waiting.
func (c *Collector) signalCompleted(err error) {
	select {
	case c.completed <- err:
	default:
	}
}

// journal records a cycle outcome, best effort.
func (c *Collector) journal(ctx context.Context, startedAt time.Time, outcome, detail string) {
	if c.deps.Journal == nil {
		return
	}
	err := c.deps.Journal.Record(ctx, journal.CycleRecord{
		Device:    c.cfg.Device.Username,
		StartedAt: startedAt,
		Outcome:   outcome,
		Detail:    detail,
	})
	if err != nil {
		c.deps.Logger.Warn("poll journal write failed", "error", err)
	}
}

// Stats returns the lifetime counts of persisted and failed readings.
func (c *Collector) Stats() (saved, failed uint64) {
	return c.saved.Load(), c.failed.Load()
}
