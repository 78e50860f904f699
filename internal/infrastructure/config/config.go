package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Hearth Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Device    DeviceConfig    `yaml:"device"`
	Store     StoreConfig     `yaml:"store"`
	Journal   JournalConfig   `yaml:"journal"`
	Cache     CacheConfig     `yaml:"cache"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	API       APIConfig       `yaml:"api"`
	Caller    CallerConfig    `yaml:"caller"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	Retention RetentionConfig `yaml:"retention"`
	Logging   LoggingConfig   `yaml:"logging"`
	Security  SecurityConfig  `yaml:"security"`
}

// ServiceConfig identifies this service instance within the federation.
type ServiceConfig struct {
	// Name is the service name used in logs and trace identifiers.
	Name string `yaml:"name"`

	// Environment is the deployment tag recorded on every reading
	// (e.g. "prod", "dev"). It maps to the reading's source column.
	Environment string `yaml:"environment"`
}

// DeviceConfig describes the single air-treatment appliance this service polls.
type DeviceConfig struct {
	// TypeCode is the appliance's product type code, the first topic segment
	// (e.g. "455" for a PureCool tower).
	TypeCode string `yaml:"type_code"`

	// Host and Port locate the appliance's on-board MQTT broker.
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// Username doubles as the device serial and the second topic segment.
	Username string `yaml:"username"`

	// Password is the device's MQTT credential. Leave empty to fetch it from
	// the upstream secrets service at startup.
	Password string `yaml:"password"`

	// Location is the fixed physical placement recorded on every reading.
	Location string `yaml:"location"`

	// PollInterval is the seconds between poll cycles. Default: 300.
	PollInterval int `yaml:"poll_interval"`

	// CycleTimeout is the seconds a cycle waits for the matching status push
	// before giving up. Default: 30.
	CycleTimeout int `yaml:"cycle_timeout"`

	// DisconnectAfterRead closes the device connection after each successful
	// cycle to conserve the appliance's connection slots. Default: false
	// (hold the connection open between cycles).
	DisconnectAfterRead bool `yaml:"disconnect_after_read"`

	// AirQualityPolicy selects the channel normalization: "banded" (raw/10
	// thresholded into bands 2-5) or "passthrough" (raw integer).
	// Default: banded.
	AirQualityPolicy string `yaml:"air_quality_policy"`
}

// StoreConfig contains time-series store (TimescaleDB) settings.
type StoreConfig struct {
	// URL is a postgres connection string
	// (e.g. "postgres://hearth:pw@localhost:5432/hearth").
	URL string `yaml:"url"`

	// Timescale enables hypertable bootstrap on the readings table.
	Timescale bool `yaml:"timescale"`
}

// JournalConfig contains the SQLite poll-journal settings.
type JournalConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// CacheConfig contains the optional latest-reading cache settings.
type CacheConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`

	// TTL is the cache entry lifetime in seconds. Entries from a dead
	// collector should age out rather than serve stale air forever.
	// Default: 3600.
	TTL int `yaml:"ttl"`
}

// InfluxDBConfig contains the optional reading-mirror settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings (seconds).
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CallerConfig tunes the resilient outbound HTTP caller.
type CallerConfig struct {
	// Timeout is the per-attempt request timeout in seconds. Default: 5.
	Timeout int `yaml:"timeout"`

	// RetryDelay is the seconds to wait before re-attempting a call that
	// failed with connection refused. Default: 60.
	RetryDelay int `yaml:"retry_delay"`

	// InsecureSkipVerify disables TLS verification for sibling services
	// running with self-signed certificates.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// UpstreamConfig locates sibling services in the federation.
type UpstreamConfig struct {
	// SecretsURL is the base URL of the secrets service used to fetch device
	// credentials when device.password is empty. Empty disables the fetch.
	SecretsURL string `yaml:"secrets_url"`
}

// RetentionConfig controls the scheduled purge of aged readings.
type RetentionConfig struct {
	Enabled bool `yaml:"enabled"`

	// MaxAgeDays is how long readings are kept. Default: 365.
	MaxAgeDays int `yaml:"max_age_days"`

	// At is the time of day the purge runs, "HH:MM". Default: "03:30".
	At string `yaml:"at"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	// ClientAccessKey is the shared secret every service in the federation
	// presents in the Client-Access-Key header. Required.
	ClientAccessKey string `yaml:"client_access_key"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: HEARTH_SECTION_KEY
// For example: HEARTH_STORE_URL, HEARTH_DEVICE_PASSWORD
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:        "hearth",
			Environment: "dev",
		},
		Device: DeviceConfig{
			TypeCode:         "455",
			Port:             1883,
			PollInterval:     300,
			CycleTimeout:     30,
			AirQualityPolicy: "banded",
		},
		Journal: JournalConfig{
			Path:        "./data/hearth-journal.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Cache: CacheConfig{
			Addr: "localhost:6379",
			TTL:  3600,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 3981,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Caller: CallerConfig{
			Timeout:    5,
			RetryDelay: 60,
		},
		Retention: RetentionConfig{
			MaxAgeDays: 365,
			At:         "03:30",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: HEARTH_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Service
	if v := os.Getenv("HEARTH_SERVICE_ENVIRONMENT"); v != "" {
		cfg.Service.Environment = v
	}

	// Device
	if v := os.Getenv("HEARTH_DEVICE_HOST"); v != "" {
		cfg.Device.Host = v
	}
	if v := os.Getenv("HEARTH_DEVICE_USERNAME"); v != "" {
		cfg.Device.Username = v
	}
	if v := os.Getenv("HEARTH_DEVICE_PASSWORD"); v != "" {
		cfg.Device.Password = v
	}

	// Store
	if v := os.Getenv("HEARTH_STORE_URL"); v != "" {
		cfg.Store.URL = v
	}

	// Journal
	if v := os.Getenv("HEARTH_JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
	}

	// Cache
	if v := os.Getenv("HEARTH_CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("HEARTH_CACHE_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}

	// InfluxDB
	if v := os.Getenv("HEARTH_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// API
	if v := os.Getenv("HEARTH_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("HEARTH_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// Upstream
	if v := os.Getenv("HEARTH_UPSTREAM_SECRETS_URL"); v != "" {
		cfg.Upstream.SecretsURL = v
	}

	// Security - shared secret (IMPORTANT: always override in production)
	if v := os.Getenv("HEARTH_CLIENT_ACCESS_KEY"); v != "" {
		cfg.Security.ClientAccessKey = v
	}
}

// Validate checks the configuration for errors and security issues.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Device validation
	if c.Device.Host == "" {
		errs = append(errs, "device.host is required")
	}
	if c.Device.Username == "" {
		errs = append(errs, "device.username is required")
	}
	if c.Device.PollInterval <= 0 {
		errs = append(errs, "device.poll_interval must be positive")
	}
	switch c.Device.AirQualityPolicy {
	case "banded", "passthrough":
	default:
		errs = append(errs, "device.air_quality_policy must be \"banded\" or \"passthrough\"")
	}

	// Store validation
	if c.Store.URL == "" {
		errs = append(errs, "store.url is required")
	}

	// Journal validation
	if c.Journal.Path == "" {
		errs = append(errs, "journal.path is required")
	}

	// API validation
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	// Security validation - the shared secret is REQUIRED.
	// Every inbound request and outbound sibling call is authenticated with
	// this key; an empty or short key would leave the sensor API open to
	// anything on the network.
	const minAccessKeyLength = 16
	if c.Security.ClientAccessKey == "" {
		errs = append(errs, "security.client_access_key is required (set HEARTH_CLIENT_ACCESS_KEY environment variable)")
	} else if len(c.Security.ClientAccessKey) < minAccessKeyLength {
		errs = append(errs, "security.client_access_key must be at least 16 characters")
	}

	// Retention validation
	if c.Retention.Enabled {
		if c.Retention.MaxAgeDays <= 0 {
			errs = append(errs, "retention.max_age_days must be positive")
		}
		if !validClockTime(c.Retention.At) {
			errs = append(errs, "retention.at must be HH:MM")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// validClockTime reports whether s parses as a 24-hour "HH:MM" time of day.
func validClockTime(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}

// PollInterval returns the device poll interval as a Duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Device.PollInterval) * time.Second
}

// CycleTimeout returns the poll cycle push-wait timeout as a Duration.
func (c *Config) CycleTimeout() time.Duration {
	return time.Duration(c.Device.CycleTimeout) * time.Second
}

// CallerTimeout returns the per-attempt outbound request timeout as a Duration.
func (c *Config) CallerTimeout() time.Duration {
	return time.Duration(c.Caller.Timeout) * time.Second
}

// CallerRetryDelay returns the connection-refused retry delay as a Duration.
func (c *Config) CallerRetryDelay() time.Duration {
	return time.Duration(c.Caller.RetryDelay) * time.Second
}

// CacheTTL returns the cache entry lifetime as a Duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTL) * time.Second
}

// MaxAge returns the reading retention age as a Duration.
func (r RetentionConfig) MaxAge() time.Duration {
	return time.Duration(r.MaxAgeDays) * 24 * time.Hour
}

// GetReadTimeout returns the API read timeout as a Duration.
func (a APIConfig) GetReadTimeout() time.Duration {
	return time.Duration(a.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (a APIConfig) GetWriteTimeout() time.Duration {
	return time.Duration(a.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (a APIConfig) GetIdleTimeout() time.Duration {
	return time.Duration(a.Timeouts.Idle) * time.Second
}
