package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Locking backends.
const (
	LockingMemory = "memory"
	LockingRedis  = "redis"
)

const minJWTSecretLength = 32

// Config is the root configuration structure.
type Config struct {
	Instance  InstanceConfig  `yaml:"instance"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Security  SecurityConfig  `yaml:"security"`
	Locking   LockingConfig   `yaml:"locking"`
	Reporting ReportingConfig `yaml:"reporting"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// InstanceConfig identifies this deployment.
type InstanceConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains event bus settings.
type MQTTConfig struct {
	Enabled     bool                `yaml:"enabled"`
	Broker      MQTTBrokerConfig    `yaml:"broker"`
	Auth        MQTTAuthConfig      `yaml:"auth"`
	QoS         int                 `yaml:"qos"`
	TopicPrefix string              `yaml:"topic_prefix"`
	Reconnect   MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains reconnection delays in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeouts in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig contains bearer token settings. An empty secret disables token
// verification and the API falls back to actor headers.
type JWTConfig struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
}

// LockingConfig selects how lifecycle operations are serialised per device.
type LockingConfig struct {
	Backend string        `yaml:"backend"`
	Timeout time.Duration `yaml:"timeout"`
	Redis   RedisConfig   `yaml:"redis"`
}

// RedisConfig contains the distributed lock's Redis settings.
type RedisConfig struct {
	Addr          string        `yaml:"addr"`
	Password      string        `yaml:"password"`
	DB            int           `yaml:"db"`
	KeyPrefix     string        `yaml:"key_prefix"`
	TTL           time.Duration `yaml:"ttl"`
	RetryInterval time.Duration `yaml:"retry_interval"`
}

// ReportingConfig controls the periodic inventory snapshot.
type ReportingConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoadEnvFile loads variables from a .env file into the process
// environment. Variables already set are not overwritten. A missing file is
// not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading env file: %w", err)
	}
	return nil
}

// Load reads configuration from a YAML file, applies ASSETFLOW_*
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Instance: InstanceConfig{
			ID:   "assetflow-01",
			Name: "AssetFlow",
		},
		Database: DatabaseConfig{
			Path:        "./data/assetflow.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "assetflow-core",
			},
			QoS:         1,
			TopicPrefix: "assetflow",
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Locking: LockingConfig{
			Backend: LockingMemory,
			Timeout: 5 * time.Second,
			Redis: RedisConfig{
				Addr:          "localhost:6379",
				KeyPrefix:     "assetflow:lock:",
				TTL:           30 * time.Second,
				RetryInterval: 50 * time.Millisecond,
			},
		},
		Reporting: ReportingConfig{
			Enabled:  true,
			Schedule: "@every 15m",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// applyEnvOverrides applies ASSETFLOW_SECTION_KEY environment variables.
func applyEnvOverrides(cfg *Config) error {
	str := map[string]*string{
		"ASSETFLOW_DATABASE_PATH":   &cfg.Database.Path,
		"ASSETFLOW_MQTT_HOST":       &cfg.MQTT.Broker.Host,
		"ASSETFLOW_MQTT_USERNAME":   &cfg.MQTT.Auth.Username,
		"ASSETFLOW_MQTT_PASSWORD":   &cfg.MQTT.Auth.Password,
		"ASSETFLOW_API_HOST":        &cfg.API.Host,
		"ASSETFLOW_INFLUXDB_URL":    &cfg.InfluxDB.URL,
		"ASSETFLOW_INFLUXDB_TOKEN":  &cfg.InfluxDB.Token,
		"ASSETFLOW_JWT_SECRET":      &cfg.Security.JWT.Secret,
		"ASSETFLOW_LOCKING_BACKEND": &cfg.Locking.Backend,
		"ASSETFLOW_REDIS_ADDR":      &cfg.Locking.Redis.Addr,
		"ASSETFLOW_REDIS_PASSWORD":  &cfg.Locking.Redis.Password,
		"ASSETFLOW_LOG_LEVEL":       &cfg.Logging.Level,
	}
	for name, dst := range str {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("ASSETFLOW_API_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ASSETFLOW_API_PORT: %w", err)
		}
		cfg.API.Port = port
	}
	if v := os.Getenv("ASSETFLOW_MQTT_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ASSETFLOW_MQTT_ENABLED: %w", err)
		}
		cfg.MQTT.Enabled = enabled
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Instance.ID == "" {
		errs = append(errs, "instance.id is required")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Enabled && c.MQTT.TopicPrefix == "" {
		errs = append(errs, "mqtt.topic_prefix is required when mqtt is enabled")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.InfluxDB.Enabled && (c.InfluxDB.URL == "" || c.InfluxDB.Org == "" || c.InfluxDB.Bucket == "") {
		errs = append(errs, "influxdb.url, org and bucket are required when influxdb is enabled")
	}

	if s := c.Security.JWT.Secret; s != "" && len(s) < minJWTSecretLength {
		errs = append(errs, fmt.Sprintf("security.jwt.secret must be at least %d characters", minJWTSecretLength))
	}

	switch c.Locking.Backend {
	case LockingMemory:
	case LockingRedis:
		if c.Locking.Redis.Addr == "" {
			errs = append(errs, "locking.redis.addr is required for the redis backend")
		}
		if c.Locking.Redis.TTL <= 0 {
			errs = append(errs, "locking.redis.ttl must be positive")
		}
	default:
		errs = append(errs, fmt.Sprintf("locking.backend must be %q or %q", LockingMemory, LockingRedis))
	}
	if c.Locking.Timeout < 0 {
		errs = append(errs, "locking.timeout must not be negative")
	}

	if c.Reporting.Enabled {
		if _, err := cron.ParseStandard(c.Reporting.Schedule); err != nil {
			errs = append(errs, fmt.Sprintf("reporting.schedule is invalid: %v", err))
		}
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, "metrics.path must start with /")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
