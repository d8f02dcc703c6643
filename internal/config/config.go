package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment key, e.g. DISPENSADORAS_BACKEND_URL.
const EnvPrefix = "DISPENSADORAS"

type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Polling PollingConfig
	Log     LogConfig
	Influx  InfluxConfig
	MQTT    MQTTConfig
	Reports ReportsConfig
}

type ServerConfig struct {
	Port            string
	GRPCHealthPort  string // empty disables the gRPC health service
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

type BackendConfig struct {
	URL             string
	Timeout         time.Duration
	BreakerFailures uint32 // 0 disables the breaker
	BreakerOpenFor  time.Duration
	StartupWait     time.Duration // max wait for GET /status on boot, 0 skips it
}

type PollingConfig struct {
	RefreshInterval time.Duration // index statistics
	MonitorInterval time.Duration // monitoring grid
	FetchTimeout    time.Duration
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

// InfluxConfig enables the snapshot history writer when URL is set.
type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

func (c InfluxConfig) Enabled() bool { return c.URL != "" }

// MQTTConfig enables device-event refresh triggers when Host is set.
type MQTTConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	ClientID string
	Topic    string
	DedupTTL time.Duration
}

func (c MQTTConfig) Enabled() bool { return c.Host != "" }

type ReportsConfig struct {
	MaintenanceEvery time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.grpc_health_port", "")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("backend.url", "http://localhost:5000/api")
	v.SetDefault("backend.timeout", 10*time.Second)
	v.SetDefault("backend.breaker_failures", 5)
	v.SetDefault("backend.breaker_open_for", 30*time.Second)
	v.SetDefault("backend.startup_wait", 0)

	v.SetDefault("polling.refresh_interval", 30*time.Second)
	v.SetDefault("polling.monitor_interval", 10*time.Second)
	v.SetDefault("polling.fetch_timeout", 15*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("influx.org", "dispensadoras")
	v.SetDefault("influx.bucket", "dispensadoras")

	v.SetDefault("mqtt.port", 1883)
	v.SetDefault("mqtt.client_id", "dispensadoras-dashboard")
	v.SetDefault("mqtt.topic", "dispensadoras/+/eventos")
	v.SetDefault("mqtt.dedup_ttl", 5*time.Second)

	v.SetDefault("reports.maintenance_every", 30*24*time.Hour)
}

// Load reads the configuration. Priority, highest first:
//  1. environment variables with the DISPENSADORAS_ prefix
//  2. variables from the given .env files (".env" when none is given)
//  3. built-in defaults
//
// Missing .env files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("server.port"),
			GRPCHealthPort:  v.GetString("server.grpc_health_port"),
			CORSOrigins:     splitList(v.GetStringSlice("server.cors_origins")),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Backend: BackendConfig{
			URL:             strings.TrimRight(v.GetString("backend.url"), "/"),
			Timeout:         v.GetDuration("backend.timeout"),
			BreakerFailures: v.GetUint32("backend.breaker_failures"),
			BreakerOpenFor:  v.GetDuration("backend.breaker_open_for"),
			StartupWait:     v.GetDuration("backend.startup_wait"),
		},
		Polling: PollingConfig{
			RefreshInterval: v.GetDuration("polling.refresh_interval"),
			MonitorInterval: v.GetDuration("polling.monitor_interval"),
			FetchTimeout:    v.GetDuration("polling.fetch_timeout"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Influx: InfluxConfig{
			URL:    v.GetString("influx.url"),
			Token:  v.GetString("influx.token"),
			Org:    v.GetString("influx.org"),
			Bucket: v.GetString("influx.bucket"),
		},
		MQTT: MQTTConfig{
			Host:     v.GetString("mqtt.host"),
			Port:     v.GetInt("mqtt.port"),
			User:     v.GetString("mqtt.user"),
			Password: v.GetString("mqtt.password"),
			ClientID: v.GetString("mqtt.client_id"),
			Topic:    v.GetString("mqtt.topic"),
			DedupTTL: v.GetDuration("mqtt.dedup_ttl"),
		},
		Reports: ReportsConfig{
			MaintenanceEvery: v.GetDuration("reports.maintenance_every"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// splitList accepts both list values and a single comma separated env value.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func (c *Config) validate() error {
	u, err := url.Parse(c.Backend.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.url must be an absolute URL, got %q", c.Backend.URL)
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if c.Polling.RefreshInterval <= 0 {
		return fmt.Errorf("polling.refresh_interval must be positive")
	}
	if c.Polling.MonitorInterval <= 0 {
		return fmt.Errorf("polling.monitor_interval must be positive")
	}
	if c.Polling.FetchTimeout < 0 {
		return fmt.Errorf("polling.fetch_timeout cannot be negative")
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend.timeout must be positive")
	}
	if c.MQTT.Enabled() && c.MQTT.Topic == "" {
		return fmt.Errorf("mqtt.topic is required when mqtt.host is set")
	}
	if c.Influx.Enabled() && c.Influx.Bucket == "" {
		return fmt.Errorf("influx.bucket is required when influx.url is set")
	}
	return nil
}
