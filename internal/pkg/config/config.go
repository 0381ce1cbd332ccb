package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Network   NetworkConfig   `mapstructure:"network"`
	Planner   PlannerConfig   `mapstructure:"planner"`
	Geocoder  GeocoderConfig  `mapstructure:"geocoder"`
	Router    RouterConfig    `mapstructure:"router"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
	RateLimit    int `mapstructure:"rate_limit"` // requests per minute per IP
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string  `mapstructure:"service_name"`
	OTLPAddr    string  `mapstructure:"otlp_addr"`
	Exporter    string  `mapstructure:"exporter"` // otlp | stdout
	SampleRatio float64 `mapstructure:"sample_ratio"`
	Enabled     bool    `mapstructure:"enabled"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// NetworkConfig selects where the route catalog is loaded from.
type NetworkConfig struct {
	Source string `mapstructure:"source"` // seed | postgres
}

type PlannerConfig struct {
	MaxResults         int     `mapstructure:"max_results"`
	MaxStartWalkDirect float64 `mapstructure:"max_start_walk_direct"`
	MaxEndWalkDirect   float64 `mapstructure:"max_end_walk_direct"`
	MaxTotalMinutes    int     `mapstructure:"max_total_minutes"`
	MaxLegs            int     `mapstructure:"max_legs"`
}

type GeocoderConfig struct {
	BaseURL      string  `mapstructure:"base_url"`
	CitySuffix   string  `mapstructure:"city_suffix"`
	UserAgent    string  `mapstructure:"user_agent"`
	Timeout      int     `mapstructure:"timeout"`   // seconds
	CacheTTL     int     `mapstructure:"cache_ttl"` // seconds
	FallbackLat  float64 `mapstructure:"fallback_lat"`
	FallbackLon  float64 `mapstructure:"fallback_lon"`
	LandmarkNear float64 `mapstructure:"landmark_near"` // meters
}

type RouterConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	Timeout  int    `mapstructure:"timeout"`   // seconds
	CacheTTL int    `mapstructure:"cache_ttl"` // seconds
}

// Load reads configuration from .env, an optional config file and
// environment variables.
func Load(service string) (*Config, error) {
	_ = godotenv.Load() // OK if missing

	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: JEEPNEY_DATABASE_HOST → database.host
	v.SetEnvPrefix("JEEPNEY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.rate_limit", 120)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "jeepney")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "jeepney")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_addr", "tempo:4317")
	v.SetDefault("telemetry.exporter", "otlp")
	v.SetDefault("telemetry.sample_ratio", 1.0)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "jeepney-geometry")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("network.source", "seed")
	v.SetDefault("planner.max_results", 8)
	v.SetDefault("planner.max_start_walk_direct", 1000)
	v.SetDefault("planner.max_end_walk_direct", 800)
	v.SetDefault("planner.max_total_minutes", 90)
	v.SetDefault("planner.max_legs", 3)
	v.SetDefault("geocoder.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocoder.city_suffix", "Batangas City")
	v.SetDefault("geocoder.user_agent", "jeep-route-finder/1.0")
	v.SetDefault("geocoder.timeout", 5)
	v.SetDefault("geocoder.cache_ttl", 86400)
	v.SetDefault("geocoder.fallback_lat", 13.7565)
	v.SetDefault("geocoder.fallback_lon", 121.0583)
	v.SetDefault("geocoder.landmark_near", 150)
	v.SetDefault("router.base_url", "https://router.project-osrm.org")
	v.SetDefault("router.timeout", 8)
	v.SetDefault("router.cache_ttl", 604800)
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, "server.rate_limit must not be negative")
	}

	switch c.Network.Source {
	case "seed":
	case "postgres":
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required")
		}
	default:
		errs = append(errs, fmt.Sprintf("network.source must be seed or postgres, got %q", c.Network.Source))
	}

	if c.Planner.MaxResults <= 0 {
		errs = append(errs, "planner.max_results must be positive")
	}
	if c.Planner.MaxLegs < 1 || c.Planner.MaxLegs > 3 {
		errs = append(errs, fmt.Sprintf("planner.max_legs must be 1-3, got %d", c.Planner.MaxLegs))
	}
	if c.Planner.MaxTotalMinutes <= 0 {
		errs = append(errs, "planner.max_total_minutes must be positive")
	}
	if c.Geocoder.FallbackLat < -90 || c.Geocoder.FallbackLat > 90 ||
		c.Geocoder.FallbackLon < -180 || c.Geocoder.FallbackLon > 180 {
		errs = append(errs, "geocoder fallback coordinate out of range")
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		errs = append(errs, "telemetry.sample_ratio must be within [0,1]")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
