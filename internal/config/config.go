package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. PLANT_MQTT_BROKER.
const EnvPrefix = "PLANT"

type Config struct {
	Port   string       `mapstructure:"port"`
	Log    LogConfig    `mapstructure:"log"`
	DB     DBConfig     `mapstructure:"db"`
	MQTT   MQTTConfig   `mapstructure:"mqtt"`
	Bus    BusConfig    `mapstructure:"bus"`
	Auth   AuthConfig   `mapstructure:"auth"`
	CORS   CORSConfig   `mapstructure:"cors"`
	Influx InfluxConfig `mapstructure:"influx"`
	Redis  RedisConfig  `mapstructure:"redis"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console | json
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

// MQTTConfig describes the broker session. An empty ClientID is replaced
// with plant-iot-server-<unix ms> at connect time.
type MQTTConfig struct {
	Broker            string        `mapstructure:"broker"`
	ClientID          string        `mapstructure:"client_id"`
	Username          string        `mapstructure:"username"`
	Password          string        `mapstructure:"password"`
	CleanSession      bool          `mapstructure:"clean_session"`
	ReconnectInterval time.Duration `mapstructure:"reconnect_interval"`
	ConnectTimeout    time.Duration `mapstructure:"connect_timeout"`
	PublishTimeout    time.Duration `mapstructure:"publish_timeout"`
}

type BusConfig struct {
	SubscriberBuffer    int `mapstructure:"subscriber_buffer"`
	SoftSubscriberLimit int `mapstructure:"soft_subscriber_limit"`
}

// AuthConfig enables bearer-token checks on /api/v1 when JWTSecret is set.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type InfluxConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Token   string `mapstructure:"token"`
	Org     string `mapstructure:"org"`
	Bucket  string `mapstructure:"bucket"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Stream   string `mapstructure:"stream"`
	MaxLen   int64  `mapstructure:"max_len"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("db.path", "plants.db")

	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.clean_session", true)
	v.SetDefault("mqtt.reconnect_interval", 5*time.Second)
	v.SetDefault("mqtt.connect_timeout", 10*time.Second)
	v.SetDefault("mqtt.publish_timeout", 5*time.Second)

	v.SetDefault("bus.subscriber_buffer", 64)
	v.SetDefault("bus.soft_subscriber_limit", 100)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("influx.enabled", false)
	v.SetDefault("influx.url", "http://localhost:8086")
	v.SetDefault("influx.token", "")
	v.SetDefault("influx.org", "")
	v.SetDefault("influx.bucket", "plants")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stream", "plants:events")
	v.SetDefault("redis.max_len", 10000)
}

// Load reads an optional .env file, then the YAML config at path (or
// configs/config.yml when path is empty), then PLANT_* environment overrides.
// A missing config file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("configs")
		v.SetConfigName("config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values the process cannot start without.
func (c *Config) Validate() error {
	var errs []string

	if c.DB.Path == "" {
		errs = append(errs, "db.path is required")
	}
	if c.MQTT.Broker == "" {
		errs = append(errs, "mqtt.broker is required")
	}
	if c.MQTT.ReconnectInterval <= 0 {
		errs = append(errs, "mqtt.reconnect_interval must be positive")
	}
	if c.Bus.SubscriberBuffer < 1 {
		errs = append(errs, "bus.subscriber_buffer must be at least 1")
	}
	if c.Influx.Enabled && (c.Influx.URL == "" || c.Influx.Bucket == "") {
		errs = append(errs, "influx.url and influx.bucket are required when influx is enabled")
	}
	if c.Redis.Enabled && (c.Redis.Addr == "" || c.Redis.Stream == "") {
		errs = append(errs, "redis.addr and redis.stream are required when redis is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}
