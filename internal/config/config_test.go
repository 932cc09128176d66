package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
port: "9090"
log:
  level: debug
  format: json
db:
  path: /tmp/plants.db
mqtt:
  broker: tcp://broker:1883
  client_id: plants-core
  reconnect_interval: 2s
bus:
  subscriber_buffer: 8
redis:
  enabled: true
  addr: redis:6379
  stream: plants
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)
	assert.Equal(t, "plants-core", cfg.MQTT.ClientID)
	assert.Equal(t, 2*time.Second, cfg.MQTT.ReconnectInterval)
	assert.Equal(t, 10*time.Second, cfg.MQTT.ConnectTimeout, "default kept")
	assert.True(t, cfg.MQTT.CleanSession)
	assert.Equal(t, 8, cfg.Bus.SubscriberBuffer)
	assert.Equal(t, 100, cfg.Bus.SoftSubscriberLimit)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "plants", cfg.Redis.Stream)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "mqtt:\n  broker: tcp://file:1883\n")
	t.Setenv("PLANT_MQTT_BROKER", "tcp://env:1883")
	t.Setenv("PLANT_AUTH_JWT_SECRET", "s3cret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tcp://env:1883", cfg.MQTT.Broker)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
}

func TestLoad_Invalid(t *testing.T) {
	path := writeConfig(t, "mqtt:\n  reconnect_interval: 0s\nbus:\n  subscriber_buffer: 0\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mqtt.reconnect_interval")
	assert.Contains(t, err.Error(), "bus.subscriber_buffer")
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "mqtt: [broker\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate_OptionalSinks(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"influx without bucket", func(c *Config) { c.Influx.Enabled = true; c.Influx.Bucket = "" }, true},
		{"redis without addr", func(c *Config) { c.Redis.Enabled = true; c.Redis.Addr = "" }, true},
		{"disabled redis ignores addr", func(c *Config) { c.Redis.Addr = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				DB:     DBConfig{Path: "x.db"},
				MQTT:   MQTTConfig{Broker: "tcp://b:1883", ReconnectInterval: time.Second},
				Bus:    BusConfig{SubscriberBuffer: 1},
				Influx: InfluxConfig{URL: "http://i", Bucket: "b"},
				Redis:  RedisConfig{Addr: "r:6379", Stream: "s"},
			}
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
