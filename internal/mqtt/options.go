package mqtt

import (
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"plant_watering/internal/config"
)

const (
	defaultConnectTimeout    = 10 * time.Second
	defaultPublishTimeout    = 5 * time.Second
	defaultReconnectInterval = 5 * time.Second

	// milliseconds
	defaultDisconnectQuiesce = 250

	defaultKeepAlive = 60 * time.Second

	maxQoS = 2

	// maxPayloadSize bounds outbound messages (1MB).
	maxPayloadSize = 1 << 20

	clientIDPrefix = "plant-iot-server-"
)

// now is replaced in tests.
var now = time.Now

func clientID(cfg config.MQTTConfig) string {
	if cfg.ClientID != "" {
		return cfg.ClientID
	}
	return fmt.Sprintf("%s%d", clientIDPrefix, now().UnixMilli())
}

func withDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

// buildClientOptions maps config onto paho options. Reconnects happen at a
// fixed interval and messages are delivered in order.
func buildClientOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(clientID(cfg))

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetCleanSession(cfg.CleanSession)

	interval := withDefault(cfg.ReconnectInterval, defaultReconnectInterval)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(interval)
	opts.SetMaxReconnectInterval(interval)

	opts.SetConnectTimeout(withDefault(cfg.ConnectTimeout, defaultConnectTimeout))
	opts.SetKeepAlive(defaultKeepAlive)
	opts.SetOrderMatters(true)

	return opts
}
