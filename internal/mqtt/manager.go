package mqtt

import (
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"plant_watering/internal/config"
	"plant_watering/internal/logger"
)

// MessageHandler receives every inbound message. With ordered delivery it is
// never called concurrently with itself.
type MessageHandler func(topic string, payload []byte)

// newPahoClient is replaced in tests.
var newPahoClient = pahomqtt.NewClient

// Manager owns a single broker session.
type Manager struct {
	cfg     config.MQTTConfig
	handler MessageHandler
	log     *logger.Logger

	mu     sync.Mutex
	client pahomqtt.Client
}

func NewManager(cfg config.MQTTConfig, handler MessageHandler, log *logger.Logger) *Manager {
	return &Manager{cfg: cfg, handler: handler, log: log}
}

// Connect starts a session unless one already exists, connected or still
// retrying. If the broker is not reachable within the connect timeout the
// session keeps retrying in the background and Connect returns nil.
func (m *Manager) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		return nil
	}

	opts := buildClientOptions(m.cfg)
	opts.SetOnConnectHandler(m.onConnect)
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		m.log.Warnw("mqtt_connection_lost", "err", err)
	})
	opts.SetReconnectingHandler(func(_ pahomqtt.Client, _ *pahomqtt.ClientOptions) {
		m.log.Infow("mqtt_reconnecting", "broker", m.cfg.Broker)
	})

	client := newPahoClient(opts)
	timeout := withDefault(m.cfg.ConnectTimeout, defaultConnectTimeout)
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		m.log.Warnw("mqtt_connect_pending", "broker", m.cfg.Broker, "timeout", timeout)
		m.client = client
		return nil
	}
	if err := token.Error(); err != nil {
		client.Disconnect(defaultDisconnectQuiesce)
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	m.client = client
	return nil
}

// onConnect runs on the first connect and after every reconnect.
func (m *Manager) onConnect(c pahomqtt.Client) {
	m.log.Infow("mqtt_connected", "broker", m.cfg.Broker)

	for _, topic := range (Topics{}).Subscriptions() {
		token := c.Subscribe(topic, SubscribeQoS, m.wrapHandler())
		go func(topic string, token pahomqtt.Token) {
			if !token.WaitTimeout(defaultPublishTimeout) {
				m.log.Warnw("mqtt_subscribe_timeout", "topic", topic)
				return
			}
			if err := token.Error(); err != nil {
				m.log.Errorw("mqtt_subscribe_failed", "topic", topic, "err", err)
				return
			}
			m.log.Debugw("mqtt_subscribed", "topic", topic)
		}(topic, token)
	}
}

// wrapHandler adapts the MessageHandler to paho and recovers from panics.
func (m *Manager) wrapHandler() pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				m.log.Errorw("mqtt_handler_panic", "topic", msg.Topic(), "panic", r)
			}
		}()
		if m.handler != nil {
			m.handler(msg.Topic(), msg.Payload())
		}
	}
}

// Publish hands a message to the session and waits for paho to accept it.
func (m *Manager) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	// IsConnected stays true while paho retries; only an open connection counts.
	client := m.session()
	if client == nil || !client.IsConnectionOpen() {
		return ErrNotConnected
	}

	timeout := withDefault(m.cfg.PublishTimeout, defaultPublishTimeout)
	token := client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// Disconnect ends the session; the next Connect starts a fresh one.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		return
	}
	m.client.Disconnect(defaultDisconnectQuiesce)
	m.client = nil
	m.log.Infow("mqtt_disconnected", "broker", m.cfg.Broker)
}

// IsConnected reports an open broker connection, not a retrying client.
func (m *Manager) IsConnected() bool {
	client := m.session()
	return client != nil && client.IsConnectionOpen()
}

func (m *Manager) session() pahomqtt.Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.client
}
