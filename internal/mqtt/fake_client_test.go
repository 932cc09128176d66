package mqtt

import (
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

type fakeToken struct {
	err     error
	pending bool
}

func (t *fakeToken) Wait() bool                     { return !t.pending }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.pending }
func (t *fakeToken) Error() error                   { return t.err }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	if !t.pending {
		close(ch)
	}
	return ch
}

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakeClient is an in-memory pahomqtt.Client.
type fakeClient struct {
	opts *pahomqtt.ClientOptions

	connectToken *fakeToken
	publishToken *fakeToken

	mu sync.Mutex
	// connected is an open network connection. reconnecting mirrors paho
	// with ConnectRetry/AutoReconnect: IsConnected reports true, but
	// IsConnectionOpen does not.
	connected    bool
	reconnecting bool
	subscribed   map[string]pahomqtt.MessageHandler
	published    []published
	disconnects  int
}

func newFakeClient(opts *pahomqtt.ClientOptions) *fakeClient {
	return &fakeClient{
		opts:         opts,
		connectToken: &fakeToken{},
		publishToken: &fakeToken{},
		subscribed:   make(map[string]pahomqtt.MessageHandler),
	}
}

func (f *fakeClient) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected || f.reconnecting
}

func (f *fakeClient) IsConnectionOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

// loseConnection simulates the broker going away with auto reconnect on.
func (f *fakeClient) loseConnection() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	f.reconnecting = true
}

func (f *fakeClient) Connect() pahomqtt.Token {
	tok := f.connectToken
	if tok.err != nil {
		return tok
	}
	if tok.pending {
		f.mu.Lock()
		f.reconnecting = true
		f.mu.Unlock()
		return tok
	}
	f.mu.Lock()
	f.connected = true
	f.mu.Unlock()
	if f.opts.OnConnect != nil {
		f.opts.OnConnect(f)
	}
	return tok
}

func (f *fakeClient) Disconnect(uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	f.reconnecting = false
	f.disconnects++
}

func (f *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, _ := payload.([]byte)
	f.published = append(f.published, published{topic: topic, qos: qos, retained: retained, payload: b})
	return f.publishToken
}

func (f *fakeClient) Subscribe(topic string, _ byte, callback pahomqtt.MessageHandler) pahomqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribed[topic] = callback
	return &fakeToken{}
}

func (f *fakeClient) SubscribeMultiple(filters map[string]byte, callback pahomqtt.MessageHandler) pahomqtt.Token {
	for topic, qos := range filters {
		f.Subscribe(topic, qos, callback)
	}
	return &fakeToken{}
}

func (f *fakeClient) Unsubscribe(topics ...string) pahomqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range topics {
		delete(f.subscribed, t)
	}
	return &fakeToken{}
}

func (f *fakeClient) AddRoute(string, pahomqtt.MessageHandler) {}

func (f *fakeClient) OptionsReader() pahomqtt.ClientOptionsReader {
	return pahomqtt.ClientOptionsReader{}
}

func (f *fakeClient) handlerFor(topic string) pahomqtt.MessageHandler {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscribed[topic]
}

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}
