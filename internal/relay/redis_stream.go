package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"

	"plant_watering/internal/config"
	"plant_watering/internal/events"
	"plant_watering/internal/logger"
)

const defaultStream = "plants:events"

// Relay copies every bus event onto a capped Redis stream so other
// processes can consume it. Failures are logged and the event is skipped.
type Relay struct {
	client *redis.Client
	bus    *events.Bus
	stream string
	maxLen int64
	log    *logger.Logger
}

func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func New(client *redis.Client, bus *events.Bus, cfg config.RedisConfig, log *logger.Logger) *Relay {
	stream := cfg.Stream
	if stream == "" {
		stream = defaultStream
	}
	return &Relay{client: client, bus: bus, stream: stream, maxLen: cfg.MaxLen, log: log}
}

// Run blocks until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	sub := r.bus.Subscribe(0)
	defer r.bus.Unsubscribe(sub)

	r.log.Infow("relay_started", "stream", r.stream)
	for {
		select {
		case <-ctx.Done():
			r.log.Infow("relay_stopped", "stream", r.stream, "dropped", sub.Dropped())
			return
		case ev, ok := <-sub.C():
			if !ok {
				return
			}
			if _, err := r.Append(ctx, ev); err != nil {
				r.log.Warnw("relay_append_failed", "type", ev.Type, "error", err)
			}
		}
	}
}

// Append writes one event and returns the stream entry id.
func (r *Relay) Append(ctx context.Context, ev events.Event) (string, error) {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return "", fmt.Errorf("marshal %s event: %w", ev.Type, err)
	}

	args := &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]interface{}{
			"type":      string(ev.Type),
			"data":      string(data),
			"timestamp": strconv.FormatInt(ev.At.UnixMilli(), 10),
		},
	}
	if r.maxLen > 0 {
		args.MaxLen = r.maxLen
		args.Approx = true
	}

	id, err := r.client.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("xadd %s: %w", r.stream, err)
	}
	return id, nil
}
