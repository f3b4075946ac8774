package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/solr-feeder"
)

var tracer = otel.Tracer("service")

const DefaultEventChannel = "solr-feeder.sync"

// SignalService fans sync events out over redis pub/sub.
type SignalService struct {
	rdb     *redis.Client
	channel string
}

func NewSignalService(redisClient *redis.Client, channel string) *SignalService {
	if channel == "" {
		channel = DefaultEventChannel
	}
	return &SignalService{
		rdb:     redisClient,
		channel: channel,
	}
}

func (s *SignalService) Publish(ctx context.Context, event feeder.SyncEvent) error {
	ctx, span := tracer.Start(ctx, "Signal.Service.Publish")
	defer span.End()
	span.SetAttributes(attribute.String("channel", s.channel))

	jsonstr, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		return err
	}

	err = s.rdb.Publish(ctx, s.channel, jsonstr).Err()
	if err != nil {
		err = errors.Wrap(err, "SignalService.Publish: rdb.Publish failed")
		span.RecordError(err)
		return err
	}

	return nil
}

// Realtime relays events to output until ctx is done. When filter is not
// empty only events for those name request numbers are relayed; the filter
// can be replaced at any time through input.
func (s *SignalService) Realtime(ctx context.Context, input <-chan []string, output chan<- feeder.SyncEvent) {
	pubsub := s.rdb.Subscribe(ctx, s.channel)
	defer pubsub.Close()

	messages := pubsub.Channel()
	filter := map[string]bool{}

	for {
		select {
		case <-ctx.Done():
			return
		case keys, ok := <-input:
			if !ok {
				return
			}
			filter = make(map[string]bool, len(keys))
			for _, k := range keys {
				filter[k] = true
			}
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var event feeder.SyncEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.WarnContext(
					ctx, "Dropping malformed sync event",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}
			if len(filter) > 0 && !filter[event.NameRequestNumber] {
				continue
			}
			select {
			case output <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}
