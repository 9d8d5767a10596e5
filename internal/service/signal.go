package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/aichampion/hall/internal/domain"
)

const eventChannel = "hall:events"

// SignalService fans out hall change events over redis pub/sub so every
// server instance can feed its connected websocket clients.
type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, event domain.Event) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, eventChannel, jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Subscribe delivers events until the context is cancelled. Messages that
// fail to decode are skipped.
func (s *SignalService) Subscribe(ctx context.Context) <-chan domain.Event {
	out := make(chan domain.Event)

	sub := s.rdb.Subscribe(ctx, eventChannel)

	go func() {
		defer close(out)
		defer sub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				var event domain.Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}
