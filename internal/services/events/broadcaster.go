package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/quest-engine/pkg/command"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeCommands     EventType = "game.commands"
	EventTypeSessionSaved EventType = "game.saved"
)

// Event is the envelope published on a session channel. Commands holds a
// batch encoded with command.MarshalBatch.
type Event struct {
	Type     EventType       `json:"type"`
	GameID   string          `json:"game_id"`
	Seq      int64           `json:"seq"`
	Commands json.RawMessage `json:"commands,omitempty"`
}

// Channel returns the Pub/Sub channel of a session.
func Channel(gameID uuid.UUID) string {
	return fmt.Sprintf("game:%s:commands", gameID.String())
}

// Broadcaster publishes command batches to Redis Pub/Sub so remote renderers
// can follow a session. It is a command.Executor.
type Broadcaster struct {
	redisClient *redis.Client
	gameID      uuid.UUID
	logger      *slog.Logger
	seq         atomic.Int64
}

// Ensure Broadcaster implements Executor interface
var _ command.Executor = (*Broadcaster)(nil)

// NewBroadcaster creates a new event broadcaster for one session
func NewBroadcaster(redisClient *redis.Client, gameID uuid.UUID, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		redisClient: redisClient,
		gameID:      gameID,
		logger:      logger,
	}
}

// Execute publishes one batch. Empty batches are not published.
func (b *Broadcaster) Execute(ctx context.Context, cmds []command.Command) error {
	if len(cmds) == 0 {
		return nil
	}
	batch, err := command.MarshalBatch(cmds)
	if err != nil {
		b.logger.Error("Failed to marshal command batch", "error", err)
		return fmt.Errorf("failed to marshal commands: %w", err)
	}
	return b.publish(ctx, Event{Type: EventTypeCommands, Commands: batch})
}

// PublishSaved announces that the session document was persisted.
func (b *Broadcaster) PublishSaved(ctx context.Context) error {
	return b.publish(ctx, Event{Type: EventTypeSessionSaved})
}

func (b *Broadcaster) publish(ctx context.Context, event Event) error {
	channel := Channel(b.gameID)
	event.GameID = b.gameID.String()
	event.Seq = b.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
		"seq", event.Seq,
	)

	return nil
}

// Subscribe follows a session channel until ctx is done. Malformed messages
// are logged and dropped.
func Subscribe(ctx context.Context, redisClient *redis.Client, gameID uuid.UUID, logger *slog.Logger) (<-chan Event, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sub := redisClient.Subscribe(ctx, Channel(gameID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					logger.Warn("Dropping malformed event", "channel", msg.Channel, "error", err)
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
	return out, nil
}
