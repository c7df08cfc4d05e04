package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/quest-engine/pkg/command"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return client, mr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestBroadcaster_Execute(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gameID := uuid.New()
	events, err := Subscribe(ctx, client, gameID, testLogger())
	require.NoError(t, err)

	b := NewBroadcaster(client, gameID, testLogger())
	require.NoError(t, b.Execute(ctx, []command.Command{
		command.PlaySound{URL: "sounds/strum.mp3"},
		command.Log{Message: "Tuning the Grotto: talk_to_echo -> gather_crystals"},
	}))
	require.NoError(t, b.Execute(ctx, nil), "empty batches are skipped")
	require.NoError(t, b.PublishSaved(ctx))

	ev := receive(t, events)
	assert.Equal(t, EventTypeCommands, ev.Type)
	assert.Equal(t, gameID.String(), ev.GameID)
	assert.Equal(t, int64(1), ev.Seq)

	var batch []map[string]any
	require.NoError(t, json.Unmarshal(ev.Commands, &batch))
	require.Len(t, batch, 2)
	assert.Equal(t, "playSound", batch[0]["type"])
	assert.Equal(t, "sounds/strum.mp3", batch[0]["url"])
	assert.Equal(t, "log", batch[1]["type"])

	saved := receive(t, events)
	assert.Equal(t, EventTypeSessionSaved, saved.Type)
	assert.Equal(t, int64(2), saved.Seq)
}

func TestBroadcaster_OtherSessionsIsolated(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()

	mine, other := uuid.New(), uuid.New()
	require.NoError(t, NewBroadcaster(client, other, testLogger()).Execute(ctx, []command.Command{command.Log{Message: "x"}}))

	assert.Equal(t, "game:"+mine.String()+":commands", Channel(mine))
	assert.Empty(t, mr.PubSubNumSub(Channel(mine))[Channel(mine)])
}

func TestBroadcaster_PublishFails(t *testing.T) {
	client, mr := setupTestRedis(t)
	mr.Close()

	b := NewBroadcaster(client, uuid.New(), testLogger())
	err := b.Execute(context.Background(), []command.Command{command.Log{Message: "x"}})
	assert.Error(t, err)
}

func TestSubscribe_DropsMalformed(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gameID := uuid.New()
	events, err := Subscribe(ctx, client, gameID, testLogger())
	require.NoError(t, err)

	mr.Publish(Channel(gameID), "not json")
	require.NoError(t, NewBroadcaster(client, gameID, testLogger()).PublishSaved(ctx))

	ev := receive(t, events)
	assert.Equal(t, EventTypeSessionSaved, ev.Type)

	cancel()
	select {
	case _, ok := <-events:
		for ok {
			_, ok = <-events
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not close after cancel")
	}
}
