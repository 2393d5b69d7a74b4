package session

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shift_report_bot/internal/domain/workflow"
)

func sampleInstance(userID int64) *workflow.Instance {
	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	return &workflow.Instance{
		ID:     "f3c1",
		UserID: userID,
		Type:   workflow.TypeShiftClose,
		State:  workflow.StateCard,
		Answers: workflow.Answers{
			"place":    {Kind: workflow.ValueText, Text: "Park"},
			"visitors": {Kind: workflow.ValueNumber, Text: "57"},
			"photo":    {Kind: workflow.ValuePhotos, Photos: []string{"a", "b"}},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func exerciseStore(t *testing.T, store workflow.SessionStore) {
	ctx := context.Background()
	key := workflow.KeyFor(time.Now().UnixNano())

	_, err := store.Get(ctx, key)
	require.ErrorIs(t, err, workflow.ErrSessionNotFound)

	inst := sampleInstance(key.UserID)
	require.NoError(t, store.Put(ctx, key, inst))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, inst.State, got.State)
	assert.Equal(t, inst.Answers, got.Answers)
	assert.True(t, inst.CreatedAt.Equal(got.CreatedAt))

	got.Answers["photo"].Photos[0] = "changed"
	again, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "a", again.Answers["photo"].Photos[0])

	require.NoError(t, store.Clear(ctx, key))
	_, err = store.Get(ctx, key)
	require.ErrorIs(t, err, workflow.ErrSessionNotFound)

	require.NoError(t, store.Clear(ctx, key))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(time.Hour))
}

func TestMemoryStoreExpires(t *testing.T) {
	store := NewMemoryStore(20 * time.Millisecond)
	ctx := context.Background()
	key := workflow.KeyFor(1)
	require.NoError(t, store.Put(ctx, key, sampleInstance(1)))
	time.Sleep(40 * time.Millisecond)
	_, err := store.Get(ctx, key)
	require.ErrorIs(t, err, workflow.ErrSessionNotFound)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR is not set")
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	store := NewRedisStore(RedisConfig{
		Addrs:     strings.Split(addr, ","),
		Namespace: "shift_report_bot_test",
		TTL:       time.Minute,
	}, logrus.NewEntry(l))
	defer store.Close()
	require.NoError(t, store.Ping(context.Background()))

	exerciseStore(t, store)
}
