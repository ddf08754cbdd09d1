package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/timeclock/internal/config"
	"github.com/Additional-Code/timeclock/internal/messaging"
)

func enabledConfig() config.Config {
	return config.Config{Messaging: config.Messaging{
		Enabled: true,
		Workers: config.Worker{Enabled: true, Concurrency: 2},
	}}
}

func TestEngine_FansOutPerTopic(t *testing.T) {
	client := messaging.NewMemoryClient("timeclock.changes", 8)

	var (
		mu   sync.Mutex
		seen []string
	)
	record := func(name string) messaging.Handler {
		return func(_ context.Context, msg messaging.Message) error {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, name+":"+string(msg.Key))
			return nil
		}
	}

	engine := NewEngine(Params{
		Client: client,
		Logger: zap.NewNop(),
		Config: enabledConfig(),
		Registrations: []HandlerRegistration{
			{Topic: "timeclock.changes", Handler: record("audit")},
			{Topic: "timeclock.changes", Handler: record("metrics")},
			{Topic: "", Handler: record("ignored")},
		},
	})
	require.NoError(t, engine.Start(context.Background()))

	require.NoError(t, client.Publish(context.Background(), messaging.Message{Key: []byte("Job:1")}))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 2
	}, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, engine.Stop(ctx))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"audit:Job:1", "metrics:Job:1"}, seen)
}

func TestEngine_Disabled(t *testing.T) {
	called := false
	engine := NewEngine(Params{
		Client: messaging.NewMemoryClient("t", 1),
		Logger: zap.NewNop(),
		Config: config.Config{},
		Registrations: []HandlerRegistration{{Topic: "t", Handler: func(context.Context, messaging.Message) error {
			called = true
			return errors.New("unreachable")
		}}},
	})

	require.NoError(t, engine.Start(context.Background()))
	require.NoError(t, engine.Stop(context.Background()))
	assert.False(t, called)
}

func TestEngine_Dispatch(t *testing.T) {
	boom := errors.New("boom")
	engine := NewEngine(Params{
		Client: messaging.NewMemoryClient("t", 1),
		Config: enabledConfig(),
		Registrations: []HandlerRegistration{
			{Topic: "b", Handler: func(context.Context, messaging.Message) error { return boom }},
			{Topic: "b", Handler: func(context.Context, messaging.Message) error { return nil }},
			{Topic: "a", Handler: nil},
		},
	})

	assert.Equal(t, []string{"b"}, engine.Topics())
	assert.ErrorIs(t, engine.Dispatch(context.Background(), messaging.Message{Topic: "b"}), boom)
	assert.NoError(t, engine.Dispatch(context.Background(), messaging.Message{Topic: "unknown"}))
}
