package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/Additional-Code/timeclock/internal/config"
)

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	s := NewMemoryStore(time.Minute)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "a", []byte("1"), 0))
	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got)

	now = now.Add(time.Minute)
	_, err = s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Zero(t, s.Len())
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	require.NoError(t, s.Set(ctx, "a", []byte("1"), time.Hour))
	require.NoError(t, s.Set(ctx, "b", []byte("2"), time.Hour))
	require.NoError(t, s.Set(ctx, "c", []byte("3"), time.Hour))
	require.NoError(t, s.Delete(ctx, "a", "b", "missing"))

	_, err := s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, 1, s.Len())
	assert.ErrorIs(t, s.Set(ctx, "", []byte("x"), 0), ErrEmptyKey)
}

func TestNewStore_Drivers(t *testing.T) {
	tests := []struct {
		driver  string
		want    any
		wantErr bool
	}{
		{driver: "noop", want: noopStore{}},
		{driver: "memory", want: &MemoryStore{}},
		{driver: "redis", want: &RedisStore{}},
		{driver: "memcached", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			cfg := config.Config{Cache: config.Cache{Driver: tt.driver, DefaultTTL: time.Minute}}
			cfg.Cache.Redis.Addr = "127.0.0.1:6379"

			store, err := NewStore(fxtest.NewLifecycle(t), cfg, zap.NewNop())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, store)
		})
	}
}

func TestNonEmpty(t *testing.T) {
	assert.Empty(t, nonEmpty([]string{"", ""}))
	assert.Equal(t, []string{"a", "b"}, nonEmpty([]string{"a", "", "b"}))
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)
	key := Key("developer", "100")
	assert.Equal(t, "timeclock:developer:100", key)

	type dev struct {
		Forename string `json:"forename"`
	}

	var out dev
	hit, err := GetJSON(ctx, s, key, &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, SetJSON(ctx, s, key, dev{Forename: "Megan"}, 0))
	hit, err = GetJSON(ctx, s, key, &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "Megan", out.Forename)

	require.NoError(t, s.Set(ctx, key, []byte("{broken"), 0))
	hit, err = GetJSON(ctx, s, key, &out)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Zero(t, s.Len())
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	s := Noop()
	require.NoError(t, s.Set(ctx, "a", []byte("1"), 0))
	_, err := s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
