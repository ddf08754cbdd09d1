package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Key joins key parts under the timeclock namespace, e.g.
// Key("developer", "100") is "timeclock:developer:100".
func Key(parts ...string) string {
	return "timeclock:" + strings.Join(parts, ":")
}

// GetJSON decodes the cached value into dst. It reports false on a miss.
func GetJSON(ctx context.Context, store Store, key string, dst any) (bool, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// a value we cannot read is as good as absent
		_ = store.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, store Store, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return store.Set(ctx, key, raw, ttl)
}
