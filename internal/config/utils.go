package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// envReader reads typed environment values. Malformed values are collected
// instead of silently replaced by the default.
type envReader struct {
	errs []error
}

func (r *envReader) lookup(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(value), true
}

func (r *envReader) invalid(key, value string, err error) {
	r.errs = append(r.errs, fmt.Errorf("invalid %s=%q: %w", key, value, err))
}

func (r *envReader) str(key, defaultVal string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultVal
}

func (r *envReader) int(key string, defaultVal int) int {
	value, ok := r.lookup(key)
	if !ok || value == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		r.invalid(key, value, err)
		return defaultVal
	}
	return v
}

func (r *envReader) bool(key string, defaultVal bool) bool {
	value, ok := r.lookup(key)
	if !ok || value == "" {
		return defaultVal
	}
	v, err := strconv.ParseBool(value)
	if err != nil {
		r.invalid(key, value, err)
		return defaultVal
	}
	return v
}

func (r *envReader) duration(key string, defaultVal time.Duration) time.Duration {
	value, ok := r.lookup(key)
	if !ok || value == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		r.invalid(key, value, err)
		return defaultVal
	}
	return d
}

func (r *envReader) float(key string, defaultVal float64) float64 {
	value, ok := r.lookup(key)
	if !ok || value == "" {
		return defaultVal
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		r.invalid(key, value, err)
		return defaultVal
	}
	return v
}

// list splits a comma separated value, dropping blank entries.
func (r *envReader) list(key string, defaults []string) []string {
	value, ok := r.lookup(key)
	if !ok {
		return defaults
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaults
	}
	return out
}

func (r *envReader) err() error {
	return errors.Join(r.errs...)
}
