package config

import (
	"fmt"
	"time"

	"github.com/ttydeck/ttydeck/errors"
)

// Validate checks the configuration for values the schema cannot
// express, mainly duration strings.
func (c *Config) Validate() error {
	durations := []struct {
		field string
		value string
	}{
		{"storage.write_debounce", c.Storage.WriteDebounce},
		{"cleanup.session_timeout", c.Cleanup.SessionTimeout},
		{"cleanup.interval", c.Cleanup.Interval},
		{"tty.cache_ttl", c.TTY.CacheTTL},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeConfigValidation,
				fmt.Sprintf("%s is not a valid duration", d.field)).
				WithDetail("field", d.field).
				WithDetail("value", d.value)
		}
		if parsed < 0 {
			return errors.New(errors.ErrCodeConfigValidation,
				fmt.Sprintf("%s must not be negative", d.field)).
				WithDetail("field", d.field).
				WithDetail("value", d.value)
		}
	}

	if c.Cleanup.Interval != "" {
		if interval, _ := time.ParseDuration(c.Cleanup.Interval); interval > 0 && interval < time.Second {
			return errors.New(errors.ErrCodeConfigValidation,
				"cleanup.interval below 1s would hammer the store").
				WithDetail("value", c.Cleanup.Interval)
		}
	}

	if c.TTY.CacheSize < 0 {
		return errors.New(errors.ErrCodeConfigValidation, "tty.cache_size must not be negative").
			WithDetail("value", fmt.Sprintf("%d", c.TTY.CacheSize))
	}

	return nil
}
