package config

import (
	"fmt"
	"strings"
	"time"
)

func (c *Config) normalize() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.GIF.Palette = strings.ToLower(strings.TrimSpace(c.GIF.Palette))
	c.Store.JanitorSpec = strings.TrimSpace(c.Store.JanitorSpec)
	c.Render.Output = strings.TrimSpace(c.Render.Output)

	var err error
	if c.pollInterval, err = parseDuration("encoder.poll_interval", c.Encoder.PollInterval); err != nil {
		return err
	}
	if c.ttl, err = parseDuration("store.ttl", c.Store.TTL); err != nil {
		return err
	}
	if c.retryDelay, err = parseDuration("render.retry_delay", c.Render.RetryDelay); err != nil {
		return err
	}
	return nil
}

// parseDuration treats an empty value as zero.
func parseDuration(field, value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}
