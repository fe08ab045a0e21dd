package config

import (
	"errors"
	"fmt"

	"github.com/vnykmshr/framepipe/pkg/common/validation"
)

// Validate ensures the configuration is usable. It expects a normalized
// configuration.
func (c *Config) Validate() error {
	if err := c.EncoderConfig().Validate(); err != nil {
		return err
	}
	if err := c.StoreConfig().Validate(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateMetrics(); err != nil {
		return err
	}
	return c.validateRender()
}

func (c *Config) validateLogging() error {
	if err := validation.ValidateOneOf("config", "logging.format", c.Logging.Format, "console", "text", "json"); err != nil {
		return err
	}
	return validation.ValidateOneOf("config", "logging.level", c.Logging.Level, "debug", "info", "warn", "error")
}

func (c *Config) validateMetrics() error {
	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		return errors.New("metrics.listen must be set when metrics are enabled")
	}
	return nil
}

func (c *Config) validateRender() error {
	if err := validation.ValidatePositive("config", "render.width", c.Render.Width); err != nil {
		return err
	}
	if err := validation.ValidatePositive("config", "render.height", c.Render.Height); err != nil {
		return err
	}
	if c.Render.Frames < 0 {
		return fmt.Errorf("render.frames must be zero or positive, got %d", c.Render.Frames)
	}
	if c.Render.MaxRetries < 0 {
		return fmt.Errorf("render.max_retries must be zero or positive, got %d", c.Render.MaxRetries)
	}
	if c.Render.Output == "" {
		return errors.New("render.output must be set")
	}
	return nil
}
