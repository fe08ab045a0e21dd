package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/vnykmshr/framepipe/pkg/artifact/blobstore"
	"github.com/vnykmshr/framepipe/pkg/encoding/encoder"
	"github.com/vnykmshr/framepipe/pkg/encoding/gif"
)

//go:embed sample_config.toml
var sampleConfig string

// DefaultFileName is looked up in the working directory when Load is given
// no path.
const DefaultFileName = "framepipe.toml"

// Encoder contains the frame pipeline settings.
type Encoder struct {
	Rate         float64 `toml:"rate"`
	PollInterval string  `toml:"poll_interval"`
}

// Store contains configuration for the artifact store.
type Store struct {
	TTL         string `toml:"ttl"`
	JanitorSpec string `toml:"janitor_spec"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Metrics contains configuration for the Prometheus endpoint.
type Metrics struct {
	Enabled bool   `toml:"enabled"`
	Listen  string `toml:"listen"`
}

// Render contains configuration for the demo render command.
type Render struct {
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	Frames     int    `toml:"frames"`
	MaxRetries int    `toml:"max_retries"`
	RetryDelay string `toml:"retry_delay"`
	Output     string `toml:"output"`
}

// Config is the framepipe configuration file.
type Config struct {
	Encoder Encoder      `toml:"encoder"`
	GIF     gif.Settings `toml:"gif"`
	Store   Store        `toml:"store"`
	Logging Logging      `toml:"logging"`
	Metrics Metrics      `toml:"metrics"`
	Render  Render       `toml:"render"`

	pollInterval time.Duration
	ttl          time.Duration
	retryDelay   time.Duration
}

// Load reads the configuration at path on top of the defaults, normalizes
// and validates it. With an empty path it reads DefaultFileName from the
// working directory if present. It also reports the resolved path and
// whether a file was read.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolved, exists, err := resolvePath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

func resolvePath(path string) (string, bool, error) {
	if path == "" {
		path = DefaultFileName
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false, err
	}
	if _, err := os.Stat(abs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return abs, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	return abs, true, nil
}

// CreateSample writes the annotated sample configuration to path. It refuses
// to overwrite an existing file.
func CreateSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Marshal renders the configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// EncoderConfig returns the encoder configuration described by c.
func (c *Config) EncoderConfig() encoder.Config {
	return encoder.Config{
		Settings:     c.GIF,
		Rate:         c.Encoder.Rate,
		PollInterval: c.pollInterval,
	}
}

// StoreConfig returns the artifact store configuration described by c.
func (c *Config) StoreConfig() blobstore.Config {
	return blobstore.Config{
		Name:        "framepipe",
		TTL:         c.ttl,
		JanitorSpec: c.Store.JanitorSpec,
	}
}

// RetryDelay is how long the render command waits before resubmitting a
// frame the encoder refused with a full queue.
func (c *Config) RetryDelay() time.Duration {
	return c.retryDelay
}
