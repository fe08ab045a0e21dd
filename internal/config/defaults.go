package config

import (
	"github.com/vnykmshr/framepipe/pkg/encoding/gif"
)

// Default returns the built-in configuration.
func Default() Config {
	cfg := Config{
		Encoder: Encoder{
			Rate:         10,
			PollInterval: "1ms",
		},
		GIF: gif.DefaultSettings(),
		Store: Store{
			TTL:         "10m",
			JanitorSpec: "@every 1m",
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
		Metrics: Metrics{
			Enabled: false,
			Listen:  "127.0.0.1:9090",
		},
		Render: Render{
			Width:      160,
			Height:     120,
			Frames:     30,
			MaxRetries: 200,
			RetryDelay: "5ms",
			Output:     "framepipe.gif",
		},
	}
	_ = cfg.normalize()
	return cfg
}
