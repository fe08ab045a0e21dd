package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/vnykmshr/framepipe/internal/testutil"
	gferrors "github.com/vnykmshr/framepipe/pkg/common/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "framepipe.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	testutil.AssertNoError(t, cfg.Validate())
	testutil.AssertEqual(t, cfg.EncoderConfig().PollInterval, time.Millisecond)
	testutil.AssertEqual(t, cfg.StoreConfig().TTL, 10*time.Minute)
	testutil.AssertEqual(t, cfg.RetryDelay(), 5*time.Millisecond)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")

	cfg, resolved, exists, err := Load(path)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, exists, false)
	testutil.AssertEqual(t, resolved, path)
	testutil.AssertEqual(t, cfg.GIF, Default().GIF)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[encoder]
rate = 25.0
poll_interval = "2ms"

[gif]
queue_capacity = 4
palette = " WebSafe "

[store]
ttl = ""

[logging]
level = "DEBUG"
format = "json"
`)

	cfg, _, exists, err := Load(path)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, exists, true)

	enc := cfg.EncoderConfig()
	testutil.AssertEqual(t, enc.Rate, 25.0)
	testutil.AssertEqual(t, enc.PollInterval, 2*time.Millisecond)
	testutil.AssertEqual(t, enc.Settings.QueueCapacity, 4)
	testutil.AssertEqual(t, enc.Settings.Palette, "websafe")
	testutil.AssertEqual(t, enc.Settings.Dither, true)
	testutil.AssertEqual(t, cfg.StoreConfig().TTL, time.Duration(0))
	testutil.AssertEqual(t, cfg.Logging.Level, "debug")
	testutil.AssertEqual(t, cfg.Render.Frames, Default().Render.Frames)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "[gif]\nqueue_size = 3\n", "parse config"},
		{"bad duration", "[encoder]\npoll_interval = \"soon\"\n", "encoder.poll_interval"},
		{"zero capacity", "[gif]\nqueue_capacity = 0\n", "queue_capacity"},
		{"bad level", "[logging]\nlevel = \"loud\"\n", "logging.level"},
		{"bad janitor", "[store]\njanitor_spec = \"often\"\n", "janitor_spec"},
		{"metrics without listen", "[metrics]\nenabled = true\nlisten = \"\"\n", "metrics.listen"},
		{"negative frames", "[render]\nframes = -1\n", "render.frames"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := Load(writeConfig(t, tt.body))
			testutil.AssertError(t, err)
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestValidationErrorsAreTyped(t *testing.T) {
	_, _, _, err := Load(writeConfig(t, "[encoder]\nrate = 0.0\n"))
	testutil.AssertErrorIs(t, err, gferrors.ErrInvalidConfiguration)
}

func TestSampleMatchesDefaults(t *testing.T) {
	var cfg Config
	testutil.AssertNoError(t, toml.Unmarshal([]byte(sampleConfig), &cfg))
	testutil.AssertNoError(t, cfg.normalize())

	def := Default()
	testutil.AssertEqual(t, cfg.Encoder, def.Encoder)
	testutil.AssertEqual(t, cfg.GIF, def.GIF)
	testutil.AssertEqual(t, cfg.Store, def.Store)
	testutil.AssertEqual(t, cfg.Logging, def.Logging)
	testutil.AssertEqual(t, cfg.Metrics, def.Metrics)
	testutil.AssertEqual(t, cfg.Render, def.Render)
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "framepipe.toml")
	testutil.AssertNoError(t, CreateSample(path))
	testutil.AssertError(t, CreateSample(path))

	_, _, exists, err := Load(path)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, exists, true)
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.GIF.Repeat = -1

	data, err := cfg.Marshal()
	testutil.AssertNoError(t, err)

	loaded, _, _, err := Load(writeConfig(t, string(data)))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, loaded.GIF.Repeat, -1)
}
