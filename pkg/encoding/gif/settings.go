package gif

import (
	"image/color"
	"image/color/palette"

	gferrors "github.com/vnykmshr/framepipe/pkg/common/errors"
	"github.com/vnykmshr/framepipe/pkg/common/validation"
)

// Palette names accepted by Settings.Palette.
const (
	PalettePlan9   = "plan9"
	PaletteWebSafe = "websafe"
)

// Settings configures the encoding engine.
type Settings struct {
	// QueueCapacity is the number of frames that may wait between the
	// Collector and the Writer.
	QueueCapacity int `toml:"queue_capacity"`

	// Repeat is the GIF loop count: 0 loops forever, -1 plays once,
	// n > 0 plays n+1 times.
	Repeat int `toml:"repeat"`

	// Dither enables Floyd-Steinberg error diffusion when mapping frames onto
	// the palette.
	Dither bool `toml:"dither"`

	// Palette selects the fixed palette frames are quantized to.
	Palette string `toml:"palette"`
}

// DefaultSettings returns the default engine settings.
func DefaultSettings() Settings {
	return Settings{
		QueueCapacity: 16,
		Repeat:        0,
		Dither:        true,
		Palette:       PalettePlan9,
	}
}

// Validate reports the first invalid field.
func (s Settings) Validate() error {
	if err := validation.ValidatePositive("gif", "queue_capacity", s.QueueCapacity); err != nil {
		return err
	}
	if s.Repeat < -1 {
		return gferrors.NewValidationError("gif", "repeat", s.Repeat, "must be -1 or greater").
			WithHint("use 0 to loop forever or -1 to play once")
	}
	return validation.ValidateOneOf("gif", "palette", s.Palette, PalettePlan9, PaletteWebSafe)
}

func (s Settings) colors() color.Palette {
	if s.Palette == PaletteWebSafe {
		return palette.WebSafe
	}
	return palette.Plan9
}
