package imgpreset

import (
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config holds the knobs the pipeline reads. It is passed explicitly to
// the pieces that need it instead of living in package state.
type Config struct {
	JPEGQuality int `default:"90" validate:"gte=1,lte=100"`

	Watermark        bool    `default:"true"`
	WatermarkPath    string  `default:"assets/logo.png"`
	WatermarkOpacity float64 `default:"0.9" validate:"gte=0,lte=1"`
	WatermarkScale   float64 `default:"0.15" validate:"gt=0,lte=1"`

	Lighting LightingConfig
	Raw      RawConfig
}

// RawConfig configures the dcraw based RAW decoders.
type RawConfig struct {
	Dcraw         string        `default:"dcraw" validate:"required"`
	Brightness    float64       `default:"1.4" validate:"gt=0"`
	ExposureShift float64       `default:"0.4" validate:"gte=-2,lte=3"`
	Timeout       time.Duration `default:"2m"`
}

// DefaultConfig returns a Config populated from its default tags.
func DefaultConfig() Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(err)
	}
	return c
}

// Validate reports the first out-of-range field as a configuration error.
func (c Config) Validate() error {
	return newError(ConfigurationError, "validate config", "", validate.Struct(c))
}
