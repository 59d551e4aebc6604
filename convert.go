package imgpreset

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/disintegration/imaging"
)

type decodeConfig struct {
	autoOrientation bool
}

var defaultDecodeConfig = decodeConfig{
	autoOrientation: true,
}

// DecodeOption sets an optional parameter for the Decode and Open functions.
type DecodeOption func(*decodeConfig)

// AutoOrientation returns a DecodeOption that sets the auto-orientation mode.
// If auto-orientation is enabled, the image will be transformed after decoding
// according to the EXIF orientation tag (if present). By default it's enabled.
func AutoOrientation(enabled bool) DecodeOption {
	return func(c *decodeConfig) {
		c.autoOrientation = enabled
	}
}

// Decode reads an image from r and returns it as an opaque RGB raster.
func Decode(r io.Reader, opts ...DecodeOption) (*image.NRGBA, error) {
	cfg := defaultDecodeConfig
	for _, option := range opts {
		option(&cfg)
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(cfg.autoOrientation))
	if err != nil {
		return nil, err
	}
	return opaque(img), nil
}

// DecodeConfig decodes the color model and dimensions of an image that has been encoded in a
// registered format. The string returned is the format name used during format registration.
func DecodeConfig(r io.Reader) (image.Config, string, error) {
	return image.DecodeConfig(r)
}

// Open loads an image from file.
func Open(file string, opts ...DecodeOption) (*image.NRGBA, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(f, opts...)
}

// Write image according format option
func Write(w io.Writer, base image.Image, option *FormatOption) error {
	return option.Encode(w, base)
}

// Save saves image according format option
func Save(output string, base image.Image, option *FormatOption) error {
	f, err := os.Create(output)
	if err != nil {
		return newError(EncodeFailure, "create", output, err)
	}
	defer f.Close()

	if err := option.Encode(f, base); err != nil {
		return err
	}
	return newError(EncodeFailure, "close", output, f.Close())
}

// decodeStrategy is one way of turning a file into a raster.
type decodeStrategy struct {
	name   string
	decode func(ctx context.Context, path string) (*image.NRGBA, error)
}

// decodeFirst tries strategies in order and returns the first success.
// When all fail the error carries every attempt, the last one first.
func decodeFirst(ctx context.Context, path string, strategies []decodeStrategy) (*image.NRGBA, error) {
	var errs []error
	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return nil, newError(DecodeFailure, "decode", path, err)
		}
		img, err := s.decode(ctx, path)
		if err == nil {
			if len(errs) > 0 {
				logger.Debugw("Decoded with fallback", "file", path, "decoder", s.name)
			}
			return img, nil
		}
		logger.Debugw("Decoder failed", "file", path, "decoder", s.name, "error", err)
		errs = append([]error{fmt.Errorf("%s: %w", s.name, err)}, errs...)
	}
	if len(errs) == 0 {
		errs = append(errs, ErrNoDecoder)
	}
	return nil, newError(DecodeFailure, "decode", path, errors.Join(errs...))
}

// Profile selects how a Loader decodes RAW files.
type Profile int

const (
	// Basic decodes RAW files conservatively: camera white balance and no
	// auto brightness. Used when no preset will be applied.
	Basic Profile = iota
	// SmartEnhanced decodes RAW files with the enhanced tone chain that
	// makes up for the missing in-camera curve. Used before presets.
	SmartEnhanced
)

func (p Profile) String() string {
	if p == SmartEnhanced {
		return "smart-enhanced"
	}
	return "basic"
}

// Loader decodes source files to opaque RGB rasters.
type Loader struct {
	Profile Profile
	Raw     RawConfig
}

// NewLoader returns a Loader for profile using the RAW settings of cfg.
func NewLoader(profile Profile, cfg RawConfig) *Loader {
	return &Loader{Profile: profile, Raw: cfg}
}

// Load decodes path. Standard images are opened directly with EXIF
// orientation applied; RAW files go through the decoder chain of the profile.
func (l *Loader) Load(ctx context.Context, path string) (*image.NRGBA, error) {
	return decodeFirst(ctx, path, l.strategies(path))
}

func (l *Loader) strategies(path string) []decodeStrategy {
	if !IsRaw(path) {
		return []decodeStrategy{standardDecoder}
	}
	raw := rawDecoder{cfg: l.Raw}
	conservative := decodeStrategy{"conservative", raw.conservative}
	if l.Profile == SmartEnhanced {
		return []decodeStrategy{{"enhanced", raw.enhanced}, conservative, genericDecoder, previewDecoder}
	}
	return []decodeStrategy{conservative, genericDecoder, previewDecoder}
}

var standardDecoder = decodeStrategy{"standard", func(_ context.Context, path string) (*image.NRGBA, error) {
	return Open(path)
}}

// genericDecoder reads RAW containers that a registered decoder
// understands, such as the TIFF structure of DNG files.
var genericDecoder = decodeStrategy{"generic", func(_ context.Context, path string) (*image.NRGBA, error) {
	return Open(path, AutoOrientation(false))
}}
