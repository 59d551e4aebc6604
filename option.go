package imgpreset

import (
	"image"
	"io"
	"path/filepath"
)

// Options represents options that can be used to configure an image operation.
// Stages run in order: lighting, adjustments, resize, watermark, encode.
// Nil stages are skipped.
type Options struct {
	Lighting  *LightingConfig
	Params    *Params
	Resize    *ResizeOption
	Watermark *WatermarkOption
	Format    FormatOption
}

// NewOptions creates a new option with default setting.
func NewOptions() Options {
	return Options{Format: JPEGFormat(DefaultConfig().JPEGQuality)}
}

// SetParams sets the adjustments to apply.
func (opts *Options) SetParams(p Params) *Options {
	opts.Params = &p
	return opts
}

// SetPreset sets the adjustments of a named preset.
func (opts *Options) SetPreset(name string) error {
	p, err := Lookup(name)
	if err != nil {
		return err
	}
	opts.SetParams(p)
	return nil
}

// SetLighting sets the auto-lighting configuration.
func (opts *Options) SetLighting(cfg LightingConfig) *Options {
	opts.Lighting = &cfg
	return opts
}

// SetWatermark sets the value for the Watermark field. A nil mark disables it.
func (opts *Options) SetWatermark(mark image.Image, opacity, scale float64) *Options {
	if mark == nil {
		opts.Watermark = nil
		return opts
	}
	opts.Watermark = &WatermarkOption{Mark: mark}
	opts.Watermark.SetOpacity(opacity).SetScale(scale)
	return opts
}

// SetResize sets the pixel budget of the output.
func (opts *Options) SetResize(pixels int) *Options {
	opts.Resize = &ResizeOption{Pixels: pixels}
	return opts
}

// SetQuality sets the output JPEG quality.
func (opts *Options) SetQuality(quality int) *Options {
	opts.Format = JPEGFormat(quality)
	return opts
}

// Process runs every configured stage except encoding.
func (opts *Options) Process(base image.Image) (*image.NRGBA, []string) {
	img := opaque(base)
	var history []string
	if opts.Lighting != nil {
		img = AdjustLighting(img, *opts.Lighting)
	}
	if opts.Params != nil {
		img, history = ApplyParams(img, *opts.Params)
	}
	if opts.Resize != nil {
		img = opts.Resize.do(img)
	}
	if opts.Watermark != nil {
		img = opts.Watermark.do(img)
	}
	return img, history
}

// Convert processes base and encodes it to w.
func (opts *Options) Convert(w io.Writer, base image.Image) ([]string, error) {
	img, history := opts.Process(base)
	format := opts.Format
	if format.EncodeOption == nil {
		format = NewOptions().Format
	}
	return history, format.Encode(w, img)
}

// ConvertExt convert filename's ext to jpg.
func (opts *Options) ConvertExt(filename string) string {
	return filename[0:len(filename)-len(filepath.Ext(filename))] + ".jpg"
}
