package imgpreset

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// LightingConfig controls the global auto-lighting pass. Each correction
// runs only when its flag is set; Portrait disables all of them and keeps
// only the colour enhancement.
type LightingConfig struct {
	Portrait         bool    `default:"true"`
	BrightnessAuto   bool
	ContrastAuto     bool
	GammaCorrection  bool
	ColorEnhancement float64 `default:"1" validate:"gte=0,lte=3"`
	Description      string
}

// ProcessingModes are the predefined lighting configurations.
var ProcessingModes = map[string]LightingConfig{
	"portrait": {
		Portrait:         true,
		ColorEnhancement: 1.00,
		Description:      "Preserves artistic lighting and natural tones",
	},
	"natural": {
		ColorEnhancement: 1.02,
		Description:      "Minimal processing with slight color boost",
	},
	"enhanced": {
		BrightnessAuto:   true,
		ContrastAuto:     true,
		GammaCorrection:  true,
		ColorEnhancement: 1.05,
		Description:      "Full enhancement for challenging lighting",
	},
}

// LightingMode returns a predefined lighting configuration.
func LightingMode(name string) (LightingConfig, error) {
	cfg, ok := ProcessingModes[name]
	if !ok {
		return LightingConfig{}, newError(ConfigurationError, "lighting mode", "", fmt.Errorf("unknown mode: %s", name))
	}
	return cfg, nil
}

// LightingStats summarises the tonal distribution of an image.
type LightingStats struct {
	Mean        float64
	StdDev      float64
	DarkRatio   float64
	BrightRatio float64
}

// AnalyzeLighting returns the channel-averaged mean and standard deviation
// together with the share of dark (<85) and bright (>=170) luma values.
func AnalyzeLighting(img *image.NRGBA) LightingStats {
	var stats LightingStats
	n := len(img.Pix) / 4
	if n == 0 {
		return stats
	}

	var sum, sq [3]float64
	var dark, bright int
	for i := 0; i < len(img.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := float64(img.Pix[i+c])
			sum[c] += v
			sq[c] += v * v
		}
		switch l := luminance(float64(img.Pix[i]), float64(img.Pix[i+1]), float64(img.Pix[i+2])); {
		case l < 85:
			dark++
		case l >= 170:
			bright++
		}
	}
	for c := 0; c < 3; c++ {
		mean := sum[c] / float64(n)
		stats.Mean += mean / 3
		stats.StdDev += math.Sqrt(math.Max(0, sq[c]/float64(n)-mean*mean)) / 3
	}
	stats.DarkRatio = float64(dark) / float64(n)
	stats.BrightRatio = float64(bright) / float64(n)
	return stats
}

// LightingFactors are the corrections derived from LightingStats.
type LightingFactors struct {
	Brightness float64
	Contrast   float64
	Gamma      float64
}

// Factors derives brightness, contrast and gamma corrections from stats.
func (stats LightingStats) Factors() LightingFactors {
	f := LightingFactors{Brightness: 1, Contrast: 1, Gamma: 1}
	switch {
	case stats.Mean < 100:
		f.Brightness = 1.15 + (100-stats.Mean)/200
	case stats.Mean > 180:
		f.Brightness = 0.9 - (stats.Mean-180)/300
	}
	switch {
	case stats.StdDev < 40:
		f.Contrast = 1.2 + (40-stats.StdDev)/80
	case stats.StdDev > 80:
		f.Contrast = 0.95
	}
	switch {
	case stats.DarkRatio > 0.3:
		f.Gamma = 0.8
	case stats.BrightRatio > 0.2:
		f.Gamma = 1.2
	}
	return f
}

// AdjustLighting applies the auto-lighting pass described by cfg.
func AdjustLighting(img image.Image, cfg LightingConfig) *image.NRGBA {
	dst := opaque(img)
	if !cfg.Portrait {
		f := AnalyzeLighting(dst).Factors()
		logger.Debugw("Lighting analysis", "brightness", f.Brightness, "contrast", f.Contrast, "gamma", f.Gamma)
		if cfg.BrightnessAuto && f.Brightness != 1 {
			dst = gain(dst, f.Brightness)
		}
		if cfg.ContrastAuto && f.Contrast != 1 {
			dst = contrast(dst, f.Contrast)
		}
		if cfg.GammaCorrection && f.Gamma != 1 {
			// out = (in/255)^gamma; imaging raises to 1/gamma.
			dst = imaging.AdjustGamma(dst, 1/f.Gamma)
		}
	}
	if cfg.ColorEnhancement > 0 {
		dst = saturate(dst, cfg.ColorEnhancement)
	}
	return dst
}
