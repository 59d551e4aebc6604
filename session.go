package imgpreset

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Session applies tone and colour adjustments to a working copy of an
// image and records a line of history for every adjustment applied.
//
// The original image is never modified; Reset returns to it.
type Session struct {
	original *image.NRGBA
	working  *image.NRGBA
	history  []string
}

// NewSession starts a session on an opaque copy of img.
func NewSession(img image.Image) *Session {
	original := opaque(img)
	return &Session{original: original, working: original}
}

// Result returns the current working image.
func (s *Session) Result() *image.NRGBA { return s.working }

// History returns the adjustments applied so far, in order.
func (s *Session) History() []string {
	return append([]string(nil), s.history...)
}

// Reset discards every adjustment.
func (s *Session) Reset() *Session {
	s.working = s.original
	s.history = nil
	return s
}

func (s *Session) record(format string, a ...any) {
	s.history = append(s.history, fmt.Sprintf(format, a...))
}

// Exposure scales all channels by 2^value, value in stops within [-2, 2].
func (s *Session) Exposure(value float64) *Session {
	value = clampRange(value, -2, 2)
	s.working = gain(s.working, math.Pow(2, value))
	s.record("Exposure: %+.2f", value)
	return s
}

// Brightness scales all channels by 1+value/100, value within [-100, 100].
// Zero leaves the image and the history untouched.
func (s *Session) Brightness(value int) *Session {
	if value == 0 {
		return s
	}
	value = int(clampRange(float64(value), -100, 100))
	s.working = gain(s.working, math.Max(0, 1+float64(value)/100))
	s.record("Brightness: %+d", value)
	return s
}

// HighlightsShadows darkens highlights (highlights within [-100, 0]) and
// lifts shadows (shadows within [0, 100]) through soft luminance masks.
func (s *Session) HighlightsShadows(highlights, shadows float64) *Session {
	highlights = clampRange(highlights, -100, 0)
	shadows = clampRange(shadows, 0, 100)
	hf := 1 + highlights/100
	sf := 1 + shadows/100
	s.working = mapPixels(s.working, func(r, g, b float64) (float64, float64, float64) {
		c := [3]float64{r / 255, g / 255, b / 255}
		l := luminance(c[0], c[1], c[2])
		hm := clamp01((l - 0.7) / 0.3)
		sm := clamp01((0.3 - l) / 0.3)
		for i := range c {
			c[i] = c[i]*(1-hm) + c[i]*hf*hm
			c[i] = c[i]*(1-sm) + c[i]*sf*sm
			c[i] = clamp01(c[i]) * 255
		}
		return c[0], c[1], c[2]
	})
	s.record("Highlights: %s, Shadows: %s", num(highlights), num(shadows))
	return s
}

// VibranceSaturation applies a uniform saturation change and then a
// vibrance boost that favours pixels which are not saturated yet.
// Both values are within [-100, 100].
func (s *Session) VibranceSaturation(vibrance, saturation float64) *Session {
	vibrance = clampRange(vibrance, -100, 100)
	saturation = clampRange(saturation, -100, 100)
	if saturation != 0 {
		s.working = saturate(s.working, 1+saturation/100)
	}
	if vibrance != 0 {
		s.working = mapPixels(s.working, func(r, g, b float64) (float64, float64, float64) {
			hi := math.Max(r, math.Max(g, b)) / 255
			lo := math.Min(r, math.Min(g, b)) / 255
			factor := 1 + vibrance/100*(1-(hi-lo)/(hi+1e-6))
			mean := (r + g + b) / 3
			return mean + (r-mean)*factor, mean + (g-mean)*factor, mean + (b-mean)*factor
		})
	}
	s.record("Vibrance: %s, Saturation: %s", num(vibrance), num(saturation))
	return s
}

// ClarityStructure adjusts local contrast: clarity at a 20px radius and
// structure (positive only) as a 1px unsharp mask. Both within [-100, 100].
func (s *Session) ClarityStructure(clarity, structure float64) *Session {
	clarity = clampRange(clarity, -100, 100)
	structure = clampRange(structure, -100, 100)
	if clarity != 0 {
		amount := math.Abs(clarity) / 50
		blurred := imaging.Blur(s.working, 20)
		if clarity > 0 {
			s.working = blend(s.working, contrast(blurred, 1+amount), amount)
		} else {
			s.working = blend(s.working, blurred, amount)
		}
	}
	if structure > 0 {
		s.working = unsharpMask(s.working, 1, int(structure/100*200), 2)
	}
	s.record("Clarity: %s, Structure: %s", num(clarity), num(structure))
	return s
}

// ColorTemperature applies channel gains for warmth and tint, both within
// [-100, 100]. When both are zero nothing is recorded.
func (s *Session) ColorTemperature(temperature, tint float64) *Session {
	if temperature == 0 && tint == 0 {
		return s
	}
	temperature = clampRange(temperature, -100, 100)
	tint = clampRange(tint, -100, 100)
	rg, gg, bg := 1.0, 1.0, 1.0
	if f := temperature / 100; f > 0 {
		rg *= 1 + f*0.1
		gg *= 1 + f*0.05
		bg *= 1 - f*0.1
	} else if f < 0 {
		rg *= 1 + f*0.1
		bg *= 1 - f*0.1
	}
	if f := tint / 100; f > 0 {
		rg *= 1 + f*0.05
		bg *= 1 + f*0.05
		gg *= 1 - f*0.1
	} else if f < 0 {
		gg *= 1 - f*0.1
	}
	s.working = mapPixels(s.working, func(r, g, b float64) (float64, float64, float64) {
		return r * rg, g * gg, b * bg
	})
	s.record("Temperature: %s, Tint: %s", num(temperature), num(tint))
	return s
}

// Portrait softens skin with a light blur kept at no more than 15% weight,
// restoring some detail for stronger settings. value is within [0, 100].
func (s *Session) Portrait(skinSmoothing float64) *Session {
	skinSmoothing = clampRange(skinSmoothing, 0, 100)
	if skinSmoothing > 0 {
		f := skinSmoothing / 100
		blurred := imaging.Blur(s.working, math.Max(0.5, f*1.5))
		s.working = blend(s.working, blurred, f*0.15)
		if f > 0.3 {
			s.working = blend(s.working, sharpen(s.working, 1.1), 0.2)
		}
	}
	s.record("Portrait: Smoothing: %s", num(skinSmoothing))
	return s
}

// num formats whole numbers without a fractional part.
func num(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int(v))
	}
	return fmt.Sprintf("%g", v)
}
