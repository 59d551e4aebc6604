package imgpreset

import (
	"image"
	"math"
)

// Midtone protection thresholds on the HSV value channel.
const (
	midtoneLow       = 140
	midtoneHigh      = 200
	midtoneTargetLow = 160
	midtoneMinRatio  = 0.15
	midtoneMinMean   = 120
	midtoneDarken    = 0.94
)

// MidtoneProtection pulls down bright midtones such as sand or concrete
// when they dominate an already bright frame, then blends the result
// half-and-half with the working image. Frames that do not qualify are
// left alone with a note in the history.
func (s *Session) MidtoneProtection() *Session {
	src := s.working
	n := len(src.Pix) / 4
	if n == 0 {
		s.record("Midtone Protection: Skipped (low bright areas)")
		return s
	}

	var inRange, targets int
	var sum float64
	for i := 0; i < len(src.Pix); i += 4 {
		v := hsvValue(src.Pix[i:i+3:i+3])
		sum += float64(v)
		if v > midtoneLow && v < midtoneHigh {
			inRange++
		}
		if v > midtoneTargetLow && v < midtoneHigh {
			targets++
		}
	}
	ratio := float64(inRange) / float64(n)
	mean := sum / float64(n)

	switch {
	case ratio <= midtoneMinRatio:
		s.record("Midtone Protection: Skipped (low bright areas)")
		return s
	case mean <= midtoneMinMean:
		s.record("Midtone Protection: Skipped (image not bright enough)")
		return s
	case targets == 0:
		s.record("Midtone Protection: No target areas found")
		return s
	}

	protected := image.NewNRGBA(src.Rect)
	copy(protected.Pix, src.Pix)
	for i := 0; i < len(protected.Pix); i += 4 {
		v := hsvValue(protected.Pix[i : i+3 : i+3])
		if v <= midtoneTargetLow || v >= midtoneHigh {
			continue
		}
		// Scaling V keeps hue and saturation, which is a uniform gain on RGB.
		k := math.Floor(float64(v)*midtoneDarken) / float64(v)
		for c := 0; c < 3; c++ {
			protected.Pix[i+c] = clamp8(float64(protected.Pix[i+c]) * k)
		}
	}
	s.working = blend(src, protected, 0.5)
	s.record("Midtone Protection: Applied (%.1f%% bright areas)", ratio*100)
	return s
}

func hsvValue(rgb []uint8) uint8 {
	return max(rgb[0], rgb[1], rgb[2])
}
