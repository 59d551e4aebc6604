package imgpreset

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// opaque returns an NRGBA copy of img anchored at the origin with every
// pixel fully opaque.
func opaque(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

func clamp8(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampRange(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// mapPixels returns a new image where fn rewrites the RGB triple of every
// pixel. Values are given and expected in [0,255]; results are rounded and clamped.
func mapPixels(src *image.NRGBA, fn func(r, g, b float64) (float64, float64, float64)) *image.NRGBA {
	dst := image.NewNRGBA(src.Rect)
	for i := 0; i+3 < len(src.Pix); i += 4 {
		r, g, b := fn(float64(src.Pix[i]), float64(src.Pix[i+1]), float64(src.Pix[i+2]))
		dst.Pix[i] = clamp8(r)
		dst.Pix[i+1] = clamp8(g)
		dst.Pix[i+2] = clamp8(b)
		dst.Pix[i+3] = src.Pix[i+3]
	}
	return dst
}

// blend mixes a and b as a*(1-alpha) + b*alpha. Both must share bounds.
func blend(a, b *image.NRGBA, alpha float64) *image.NRGBA {
	dst := image.NewNRGBA(a.Rect)
	for i := range a.Pix {
		if i%4 == 3 {
			dst.Pix[i] = a.Pix[i]
			continue
		}
		dst.Pix[i] = clamp8(float64(a.Pix[i])*(1-alpha) + float64(b.Pix[i])*alpha)
	}
	return dst
}

// gain multiplies all colour channels by factor.
func gain(src *image.NRGBA, factor float64) *image.NRGBA {
	return mapPixels(src, func(r, g, b float64) (float64, float64, float64) {
		return r * factor, g * factor, b * factor
	})
}

// saturate scales saturation by factor (1 keeps the image).
func saturate(src *image.NRGBA, factor float64) *image.NRGBA {
	if factor == 1 {
		return src
	}
	return imaging.AdjustSaturation(src, (factor-1)*100)
}

// contrast scales the distance of every channel from the mean luma of
// src by factor (1 keeps the image, 0 gives flat gray). A flat gray image is
// left unchanged whatever the factor.
func contrast(src *image.NRGBA, factor float64) *image.NRGBA {
	if factor == 1 {
		return src
	}
	mean := math.Round(meanLuminance(src))
	return mapPixels(src, func(r, g, b float64) (float64, float64, float64) {
		return mean + (r-mean)*factor, mean + (g-mean)*factor, mean + (b-mean)*factor
	})
}

func meanLuminance(img *image.NRGBA) float64 {
	n := len(img.Pix) / 4
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < len(img.Pix); i += 4 {
		sum += luminance(float64(img.Pix[i]), float64(img.Pix[i+1]), float64(img.Pix[i+2]))
	}
	return sum / float64(n)
}

var smoothKernel = [9]float64{
	1, 1, 1,
	1, 5, 1,
	1, 1, 1,
}

// sharpen extrapolates away from a smoothed copy: factor 1 returns the
// image, factors above 1 sharpen.
func sharpen(src *image.NRGBA, factor float64) *image.NRGBA {
	if factor == 1 {
		return src
	}
	smooth := imaging.Convolve3x3(src, smoothKernel, &imaging.ConvolveOptions{Normalize: true})
	return blend(smooth, src, factor)
}

// unsharpMask sharpens src by percent wherever the difference to its
// gaussian blur reaches threshold.
func unsharpMask(src *image.NRGBA, radius float64, percent int, threshold uint8) *image.NRGBA {
	blurred := imaging.Blur(src, radius)
	amount := float64(percent) / 100
	dst := image.NewNRGBA(src.Rect)
	for i := range src.Pix {
		if i%4 == 3 {
			dst.Pix[i] = src.Pix[i]
			continue
		}
		diff := float64(src.Pix[i]) - float64(blurred.Pix[i])
		if math.Abs(diff) < float64(threshold) {
			dst.Pix[i] = src.Pix[i]
			continue
		}
		dst.Pix[i] = clamp8(float64(src.Pix[i]) + diff*amount)
	}
	return dst
}

func luminance(r, g, b float64) float64 {
	return 0.299*r + 0.587*g + 0.114*b
}
