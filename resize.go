package imgpreset

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Common pixel budgets.
const (
	Pixels2K = 2560 * 1440
	Pixels4K = 3840 * 2160
)

// ResizeOption is resize option. The image is resized to roughly Pixels
// pixels keeping its aspect ratio; zero keeps the size.
type ResizeOption struct {
	Pixels int
}

// Resize resizes image
func Resize(base image.Image, option *ResizeOption) *image.NRGBA {
	return option.do(base)
}

func (r *ResizeOption) do(base image.Image) *image.NRGBA {
	if r == nil || r.Pixels <= 0 {
		return opaque(base)
	}
	return ResizeToPixelBudget(base, r.Pixels)
}

// TargetSize returns the dimensions closest to total pixels that keep the
// aspect ratio of bounds: width = floor(sqrt(total*ratio)) and
// height = floor(total/width). The result is never cropped, so the pixel
// count is approximate.
func TargetSize(bounds image.Rectangle, total int) (width, height int) {
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 || total <= 0 {
		return 0, 0
	}
	ratio := float64(bounds.Dx()) / float64(bounds.Dy())
	width = max(1, int(math.Sqrt(float64(total)*ratio)))
	height = max(1, total/width)
	return
}

// ResizeToPixelBudget resizes base to TargetSize with a Lanczos filter.
func ResizeToPixelBudget(base image.Image, total int) *image.NRGBA {
	width, height := TargetSize(base.Bounds(), total)
	if width == 0 {
		return opaque(base)
	}
	return imaging.Resize(base, width, height, imaging.Lanczos)
}
