package imgpreset

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

const (
	watermarkPadding   = 20
	watermarkBgPadding = 10
)

var watermarkBackground = color.NRGBA{255, 255, 255, 2}

// WatermarkOption is watermark option
type WatermarkOption struct {
	Mark    image.Image
	Opacity float64 // 0 to 1
	Scale   float64 // mark width as a fraction of the image width
}

// LoadWatermark opens the watermark asset. A missing or unreadable asset
// is logged and yields nil, which Watermark treats as no watermark.
func LoadWatermark(path string) image.Image {
	mark, err := imaging.Open(path)
	if err != nil {
		logger.Warnw("Could not load watermark image", "path", path, "error", newError(AssetMissing, "load watermark", path, err))
		return nil
	}
	return mark
}

// Watermark adds the mark to the bottom-left corner of base.
func Watermark(base image.Image, option *WatermarkOption) *image.NRGBA {
	return option.do(base)
}

// SetOpacity sets the option for the Watermark opacity.
func (w *WatermarkOption) SetOpacity(opacity float64) *WatermarkOption {
	w.Opacity = clamp01(opacity)
	return w
}

// SetScale sets the option for the Watermark scale relative to the image width.
func (w *WatermarkOption) SetScale(scale float64) *WatermarkOption {
	w.Scale = scale
	return w
}

func (w *WatermarkOption) do(base image.Image) *image.NRGBA {
	if w == nil || w.Mark == nil {
		return opaque(base)
	}
	mark := w.scaledMark(base.Bounds().Dx())
	if mark == nil {
		return opaque(base)
	}

	img := image.NewRGBA(image.Rect(0, 0, base.Bounds().Dx(), base.Bounds().Dy()))
	draw.Draw(img, img.Bounds(), base, base.Bounds().Min, draw.Src)

	size := mark.Bounds().Size()
	at := image.Pt(watermarkPadding, img.Bounds().Dy()-size.Y-watermarkPadding)

	bg := image.Rectangle{Min: at, Max: at.Add(size)}.Inset(-watermarkBgPadding)
	bg = bg.Add(image.Pt(max(0, -bg.Min.X), max(0, -bg.Min.Y)))
	draw.Draw(img, bg, image.NewUniform(watermarkBackground), image.Point{}, draw.Over)

	draw.Draw(img, image.Rectangle{Min: at, Max: at.Add(size)}, mark, image.Point{}, draw.Over)

	return opaque(img)
}

// scaledMark resizes the mark to Scale of width and applies the opacity
// to its alpha channel.
func (w *WatermarkOption) scaledMark(width int) *image.NRGBA {
	mb := w.Mark.Bounds()
	mw := int(float64(width) * w.Scale)
	if mw <= 0 || mb.Dx() <= 0 {
		return nil
	}
	mh := int(float64(mw) * float64(mb.Dy()) / float64(mb.Dx()))
	if mh <= 0 {
		return nil
	}

	mark := imaging.Clone(resize.Resize(uint(mw), uint(mh), w.Mark, resize.Lanczos3))
	for i := 3; i < len(mark.Pix); i += 4 {
		if a := mark.Pix[i]; a > 0 {
			mark.Pix[i] = uint8(min(255, float64(a)*w.Opacity*1.2))
		}
	}
	return mark
}
