package imgpreset

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"os/exec"
	"slices"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/sunshineplan/tiff"
)

// Tone chain of the enhanced RAW decode.
const (
	rawToneGamma  = 0.85
	rawContrast   = 1.25
	rawSaturation = 1.35
	rawSharpness  = 1.15
	rawBrightness = 1.08
)

type rawDecoder struct {
	cfg RawConfig
}

// dcraw flags: TIFF to stdout, camera white balance, AHD, sRGB, 8 bits.
var (
	conservativeFlags = []string{"-c", "-T", "-w", "-W", "-q", "3", "-o", "1"}
	enhancedFlags     = []string{"-c", "-T", "-w", "-q", "3", "-o", "1"}
)

func (d rawDecoder) conservativeArgs(path string) []string {
	return append(slices.Clone(conservativeFlags), path)
}

func (d rawDecoder) enhancedArgs(path string) []string {
	bright := d.cfg.Brightness * math.Pow(2, d.cfg.ExposureShift)
	return append(slices.Clone(enhancedFlags), "-b", fmt.Sprintf("%.2f", bright), path)
}

// conservative demosaics with the camera white balance and without auto
// brightness. Output that is not 8-bit is normalised by to8bit.
func (d rawDecoder) conservative(ctx context.Context, path string) (*image.NRGBA, error) {
	img, err := d.dcraw(ctx, path, d.conservativeArgs(path)...)
	if err != nil {
		return nil, err
	}
	return to8bit(img), nil
}

// enhanced demosaics with auto brightness and a pushed exposure, then
// applies a tone curve and a contrast, saturation, sharpness and
// brightness boost to stand in for the missing in-camera curve.
func (d rawDecoder) enhanced(ctx context.Context, path string) (*image.NRGBA, error) {
	img, err := d.dcraw(ctx, path, d.enhancedArgs(path)...)
	if err != nil {
		return nil, err
	}
	return toneRaw(to8bit(img)), nil
}

func toneRaw(img *image.NRGBA) *image.NRGBA {
	var lut [256]float64
	for i := range lut {
		lut[i] = 255 * math.Pow(float64(i)/255, rawToneGamma)
	}
	img = mapPixels(img, func(r, g, b float64) (float64, float64, float64) {
		return lut[int(r)], lut[int(g)], lut[int(b)]
	})
	img = contrast(img, rawContrast)
	img = saturate(img, rawSaturation)
	img = sharpen(img, rawSharpness)
	return gain(img, rawBrightness)
}

func (d rawDecoder) dcraw(ctx context.Context, path string, args ...string) (image.Image, error) {
	bin, err := exec.LookPath(d.cfg.Dcraw)
	if err != nil {
		return nil, err
	}
	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	logger.Debugw("dcraw finished", "file", path, "args", strings.Join(args[:len(args)-1], " "), "elapsed", time.Since(start))

	if stdout.Len() == 0 {
		return nil, fmt.Errorf("dcraw produced no output")
	}
	return tiff.Decode(&stdout)
}

// to8bit converts a decoded image to an opaque 8-bit raster. Images with
// 16-bit samples are scaled by their brightest sample, so the result
// depends on how much of the frame is clipped.
func to8bit(img image.Image) *image.NRGBA {
	switch img.ColorModel() {
	case color.RGBA64Model, color.NRGBA64Model, color.Gray16Model:
	default:
		return opaque(img)
	}

	b := img.Bounds()
	var peak uint32
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			peak = max(peak, r, g, bl)
		}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if peak == 0 {
		for i := 3; i < len(dst.Pix); i += 4 {
			dst.Pix[i] = 0xff
		}
		return dst
	}
	scale := 255 / float64(peak)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			dst.Pix[i] = clamp8(float64(r) * scale)
			dst.Pix[i+1] = clamp8(float64(g) * scale)
			dst.Pix[i+2] = clamp8(float64(bl) * scale)
			dst.Pix[i+3] = 0xff
			i += 4
		}
	}
	return dst
}

// previewDecoder falls back to the largest JPEG embedded in a RAW file.
var previewDecoder = decodeStrategy{"preview", func(_ context.Context, path string) (*image.NRGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	preview := extractPreview(data)
	if preview == nil {
		return nil, ErrNoPreview
	}
	return Decode(bytes.NewReader(preview))
}}

// extractPreview returns the largest SOI..EOI segment found in data.
func extractPreview(data []byte) []byte {
	var best []byte
	soi := []byte{0xff, 0xd8, 0xff}
	eoi := []byte{0xff, 0xd9}
	for pos := 0; pos < len(data); {
		start := bytes.Index(data[pos:], soi)
		if start < 0 {
			break
		}
		start += pos
		end := bytes.Index(data[start+len(soi):], eoi)
		if end < 0 {
			break
		}
		end += start + len(soi) + len(eoi)
		if end-start > len(best) {
			best = data[start:end]
		}
		pos = end
	}
	return best
}

// RawMetadata is the camera information read from a RAW file.
type RawMetadata struct {
	Make  string
	Model string
	ISO   int
	Taken time.Time
}

// ReadRawMetadata reads the EXIF block of a TIFF-based RAW file.
func ReadRawMetadata(path string) (RawMetadata, error) {
	var md RawMetadata
	f, err := os.Open(path)
	if err != nil {
		return md, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return md, err
	}
	if tag, err := x.Get(exif.Make); err == nil {
		md.Make, _ = tag.StringVal()
	}
	if tag, err := x.Get(exif.Model); err == nil {
		md.Model, _ = tag.StringVal()
	}
	if tag, err := x.Get(exif.ISOSpeedRatings); err == nil {
		md.ISO, _ = tag.Int(0)
	}
	md.Taken, _ = x.DateTime()
	return md, nil
}
