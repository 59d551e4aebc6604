package imgpreset

import (
	"image"
	"image/color"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/disintegration/imaging"
)

func TestWatermark(t *testing.T) {
	base := solid(100, 100, color.NRGBA{255, 255, 255, 255})
	mark := solid(50, 20, color.NRGBA{0, 0, 0, 255})

	m0 := (&WatermarkOption{Mark: mark}).SetOpacity(1).SetScale(0.3).do(base)
	m1 := Watermark(base, &WatermarkOption{Mark: mark, Opacity: 1, Scale: 0.3})
	if !reflect.DeepEqual(m0, m1) {
		t.Fatal("Watermark got different images")
	}
	if m0.Bounds() != base.Bounds() {
		t.Fatalf("bounds changed: %v", m0.Bounds())
	}

	// 30x12 mark at (20, 68)
	if c := m0.NRGBAAt(25, 72); c.R > 16 || c.A != 255 {
		t.Errorf("expected dark mark pixel; got %v", c)
	}
	if c := m0.NRGBAAt(49, 79); c.R > 16 {
		t.Errorf("expected dark mark pixel; got %v", c)
	}
	for _, p := range []image.Point{{90, 5}, {5, 5}, {19, 72}, {25, 81}, {51, 72}} {
		if c := m0.NRGBAAt(p.X, p.Y); c != (color.NRGBA{255, 255, 255, 255}) {
			t.Errorf("pixel %v outside the mark changed: %v", p, c)
		}
	}
}

func TestWatermarkOpacity(t *testing.T) {
	base := solid(200, 100, color.NRGBA{255, 255, 255, 255})
	mark := solid(40, 40, color.NRGBA{0, 0, 0, 255})

	half := Watermark(base, &WatermarkOption{Mark: mark, Opacity: 0.5, Scale: 0.2}).NRGBAAt(30, 70)
	full := Watermark(base, &WatermarkOption{Mark: mark, Opacity: 1, Scale: 0.2}).NRGBAAt(30, 70)
	if full.R >= half.R || half.R == 255 {
		t.Errorf("expected a lighter mark at half opacity: %v and %v", half, full)
	}

	none := Watermark(base, &WatermarkOption{Mark: mark, Opacity: 0, Scale: 0.2})
	if c := none.NRGBAAt(30, 70); c != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("invisible mark changed the image: %v", c)
	}
}

func TestWatermarkPaddingClamp(t *testing.T) {
	// the mark nearly fills the height so its background pad starts above the image
	base := solid(200, 40, color.NRGBA{0, 0, 255, 255})
	img := Watermark(base, &WatermarkOption{Mark: solid(10, 2, color.NRGBA{255, 0, 0, 255}), Opacity: 1, Scale: 0.5})
	if img.Bounds() != base.Bounds() {
		t.Fatalf("bounds changed: %v", img.Bounds())
	}
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 255 {
			t.Fatal("result is not opaque")
		}
	}
}

func TestWatermarkNoMark(t *testing.T) {
	base := gradient(30, 30)
	identical(t, base, Watermark(base, &WatermarkOption{Opacity: 1, Scale: 0.15}))
	identical(t, base, (*WatermarkOption)(nil).do(base))
	// a mark too small to scale is skipped
	identical(t, base, Watermark(base, &WatermarkOption{Mark: solid(4, 4, color.NRGBA{0, 0, 0, 255}), Opacity: 1, Scale: 0.01}))
}

func TestLoadWatermark(t *testing.T) {
	if mark := LoadWatermark(filepath.Join(t.TempDir(), "logo.png")); mark != nil {
		t.Error("expected nil for a missing asset")
	}

	path := filepath.Join(t.TempDir(), "logo.png")
	if err := Save(path, solid(8, 4, color.NRGBA{1, 2, 3, 255}), &FormatOption{Format: imaging.PNG}); err != nil {
		t.Fatal(err)
	}
	mark := LoadWatermark(path)
	if mark == nil || mark.Bounds().Size() != image.Pt(8, 4) {
		t.Errorf("unexpected mark: %v", mark)
	}
}
