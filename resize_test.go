package imgpreset

import (
	"image"
	"math"
	"testing"
)

func compare(t *testing.T, img0, img1 image.Image) {
	t.Helper()
	b0 := img0.Bounds()
	b1 := img1.Bounds()
	if b0.Dx() != b1.Dx() || b0.Dy() != b1.Dy() {
		t.Fatalf("wrong image size: want %s, got %s", b0, b1)
	}
	x1 := b1.Min.X - b0.Min.X
	y1 := b1.Min.Y - b0.Min.Y
	for y := b0.Min.Y; y < b0.Max.Y; y++ {
		for x := b0.Min.X; x < b0.Max.X; x++ {
			c0 := img0.At(x, y)
			c1 := img1.At(x+x1, y+y1)
			r0, g0, b0, a0 := c0.RGBA()
			r1, g1, b1, a1 := c1.RGBA()
			if r0 != r1 || g0 != g1 || b0 != b1 || a0 != a1 {
				t.Fatalf("pixel at (%d, %d) has wrong color: want %v, got %v", x, y, c0, c1)
			}
		}
	}
}

func TestResize(t *testing.T) {
	testCase := []struct {
		option *ResizeOption
		want   image.Point
	}{
		{&ResizeOption{Pixels: 300 * 200}, image.Pt(295, 203)},
		{&ResizeOption{Pixels: 150 * 103 / 4}, image.Pt(74, 52)},
		{&ResizeOption{Pixels: 150 * 103}, image.Pt(150, 103)},
		{&ResizeOption{}, image.Pt(150, 103)},
	}

	sample := gradient(150, 103)
	for _, tc := range testCase {
		img0 := tc.option.do(sample)
		if img0.Bounds().Size() != tc.want {
			t.Fatalf("bounds differ: %v and %v", img0.Bounds().Size(), tc.want)
		}
		img1 := Resize(sample, tc.option)

		compare(t, img0, img1)
	}
	compare(t, sample, (*ResizeOption)(nil).do(sample))
}

func TestTargetSize(t *testing.T) {
	testCase := []struct {
		bounds        image.Rectangle
		total         int
		width, height int
	}{
		{image.Rect(0, 0, 6000, 4000), Pixels4K, 3527, 2351},
		{image.Rect(0, 0, 6000, 4000), Pixels2K, 2351, 1568},
		{image.Rect(0, 0, 4000, 6000), Pixels4K, 2351, 3528},
		{image.Rect(0, 0, 1920, 1080), Pixels4K, 3840, 2160},
		{image.Rect(0, 0, 100, 100), 0, 0, 0},
		{image.Rect(0, 0, 0, 100), Pixels2K, 0, 0},
	}
	for _, tc := range testCase {
		w, h := TargetSize(tc.bounds, tc.total)
		if w != tc.width || h != tc.height {
			t.Errorf("TargetSize(%v, %d) = %dx%d; want %dx%d", tc.bounds, tc.total, w, h, tc.width, tc.height)
		}
	}
}

func TestTargetSizeProperties(t *testing.T) {
	for _, size := range []image.Point{
		{6000, 4000}, {4000, 6000}, {5472, 3648}, {8256, 5504}, {3000, 3000}, {1200, 800}, {7952, 5304},
	} {
		for _, total := range []int{Pixels2K, Pixels4K} {
			w, h := TargetSize(image.Rectangle{Max: size}, total)
			if d := total - w*h; d < 0 || d > w {
				t.Errorf("%v at %d: %dx%d is %d pixels off", size, total, w, h, d)
			}
			want := float64(size.X) / float64(size.Y)
			if got := float64(w) / float64(h); math.Abs(got-want)/want > 0.01 {
				t.Errorf("%v at %d: aspect %.4f; want %.4f", size, total, got, want)
			}
		}
	}
}

func TestResizeToPixelBudget(t *testing.T) {
	img := ResizeToPixelBudget(gradient(300, 200), 60*40)
	if img.Bounds() != image.Rect(0, 0, 60, 40) {
		t.Errorf("unexpected bounds: %v", img.Bounds())
	}
	// upscaling is allowed
	img = ResizeToPixelBudget(gradient(30, 20), 60*40)
	if img.Bounds() != image.Rect(0, 0, 60, 40) {
		t.Errorf("unexpected bounds: %v", img.Bounds())
	}
}
