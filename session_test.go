package imgpreset

import (
	"image"
	"image/color"
	"strings"
	"testing"
)

func identical(t *testing.T, want, got *image.NRGBA) {
	t.Helper()
	if want.Rect != got.Rect {
		t.Fatalf("bounds differ: %v and %v", want.Rect, got.Rect)
	}
	for i := range want.Pix {
		if want.Pix[i] != got.Pix[i] {
			t.Fatalf("byte %d differs: want %d, got %d", i, want.Pix[i], got.Pix[i])
		}
	}
}

func TestExposureMonotonic(t *testing.T) {
	src := gradient(32, 32)
	var last float64
	for i, v := range []float64{-2, -1, -0.25, 0, 0.05, 0.5, 1} {
		// keep the brightest pixels away from clipping
		mean := meanLuminance(NewSession(gain(src, 0.4)).Exposure(v).Result())
		if i > 0 && mean <= last {
			t.Errorf("exposure %v: mean %.2f not above %.2f", v, mean, last)
		}
		last = mean
	}
}

func TestExposureHistory(t *testing.T) {
	s := NewSession(solid(4, 4, color.NRGBA{100, 100, 100, 255})).Exposure(0.05).Exposure(-3)
	h := s.History()
	if len(h) != 2 || h[0] != "Exposure: +0.05" || h[1] != "Exposure: -2.00" {
		t.Errorf("unexpected history: %q", h)
	}
}

func TestBrightness(t *testing.T) {
	src := gradient(16, 16)

	s := NewSession(src).Brightness(0)
	identical(t, src, s.Result())
	if len(s.History()) != 0 {
		t.Errorf("brightness 0 must not be recorded: %q", s.History())
	}

	for _, v := range []int{-100, -250} {
		dark := NewSession(src).Brightness(v).Result()
		for i := 0; i < len(dark.Pix); i += 4 {
			if dark.Pix[i] != 0 || dark.Pix[i+1] != 0 || dark.Pix[i+2] != 0 || dark.Pix[i+3] != 255 {
				t.Fatalf("brightness %d: pixel %d is %v", v, i/4, dark.Pix[i:i+4])
			}
		}
	}

	s = NewSession(solid(2, 2, color.NRGBA{100, 50, 10, 255})).Brightness(20)
	if got := s.Result().NRGBAAt(0, 0); got != (color.NRGBA{120, 60, 12, 255}) {
		t.Errorf("brightness +20: got %v", got)
	}
	if h := s.History(); len(h) != 1 || h[0] != "Brightness: +20" {
		t.Errorf("unexpected history: %q", h)
	}
}

func TestHighlightsShadows(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	img.SetNRGBA(0, 0, color.NRGBA{20, 20, 20, 255})    // shadow
	img.SetNRGBA(1, 0, color.NRGBA{128, 128, 128, 255}) // midtone
	img.SetNRGBA(2, 0, color.NRGBA{250, 250, 250, 255}) // highlight

	s := NewSession(img).HighlightsShadows(-50, 50)
	out := s.Result()
	if got := out.NRGBAAt(0, 0).R; got <= 20 {
		t.Errorf("shadow not lifted: %d", got)
	}
	if got := out.NRGBAAt(1, 0).R; got != 128 {
		t.Errorf("midtone changed: %d", got)
	}
	if got := out.NRGBAAt(2, 0).R; got >= 250 {
		t.Errorf("highlight not recovered: %d", got)
	}
	if h := s.History(); len(h) != 1 || h[0] != "Highlights: -50, Shadows: 50" {
		t.Errorf("unexpected history: %q", h)
	}
}

func spread(c color.NRGBA) int {
	return int(max(c.R, c.G, c.B)) - int(min(c.R, c.G, c.B))
}

func TestVibranceProtectsSaturatedPixels(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	muted := color.NRGBA{120, 128, 136, 255}
	vivid := color.NRGBA{200, 50, 50, 255}
	img.SetNRGBA(0, 0, muted)
	img.SetNRGBA(1, 0, vivid)

	s := NewSession(img).VibranceSaturation(50, 0)
	out := s.Result()
	mutedGain := float64(spread(out.NRGBAAt(0, 0))) / float64(spread(muted))
	vividGain := float64(spread(out.NRGBAAt(1, 0))) / float64(spread(vivid))
	if mutedGain <= vividGain {
		t.Errorf("muted pixel gained %.3f, vivid pixel %.3f", mutedGain, vividGain)
	}
	if h := s.History(); len(h) != 1 || h[0] != "Vibrance: 50, Saturation: 0" {
		t.Errorf("unexpected history: %q", h)
	}
}

func TestSaturation(t *testing.T) {
	src := solid(4, 4, color.NRGBA{180, 90, 60, 255})
	out := NewSession(src).VibranceSaturation(0, -100).Result()
	if c := out.NRGBAAt(1, 1); spread(c) > 1 {
		t.Errorf("saturation -100 should give gray; got %v", c)
	}
}

func TestClarityStructure(t *testing.T) {
	src := gradient(48, 48)

	s := NewSession(src).ClarityStructure(0, 0)
	identical(t, src, s.Result())
	if h := s.History(); len(h) != 1 || h[0] != "Clarity: 0, Structure: 0" {
		t.Errorf("unexpected history: %q", h)
	}

	// negative structure does nothing
	identical(t, src, NewSession(src).ClarityStructure(0, -40).Result())

	flat := solid(48, 48, color.NRGBA{60, 60, 60, 255})
	for _, v := range []float64{-100, -50, 25, 50, 100} {
		identical(t, flat, NewSession(flat).ClarityStructure(v, 0).Result())
	}

	ramp := grayRamp(48, 48)
	out := NewSession(ramp).ClarityStructure(50, 0).Result()
	if c := out.NRGBAAt(24, 24).R; c < 64 || c > 192 {
		t.Errorf("midtone pushed to %d", c)
	}
	levels := make(map[uint8]bool)
	for x := 0; x < 48; x++ {
		levels[out.NRGBAAt(x, 10).R] = true
	}
	if len(levels) < 16 {
		t.Errorf("clarity 50 left only %d tone levels", len(levels))
	}

	if meanDiff(src, NewSession(src).ClarityStructure(30, 0).Result()) == 0 {
		t.Error("clarity had no effect")
	}
	if meanDiff(src, NewSession(src).ClarityStructure(-30, 0).Result()) == 0 {
		t.Error("negative clarity had no effect")
	}
	edges := checker(48, 48, 4)
	if meanDiff(edges, NewSession(edges).ClarityStructure(0, 80).Result()) == 0 {
		t.Error("structure had no effect")
	}
}

func grayRamp(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(x * 255 / max(1, w-1))
			img.SetNRGBA(x, y, color.NRGBA{v, v, v, 255})
		}
	}
	return img
}

func TestContrast(t *testing.T) {
	flat := solid(8, 8, color.NRGBA{90, 90, 90, 255})
	for _, f := range []float64{0, 0.5, 1.25, 2, 3} {
		identical(t, flat, contrast(flat, f))
	}

	img := solid(2, 1, color.NRGBA{100, 100, 100, 255})
	img.SetNRGBA(1, 0, color.NRGBA{156, 156, 156, 255})
	out := contrast(img, 2)
	if a, b := out.NRGBAAt(0, 0), out.NRGBAAt(1, 0); a.R != 72 || b.R != 184 {
		t.Errorf("expected 72 and 184 around the mean; got %v and %v", a, b)
	}
	out = contrast(img, 0)
	if a, b := out.NRGBAAt(0, 0), out.NRGBAAt(1, 0); a.R != 128 || b.R != 128 {
		t.Errorf("expected flat mean gray; got %v and %v", a, b)
	}
}

func checker(w, h, size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/size+y/size)%2 == 0 {
				img.SetNRGBA(x, y, color.NRGBA{40, 40, 40, 255})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{220, 220, 220, 255})
			}
		}
	}
	return img
}

func meanDiff(a, b *image.NRGBA) float64 {
	var sum float64
	for i := range a.Pix {
		d := float64(a.Pix[i]) - float64(b.Pix[i])
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return sum / float64(len(a.Pix))
}

func TestColorTemperature(t *testing.T) {
	src := solid(2, 2, color.NRGBA{100, 100, 100, 255})

	s := NewSession(src).ColorTemperature(0, 0)
	identical(t, src, s.Result())
	if len(s.History()) != 0 {
		t.Errorf("neutral temperature must not be recorded: %q", s.History())
	}

	testCase := []struct {
		temperature, tint float64
		want              color.NRGBA
	}{
		{100, 0, color.NRGBA{110, 105, 90, 255}},
		{-100, 0, color.NRGBA{90, 100, 110, 255}},
		{0, 100, color.NRGBA{105, 90, 105, 255}},
		{0, -100, color.NRGBA{100, 110, 100, 255}},
	}
	for _, tc := range testCase {
		s := NewSession(src).ColorTemperature(tc.temperature, tc.tint)
		if got := s.Result().NRGBAAt(0, 0); got != tc.want {
			t.Errorf("temperature %v tint %v: got %v; want %v", tc.temperature, tc.tint, got, tc.want)
		}
		if h := s.History(); len(h) != 1 || !strings.HasPrefix(h[0], "Temperature: ") {
			t.Errorf("unexpected history: %q", h)
		}
	}
}

func TestPortrait(t *testing.T) {
	src := gradient(32, 32)

	s := NewSession(src).Portrait(0)
	identical(t, src, s.Result())
	if h := s.History(); len(h) != 1 || h[0] != "Portrait: Smoothing: 0" {
		t.Errorf("unexpected history: %q", h)
	}

	edges := checker(32, 32, 4)
	light := meanDiff(edges, NewSession(edges).Portrait(20).Result())
	strong := meanDiff(edges, NewSession(edges).Portrait(100).Result())
	if light == 0 || strong == 0 {
		t.Errorf("smoothing had no effect: %v %v", light, strong)
	}
}

func TestSessionReset(t *testing.T) {
	src := gradient(8, 8)
	s := NewSession(src).Exposure(1).Brightness(30)
	if len(s.History()) != 2 {
		t.Fatalf("unexpected history: %q", s.History())
	}
	s.Reset()
	identical(t, src, s.Result())
	if len(s.History()) != 0 {
		t.Errorf("history not cleared: %q", s.History())
	}
	// the original is untouched by further work
	s.Exposure(-1).Reset()
	identical(t, src, s.Result())
}

func TestMidtoneProtection(t *testing.T) {
	dark := solid(10, 10, color.NRGBA{100, 100, 100, 255})
	s := NewSession(dark).MidtoneProtection()
	identical(t, dark, s.Result())
	if h := s.History(); len(h) != 1 || h[0] != "Midtone Protection: Skipped (low bright areas)" {
		t.Errorf("unexpected history: %q", h)
	}

	// 60% sand at V=180, the rest bright sky
	img := solid(10, 10, color.NRGBA{230, 230, 230, 255})
	for y := 0; y < 6; y++ {
		for x := 0; x < 10; x++ {
			img.SetNRGBA(x, y, color.NRGBA{180, 160, 120, 255})
		}
	}
	s = NewSession(img).MidtoneProtection()
	out := s.Result()
	if got := out.NRGBAAt(0, 0); got.R >= 180 || got.G >= 160 || got.B >= 120 {
		t.Errorf("sand not darkened: %v", got)
	}
	if got := out.NRGBAAt(0, 9); got != (color.NRGBA{230, 230, 230, 255}) {
		t.Errorf("sky changed: %v", got)
	}
	if h := s.History(); len(h) != 1 || h[0] != "Midtone Protection: Applied (60.0% bright areas)" {
		t.Errorf("unexpected history: %q", h)
	}

	// bright midtones in a dark frame
	img = solid(10, 10, color.NRGBA{0, 0, 0, 255})
	for x := 0; x < 10; x++ {
		for y := 0; y < 3; y++ {
			img.SetNRGBA(x, y, color.NRGBA{150, 150, 150, 255})
		}
	}
	if h := NewSession(img).MidtoneProtection().History(); h[0] != "Midtone Protection: Skipped (image not bright enough)" {
		t.Errorf("unexpected history: %q", h)
	}

	// qualifying frame without pixels in the darkening band
	img = solid(10, 10, color.NRGBA{150, 150, 150, 255})
	if h := NewSession(img).MidtoneProtection().History(); h[0] != "Midtone Protection: No target areas found" {
		t.Errorf("unexpected history: %q", h)
	}
}
