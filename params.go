package imgpreset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
)

// Params is a set of adjustments. The zero value changes nothing.
type Params struct {
	Exposure          float64 `json:"exposure" mapstructure:"exposure" validate:"gte=-2,lte=2"`
	Brightness        int     `json:"brightness" mapstructure:"brightness" validate:"gte=-100,lte=100"`
	Highlights        float64 `json:"highlights" mapstructure:"highlights" validate:"gte=-100,lte=0"`
	Shadows           float64 `json:"shadows" mapstructure:"shadows" validate:"gte=0,lte=100"`
	Vibrance          float64 `json:"vibrance" mapstructure:"vibrance" validate:"gte=-100,lte=100"`
	Saturation        float64 `json:"saturation" mapstructure:"saturation" validate:"gte=-100,lte=100"`
	Clarity           float64 `json:"clarity" mapstructure:"clarity" validate:"gte=-100,lte=100"`
	Structure         float64 `json:"structure" mapstructure:"structure" validate:"gte=-100,lte=100"`
	Temperature       float64 `json:"temperature" mapstructure:"temperature" validate:"gte=-100,lte=100"`
	Tint              float64 `json:"tint" mapstructure:"tint" validate:"gte=-100,lte=100"`
	SkinSmoothing     float64 `json:"skin_smoothing" mapstructure:"skin_smoothing" validate:"gte=0,lte=100"`
	MidtoneProtection bool    `json:"midtone_protection" mapstructure:"midtone_protection"`
}

// Validate reports values outside their documented range.
func (p Params) Validate() error {
	return newError(ConfigurationError, "validate params", "", validate.Struct(p))
}

// Clamp returns a copy of p with every value forced into range.
func (p Params) Clamp() Params {
	p.Exposure = clampRange(p.Exposure, -2, 2)
	p.Brightness = int(clampRange(float64(p.Brightness), -100, 100))
	p.Highlights = clampRange(p.Highlights, -100, 0)
	p.Shadows = clampRange(p.Shadows, 0, 100)
	p.Vibrance = clampRange(p.Vibrance, -100, 100)
	p.Saturation = clampRange(p.Saturation, -100, 100)
	p.Clarity = clampRange(p.Clarity, -100, 100)
	p.Structure = clampRange(p.Structure, -100, 100)
	p.Temperature = clampRange(p.Temperature, -100, 100)
	p.Tint = clampRange(p.Tint, -100, 100)
	p.SkinSmoothing = clampRange(p.SkinSmoothing, 0, 100)
	return p
}

// ParseParams decodes a JSON object of adjustments. Keys are optional;
// unknown keys and out-of-range values are configuration errors.
func ParseParams(data []byte) (Params, error) {
	var p Params
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return p, newError(ConfigurationError, "parse params", "", errors.New("custom parameters must be a JSON object"))
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return p, newError(ConfigurationError, "parse params", "", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return p, newError(ConfigurationError, "parse params", "", errors.New("unexpected data after JSON object"))
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// Apply runs p on s in the fixed adjustment order:
// tone, highlights/shadows, vibrance/saturation, clarity/structure,
// temperature/tint, portrait and, when enabled, midtone protection.
//
// Exposure takes priority over brightness; brightness only runs when
// exposure is zero.
func (p Params) Apply(s *Session) *Session {
	if p.Exposure == 0 && p.Brightness != 0 {
		s.Brightness(p.Brightness)
	} else {
		s.Exposure(p.Exposure)
	}
	s.HighlightsShadows(p.Highlights, p.Shadows).
		VibranceSaturation(p.Vibrance, p.Saturation).
		ClarityStructure(p.Clarity, p.Structure).
		ColorTemperature(p.Temperature, p.Tint).
		Portrait(p.SkinSmoothing)
	if p.MidtoneProtection {
		s.MidtoneProtection()
	}
	return s
}

// ApplyParams applies p to img and returns the result with its history.
func ApplyParams(img image.Image, p Params) (*image.NRGBA, []string) {
	s := p.Apply(NewSession(img))
	return s.Result(), s.History()
}

func (p Params) String() string {
	return fmt.Sprintf(
		"exposure=%g brightness=%d highlights=%g shadows=%g vibrance=%g saturation=%g clarity=%g structure=%g temperature=%g tint=%g skin_smoothing=%g midtone_protection=%t",
		p.Exposure, p.Brightness, p.Highlights, p.Shadows, p.Vibrance, p.Saturation,
		p.Clarity, p.Structure, p.Temperature, p.Tint, p.SkinSmoothing, p.MidtoneProtection,
	)
}
