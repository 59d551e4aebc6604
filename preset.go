package imgpreset

import (
	"fmt"
	"image"
	"maps"
	"slices"
	"sync"

	"github.com/spf13/viper"
)

var presetsMu sync.RWMutex

// presets is the catalogue of named looks. Standard entries are tuned for
// tone-mapped JPEG input; the _raw entries push harder because a RAW
// decode has more headroom.
var presets = map[string]Params{
	"portrait_subtle": {
		Exposure: 0.05, Highlights: -5, Shadows: 8, Vibrance: 5,
		Clarity: 2, Structure: 5, Temperature: 2, SkinSmoothing: 8,
	},
	"portrait_subtle_raw": {
		Exposure: 0.02, Highlights: -3, Shadows: 5, Vibrance: 3,
		Clarity: 1, Structure: 3, Temperature: 1, SkinSmoothing: 5,
	},
	"portrait_natural": {
		Exposure: 0.1, Highlights: -10, Shadows: 15, Vibrance: 10,
		Clarity: 5, Structure: 10, Temperature: 5, SkinSmoothing: 15,
	},
	"portrait_natural_raw": {
		Exposure: 0.15, Highlights: -18, Shadows: 22, Vibrance: 15, Saturation: 3,
		Clarity: 8, Structure: 15, Temperature: 8, SkinSmoothing: 12,
	},
	"portrait_dramatic": {
		Exposure: 0.08, Highlights: -8, Shadows: 20, Vibrance: 15,
		Clarity: 3, Structure: 8, Temperature: 5, SkinSmoothing: 5,
	},
	"portrait_dramatic_raw": {
		Exposure: 0.12, Highlights: -15, Shadows: 25, Vibrance: 20, Saturation: 5,
		Clarity: 8, Structure: 12, Temperature: 8, SkinSmoothing: 3,
	},
	"landscape": {
		Highlights: -15, Shadows: 10, Vibrance: 20, Saturation: 10,
		Clarity: 20, Structure: 15, Temperature: -5,
	},
	"landscape_raw": {
		Exposure: 0.05, Highlights: -25, Shadows: 15, Vibrance: 30, Saturation: 15,
		Clarity: 25, Structure: 20, Temperature: -3,
	},
	"studio_portrait": {
		Exposure: 0.2, Highlights: -5, Shadows: 5, Vibrance: 5,
		Structure: 5, Temperature: 10, SkinSmoothing: 20,
	},
	"overexposed_recovery": {
		Exposure: -0.1, Highlights: -20, Shadows: 10, Vibrance: 8,
		Clarity: 3, Structure: 5,
	},
	"natural_wildlife": {
		Exposure: 0.05, Highlights: -12, Shadows: 15, Vibrance: 12,
		Clarity: 6, Structure: 10, Temperature: 2,
	},
	"natural_wildlife_raw": {
		Exposure: 0.08, Highlights: -18, Shadows: 20, Vibrance: 18, Saturation: 3,
		Clarity: 12, Structure: 18, Temperature: 5,
	},
	"sports_action": {
		Exposure: 0.04, Highlights: -18, Shadows: 10, Vibrance: 12, Saturation: 2,
		Clarity: 8, Structure: 10, Temperature: 2, MidtoneProtection: true,
	},
	"sports_action_raw": {
		Exposure: 0.02, Highlights: -10, Shadows: 5, Vibrance: 5,
		Clarity: 2, Structure: 5, MidtoneProtection: true,
	},
}

var descriptions = map[string]string{
	"portrait_subtle":      "Subtle portrait enhancement",
	"portrait_natural":     "Natural look for portraits",
	"portrait_dramatic":    "Dramatic lighting for portraits",
	"studio_portrait":      "Studio-style portrait finish",
	"overexposed_recovery": "Recover details from overexposed images",
	"natural_wildlife":     "Enhance wildlife/nature shots",
	"sports_action":        "Sharpen and brighten action shots",
	"landscape":            "Punchy colour and detail for landscapes",
}

// Lookup returns the parameters of a named preset.
func Lookup(name string) (Params, error) {
	presetsMu.RLock()
	defer presetsMu.RUnlock()

	p, ok := presets[name]
	if !ok {
		return Params{}, newError(ConfigurationError, "lookup preset", "", fmt.Errorf("%w: %s", ErrUnknownPreset, name))
	}
	return p, nil
}

// PresetNames returns the names of all registered presets, sorted.
func PresetNames() []string {
	presetsMu.RLock()
	defer presetsMu.RUnlock()

	return slices.Sorted(maps.Keys(presets))
}

// Describe returns a one-line description of a preset.
func Describe(name string) string {
	if d, ok := descriptions[name]; ok {
		return d
	}
	if p, err := Lookup(name); err == nil {
		return p.String()
	}
	return ""
}

// ApplyPreset applies the named preset to img.
func ApplyPreset(img image.Image, name string) (*image.NRGBA, []string, error) {
	p, err := Lookup(name)
	if err != nil {
		return nil, nil, err
	}
	result, history := ApplyParams(img, p)
	return result, history, nil
}

// RegisterPresets adds or replaces presets after validating every entry.
func RegisterPresets(m map[string]Params) error {
	for name, p := range m {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("preset %s: %w", name, err)
		}
	}

	presetsMu.Lock()
	defer presetsMu.Unlock()

	maps.Copy(presets, m)
	return nil
}

// LoadPresetFile reads a preset catalogue (yaml, json or toml) of the form
//
//	presets:
//	  beach_volleyball:
//	    exposure: 0.03
//	    midtone_protection: true
func LoadPresetFile(path string) (map[string]Params, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, newError(ConfigurationError, "read preset file", path, err)
	}

	var file struct {
		Presets map[string]Params `mapstructure:"presets"`
	}
	if err := v.UnmarshalExact(&file); err != nil {
		return nil, newError(ConfigurationError, "decode preset file", path, err)
	}
	if len(file.Presets) == 0 {
		return nil, newError(ConfigurationError, "decode preset file", path, fmt.Errorf("no presets defined"))
	}
	for name, p := range file.Presets {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("preset %s: %w", name, err)
		}
	}
	return file.Presets, nil
}
