package batch

import (
	"fmt"
	"strings"

	"github.com/sunshineplan/imgpreset"
)

// Utility modes and special task names.
const (
	ResizeOnly      = "resize_only"
	ResizeWatermark = "resize_watermark"
	WatermarkOnly   = "watermark"
	EnhancedMode    = "enhanced_mode"
	Custom          = "custom"
)

// Modes lists the utility modes with their descriptions.
var Modes = map[string]string{
	ResizeOnly:      "Resize to target resolutions only",
	ResizeWatermark: "Resize and add watermark",
	WatermarkOnly:   "Add watermark only",
}

var modeCodes = map[string]string{
	"portrait_subtle":      "sub",
	"portrait_natural":     "nat",
	"portrait_dramatic":    "drm",
	"studio_portrait":      "std",
	"overexposed_recovery": "ovr",
	"natural_wildlife":     "wld",
	"sports_action":        "spt",
	EnhancedMode:           "ehm",
	"enhanced":             "enh",
	ResizeWatermark:        "rsz",
	WatermarkOnly:          "wtm",
	ResizeOnly:             "res",
	Custom:                 "cst",
}

// ModeCode returns the three-letter code used in output file names.
func ModeCode(name string) string {
	if code, ok := modeCodes[name]; ok {
		return code
	}
	return "prc"
}

// Task describes what happens to every image of a batch.
type Task struct {
	Name      string
	Preset    string
	Params    *imgpreset.Params
	Lighting  *imgpreset.LightingConfig
	Resize    bool
	Watermark bool
	Profile   imgpreset.Profile
}

// NewTask builds the task for a preset name or utility mode. When custom
// is not nil it wins over name. Unknown names are configuration errors.
func NewTask(name string, custom *imgpreset.Params) (*Task, error) {
	if custom != nil {
		if err := custom.Validate(); err != nil {
			return nil, err
		}
		return &Task{Name: Custom, Params: custom, Resize: true, Watermark: true, Profile: imgpreset.SmartEnhanced}, nil
	}

	switch name {
	case ResizeOnly:
		return &Task{Name: name, Resize: true, Profile: imgpreset.Basic}, nil
	case ResizeWatermark:
		return &Task{Name: name, Resize: true, Watermark: true, Profile: imgpreset.Basic}, nil
	case WatermarkOnly:
		return &Task{Name: name, Watermark: true, Profile: imgpreset.Basic}, nil
	case EnhancedMode, "enhanced":
		lighting, err := imgpreset.LightingMode("enhanced")
		if err != nil {
			return nil, err
		}
		return &Task{Name: name, Lighting: &lighting, Resize: true, Watermark: true, Profile: imgpreset.SmartEnhanced}, nil
	}

	if _, err := imgpreset.Lookup(name); err != nil {
		return nil, err
	}
	return &Task{Name: name, Preset: name, Resize: true, Watermark: true, Profile: imgpreset.SmartEnhanced}, nil
}

// Suffix names the output folders of the task.
func (t *Task) Suffix() string {
	if t.Preset != "" {
		return t.Preset
	}
	if t.Params != nil {
		return Custom
	}
	return ModeCode(t.Name)
}

// Adjust returns the enhancement stages of the task for path: lighting
// and the preset variant suited to the file format.
func (t *Task) Adjust(path string) (imgpreset.Options, error) {
	var opts imgpreset.Options
	if t.Lighting != nil {
		opts.SetLighting(*t.Lighting)
	}
	switch {
	case t.Params != nil:
		opts.SetParams(*t.Params)
	case t.Preset != "":
		if err := opts.SetPreset(imgpreset.ResolvePreset(path, t.Preset)); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

// Output returns the resize, watermark and encode stages for budget.
func (t *Task) Output(budget Budget, cfg imgpreset.Config, mark *imgpreset.WatermarkOption) imgpreset.Options {
	opts := imgpreset.NewOptions()
	opts.SetQuality(cfg.JPEGQuality)
	if t.Resize {
		opts.SetResize(budget.Pixels)
	}
	if t.Watermark && cfg.Watermark {
		opts.Watermark = mark
	}
	return opts
}

// Budget is a labelled output pixel count.
type Budget struct {
	Label  string
	Pixels int
}

// Budgets are the known output resolutions.
var Budgets = map[string]Budget{
	"2k": {"2k", imgpreset.Pixels2K},
	"4k": {"4k", imgpreset.Pixels4K},
}

// DefaultBudgets is used when no resolution is requested.
var DefaultBudgets = []Budget{Budgets["4k"]}

// ParseBudgets parses a comma separated list of resolution labels.
func ParseBudgets(s string) ([]Budget, error) {
	var budgets []Budget
	for _, label := range strings.Split(s, ",") {
		label = strings.ToLower(strings.TrimSpace(label))
		if label == "" {
			continue
		}
		b, ok := Budgets[label]
		if !ok {
			return nil, fmt.Errorf("unknown resolution: %s", label)
		}
		budgets = append(budgets, b)
	}
	if len(budgets) == 0 {
		return DefaultBudgets, nil
	}
	return budgets, nil
}
