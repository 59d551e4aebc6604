package imgpreset

import (
	"image"
	_ "image/jpeg" // decode jpeg format
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "github.com/sunshineplan/tiff" // decode tiff format
	_ "golang.org/x/image/bmp"       // decode bmp format
	_ "golang.org/x/image/webp"      // decode webp format
)

// Category is the broad kind of a source file.
type Category int

// Source categories.
const (
	Unknown Category = iota
	JPEG
	RAW
)

func (c Category) String() string {
	switch c {
	case JPEG:
		return "jpeg"
	case RAW:
		return "raw"
	default:
		return "unknown"
	}
}

var categories = map[string]Category{
	"nef": RAW, "cr2": RAW, "arw": RAW, "dng": RAW, "raf": RAW,
	"orf": RAW, "rw2": RAW, "pef": RAW, "srw": RAW,

	"jpg": JPEG, "jpeg": JPEG, "jpe": JPEG, "jfif": JPEG,
}

// presetFamilies maps a preset family to its per-category variants.
var presetFamilies = map[string]map[Category]string{}

func init() {
	for _, family := range []string{
		"sports_action",
		"portrait_dramatic",
		"portrait_natural",
		"portrait_subtle",
		"natural_wildlife",
		"landscape",
	} {
		presetFamilies[family] = map[Category]string{RAW: family + "_raw", JPEG: family}
	}
}

// FormatInfo describes a source file by its extension.
type FormatInfo struct {
	Filename  string
	Extension string
	Category  Category
}

// Info returns the FormatInfo of path.
func Info(path string) FormatInfo {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	return FormatInfo{Filename: filepath.Base(path), Extension: ext, Category: categories[ext]}
}

// Classify returns the category of path, matching its extension case-insensitively.
func Classify(path string) Category {
	return Info(path).Category
}

// IsRaw reports whether path names a camera RAW file.
func IsRaw(path string) bool {
	return Classify(path) == RAW
}

// ResolvePreset returns the variant of name suited to the format of path.
// A RAW file uses name_raw when such a preset exists. Names without a
// variant, and files of unknown format, get name back.
func ResolvePreset(path, name string) string {
	category := Classify(path)
	if category == Unknown {
		return name
	}
	if variants, ok := presetFamilies[name]; ok {
		if variant, ok := variants[category]; ok {
			return variant
		}
	}
	// Presets loaded from a file follow the same naming.
	if category == RAW && !strings.HasSuffix(name, "_raw") {
		if _, err := Lookup(name + "_raw"); err == nil {
			return name + "_raw"
		}
	}
	return name
}

// FormatOption is output format option.
type FormatOption struct {
	Format       imaging.Format
	EncodeOption []EncodeOption
}

// EncodeOption sets an optional parameter for the Encode function.
// https://github.com/disintegration/imaging
type EncodeOption imaging.EncodeOption

// JPEGQuality returns an EncodeOption that sets the output JPEG quality.
// Quality ranges from 1 to 100 inclusive, higher is better.
func JPEGQuality(quality int) EncodeOption {
	return EncodeOption(imaging.JPEGQuality(quality))
}

// JPEGFormat returns the JPEG output format with the given quality.
func JPEGFormat(quality int) FormatOption {
	return FormatOption{Format: imaging.JPEG, EncodeOption: []EncodeOption{JPEGQuality(quality)}}
}

// Encode writes base according format option.
func (f *FormatOption) Encode(w io.Writer, base image.Image) error {
	var opts []imaging.EncodeOption
	for _, i := range f.EncodeOption {
		opts = append(opts, imaging.EncodeOption(i))
	}
	return newError(EncodeFailure, "encode", "", imaging.Encode(w, base, f.Format, opts...))
}
