package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/sunshineplan/imgpreset"
	"github.com/sunshineplan/imgpreset/batch"
	"github.com/sunshineplan/progressbar"
	"github.com/vharitonsky/iniflags"
	"go.uber.org/zap"
)

var (
	src         = flag.String("src", "input", "")
	dst         = flag.String("dst", "output", "")
	typ         = flag.String("type", "portrait_subtle", "")
	custom      = flag.String("custom", "", "")
	presetFile  = flag.String("presets", "", "")
	resolutions = flag.String("resolutions", "4k", "")
	quality     = flag.Int("quality", 90, "")
	watermark   = flag.String("watermark", "", "")
	noWatermark = flag.Bool("no-watermark", false, "")
	opacity     = flag.Float64("opacity", 0.9, "")
	scale       = flag.Float64("scale", 0.15, "")
	dcraw       = flag.String("dcraw", "dcraw", "")
	worker      = flag.Int("worker", 4, "")
	force       = flag.Bool("force", false, "")
	listPresets = flag.Bool("list-presets", false, "")
	listFormat  = flag.String("list-format", "text", "")
	listModes   = flag.Bool("list-modes", false, "")
	debug       = flag.Bool("debug", false, "")
	progress    = flag.Bool("progress", true, "")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
	fmt.Println(`
  --src
		source directory or ZIP archive (default: input)
  --dst
		output directory; results go to a dated folder inside (default: output)
  --type
		preset name (portrait_subtle, sports_action, ...), enhanced_mode,
		or utility mode (resize_only, resize_watermark, watermark)
  --custom
		custom preset as JSON object, e.g. {"exposure":0.1,"shadows":10}
  --presets
		additional preset file (yaml, json or toml)
  --resolutions
		comma separated output resolutions: 2k, 4k (default: 4k)
  --quality
		jpeg quality (range 1-100, default: 90)
  --watermark
		watermark image path
  --no-watermark
		disable watermarking
  --opacity
		watermark opacity (range 0-1, default: 0.9)
  --scale
		watermark width relative to image width (default: 0.15)
  --dcraw
		dcraw executable used for RAW files (default: dcraw)
  --worker
		number of images processed at once (default: 4)
  --force
		overwrite existing outputs
  --list-presets
		list enhancement presets and exit
  --list-format
		preset list format: text, table or json (default: text)
  --list-modes
		list utility modes and exit
  --progress
		show progress bar (default: true)
  --debug
		debug logging`)
}

func main() {
	self, err := os.Executable()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to get self path:", err)
		os.Exit(1)
	}

	flag.Usage = usage
	iniflags.SetConfigFile(filepath.Join(filepath.Dir(self), "config.ini"))
	iniflags.SetAllowMissingConfigFile(true)
	iniflags.Parse()

	logger := newLogger(filepath.Join(filepath.Dir(self), "imgpreset.log"), *debug)
	defer logger.Sync()
	imgpreset.SetLogger(logger)

	if code := run(logger.Sugar()); code != 0 {
		logger.Sync()
		os.Exit(code)
	}
}

func run(log *zap.SugaredLogger) int {
	if *presetFile != "" {
		presets, err := imgpreset.LoadPresetFile(*presetFile)
		if err != nil {
			log.Errorw("Failed to load preset file", "file", *presetFile, "error", err)
			return 1
		}
		if err := imgpreset.RegisterPresets(presets); err != nil {
			log.Errorw("Invalid preset file", "file", *presetFile, "error", err)
			return 1
		}
	}

	switch {
	case *listPresets:
		if err := printPresets(os.Stdout, *listFormat); err != nil {
			log.Error(err)
			return 1
		}
		return 0
	case *listModes:
		for _, name := range slices.Sorted(maps.Keys(batch.Modes)) {
			fmt.Printf("  - %s: %s\n", name, batch.Modes[name])
		}
		return 0
	}

	cfg := imgpreset.DefaultConfig()
	cfg.JPEGQuality = *quality
	cfg.Watermark = !*noWatermark
	cfg.WatermarkOpacity = *opacity
	cfg.WatermarkScale = *scale
	cfg.Raw.Dcraw = *dcraw
	if *watermark != "" {
		cfg.WatermarkPath = *watermark
	}
	if err := cfg.Validate(); err != nil {
		log.Error(err)
		return 1
	}

	var params *imgpreset.Params
	if *custom != "" {
		p, err := imgpreset.ParseParams([]byte(*custom))
		if err != nil {
			log.Errorw("Invalid custom preset JSON", "error", err)
			return 1
		}
		params = &p
	}
	task, err := batch.NewTask(*typ, params)
	if err != nil {
		log.Error(err)
		return 1
	}
	budgets, err := batch.ParseBudgets(*resolutions)
	if err != nil {
		log.Error(err)
		return 1
	}

	dir, cleanup, err := batch.Prepare(*src)
	if err != nil {
		log.Errorw("Failed to prepare input", "input", *src, "error", err)
		return 1
	}
	defer cleanup()

	files, err := batch.Collect(dir)
	if err != nil {
		log.Errorw("Failed to scan input", "input", dir, "error", err)
		return 1
	}
	if len(files) == 0 {
		log.Error("No image files found in the input")
		return 1
	}
	logFormats(log, files, task)

	out, err := batch.ProjectDir(*dst, time.Now())
	if err != nil {
		log.Error(err)
		return 1
	}

	runner := &batch.Runner{
		Config:  cfg,
		Budgets: budgets,
		Workers: *worker,
		Force:   *force,
		Logger:  log,
	}
	if cfg.Watermark && task.Watermark {
		runner.Mark = imgpreset.LoadWatermark(cfg.WatermarkPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Infow("Start processing", "type", task.Name, "images", len(files), "output", out)
	start := time.Now()
	if *progress {
		pb := progressbar.New(len(files))
		pb.Start()
		runner.OnFile = func() { pb.Add(1) }
		defer pb.Done()
	}
	summary, err := runner.Run(ctx, task, files, out)
	if err != nil {
		log.Error(err)
		return 1
	}
	for _, res := range summary.Results {
		for file, err := range res.Failures {
			log.Warnw("Failed", "resolution", res.Budget.Label, "image", file, "error", err)
		}
		log.Infow("Summary", "resolution", res.Budget.Label, "total", res.Total, "processed", res.Processed, "failed", res.Failed)
	}
	log.Infow("Done",
		"images", len(files),
		"outputs", summary.Total(),
		"processed", summary.Processed(),
		"failed", summary.Failed(),
		"elapsed", time.Since(start),
	)
	return 0
}

func logFormats(log *zap.SugaredLogger, files []batch.File, task *batch.Task) {
	counts := make(map[imgpreset.Category]int)
	for _, f := range files {
		counts[imgpreset.Classify(f.Path)]++
	}
	log.Infow("Format analysis", "raw", counts[imgpreset.RAW], "jpeg", counts[imgpreset.JPEG], "other", counts[imgpreset.Unknown])
	if task.Preset != "" && counts[imgpreset.RAW] > 0 && counts[imgpreset.JPEG] > 0 {
		log.Infow("Mixed formats detected",
			"raw", imgpreset.ResolvePreset("dummy.nef", task.Preset),
			"jpeg", imgpreset.ResolvePreset("dummy.jpg", task.Preset),
		)
	}
}

type presetEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func printPresets(w io.Writer, format string) error {
	var entries []presetEntry
	for _, name := range imgpreset.PresetNames() {
		entries = append(entries, presetEntry{name, imgpreset.Describe(name)})
	}
	entries = append(entries, presetEntry{batch.EnhancedMode, "General enhancement for all photos"})

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "Preset\tDescription")
		fmt.Fprintln(tw, "------\t-----------")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\n", e.Name, e.Description)
		}
		return tw.Flush()
	case "text":
		fmt.Fprintln(w, "Available enhancement presets:")
		for _, e := range entries {
			fmt.Fprintf(w, "  - %s: %s\n", e.Name, e.Description)
		}
		return nil
	default:
		return fmt.Errorf("unknown list format: %s", format)
	}
}
