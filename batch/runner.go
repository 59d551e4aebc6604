package batch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sunshineplan/imgpreset"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var errSkip = errors.New("skip")

// Runner processes batches of images.
type Runner struct {
	Config  imgpreset.Config
	Budgets []Budget
	Workers int
	Force   bool
	Mark    image.Image
	Logger  *zap.SugaredLogger

	// OnFile, when set, is called once per input file after all of its
	// outputs are written or have failed.
	OnFile func()
}

// Result is the outcome of one budget.
type Result struct {
	Budget    Budget
	Dir       string
	Archive   string
	Total     int
	Processed int
	Failed    int
	Failures  map[string]error
}

// Summary is the outcome of a batch.
type Summary struct {
	Results []Result
}

// Total returns the number of expected outputs across all budgets, one
// per input file and budget.
func (s Summary) Total() (n int) {
	for _, r := range s.Results {
		n += r.Total
	}
	return
}

// Processed returns the number of outputs written across all budgets.
func (s Summary) Processed() (n int) {
	for _, r := range s.Results {
		n += r.Processed
	}
	return
}

// Failed returns the number of failed outputs across all budgets.
func (s Summary) Failed() (n int) {
	for _, r := range s.Results {
		n += r.Failed
	}
	return
}

// Run applies task to files and writes the outputs under outDir, one
// folder and one ZIP archive per budget. Failures of single files are
// logged and counted; only setup errors are returned.
func (r *Runner) Run(ctx context.Context, task *Task, files []File, outDir string) (Summary, error) {
	log := r.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	budgets := r.Budgets
	if len(budgets) == 0 {
		budgets = DefaultBudgets
	}
	var mark *imgpreset.WatermarkOption
	if r.Mark != nil {
		mark = &imgpreset.WatermarkOption{Mark: r.Mark}
		mark.SetOpacity(r.Config.WatermarkOpacity).SetScale(r.Config.WatermarkScale)
	}

	results := make([]Result, len(budgets))
	dirs := make([]string, len(budgets))
	for i, b := range budgets {
		dir := filepath.Join(outDir, fmt.Sprintf("processed_photos_%s_%s", b.Label, task.Suffix()))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return Summary{}, err
		}
		dirs[i] = dir
		results[i] = Result{Budget: b, Dir: dir, Total: len(files), Failures: make(map[string]error)}
	}

	loader := imgpreset.NewLoader(task.Profile, r.Config.Raw)
	names := OutputNames(files, ModeCode(task.Name))

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, r.Workers))
	for i, f := range files {
		g.Go(func() error {
			if r.OnFile != nil {
				defer r.OnFile()
			}
			errs := r.process(ctx, log, loader, task, f, names[i], budgets, dirs, mark)

			mu.Lock()
			defer mu.Unlock()
			for i, err := range errs {
				switch {
				case err == nil || errors.Is(err, errSkip):
					results[i].Processed++
				default:
					results[i].Failed++
					results[i].Failures[f.Rel] = err
				}
			}
			return nil
		})
	}
	g.Wait()

	for i := range results {
		res := &results[i]
		res.Archive = res.Dir + ".zip"
		if err := Archive(res.Dir, res.Archive); err != nil {
			log.Errorw("Failed to create archive", "dir", res.Dir, "error", err)
			res.Archive = ""
			continue
		}
		log.Infow("Finished", "resolution", strings.ToUpper(res.Budget.Label), "processed", res.Processed, "failed", res.Failed, "archive", res.Archive)
	}
	return Summary{Results: results}, nil
}

// OutputNames returns the output file name of every file, in order:
// {stem}_{code}.jpg. Files whose name is already taken in the batch, such
// as a RAW and JPEG pair or equal names in different folders, get their
// extension and then a counter added to the stem. Matching ignores case.
func OutputNames(files []File, code string) []string {
	names := make([]string, len(files))
	used := make(map[string]bool)
	for i, f := range files {
		ext := filepath.Ext(f.Path)
		stem := strings.TrimSuffix(filepath.Base(f.Path), ext)
		name := fmt.Sprintf("%s_%s.jpg", stem, code)
		if used[strings.ToLower(name)] {
			if ext != "" {
				stem += "_" + strings.ToLower(ext[1:])
			}
			name = fmt.Sprintf("%s_%s.jpg", stem, code)
			for n := 2; used[strings.ToLower(name)]; n++ {
				name = fmt.Sprintf("%s_%d_%s.jpg", stem, n, code)
			}
		}
		used[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

// process writes the outputs of one file into dirs, one per budget, and
// returns one error per budget.
func (r *Runner) process(
	ctx context.Context, log *zap.SugaredLogger, loader *imgpreset.Loader,
	task *Task, f File, name string, budgets []Budget, dirs []string, mark *imgpreset.WatermarkOption,
) []error {
	errs := make([]error, len(dirs))
	fail := func(err error) []error {
		for i := range errs {
			if errs[i] == nil {
				errs[i] = err
			}
		}
		return errs
	}

	pending := 0
	for i, dir := range dirs {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil && !r.Force {
			errs[i] = errSkip
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs[i] = err
		} else {
			pending++
		}
	}
	if pending == 0 {
		return errs
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	if imgpreset.IsRaw(f.Path) {
		if md, err := imgpreset.ReadRawMetadata(f.Path); err == nil {
			log.Debugw("RAW file", "file", f.Rel, "make", md.Make, "model", md.Model, "iso", md.ISO)
		}
	}
	img, err := loader.Load(ctx, f.Path)
	if err != nil {
		log.Errorw("Failed to open image", "image", f.Rel, "error", err)
		return fail(err)
	}

	adjust, err := task.Adjust(f.Path)
	if err != nil {
		log.Errorw("Failed to resolve preset", "image", f.Rel, "error", err)
		return fail(err)
	}
	img, history := adjust.Process(img)
	if len(history) > 0 {
		log.Infow("Adjusted", "image", f.Rel, "history", strings.Join(history[max(0, len(history)-3):], ", "))
	}

	for i, dir := range dirs {
		if errs[i] != nil {
			continue
		}
		opts := task.Output(budgets[i], r.Config, mark)
		if errs[i] = save(&opts, img, filepath.Join(dir, name)); errs[i] != nil {
			log.Errorw("Failed to convert image", "image", f.Rel, "resolution", budgets[i].Label, "error", errs[i])
		}
	}
	return errs
}

// save encodes img to a temporary file next to output and renames it.
func save(opts *imgpreset.Options, img image.Image, output string) error {
	path := filepath.Dir(output)
	f, err := os.CreateTemp(path, "*.tmp")
	if err != nil {
		return &imgpreset.Error{Kind: imgpreset.EncodeFailure, Op: "create temporary file", Path: path, Err: err}
	}
	defer os.Remove(f.Name())

	if _, err := opts.Convert(f, img); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return &imgpreset.Error{Kind: imgpreset.EncodeFailure, Op: "close", Path: f.Name(), Err: err}
	}
	if err := os.Rename(f.Name(), output); err != nil {
		return &imgpreset.Error{Kind: imgpreset.EncodeFailure, Op: "rename", Path: output, Err: err}
	}
	return nil
}
