// Command scrollreveal replays scroll sessions against pages that use
// data-aos attributes and reports when each element turns active or idle.
//
// Usage:
//
//	scrollreveal page.html                 # sweep the page top to bottom
//	scrollreveal -frames out hero.yaml     # replay a scenario, saving PNG frames
//	scrollreveal -watch hero.yaml          # replay again whenever a file changes
//	scrollreveal -golden ref hero.yaml     # fail when a frame differs from ref/
//	scrollreveal -golden ref -update-golden hero.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"scrollreveal/pkg/config"
	"scrollreveal/pkg/logging"
	"scrollreveal/pkg/render"
	"scrollreveal/pkg/scenario"
	"scrollreveal/pkg/watch"
)

type options struct {
	configPath string
	logLevel   string
	logJSON    bool
	width      float64
	height     float64
	framesDir  string
	golden     string
	update     bool
	band       bool
	stride     float64
	watch      bool
	targets    []string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "path to scrollreveal.yaml")
	flag.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	flag.BoolVar(&opts.logJSON, "log-json", false, "log JSON records")
	flag.Float64Var(&opts.width, "w", 0, "viewport width in pixels (overrides config)")
	flag.Float64Var(&opts.height, "h", 0, "viewport height in pixels (overrides config)")
	flag.StringVar(&opts.framesDir, "frames", "", "directory for PNG frames (overrides config)")
	flag.StringVar(&opts.golden, "golden", "", "directory of reference frames to compare against (overrides config)")
	flag.BoolVar(&opts.update, "update-golden", false, "write frames into the -golden directory instead of comparing")
	flag.BoolVar(&opts.band, "band", true, "draw the trigger band on frames")
	flag.Float64Var(&opts.stride, "stride", scenario.DefaultStride, "scroll stride when sweeping a plain page")
	flag.BoolVar(&opts.watch, "watch", false, "replay whenever an input file changes")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: scrollreveal [flags] <scenario.yaml | page.html | url>...\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	opts.targets = flag.Args()
	if len(opts.targets) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scrollreveal: %v\n", err)
		os.Exit(1)
	}
	cfg = opts.apply(cfg)

	var logger *slog.Logger
	if opts.logJSON {
		logger = logging.NewJSON(os.Stderr, cfg.LogLevel)
	} else {
		logger = logging.New(os.Stderr, cfg.LogLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, cfg, opts, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("scrollreveal: fatal", "error", err)
		os.Exit(1)
	}
}

// apply lays the command-line overrides over cfg.
func (o options) apply(cfg config.Config) config.Config {
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.width > 0 {
		cfg.Viewport.Width = o.width
	}
	if o.height > 0 {
		cfg.Viewport.Height = o.height
	}
	if o.framesDir != "" {
		cfg.Frames.Dir = o.framesDir
	}
	if o.golden != "" {
		cfg.Frames.Golden = o.golden
	}
	cfg.Frames.ShowBand = cfg.Frames.ShowBand && o.band
	return cfg
}

func run(ctx context.Context, logger *slog.Logger, cfg config.Config, opts options, out io.Writer) error {
	if !opts.watch {
		return replayAll(ctx, logger, cfg, opts, out)
	}

	changed := make(chan string, 1)
	w, err := watch.New(watchedPaths(cfg, opts), func(path string) {
		select {
		case changed <- path:
		default:
		}
	}, watch.WithLogger(logger))
	if err != nil {
		return err
	}
	defer w.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.Run(ctx) })
	g.Go(func() error {
		for {
			if err := replayAll(ctx, logger, cfg, opts, out); err != nil {
				logger.Warn("scrollreveal: replay failed", "error", err)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case path := <-changed:
				logger.Info("scrollreveal: change detected", "path", path)
			}
		}
	})
	return g.Wait()
}

func isScenario(target string) bool {
	ext := strings.ToLower(filepath.Ext(target))
	return ext == ".yaml" || ext == ".yml"
}

func load(target string, cfg config.Config, opts options) (*scenario.Scenario, error) {
	if isScenario(target) {
		return scenario.Load(target, cfg)
	}
	return scenario.ForPage(target, cfg, opts.stride, cfg.Frames.Enabled()), nil
}

// watchedPaths lists every local file a replay reads.
func watchedPaths(cfg config.Config, opts options) []string {
	paths := []string{opts.configPath}
	for _, target := range opts.targets {
		sc, err := load(target, cfg, opts)
		if err != nil {
			paths = append(paths, target)
			continue
		}
		if isScenario(target) {
			paths = append(paths, target)
		}
		if p := sc.PagePath(); p != "" && !strings.Contains(p, "://") {
			paths = append(paths, p)
		}
	}
	return paths
}

func replayAll(ctx context.Context, logger *slog.Logger, cfg config.Config, opts options, out io.Writer) error {
	var failed int
	for _, target := range opts.targets {
		sc, err := load(target, cfg, opts)
		if err != nil {
			return err
		}
		runner := scenario.NewRunner(
			scenario.WithLogger(logger),
			scenario.WithAutoInit(cfg.AutoInit),
			scenario.WithFrames(frameSink(logger, cfg, sc.Name, opts.update)),
		)
		res, err := runner.Run(ctx, sc)
		if err != nil {
			return err
		}
		if err := report(out, res); err != nil {
			return err
		}
		if !res.Passed() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios had failed expectations", failed, len(opts.targets))
	}
	return nil
}

// frameSink writes each frame to <dir>/<scenario>-<frame>.png and checks it
// against the file of the same name under the golden directory. With update
// set the golden file is rewritten instead. It returns nil when frames are
// disabled.
func frameSink(logger *slog.Logger, cfg config.Config, name string, update bool) scenario.FrameFunc {
	fc := cfg.Frames
	if !fc.Enabled() {
		return nil
	}
	prefix := sanitize(name)
	return func(frame string, s *scenario.Session) error {
		file := prefix + "-" + sanitize(frame) + ".png"
		r := render.NewRenderer(int(s.Window.InnerWidth()), int(s.Window.InnerHeight()), render.Options{
			ShowBand: fc.ShowBand,
			Outline:  true,
			HUD:      true,
		})
		r.Render(s.Window, s.Engine())

		if fc.Dir != "" {
			if err := savePNG(fc.Dir, file, r.SavePNG); err != nil {
				return fmt.Errorf("frame %s: %w", frame, err)
			}
			logger.Debug("scrollreveal: frame saved", "path", filepath.Join(fc.Dir, file))
		}
		if fc.Golden == "" {
			return nil
		}
		if update {
			if err := savePNG(fc.Golden, file, r.SavePNG); err != nil {
				return fmt.Errorf("frame %s: %w", frame, err)
			}
			logger.Info("scrollreveal: golden updated", "path", filepath.Join(fc.Golden, file))
			return nil
		}
		return checkGolden(logger, fc, file, r.Image())
	}
}

// checkGolden compares img with the reference frame. A missing or different
// reference is reported as scenario.ErrFrameMismatch; when a frames directory
// is set the diff image is saved next to the frame.
func checkGolden(logger *slog.Logger, fc config.FramesConfig, file string, img image.Image) error {
	want, err := render.LoadPNG(filepath.Join(fc.Golden, file))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s has no reference", scenario.ErrFrameMismatch, file)
	}
	if err != nil {
		return err
	}
	res, err := render.Compare(img, want, render.CompareOptions{
		Tolerance:           fc.Tolerance,
		MaxDifferentPercent: fc.MaxDiff,
	})
	if errors.Is(err, render.ErrSizeMismatch) {
		return fmt.Errorf("%w: %s: %v", scenario.ErrFrameMismatch, file, err)
	}
	if err != nil {
		return err
	}
	if res.Match {
		return nil
	}
	if fc.Dir != "" {
		diff := strings.TrimSuffix(file, ".png") + "-diff.png"
		if err := savePNG(fc.Dir, diff, func(path string) error { return writePNG(path, res.Diff) }); err != nil {
			logger.Warn("scrollreveal: diff not saved", "error", err)
		}
	}
	return fmt.Errorf("%w: %s: %d of %d pixels differ (max channel delta %d)",
		scenario.ErrFrameMismatch, file, res.DifferentPixels, res.TotalPixels, res.MaxDifference)
}

func savePNG(dir, file string, save func(path string) error) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return save(filepath.Join(dir, file))
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}
