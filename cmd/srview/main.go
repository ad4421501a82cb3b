// Command srview opens a page in a window and lets you scroll it with the
// mouse wheel while data-aos elements fade in and out.
//
// Usage:
//
//	srview [-config scrollreveal.yaml] <page.html | url>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"golang.org/x/sync/errgroup"

	"scrollreveal/pkg/config"
	"scrollreveal/pkg/eventloop"
	"scrollreveal/pkg/logging"
	"scrollreveal/pkg/scenario"
	"scrollreveal/pkg/watch"
	srnet "scrollreveal/std/net"
)

func main() {
	configPath := flag.String("config", "", "path to scrollreveal.yaml")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error (overrides config)")
	watchPage := flag.Bool("watch", true, "reload when a local page file changes")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: srview [flags] <page.html | url>\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "srview: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	logger := logging.New(os.Stderr, cfg.LogLevel)

	if err := run(logger, cfg, flag.Arg(0), *watchPage); err != nil {
		logger.Error("srview: fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, cfg config.Config, ref string, watchPage bool) error {
	a := app.New()
	w := a.NewWindow("scrollreveal - " + ref)
	w.Resize(fyne.NewSize(float32(cfg.Viewport.Width), float32(cfg.Viewport.Height)+40))

	loop := eventloop.New(eventloop.WithLogger(logger))
	sess := scenario.NewSession(loop, cfg.Viewport.Width, cfg.Viewport.Height,
		scenario.WithSessionLogger(logger), scenario.WithSettings(cfg.AOS, cfg.AutoInit))

	status := widget.NewLabel("Loading " + ref + "...")
	v := newViewer(sess, cfg.Frames.ShowBand, status, logger)
	w.SetContent(container.NewBorder(nil, status, nil, nil, v.surface))
	w.Canvas().SetOnTypedKey(v.typedKey)

	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return loop.Run(ctx) })

	open := func() {
		src, err := srnet.ReadPage(ctx, ref)
		if err != nil {
			fyne.Do(func() { status.SetText("Error: " + err.Error()) })
			return
		}
		loop.Post(func() { v.open(src) })
	}
	go open()

	if watchPage && !srnet.IsNetworkURL(ref) {
		pw, err := watch.New([]string{ref}, func(string) { open() }, watch.WithLogger(logger))
		if err != nil {
			logger.Warn("srview: not watching page", "error", err)
		} else {
			defer pw.Close()
			g.Go(func() error { return pw.Run(ctx) })
		}
	}

	w.ShowAndRun()
	cancel()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
