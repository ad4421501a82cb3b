// Command srtui scrolls a page in the terminal and lists its data-aos
// elements with their live state.
//
// Usage:
//
//	srtui [-config scrollreveal.yaml] <page.html | url>
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"

	"scrollreveal/pkg/config"
	"scrollreveal/pkg/eventloop"
	"scrollreveal/pkg/logging"
	"scrollreveal/pkg/scenario"
	srnet "scrollreveal/std/net"
)

func main() {
	configPath := flag.String("config", "", "path to scrollreveal.yaml")
	logFile := flag.String("log", "", "write logs to this file (the terminal is taken by the UI)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: srtui [flags] <page.html | url>\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "srtui: %v\n", err)
		os.Exit(1)
	}

	var logOut io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "srtui: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	logger := logging.New(logOut, cfg.LogLevel)

	if err := run(logger, cfg, flag.Arg(0)); err != nil {
		logger.Error("srtui: fatal", "error", err)
		fmt.Fprintf(os.Stderr, "srtui: %v\n", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, cfg config.Config, ref string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	src, err := srnet.ReadPage(ctx, ref)
	cancel()
	if err != nil {
		return err
	}

	loop := eventloop.NewVirtual(time.Now(), eventloop.WithLogger(logger))
	sess := scenario.NewSession(loop, cfg.Viewport.Width, cfg.Viewport.Height,
		scenario.WithSessionLogger(logger), scenario.WithSettings(cfg.AOS, cfg.AutoInit))
	if err := sess.Open(src); err != nil {
		return err
	}
	sess.Window.Ready()

	p := tea.NewProgram(newModel(ref, sess, time.Now))
	_, err = p.Run()
	return err
}
