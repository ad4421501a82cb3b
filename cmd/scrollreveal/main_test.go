package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scrollreveal/pkg/config"
	"scrollreveal/pkg/html"
)

const page = `
	<div style="height: 1500px"></div>
	<div id="x" class="card" data-aos="fade-up" style="height: 100px"></div>
	<div style="height: 1000px"></div>`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Viewport = config.ViewportConfig{Width: 800, Height: 600}
	return cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_ScenarioReport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.html", page)
	sc := writeFile(t, dir, "hero.yaml", `
page: index.html
steps:
  - scroll: 1100
  - expect: {"#x": active}
  - frame: hero
`)
	cfg := testConfig()
	cfg.Frames.Dir = filepath.Join(dir, "frames")

	var out bytes.Buffer
	if err := run(context.Background(), quietLogger(), cfg, options{targets: []string{sc}}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	text := out.String()
	for _, want := range []string{"== hero", "div#x.card[fade-up]", "idle -> active", "1100", "1 live, 1 active"} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q:\n%s", want, text)
		}
	}
	if _, err := os.Stat(filepath.Join(cfg.Frames.Dir, "hero-hero.png")); err != nil {
		t.Errorf("frame not written: %v", err)
	}
}

func TestRun_FailedExpectations(t *testing.T) {
	dir := t.TempDir()
	sc := writeFile(t, dir, "bad.yaml", "html: '<div id=\"x\" data-aos=\"fade\"></div>'\nsteps:\n  - expect: {'#x': retired}\n")
	var out bytes.Buffer
	err := run(context.Background(), quietLogger(), testConfig(), options{targets: []string{sc}}, &out)
	if err == nil || !strings.Contains(err.Error(), "1 of 1") {
		t.Errorf("err = %v", err)
	}
	if !strings.Contains(out.String(), "FAIL step 1: #x is") {
		t.Errorf("report:\n%s", out.String())
	}
}

func TestRun_PlainPageSweep(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "index.html", page)
	var out bytes.Buffer
	opts := options{targets: []string{p}, stride: 300}
	if err := run(context.Background(), quietLogger(), testConfig(), opts, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "== index") || !strings.Contains(out.String(), "idle -> active") {
		t.Errorf("report:\n%s", out.String())
	}
}

func TestOptionsApply(t *testing.T) {
	cfg := options{logLevel: "debug", width: 640, framesDir: "out", band: false}.apply(config.Default())
	if cfg.LogLevel != "debug" || cfg.Viewport.Width != 640 || cfg.Viewport.Height != 768 || cfg.Frames.Dir != "out" || cfg.Frames.ShowBand {
		t.Errorf("unexpected %+v", cfg)
	}
	if !(options{band: true}).apply(config.Default()).Frames.ShowBand {
		t.Error("band flag should keep the configured overlay")
	}
}

func TestWatchedPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.html", page)
	sc := writeFile(t, dir, "hero.yaml", "page: index.html\n")
	got := watchedPaths(testConfig(), options{configPath: "cfg.yaml", targets: []string{sc, "https://example.com/"}})
	want := []string{"cfg.yaml", sc, filepath.Join(dir, "index.html")}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDescribe(t *testing.T) {
	n := html.NewElement("section", map[string]string{"id": "a", "class": "b aos-animate", "data-aos": "zoom"})
	if got := describe(n); got != "section#a.b[zoom]" {
		t.Errorf("describe = %q", got)
	}
	if describe(nil) != "?" {
		t.Error("nil node")
	}
	if got := sanitize("step01/a b"); got != "step01_a_b" {
		t.Errorf("sanitize = %q", got)
	}
}

func TestRun_GoldenFrames(t *testing.T) {
	dir := t.TempDir()
	golden := filepath.Join(dir, "golden")
	frames := filepath.Join(dir, "frames")
	writeFile(t, dir, "index.html", page)
	sc := writeFile(t, dir, "hero.yaml", "page: index.html\nsteps:\n  - scroll: 1100\n  - frame: hero\n")

	cfg := testConfig()
	cfg.Frames.Golden = golden
	opts := options{targets: []string{sc}, update: true}
	if err := run(context.Background(), quietLogger(), cfg, opts, io.Discard); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := os.Stat(filepath.Join(golden, "hero-hero.png")); err != nil {
		t.Fatalf("golden not written: %v", err)
	}

	opts.update = false
	if err := run(context.Background(), quietLogger(), cfg, opts, io.Discard); err != nil {
		t.Fatalf("unchanged page should match its golden: %v", err)
	}

	writeFile(t, dir, "index.html", strings.Replace(page, `style="height: 100px"`, `style="height: 100px; background-color: blue"`, 1))
	cfg.Frames.Dir = frames
	var out bytes.Buffer
	if err := run(context.Background(), quietLogger(), cfg, opts, &out); err == nil {
		t.Fatal("expected a golden mismatch")
	}
	if !strings.Contains(out.String(), "frame differs from reference: hero-hero.png") {
		t.Errorf("report:\n%s", out.String())
	}
	if _, err := os.Stat(filepath.Join(frames, "hero-hero-diff.png")); err != nil {
		t.Errorf("diff image not written: %v", err)
	}

	if err := os.Remove(filepath.Join(golden, "hero-hero.png")); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	run(context.Background(), quietLogger(), cfg, opts, &out)
	if !strings.Contains(out.String(), "has no reference") {
		t.Errorf("missing golden not reported:\n%s", out.String())
	}
}
