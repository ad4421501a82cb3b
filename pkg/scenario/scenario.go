// Package scenario replays scripted scroll sessions against a page in
// virtual time and reports the resulting timeline of element states.
//
// A scenario file is YAML:
//
//	name: hero
//	page: index.html
//	viewport: {width: 1024, height: 768}
//	aos: {once: true}
//	steps:
//	  - ready: true
//	  - scroll: 600
//	  - wait: 20ms
//	  - expect: {"#hero": active}
//	  - frame: after-scroll
package scenario

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"scrollreveal/pkg/aos"
	"scrollreveal/pkg/config"
	srnet "scrollreveal/std/net"
)

// Duration decodes "150ms" style strings or plain integers in milliseconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", value.Line)
	}
	if ms, err := strconv.Atoi(value.Value); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// Step is one action. Exactly one field is set.
type Step struct {
	Scroll   *float64               `yaml:"scroll"`
	ScrollBy *float64               `yaml:"scrollBy"`
	Wait     Duration               `yaml:"wait"`
	Resize   *config.ViewportConfig `yaml:"resize"`
	Ready    bool                   `yaml:"ready"`
	Refresh  bool                   `yaml:"refresh"`
	Script   string                 `yaml:"script"`
	Frame    string                 `yaml:"frame"`
	Expect   map[string]string      `yaml:"expect"`
	Sweep    *Sweep                 `yaml:"sweep"`
}

// Sweep scrolls in strides toward To (the bottom of the page when unset),
// letting one throttle window pass after each stride.
type Sweep struct {
	Stride float64  `yaml:"stride"`
	To     *float64 `yaml:"to"`
	// Frames emits a frame after every stride.
	Frames bool `yaml:"frames"`
}

// DefaultStride is the sweep stride when none is given.
const DefaultStride = 100

// Kind names the action of the step.
func (s Step) Kind() string {
	var kinds []string
	if s.Scroll != nil {
		kinds = append(kinds, "scroll")
	}
	if s.ScrollBy != nil {
		kinds = append(kinds, "scrollBy")
	}
	if s.Wait != 0 {
		kinds = append(kinds, "wait")
	}
	if s.Resize != nil {
		kinds = append(kinds, "resize")
	}
	if s.Ready {
		kinds = append(kinds, "ready")
	}
	if s.Refresh {
		kinds = append(kinds, "refresh")
	}
	if s.Script != "" {
		kinds = append(kinds, "script")
	}
	if s.Frame != "" {
		kinds = append(kinds, "frame")
	}
	if len(s.Expect) > 0 {
		kinds = append(kinds, "expect")
	}
	if s.Sweep != nil {
		kinds = append(kinds, "sweep")
	}
	if len(kinds) != 1 {
		return strings.Join(kinds, "+")
	}
	return kinds[0]
}

// Scenario is a page plus the steps to replay against it.
type Scenario struct {
	Name     string                `yaml:"name"`
	Page     string                `yaml:"page"`
	HTML     string                `yaml:"html"`
	Viewport config.ViewportConfig `yaml:"viewport"`
	AOS      aos.Settings          `yaml:"aos"`
	Steps    []Step                `yaml:"steps"`

	dir string
}

var (
	ErrNoPage      = errors.New("scenario: one of page or html is required")
	ErrInvalidStep = errors.New("scenario: invalid step")
)

// Parse decodes a scenario over base, so unset viewport and aos fields keep
// the configured values.
func Parse(data []byte, base config.Config) (*Scenario, error) {
	sc := &Scenario{Viewport: base.Viewport, AOS: base.AOS}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

// Load reads a scenario file. A relative page path resolves against the
// file's directory.
func Load(path string, base config.Config) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	sc, err := Parse(data, base)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	sc.dir = filepath.Dir(path)
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return sc, nil
}

// Validate checks the page source and that every step has one action.
func (sc *Scenario) Validate() error {
	if (sc.Page == "") == (sc.HTML == "") {
		return ErrNoPage
	}
	var errs []error
	for i, st := range sc.Steps {
		switch kind := st.Kind(); {
		case kind == "":
			errs = append(errs, fmt.Errorf("%w %d: no action", ErrInvalidStep, i+1))
		case strings.Contains(kind, "+"):
			errs = append(errs, fmt.Errorf("%w %d: several actions (%s)", ErrInvalidStep, i+1, kind))
		case kind == "wait" && st.Wait < 0:
			errs = append(errs, fmt.Errorf("%w %d: negative wait", ErrInvalidStep, i+1))
		case kind == "sweep" && st.Sweep.Stride < 0:
			errs = append(errs, fmt.Errorf("%w %d: negative stride", ErrInvalidStep, i+1))
		}
		for sel, want := range st.Expect {
			switch want {
			case "active", "idle", "retired", "untracked":
			default:
				errs = append(errs, fmt.Errorf("%w %d: %s: unknown state %q", ErrInvalidStep, i+1, sel, want))
			}
		}
	}
	return errors.Join(errs...)
}

// ForPage returns a scenario that loads ref, dispatches the start events
// and sweeps to the bottom of the page.
func ForPage(ref string, base config.Config, stride float64, frames bool) *Scenario {
	name := ref
	if !srnet.IsNetworkURL(ref) {
		name = strings.TrimSuffix(filepath.Base(ref), filepath.Ext(ref))
	}
	return &Scenario{
		Name:     name,
		Page:     ref,
		Viewport: base.Viewport,
		AOS:      base.AOS,
		Steps: []Step{
			{Ready: true},
			{Sweep: &Sweep{Stride: stride, Frames: frames}},
		},
	}
}

// PagePath returns the resolved page path or URL, or "" for inline html.
func (sc *Scenario) PagePath() string {
	if sc.Page == "" || filepath.IsAbs(sc.Page) || sc.dir == "" || srnet.IsNetworkURL(sc.Page) {
		return sc.Page
	}
	return filepath.Join(sc.dir, sc.Page)
}

// Source returns the page markup, fetching it when the page is a URL.
func (sc *Scenario) Source(ctx context.Context) (string, error) {
	if sc.HTML != "" {
		return sc.HTML, nil
	}
	src, err := srnet.ReadPage(ctx, sc.PagePath())
	if err != nil {
		return "", fmt.Errorf("scenario: page: %w", err)
	}
	return src, nil
}
