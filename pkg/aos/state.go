package aos

import (
	"fmt"
	"time"

	"scrollreveal/pkg/html"
)

// State is the trigger state of a record.
type State int

const (
	Idle State = iota
	Active
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Record is the engine's view of one registered element. The engine never
// attaches state to the node itself.
type Record struct {
	Node           *html.Node
	Animation      string
	Anchor         *html.Node // Node when no anchor is configured
	AnchorSelector string
	Placement      Placement
	Timing         Timing
	Once           bool
	Mirror         bool
	Snapshot       *Snapshot // nil until the first capture
	State          State
}

// step derives the next state from the current zone test. retire is set
// when the record must leave the live registry.
func (r *Record) step(inZone bool) (next State, retire bool) {
	switch r.State {
	case Idle:
		if inZone {
			return Active, r.Once
		}
	case Active:
		if !inZone && r.Mirror && !r.Once {
			return Idle, false
		}
	}
	return r.State, false
}

// Transition describes one state change observed during a pass.
type Transition struct {
	Node    *html.Node
	From    State
	To      State
	Retired bool
	ScrollY float64
	At      time.Time
}
