// Package session models the "Identify Style" control: which image is
// selected, whether analysis may start, and the last result.
package session

import (
	"errors"

	"github.com/Brownie44l1/analyart/internal/ranking"
)

// Button labels.
const (
	LabelIdentify  = "Identify Style"
	LabelAnalyzing = "Analyzing..."
)

var (
	// ErrModelUnavailable means the model has not loaded, or failed to.
	ErrModelUnavailable = errors.New("model is not available")
	// ErrDisabled means the identify control cannot be used in this state.
	ErrDisabled = errors.New("identify control is disabled")
	// ErrBusy means an analysis is already running.
	ErrBusy = errors.New("analysis in progress")
)

// State of the identify control.
type State int

const (
	Idle State = iota
	Ready
	Analyzing
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Analyzing:
		return "analyzing"
	default:
		return "idle"
	}
}

// Control is the identify control's state machine:
//
//	Idle --SelectImage--> Ready --Begin--> Analyzing --Complete--> Ready
//
// Reset returns to Idle from any state. Every Begin and Reset starts a new
// generation; Complete and Fail drop replies from older generations. Control
// is not safe for concurrent use; the UI event loop owns it.
type Control struct {
	state      State
	generation uint64
	modelReady bool
	image      string
	result     *ranking.Result
	err        error
}

// New returns a Control in Idle with no model.
func New() *Control {
	return &Control{}
}

// SetModelReady records whether a model is loaded. Without one no image can
// be selected, so the control never leaves Idle.
func (c *Control) SetModelReady(ready bool) {
	c.modelReady = ready
	if !ready {
		c.Reset()
	}
}

// ModelReady reports whether a model is loaded.
func (c *Control) ModelReady() bool { return c.modelReady }

// SelectImage records the chosen image and enables the control.
func (c *Control) SelectImage(ref string) error {
	if !c.modelReady {
		return ErrModelUnavailable
	}
	if c.state == Analyzing {
		return ErrBusy
	}
	c.image = ref
	c.state = Ready
	return nil
}

// Begin starts an analysis and returns its generation, which the reply must
// carry back to Complete or Fail. It fails unless the control is Ready.
func (c *Control) Begin() (uint64, error) {
	if c.state == Analyzing {
		return 0, ErrBusy
	}
	if c.state != Ready {
		return 0, ErrDisabled
	}
	c.generation++
	c.state = Analyzing
	c.err = nil
	return c.generation, nil
}

// Complete stores the result of analysis gen and re-enables the control.
// Replies for any other generation are ignored.
func (c *Control) Complete(gen uint64, res ranking.Result) bool {
	if c.state != Analyzing || gen != c.generation {
		return false
	}
	c.result = &res
	c.state = Ready
	return true
}

// Fail ends analysis gen without a result and re-enables the control.
func (c *Control) Fail(gen uint64, err error) bool {
	if c.state != Analyzing || gen != c.generation {
		return false
	}
	c.result = nil
	c.err = err
	c.state = Ready
	return true
}

// Generation identifies the current analysis.
func (c *Control) Generation() uint64 { return c.generation }

// Reset returns to Idle, dropping the image, any result and any analysis
// still in flight.
func (c *Control) Reset() {
	c.generation++
	c.state = Idle
	c.image = ""
	c.result = nil
	c.err = nil
}

// State returns the current state.
func (c *Control) State() State { return c.state }

// Enabled reports whether the identify control may be used.
func (c *Control) Enabled() bool { return c.state == Ready }

// ButtonLabel is the text shown on the identify control.
func (c *Control) ButtonLabel() string {
	if c.state == Analyzing {
		return LabelAnalyzing
	}
	return LabelIdentify
}

// Image is the selected image reference, empty in Idle.
func (c *Control) Image() string { return c.image }

// Result is the last completed analysis, or nil.
func (c *Control) Result() *ranking.Result { return c.result }

// Err is the last analysis error, or nil.
func (c *Control) Err() error { return c.err }
