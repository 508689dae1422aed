package progress

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"github.com/trebuchet-org/treb-audit/internal/usecase"
)

// SpinnerSink reports progress with a terminal spinner. Audit entries emit
// events concurrently, so all spinner access is serialized.
type SpinnerSink struct {
	mu      sync.Mutex
	spinner *spinner.Spinner
}

// NewSpinnerSink creates a spinner-based progress sink
func NewSpinnerSink() *SpinnerSink {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.HideCursor = false
	return &SpinnerSink{spinner: s}
}

var _ usecase.ProgressSink = (*SpinnerSink)(nil)

// OnProgress updates the spinner line with the latest event.
func (r *SpinnerSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	message := event.Message
	if event.Total > 0 {
		message = fmt.Sprintf("[%d/%d] %s", event.Current, event.Total, event.Message)
	}

	if event.Spinner || event.Total > 0 {
		if !r.spinner.Active() {
			r.spinner.Start()
		}
		r.spinner.Suffix = " " + message
		return
	}
	if r.spinner.Active() {
		r.spinner.Stop()
	}
}

// Stop halts the spinner. Commands call it before rendering results so
// tables don't race the spinner line.
func (r *SpinnerSink) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.spinner.Active() {
		r.spinner.Stop()
	}
}

// Info prints an info message without leaving a torn spinner line.
func (r *SpinnerSink) Info(message string) {
	r.printAround(color.New(color.FgCyan), message)
}

// Error prints an error message without leaving a torn spinner line.
func (r *SpinnerSink) Error(message string) {
	r.printAround(color.New(color.FgRed), message)
}

func (r *SpinnerSink) printAround(c *color.Color, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wasActive := r.spinner.Active()
	if wasActive {
		r.spinner.Stop()
	}
	c.Println(message)
	if wasActive {
		r.spinner.Start()
	}
}
