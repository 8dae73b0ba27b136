package timing

import (
	"fmt"
	"sync"
	"time"

	"geoprof/internal/model"
	"geoprof/internal/util/format"
)

// Logger is the subset of logging.Logger the clock writes to.
type Logger interface {
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
}

type frame struct {
	name        string
	start       time.Time
	lastPercent int // -1 until the first progress report
}

// Clock tracks the nested stages of one conversion run.
// It is safe for concurrent use.
type Clock struct {
	mu         sync.Mutex
	stack      []*frame
	records    []model.StageRecord
	violations []string

	log Logger
	now func() time.Time
}

// Option configures a Clock.
type Option func(*Clock)

// WithNow replaces the time source (tests).
func WithNow(now func() time.Time) Option {
	return func(c *Clock) {
		c.now = now
	}
}

// NewClock returns a Clock with an empty stage stack.
func NewClock(log Logger, opts ...Option) *Clock {
	c := &Clock{log: log, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Enter pushes a new stage.
func (c *Clock) Enter(label string) {
	c.mu.Lock()
	c.stack = append(c.stack, &frame{name: label, start: c.now(), lastPercent: -1})
	c.mu.Unlock()

	c.log.Info("Entering - %s", label)
}

// Exit pops the innermost stage and logs its elapsed time. An exit with no
// open stage is dropped and recorded as a protocol violation.
func (c *Clock) Exit() {
	c.mu.Lock()
	n := len(c.stack)
	if n == 0 {
		msg := "stage exit without a matching enter"
		c.violations = append(c.violations, msg)
		c.mu.Unlock()
		c.log.Warn("Protocol violation: %s, ignored", msg)
		return
	}
	f := c.stack[n-1]
	c.stack[n-1] = nil
	c.stack = c.stack[:n-1]
	elapsed := c.now().Sub(f.start)
	c.records = append(c.records, model.StageRecord{Name: f.name, Depth: n - 1, Elapsed: elapsed})
	c.mu.Unlock()

	c.log.Info("Complete in \t%s ms - %s", format.Millis(elapsed), f.name)
}

// Progress logs percent for the innermost stage when it differs from the
// last value seen for that stage. Without an open stage the report is skipped.
func (c *Clock) Progress(percent int) {
	c.mu.Lock()
	n := len(c.stack)
	if n == 0 {
		c.mu.Unlock()
		return
	}
	f := c.stack[n-1]
	if f.lastPercent == percent {
		c.mu.Unlock()
		return
	}
	f.lastPercent = percent
	elapsed := c.now().Sub(f.start)
	c.mu.Unlock()

	c.log.Info("%d%% in \t%s ms", percent, format.Millis(elapsed))
}

// Current returns the innermost open stage and its depth (0 = outermost).
func (c *Clock) Current() (label string, depth int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.stack)
	if n == 0 {
		return "", 0, false
	}
	return c.stack[n-1].name, n - 1, true
}

// Depth returns the number of open stages.
func (c *Clock) Depth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.stack)
}

// Finish ends the run. Stages still open are protocol violations: each one is
// recorded and logged, the stack is cleared, and their names are returned
// outermost first.
func (c *Clock) Finish() []string {
	c.mu.Lock()
	var dangling []string
	for _, f := range c.stack {
		dangling = append(dangling, f.name)
		c.violations = append(c.violations, fmt.Sprintf("stage %q never exited", f.name))
	}
	c.stack = nil
	c.mu.Unlock()

	for _, name := range dangling {
		c.log.Warn("Protocol violation: stage %q never exited", name)
	}
	return dangling
}

// RecordViolation notes an engine protocol violation detected outside the clock.
func (c *Clock) RecordViolation(msg string) {
	c.mu.Lock()
	c.violations = append(c.violations, msg)
	c.mu.Unlock()

	c.log.Warn("Protocol violation: %s", msg)
}

// Violations returns the protocol violations recorded so far.
func (c *Clock) Violations() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.violations...)
}

// Records returns the completed stages in completion order.
func (c *Clock) Records() []model.StageRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.StageRecord(nil), c.records...)
}
