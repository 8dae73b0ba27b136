package timing

import (
	"fmt"

	"geoprof/internal/progress"
)

// Sink adapts the engine's progress callback to a Clock. A fresh Sink and
// Clock are created for every job so runs never share timing state.
type Sink struct {
	clock    *Clock
	reporter progress.Reporter
	jobID    string
	path     string
}

// SinkOption configures a Sink.
type SinkOption func(*Sink)

// WithReporter forwards stage changes and progress to an observer.
func WithReporter(rp progress.Reporter, jobID, path string) SinkOption {
	return func(s *Sink) {
		s.reporter = rp
		s.jobID = jobID
		s.path = path
	}
}

// NewSink binds a Sink to clock.
func NewSink(clock *Clock, opts ...SinkOption) *Sink {
	s := &Sink{clock: clock}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Clock returns the clock the sink feeds.
func (s *Sink) Clock() *Clock {
	return s.clock
}

// Report is the callback handed to the engine. It may be called concurrently.
func (s *Sink) Report(percent int, label string) {
	ev, ok := Decode(percent, label)
	if !ok {
		s.clock.RecordViolation(fmt.Sprintf("progress value %d outside the sentinel protocol", percent))
		return
	}
	s.Handle(ev)
}

// Handle applies a decoded event.
func (s *Sink) Handle(ev Event) {
	switch ev.Kind {
	case KindEnter:
		s.clock.Enter(ev.Label)
	case KindExit:
		s.clock.Exit()
	case KindProgress:
		s.clock.Progress(ev.Percent)
	default:
		return
	}
	s.forward(ev)
}

func (s *Sink) forward(ev Event) {
	if s.reporter == nil {
		return
	}
	label, depth, ok := s.clock.Current()
	u := progress.Update{
		JobID:   s.jobID,
		Path:    s.path,
		Phase:   progress.PhaseBuilding,
		Stage:   label,
		Depth:   depth,
		Percent: -1,
		Message: "Building",
	}
	if ok {
		u.Message = label
	}
	if ev.Kind == KindProgress {
		u.Percent = float64(ev.Percent)
	}
	s.reporter.Update(u)
}
