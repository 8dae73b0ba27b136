package progress

import "time"

// Phase identifies the orchestrator step a job is in.
type Phase string

const (
	PhaseQueued      Phase = "queued"
	PhaseOpening     Phase = "opening"
	PhaseBuilding    Phase = "building"
	PhaseSerializing Phase = "serializing"
	PhasePersisting  Phase = "persisting"
	PhaseCompleted   Phase = "completed"
	PhaseError       Phase = "error"
)

// Update conveys a phase change or engine stage progress for a job.
// Percent is 0..100 when known; negative means unknown.
type Update struct {
	JobID   string
	Path    string
	Phase   Phase
	Stage   string  // innermost engine stage label, if any
	Depth   int     // nesting depth of Stage
	Percent float64 // 0..100, or <0 if unknown
	Message string  // short human-friendly status line
}

// Log is a log line associated with a job.
type Log struct {
	JobID string
	Line  string
}

// Result is emitted once per job when it completes or fails.
type Result struct {
	JobID      string
	Path       string
	OutputPath string
	Bytes      int64
	Elapsed    time.Duration
	Err        error // nil on success
}

// Reporter is implemented by the TUI or any observer interested in progress events.
// Implementations must not block: Update may be called from engine worker goroutines.
type Reporter interface {
	Update(u Update)
	Log(l Log)
	Result(r Result)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Update(Update) {}
func (Nop) Log(Log)       {}
func (Nop) Result(Result) {}
