package pipeline

import (
	"errors"
	"time"

	"geoprof/internal/model"
)

// JobResult is the outcome of one conversion job.
type JobResult struct {
	Job        model.ConversionJob
	ScenePath  string // written .wexBIM, empty if serialization did not complete
	SceneBytes int64
	StorePath  string // persisted .xbim, empty unless KeepStore succeeded

	ParseTime     time.Duration
	CompileTime   time.Duration
	SerializeTime time.Duration
	Elapsed       time.Duration

	Stages     []model.StageRecord
	Violations []string
	Err        error // *JobError on failure
}

// OK reports whether the job succeeded.
func (r JobResult) OK() bool {
	return r.Err == nil
}

// Kind returns the failure kind, or 0 on success.
func (r JobResult) Kind() ErrorKind {
	var je *JobError
	if errors.As(r.Err, &je) {
		return je.Kind
	}
	return 0
}

// Summary aggregates a batch run.
type Summary struct {
	RunID    string
	Started  time.Time
	Finished time.Time

	Total     int
	Succeeded int
	Failed    int
	Skipped   int // not started because the run was cancelled

	Results []JobResult
}

// Elapsed is the wall time of the run.
func (s Summary) Elapsed() time.Duration {
	return s.Finished.Sub(s.Started)
}

func (s *Summary) add(r JobResult) {
	s.Results = append(s.Results, r)
	if r.OK() {
		s.Succeeded++
	} else {
		s.Failed++
	}
}
