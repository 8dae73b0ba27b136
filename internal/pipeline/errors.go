package pipeline

import "fmt"

// ErrorKind classifies where a job went wrong.
type ErrorKind int

const (
	ResolutionFailure ErrorKind = iota + 1
	OpenFailure
	BuildFailure
	SerializeFailure
	PersistFailure
	ProtocolViolation
)

func (k ErrorKind) String() string {
	switch k {
	case ResolutionFailure:
		return "resolution failure"
	case OpenFailure:
		return "open failure"
	case BuildFailure:
		return "build failure"
	case SerializeFailure:
		return "serialize failure"
	case PersistFailure:
		return "persist failure"
	case ProtocolViolation:
		return "protocol violation"
	default:
		return "unknown failure"
	}
}

// JobError is the error recorded for a failed job.
type JobError struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *JobError) Unwrap() error {
	return e.Err
}

func jobErr(kind ErrorKind, path string, err error) *JobError {
	return &JobError{Kind: kind, Path: path, Err: err}
}
