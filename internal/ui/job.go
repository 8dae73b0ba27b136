package ui

import (
	"time"

	bubblesprogress "github.com/charmbracelet/bubbles/progress"

	"geoprof/internal/progress"
)

const maxJobLogs = 50

type jobState struct {
	id     string
	path   string
	phase  progress.Phase
	stage  string // innermost engine stage
	depth  int
	status string
	err    error
	done   bool

	outputPath string
	bytes      int64
	elapsed    time.Duration
	percent    float64 // -1 means unknown

	bar bubblesprogress.Model

	// warnings and other per-job lines, most recent last
	logs []string
}

func newJobState(id, path string) *jobState {
	return &jobState{
		id:      id,
		path:    path,
		phase:   progress.PhaseQueued,
		status:  "Queued",
		percent: -1,
		bar: bubblesprogress.New(
			bubblesprogress.WithDefaultGradient(),
			bubblesprogress.WithWidth(40),
		),
	}
}

func (js *jobState) apply(u progress.Update) {
	if u.Path != "" {
		js.path = u.Path
	}
	js.phase = u.Phase
	if u.Phase == progress.PhaseBuilding {
		js.stage = u.Stage
		js.depth = u.Depth
	}
	js.percent = u.Percent
	if u.Message != "" {
		js.status = u.Message
	}
}

func (js *jobState) addLog(line string) {
	if len(js.logs) >= maxJobLogs {
		js.logs = js.logs[1:]
	}
	js.logs = append(js.logs, line)
}

func (js *jobState) finish(r progress.Result) {
	js.done = true
	js.err = r.Err
	js.elapsed = r.Elapsed
	if r.Err != nil {
		js.phase = progress.PhaseError
		js.status = r.Err.Error()
		js.percent = -1
		return
	}
	js.phase = progress.PhaseCompleted
	js.percent = 100
	js.outputPath = r.OutputPath
	js.bytes = r.Bytes
}
