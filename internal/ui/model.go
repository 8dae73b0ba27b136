package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"geoprof/internal/pipeline"
	"geoprof/internal/progress"
)

// BatchFunc runs a batch, reporting progress to rp.
type BatchFunc func(ctx context.Context, rp progress.Reporter) pipeline.Summary

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc
	batch  BatchFunc

	// Jobs appear as the batch reports them, in report order.
	jobOrder []string
	jobs     map[string]*jobState

	summary  *pipeline.Summary
	stopping bool

	// UI
	width, height int
	styles        Styles
	spinner       spinner.Model

	// Reporter events are fed back into the program through eventCh.
	eventCh chan tea.Msg
	// exited is closed once the program stops reading eventCh.
	exited chan struct{}
	// started is closed when the batch goroutine begins.
	started chan struct{}
	// done receives the batch summary when the batch returns.
	done chan pipeline.Summary
}

func NewModel(ctx context.Context, batch BatchFunc) Model {
	c, cancel := context.WithCancel(ctx)
	sty := defaultStyles()
	sp := spinner.New()
	sp.Style = sty.Spinner

	return Model{
		ctx:     c,
		cancel:  cancel,
		batch:   batch,
		jobs:    map[string]*jobState{},
		styles:  sty,
		spinner: sp,
		eventCh: make(chan tea.Msg, 256),
		exited:  make(chan struct{}),
		started: make(chan struct{}),
		done:    make(chan pipeline.Summary, 1),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenEventsCmd(), m.startBatchCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.summary != nil || m.stopping {
				return m, tea.Quit
			}
			// The job in flight finishes; the rest are skipped.
			m.stopping = true
			m.cancel()
		}
	case interruptMsg:
		m.stopping = true
		m.cancel()
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		for _, js := range m.jobs {
			js.bar.Width = barWidth(m.width)
		}

	case jobUpdateMsg:
		js := m.job(msg.U.JobID, msg.U.Path)
		if !js.done {
			js.apply(msg.U)
		}
	case jobLogMsg:
		js := m.job(msg.L.JobID, "")
		js.addLog(strings.TrimRight(msg.L.Line, "\r\n"))
	case jobResultMsg:
		m.job(msg.R.JobID, msg.R.Path).finish(msg.R)
	case batchDoneMsg:
		sum := msg.Summary
		m.summary = &sum
		return m, tea.Quit
	}

	var cmds []tea.Cmd
	var c tea.Cmd
	m.spinner, c = m.spinner.Update(msg)
	if c != nil {
		cmds = append(cmds, c)
	}
	switch msg.(type) {
	case jobUpdateMsg, jobLogMsg, jobResultMsg:
		cmds = append(cmds, m.listenEventsCmd())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	out := m.viewHeader() + "\n\n" + m.viewJobs()
	if s := m.viewSummary(); s != "" {
		out += "\n" + s
	}
	return out
}

// job returns the state for id, registering it on first sight.
func (m *Model) job(id, path string) *jobState {
	js, ok := m.jobs[id]
	if !ok {
		js = newJobState(id, path)
		js.bar.Width = barWidth(m.width)
		m.jobs[id] = js
		m.jobOrder = append(m.jobOrder, id)
	}
	return js
}

func (m Model) listenEventsCmd() tea.Cmd {
	return func() tea.Msg {
		return <-m.eventCh
	}
}

func (m Model) startBatchCmd() tea.Cmd {
	return func() tea.Msg {
		go func() {
			close(m.started)
			rep := teaReporter{ch: m.eventCh, exited: m.exited}
			sum := m.batch(m.ctx, rep)
			m.done <- sum
			rep.send(batchDoneMsg{Summary: sum})
		}()
		return nil
	}
}

func barWidth(termWidth int) int {
	if termWidth <= 0 {
		return 40
	}
	w := termWidth - 20
	switch {
	case w < 10:
		return 10
	case w > 60:
		return 60
	default:
		return w
	}
}

// teaReporter turns pipeline events into tea messages. Stage progress is
// dropped when the program falls behind; terminal events always get through
// unless the program has already exited.
type teaReporter struct {
	ch     chan tea.Msg
	exited chan struct{}
}

func (r teaReporter) Update(u progress.Update) {
	if u.Phase == progress.PhaseCompleted || u.Phase == progress.PhaseError || u.Phase == progress.PhaseQueued {
		r.send(jobUpdateMsg{U: u})
		return
	}
	select {
	case r.ch <- jobUpdateMsg{U: u}:
	default:
	}
}

func (r teaReporter) Log(l progress.Log) {
	select {
	case r.ch <- jobLogMsg{L: l}:
	default:
	}
}

func (r teaReporter) Result(res progress.Result) {
	r.send(jobResultMsg{R: res})
}

func (r teaReporter) send(msg tea.Msg) {
	select {
	case r.ch <- msg:
	case <-r.exited:
	}
}
