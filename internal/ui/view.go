package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"geoprof/internal/progress"
	"geoprof/internal/util/format"
)

func (m Model) viewHeader() string {
	done, total := 0, len(m.jobOrder)
	for _, id := range m.jobOrder {
		if m.jobs[id].done {
			done++
		}
	}
	title := m.styles.Title.Render("geoprof · model geometry compiler")
	status := fmt.Sprintf("Models: %d/%d done • q: quit", done, total)
	if m.stopping && m.summary == nil {
		status = fmt.Sprintf("Models: %d/%d done • stopping after current model", done, total)
	}
	return title + "\n" + m.styles.Subtitle.Render(status)
}

func (m Model) viewJobs() string {
	if len(m.jobOrder) == 0 {
		return m.styles.Spinner.Render(m.spinner.View()) + " " + m.styles.Faint.Render("resolving inputs")
	}
	var b strings.Builder
	for _, id := range m.jobOrder {
		b.WriteString(m.viewJob(m.jobs[id]))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewJob(js *jobState) string {
	phaseStyle := m.styles.JobInfo
	switch js.phase {
	case progress.PhaseOpening:
		phaseStyle = m.styles.StageOpen
	case progress.PhaseBuilding:
		phaseStyle = m.styles.StageBuild
	case progress.PhaseSerializing, progress.PhasePersisting:
		phaseStyle = m.styles.StageWrite
	case progress.PhaseCompleted:
		phaseStyle = m.styles.Success
	case progress.PhaseError:
		phaseStyle = m.styles.Error
	}

	title := js.path
	if title == "" {
		title = js.id
	}
	line1 := fmt.Sprintf("%s  %s", m.styles.JobTitle.Render(truncate(title, 56)), phaseStyle.Render(string(js.phase)))

	var line2 string
	switch {
	case js.done && js.err == nil:
		line2 = m.styles.Success.Render("✓ done") + " " + m.styles.Faint.Render(format.Duration(js.elapsed))
	case js.err != nil:
		line2 = m.styles.Error.Render("✗ error")
	case js.percent >= 0 && js.percent <= 100:
		line2 = fmt.Sprintf("%s %5.1f%%", js.bar.ViewAs(js.percent/100.0), js.percent)
	case js.phase == progress.PhaseQueued:
		line2 = m.styles.Faint.Render("waiting")
	default:
		line2 = m.styles.Spinner.Render(m.spinner.View()) + " " + m.styles.Faint.Render("working")
	}

	info := js.status
	if js.phase == progress.PhaseBuilding && js.stage != "" {
		info = strings.Repeat("  ", js.depth) + js.stage
	}
	lines := []string{line1, line2, m.styles.JobInfo.Render(info)}
	if n := len(js.logs); n > 0 {
		lines = append(lines, m.styles.Warning.Render(js.logs[n-1]))
	}
	return m.styles.Box.Render(strings.Join(lines, "\n"))
}

func (m Model) viewSummary() string {
	var completed []string
	for _, id := range m.jobOrder {
		js := m.jobs[id]
		if js.done && js.err == nil && js.outputPath != "" {
			completed = append(completed, fmt.Sprintf("%s (%s)", js.outputPath, format.HumanizeBytes(js.bytes)))
		}
	}
	if len(completed) == 0 && m.summary == nil {
		return ""
	}

	var b strings.Builder
	if len(completed) > 0 {
		b.WriteString(m.styles.Subtitle.Render("✓ Scenes written:"))
		b.WriteString("\n")
		for _, c := range completed {
			b.WriteString(m.styles.Success.Render("  • " + c))
			b.WriteString("\n")
		}
	}
	if s := m.summary; s != nil {
		line := fmt.Sprintf("%d succeeded, %d failed", s.Succeeded, s.Failed)
		if s.Skipped > 0 {
			line += fmt.Sprintf(", %d skipped", s.Skipped)
		}
		b.WriteString(m.styles.Header.Render(line + " in " + format.Duration(s.Elapsed())))
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if n <= 0 || len(rs) <= n {
		return s
	}
	// Keep the file name visible.
	base := []rune(filepath.Base(s))
	if len(base) < n-1 {
		return "…" + string(rs[len(rs)-(n-1):])
	}
	return string(rs[:n-1]) + "…"
}
