// Package report writes a machine-readable YAML summary of a batch run.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"geoprof/internal/pipeline"
)

// Report is the serialized form of a pipeline.Summary.
type Report struct {
	RunID     string    `yaml:"run_id"`
	Started   time.Time `yaml:"started"`
	Finished  time.Time `yaml:"finished"`
	ElapsedMs float64   `yaml:"elapsed_ms"`
	Total     int       `yaml:"total"`
	Succeeded int       `yaml:"succeeded"`
	Failed    int       `yaml:"failed"`
	Skipped   int       `yaml:"skipped,omitempty"`
	Jobs      []Job     `yaml:"jobs"`
}

// Job is one converted file.
type Job struct {
	ID          string   `yaml:"id"`
	Input       string   `yaml:"input"`
	Resolved    string   `yaml:"resolved,omitempty"`
	Format      string   `yaml:"format,omitempty"`
	Status      string   `yaml:"status"`
	Scene       string   `yaml:"scene,omitempty"`
	SceneBytes  int64    `yaml:"scene_bytes,omitempty"`
	Store       string   `yaml:"store,omitempty"`
	ParseMs     float64  `yaml:"parse_ms"`
	CompileMs   float64  `yaml:"compile_ms"`
	SerializeMs float64  `yaml:"serialize_ms"`
	ElapsedMs   float64  `yaml:"elapsed_ms"`
	Stages      []Stage  `yaml:"stages,omitempty"`
	Violations  []string `yaml:"violations,omitempty"`
	ErrorKind   string   `yaml:"error_kind,omitempty"`
	Error       string   `yaml:"error,omitempty"`
}

// Stage is one timed engine stage.
type Stage struct {
	Name      string  `yaml:"name"`
	Depth     int     `yaml:"depth"`
	ElapsedMs float64 `yaml:"elapsed_ms"`
}

// FromSummary converts a summary into its report form.
func FromSummary(sum pipeline.Summary) Report {
	r := Report{
		RunID:     sum.RunID,
		Started:   sum.Started,
		Finished:  sum.Finished,
		ElapsedMs: ms(sum.Elapsed()),
		Total:     sum.Total,
		Succeeded: sum.Succeeded,
		Failed:    sum.Failed,
		Skipped:   sum.Skipped,
	}
	for _, res := range sum.Results {
		j := Job{
			ID:          res.Job.ID,
			Input:       res.Job.InputPath,
			Resolved:    res.Job.ResolvedPath,
			Format:      string(res.Job.Format),
			Status:      "ok",
			Scene:       res.ScenePath,
			SceneBytes:  res.SceneBytes,
			Store:       res.StorePath,
			ParseMs:     ms(res.ParseTime),
			CompileMs:   ms(res.CompileTime),
			SerializeMs: ms(res.SerializeTime),
			ElapsedMs:   ms(res.Elapsed),
			Violations:  res.Violations,
		}
		for _, st := range res.Stages {
			j.Stages = append(j.Stages, Stage{Name: st.Name, Depth: st.Depth, ElapsedMs: ms(st.Elapsed)})
		}
		if !res.OK() {
			j.Status = "failed"
			j.ErrorKind = res.Kind().String()
			j.Error = res.Err.Error()
		}
		r.Jobs = append(r.Jobs, j)
	}
	return r
}

// Write stores the YAML report for sum at path.
func Write(path string, sum pipeline.Summary) error {
	data, err := yaml.Marshal(FromSummary(sum))
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// ms rounds to a tenth of a millisecond.
func ms(d time.Duration) float64 {
	return float64(d.Round(100*time.Microsecond)) / float64(time.Millisecond)
}
