// Package pipeline resolves inputs into conversion jobs and drives each job
// through the engine: open, build, serialize the scene and optionally persist
// the store.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/viant/afs"

	"geoprof/internal/engine"
	"geoprof/internal/logging"
	"geoprof/internal/model"
	"geoprof/internal/progress"
	"geoprof/internal/resolve"
	"geoprof/internal/timing"
	"geoprof/internal/util"
	"geoprof/internal/util/format"
)

// Service orchestrates a batch of conversions.
type Service struct {
	engine   engine.Engine
	resolver *resolve.Resolver
	fs       afs.Service
	log      *logging.Logger
	reporter progress.Reporter
	opts     model.CLIOptions
	workDir  string
	stderr   io.Writer
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithEngine sets the geometry engine.
func WithEngine(e engine.Engine) Option {
	return func(s *Service) {
		s.engine = e
	}
}

// WithResolver overrides the input resolver.
func WithResolver(r *resolve.Resolver) Option {
	return func(s *Service) {
		s.resolver = r
	}
}

// WithFS sets the file system used for scene output.
func WithFS(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// WithLogger sets the run log.
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

// WithReporter attaches a progress reporter (used by TUI).
func WithReporter(rp progress.Reporter) Option {
	return func(s *Service) {
		s.reporter = rp
	}
}

// WithOptions sets the CLI options that shape every job.
func WithOptions(o model.CLIOptions) Option {
	return func(s *Service) {
		s.opts = o
	}
}

// WithWorkDir sets where stores are persisted when SameFolder is off.
// Empty means the process working directory.
func WithWorkDir(dir string) Option {
	return func(s *Service) {
		s.workDir = dir
	}
}

// WithStderr sets where open failures are echoed. Pass io.Discard to mute.
func WithStderr(w io.Writer) Option {
	return func(s *Service) {
		s.stderr = w
	}
}

// WithNow replaces the time source (tests).
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService constructs a Service. WithEngine is required; everything else
// has a default.
func NewService(opts ...Option) *Service {
	s := &Service{}
	for _, o := range opts {
		o(s)
	}
	if s.fs == nil {
		s.fs = afs.New()
	}
	if s.resolver == nil {
		s.resolver = resolve.New(s.fs)
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	if s.reporter == nil {
		s.reporter = progress.Nop{}
	}
	if s.stderr == nil {
		s.stderr = os.Stderr
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Run resolves inputs and converts every resolved file in order. A failing
// job is recorded and the batch moves on. Cancelling ctx stops the batch
// before the next job; the job in flight runs to completion.
func (s *Service) Run(ctx context.Context, inputs []string) Summary {
	sum := Summary{RunID: uuid.NewString(), Started: s.now()}

	planned := s.Plan(ctx, inputs)
	sum.Total = len(planned)
	for _, p := range planned {
		if p.Err == nil {
			s.reporter.Update(progress.Update{
				JobID:   p.Job.ID,
				Path:    p.Job.ResolvedPath,
				Phase:   progress.PhaseQueued,
				Percent: -1,
				Message: "Queued",
			})
		}
	}

	for i, p := range planned {
		if ctx.Err() != nil {
			sum.Skipped = len(planned) - i
			s.log.Warn("Run cancelled, %d job(s) not started", sum.Skipped)
			break
		}
		if p.Err != nil {
			s.log.Error("%v", p.Err)
			sum.add(JobResult{Job: p.Job, Err: p.Err})
			continue
		}
		sum.add(s.RunJob(ctx, p.Job))
	}

	sum.Finished = s.now()
	s.log.Info("Processed %d file(s): %d succeeded, %d failed in %s",
		sum.Total, sum.Succeeded, sum.Failed, format.Duration(sum.Elapsed()))
	return sum
}

// RunJob converts a single resolved file. It never returns early without
// closing the model it opened. Cancelling ctx does not interrupt the job.
func (s *Service) RunJob(ctx context.Context, job model.ConversionJob) (res JobResult) {
	ctx = context.WithoutCancel(ctx)
	res.Job = job
	start := s.now()
	handlesBefore := s.engine.OpenModels()
	path := job.ResolvedPath

	defer func() {
		res.Elapsed = s.now().Sub(start)
		if after := s.engine.OpenModels(); after != handlesBefore {
			msg := fmt.Sprintf("%d model handle(s) still open after %s", after-handlesBefore, path)
			s.log.Warn("Protocol violation: %s", msg)
			res.Violations = append(res.Violations, msg)
		}
		s.finish(res)
	}()

	s.log.Info("Processing %s", path)
	s.phase(job, progress.PhaseOpening, "Opening")

	openOpts := engine.OpenOptions{Format: job.Format}
	if job.KeepStore && job.Format.IsRaw() {
		openOpts.StoreThresholdMB = engine.Threshold(0)
	}
	m, err := s.engine.OpenModel(ctx, path, openOpts)
	if err != nil {
		s.log.Error("Unable to open model %s, %v", path, err)
		fmt.Fprintf(s.stderr, "Unable to open model %s, %v\n", path, err)
		res.Err = jobErr(OpenFailure, path, err)
		return res
	}
	defer func() {
		if cerr := m.Close(); cerr != nil {
			s.log.Warn("Closing %s: %v", path, cerr)
		}
	}()
	res.ParseTime = s.now().Sub(start)
	s.log.Info("Parse Time \t%s ms", format.Millis(res.ParseTime))

	clock := timing.NewClock(s.log, timing.WithNow(s.now))
	sink := timing.NewSink(clock, timing.WithReporter(s.reporter, job.ID, path))
	s.phase(job, progress.PhaseBuilding, "Building")

	buildStart := s.now()
	buildErr := m.BuildContext(ctx, engine.BuildOptions{
		MaxThreads:             job.Concurrency,
		SimplifiedFastExtruder: true,
	}, sink.Report)
	res.CompileTime = s.now().Sub(buildStart)
	s.log.Info("Total Compile Time \t%s ms", format.Millis(res.CompileTime))
	clock.Finish()
	res.Stages = clock.Records()
	res.Violations = append(res.Violations, clock.Violations()...)
	if buildErr != nil {
		s.log.Error("Failed to build %s: %v", path, buildErr)
		res.Err = jobErr(BuildFailure, path, buildErr)
		return res
	}

	s.phase(job, progress.PhaseSerializing, "Writing scene")
	scenePath := util.ChangeExt(path, resolve.ExtScene)
	serializeStart := s.now()
	n, err := s.writeScene(ctx, m, scenePath)
	res.SerializeTime = s.now().Sub(serializeStart)
	if err != nil {
		s.log.Error("Failed to write %s: %v", scenePath, err)
		res.Err = jobErr(SerializeFailure, path, err)
		return res
	}
	res.ScenePath = scenePath
	res.SceneBytes = n

	if job.KeepStore {
		dest := s.StorePath(job)
		if samePath(dest, path) {
			s.log.Debug("Store %s is the opened file, not saving", dest)
		} else {
			s.phase(job, progress.PhasePersisting, "Saving store")
			if err := m.SaveAs(ctx, dest); err != nil {
				s.log.Error("Failed to save store %s: %v", dest, err)
				res.Err = jobErr(PersistFailure, path, err)
				return res
			}
			s.log.Info("Saved store %s", dest)
			res.StorePath = dest
		}
	}
	return res
}

// writeScene streams the compiled scene to out and returns the bytes written.
func (s *Service) writeScene(ctx context.Context, m engine.Model, out string) (int64, error) {
	s.log.Info("Entering - Create wexBIM")
	start := s.now()

	w, err := s.fs.NewWriter(ctx, resolve.FileURL(out), 0o644)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", out, err)
	}
	cw := &countingWriter{w: w}
	if err := m.SerializeScene(ctx, cw); err != nil {
		_ = w.Close()
		_ = s.fs.Delete(ctx, resolve.FileURL(out))
		return cw.n, err
	}
	if err := w.Close(); err != nil {
		return cw.n, fmt.Errorf("close %s: %w", out, err)
	}

	s.log.Info("Complete in \t%s ms", format.Millis(s.now().Sub(start)))
	return cw.n, nil
}

// StorePath is where a KeepStore job persists its compiled store: beside the
// input with SameFolder, otherwise in the working directory.
func (s *Service) StorePath(job model.ConversionJob) string {
	if job.SameFolder {
		return util.ChangeExt(job.ResolvedPath, resolve.ExtStore)
	}
	return filepath.Join(s.workDir, util.ChangeExt(filepath.Base(job.ResolvedPath), resolve.ExtStore))
}

func (s *Service) phase(job model.ConversionJob, ph progress.Phase, msg string) {
	s.reporter.Update(progress.Update{
		JobID:   job.ID,
		Path:    job.ResolvedPath,
		Phase:   ph,
		Percent: -1,
		Message: msg,
	})
}

// finish emits the terminal update and result for a job.
func (s *Service) finish(res JobResult) {
	for _, v := range res.Violations {
		s.reporter.Log(progress.Log{JobID: res.Job.ID, Line: "Protocol violation: " + v})
	}
	u := progress.Update{
		JobID:   res.Job.ID,
		Path:    res.Job.ResolvedPath,
		Phase:   progress.PhaseCompleted,
		Percent: 100,
	}
	if res.OK() {
		u.Message = fmt.Sprintf("Saved: %s (%s)", filepath.Base(res.ScenePath), format.HumanizeBytes(res.SceneBytes))
		s.log.Success("%s converted in %s", res.Job.ResolvedPath, format.Duration(res.Elapsed))
	} else {
		u.Phase = progress.PhaseError
		u.Percent = -1
		u.Message = res.Err.Error()
	}
	s.reporter.Update(u)
	s.reporter.Result(progress.Result{
		JobID:      res.Job.ID,
		Path:       res.Job.ResolvedPath,
		OutputPath: res.ScenePath,
		Bytes:      res.SceneBytes,
		Elapsed:    res.Elapsed,
		Err:        res.Err,
	})
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func samePath(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	if err1 != nil || err2 != nil {
		return a == b
	}
	return aa == bb
}
