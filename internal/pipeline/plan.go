package pipeline

import (
	"context"

	"github.com/google/uuid"

	"geoprof/internal/model"
)

// PlannedJob is a resolved job, or the resolution failure for an input.
type PlannedJob struct {
	Job model.ConversionJob
	Err error // *JobError with Kind ResolutionFailure
}

// Plan resolves every input in order without touching the engine.
// KeepStore implies ForceRegenerate so directories do not feed previously
// saved stores back into the batch.
func (s *Service) Plan(ctx context.Context, inputs []string) []PlannedJob {
	force := s.opts.ForceRegenerate || s.opts.KeepStore
	concurrency := 0
	if s.opts.SingleThread {
		concurrency = 1
	}

	var out []PlannedJob
	for _, in := range inputs {
		targets, err := s.resolver.Resolve(ctx, in, force)
		if err != nil {
			out = append(out, PlannedJob{
				Job: model.ConversionJob{ID: uuid.NewString(), InputPath: in},
				Err: jobErr(ResolutionFailure, in, err),
			})
			continue
		}
		for _, t := range targets {
			out = append(out, PlannedJob{Job: model.ConversionJob{
				ID:           uuid.NewString(),
				InputPath:    t.InputPath,
				ResolvedPath: t.Path,
				Format:       t.Format,
				KeepStore:    s.opts.KeepStore,
				SameFolder:   s.opts.SameFolder,
				Concurrency:  concurrency,
			}})
		}
	}
	return out
}
