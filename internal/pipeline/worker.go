package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dgallion1/docforge/internal/compiler"
)

// Worker processes a single export job.
type Worker struct {
	compiler *compiler.Compiler
	records  compiler.RecordSource
	log      *slog.Logger
}

func NewWorker(c *compiler.Compiler, records compiler.RecordSource, log *slog.Logger) *Worker {
	return &Worker{
		compiler: c,
		records:  records,
		log:      log,
	}
}

// Process loads the job's record, compiles it and stores the packaged
// document on the job. Every call builds fresh compile state.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)

	// Phase 1: load the record.
	job.SetStatus(StatusResolving, "loading record")
	rec, err := w.records.Record(ctx, job.DocID)
	if err == nil && rec == nil {
		err = compiler.ErrRecordNotFound
	}
	if err != nil {
		notFound := errors.Is(err, compiler.ErrRecordNotFound)
		if notFound {
			log.Warn("record not found")
		} else {
			log.Error("record load failed", "error", err)
		}
		job.Fail("resolving", err, notFound)
		return
	}
	if rec.ID == "" {
		cp := *rec
		cp.ID = job.DocID
		rec = &cp
	}

	// Phase 2: resolve assets, lay out and package.
	job.SetStatus(StatusCompiling, "compiling")
	out, err := w.compiler.Render(ctx, rec)
	if err != nil {
		if compiler.IsContentError(err) {
			log.Warn("content rejected", "error", err)
		} else {
			log.Error("compile failed", "error", err)
		}
		job.Fail("compiling", err, false)
		return
	}

	job.Complete(out.FileName, out.Data)
	log.Info("export complete", "file", out.FileName, "bytes", len(out.Data))
}
