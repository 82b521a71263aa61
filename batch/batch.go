// Package batch scores many independent structure and PAE pairs in
// parallel on a bounded pool of workers.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BurntSushi/ipsae/ipsae"
	"github.com/BurntSushi/ipsae/loader"
)

// Job is one structure file and its PAE file. When Output is not empty,
// the interchange document is written there.
type Job struct {
	Structure string
	PAE       string
	Output    string
}

func (j Job) String() string {
	return fmt.Sprintf("%s:%s", j.Structure, j.PAE)
}

// Result is the outcome of a single job. Scores is only kept for jobs
// without an Output file.
type Result struct {
	Job        Job
	Scores     *ipsae.ResultSet
	ChainPairs int
	Residues   int
	Duration   time.Duration
	Err        error
}

// Options configures Run.
type Options struct {
	Cutoffs ipsae.Cutoffs

	// Workers is the maximum number of jobs scored at once. Values below
	// one mean a single worker.
	Workers int

	// Loader reads the input files. When nil, a default loader is used.
	Loader *loader.Loader

	Log *zap.Logger
}

// Run scores every job and returns one result per job, in job order.
//
// A failing job is recorded in its Result.Err and does not stop the
// others. If ctx is canceled, jobs that have not started yet fail with
// the context's error, and that error is also returned. Invalid cutoffs
// fail the whole run before any job starts.
func Run(ctx context.Context, jobs []Job, opts Options) ([]Result, error) {
	if err := opts.Cutoffs.Validate(); err != nil {
		return nil, err
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("run_id", uuid.New().String()))

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	load := opts.Loader
	if load == nil {
		load = loader.New(log)
	}
	scorer := ipsae.NewScorer(opts.Cutoffs, log)

	log.Info("starting batch",
		zap.Int("jobs", len(jobs)), zap.Int("workers", workers))
	results := make([]Result, len(jobs))
	progress := NewProgress(len(jobs), log)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		results[i].Job = job
		if err := gctx.Err(); err != nil {
			results[i].Err = err
			progress.JobDone(job, err)
			continue
		}
		i, job := i, job
		g.Go(func() error {
			results[i] = runJob(gctx, job, load, scorer)
			progress.JobDone(job, results[i].Err)
			return nil
		})
	}
	g.Wait()
	completed, failed := progress.Close()

	log.Info("batch complete",
		zap.Int("completed", completed), zap.Int("failed", failed))
	return results, ctx.Err()
}

func runJob(ctx context.Context, job Job,
	load *loader.Loader, scorer *ipsae.Scorer) (res Result) {

	start := time.Now()
	res.Job = job
	defer func() { res.Duration = time.Since(start) }()

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	ds, err := load.Load(job.Structure, job.PAE)
	if err != nil {
		res.Err = err
		return res
	}
	rs, err := scorer.Run(ds)
	if err != nil {
		res.Err = err
		return res
	}
	res.ChainPairs, res.Residues = len(rs.ChainPairs), len(rs.Residues)
	if job.Output == "" {
		res.Scores = rs
		return res
	}
	res.Err = writeResults(job.Output, rs)
	return res
}

// writeResults writes the interchange document to a temporary file next
// to fileName and renames it into place, so a failed job never leaves a
// partial document behind.
func writeResults(fileName string, rs *ipsae.ResultSet) error {
	tmp, err := os.CreateTemp(filepath.Dir(fileName),
		"."+filepath.Base(fileName)+".*")
	if err != nil {
		return fmt.Errorf("could not create '%s': %w", fileName, err)
	}
	defer os.Remove(tmp.Name())

	buf := bufio.NewWriter(tmp)
	if err := rs.WriteJSON(buf); err != nil {
		tmp.Close()
		return fmt.Errorf("could not write '%s': %w", fileName, err)
	}
	if err := buf.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("could not write '%s': %w", fileName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not write '%s': %w", fileName, err)
	}
	return os.Rename(tmp.Name(), fileName)
}
