package batch

import (
	"go.uber.org/zap"
)

// Progress counts finished jobs and logs each one as it completes. It is
// safe to call JobDone from many goroutines.
type Progress struct {
	jobs chan jobDone
	done chan [2]int
}

type jobDone struct {
	job Job
	err error
}

// NewProgress starts tracking total jobs.
func NewProgress(total int, log *zap.Logger) Progress {
	if log == nil {
		log = zap.NewNop()
	}
	p := Progress{make(chan jobDone), make(chan [2]int, 1)}
	go func() {
		completed, failed := 0, 0
		for d := range p.jobs {
			if d.err == nil {
				completed++
			} else {
				failed++
				log.Warn("job failed",
					zap.String("structure", d.job.Structure),
					zap.String("pae", d.job.PAE),
					zap.Error(d.err))
			}
			ratio := 0.0
			if total > 0 {
				ratio = 100.0 * float64(completed+failed) / float64(total)
			}
			log.Debug("job finished",
				zap.Int("done", completed+failed),
				zap.Int("total", total),
				zap.Float64("percent", ratio),
				zap.Int("errors", failed))
		}
		p.done <- [2]int{completed, failed}
	}()
	return p
}

// JobDone records the outcome of job.
func (p Progress) JobDone(job Job, err error) {
	p.jobs <- jobDone{job, err}
}

// Close stops tracking and returns the number of jobs that completed and
// failed. JobDone must not be called after Close.
func (p Progress) Close() (completed, failed int) {
	close(p.jobs)
	counts := <-p.done
	return counts[0], counts[1]
}
