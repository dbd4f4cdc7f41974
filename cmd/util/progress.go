package util

// Progress reports the completion of a known number of named jobs on stderr.
// Failures are always printed. Running counts are printed only with the
// verbose flag.
type Progress struct {
	jobs chan finishedJob
	done chan struct{}
}

type finishedJob struct {
	name string
	err  error
}

func NewProgress(total int) Progress {
	p := Progress{make(chan finishedJob), make(chan struct{})}
	go func() {
		completed, errorCount := 0, 0
		for job := range p.jobs {
			if job.err == nil {
				completed++
			} else {
				errorCount++
				if FlagVerbose {
					Warnf("\r%s: %s                                    \n",
						job.name, job.err)
				} else {
					Warnf("%s: %s", job.name, job.err)
				}
			}

			ratio := 100.0 * (float64(completed+errorCount) / float64(total))
			Verbosef("\r%d of %d jobs complete (%0.2f%% done, %d errors)",
				completed+errorCount, total, ratio, errorCount)
		}
		Verbosef("\n")
		p.done <- struct{}{}
	}()
	return p
}

// JobDone records that the job called name finished. A nil err means it
// succeeded.
func (p Progress) JobDone(name string, err error) {
	p.jobs <- finishedJob{name, err}
}

// Close waits for every recorded job to be reported.
func (p Progress) Close() {
	close(p.jobs)
	<-p.done
}
