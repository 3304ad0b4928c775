// File: backend/internal/urlchecker/scheduler.go
package urlchecker

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/statusflowhq/statusflow/backend/internal/config"
	"github.com/statusflowhq/statusflow/backend/internal/monitoring"
)

const (
	smallRunMax     = 100
	mediumRunMax    = 500
	smallBatchSize  = 5
	mediumBatchSize = 10
	largeBatchSize  = 15

	slowBatchThreshold = 10 * time.Second
	shortBatchPause    = 100 * time.Millisecond
	longBatchPause     = 500 * time.Millisecond
)

// Options carries the optional collaborators of a Scheduler.
type Options struct {
	Limiter *rate.Limiter
	Metrics *monitoring.Metrics
}

// Scheduler runs a set of URLs through a Prober in fixed-size batches.
// Batches execute sequentially; URLs within a batch are probed concurrently.
type Scheduler struct {
	prober  *Prober
	limiter *rate.Limiter
	metrics *monitoring.Metrics
}

func NewScheduler(prober *Prober, opts Options) *Scheduler {
	return &Scheduler{prober: prober, limiter: opts.Limiter, metrics: opts.Metrics}
}

// NewLimiter builds a rate limiter from checker settings. A non-positive RPS
// disables limiting and yields nil, which Scheduler treats as unlimited.
func NewLimiter(cfg config.CheckerConfig) *rate.Limiter {
	if cfg.RateLimitRPS <= 0 {
		return nil
	}
	burst := cfg.RateLimitBurst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)
}

// Run checks every URL and returns results in input order. onProgress, when
// non-nil, is invoked after each completed batch. Cancelling ctx stops the
// run between batches; results of an interrupted batch are dropped and the
// accumulated results are returned together with the context error.
func (s *Scheduler) Run(ctx context.Context, urls []string, onProgress ProgressFunc) ([]StatusResult, error) {
	total := len(urls)
	results := make([]StatusResult, 0, total)
	if total == 0 {
		return results, nil
	}

	size := batchSizeFor(total)
	for offset := 0; offset < total; offset += size {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		end := offset + size
		if end > total {
			end = total
		}
		batch := urls[offset:end]

		batchStart := time.Now()
		out := s.runBatch(ctx, batch)
		batchDuration := time.Since(batchStart)
		if err := ctx.Err(); err != nil {
			log.Printf("Checker: run cancelled during batch %d, dropping its results", offset/size+1)
			return results, err
		}

		results = append(results, out...)
		s.metrics.ObserveBatch(batchDuration.Seconds())
		for _, r := range out {
			s.metrics.CountResult(string(Classify(r)))
		}

		percent := progressPercent(len(results), total)
		log.Printf("Checker: Batch: %d/%d done (%d%%), batch of %d in %s", len(results), total, percent, len(batch), batchDuration)
		if onProgress != nil {
			onProgress(BatchProgress{Done: len(results), Total: total, Percent: percent, Batch: out})
		}

		if end < total {
			if err := sleepWithContext(ctx, interBatchDelay(batchDuration)); err != nil {
				return results, err
			}
		}
	}
	return results, nil
}

func (s *Scheduler) runBatch(ctx context.Context, batch []string) []StatusResult {
	out := make([]StatusResult, len(batch))
	s.metrics.AddChecksInFlight(float64(len(batch)))
	defer s.metrics.AddChecksInFlight(-float64(len(batch)))

	var wg sync.WaitGroup
	for i, rawURL := range batch {
		wg.Add(1)
		go func(idx int, rawURL string) {
			defer wg.Done()
			if s.limiter != nil {
				if err := s.limiter.Wait(ctx); err != nil {
					out[idx] = StatusResult{
						OriginalURL: rawURL,
						FinalURL:    rawURL,
						StatusText:  StatusTextUnreachable,
						Error:       "rate limiter: " + err.Error(),
						MethodUsed:  MethodFailed,
					}
					return
				}
			}
			out[idx] = s.prober.Check(ctx, rawURL)
		}(i, rawURL)
	}
	wg.Wait()
	return out
}

// batchSizeFor scales concurrency with run size so small runs stay gentle
// and large runs still finish.
func batchSizeFor(total int) int {
	switch {
	case total <= smallRunMax:
		return smallBatchSize
	case total <= mediumRunMax:
		return mediumBatchSize
	default:
		return largeBatchSize
	}
}

// interBatchDelay picks the pause before the next batch based on how long
// the previous one took.
func interBatchDelay(previous time.Duration) time.Duration {
	if previous > slowBatchThreshold {
		return longBatchPause
	}
	return shortBatchPause
}

func progressPercent(done, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
