package crawler

import (
	"context"
	"sync"
	"time"
)

// fetchFunc scrapes one program detail page and stores the result.
type fetchFunc func(ctx context.Context) error

type fetchResult struct {
	URL string
	Err error
}

type fetchJob struct {
	url string
	fn  fetchFunc
}

// fetchPool spreads detail-page scrapes across a fixed set of workers and
// throttles them to at most rps requests per second, shared across workers.
type fetchPool struct {
	workers  int
	jobs     chan fetchJob
	throttle *time.Ticker
	wg       sync.WaitGroup
}

func newFetchPool(workers, rps int) *fetchPool {
	if workers <= 0 {
		workers = 1
	}
	p := &fetchPool{
		workers: workers,
		jobs:    make(chan fetchJob, workers*2),
	}
	if rps > 0 {
		p.throttle = time.NewTicker(time.Second / time.Duration(rps))
	}
	return p
}

// Enqueue blocks once the job buffer is full, which keeps the producer from
// racing far ahead of the portal's rate limit.
func (p *fetchPool) Enqueue(url string, fn fetchFunc) {
	p.jobs <- fetchJob{url: url, fn: fn}
}

// Close signals that no more jobs will be enqueued. The result channel from
// Start closes once the in-flight jobs drain.
func (p *fetchPool) Close() {
	close(p.jobs)
}

func (p *fetchPool) Start(ctx context.Context) <-chan fetchResult {
	out := make(chan fetchResult, p.workers*4)
	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go p.worker(ctx, out)
	}
	go func() {
		p.wg.Wait()
		if p.throttle != nil {
			p.throttle.Stop()
		}
		close(out)
	}()
	return out
}

func (p *fetchPool) worker(ctx context.Context, out chan<- fetchResult) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			if p.throttle != nil {
				select {
				case <-ctx.Done():
					return
				case <-p.throttle.C:
				}
			}
			select {
			case <-ctx.Done():
				return
			case out <- fetchResult{URL: job.url, Err: job.fn(ctx)}:
			}
		}
	}
}
