//file: internal/bridge/pool.go
package bridge

import "sync"

// relayJob is one forwarded message waiting to be published on the far
// side of the bridge.
type relayJob struct {
	publish func() error
	onError func(error)
}

// dispatchPool runs relay publishes on a fixed set of worker goroutines
// reading from a bounded queue, the same Workers/QueueSize shape the
// rest of this codebase's config already exposes for sizing concurrent
// work. Forwarding off the broker client's own callback goroutine keeps
// a slow publish on one leg from blocking delivery of the next inbound
// message on the other.
type dispatchPool struct {
	jobs chan relayJob
	wg   sync.WaitGroup
}

func newDispatchPool(workers, queueSize int) *dispatchPool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}

	p := &dispatchPool{jobs: make(chan relayJob, queueSize)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *dispatchPool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		if err := job.publish(); err != nil && job.onError != nil {
			job.onError(err)
		}
	}
}

// submit enqueues a job, blocking if the queue is full.
func (p *dispatchPool) submit(job relayJob) {
	p.jobs <- job
}

// close stops accepting new jobs and waits for in-flight ones to drain.
func (p *dispatchPool) close() {
	close(p.jobs)
	p.wg.Wait()
}
