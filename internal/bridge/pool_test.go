//file: internal/bridge/pool_test.go
package bridge

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestDispatchPoolRunsAllJobs(t *testing.T) {
	p := newDispatchPool(4, 16)
	var n int64

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		p.submit(relayJob{
			publish: func() error {
				atomic.AddInt64(&n, 1)
				wg.Done()
				return nil
			},
		})
	}
	wg.Wait()
	p.close()

	if got := atomic.LoadInt64(&n); got != 50 {
		t.Errorf("ran %d jobs, want 50", got)
	}
}

func TestDispatchPoolInvokesOnError(t *testing.T) {
	p := newDispatchPool(1, 1)
	done := make(chan error, 1)

	p.submit(relayJob{
		publish: func() error { return errors.New("boom") },
		onError: func(err error) { done <- err },
	})

	if err := <-done; err == nil || err.Error() != "boom" {
		t.Errorf("onError got %v, want boom", err)
	}
	p.close()
}

func TestDispatchPoolDefaultsZeroSizes(t *testing.T) {
	p := newDispatchPool(0, 0)
	done := make(chan struct{})
	p.submit(relayJob{publish: func() error { close(done); return nil }})
	<-done
	p.close()
}
