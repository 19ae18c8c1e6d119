package steer

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum context count to use parallel evaluation.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 16

// workChunk represents a range of contexts for a worker to process.
type workChunk struct {
	start, end int
}

// Pool evaluates many steering contexts concurrently using persistent
// worker goroutines. Contexts whose sources are not thread-safe are
// evaluated inline on the calling goroutine.
type Pool struct {
	numWorkers int

	ctxs      []*Context
	chunkErrs []error
	errs      []error

	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

// NewPool returns a pool sized to GOMAXPROCS.
func NewPool() *Pool {
	return &Pool{numWorkers: runtime.GOMAXPROCS(0)}
}

// startWorkers launches persistent worker goroutines.
func (p *Pool) startWorkers() {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Stop signals all workers to exit and waits for them.
func (p *Pool) Stop() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			p.evaluateChunk(chunk.start, chunk.end)
			p.doneChan <- struct{}{}
		}
	}
}

// Evaluate runs every context's pipeline and returns the per-context
// errors. Thread-safe contexts are chunked across the worker pool; the
// rest run inline afterwards. The returned slice is a pool-owned buffer,
// valid only until the next Evaluate call.
func (p *Pool) Evaluate(ctxs []*Context) []error {
	n := len(ctxs)
	if cap(p.errs) < n {
		p.errs = make([]error, n)
	}
	p.errs = p.errs[:n]
	for i := range p.errs {
		p.errs[i] = nil
	}

	// Partition: safe contexts go to the pool, the rest run inline.
	if cap(p.ctxs) < n {
		p.ctxs = make([]*Context, 0, n)
	}
	p.ctxs = p.ctxs[:0]
	var unsafeIdx []int
	safeIdx := make([]int, 0, n)
	for i, ctx := range ctxs {
		if ctx.ThreadSafe() {
			p.ctxs = append(p.ctxs, ctx)
			safeIdx = append(safeIdx, i)
		} else {
			unsafeIdx = append(unsafeIdx, i)
		}
	}

	safe := len(p.ctxs)
	if cap(p.chunkErrs) < safe {
		p.chunkErrs = make([]error, safe)
	}
	p.chunkErrs = p.chunkErrs[:safe]

	if safe < parallelThreshold {
		p.evaluateChunk(0, safe)
	} else {
		p.dispatch(safe)
	}
	for k, i := range safeIdx {
		p.errs[i] = p.chunkErrs[k]
	}

	for _, i := range unsafeIdx {
		p.errs[i] = ctxs[i].Evaluate()
	}
	return p.errs
}

// dispatch splits the safe contexts into chunks and feeds the workers.
func (p *Pool) dispatch(n int) {
	if !p.running {
		p.startWorkers()
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		p.workChan <- workChunk{start: start, end: end}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
}

// evaluateChunk processes a range of safe contexts. Workers write to
// disjoint error slots, so no locking is needed.
func (p *Pool) evaluateChunk(i0, i1 int) {
	for i := i0; i < i1; i++ {
		p.chunkErrs[i] = p.ctxs[i].Evaluate()
	}
}
