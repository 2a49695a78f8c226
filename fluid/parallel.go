package fluid

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum row count to fan out to workers.
// Below this, running inline is faster than the channel round trips.
const parallelThreshold = 32

// workChunk is a half-open range of interior rows for one worker.
type workChunk struct {
	start, end int
	fn         func(start, end int)
}

// workerPool runs row ranges on persistent goroutines.
// A nil *workerPool runs everything on the calling goroutine.
type workerPool struct {
	numWorkers int

	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool
}

// newWorkerPool creates a pool with n workers; n <= 0 uses GOMAXPROCS.
// A single worker means no pool at all.
func newWorkerPool(n int) *workerPool {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	if n == 1 {
		return nil
	}
	return &workerPool{numWorkers: n}
}

// start launches the worker goroutines.
func (p *workerPool) start() {
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

// stop signals all workers to exit and waits for them.
func (p *workerPool) stop() {
	if p == nil || !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

func (p *workerPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			chunk.fn(chunk.start, chunk.end)
			p.doneChan <- struct{}{}
		}
	}
}

// parallelFor calls fn over [0, n) split into contiguous chunks and returns
// once every chunk is done. Each index is handled by exactly one call.
func (p *workerPool) parallelFor(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if p == nil || n < parallelThreshold {
		fn(0, n)
		return
	}
	if !p.running {
		p.start()
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers
	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		p.workChan <- workChunk{start: start, end: end, fn: fn}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
}
