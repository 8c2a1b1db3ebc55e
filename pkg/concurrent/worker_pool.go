package concurrent

import (
	"sync"
)

// CellJob is one h3 coverage cell of a layout and the hotspots inside it.
type CellJob struct {
	Layout     string
	Cell       string
	HotspotIDs []string
}

type JobI interface {
	CellJob
}

type JobFunc[T JobI, G any] func(job T) G

type WorkerPool[T JobI, G any] struct {
	numWorkers int
	jobQueue   chan T
	results    chan G
	wg         sync.WaitGroup
}

// NewWorkerPool buffers jobQueueSize jobs and results; AddJob blocks once the queue is full
// and Start has not been called.
func NewWorkerPool[T JobI, G any](numWorkers, jobQueueSize int) *WorkerPool[T, G] {
	return &WorkerPool[T, G]{
		numWorkers: numWorkers,
		jobQueue:   make(chan T, jobQueueSize),
		results:    make(chan G, jobQueueSize),
	}
}

func (wp *WorkerPool[T, G]) worker(jobFunc JobFunc[T, G]) {
	defer wp.wg.Done()
	for job := range wp.jobQueue {
		wp.results <- jobFunc(job)
	}
}

func (wp *WorkerPool[T, G]) Start(jobFunc JobFunc[T, G]) {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(jobFunc)
	}
}

// Wait blocks until every worker drained the queue, then closes the results channel.
func (wp *WorkerPool[T, G]) Wait() {
	wp.wg.Wait()
	close(wp.results)
}

func (wp *WorkerPool[T, G]) AddJob(job T) {
	wp.jobQueue <- job
}

// Close stops accepting jobs. Workers exit once the queue is empty.
func (wp *WorkerPool[T, G]) Close() {
	close(wp.jobQueue)
}

func (wp *WorkerPool[T, G]) CollectResults() chan G {
	return wp.results
}
