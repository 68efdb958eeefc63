package queue

import (
	"errors"
	"log/slog"
	"sync"
)

var ErrQueueFull = errors.New("queue: job queue is full")

type Job struct {
	Name string
	Fn   func() error
	Errc chan error
}

type RequestQueueManager struct {
	JobQueue   chan Job
	MaxWorkers int
	log        *slog.Logger
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

func NewRequestQueueManager(queueSize int, maxWorkers int, log *slog.Logger) *RequestQueueManager {
	manager := &RequestQueueManager{
		JobQueue:   make(chan Job, queueSize),
		MaxWorkers: maxWorkers,
		log:        log,
	}
	manager.startWorkers()
	return manager
}

func (rqm *RequestQueueManager) startWorkers() {
	for i := 0; i < rqm.MaxWorkers; i++ {
		rqm.wg.Add(1)
		go func(workerID int) {
			defer rqm.wg.Done()
			rqm.log.Debug("worker started", "worker", workerID)
			for job := range rqm.JobQueue {
				err := job.Fn()
				if err != nil && job.Errc == nil {
					rqm.log.Warn("job failed", "worker", workerID, "job", job.Name, "error", err)
				}
				if job.Errc != nil {
					job.Errc <- err
				}
			}
			rqm.log.Debug("worker stopped", "worker", workerID)
		}(i)
	}
}

// EnqueueJob blocks until a slot is free.
func (rqm *RequestQueueManager) EnqueueJob(job Job) {
	rqm.JobQueue <- job
}

// TryEnqueue never blocks; it returns ErrQueueFull when every slot is taken.
func (rqm *RequestQueueManager) TryEnqueue(job Job) error {
	select {
	case rqm.JobQueue <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown stops accepting jobs and waits for queued ones to finish.
func (rqm *RequestQueueManager) Shutdown() {
	rqm.closeOnce.Do(func() {
		close(rqm.JobQueue)
	})
	rqm.wg.Wait()
}
