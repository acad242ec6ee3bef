package queue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"sync"

	"github.com/codebuildervaibhav/dreamwhisper/internal/types"
)

// ErrPoolStopped is returned by Submit after Stop.
var ErrPoolStopped = errors.New("worker pool stopped")

// Runner executes one transcription job
type Runner interface {
	Run(ctx context.Context, jobID, sourceType string, audio types.UploadedAudio) (*types.TranscriptionResult, error)
}

// WorkerPool runs transcription jobs on a fixed number of workers
type WorkerPool struct {
	jobQueue    chan *Job
	workerCount int
	runner      Runner

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(workerCount, queueSize int, runner Runner) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		jobQueue:    make(chan *Job, queueSize),
		workerCount: workerCount,
		runner:      runner,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start initializes all workers
func (wp *WorkerPool) Start() {
	log.Printf("Starting worker pool with %d workers", wp.workerCount)
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop stops accepting jobs, lets queued jobs finish and waits for workers
func (wp *WorkerPool) Stop() {
	wp.mu.Lock()
	if wp.stopped {
		wp.mu.Unlock()
		return
	}
	wp.stopped = true
	close(wp.jobQueue)
	wp.mu.Unlock()

	wp.wg.Wait()
	wp.cancel()
	log.Println("Worker pool stopped")
}

// Submit enqueues the job and waits for it to finish. If ctx ends first the
// job keeps running in the background and ctx's error is returned.
func (wp *WorkerPool) Submit(ctx context.Context, job *Job) (*types.TranscriptionResult, error) {
	if err := wp.enqueue(ctx, job); err != nil {
		return nil, err
	}

	select {
	case <-job.Done():
		if job.Error != nil {
			return nil, job.Error
		}
		return job.Result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (wp *WorkerPool) enqueue(ctx context.Context, job *Job) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.stopped {
		return ErrPoolStopped
	}

	job.Status = types.StatusQueued
	select {
	case wp.jobQueue <- job:
		log.Printf("Job %s enqueued (source: %s, file: %s)", job.ID, job.SourceType, job.Audio.Filename)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// worker processes jobs from the queue
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()
	log.Printf("Worker %d started", id)

	for job := range wp.jobQueue {
		wp.processJob(id, job)
	}
}

// processJob runs one job and always releases its waiter
func (wp *WorkerPool) processJob(workerID int, job *Job) {
	defer close(job.done)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Worker %d: PANIC processing job %s: %v\n%s",
				workerID, job.ID, r, string(debug.Stack()))
			job.Status = types.StatusFailed
			job.Error = fmt.Errorf("worker panic: %v", r)
		}
	}()

	log.Printf("Worker %d: Processing job %s", workerID, job.ID)
	job.Status = types.StatusProcessing

	result, err := wp.runner.Run(wp.ctx, job.ID, job.SourceType, job.Audio)
	if err != nil {
		job.Status = types.StatusFailed
		job.Error = err
		return
	}

	job.Result = result
	job.Status = types.StatusCompleted
	log.Printf("Worker %d: Job %s completed successfully", workerID, job.ID)
}
