package queue

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Job identifies one submission pipeline run. It is created after the
// submission row is durable and carries everything the pipeline needs without
// re-reading the upload request.
type Job struct {
	SubmissionID uint `json:"submission_id"`
	HackathonID  uint `json:"hackathon_id"`
	StudentID    uint `json:"student_id"`
	// StagingPath is local to the accepting instance; workers consuming the
	// job must share its staging volume.
	StagingPath   string `json:"staging_path"`
	MediaType     string `json:"media_type"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// Handler processes one job to completion. The context it receives is
// detached from the originating request; a client disconnect never cancels a
// running pipeline.
type Handler func(ctx context.Context, job Job)

// Queue hands pipeline jobs off for asynchronous processing.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Close()
}

// InProcess runs each job on its own goroutine. It is the fallback when no
// NATS server is configured and the default in tests.
type InProcess struct {
	handler Handler
	logger  zerolog.Logger
	wg      sync.WaitGroup
}

// NewInProcess constructs the in-process queue.
func NewInProcess(handler Handler, logger zerolog.Logger) *InProcess {
	return &InProcess{
		handler: handler,
		logger:  logger.With().Str("component", "queue").Logger(),
	}
}

func (q *InProcess) Enqueue(_ context.Context, job Job) error {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.handler(context.Background(), job)
	}()

	return nil
}

// Close waits for in-flight jobs to finish.
func (q *InProcess) Close() {
	q.wg.Wait()
}
