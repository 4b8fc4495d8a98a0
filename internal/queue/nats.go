package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// DefaultSubject is the NATS subject pipeline jobs travel on.
const DefaultSubject = "hackeval.submissions.process"

const workerGroup = "hackeval-pipeline"

// NATS distributes pipeline jobs across service instances. Subscribers share
// a queue group, so each job is delivered to exactly one worker. Jobs carry a
// local staging path, so every subscriber must share the staging volume with
// the instance that accepted the upload (or run on the same node).
type NATS struct {
	conn    *nats.Conn
	subject string
	handler Handler
	sub     *nats.Subscription
	wg      sync.WaitGroup
	logger  zerolog.Logger
}

// NewNATS subscribes the handler and returns the queue.
func NewNATS(conn *nats.Conn, subject string, handler Handler, logger zerolog.Logger) (*NATS, error) {
	if subject == "" {
		subject = DefaultSubject
	}

	q := &NATS{
		conn:    conn,
		subject: subject,
		handler: handler,
		logger:  logger.With().Str("component", "queue").Str("subject", subject).Logger(),
	}

	sub, err := conn.QueueSubscribe(subject, workerGroup, func(msg *nats.Msg) {
		q.dispatch(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe pipeline jobs: %w", err)
	}

	q.sub = sub
	return q, nil
}

// dispatch decodes one message and hands it to the handler on its own
// goroutine. The NATS client delivers messages to this callback serially per
// subscription; pipeline runs take minutes and must not occupy the delivery
// goroutine.
func (q *NATS) dispatch(data []byte) {
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		q.logger.Error().Err(err).Msg("discarding malformed pipeline job")
		return
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.handler(context.Background(), job)
	}()
}

func (q *NATS) Enqueue(_ context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode pipeline job: %w", err)
	}

	if err := q.conn.Publish(q.subject, data); err != nil {
		return fmt.Errorf("publish pipeline job: %w", err)
	}

	return nil
}

// Close stops consuming jobs and waits for in-flight handlers to finish.
func (q *NATS) Close() {
	if q.sub != nil {
		if err := q.sub.Unsubscribe(); err != nil {
			q.logger.Warn().Err(err).Msg("failed to unsubscribe pipeline queue")
		}
	}
	q.wg.Wait()
}
