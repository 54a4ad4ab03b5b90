package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueRecibo = "jobs:recibo"
	QueueEmail  = "jobs:email"

	JobRecibo = "recibo"
	JobEmail  = "email"

	// MaxAttempts is how many times a job runs before it goes to the DLQ.
	MaxAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// ReciboJobPayload is the job envelope sent to QueueRecibo.
type ReciboJobPayload struct {
	AbonoID string `json:"abono_id"`
}

// EncolarRecibo pushes a receipt job for a committed payment.
func (d *Dispatcher) EncolarRecibo(ctx context.Context, abonoID uuid.UUID) error {
	return d.enqueue(ctx, QueueRecibo, JobRecibo, ReciboJobPayload{AbonoID: abonoID.String()})
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, JobEmail, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return push(ctx, d.rdb, queue, Job{Type: jobType, Payload: data})
}

func push(ctx context.Context, rdb *redis.Client, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// Handler runs one job. A returned error makes the job retry.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Pool consumes the job queues with a fixed number of goroutines.
type Pool struct {
	rdb      *redis.Client
	handlers map[string]Handler
	queues   map[string]string // job type → queue
}

func NewPool(rdb *redis.Client) *Pool {
	return &Pool{rdb: rdb, handlers: map[string]Handler{}, queues: map[string]string{}}
}

// Handle registers the handler of a job type read from queue.
func (p *Pool) Handle(queue, jobType string, h Handler) {
	p.handlers[jobType] = h
	p.queues[jobType] = queue
}

// Start launches numWorkers goroutines consuming every registered queue.
// Each goroutine blocks on BRPOP while idle.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	seen := map[string]bool{}
	var queues []string
	for _, q := range p.queues {
		if !seen[q] {
			seen[q] = true
			queues = append(queues, q)
		}
	}
	for i := 0; i < numWorkers; i++ {
		go p.run(ctx, i, queues)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func (p *Pool) run(ctx context.Context, id int, queues []string) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			p.finish(ctx, result[0], p.process(ctx, result[0], result[1]))
		}
	}
}

// outcome is what to do with a job after running it.
type outcome struct {
	job    Job
	retry  bool
	dead   bool
	reason string
}

func (p *Pool) process(ctx context.Context, queue, raw string) outcome {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return outcome{job: Job{Payload: json.RawMessage(raw)}, dead: true, reason: "payload ilegible"}
	}
	h, ok := p.handlers[job.Type]
	if !ok {
		log.Error().Str("queue", queue).Str("type", job.Type).Msg("no handler for job type")
		return outcome{job: job, dead: true, reason: "tipo de job desconocido"}
	}

	job.Attempts++
	if err := h(ctx, job.Payload); err != nil {
		log.Warn().Err(err).Str("type", job.Type).Int("attempt", job.Attempts).Msg("job failed")
		if job.Attempts >= MaxAttempts {
			return outcome{job: job, dead: true, reason: err.Error()}
		}
		return outcome{job: job, retry: true}
	}
	log.Info().Str("type", job.Type).Str("queue", queue).Msg("job processed")
	return outcome{job: job}
}

func (p *Pool) finish(ctx context.Context, queue string, o outcome) {
	switch {
	case o.retry:
		if err := push(ctx, p.rdb, queue, o.job); err != nil {
			log.Error().Err(err).Str("queue", queue).Msg("failed to requeue job")
		}
	case o.dead:
		SendToDLQ(ctx, p.rdb, queue, o.job, o.reason)
	}
}
