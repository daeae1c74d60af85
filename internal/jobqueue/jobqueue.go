// Package jobqueue implements the producer side of the durable job queue
// named out of scope at its worker mechanics (spec.md §1, §6): a
// Redis-backed list that webhook receivers push JSON-encoded jobs onto for
// downstream POS/payment submission. No consumer loop lives in this
// module — only the producer interface the webhook handlers call.
//
// Grounded on creastat-storage's session/drivers/redis.go: a thin struct
// wrapping *redis.Client, JSON-marshalled payloads, one responsibility per
// method.
package jobqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// listKey is the Redis list jobs are pushed onto (RPUSH) for FIFO
// consumption by the (out-of-scope) worker.
const listKey = "voxline:jobs"

// Job is one unit of downstream work — a post-call or POS event a worker
// will eventually bind to a POS/payment API call.
type Job struct {
	Kind      string         `json:"kind"`
	TenantID  string         `json:"tenant_id"`
	Payload   map[string]any `json:"payload"`
	EnqueuedAt time.Time     `json:"enqueued_at"`
}

// Producer enqueues durable jobs onto Redis.
type Producer struct {
	client *redis.Client
}

// NewProducer wraps an already-configured Redis client.
func NewProducer(client *redis.Client) *Producer {
	return &Producer{client: client}
}

// Enqueue JSON-encodes job and RPUSHes it onto the shared job list.
func (p *Producer) Enqueue(ctx context.Context, job Job) error {
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now()
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("jobqueue: marshal job: %w", err)
	}
	if err := p.client.RPush(ctx, listKey, data).Err(); err != nil {
		return fmt.Errorf("jobqueue: rpush: %w", err)
	}
	return nil
}
