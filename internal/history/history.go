// internal/history/history.go
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultQueueName is the Redis list the action log is pushed onto.
const DefaultQueueName = "kabo_actions"

// ActionRecord holds the minimal info a downstream consumer needs to
// reconstruct what happened in a room, action by action.
type ActionRecord struct {
	RoomCode  string                 `json:"room_code"`
	ActorConn uuid.UUID              `json:"actor_conn_id"`
	Action    string                 `json:"action"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

// Publisher pushes action records onto a Redis queue. A nil Publisher is
// valid and drops every record, so callers never need to branch on whether
// history is configured.
type Publisher struct {
	rdb   *redis.Client
	queue string
	log   *logrus.Logger
}

// Connect dials Redis and verifies the connection. Returns an error rather
// than a half-working publisher if the ping fails.
func Connect(addr string, db int, queue string, logger *logrus.Logger) (*Publisher, error) {
	if queue == "" {
		queue = DefaultQueueName
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &Publisher{rdb: rdb, queue: queue, log: logger}, nil
}

// Record serializes the record and RPUSHes it. History is best-effort: a
// push failure is logged, never surfaced to game logic.
func (p *Publisher) Record(ctx context.Context, rec ActionRecord) {
	if p == nil {
		return
	}
	if rec.Timestamp == 0 {
		rec.Timestamp = time.Now().UnixMilli()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		p.log.WithError(err).Warn("failed to marshal action record")
		return
	}
	if err := p.rdb.RPush(ctx, p.queue, data).Err(); err != nil {
		p.log.WithError(err).WithField("queue", p.queue).Warn("failed to push action record")
	}
}

// Close releases the underlying client.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.rdb.Close()
}
