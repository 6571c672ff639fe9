// internal/archive/archive.go
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/kabo-gg/kabo/internal/room"
)

// Store archives finished rounds in Postgres. Rooms themselves live purely
// in memory; only final outcomes are written, for later inspection. A nil
// Store drops every write.
type Store struct {
	pool *pgxpool.Pool
	log  *logrus.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS round_results (
	id          BIGSERIAL PRIMARY KEY,
	room_code   TEXT        NOT NULL,
	winner_name TEXT        NOT NULL,
	scores      JSONB       NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Connect opens a pool against dsn and ensures the results table exists.
func Connect(ctx context.Context, dsn string, logger *logrus.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure round_results table: %w", err)
	}
	return &Store{pool: pool, log: logger}, nil
}

// SaveResult inserts one finished round. Best-effort: a failure is logged,
// never propagated back into game logic.
func (s *Store) SaveResult(ctx context.Context, roomCode string, res room.Result) {
	if s == nil {
		return
	}
	scores, err := json.Marshal(res.Scores)
	if err != nil {
		s.log.WithError(err).Warn("failed to marshal round scores")
		return
	}
	q := `INSERT INTO round_results (room_code, winner_name, scores) VALUES ($1, $2, $3)`
	if _, err := s.pool.Exec(ctx, q, roomCode, res.WinnerName, scores); err != nil {
		s.log.WithError(err).WithField("room", roomCode).Warn("failed to archive round result")
	}
}

// Close releases the pool.
func (s *Store) Close() {
	if s != nil {
		s.pool.Close()
	}
}
