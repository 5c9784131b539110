// Package repository persists dispatch outcomes for auditing.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Record is one dispatch outcome row.
type Record struct {
	ID                 uuid.UUID
	SessionID          uuid.UUID
	Destination        string
	Channel            string
	CallerID           string
	ContentTemplateSID string
	OpenChat           bool
	RouteToMe          bool
	Success            bool
	Error              string
	CreatedAt          time.Time
}

// Repository provides access to the dispatch log.
type Repository interface {
	InsertOutcome(ctx context.Context, record Record) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]Record, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// New creates a dispatch-log repository.
func New(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) InsertOutcome(ctx context.Context, record Record) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO dispatch_log (
			id, session_id, destination, channel, caller_id,
			content_template_sid, open_chat, route_to_me, success, error
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		record.ID, record.SessionID, record.Destination, record.Channel,
		record.CallerID, record.ContentTemplateSID, record.OpenChat,
		record.RouteToMe, record.Success, record.Error,
	)
	return err
}

func (r *repository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, session_id, destination, channel, caller_id,
		       content_template_sid, open_chat, route_to_me, success, error, created_at
		FROM dispatch_log
		WHERE session_id = $1
		ORDER BY created_at`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var record Record
		if err := rows.Scan(
			&record.ID, &record.SessionID, &record.Destination, &record.Channel,
			&record.CallerID, &record.ContentTemplateSID, &record.OpenChat,
			&record.RouteToMe, &record.Success, &record.Error, &record.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
