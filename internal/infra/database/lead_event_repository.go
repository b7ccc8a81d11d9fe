package database

import (
	"context"
	"database/sql"

	"github.com/vportela/leadcrm/internal/entity"
)

type LeadEventRepository struct {
	DB *sql.DB
}

func NewLeadEventRepository(db *sql.DB) *LeadEventRepository {
	return &LeadEventRepository{DB: db}
}

func (r *LeadEventRepository) Record(ctx context.Context, ev *entity.LeadEvent) error {
	query := `
		INSERT INTO lead_events (id, lead_id, event, previous_status, new_status, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.DB.ExecContext(ctx, query,
		ev.ID,
		ev.LeadID,
		ev.Event,
		string(ev.PreviousStatus),
		string(ev.NewStatus),
		ev.ActorID,
		ev.CreatedAt,
	)
	return err
}

func (r *LeadEventRepository) ListByLead(ctx context.Context, leadID string) ([]entity.LeadEvent, error) {
	query := `
		SELECT id, lead_id, event, previous_status, new_status, actor_id, created_at
		FROM lead_events
		WHERE lead_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.DB.QueryContext(ctx, query, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []entity.LeadEvent{}
	for rows.Next() {
		var ev entity.LeadEvent
		var prev, next string
		if err := rows.Scan(&ev.ID, &ev.LeadID, &ev.Event, &prev, &next, &ev.ActorID, &ev.CreatedAt); err != nil {
			return nil, err
		}
		ev.PreviousStatus = entity.LeadStatus(prev)
		ev.NewStatus = entity.LeadStatus(next)
		events = append(events, ev)
	}
	return events, rows.Err()
}
