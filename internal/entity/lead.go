package entity

import (
	"context"
	"errors"
	"time"
)

type LeadStatus string

const (
	StatusNew        LeadStatus = "New"
	StatusContacted  LeadStatus = "Contacted"
	StatusInProgress LeadStatus = "In Progress"
	StatusWon        LeadStatus = "Won"
	StatusLost       LeadStatus = "Lost"
)

// LeadStatuses lists every status in pipeline order. Reporting and the
// export filters iterate this, so the order matters.
var LeadStatuses = []LeadStatus{
	StatusNew,
	StatusContacted,
	StatusInProgress,
	StatusWon,
	StatusLost,
}

func (s LeadStatus) Valid() bool {
	for _, st := range LeadStatuses {
		if s == st {
			return true
		}
	}
	return false
}

type Lead struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	Status     LeadStatus `json:"status"`
	AssignedTo string     `json:"assigned_to"`
	OwnerID    string     `json:"owner_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// ErrLeadNotFound covers both "row does not exist" and "row not owned by the
// caller". The API deliberately does not distinguish the two.
var ErrLeadNotFound = errors.New("lead not found")

type LeadRepositoryInterface interface {

	// List returns leads ordered by created_at descending. An empty ownerID
	// means no ownership filter (admin scope).
	List(ctx context.Context, ownerID string) ([]Lead, error)

	FindByID(ctx context.Context, id string) (*Lead, error)

	Create(ctx context.Context, lead *Lead) error

	Update(ctx context.Context, lead *Lead) error

	Delete(ctx context.Context, id string) error
}

type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// ChangeEvent is one row-change notification. Lead is nil for deletes;
// LeadID is always set.
type ChangeEvent struct {
	Type   ChangeType `json:"type"`
	LeadID string     `json:"lead_id"`
	Lead   *Lead      `json:"lead,omitempty"`
}

// LeadEvent is an audit record of a lifecycle mutation.
type LeadEvent struct {
	ID             string     `json:"id"`
	LeadID         string     `json:"lead_id"`
	Event          string     `json:"event"` // created, updated, deleted
	PreviousStatus LeadStatus `json:"previous_status,omitempty"`
	NewStatus      LeadStatus `json:"new_status,omitempty"`
	ActorID        string     `json:"actor_id"`
	CreatedAt      time.Time  `json:"created_at"`
}

type LeadEventRepositoryInterface interface {
	Record(ctx context.Context, ev *LeadEvent) error

	ListByLead(ctx context.Context, leadID string) ([]LeadEvent, error)
}
