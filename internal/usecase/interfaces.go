package usecase

import (
	"context"

	"github.com/vportela/leadcrm/internal/entity"
	"github.com/vportela/leadcrm/internal/infra/queue"
)

type CreateLeadInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Status     string `json:"status"`
	AssignedTo string `json:"assigned_to"`
}

// LeadPatch is a partial update. Nil fields are left untouched; id, owner_id
// and created_at are never patchable.
type LeadPatch struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	Status     *string `json:"status"`
	AssignedTo *string `json:"assigned_to"`
}

type QueueProducerInterface interface {
	PublishChange(ctx context.Context, ev entity.ChangeEvent) error
	PublishConversion(ctx context.Context, payload queue.ConversionPayload) error
}
