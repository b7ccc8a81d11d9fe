package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vportela/leadcrm/internal/entity"
	"github.com/vportela/leadcrm/internal/infra/queue"
)

const DefaultAssignee = "Unassigned"

// LeadUseCase owns the lead lifecycle: validated creation, all-or-nothing
// partial updates, unconditional deletion, and the advisory notifications
// each mutation triggers. Producer and Feed are optional; a nil value simply
// disables that notification path.
type LeadUseCase struct {
	Repo     entity.LeadRepositoryInterface
	Events   entity.LeadEventRepositoryInterface
	Policy   AccessPolicy
	Producer QueueProducerInterface
	Feed     *Feed
	Logger   *zap.Logger
	Now      func() time.Time
}

func NewLeadUseCase(
	repo entity.LeadRepositoryInterface,
	events entity.LeadEventRepositoryInterface,
	producer QueueProducerInterface,
	feed *Feed,
	logger *zap.Logger,
) *LeadUseCase {
	return &LeadUseCase{
		Repo:     repo,
		Events:   events,
		Producer: producer,
		Feed:     feed,
		Logger:   logger,
		Now:      time.Now,
	}
}

// List returns the rows visible to the caller: everything for an admin, the
// caller's own rows otherwise, nothing for an unauthenticated caller.
func (uc *LeadUseCase) List(ctx context.Context, auth entity.AuthContext) ([]entity.Lead, error) {
	scope, ok := uc.Policy.VisibleScope(auth)
	if !ok {
		return []entity.Lead{}, nil
	}
	return uc.Repo.List(ctx, scope)
}

func (uc *LeadUseCase) Get(ctx context.Context, auth entity.AuthContext, id string) (*entity.Lead, error) {
	lead, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !uc.Policy.CanView(auth, lead) {
		// Not distinguishable from a missing row on purpose.
		return nil, entity.ErrLeadNotFound
	}
	return lead, nil
}

func (uc *LeadUseCase) Create(ctx context.Context, auth entity.AuthContext, input CreateLeadInput) (*entity.Lead, error) {
	if !uc.Policy.CanCreate(auth) {
		return nil, &DomainError{Code: "UNAUTHENTICATED", Message: "authentication required"}
	}

	if input.Status == "" {
		input.Status = string(entity.StatusNew)
	}
	if input.AssignedTo == "" {
		input.AssignedTo = DefaultAssignee
	}

	if errs := ValidateCreateLeadInput(input); len(errs) > 0 {
		return nil, errs
	}

	now := uc.now()
	lead := &entity.Lead{
		ID:         uuid.New().String(),
		Name:       input.Name,
		Email:      input.Email,
		Phone:      input.Phone,
		Status:     entity.LeadStatus(input.Status),
		AssignedTo: input.AssignedTo,
		// Owner is always the caller, regardless of anything the client sent.
		OwnerID:   auth.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	txn := NewTransaction()
	txn.AddOperation("create_lead", func(ctx context.Context) error {
		return uc.Repo.Create(ctx, lead)
	})
	txn.AddCompensation("delete_lead", func(ctx context.Context) error {
		return uc.Repo.Delete(ctx, lead.ID)
	})
	txn.AddOperation("record_event", func(ctx context.Context) error {
		return uc.Events.Record(ctx, &entity.LeadEvent{
			ID:        uuid.New().String(),
			LeadID:    lead.ID,
			Event:     "created",
			NewStatus: lead.Status,
			ActorID:   auth.UserID,
			CreatedAt: now,
		})
	})

	if err := txn.Execute(ctx); err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}

	uc.notify(ctx, entity.ChangeEvent{Type: entity.ChangeInsert, LeadID: lead.ID, Lead: lead})
	if lead.Status == entity.StatusWon {
		uc.dispatchConversion(ctx, lead, entity.StatusNew)
	}

	return lead, nil
}

// Update validates the patch first and merges only the provided fields.
// id, owner_id and created_at are never touched; updated_at always advances.
func (uc *LeadUseCase) Update(ctx context.Context, auth entity.AuthContext, id string, patch LeadPatch) (*entity.Lead, error) {
	existing, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !uc.Policy.CanMutate(auth, existing) {
		return nil, entity.ErrLeadNotFound
	}

	if errs := ValidateLeadPatch(patch); len(errs) > 0 {
		return nil, errs
	}

	previous := existing.Status

	updated := *existing
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.Email != nil {
		updated.Email = *patch.Email
	}
	if patch.Phone != nil {
		updated.Phone = *patch.Phone
	}
	if patch.Status != nil {
		updated.Status = entity.LeadStatus(*patch.Status)
	}
	if patch.AssignedTo != nil {
		updated.AssignedTo = *patch.AssignedTo
	}
	updated.UpdatedAt = uc.now()

	if err := uc.Repo.Update(ctx, &updated); err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}

	if uc.Events != nil {
		ev := &entity.LeadEvent{
			ID:             uuid.New().String(),
			LeadID:         updated.ID,
			Event:          "updated",
			PreviousStatus: previous,
			NewStatus:      updated.Status,
			ActorID:        auth.UserID,
			CreatedAt:      updated.UpdatedAt,
		}
		if err := uc.Events.Record(ctx, ev); err != nil && uc.Logger != nil {
			uc.Logger.Warn("lead event record failed", zap.String("lead_id", updated.ID), zap.Error(err))
		}
	}

	uc.notify(ctx, entity.ChangeEvent{Type: entity.ChangeUpdate, LeadID: updated.ID, Lead: &updated})
	if previous != entity.StatusWon && updated.Status == entity.StatusWon {
		uc.dispatchConversion(ctx, &updated, previous)
	}

	return &updated, nil
}

// Delete is an unconditional removal once the ownership check passes. No
// lifecycle hook fires beyond the change notification.
func (uc *LeadUseCase) Delete(ctx context.Context, auth entity.AuthContext, id string) error {
	existing, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !uc.Policy.CanMutate(auth, existing) {
		return entity.ErrLeadNotFound
	}

	if err := uc.Repo.Delete(ctx, id); err != nil {
		return &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}

	if uc.Events != nil {
		ev := &entity.LeadEvent{
			ID:             uuid.New().String(),
			LeadID:         id,
			Event:          "deleted",
			PreviousStatus: existing.Status,
			ActorID:        auth.UserID,
			CreatedAt:      uc.now(),
		}
		if err := uc.Events.Record(ctx, ev); err != nil && uc.Logger != nil {
			uc.Logger.Warn("lead event record failed", zap.String("lead_id", id), zap.Error(err))
		}
	}

	uc.notify(ctx, entity.ChangeEvent{Type: entity.ChangeDelete, LeadID: id})
	return nil
}

// History returns the audit trail for a lead the caller may see.
func (uc *LeadUseCase) History(ctx context.Context, auth entity.AuthContext, id string) ([]entity.LeadEvent, error) {
	if _, err := uc.Get(ctx, auth, id); err != nil {
		return nil, err
	}
	return uc.Events.ListByLead(ctx, id)
}

// notify is best-effort on every path: a failed publish never fails the
// mutation that triggered it.
func (uc *LeadUseCase) notify(ctx context.Context, ev entity.ChangeEvent) {
	if uc.Feed != nil {
		uc.Feed.Publish(ev)
	}
	if uc.Producer != nil {
		if err := uc.Producer.PublishChange(ctx, ev); err != nil && uc.Logger != nil {
			uc.Logger.Warn("change publish failed", zap.String("lead_id", ev.LeadID), zap.Error(err))
		}
	}
}

func (uc *LeadUseCase) dispatchConversion(ctx context.Context, lead *entity.Lead, previous entity.LeadStatus) {
	if uc.Producer == nil {
		return
	}
	payload := queue.ConversionPayload{
		LeadID:         lead.ID,
		Name:           lead.Name,
		Email:          lead.Email,
		Phone:          lead.Phone,
		AssignedTo:     lead.AssignedTo,
		OwnerID:        lead.OwnerID,
		PreviousStatus: string(previous),
		Origin:         "LEAD_WON",
	}
	if err := uc.Producer.PublishConversion(ctx, payload); err != nil && uc.Logger != nil {
		uc.Logger.Warn("conversion publish failed", zap.String("lead_id", lead.ID), zap.Error(err))
	}
}

func (uc *LeadUseCase) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now()
}
