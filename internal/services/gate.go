package services

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/dimitrije/capsule-api/internal/events"
	"github.com/dimitrije/capsule-api/internal/logging"
	"github.com/dimitrije/capsule-api/internal/models"
	"github.com/google/uuid"
)

// ItemRepository is the persistence surface the gate engine drives.
type ItemRepository interface {
	Create(ctx context.Context, item *models.GatedItem) (*models.GatedItem, error)
	GetByID(ctx context.Context, itemID uuid.UUID) (*models.GatedItem, error)
	ListByCapsule(ctx context.Context, capsuleID uuid.UUID, status models.ItemStatus) ([]models.GatedItem, error)
	SetVote(ctx context.Context, itemID uuid.UUID, side models.Side, value bool, from []models.ItemStatus) (*models.GatedItem, error)
	SetPerspective(ctx context.Context, itemID uuid.UUID, side models.Side, p models.Perspective, from []models.ItemStatus) (*models.GatedItem, error)
	Transition(ctx context.Context, itemID uuid.UUID, from []models.ItemStatus, to models.ItemStatus, notes *string) (*models.GatedItem, models.ItemStatus, error)
	ConfirmSide(ctx context.Context, itemID uuid.UUID, side models.Side) (*models.GatedItem, bool, error)
}

// MemberResolver maps a caller to their side within a capsule.
type MemberResolver interface {
	ResolveMember(ctx context.Context, capsuleID, userID uuid.UUID) (*models.Capsule, models.Side, error)
}

type gateOp string

const (
	opVote           gateOp = "vote"
	opMoveToResolve  gateOp = "move to resolve"
	opPerspective    gateOp = "submit perspective"
	opMoveToDecision gateOp = "move to decision"
	opConfirm        gateOp = "confirm"
	opComplete       gateOp = "complete"
	opArchive        gateOp = "archive"
)

var nonTerminalItemStatuses = []models.ItemStatus{
	models.ItemStatusPlanning,
	models.ItemStatusResolving,
	models.ItemStatusPendingDecision,
	models.ItemStatusConfirmed,
}

// lifecycles lists, per item kind, the statuses each operation may start from.
// An operation missing from a kind's table is not part of that kind's lifecycle.
var lifecycles = map[models.ItemKind]map[gateOp][]models.ItemStatus{
	models.ItemKindRelationship: {
		opVote:           {models.ItemStatusPlanning},
		opMoveToResolve:  {models.ItemStatusPlanning},
		opPerspective:    {models.ItemStatusResolving},
		opMoveToDecision: {models.ItemStatusResolving},
		opConfirm:        {models.ItemStatusPendingDecision},
		opComplete:       {models.ItemStatusConfirmed},
		opArchive:        nonTerminalItemStatuses,
	},
	models.ItemKindPlan: {
		opVote:           {models.ItemStatusPlanning},
		opMoveToDecision: {models.ItemStatusPlanning},
		opConfirm:        {models.ItemStatusPendingDecision},
		opComplete:       {models.ItemStatusConfirmed},
		opArchive:        nonTerminalItemStatuses,
	},
}

var itemTopics = map[models.ItemStatus]string{
	models.ItemStatusPlanning:        events.TopicItemCreated,
	models.ItemStatusResolving:       events.TopicItemResolving,
	models.ItemStatusPendingDecision: events.TopicItemPendingDecision,
	models.ItemStatusConfirmed:       events.TopicItemConfirmed,
	models.ItemStatusCompleted:       events.TopicItemCompleted,
	models.ItemStatusArchived:        events.TopicItemArchived,
}

func allowedFrom(kind models.ItemKind, op gateOp) []models.ItemStatus {
	return lifecycles[kind][op]
}

type CreateItemInput struct {
	Kind        models.ItemKind
	Title       string
	Description *string
}

// GateEngine runs the two-party lifecycle of gated items. It keeps no state
// between calls; all coordination happens in the item store.
type GateEngine struct {
	items     ItemRepository
	members   MemberResolver
	publisher events.Publisher
	log       logging.Logger
}

func NewGateEngine(items ItemRepository, members MemberResolver, publisher events.Publisher, log logging.Logger) *GateEngine {
	if publisher == nil {
		publisher = &events.NoopPublisher{}
	}
	return &GateEngine{
		items:     items,
		members:   members,
		publisher: publisher,
		log:       log,
	}
}

func (e *GateEngine) CreateItem(ctx context.Context, capsuleID, creatorID uuid.UUID, input CreateItemInput) (*models.GatedItem, error) {
	capsule, _, err := e.members.ResolveMember(ctx, capsuleID, creatorID)
	if err != nil {
		return nil, err
	}
	if capsule.Status != models.CapsuleStatusActive {
		return nil, ErrCapsuleNotActive
	}

	kind := input.Kind
	if kind == "" {
		kind = models.ItemKindRelationship
	}
	title := strings.TrimSpace(input.Title)
	if !kind.Valid() || title == "" {
		return nil, ErrInvalidInput
	}

	item, err := e.items.Create(ctx, &models.GatedItem{
		CapsuleID:   capsuleID,
		Kind:        kind,
		CreatedBy:   creatorID,
		Title:       title,
		Description: input.Description,
	})
	if err != nil {
		return nil, err
	}

	e.emit(ctx, item, creatorID, "")
	return item, nil
}

func (e *GateEngine) GetItem(ctx context.Context, itemID, callerID uuid.UUID) (*models.GatedItem, error) {
	item, _, _, err := e.authorize(ctx, itemID, callerID)
	return item, err
}

func (e *GateEngine) ListItems(ctx context.Context, capsuleID, callerID uuid.UUID, status models.ItemStatus) ([]models.GatedItem, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidInput
	}
	if _, _, err := e.members.ResolveMember(ctx, capsuleID, callerID); err != nil {
		return nil, err
	}
	return e.items.ListByCapsule(ctx, capsuleID, status)
}

// Vote records the caller's side vote. It never changes status.
func (e *GateEngine) Vote(ctx context.Context, itemID, callerID uuid.UUID, value bool) (*models.GatedItem, error) {
	_, side, from, err := e.prepare(ctx, itemID, callerID, opVote)
	if err != nil {
		return nil, err
	}
	return e.items.SetVote(ctx, itemID, side, value, from)
}

func (e *GateEngine) MoveToResolve(ctx context.Context, itemID, callerID uuid.UUID) (*models.GatedItem, error) {
	return e.transition(ctx, itemID, callerID, opMoveToResolve, models.ItemStatusResolving, nil)
}

// SubmitPerspective records the caller's side perspective. It never changes status.
func (e *GateEngine) SubmitPerspective(ctx context.Context, itemID, callerID uuid.UUID, p models.Perspective) (*models.GatedItem, error) {
	if p.IsEmpty() {
		return nil, ErrInvalidInput
	}
	_, side, from, err := e.prepare(ctx, itemID, callerID, opPerspective)
	if err != nil {
		return nil, err
	}
	return e.items.SetPerspective(ctx, itemID, side, p, from)
}

func (e *GateEngine) MoveToDecision(ctx context.Context, itemID, callerID uuid.UUID, notes *string) (*models.GatedItem, error) {
	return e.transition(ctx, itemID, callerID, opMoveToDecision, models.ItemStatusPendingDecision, notes)
}

// Confirm records the caller's side confirmation. The item moves to confirmed
// when the second side confirms. Confirming an already confirmed item returns
// it unchanged.
func (e *GateEngine) Confirm(ctx context.Context, itemID, callerID uuid.UUID) (*models.GatedItem, error) {
	item, capsule, side, err := e.authorize(ctx, itemID, callerID)
	if err != nil {
		return nil, err
	}
	if item.Status == models.ItemStatusConfirmed {
		return item, nil
	}
	if err := e.check(capsule, item, opConfirm); err != nil {
		return nil, err
	}

	confirmed, fired, err := e.items.ConfirmSide(ctx, itemID, side)
	if err != nil {
		if !errors.Is(err, ErrInvalidTransition) {
			return nil, err
		}
		// Lost the race to the other side's confirmation.
		current, getErr := e.items.GetByID(ctx, itemID)
		if getErr == nil && current.Status == models.ItemStatusConfirmed {
			return current, nil
		}
		return nil, err
	}

	if fired {
		e.log.Info(ctx, "item confirmed by both sides", "item_id", itemID, "capsule_id", confirmed.CapsuleID)
		e.emit(ctx, confirmed, callerID, models.ItemStatusPendingDecision)
	}
	return confirmed, nil
}

func (e *GateEngine) Complete(ctx context.Context, itemID, callerID uuid.UUID) (*models.GatedItem, error) {
	return e.transition(ctx, itemID, callerID, opComplete, models.ItemStatusCompleted, nil)
}

func (e *GateEngine) Archive(ctx context.Context, itemID, callerID uuid.UUID) (*models.GatedItem, error) {
	return e.transition(ctx, itemID, callerID, opArchive, models.ItemStatusArchived, nil)
}

func (e *GateEngine) transition(ctx context.Context, itemID, callerID uuid.UUID, op gateOp, to models.ItemStatus, notes *string) (*models.GatedItem, error) {
	_, _, from, err := e.prepare(ctx, itemID, callerID, op)
	if err != nil {
		return nil, err
	}

	moved, prior, err := e.items.Transition(ctx, itemID, from, to, notes)
	if err != nil {
		return nil, err
	}

	e.emit(ctx, moved, callerID, prior)
	return moved, nil
}

// prepare authorizes the caller and checks that op may run from the item's
// current status. The returned statuses guard the store write against a
// concurrent change.
func (e *GateEngine) prepare(ctx context.Context, itemID, callerID uuid.UUID, op gateOp) (*models.GatedItem, models.Side, []models.ItemStatus, error) {
	item, capsule, side, err := e.authorize(ctx, itemID, callerID)
	if err != nil {
		return nil, "", nil, err
	}
	if err := e.check(capsule, item, op); err != nil {
		return nil, "", nil, err
	}
	return item, side, allowedFrom(item.Kind, op), nil
}

func (e *GateEngine) authorize(ctx context.Context, itemID, callerID uuid.UUID) (*models.GatedItem, *models.Capsule, models.Side, error) {
	if callerID == uuid.Nil {
		return nil, nil, "", ErrUnauthenticated
	}

	item, err := e.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, nil, "", err
	}

	capsule, side, err := e.members.ResolveMember(ctx, item.CapsuleID, callerID)
	if err != nil {
		return nil, nil, "", err
	}
	return item, capsule, side, nil
}

func (e *GateEngine) check(capsule *models.Capsule, item *models.GatedItem, op gateOp) error {
	if capsule.Status != models.CapsuleStatusActive {
		return ErrCapsuleNotActive
	}
	if !slices.Contains(allowedFrom(item.Kind, op), item.Status) {
		return invalidTransition(string(op), item.Status)
	}
	return nil
}

func (e *GateEngine) emit(ctx context.Context, item *models.GatedItem, actorID uuid.UUID, from models.ItemStatus) {
	topic := itemTopics[item.Status]
	event := events.TransitionEvent{
		CapsuleID: item.CapsuleID,
		ItemID:    item.ID,
		ActorID:   actorID,
		From:      string(from),
		To:        string(item.Status),
		At:        time.Now().UTC(),
	}
	// Published after the store write commits, so request cancellation is ignored.
	if err := e.publisher.Publish(context.WithoutCancel(ctx), topic, event); err != nil {
		e.log.Warn(ctx, "failed to publish item event", "topic", topic, "item_id", item.ID, "error", err)
	}
}
