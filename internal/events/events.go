package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	TopicCapsuleCreated   = "capsule.created"
	TopicCapsuleJoined    = "capsule.joined"
	TopicCapsuleDissolved = "capsule.dissolved"

	TopicItemCreated         = "capsule.item.created"
	TopicItemResolving       = "capsule.item.resolving"
	TopicItemPendingDecision = "capsule.item.pending_decision"
	TopicItemConfirmed       = "capsule.item.confirmed"
	TopicItemCompleted       = "capsule.item.completed"
	TopicItemArchived        = "capsule.item.archived"

	TopicVaultUploaded = "capsule.vault.uploaded"
	TopicVaultApproved = "capsule.vault.approved"
	TopicVaultRejected = "capsule.vault.rejected"
)

// CapsuleEvent is emitted for capsule lifecycle changes.
type CapsuleEvent struct {
	CapsuleID uuid.UUID `json:"capsule_id"`
	ActorID   uuid.UUID `json:"actor_id"`
	Status    string    `json:"status"`
	At        time.Time `json:"at"`
}

// TransitionEvent is emitted exactly once per fired status transition of a
// gated or vault item.
type TransitionEvent struct {
	CapsuleID uuid.UUID `json:"capsule_id"`
	ItemID    uuid.UUID `json:"item_id"`
	ActorID   uuid.UUID `json:"actor_id"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to"`
	At        time.Time `json:"at"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
