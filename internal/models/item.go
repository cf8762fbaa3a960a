package models

import (
	"time"

	"github.com/google/uuid"
)

type ItemKind string

const (
	// ItemKindPlan covers plan/decide items, which have no resolving phase.
	ItemKindPlan         ItemKind = "plan"
	ItemKindRelationship ItemKind = "relationship"
)

func (k ItemKind) Valid() bool {
	return k == ItemKindPlan || k == ItemKindRelationship
}

type ItemStatus string

const (
	ItemStatusPlanning        ItemStatus = "planning"
	ItemStatusResolving       ItemStatus = "resolving"
	ItemStatusPendingDecision ItemStatus = "pending_decision"
	ItemStatusConfirmed       ItemStatus = "confirmed"
	ItemStatusCompleted       ItemStatus = "completed"
	ItemStatusArchived        ItemStatus = "archived"
)

// ItemStatuses lists every gated item status in lifecycle order.
var ItemStatuses = []ItemStatus{
	ItemStatusPlanning,
	ItemStatusResolving,
	ItemStatusPendingDecision,
	ItemStatusConfirmed,
	ItemStatusCompleted,
	ItemStatusArchived,
}

func (s ItemStatus) Valid() bool {
	for _, status := range ItemStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func (s ItemStatus) Terminal() bool {
	return s == ItemStatusCompleted || s == ItemStatusArchived
}

// Perspective is one side's statement during conflict resolution.
type Perspective struct {
	Feeling    *string `json:"feeling,omitempty"`
	Need       *string `json:"need,omitempty"`
	Willing    *string `json:"willing,omitempty"`
	Compromise *string `json:"compromise,omitempty"`
}

func (p Perspective) IsEmpty() bool {
	return p.Feeling == nil && p.Need == nil && p.Willing == nil && p.Compromise == nil
}

// SideState holds the fields a single side may write.
type SideState struct {
	Vote        *bool       `json:"vote,omitempty"`
	Confirmed   bool        `json:"confirmed"`
	Perspective Perspective `json:"perspective"`
}

type GatedItem struct {
	ID                uuid.UUID  `json:"id"`
	CapsuleID         uuid.UUID  `json:"capsule_id"`
	Kind              ItemKind   `json:"kind"`
	CreatedBy         uuid.UUID  `json:"created_by"`
	Title             string     `json:"title"`
	Description       *string    `json:"description,omitempty"`
	Status            ItemStatus `json:"status"`
	A                 SideState  `json:"a"`
	B                 SideState  `json:"b"`
	DecisionNotes     *string    `json:"decision_notes,omitempty"`
	MovedToResolveAt  *time.Time `json:"moved_to_resolve_at,omitempty"`
	MovedToDecisionAt *time.Time `json:"moved_to_decision_at,omitempty"`
	ConfirmedAt       *time.Time `json:"confirmed_at,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	ArchivedAt        *time.Time `json:"archived_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (i *GatedItem) BothConfirmed() bool {
	return i.A.Confirmed && i.B.Confirmed
}
