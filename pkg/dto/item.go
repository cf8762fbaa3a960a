package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateItemRequest struct {
	Kind        string  `json:"kind,omitempty"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

type VoteRequest struct {
	Value *bool `json:"value"`
}

type PerspectiveRequest struct {
	Feeling    *string `json:"feeling,omitempty"`
	Need       *string `json:"need,omitempty"`
	Willing    *string `json:"willing,omitempty"`
	Compromise *string `json:"compromise,omitempty"`
}

type DecisionRequest struct {
	Notes *string `json:"notes,omitempty"`
}

type PerspectiveResponse struct {
	Feeling    *string `json:"feeling,omitempty"`
	Need       *string `json:"need,omitempty"`
	Willing    *string `json:"willing,omitempty"`
	Compromise *string `json:"compromise,omitempty"`
}

// ItemResponse mirrors the persisted per-side columns of a gated item.
type ItemResponse struct {
	ID                uuid.UUID           `json:"id"`
	CapsuleID         uuid.UUID           `json:"capsule_id"`
	Kind              string              `json:"kind"`
	CreatedBy         uuid.UUID           `json:"created_by"`
	Title             string              `json:"title"`
	Description       *string             `json:"description,omitempty"`
	Status            string              `json:"status"`
	VoteUserA         *bool               `json:"vote_user_a"`
	VoteUserB         *bool               `json:"vote_user_b"`
	ConfirmedByA      bool                `json:"confirmed_by_a"`
	ConfirmedByB      bool                `json:"confirmed_by_b"`
	PerspectiveA      PerspectiveResponse `json:"perspective_a"`
	PerspectiveB      PerspectiveResponse `json:"perspective_b"`
	DecisionNotes     *string             `json:"decision_notes,omitempty"`
	MovedToResolveAt  *time.Time          `json:"moved_to_resolve_at,omitempty"`
	MovedToDecisionAt *time.Time          `json:"moved_to_decision_at,omitempty"`
	ConfirmedAt       *time.Time          `json:"confirmed_at,omitempty"`
	CompletedAt       *time.Time          `json:"completed_at,omitempty"`
	ArchivedAt        *time.Time          `json:"archived_at,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}
