package models

import (
	"time"

	"github.com/google/uuid"
)

type CapsuleStatus string

const (
	CapsuleStatusPending   CapsuleStatus = "pending"
	CapsuleStatusActive    CapsuleStatus = "active"
	CapsuleStatusDissolved CapsuleStatus = "dissolved"
)

// Side is a participant's fixed role within a capsule. The creator is
// always A, the joiner always B.
type Side string

const (
	SideA Side = "a"
	SideB Side = "b"
)

type Capsule struct {
	ID          uuid.UUID     `json:"id"`
	UserA       uuid.UUID     `json:"user_a"`
	UserB       *uuid.UUID    `json:"user_b,omitempty"`
	Status      CapsuleStatus `json:"status"`
	InviteCode  string        `json:"invite_code"`
	CreatedAt   time.Time     `json:"created_at"`
	JoinedAt    *time.Time    `json:"joined_at,omitempty"`
	DissolvedAt *time.Time    `json:"dissolved_at,omitempty"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// SideOf reports which side userID occupies, if any.
func (c *Capsule) SideOf(userID uuid.UUID) (Side, bool) {
	if userID == uuid.Nil {
		return "", false
	}
	if c.UserA == userID {
		return SideA, true
	}
	if c.UserB != nil && *c.UserB == userID {
		return SideB, true
	}
	return "", false
}

func (c *Capsule) IsFull() bool {
	return c.UserB != nil
}
