package dto

import (
	"time"

	"github.com/google/uuid"
)

type JoinCapsuleRequest struct {
	Code string `json:"code"`
}

type InviteEmailRequest struct {
	Email       string `json:"email"`
	InviterName string `json:"inviter_name"`
}

type CapsuleResponse struct {
	ID          uuid.UUID  `json:"id"`
	Status      string     `json:"status"`
	Side        string     `json:"side"`
	UserA       uuid.UUID  `json:"user_a"`
	UserB       *uuid.UUID `json:"user_b,omitempty"`
	InviteCode  string     `json:"invite_code,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	JoinedAt    *time.Time `json:"joined_at,omitempty"`
	DissolvedAt *time.Time `json:"dissolved_at,omitempty"`
}

type CountsResponse struct {
	CapsuleID uuid.UUID      `json:"capsule_id"`
	Items     map[string]int `json:"items"`
	Vault     map[string]int `json:"vault"`
}
