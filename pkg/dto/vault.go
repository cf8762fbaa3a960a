package dto

import (
	"time"

	"github.com/google/uuid"
)

type UploadVaultItemRequest struct {
	Title      string `json:"title"`
	PayloadRef string `json:"payload_ref"`
}

type VaultItemResponse struct {
	ID                 uuid.UUID  `json:"id"`
	CapsuleID          uuid.UUID  `json:"capsule_id"`
	UploadedBy         uuid.UUID  `json:"uploaded_by"`
	Title              string     `json:"title"`
	PayloadRef         string     `json:"payload_ref"`
	ApprovedByUploader bool       `json:"approved_by_uploader"`
	ApprovedByPartner  bool       `json:"approved_by_partner"`
	Status             string     `json:"status"`
	RejectedBy         *uuid.UUID `json:"rejected_by,omitempty"`
	ApprovedAt         *time.Time `json:"approved_at,omitempty"`
	RejectedAt         *time.Time `json:"rejected_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type PresignedURLResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
