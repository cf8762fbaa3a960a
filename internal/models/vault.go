package models

import (
	"time"

	"github.com/google/uuid"
)

type VaultStatus string

const (
	VaultStatusPending  VaultStatus = "pending"
	VaultStatusApproved VaultStatus = "approved"
	VaultStatusRejected VaultStatus = "rejected"
)

var VaultStatuses = []VaultStatus{
	VaultStatusPending,
	VaultStatusApproved,
	VaultStatusRejected,
}

func (s VaultStatus) Valid() bool {
	for _, status := range VaultStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// VaultRole is the approval slot a participant fills for a given vault item.
type VaultRole string

const (
	VaultRoleUploader VaultRole = "uploader"
	VaultRolePartner  VaultRole = "partner"
)

type VaultItem struct {
	ID                 uuid.UUID   `json:"id"`
	CapsuleID          uuid.UUID   `json:"capsule_id"`
	UploadedBy         uuid.UUID   `json:"uploaded_by"`
	Title              string      `json:"title"`
	PayloadRef         string      `json:"payload_ref"`
	ApprovedByUploader bool        `json:"approved_by_uploader"`
	ApprovedByPartner  bool        `json:"approved_by_partner"`
	Status             VaultStatus `json:"status"`
	RejectedBy         *uuid.UUID  `json:"rejected_by,omitempty"`
	ApprovedAt         *time.Time  `json:"approved_at,omitempty"`
	RejectedAt         *time.Time  `json:"rejected_at,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

func (v *VaultItem) RoleOf(userID uuid.UUID) VaultRole {
	if v.UploadedBy == userID {
		return VaultRoleUploader
	}
	return VaultRolePartner
}
