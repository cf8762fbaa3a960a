package models

import "github.com/google/uuid"

// Counts is a read-only projection of item statuses within a capsule.
type Counts struct {
	CapsuleID uuid.UUID           `json:"capsule_id"`
	Items     map[ItemStatus]int  `json:"items"`
	Vault     map[VaultStatus]int `json:"vault"`
}

func NewCounts(capsuleID uuid.UUID) *Counts {
	counts := &Counts{
		CapsuleID: capsuleID,
		Items:     make(map[ItemStatus]int, len(ItemStatuses)),
		Vault:     make(map[VaultStatus]int, len(VaultStatuses)),
	}
	for _, s := range ItemStatuses {
		counts.Items[s] = 0
	}
	for _, s := range VaultStatuses {
		counts.Vault[s] = 0
	}
	return counts
}
