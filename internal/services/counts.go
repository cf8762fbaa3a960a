package services

import (
	"context"

	"github.com/dimitrije/capsule-api/internal/database"
	"github.com/dimitrije/capsule-api/internal/models"
	"github.com/google/uuid"
)

// CountsService derives per-status counts from current item state. It is a
// read-only projection and never drives a transition.
type CountsService struct {
	db      *database.DB
	members MemberResolver
}

func NewCountsService(db *database.DB, members MemberResolver) *CountsService {
	return &CountsService{db: db, members: members}
}

// Get returns the counts for a capsule the caller participates in.
func (s *CountsService) Get(ctx context.Context, capsuleID, callerID uuid.UUID) (*models.Counts, error) {
	if _, _, err := s.members.ResolveMember(ctx, capsuleID, callerID); err != nil {
		return nil, err
	}
	return s.ForCapsule(ctx, capsuleID)
}

// ForCapsule returns the counts without a membership check.
func (s *CountsService) ForCapsule(ctx context.Context, capsuleID uuid.UUID) (*models.Counts, error) {
	counts := models.NewCounts(capsuleID)

	itemCounts, err := s.countByStatus(ctx, `
		SELECT status, COUNT(*) FROM gated_items WHERE capsule_id = $1 GROUP BY status
	`, capsuleID)
	if err != nil {
		return nil, err
	}
	for status, n := range itemCounts {
		counts.Items[models.ItemStatus(status)] = n
	}

	vaultCounts, err := s.countByStatus(ctx, `
		SELECT status, COUNT(*) FROM vault_items WHERE capsule_id = $1 GROUP BY status
	`, capsuleID)
	if err != nil {
		return nil, err
	}
	for status, n := range vaultCounts {
		counts.Vault[models.VaultStatus(status)] = n
	}

	return counts, nil
}

func (s *CountsService) countByStatus(ctx context.Context, query string, capsuleID uuid.UUID) (map[string]int, error) {
	rows, err := s.db.Pool.Query(ctx, query, capsuleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		result[status] = count
	}
	return result, rows.Err()
}
