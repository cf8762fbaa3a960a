package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/dimitrije/capsule-api/internal/database"
	"github.com/dimitrije/capsule-api/internal/models"
	"github.com/google/uuid"
)

// Fixtures inserts rows directly, bypassing the services.
type Fixtures struct {
	db      *database.DB
	counter int
}

func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateCapsule inserts a pending capsule owned by userA.
func (f *Fixtures) CreateCapsule(t *testing.T, userA uuid.UUID) *models.Capsule {
	t.Helper()
	f.counter++

	capsule := &models.Capsule{}
	var status string
	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO capsules (user_a, invite_code, status)
		VALUES ($1, $2, 'pending')
		RETURNING id, user_a, user_b, status, invite_code, created_at, joined_at, dissolved_at, updated_at
	`, userA, fmt.Sprintf("FIXT%04d", f.counter)).Scan(
		&capsule.ID, &capsule.UserA, &capsule.UserB, &status, &capsule.InviteCode,
		&capsule.CreatedAt, &capsule.JoinedAt, &capsule.DissolvedAt, &capsule.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create capsule: %v", err)
	}
	capsule.Status = models.CapsuleStatus(status)

	return capsule
}

// JoinedCapsule inserts an active capsule with both sides bound.
func (f *Fixtures) JoinedCapsule(t *testing.T, userA, userB uuid.UUID) *models.Capsule {
	t.Helper()
	capsule := f.CreateCapsule(t, userA)

	_, err := f.db.Pool.Exec(context.Background(), `
		UPDATE capsules SET user_b = $2, status = 'active', joined_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`, capsule.ID, userB)
	if err != nil {
		t.Fatalf("failed to join capsule: %v", err)
	}

	capsule.UserB = &userB
	capsule.Status = models.CapsuleStatusActive
	return capsule
}

// CreateItem inserts a gated item in the given status. Confirmed and
// completed items get both confirmation flags set.
func (f *Fixtures) CreateItem(t *testing.T, capsuleID, createdBy uuid.UUID, kind models.ItemKind, status models.ItemStatus) uuid.UUID {
	t.Helper()
	f.counter++

	confirmed := status == models.ItemStatusConfirmed || status == models.ItemStatusCompleted

	var id uuid.UUID
	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO gated_items (capsule_id, kind, created_by, title, status, confirmed_by_a, confirmed_by_b)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id
	`, capsuleID, string(kind), createdBy, fmt.Sprintf("Item %d", f.counter), string(status), confirmed).Scan(&id)
	if err != nil {
		t.Fatalf("failed to create item: %v", err)
	}

	return id
}

// CreateVaultItem inserts a pending vault item.
func (f *Fixtures) CreateVaultItem(t *testing.T, capsuleID, uploadedBy uuid.UUID) uuid.UUID {
	t.Helper()
	f.counter++

	var id uuid.UUID
	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO vault_items (capsule_id, uploaded_by, title, payload_ref, status)
		VALUES ($1, $2, $3, $4, 'pending')
		RETURNING id
	`, capsuleID, uploadedBy, fmt.Sprintf("Memory %d", f.counter),
		fmt.Sprintf("capsules/%s/vault/fixture-%d", capsuleID, f.counter)).Scan(&id)
	if err != nil {
		t.Fatalf("failed to create vault item: %v", err)
	}

	return id
}
