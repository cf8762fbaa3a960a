package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dimitrije/capsule-api/internal/database"
	"github.com/dimitrije/capsule-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const vaultColumns = `id, capsule_id, uploaded_by, title, payload_ref,
	approved_by_uploader, approved_by_partner, status, rejected_by,
	approved_at, rejected_at, created_at, updated_at`

type VaultStore struct {
	db *database.DB
}

func NewVaultStore(db *database.DB) *VaultStore {
	return &VaultStore{db: db}
}

func scanVaultItem(row pgx.Row) (*models.VaultItem, error) {
	var item models.VaultItem
	var status string
	err := row.Scan(
		&item.ID, &item.CapsuleID, &item.UploadedBy, &item.Title, &item.PayloadRef,
		&item.ApprovedByUploader, &item.ApprovedByPartner, &status, &item.RejectedBy,
		&item.ApprovedAt, &item.RejectedAt, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Status = models.VaultStatus(status)
	return &item, nil
}

func (s *VaultStore) Create(ctx context.Context, capsuleID, uploaderID uuid.UUID, title, payloadRef string) (*models.VaultItem, error) {
	item, err := scanVaultItem(s.db.Pool.QueryRow(ctx, `
		INSERT INTO vault_items (capsule_id, uploaded_by, title, payload_ref, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+vaultColumns,
		capsuleID, uploaderID, title, payloadRef, string(models.VaultStatusPending)))
	if err != nil {
		return nil, fmt.Errorf("failed to create vault item: %w", err)
	}
	return item, nil
}

func (s *VaultStore) GetByID(ctx context.Context, itemID uuid.UUID) (*models.VaultItem, error) {
	item, err := scanVaultItem(s.db.Pool.QueryRow(ctx, `
		SELECT `+vaultColumns+` FROM vault_items WHERE id = $1
	`, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVaultItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (s *VaultStore) ListByCapsule(ctx context.Context, capsuleID uuid.UUID, status models.VaultStatus) ([]models.VaultItem, error) {
	query := `SELECT ` + vaultColumns + ` FROM vault_items WHERE capsule_id = $1`
	args := []any{capsuleID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.VaultItem{}
	for rows.Next() {
		item, err := scanVaultItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// ApproveRole sets role's approval flag and moves the item to approved in the
// same statement once both flags hold. It has the same exactly-once property
// as ItemStore.ConfirmSide.
func (s *VaultStore) ApproveRole(ctx context.Context, itemID uuid.UUID, role models.VaultRole) (*models.VaultItem, bool, error) {
	if role != models.VaultRoleUploader && role != models.VaultRolePartner {
		return nil, false, ErrInvalidInput
	}

	item, err := scanVaultItem(s.db.Pool.QueryRow(ctx, `
		UPDATE vault_items
		SET approved_by_uploader = approved_by_uploader OR $2::text = 'uploader',
			approved_by_partner = approved_by_partner OR $2::text = 'partner',
			status = CASE
				WHEN (approved_by_uploader OR $2::text = 'uploader') AND (approved_by_partner OR $2::text = 'partner') THEN 'approved'
				ELSE status
			END,
			approved_at = CASE
				WHEN (approved_by_uploader OR $2::text = 'uploader') AND (approved_by_partner OR $2::text = 'partner') THEN NOW()
				ELSE approved_at
			END,
			updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+vaultColumns,
		itemID, string(role)))
	if err != nil {
		return nil, false, s.classify(ctx, itemID, "approve", err)
	}
	return item, item.Status == models.VaultStatusApproved, nil
}

func (s *VaultStore) Reject(ctx context.Context, itemID, rejectedBy uuid.UUID) (*models.VaultItem, error) {
	item, err := scanVaultItem(s.db.Pool.QueryRow(ctx, `
		UPDATE vault_items
		SET status = 'rejected', rejected_by = $2, rejected_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+vaultColumns,
		itemID, rejectedBy))
	if err != nil {
		return nil, s.classify(ctx, itemID, "reject", err)
	}
	return item, nil
}

func (s *VaultStore) classify(ctx context.Context, itemID uuid.UUID, op string, err error) error {
	if !errors.Is(err, pgx.ErrNoRows) {
		return translatePgError(err)
	}

	var status string
	err = s.db.Pool.QueryRow(ctx, `SELECT status FROM vault_items WHERE id = $1`, itemID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrVaultItemNotFound
		}
		return err
	}
	return invalidTransition(op, status)
}
