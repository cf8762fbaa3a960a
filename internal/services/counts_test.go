package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dimitrije/capsule-api/internal/database"
	"github.com/dimitrije/capsule-api/internal/models"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupCountsService(t *testing.T) (*CountsService, pgxmock.PgxPoolIface, *mockMemberResolver) {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	members := &mockMemberResolver{}
	db := &database.DB{Pool: pool}
	return NewCountsService(db, members), pool, members
}

func TestCountsService_Get(t *testing.T) {
	svc, pool, members := setupCountsService(t)
	userA, userB := uuid.New(), uuid.New()
	capsule := activeCapsule(userA, userB)

	members.On("ResolveMember", mock.Anything, capsule.ID, userB).Return(capsule, models.SideB, nil)
	pool.ExpectQuery(`SELECT status, COUNT\(\*\) FROM gated_items WHERE capsule_id = \$1 GROUP BY status`).
		WithArgs(capsule.ID).
		WillReturnRows(pgxmock.NewRows([]string{"status", "count"}).
			AddRow("planning", 2).
			AddRow("confirmed", 1))
	pool.ExpectQuery(`SELECT status, COUNT\(\*\) FROM vault_items WHERE capsule_id = \$1 GROUP BY status`).
		WithArgs(capsule.ID).
		WillReturnRows(pgxmock.NewRows([]string{"status", "count"}).
			AddRow("approved", 3))

	counts, err := svc.Get(context.Background(), capsule.ID, userB)

	require.NoError(t, err)
	assert.Equal(t, capsule.ID, counts.CapsuleID)
	assert.Equal(t, 2, counts.Items[models.ItemStatusPlanning])
	assert.Equal(t, 1, counts.Items[models.ItemStatusConfirmed])
	assert.Equal(t, 3, counts.Vault[models.VaultStatusApproved])

	// every status is present even when nothing holds it
	assert.Len(t, counts.Items, len(models.ItemStatuses))
	assert.Len(t, counts.Vault, len(models.VaultStatuses))
	assert.Equal(t, 0, counts.Items[models.ItemStatusArchived])
	assert.Equal(t, 0, counts.Vault[models.VaultStatusRejected])

	assert.NoError(t, pool.ExpectationsWereMet())
	members.AssertExpectations(t)
}

func TestCountsService_Get_NotAMember(t *testing.T) {
	svc, pool, members := setupCountsService(t)
	capsuleID, stranger := uuid.New(), uuid.New()

	members.On("ResolveMember", mock.Anything, capsuleID, stranger).Return(nil, models.Side(""), ErrNotAMember)

	_, err := svc.Get(context.Background(), capsuleID, stranger)

	assert.ErrorIs(t, err, ErrNotAMember)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestCountsService_ForCapsule_QueryError(t *testing.T) {
	svc, pool, _ := setupCountsService(t)
	capsuleID := uuid.New()

	pool.ExpectQuery(`FROM gated_items`).
		WithArgs(capsuleID).
		WillReturnError(errors.New("connection reset"))

	_, err := svc.ForCapsule(context.Background(), capsuleID)

	assert.Error(t, err)
	assert.NoError(t, pool.ExpectationsWereMet())
}
