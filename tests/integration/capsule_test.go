package integration

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/dimitrije/capsule-api/internal/events"
	"github.com/dimitrije/capsule-api/internal/models"
	"github.com/dimitrije/capsule-api/internal/services"
	"github.com/dimitrije/capsule-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapsuleService_Integration_CreateAndJoin(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	st := newStack(tdb)
	ctx := context.Background()

	userA, userB := uuid.New(), uuid.New()

	capsule, err := st.capsules.Create(ctx, userA)
	require.NoError(t, err)
	assert.Equal(t, models.CapsuleStatusPending, capsule.Status)
	assert.Len(t, capsule.InviteCode, 8)
	assert.Nil(t, capsule.UserB)

	joined, err := st.capsules.Join(ctx, strings.ToLower(capsule.InviteCode), userB)
	require.NoError(t, err)
	assert.Equal(t, capsule.ID, joined.ID)
	assert.Equal(t, models.CapsuleStatusActive, joined.Status)
	require.NotNil(t, joined.UserB)
	assert.Equal(t, userB, *joined.UserB)
	assert.NotNil(t, joined.JoinedAt)

	sideA, err := st.capsules.ResolveSide(ctx, capsule.ID, userA)
	require.NoError(t, err)
	assert.Equal(t, models.SideA, sideA)

	sideB, err := st.capsules.ResolveSide(ctx, capsule.ID, userB)
	require.NoError(t, err)
	assert.Equal(t, models.SideB, sideB)

	_, err = st.capsules.ResolveSide(ctx, capsule.ID, uuid.New())
	assert.ErrorIs(t, err, services.ErrNotAMember)

	assert.Equal(t, 1, st.publisher.Count(events.TopicCapsuleCreated))
	assert.Equal(t, 1, st.publisher.Count(events.TopicCapsuleJoined))
}

func TestCapsuleService_Integration_JoinRejections(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	st := newStack(tdb)
	ctx := context.Background()

	userA, userB := uuid.New(), uuid.New()

	capsule, err := st.capsules.Create(ctx, userA)
	require.NoError(t, err)

	_, err = st.capsules.Join(ctx, capsule.InviteCode, userA)
	assert.ErrorIs(t, err, services.ErrAlreadyMember)

	_, err = st.capsules.Join(ctx, "NOSUCHCODE", userB)
	assert.ErrorIs(t, err, services.ErrInvalidCode)

	_, err = st.capsules.Join(ctx, capsule.InviteCode, userB)
	require.NoError(t, err)

	_, err = st.capsules.Join(ctx, capsule.InviteCode, uuid.New())
	assert.ErrorIs(t, err, services.ErrAlreadyFull)

	_, err = st.capsules.Join(ctx, capsule.InviteCode, userB)
	assert.ErrorIs(t, err, services.ErrAlreadyMember)
}

func TestCapsuleService_Integration_ConcurrentJoinBindsOneSide(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	st := newStack(tdb)
	ctx := context.Background()

	const joiners = 8
	for trial := 0; trial < 10; trial++ {
		capsule, err := st.capsules.Create(ctx, uuid.New())
		require.NoError(t, err)

		var wg sync.WaitGroup
		start := make(chan struct{})
		errs := make([]error, joiners)
		ids := make([]uuid.UUID, joiners)
		for i := range joiners {
			ids[i] = uuid.New()
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				_, errs[i] = st.capsules.Join(ctx, capsule.InviteCode, ids[i])
			}()
		}
		close(start)
		wg.Wait()

		var winner uuid.UUID
		wins := 0
		for i, err := range errs {
			if err == nil {
				wins++
				winner = ids[i]
				continue
			}
			assert.ErrorIs(t, err, services.ErrAlreadyFull)
		}
		require.Equal(t, 1, wins, "trial %d", trial)

		current, err := st.capsules.GetByID(ctx, capsule.ID)
		require.NoError(t, err)
		require.NotNil(t, current.UserB)
		assert.Equal(t, winner, *current.UserB)
	}
}

func TestCapsuleService_Integration_Dissolve(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	st := newStack(tdb)
	ctx := context.Background()

	userA, userB := uuid.New(), uuid.New()
	capsule := fixtures.JoinedCapsule(t, userA, userB)
	itemID := fixtures.CreateItem(t, capsule.ID, userA, models.ItemKindPlan, models.ItemStatusPendingDecision)

	_, err := st.capsules.Dissolve(ctx, capsule.ID, uuid.New())
	assert.ErrorIs(t, err, services.ErrNotAMember)

	dissolved, err := st.capsules.Dissolve(ctx, capsule.ID, userB)
	require.NoError(t, err)
	assert.Equal(t, models.CapsuleStatusDissolved, dissolved.Status)
	assert.NotNil(t, dissolved.DissolvedAt)

	_, err = st.capsules.Dissolve(ctx, capsule.ID, userA)
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	_, err = st.gate.CreateItem(ctx, capsule.ID, userA, services.CreateItemInput{Title: "Too late"})
	assert.ErrorIs(t, err, services.ErrCapsuleNotActive)

	_, err = st.gate.Confirm(ctx, itemID, userA)
	assert.ErrorIs(t, err, services.ErrCapsuleNotActive)

	item, err := st.gate.GetItem(ctx, itemID, userA)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusPendingDecision, item.Status)

	list, err := st.capsules.ListForUser(ctx, userA)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.CapsuleStatusDissolved, list[0].Status)
}

func TestCapsuleService_Integration_ForceDissolvePending(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	st := newStack(tdb)
	ctx := context.Background()

	capsule := fixtures.CreateCapsule(t, uuid.New())

	dissolved, err := st.capsules.ForceDissolve(ctx, capsule.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CapsuleStatusDissolved, dissolved.Status)

	_, err = st.capsules.Join(ctx, capsule.InviteCode, uuid.New())
	assert.ErrorIs(t, err, services.ErrInvalidCode)
}
