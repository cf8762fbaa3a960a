package services

import (
	"context"
	"sync"
	"time"

	"github.com/dimitrije/capsule-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockItemRepository struct {
	mock.Mock
}

func (m *mockItemRepository) Create(ctx context.Context, item *models.GatedItem) (*models.GatedItem, error) {
	args := m.Called(ctx, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GatedItem), args.Error(1)
}

func (m *mockItemRepository) GetByID(ctx context.Context, itemID uuid.UUID) (*models.GatedItem, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GatedItem), args.Error(1)
}

func (m *mockItemRepository) ListByCapsule(ctx context.Context, capsuleID uuid.UUID, status models.ItemStatus) ([]models.GatedItem, error) {
	args := m.Called(ctx, capsuleID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GatedItem), args.Error(1)
}

func (m *mockItemRepository) SetVote(ctx context.Context, itemID uuid.UUID, side models.Side, value bool, from []models.ItemStatus) (*models.GatedItem, error) {
	args := m.Called(ctx, itemID, side, value, from)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GatedItem), args.Error(1)
}

func (m *mockItemRepository) SetPerspective(ctx context.Context, itemID uuid.UUID, side models.Side, p models.Perspective, from []models.ItemStatus) (*models.GatedItem, error) {
	args := m.Called(ctx, itemID, side, p, from)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GatedItem), args.Error(1)
}

func (m *mockItemRepository) Transition(ctx context.Context, itemID uuid.UUID, from []models.ItemStatus, to models.ItemStatus, notes *string) (*models.GatedItem, models.ItemStatus, error) {
	args := m.Called(ctx, itemID, from, to, notes)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.GatedItem), args.Get(1).(models.ItemStatus), args.Error(2)
}

func (m *mockItemRepository) ConfirmSide(ctx context.Context, itemID uuid.UUID, side models.Side) (*models.GatedItem, bool, error) {
	args := m.Called(ctx, itemID, side)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*models.GatedItem), args.Bool(1), args.Error(2)
}

type mockVaultRepository struct {
	mock.Mock
}

func (m *mockVaultRepository) Create(ctx context.Context, capsuleID, uploaderID uuid.UUID, title, payloadRef string) (*models.VaultItem, error) {
	args := m.Called(ctx, capsuleID, uploaderID, title, payloadRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VaultItem), args.Error(1)
}

func (m *mockVaultRepository) GetByID(ctx context.Context, itemID uuid.UUID) (*models.VaultItem, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VaultItem), args.Error(1)
}

func (m *mockVaultRepository) ListByCapsule(ctx context.Context, capsuleID uuid.UUID, status models.VaultStatus) ([]models.VaultItem, error) {
	args := m.Called(ctx, capsuleID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.VaultItem), args.Error(1)
}

func (m *mockVaultRepository) ApproveRole(ctx context.Context, itemID uuid.UUID, role models.VaultRole) (*models.VaultItem, bool, error) {
	args := m.Called(ctx, itemID, role)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*models.VaultItem), args.Bool(1), args.Error(2)
}

func (m *mockVaultRepository) Reject(ctx context.Context, itemID, rejectedBy uuid.UUID) (*models.VaultItem, error) {
	args := m.Called(ctx, itemID, rejectedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VaultItem), args.Error(1)
}

type mockMemberResolver struct {
	mock.Mock
}

func (m *mockMemberResolver) ResolveMember(ctx context.Context, capsuleID, userID uuid.UUID) (*models.Capsule, models.Side, error) {
	args := m.Called(ctx, capsuleID, userID)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.Capsule), args.Get(1).(models.Side), args.Error(2)
}

type fakeStorage struct {
	putKeys []string
	getKeys []string
}

func (f *fakeStorage) PresignPut(_ context.Context, key string) (string, error) {
	f.putKeys = append(f.putKeys, key)
	return "https://storage.example.com/put/" + key, nil
}

func (f *fakeStorage) PresignGet(_ context.Context, key string) (string, error) {
	f.getKeys = append(f.getKeys, key)
	return "https://storage.example.com/get/" + key, nil
}

func (f *fakeStorage) Expiry() time.Duration {
	return 15 * time.Minute
}

type publishedEvent struct {
	Topic string
	Event any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, topic string, event any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Topic: topic, Event: event})
	return p.err
}

func (p *recordingPublisher) Close() error {
	return nil
}

func (p *recordingPublisher) Published() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

// activeCapsule returns an active capsule with both sides bound.
func activeCapsule(userA, userB uuid.UUID) *models.Capsule {
	now := time.Now()
	return &models.Capsule{
		ID:         uuid.New(),
		UserA:      userA,
		UserB:      &userB,
		Status:     models.CapsuleStatusActive,
		InviteCode: "ABCD2345",
		CreatedAt:  now,
		JoinedAt:   &now,
		UpdatedAt:  now,
	}
}
