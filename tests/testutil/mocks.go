package testutil

import (
	"context"

	"github.com/dimitrije/capsule-api/internal/models"
	"github.com/dimitrije/capsule-api/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCapsuleService mocks the CapsuleService
type MockCapsuleService struct {
	mock.Mock
}

func (m *MockCapsuleService) Create(ctx context.Context, initiatorID uuid.UUID) (*models.Capsule, error) {
	args := m.Called(ctx, initiatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Capsule), args.Error(1)
}

func (m *MockCapsuleService) Join(ctx context.Context, code string, joinerID uuid.UUID) (*models.Capsule, error) {
	args := m.Called(ctx, code, joinerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Capsule), args.Error(1)
}

func (m *MockCapsuleService) Get(ctx context.Context, capsuleID, callerID uuid.UUID) (*models.Capsule, error) {
	args := m.Called(ctx, capsuleID, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Capsule), args.Error(1)
}

func (m *MockCapsuleService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Capsule, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Capsule), args.Error(1)
}

func (m *MockCapsuleService) Dissolve(ctx context.Context, capsuleID, callerID uuid.UUID) (*models.Capsule, error) {
	args := m.Called(ctx, capsuleID, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Capsule), args.Error(1)
}

// MockGateEngine mocks the GateEngine
type MockGateEngine struct {
	mock.Mock
}

func (m *MockGateEngine) item(args mock.Arguments) (*models.GatedItem, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GatedItem), args.Error(1)
}

func (m *MockGateEngine) CreateItem(ctx context.Context, capsuleID, creatorID uuid.UUID, input services.CreateItemInput) (*models.GatedItem, error) {
	return m.item(m.Called(ctx, capsuleID, creatorID, input))
}

func (m *MockGateEngine) GetItem(ctx context.Context, itemID, callerID uuid.UUID) (*models.GatedItem, error) {
	return m.item(m.Called(ctx, itemID, callerID))
}

func (m *MockGateEngine) ListItems(ctx context.Context, capsuleID, callerID uuid.UUID, status models.ItemStatus) ([]models.GatedItem, error) {
	args := m.Called(ctx, capsuleID, callerID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GatedItem), args.Error(1)
}

func (m *MockGateEngine) Vote(ctx context.Context, itemID, callerID uuid.UUID, value bool) (*models.GatedItem, error) {
	return m.item(m.Called(ctx, itemID, callerID, value))
}

func (m *MockGateEngine) MoveToResolve(ctx context.Context, itemID, callerID uuid.UUID) (*models.GatedItem, error) {
	return m.item(m.Called(ctx, itemID, callerID))
}

func (m *MockGateEngine) SubmitPerspective(ctx context.Context, itemID, callerID uuid.UUID, p models.Perspective) (*models.GatedItem, error) {
	return m.item(m.Called(ctx, itemID, callerID, p))
}

func (m *MockGateEngine) MoveToDecision(ctx context.Context, itemID, callerID uuid.UUID, notes *string) (*models.GatedItem, error) {
	return m.item(m.Called(ctx, itemID, callerID, notes))
}

func (m *MockGateEngine) Confirm(ctx context.Context, itemID, callerID uuid.UUID) (*models.GatedItem, error) {
	return m.item(m.Called(ctx, itemID, callerID))
}

func (m *MockGateEngine) Complete(ctx context.Context, itemID, callerID uuid.UUID) (*models.GatedItem, error) {
	return m.item(m.Called(ctx, itemID, callerID))
}

func (m *MockGateEngine) Archive(ctx context.Context, itemID, callerID uuid.UUID) (*models.GatedItem, error) {
	return m.item(m.Called(ctx, itemID, callerID))
}

// MockVaultService mocks the VaultService
type MockVaultService struct {
	mock.Mock
}

func (m *MockVaultService) vaultItem(args mock.Arguments) (*models.VaultItem, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VaultItem), args.Error(1)
}

func (m *MockVaultService) presigned(args mock.Arguments) (*services.PresignedURL, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PresignedURL), args.Error(1)
}

func (m *MockVaultService) Upload(ctx context.Context, capsuleID, uploaderID uuid.UUID, input services.UploadInput) (*models.VaultItem, error) {
	return m.vaultItem(m.Called(ctx, capsuleID, uploaderID, input))
}

func (m *MockVaultService) UploadURL(ctx context.Context, capsuleID, callerID uuid.UUID) (*services.PresignedURL, error) {
	return m.presigned(m.Called(ctx, capsuleID, callerID))
}

func (m *MockVaultService) Get(ctx context.Context, itemID, callerID uuid.UUID) (*models.VaultItem, error) {
	return m.vaultItem(m.Called(ctx, itemID, callerID))
}

func (m *MockVaultService) List(ctx context.Context, capsuleID, callerID uuid.UUID, status models.VaultStatus) ([]models.VaultItem, error) {
	args := m.Called(ctx, capsuleID, callerID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.VaultItem), args.Error(1)
}

func (m *MockVaultService) Approve(ctx context.Context, itemID, callerID uuid.UUID) (*models.VaultItem, error) {
	return m.vaultItem(m.Called(ctx, itemID, callerID))
}

func (m *MockVaultService) Reject(ctx context.Context, itemID, callerID uuid.UUID) (*models.VaultItem, error) {
	return m.vaultItem(m.Called(ctx, itemID, callerID))
}

func (m *MockVaultService) DownloadURL(ctx context.Context, itemID, callerID uuid.UUID) (*services.PresignedURL, error) {
	return m.presigned(m.Called(ctx, itemID, callerID))
}

// MockCountsService mocks the CountsService
type MockCountsService struct {
	mock.Mock
}

func (m *MockCountsService) Get(ctx context.Context, capsuleID, callerID uuid.UUID) (*models.Counts, error) {
	args := m.Called(ctx, capsuleID, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Counts), args.Error(1)
}

// MockEmailService mocks the EmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) IsConfigured() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockEmailService) SendCapsuleInvite(to, inviterName, code string) error {
	args := m.Called(to, inviterName, code)
	return args.Error(0)
}
