package handlers

import (
	"context"

	"github.com/dimitrije/capsule-api/internal/models"
	"github.com/dimitrije/capsule-api/internal/services"
	"github.com/google/uuid"
)

// CapsuleServiceInterface defines the methods used by handlers from CapsuleService
type CapsuleServiceInterface interface {
	Create(ctx context.Context, initiatorID uuid.UUID) (*models.Capsule, error)
	Join(ctx context.Context, code string, joinerID uuid.UUID) (*models.Capsule, error)
	Get(ctx context.Context, capsuleID, callerID uuid.UUID) (*models.Capsule, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Capsule, error)
	Dissolve(ctx context.Context, capsuleID, callerID uuid.UUID) (*models.Capsule, error)
}

// GateEngineInterface defines the methods used by handlers from GateEngine
type GateEngineInterface interface {
	CreateItem(ctx context.Context, capsuleID, creatorID uuid.UUID, input services.CreateItemInput) (*models.GatedItem, error)
	GetItem(ctx context.Context, itemID, callerID uuid.UUID) (*models.GatedItem, error)
	ListItems(ctx context.Context, capsuleID, callerID uuid.UUID, status models.ItemStatus) ([]models.GatedItem, error)
	Vote(ctx context.Context, itemID, callerID uuid.UUID, value bool) (*models.GatedItem, error)
	MoveToResolve(ctx context.Context, itemID, callerID uuid.UUID) (*models.GatedItem, error)
	SubmitPerspective(ctx context.Context, itemID, callerID uuid.UUID, p models.Perspective) (*models.GatedItem, error)
	MoveToDecision(ctx context.Context, itemID, callerID uuid.UUID, notes *string) (*models.GatedItem, error)
	Confirm(ctx context.Context, itemID, callerID uuid.UUID) (*models.GatedItem, error)
	Complete(ctx context.Context, itemID, callerID uuid.UUID) (*models.GatedItem, error)
	Archive(ctx context.Context, itemID, callerID uuid.UUID) (*models.GatedItem, error)
}

// VaultServiceInterface defines the methods used by handlers from VaultService
type VaultServiceInterface interface {
	Upload(ctx context.Context, capsuleID, uploaderID uuid.UUID, input services.UploadInput) (*models.VaultItem, error)
	UploadURL(ctx context.Context, capsuleID, callerID uuid.UUID) (*services.PresignedURL, error)
	Get(ctx context.Context, itemID, callerID uuid.UUID) (*models.VaultItem, error)
	List(ctx context.Context, capsuleID, callerID uuid.UUID, status models.VaultStatus) ([]models.VaultItem, error)
	Approve(ctx context.Context, itemID, callerID uuid.UUID) (*models.VaultItem, error)
	Reject(ctx context.Context, itemID, callerID uuid.UUID) (*models.VaultItem, error)
	DownloadURL(ctx context.Context, itemID, callerID uuid.UUID) (*services.PresignedURL, error)
}

// CountsServiceInterface defines the methods used by handlers from CountsService
type CountsServiceInterface interface {
	Get(ctx context.Context, capsuleID, callerID uuid.UUID) (*models.Counts, error)
}

// EmailServiceInterface defines the methods used by handlers from EmailService
type EmailServiceInterface interface {
	IsConfigured() bool
	SendCapsuleInvite(to, inviterName, code string) error
}
