package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dimitrije/capsule-api/internal/events"
	"github.com/dimitrije/capsule-api/internal/logging"
	"github.com/dimitrije/capsule-api/internal/models"
	"github.com/dimitrije/capsule-api/internal/storage"
	"github.com/google/uuid"
)

type VaultRepository interface {
	Create(ctx context.Context, capsuleID, uploaderID uuid.UUID, title, payloadRef string) (*models.VaultItem, error)
	GetByID(ctx context.Context, itemID uuid.UUID) (*models.VaultItem, error)
	ListByCapsule(ctx context.Context, capsuleID uuid.UUID, status models.VaultStatus) ([]models.VaultItem, error)
	ApproveRole(ctx context.Context, itemID uuid.UUID, role models.VaultRole) (*models.VaultItem, bool, error)
	Reject(ctx context.Context, itemID, rejectedBy uuid.UUID) (*models.VaultItem, error)
}

// PayloadStorage issues short-lived URLs for vault payloads. Payload bytes
// never pass through this service.
type PayloadStorage interface {
	PresignPut(ctx context.Context, key string) (string, error)
	PresignGet(ctx context.Context, key string) (string, error)
	Expiry() time.Duration
}

type UploadInput struct {
	Title      string
	PayloadRef string
}

type PresignedURL struct {
	Key       string
	URL       string
	ExpiresAt time.Time
}

// VaultService runs the upload/approval gate for vault items. An item becomes
// approved only once both the uploader and the partner have approved it.
type VaultService struct {
	items     VaultRepository
	members   MemberResolver
	storage   PayloadStorage
	publisher events.Publisher
	log       logging.Logger
}

// NewVaultService creates the service. payloads may be nil, in which case
// payload references are stored as given and URL issuing is disabled.
func NewVaultService(items VaultRepository, members MemberResolver, payloads PayloadStorage, publisher events.Publisher, log logging.Logger) *VaultService {
	if publisher == nil {
		publisher = &events.NoopPublisher{}
	}
	return &VaultService{
		items:     items,
		members:   members,
		storage:   payloads,
		publisher: publisher,
		log:       log,
	}
}

func (s *VaultService) Upload(ctx context.Context, capsuleID, uploaderID uuid.UUID, input UploadInput) (*models.VaultItem, error) {
	if _, err := s.activeMember(ctx, capsuleID, uploaderID); err != nil {
		return nil, err
	}

	ref := strings.TrimSpace(input.PayloadRef)
	if ref == "" {
		return nil, ErrInvalidInput
	}
	if s.storage != nil && !storage.BelongsTo(ref, capsuleID) {
		return nil, ErrInvalidInput
	}

	item, err := s.items.Create(ctx, capsuleID, uploaderID, strings.TrimSpace(input.Title), ref)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, events.TopicVaultUploaded, item, uploaderID, "")
	return item, nil
}

// UploadURL reserves a payload key under the capsule and returns a presigned
// PUT URL for it.
func (s *VaultService) UploadURL(ctx context.Context, capsuleID, callerID uuid.UUID) (*PresignedURL, error) {
	if s.storage == nil {
		return nil, ErrStorageNotConfigured
	}
	if _, err := s.activeMember(ctx, capsuleID, callerID); err != nil {
		return nil, err
	}

	key := storage.PayloadKey(capsuleID)
	url, err := s.storage.PresignPut(ctx, key)
	if err != nil {
		return nil, err
	}
	return &PresignedURL{Key: key, URL: url, ExpiresAt: time.Now().Add(s.storage.Expiry())}, nil
}

func (s *VaultService) Get(ctx context.Context, itemID, callerID uuid.UUID) (*models.VaultItem, error) {
	item, _, err := s.authorize(ctx, itemID, callerID)
	return item, err
}

func (s *VaultService) List(ctx context.Context, capsuleID, callerID uuid.UUID, status models.VaultStatus) ([]models.VaultItem, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidInput
	}
	if _, _, err := s.members.ResolveMember(ctx, capsuleID, callerID); err != nil {
		return nil, err
	}
	return s.items.ListByCapsule(ctx, capsuleID, status)
}

// Approve records the caller's approval. Approving an already approved item
// returns it unchanged.
func (s *VaultService) Approve(ctx context.Context, itemID, callerID uuid.UUID) (*models.VaultItem, error) {
	item, capsule, err := s.authorize(ctx, itemID, callerID)
	if err != nil {
		return nil, err
	}
	if item.Status == models.VaultStatusApproved {
		return item, nil
	}
	if err := s.checkPending(capsule, item, "approve"); err != nil {
		return nil, err
	}

	approved, fired, err := s.items.ApproveRole(ctx, itemID, item.RoleOf(callerID))
	if err != nil {
		if !errors.Is(err, ErrInvalidTransition) {
			return nil, err
		}
		current, getErr := s.items.GetByID(ctx, itemID)
		if getErr == nil && current.Status == models.VaultStatusApproved {
			return current, nil
		}
		return nil, err
	}

	if fired {
		s.log.Info(ctx, "vault item approved by both sides", "item_id", itemID, "capsule_id", approved.CapsuleID)
		s.emit(ctx, events.TopicVaultApproved, approved, callerID, models.VaultStatusPending)
	}
	return approved, nil
}

// Reject is single-sided: either participant may reject a pending item.
func (s *VaultService) Reject(ctx context.Context, itemID, callerID uuid.UUID) (*models.VaultItem, error) {
	item, capsule, err := s.authorize(ctx, itemID, callerID)
	if err != nil {
		return nil, err
	}
	if err := s.checkPending(capsule, item, "reject"); err != nil {
		return nil, err
	}

	rejected, err := s.items.Reject(ctx, itemID, callerID)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, events.TopicVaultRejected, rejected, callerID, models.VaultStatusPending)
	return rejected, nil
}

// DownloadURL returns a presigned GET URL for an approved item's payload.
func (s *VaultService) DownloadURL(ctx context.Context, itemID, callerID uuid.UUID) (*PresignedURL, error) {
	if s.storage == nil {
		return nil, ErrStorageNotConfigured
	}

	item, _, err := s.authorize(ctx, itemID, callerID)
	if err != nil {
		return nil, err
	}
	if item.Status != models.VaultStatusApproved {
		return nil, ErrNotApproved
	}

	url, err := s.storage.PresignGet(ctx, item.PayloadRef)
	if err != nil {
		return nil, err
	}
	return &PresignedURL{Key: item.PayloadRef, URL: url, ExpiresAt: time.Now().Add(s.storage.Expiry())}, nil
}

func (s *VaultService) activeMember(ctx context.Context, capsuleID, userID uuid.UUID) (*models.Capsule, error) {
	capsule, _, err := s.members.ResolveMember(ctx, capsuleID, userID)
	if err != nil {
		return nil, err
	}
	if capsule.Status != models.CapsuleStatusActive {
		return nil, ErrCapsuleNotActive
	}
	return capsule, nil
}

func (s *VaultService) authorize(ctx context.Context, itemID, callerID uuid.UUID) (*models.VaultItem, *models.Capsule, error) {
	if callerID == uuid.Nil {
		return nil, nil, ErrUnauthenticated
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}

	capsule, _, err := s.members.ResolveMember(ctx, item.CapsuleID, callerID)
	if err != nil {
		return nil, nil, err
	}
	return item, capsule, nil
}

func (s *VaultService) checkPending(capsule *models.Capsule, item *models.VaultItem, op string) error {
	if capsule.Status != models.CapsuleStatusActive {
		return ErrCapsuleNotActive
	}
	if item.Status != models.VaultStatusPending {
		return invalidTransition(op, item.Status)
	}
	return nil
}

func (s *VaultService) emit(ctx context.Context, topic string, item *models.VaultItem, actorID uuid.UUID, from models.VaultStatus) {
	event := events.TransitionEvent{
		CapsuleID: item.CapsuleID,
		ItemID:    item.ID,
		ActorID:   actorID,
		From:      string(from),
		To:        string(item.Status),
		At:        time.Now().UTC(),
	}
	// The row is already committed; a departed client must not drop the event.
	if err := s.publisher.Publish(context.WithoutCancel(ctx), topic, event); err != nil {
		s.log.Warn(ctx, "failed to publish vault event", "topic", topic, "item_id", item.ID, "error", err)
	}
}
