package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dimitrije/capsule-api/internal/database"
	"github.com/dimitrije/capsule-api/internal/events"
	"github.com/dimitrije/capsule-api/internal/idgen"
	"github.com/dimitrije/capsule-api/internal/logging"
	"github.com/dimitrije/capsule-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const maxInviteCodeAttempts = 3

const capsuleColumns = `id, user_a, user_b, status, invite_code, created_at, joined_at, dissolved_at, updated_at`

// CapsuleService is the capsule registry and the role resolver: it pairs two
// participants and answers which side a user occupies.
type CapsuleService struct {
	db         *database.DB
	codeLength int
	publisher  events.Publisher
	log        logging.Logger
}

func NewCapsuleService(db *database.DB, codeLength int, publisher events.Publisher, log logging.Logger) *CapsuleService {
	if publisher == nil {
		publisher = &events.NoopPublisher{}
	}
	return &CapsuleService{
		db:         db,
		codeLength: codeLength,
		publisher:  publisher,
		log:        log,
	}
}

func scanCapsule(row pgx.Row) (*models.Capsule, error) {
	var capsule models.Capsule
	var status string
	err := row.Scan(
		&capsule.ID, &capsule.UserA, &capsule.UserB, &status, &capsule.InviteCode,
		&capsule.CreatedAt, &capsule.JoinedAt, &capsule.DissolvedAt, &capsule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	capsule.Status = models.CapsuleStatus(status)
	return &capsule, nil
}

func (s *CapsuleService) Create(ctx context.Context, initiatorID uuid.UUID) (*models.Capsule, error) {
	if initiatorID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	for attempt := 1; attempt <= maxInviteCodeAttempts; attempt++ {
		code, err := idgen.InviteCode(s.codeLength)
		if err != nil {
			return nil, err
		}

		capsule, err := scanCapsule(s.db.Pool.QueryRow(ctx, `
			INSERT INTO capsules (user_a, invite_code, status)
			VALUES ($1, $2, $3)
			RETURNING `+capsuleColumns,
			initiatorID, code, string(models.CapsuleStatusPending)))
		if err == nil {
			s.emit(ctx, events.TopicCapsuleCreated, capsule, initiatorID)
			return capsule, nil
		}
		if isUniqueViolation(err) {
			s.log.Warn(ctx, "invite code collision, regenerating", "attempt", attempt)
			continue
		}
		return nil, fmt.Errorf("failed to create capsule: %w", err)
	}

	return nil, fmt.Errorf("failed to allocate a unique invite code after %d attempts", maxInviteCodeAttempts)
}

// Join binds joinerID as side B in a single conditional update, so two
// concurrent joiners cannot both succeed.
func (s *CapsuleService) Join(ctx context.Context, code string, joinerID uuid.UUID) (*models.Capsule, error) {
	if joinerID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	code = idgen.NormalizeCode(code)
	if code == "" {
		return nil, ErrInvalidCode
	}

	capsule, err := scanCapsule(s.db.Pool.QueryRow(ctx, `
		UPDATE capsules
		SET user_b = $2, status = 'active', joined_at = NOW(), updated_at = NOW()
		WHERE UPPER(invite_code) = $1
			AND status = 'pending'
			AND user_b IS NULL
			AND user_a <> $2
		RETURNING `+capsuleColumns,
		code, joinerID))
	if err == nil {
		s.emit(ctx, events.TopicCapsuleJoined, capsule, joinerID)
		return capsule, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, translatePgError(err)
	}

	return nil, s.classifyJoinFailure(ctx, code, joinerID)
}

func (s *CapsuleService) classifyJoinFailure(ctx context.Context, code string, joinerID uuid.UUID) error {
	var capsule models.Capsule
	var status string
	err := s.db.Pool.QueryRow(ctx, `
		SELECT user_a, user_b, status FROM capsules WHERE UPPER(invite_code) = $1
	`, code).Scan(&capsule.UserA, &capsule.UserB, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInvalidCode
		}
		return err
	}
	capsule.Status = models.CapsuleStatus(status)

	_, member := capsule.SideOf(joinerID)
	switch {
	case member:
		return ErrAlreadyMember
	case capsule.IsFull():
		return ErrAlreadyFull
	case capsule.Status != models.CapsuleStatusPending:
		return ErrInvalidCode
	default:
		// The row matched on re-read, so it changed between the two statements.
		return ErrConcurrencyConflict
	}
}

func (s *CapsuleService) GetByID(ctx context.Context, capsuleID uuid.UUID) (*models.Capsule, error) {
	capsule, err := scanCapsule(s.db.Pool.QueryRow(ctx, `
		SELECT `+capsuleColumns+` FROM capsules WHERE id = $1
	`, capsuleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCapsuleNotFound
		}
		return nil, err
	}
	return capsule, nil
}

// ResolveMember loads the capsule and the side userID occupies in it.
func (s *CapsuleService) ResolveMember(ctx context.Context, capsuleID, userID uuid.UUID) (*models.Capsule, models.Side, error) {
	if userID == uuid.Nil {
		return nil, "", ErrUnauthenticated
	}

	capsule, err := s.GetByID(ctx, capsuleID)
	if err != nil {
		return nil, "", err
	}

	side, ok := capsule.SideOf(userID)
	if !ok {
		return nil, "", ErrNotAMember
	}
	return capsule, side, nil
}

func (s *CapsuleService) ResolveSide(ctx context.Context, capsuleID, userID uuid.UUID) (models.Side, error) {
	_, side, err := s.ResolveMember(ctx, capsuleID, userID)
	return side, err
}

// Get returns the capsule if callerID is one of its participants.
func (s *CapsuleService) Get(ctx context.Context, capsuleID, callerID uuid.UUID) (*models.Capsule, error) {
	capsule, _, err := s.ResolveMember(ctx, capsuleID, callerID)
	return capsule, err
}

func (s *CapsuleService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Capsule, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+capsuleColumns+`
		FROM capsules
		WHERE user_a = $1 OR user_b = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	capsules := []models.Capsule{}
	for rows.Next() {
		capsule, err := scanCapsule(rows)
		if err != nil {
			return nil, err
		}
		capsules = append(capsules, *capsule)
	}
	return capsules, rows.Err()
}

// Dissolve soft-terminates a capsule on behalf of one of its participants.
func (s *CapsuleService) Dissolve(ctx context.Context, capsuleID, callerID uuid.UUID) (*models.Capsule, error) {
	if _, _, err := s.ResolveMember(ctx, capsuleID, callerID); err != nil {
		return nil, err
	}
	return s.dissolve(ctx, capsuleID, callerID)
}

// ForceDissolve dissolves a capsule without a membership check. Operator use only.
func (s *CapsuleService) ForceDissolve(ctx context.Context, capsuleID uuid.UUID) (*models.Capsule, error) {
	return s.dissolve(ctx, capsuleID, uuid.Nil)
}

func (s *CapsuleService) dissolve(ctx context.Context, capsuleID, actorID uuid.UUID) (*models.Capsule, error) {
	capsule, err := scanCapsule(s.db.Pool.QueryRow(ctx, `
		UPDATE capsules
		SET status = 'dissolved', dissolved_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'active')
		RETURNING `+capsuleColumns,
		capsuleID))
	if err == nil {
		s.emit(ctx, events.TopicCapsuleDissolved, capsule, actorID)
		return capsule, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, translatePgError(err)
	}

	current, err := s.GetByID(ctx, capsuleID)
	if err != nil {
		return nil, err
	}
	return nil, invalidTransition("dissolve", current.Status)
}

func (s *CapsuleService) emit(ctx context.Context, topic string, capsule *models.Capsule, actorID uuid.UUID) {
	event := events.CapsuleEvent{
		CapsuleID: capsule.ID,
		ActorID:   actorID,
		Status:    string(capsule.Status),
		At:        time.Now().UTC(),
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), topic, event); err != nil {
		s.log.Warn(ctx, "failed to publish capsule event", "topic", topic, "capsule_id", capsule.ID, "error", err)
	}
}
