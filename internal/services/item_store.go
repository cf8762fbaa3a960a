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

const itemColumns = `id, capsule_id, kind, created_by, title, description, status,
	vote_user_a, vote_user_b, confirmed_by_a, confirmed_by_b,
	feeling_a, need_a, willing_a, compromise_a,
	feeling_b, need_b, willing_b, compromise_b,
	decision_notes, moved_to_resolve_at, moved_to_decision_at,
	confirmed_at, completed_at, archived_at, created_at, updated_at`

var (
	voteColumns = map[models.Side]string{
		models.SideA: "vote_user_a",
		models.SideB: "vote_user_b",
	}
	perspectiveColumns = map[models.Side][4]string{
		models.SideA: {"feeling_a", "need_a", "willing_a", "compromise_a"},
		models.SideB: {"feeling_b", "need_b", "willing_b", "compromise_b"},
	}
)

// ItemStore is the only writer of gated item rows. Every mutation is a single
// conditional statement guarded by the item's current status.
type ItemStore struct {
	db *database.DB
}

func NewItemStore(db *database.DB) *ItemStore {
	return &ItemStore{db: db}
}

// scanItem reads itemColumns followed by any extra destinations.
func scanItem(row pgx.Row, extra ...any) (*models.GatedItem, error) {
	var item models.GatedItem
	var kind, status string
	dest := []any{
		&item.ID, &item.CapsuleID, &kind, &item.CreatedBy, &item.Title, &item.Description, &status,
		&item.A.Vote, &item.B.Vote, &item.A.Confirmed, &item.B.Confirmed,
		&item.A.Perspective.Feeling, &item.A.Perspective.Need, &item.A.Perspective.Willing, &item.A.Perspective.Compromise,
		&item.B.Perspective.Feeling, &item.B.Perspective.Need, &item.B.Perspective.Willing, &item.B.Perspective.Compromise,
		&item.DecisionNotes, &item.MovedToResolveAt, &item.MovedToDecisionAt,
		&item.ConfirmedAt, &item.CompletedAt, &item.ArchivedAt, &item.CreatedAt, &item.UpdatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	if err != nil {
		return nil, err
	}
	item.Kind = models.ItemKind(kind)
	item.Status = models.ItemStatus(status)
	return &item, nil
}

func statusStrings(statuses []models.ItemStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func (s *ItemStore) Create(ctx context.Context, item *models.GatedItem) (*models.GatedItem, error) {
	created, err := scanItem(s.db.Pool.QueryRow(ctx, `
		INSERT INTO gated_items (capsule_id, kind, created_by, title, description, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+itemColumns,
		item.CapsuleID, string(item.Kind), item.CreatedBy, item.Title, item.Description, string(models.ItemStatusPlanning)))
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	return created, nil
}

func (s *ItemStore) GetByID(ctx context.Context, itemID uuid.UUID) (*models.GatedItem, error) {
	item, err := scanItem(s.db.Pool.QueryRow(ctx, `
		SELECT `+itemColumns+` FROM gated_items WHERE id = $1
	`, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

// ListByCapsule returns the capsule's items, newest first. An empty status
// returns every item.
func (s *ItemStore) ListByCapsule(ctx context.Context, capsuleID uuid.UUID, status models.ItemStatus) ([]models.GatedItem, error) {
	query := `SELECT ` + itemColumns + ` FROM gated_items WHERE capsule_id = $1`
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

	items := []models.GatedItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// SetVote overwrites side's vote while the item is in one of the from statuses.
func (s *ItemStore) SetVote(ctx context.Context, itemID uuid.UUID, side models.Side, value bool, from []models.ItemStatus) (*models.GatedItem, error) {
	column, ok := voteColumns[side]
	if !ok {
		return nil, ErrInvalidInput
	}

	item, err := scanItem(s.db.Pool.QueryRow(ctx, `
		UPDATE gated_items
		SET `+column+` = $2, updated_at = NOW()
		WHERE id = $1 AND status = ANY($3::text[])
		RETURNING `+itemColumns,
		itemID, value, statusStrings(from)))
	if err != nil {
		return nil, s.classify(ctx, itemID, "vote", err)
	}
	return item, nil
}

// SetPerspective replaces side's perspective as a whole; nil fields are cleared.
func (s *ItemStore) SetPerspective(ctx context.Context, itemID uuid.UUID, side models.Side, p models.Perspective, from []models.ItemStatus) (*models.GatedItem, error) {
	cols, ok := perspectiveColumns[side]
	if !ok {
		return nil, ErrInvalidInput
	}

	item, err := scanItem(s.db.Pool.QueryRow(ctx, `
		UPDATE gated_items
		SET `+cols[0]+` = $2, `+cols[1]+` = $3, `+cols[2]+` = $4, `+cols[3]+` = $5, updated_at = NOW()
		WHERE id = $1 AND status = ANY($6::text[])
		RETURNING `+itemColumns,
		itemID, p.Feeling, p.Need, p.Willing, p.Compromise, statusStrings(from)))
	if err != nil {
		return nil, s.classify(ctx, itemID, "submit perspective", err)
	}
	return item, nil
}

// Transition moves the item to status `to` if it is currently in one of the
// from statuses, stamping the matching timestamp. notes, when set, replaces
// the decision notes. The returned status is the one the row held under the
// lock taken by this statement.
func (s *ItemStore) Transition(ctx context.Context, itemID uuid.UUID, from []models.ItemStatus, to models.ItemStatus, notes *string) (*models.GatedItem, models.ItemStatus, error) {
	var prior string
	item, err := scanItem(s.db.Pool.QueryRow(ctx, `
		UPDATE gated_items
		SET status = $2::text,
			moved_to_resolve_at = CASE WHEN $2::text = 'resolving' THEN NOW() ELSE moved_to_resolve_at END,
			moved_to_decision_at = CASE WHEN $2::text = 'pending_decision' THEN NOW() ELSE moved_to_decision_at END,
			completed_at = CASE WHEN $2::text = 'completed' THEN NOW() ELSE completed_at END,
			archived_at = CASE WHEN $2::text = 'archived' THEN NOW() ELSE archived_at END,
			decision_notes = COALESCE($4::text, decision_notes),
			updated_at = NOW()
		FROM (SELECT id AS prior_id, status AS prior_status FROM gated_items WHERE id = $1 FOR UPDATE) prior
		WHERE id = prior.prior_id AND status = ANY($3::text[])
		RETURNING `+itemColumns+`, prior.prior_status`,
		itemID, string(to), statusStrings(from), notes), &prior)
	if err != nil {
		return nil, "", s.classify(ctx, itemID, "move to "+string(to), err)
	}
	return item, models.ItemStatus(prior), nil
}

// ConfirmSide records side's confirmation and, in the same statement, moves
// the item to confirmed when the opposite side has already confirmed. The
// SET expressions see the row as it was before the update, and a concurrent
// caller blocks on the row lock and re-checks the status guard against the
// committed row, so exactly one statement observes both flags and fires.
// fired reports whether this call performed the transition.
func (s *ItemStore) ConfirmSide(ctx context.Context, itemID uuid.UUID, side models.Side) (*models.GatedItem, bool, error) {
	if side != models.SideA && side != models.SideB {
		return nil, false, ErrInvalidInput
	}

	item, err := scanItem(s.db.Pool.QueryRow(ctx, `
		UPDATE gated_items
		SET confirmed_by_a = confirmed_by_a OR $2::text = 'a',
			confirmed_by_b = confirmed_by_b OR $2::text = 'b',
			status = CASE
				WHEN (confirmed_by_a OR $2::text = 'a') AND (confirmed_by_b OR $2::text = 'b') THEN 'confirmed'
				ELSE status
			END,
			confirmed_at = CASE
				WHEN (confirmed_by_a OR $2::text = 'a') AND (confirmed_by_b OR $2::text = 'b') THEN NOW()
				ELSE confirmed_at
			END,
			updated_at = NOW()
		WHERE id = $1 AND status = 'pending_decision'
		RETURNING `+itemColumns,
		itemID, string(side)))
	if err != nil {
		return nil, false, s.classify(ctx, itemID, "confirm", err)
	}
	return item, item.Status == models.ItemStatusConfirmed, nil
}

// classify turns a failed conditional update into a typed error. A statement
// that matched no row is re-read to tell a missing item from a status guard.
func (s *ItemStore) classify(ctx context.Context, itemID uuid.UUID, op string, err error) error {
	if !errors.Is(err, pgx.ErrNoRows) {
		return translatePgError(err)
	}

	var status string
	err = s.db.Pool.QueryRow(ctx, `SELECT status FROM gated_items WHERE id = $1`, itemID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrItemNotFound
		}
		return err
	}
	return invalidTransition(op, status)
}
