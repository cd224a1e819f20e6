package repository

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/hintwise/hintgate/internal/db/models"
)

// HintRepository abstracts hint persistence so handlers can be tested
// against an in-memory implementation.
type HintRepository interface {
	// Create inserts a hint and fills its generated ID.
	Create(ctx context.Context, hint *models.Hint) error
	// Update rewrites question and reply for a hint, returning the number
	// of rows matched (0 when the hint does not exist).
	Update(ctx context.Context, id int64, question, reply string) (int64, error)
	// Delete removes a hint, returning the number of rows removed.
	Delete(ctx context.Context, id int64) (int64, error)
}

// BunHintRepository implements HintRepository using Bun ORM
type BunHintRepository struct {
	db *bun.DB
}

// NewBunHintRepository creates a new Bun-based hint repository
func NewBunHintRepository(db *bun.DB) *BunHintRepository {
	return &BunHintRepository{db: db}
}

// EnsureSchema creates the chatbot_hints table when it does not exist yet.
func (r *BunHintRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.NewCreateTable().
		Model((*models.Hint)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create chatbot_hints table: %w", err)
	}
	return nil
}

// Create inserts a new hint
func (r *BunHintRepository) Create(ctx context.Context, hint *models.Hint) error {
	_, err := r.db.NewInsert().
		Model(hint).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create hint: %w", err)
	}
	return nil
}

// Update rewrites an existing hint
func (r *BunHintRepository) Update(ctx context.Context, id int64, question, reply string) (int64, error) {
	res, err := r.db.NewUpdate().
		Model((*models.Hint)(nil)).
		Set("question = ?", question).
		Set("reply = ?", reply).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("update hint: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update hint rows affected: %w", err)
	}
	return rows, nil
}

// Delete removes a hint
func (r *BunHintRepository) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*models.Hint)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete hint: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete hint rows affected: %w", err)
	}
	return rows, nil
}
