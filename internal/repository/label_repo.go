package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskhub/internal/apperr"
	"taskhub/internal/model"
)

type LabelRepository struct {
	db *pgxpool.Pool
}

func NewLabelRepository(db *pgxpool.Pool) *LabelRepository {
	return &LabelRepository{db: db}
}

func (r *LabelRepository) Create(ctx context.Context, l *model.Label) error {
	q := `INSERT INTO labels (name) VALUES ($1) RETURNING id, created_at`
	err := r.db.QueryRow(ctx, q, l.Name).Scan(&l.ID, &l.CreatedAt)
	return apperr.FromStore(err, "label")
}

func (r *LabelRepository) GetByID(ctx context.Context, id int64) (*model.Label, error) {
	q := `SELECT id, name, created_at FROM labels WHERE id = $1`
	var l model.Label
	err := r.db.QueryRow(ctx, q, id).Scan(&l.ID, &l.Name, &l.CreatedAt)
	if err != nil {
		return nil, apperr.FromStore(err, "label")
	}
	return &l, nil
}

func (r *LabelRepository) List(ctx context.Context) ([]model.Label, error) {
	q := `SELECT id, name, created_at FROM labels ORDER BY id ASC`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, apperr.FromStore(err, "label")
	}
	defer rows.Close()

	labels := []model.Label{}
	for rows.Next() {
		var l model.Label
		if err := rows.Scan(&l.ID, &l.Name, &l.CreatedAt); err != nil {
			return nil, apperr.FromStore(err, "label")
		}
		labels = append(labels, l)
	}
	return labels, apperr.FromStore(rows.Err(), "label")
}

// CountByIDs returns how many of the given label ids exist. Used to validate
// label references on task create/update.
func (r *LabelRepository) CountByIDs(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM labels WHERE id = ANY($1)`, ids).Scan(&count)
	if err != nil {
		return 0, apperr.FromStore(err, "label")
	}
	return count, nil
}

func (r *LabelRepository) Update(ctx context.Context, l *model.Label) error {
	tag, err := r.db.Exec(ctx, `UPDATE labels SET name = $1 WHERE id = $2`, l.Name, l.ID)
	if err != nil {
		return apperr.FromStore(err, "label")
	}
	if tag.RowsAffected() == 0 {
		return apperr.Newf(apperr.NotFound, "label %d not found", l.ID)
	}
	return nil
}

// DeleteDetaching removes the label's task associations and the label itself
// in one transaction. Tasks keep their other labels untouched.
func (r *LabelRepository) DeleteDetaching(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return apperr.FromStore(err, "label")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM task_labels WHERE label_id = $1`, id); err != nil {
		return apperr.FromStore(err, "label")
	}

	tag, err := tx.Exec(ctx, `DELETE FROM labels WHERE id = $1`, id)
	if err != nil {
		return apperr.FromStore(err, "label")
	}
	if tag.RowsAffected() == 0 {
		return apperr.Newf(apperr.NotFound, "label %d not found", id)
	}

	return apperr.FromStore(tx.Commit(ctx), "label")
}

func (r *LabelRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM labels WHERE name = $1)`, name).Scan(&exists)
	if err != nil {
		return false, apperr.FromStore(err, "label")
	}
	return exists, nil
}
