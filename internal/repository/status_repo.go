package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskhub/internal/apperr"
	"taskhub/internal/model"
)

type StatusRepository struct {
	db *pgxpool.Pool
}

func NewStatusRepository(db *pgxpool.Pool) *StatusRepository {
	return &StatusRepository{db: db}
}

func (r *StatusRepository) Create(ctx context.Context, s *model.TaskStatus) error {
	q := `
        INSERT INTO task_statuses (name, slug)
        VALUES ($1, $2)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, q, s.Name, s.Slug).Scan(&s.ID, &s.CreatedAt)
	return apperr.FromStore(err, "task status")
}

func (r *StatusRepository) GetByID(ctx context.Context, id int64) (*model.TaskStatus, error) {
	q := `SELECT id, name, slug, created_at FROM task_statuses WHERE id = $1`
	var s model.TaskStatus
	err := r.db.QueryRow(ctx, q, id).Scan(&s.ID, &s.Name, &s.Slug, &s.CreatedAt)
	if err != nil {
		return nil, apperr.FromStore(err, "task status")
	}
	return &s, nil
}

func (r *StatusRepository) GetBySlug(ctx context.Context, slug string) (*model.TaskStatus, error) {
	q := `SELECT id, name, slug, created_at FROM task_statuses WHERE slug = $1`
	var s model.TaskStatus
	err := r.db.QueryRow(ctx, q, slug).Scan(&s.ID, &s.Name, &s.Slug, &s.CreatedAt)
	if err != nil {
		return nil, apperr.FromStore(err, "task status")
	}
	return &s, nil
}

func (r *StatusRepository) List(ctx context.Context) ([]model.TaskStatus, error) {
	q := `SELECT id, name, slug, created_at FROM task_statuses ORDER BY id ASC`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, apperr.FromStore(err, "task status")
	}
	defer rows.Close()

	statuses := []model.TaskStatus{}
	for rows.Next() {
		var s model.TaskStatus
		if err := rows.Scan(&s.ID, &s.Name, &s.Slug, &s.CreatedAt); err != nil {
			return nil, apperr.FromStore(err, "task status")
		}
		statuses = append(statuses, s)
	}
	return statuses, apperr.FromStore(rows.Err(), "task status")
}

func (r *StatusRepository) Update(ctx context.Context, s *model.TaskStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE task_statuses SET name = $1, slug = $2 WHERE id = $3`,
		s.Name, s.Slug, s.ID)
	if err != nil {
		return apperr.FromStore(err, "task status")
	}
	if tag.RowsAffected() == 0 {
		return apperr.Newf(apperr.NotFound, "task status %d not found", s.ID)
	}
	return nil
}

func (r *StatusRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM task_statuses WHERE id = $1`, id)
	if err != nil {
		return apperr.FromStore(err, "task status")
	}
	if tag.RowsAffected() == 0 {
		return apperr.Newf(apperr.NotFound, "task status %d not found", id)
	}
	return nil
}

func (r *StatusRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM task_statuses WHERE name = $1)`, name).Scan(&exists)
	if err != nil {
		return false, apperr.FromStore(err, "task status")
	}
	return exists, nil
}

func (r *StatusRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM task_statuses WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, apperr.FromStore(err, "task status")
	}
	return exists, nil
}
