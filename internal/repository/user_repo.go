package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskhub/internal/apperr"
	"taskhub/internal/model"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	q := `
        INSERT INTO users (first_name, last_name, email, password_hash, role)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, q,
		u.FirstName, u.LastName, u.Email, u.PasswordHash, u.Role,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return apperr.FromStore(err, "user")
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	q := `
        SELECT id, first_name, last_name, email, password_hash, role, created_at, updated_at
        FROM users
        WHERE id = $1
    `
	var u model.User
	err := r.db.QueryRow(ctx, q, id).Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Role,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, apperr.FromStore(err, "user")
	}
	return &u, nil
}

// FindByEmail returns the user with the given email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	q := `
        SELECT id, first_name, last_name, email, password_hash, role, created_at, updated_at
        FROM users
        WHERE email = $1
    `
	var u model.User
	err := r.db.QueryRow(ctx, q, email).Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Role,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, apperr.FromStore(err, "user")
	}
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	q := `
        SELECT id, first_name, last_name, email, password_hash, role, created_at, updated_at
        FROM users
        ORDER BY id ASC
    `
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, apperr.FromStore(err, "user")
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Role,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, apperr.FromStore(err, "user")
		}
		users = append(users, u)
	}
	return users, apperr.FromStore(rows.Err(), "user")
}

func (r *UserRepository) Update(ctx context.Context, u *model.User) error {
	q := `
        UPDATE users
        SET first_name = $1, last_name = $2, email = $3, password_hash = $4,
            updated_at = GREATEST(NOW(), updated_at)
        WHERE id = $5
        RETURNING updated_at
    `
	err := r.db.QueryRow(ctx, q,
		u.FirstName, u.LastName, u.Email, u.PasswordHash, u.ID,
	).Scan(&u.UpdatedAt)
	return apperr.FromStore(err, "user")
}

// DeleteUnassigning clears the user's assignee references and removes the row
// in one transaction, so a failed delete never leaves tasks half-unassigned.
func (r *UserRepository) DeleteUnassigning(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return apperr.FromStore(err, "user")
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE tasks SET assignee_id = NULL, updated_at = GREATEST(NOW(), updated_at) WHERE assignee_id = $1`,
		id)
	if err != nil {
		return apperr.FromStore(err, "user")
	}

	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return apperr.FromStore(err, "user")
	}
	if tag.RowsAffected() == 0 {
		return apperr.Newf(apperr.NotFound, "user %d not found", id)
	}

	return apperr.FromStore(tx.Commit(ctx), "user")
}
