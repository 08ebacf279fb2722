package service

import (
	"context"

	"taskhub/internal/model"
	"taskhub/internal/query"
)

// Store interfaces consumed by the services. The pgx repositories satisfy
// them; tests use in-memory fakes.

type TaskStore interface {
	Create(ctx context.Context, t *model.Task) error
	GetByID(ctx context.Context, id int64) (*model.Task, error)
	Update(ctx context.Context, t *model.Task, expectedVersion int64) error
	Delete(ctx context.Context, id int64) error
	FindMatching(ctx context.Context, c query.Conjunction, page query.Page) ([]model.Task, int, error)
	ExistsByStatus(ctx context.Context, statusID int64) (bool, error)
	ExistsByCreator(ctx context.Context, userID int64) (bool, error)
	ExistsByIndex(ctx context.Context, index int64, excludeTaskID int64) (bool, error)
}

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
	DeleteUnassigning(ctx context.Context, id int64) error
}

type StatusStore interface {
	Create(ctx context.Context, s *model.TaskStatus) error
	GetByID(ctx context.Context, id int64) (*model.TaskStatus, error)
	GetBySlug(ctx context.Context, slug string) (*model.TaskStatus, error)
	List(ctx context.Context) ([]model.TaskStatus, error)
	Update(ctx context.Context, s *model.TaskStatus) error
	Delete(ctx context.Context, id int64) error
	ExistsByName(ctx context.Context, name string) (bool, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
}

type LabelStore interface {
	Create(ctx context.Context, l *model.Label) error
	GetByID(ctx context.Context, id int64) (*model.Label, error)
	List(ctx context.Context) ([]model.Label, error)
	CountByIDs(ctx context.Context, ids []int64) (int, error)
	Update(ctx context.Context, l *model.Label) error
	DeleteDetaching(ctx context.Context, id int64) error
	ExistsByName(ctx context.Context, name string) (bool, error)
}

// StatusResolver is the read-through cache in front of status-by-slug
// lookups. A nil resolver is a permanent miss.
type StatusResolver interface {
	GetBySlug(ctx context.Context, slug string) (*model.TaskStatus, bool)
	Set(ctx context.Context, s *model.TaskStatus)
	Invalidate(ctx context.Context, slug string)
}
