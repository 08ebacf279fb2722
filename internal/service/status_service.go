package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"taskhub/internal/apperr"
	"taskhub/internal/authz"
	"taskhub/internal/model"
)

type StatusDraft struct {
	Name string
	Slug string
}

type StatusPatch struct {
	Name *string
	Slug *string
}

type StatusService struct {
	statuses StatusStore
	tasks    TaskStore
	cache    StatusResolver
	logger   *zap.Logger
}

func NewStatusService(statuses StatusStore, tasks TaskStore, cache StatusResolver, log *zap.Logger) *StatusService {
	return &StatusService{statuses: statuses, tasks: tasks, cache: cache, logger: log}
}

func (s *StatusService) Create(ctx context.Context, p model.Principal, draft StatusDraft) (*model.TaskStatus, error) {
	if err := authz.Require(p, authz.ManageStatus, nil); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(draft.Name)
	slug := strings.TrimSpace(draft.Slug)
	if name == "" || slug == "" {
		return nil, apperr.New(apperr.Validation, "name and slug are required")
	}

	var details []string
	if exists, err := s.statuses.ExistsByName(ctx, name); err != nil {
		return nil, err
	} else if exists {
		details = append(details, "name "+name+" already exists")
	}
	if exists, err := s.statuses.ExistsBySlug(ctx, slug); err != nil {
		return nil, err
	} else if exists {
		details = append(details, "slug "+slug+" already exists")
	}
	if len(details) > 0 {
		return nil, apperr.New(apperr.Validation, "uniqueness violation").WithDetails(details...)
	}

	status := &model.TaskStatus{Name: name, Slug: slug}
	if err := s.statuses.Create(ctx, status); err != nil {
		return nil, err
	}

	s.logger.Info("Task status created",
		zap.Int64("status_id", status.ID),
		zap.String("slug", status.Slug),
	)
	return status, nil
}

func (s *StatusService) Get(ctx context.Context, id int64) (*model.TaskStatus, error) {
	return s.statuses.GetByID(ctx, id)
}

func (s *StatusService) List(ctx context.Context) ([]model.TaskStatus, error) {
	return s.statuses.List(ctx)
}

func (s *StatusService) Update(ctx context.Context, p model.Principal, id int64, patch StatusPatch) (*model.TaskStatus, error) {
	if err := authz.Require(p, authz.ManageStatus, nil); err != nil {
		return nil, err
	}

	status, err := s.statuses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldSlug := status.Slug

	var details []string
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperr.New(apperr.Validation, "name must not be empty")
		}
		if name != status.Name {
			if exists, err := s.statuses.ExistsByName(ctx, name); err != nil {
				return nil, err
			} else if exists {
				details = append(details, "name "+name+" already exists")
			}
			status.Name = name
		}
	}
	if patch.Slug != nil {
		slug := strings.TrimSpace(*patch.Slug)
		if slug == "" {
			return nil, apperr.New(apperr.Validation, "slug must not be empty")
		}
		if slug != status.Slug {
			if exists, err := s.statuses.ExistsBySlug(ctx, slug); err != nil {
				return nil, err
			} else if exists {
				details = append(details, "slug "+slug+" already exists")
			}
			status.Slug = slug
		}
	}
	if len(details) > 0 {
		return nil, apperr.New(apperr.Validation, "uniqueness violation").WithDetails(details...)
	}

	if err := s.statuses.Update(ctx, status); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, oldSlug)
		s.cache.Invalidate(ctx, status.Slug)
	}
	return status, nil
}

// Delete rejects removal while any task still references the status.
func (s *StatusService) Delete(ctx context.Context, p model.Principal, id int64) error {
	if err := authz.Require(p, authz.ManageStatus, nil); err != nil {
		return err
	}

	status, err := s.statuses.GetByID(ctx, id)
	if err != nil {
		return err
	}

	inUse, err := s.tasks.ExistsByStatus(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return apperr.New(apperr.IntegrityViolation,
			"cannot delete: task status is referenced by one or more tasks")
	}

	if err := s.statuses.Delete(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, status.Slug)
	}
	return nil
}
