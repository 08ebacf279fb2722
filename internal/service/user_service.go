package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"taskhub/internal/apperr"
	"taskhub/internal/auth"
	"taskhub/internal/authz"
	"taskhub/internal/model"
)

type UserDraft struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      string
}

type UserPatch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
}

type UserService struct {
	users  UserStore
	tasks  TaskStore
	logger *zap.Logger
}

func NewUserService(users UserStore, tasks TaskStore, log *zap.Logger) *UserService {
	return &UserService{users: users, tasks: tasks, logger: log}
}

// Create registers a new user. Registration is open; the role defaults to the
// ordinary user role unless the draft says otherwise.
func (s *UserService) Create(ctx context.Context, draft UserDraft) (*model.User, error) {
	email := strings.TrimSpace(strings.ToLower(draft.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.New(apperr.Validation, "a valid email is required")
	}
	if len(draft.Password) < 3 {
		return nil, apperr.New(apperr.Validation, "password must be at least 3 characters")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, apperr.Newf(apperr.Validation, "email %s already exists", email)
	} else if !apperr.IsKind(err, apperr.NotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(draft.Password)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to hash password", err)
	}

	role := draft.Role
	if role == "" {
		role = model.RoleUser
	}

	u := &model.User{
		FirstName:    draft.FirstName,
		LastName:     draft.LastName,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("User created", zap.Int64("user_id", u.ID))
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// Update lets a user modify their own record; anything else requires the
// management privilege.
func (s *UserService) Update(ctx context.Context, p model.Principal, id int64, patch UserPatch) (*model.User, error) {
	if p.UserID != id {
		if err := authz.Require(p, authz.ManageUser, nil); err != nil {
			return nil, err
		}
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.FirstName != nil {
		u.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		u.LastName = *patch.LastName
	}
	if patch.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*patch.Email))
		if email == "" || !strings.Contains(email, "@") {
			return nil, apperr.New(apperr.Validation, "a valid email is required")
		}
		if email != u.Email {
			if _, err := s.users.FindByEmail(ctx, email); err == nil {
				return nil, apperr.Newf(apperr.Validation, "email %s already exists", email)
			} else if !apperr.IsKind(err, apperr.NotFound) {
				return nil, err
			}
			u.Email = email
		}
	}
	if patch.Password != nil {
		if len(*patch.Password) < 3 {
			return nil, apperr.New(apperr.Validation, "password must be at least 3 characters")
		}
		hash, err := auth.HashPassword(*patch.Password)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "failed to hash password", err)
		}
		u.PasswordHash = hash
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Delete removes a user. A user who still owns tasks as creator cannot be
// deleted; a user who is only an assignee is unassigned first.
func (s *UserService) Delete(ctx context.Context, p model.Principal, id int64) error {
	if p.UserID != id {
		if err := authz.Require(p, authz.ManageUser, nil); err != nil {
			return err
		}
	}

	if _, err := s.users.GetByID(ctx, id); err != nil {
		return err
	}

	isCreator, err := s.tasks.ExistsByCreator(ctx, id)
	if err != nil {
		return err
	}
	if isCreator {
		return apperr.New(apperr.IntegrityViolation,
			"cannot delete: user is the creator of one or more tasks")
	}

	// Unassignment and removal commit together.
	if err := s.users.DeleteUnassigning(ctx, id); err != nil {
		return err
	}

	s.logger.Info("User deleted", zap.Int64("user_id", id))
	return nil
}
