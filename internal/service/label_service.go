package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"taskhub/internal/apperr"
	"taskhub/internal/authz"
	"taskhub/internal/model"
)

type LabelService struct {
	labels LabelStore
	logger *zap.Logger
}

func NewLabelService(labels LabelStore, log *zap.Logger) *LabelService {
	return &LabelService{labels: labels, logger: log}
}

func (s *LabelService) Create(ctx context.Context, p model.Principal, name string) (*model.Label, error) {
	if err := authz.Require(p, authz.ManageLabel, nil); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.New(apperr.Validation, "label name is required")
	}

	exists, err := s.labels.ExistsByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Newf(apperr.Validation, "label %s already exists", name)
	}

	label := &model.Label{Name: name}
	if err := s.labels.Create(ctx, label); err != nil {
		return nil, err
	}
	return label, nil
}

func (s *LabelService) Get(ctx context.Context, id int64) (*model.Label, error) {
	return s.labels.GetByID(ctx, id)
}

func (s *LabelService) List(ctx context.Context) ([]model.Label, error) {
	return s.labels.List(ctx)
}

func (s *LabelService) Update(ctx context.Context, p model.Principal, id int64, name string) (*model.Label, error) {
	if err := authz.Require(p, authz.ManageLabel, nil); err != nil {
		return nil, err
	}

	label, err := s.labels.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.New(apperr.Validation, "label name is required")
	}
	if name != label.Name {
		exists, err := s.labels.ExistsByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperr.Newf(apperr.Validation, "label %s already exists", name)
		}
	}

	label.Name = name
	if err := s.labels.Update(ctx, label); err != nil {
		return nil, err
	}
	return label, nil
}

// Delete detaches the label from every task and then removes it. Tasks keep
// their other labels untouched.
func (s *LabelService) Delete(ctx context.Context, p model.Principal, id int64) error {
	if err := authz.Require(p, authz.ManageLabel, nil); err != nil {
		return err
	}

	if _, err := s.labels.GetByID(ctx, id); err != nil {
		return err
	}

	// Detach and removal commit together.
	if err := s.labels.DeleteDetaching(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Label deleted", zap.Int64("label_id", id))
	return nil
}
