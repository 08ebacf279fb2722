package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"taskhub/config"
	"taskhub/internal/apperr"
	"taskhub/internal/auth"
	"taskhub/internal/model"
	"taskhub/internal/service"
)

var defaultStatuses = []model.TaskStatus{
	{Name: "New", Slug: "new"},
	{Name: "Progress", Slug: "progress"},
	{Name: "Review", Slug: "review"},
	{Name: "Done", Slug: "done"},
}

var defaultLabels = []string{"feature", "bug"}

// Seed creates the admin user and the default statuses and labels if they do
// not exist yet. Safe to run on every startup.
func Seed(
	ctx context.Context,
	cfg config.SeedConfig,
	users service.UserStore,
	statuses service.StatusStore,
	labels service.LabelStore,
	logger *zap.Logger,
) error {
	if cfg.AdminEmail != "" {
		if _, err := users.FindByEmail(ctx, cfg.AdminEmail); err != nil {
			if !apperr.IsKind(err, apperr.NotFound) {
				return fmt.Errorf("failed to look up admin user: %w", err)
			}

			hash, err := auth.HashPassword(cfg.AdminPassword)
			if err != nil {
				return fmt.Errorf("failed to hash admin password: %w", err)
			}
			admin := &model.User{
				Email:        cfg.AdminEmail,
				PasswordHash: hash,
				Role:         model.RoleAdmin,
			}
			if err := users.Create(ctx, admin); err != nil {
				return fmt.Errorf("failed to create admin user: %w", err)
			}
			logger.Info("Seeded admin user", zap.String("email", cfg.AdminEmail))
		}
	}

	for _, s := range defaultStatuses {
		exists, err := statuses.ExistsBySlug(ctx, s.Slug)
		if err != nil {
			return fmt.Errorf("failed to check status %s: %w", s.Slug, err)
		}
		if exists {
			continue
		}
		status := s
		if err := statuses.Create(ctx, &status); err != nil {
			return fmt.Errorf("failed to seed status %s: %w", s.Slug, err)
		}
		logger.Info("Seeded task status", zap.String("slug", s.Slug))
	}

	for _, name := range defaultLabels {
		exists, err := labels.ExistsByName(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to check label %s: %w", name, err)
		}
		if exists {
			continue
		}
		label := &model.Label{Name: name}
		if err := labels.Create(ctx, label); err != nil {
			return fmt.Errorf("failed to seed label %s: %w", name, err)
		}
		logger.Info("Seeded label", zap.String("name", name))
	}

	return nil
}
