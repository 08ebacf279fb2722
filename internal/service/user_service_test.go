package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"taskhub/internal/apperr"
	"taskhub/internal/auth"
	"taskhub/internal/model"
)

func newUserService() (*UserService, *fakeUserStore, *fakeTaskStore) {
	users := newFakeUserStore()
	tasks := newFakeTaskStore()
	users.tasks = tasks
	return NewUserService(users, tasks, zap.NewNop()), users, tasks
}

func TestUserService_Create(t *testing.T) {
	svc, _, _ := newUserService()
	ctx := context.Background()

	u, err := svc.Create(ctx, UserDraft{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "  Ada@Example.COM ",
		Password:  "secret",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if u.Email != "ada@example.com" {
		t.Fatalf("email not normalized: %q", u.Email)
	}
	if u.Role != model.RoleUser {
		t.Fatalf("role must default to user, got %q", u.Role)
	}
	if u.PasswordHash == "secret" || u.PasswordHash == "" {
		t.Fatalf("password must be stored hashed")
	}
	if !auth.CheckPassword("secret", u.PasswordHash) {
		t.Fatalf("stored hash does not verify")
	}
}

func TestUserService_Create_Validation(t *testing.T) {
	svc, _, _ := newUserService()
	ctx := context.Background()

	tests := []struct {
		name  string
		draft UserDraft
	}{
		{"empty email", UserDraft{Password: "secret"}},
		{"email without at sign", UserDraft{Email: "nope", Password: "secret"}},
		{"short password", UserDraft{Email: "a@b.com", Password: "xy"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.draft)
			if !apperr.IsKind(err, apperr.Validation) {
				t.Fatalf("expected Validation, got %v", err)
			}
		})
	}

	if _, err := svc.Create(ctx, UserDraft{Email: "a@b.com", Password: "secret"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	_, err := svc.Create(ctx, UserDraft{Email: "A@B.com", Password: "secret"})
	if !apperr.IsKind(err, apperr.Validation) {
		t.Fatalf("expected Validation for duplicate email, got %v", err)
	}
}

func TestUserService_Update_SelfOrManager(t *testing.T) {
	svc, _, _ := newUserService()
	ctx := context.Background()

	u, err := svc.Create(ctx, UserDraft{Email: "a@b.com", Password: "secret"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	first := "Grace"
	self := model.Principal{UserID: u.ID}
	updated, err := svc.Update(ctx, self, u.ID, UserPatch{FirstName: &first})
	if err != nil {
		t.Fatalf("self update failed: %v", err)
	}
	if updated.FirstName != "Grace" {
		t.Fatalf("first name not applied")
	}

	stranger := model.Principal{UserID: u.ID + 100}
	_, err = svc.Update(ctx, stranger, u.ID, UserPatch{FirstName: &first})
	if !apperr.IsKind(err, apperr.Forbidden) {
		t.Fatalf("expected Forbidden for stranger update, got %v", err)
	}

	admin := model.Principal{UserID: u.ID + 100, Elevated: true}
	if _, err := svc.Update(ctx, admin, u.ID, UserPatch{FirstName: &first}); err != nil {
		t.Fatalf("elevated update failed: %v", err)
	}
}

func TestUserService_Update_Validation(t *testing.T) {
	svc, users, _ := newUserService()
	ctx := context.Background()

	u, err := svc.Create(ctx, UserDraft{Email: "a@b.com", Password: "secret"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	self := model.Principal{UserID: u.ID}

	empty := ""
	noAt := "not-an-email"
	shortPw := "xy"

	tests := []struct {
		name  string
		patch UserPatch
	}{
		{"empty email", UserPatch{Email: &empty}},
		{"email without at sign", UserPatch{Email: &noAt}},
		{"short password", UserPatch{Password: &shortPw}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Update(ctx, self, u.ID, tc.patch)
			if !apperr.IsKind(err, apperr.Validation) {
				t.Fatalf("expected Validation, got %v", err)
			}
		})
	}

	// The rejected patches must not have touched the stored record.
	stored, err := users.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Email != "a@b.com" {
		t.Fatalf("rejected patch leaked through: %q", stored.Email)
	}
}

func TestUserService_Delete_CreatorIsProtected(t *testing.T) {
	svc, _, tasks := newUserService()
	ctx := context.Background()

	u, err := svc.Create(ctx, UserDraft{Email: "a@b.com", Password: "secret"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := tasks.Create(ctx, &model.Task{Title: "t", CreatorID: u.ID}); err != nil {
		t.Fatalf("seed task: %v", err)
	}

	self := model.Principal{UserID: u.ID}
	err = svc.Delete(ctx, self, u.ID)
	if !apperr.IsKind(err, apperr.IntegrityViolation) {
		t.Fatalf("expected IntegrityViolation for task creator, got %v", err)
	}
}

func TestUserService_Delete_UnassignsFirst(t *testing.T) {
	svc, users, tasks := newUserService()
	ctx := context.Background()

	creator, err := svc.Create(ctx, UserDraft{Email: "creator@b.com", Password: "secret"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	assignee, err := svc.Create(ctx, UserDraft{Email: "assignee@b.com", Password: "secret"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	task := &model.Task{Title: "t", CreatorID: creator.ID, AssigneeID: &assignee.ID}
	if err := tasks.Create(ctx, task); err != nil {
		t.Fatalf("seed task: %v", err)
	}

	self := model.Principal{UserID: assignee.ID}
	if err := svc.Delete(ctx, self, assignee.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := users.GetByID(ctx, assignee.ID); !apperr.IsKind(err, apperr.NotFound) {
		t.Fatalf("user must be gone, got %v", err)
	}
	got, err := tasks.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.AssigneeID != nil {
		t.Fatalf("task must be unassigned, got %v", *got.AssigneeID)
	}
}
