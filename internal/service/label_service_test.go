package service

import (
	"context"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"taskhub/internal/apperr"
	"taskhub/internal/model"
)

func newLabelFixture() (*LabelService, *fakeLabelStore, *fakeTaskStore) {
	labels := newFakeLabelStore()
	tasks := newFakeTaskStore()
	labels.tasks = tasks
	return NewLabelService(labels, zap.NewNop()), labels, tasks
}

var labelAdmin = model.Principal{UserID: 1, Elevated: true}

func TestLabelService_Create(t *testing.T) {
	svc, _, _ := newLabelFixture()
	ctx := context.Background()

	l, err := svc.Create(ctx, labelAdmin, " feature ")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if l.Name != "feature" {
		t.Fatalf("name not trimmed: %q", l.Name)
	}

	if _, err := svc.Create(ctx, labelAdmin, "feature"); !apperr.IsKind(err, apperr.Validation) {
		t.Fatalf("expected Validation for duplicate name, got %v", err)
	}
	if _, err := svc.Create(ctx, labelAdmin, "  "); !apperr.IsKind(err, apperr.Validation) {
		t.Fatalf("expected Validation for blank name, got %v", err)
	}
	if _, err := svc.Create(ctx, model.Principal{UserID: 2}, "bug"); !apperr.IsKind(err, apperr.Forbidden) {
		t.Fatalf("expected Forbidden for ordinary principal, got %v", err)
	}
}

func TestLabelService_Update(t *testing.T) {
	svc, _, _ := newLabelFixture()
	ctx := context.Background()

	l, err := svc.Create(ctx, labelAdmin, "feature")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Create(ctx, labelAdmin, "bug"); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.Update(ctx, labelAdmin, l.ID, "bug"); !apperr.IsKind(err, apperr.Validation) {
		t.Fatalf("expected Validation for taken name, got %v", err)
	}

	// Renaming to its own name is a no-op, not a violation.
	if _, err := svc.Update(ctx, labelAdmin, l.ID, "feature"); err != nil {
		t.Fatalf("same-name update failed: %v", err)
	}

	updated, err := svc.Update(ctx, labelAdmin, l.ID, "enhancement")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "enhancement" {
		t.Fatalf("name not applied: %q", updated.Name)
	}
}

func TestLabelService_Delete_DetachesFromTasks(t *testing.T) {
	svc, labels, tasks := newLabelFixture()
	ctx := context.Background()

	l, err := svc.Create(ctx, labelAdmin, "feature")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	keep, err := svc.Create(ctx, labelAdmin, "bug")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	task := &model.Task{Title: "t", CreatorID: 1, LabelIDs: []int64{l.ID, keep.ID}}
	if err := tasks.Create(ctx, task); err != nil {
		t.Fatalf("seed task: %v", err)
	}

	if err := svc.Delete(ctx, labelAdmin, l.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := labels.GetByID(ctx, l.ID); !apperr.IsKind(err, apperr.NotFound) {
		t.Fatalf("label must be gone, got %v", err)
	}
	got, err := tasks.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if !reflect.DeepEqual(got.LabelIDs, []int64{keep.ID}) {
		t.Fatalf("only the deleted label must be detached, got %v", got.LabelIDs)
	}
}
