package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"taskhub/internal/apperr"
	"taskhub/internal/authz"
	"taskhub/internal/model"
	"taskhub/internal/query"
	"taskhub/pkg/logger"
	"taskhub/pkg/metrics"
)

// TaskDraft is the accepted input shape for task creation. The creator is
// never client-supplied; it is forced to the requesting principal.
type TaskDraft struct {
	Title       string
	Index       *int64
	Description string
	StatusSlug  string
	AssigneeID  *int64
	LabelIDs    []int64
}

// TaskPatch carries partial-update semantics: nil fields stay unchanged.
// Version, when present, is the client's optimistic-concurrency token.
type TaskPatch struct {
	Title       *string
	Index       *int64
	Description *string
	StatusSlug  *string
	AssigneeID  *int64
	LabelIDs    *[]int64
	Version     *int64
}

type TaskPage struct {
	Items []model.Task
	Total int
	Page  query.Page
}

type TaskService struct {
	tasks       TaskStore
	users       UserStore
	statuses    StatusStore
	labels      LabelStore
	statusCache StatusResolver
	logger      *zap.Logger
}

func NewTaskService(
	tasks TaskStore,
	users UserStore,
	statuses StatusStore,
	labels LabelStore,
	statusCache StatusResolver,
	log *zap.Logger,
) *TaskService {
	return &TaskService{
		tasks:       tasks,
		users:       users,
		statuses:    statuses,
		labels:      labels,
		statusCache: statusCache,
		logger:      log,
	}
}

// Create validates the draft's references and persists a new task owned by
// the principal.
func (s *TaskService) Create(ctx context.Context, p model.Principal, draft TaskDraft) (*model.Task, error) {
	if err := authz.Require(p, authz.CreateTask, nil); err != nil {
		return nil, err
	}

	t := &model.Task{
		Title:       strings.TrimSpace(draft.Title),
		Index:       draft.Index,
		Description: draft.Description,
		CreatorID:   p.UserID,
		AssigneeID:  draft.AssigneeID,
		LabelIDs:    dedupe(draft.LabelIDs),
	}

	if t.Title == "" {
		metrics.IncrementTaskOperation("create", "error")
		return nil, apperr.New(apperr.Validation, "title must not be empty")
	}
	if draft.StatusSlug == "" {
		metrics.IncrementTaskOperation("create", "error")
		return nil, apperr.New(apperr.Validation, "status slug is required")
	}

	status, err := s.resolveStatus(ctx, draft.StatusSlug)
	if err != nil {
		metrics.IncrementTaskOperation("create", "error")
		return nil, err
	}
	t.StatusID = status.ID
	t.StatusSlug = status.Slug

	if err := s.validateAssignee(ctx, t.AssigneeID); err != nil {
		metrics.IncrementTaskOperation("create", "error")
		return nil, err
	}
	if err := s.validateLabels(ctx, t.LabelIDs); err != nil {
		metrics.IncrementTaskOperation("create", "error")
		return nil, err
	}
	if err := s.validateIndex(ctx, t.Index, 0); err != nil {
		metrics.IncrementTaskOperation("create", "error")
		return nil, err
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		metrics.IncrementTaskOperation("create", "error")
		return nil, err
	}

	metrics.IncrementTaskOperation("create", "ok")
	logger.WithTrace(ctx, s.logger).Info("Task created",
		zap.Int64("task_id", t.ID),
		zap.Int64("creator_id", p.UserID),
	)
	return t, nil
}

// Get fetches a task the principal is allowed to see. A task that exists but
// is invisible to the principal yields the same NotFound shape as a missing
// one, so existence is not disclosed.
func (s *TaskService) Get(ctx context.Context, p model.Principal, id int64) (*model.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.Decide(p, authz.ReadTask, t).Allowed() {
		return nil, apperr.Newf(apperr.NotFound, "task %d not found", id)
	}
	return t, nil
}

// Update applies only the fields present in the patch, re-validates
// referential fields and persists with a compare-and-swap on version.
func (s *TaskService) Update(ctx context.Context, p model.Principal, id int64, patch TaskPatch) (*model.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		metrics.IncrementTaskOperation("update", "error")
		return nil, err
	}
	if !authz.Decide(p, authz.UpdateTask, t).Allowed() {
		metrics.IncrementTaskOperation("update", "error")
		return nil, apperr.Newf(apperr.NotFound, "task %d not found", id)
	}

	expectedVersion := t.Version
	if patch.Version != nil {
		expectedVersion = *patch.Version
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			metrics.IncrementTaskOperation("update", "error")
			return nil, apperr.New(apperr.Validation, "title must not be empty")
		}
		t.Title = title
	}
	if patch.Index != nil {
		if err := s.validateIndex(ctx, patch.Index, t.ID); err != nil {
			metrics.IncrementTaskOperation("update", "error")
			return nil, err
		}
		t.Index = patch.Index
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.StatusSlug != nil {
		status, err := s.resolveStatus(ctx, *patch.StatusSlug)
		if err != nil {
			metrics.IncrementTaskOperation("update", "error")
			return nil, err
		}
		t.StatusID = status.ID
		t.StatusSlug = status.Slug
	}
	if patch.AssigneeID != nil {
		if err := s.validateAssignee(ctx, patch.AssigneeID); err != nil {
			metrics.IncrementTaskOperation("update", "error")
			return nil, err
		}
		t.AssigneeID = patch.AssigneeID
	}
	if patch.LabelIDs != nil {
		labelIDs := dedupe(*patch.LabelIDs)
		if err := s.validateLabels(ctx, labelIDs); err != nil {
			metrics.IncrementTaskOperation("update", "error")
			return nil, err
		}
		t.LabelIDs = labelIDs
	}

	if err := s.tasks.Update(ctx, t, expectedVersion); err != nil {
		metrics.IncrementTaskOperation("update", "error")
		return nil, err
	}

	metrics.IncrementTaskOperation("update", "ok")
	return t, nil
}

// Delete removes the task and its label associations.
func (s *TaskService) Delete(ctx context.Context, p model.Principal, id int64) error {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		metrics.IncrementTaskOperation("delete", "error")
		return err
	}
	if !authz.Decide(p, authz.DeleteTask, t).Allowed() {
		metrics.IncrementTaskOperation("delete", "error")
		return apperr.Newf(apperr.NotFound, "task %d not found", id)
	}

	if err := s.tasks.Delete(ctx, id); err != nil {
		metrics.IncrementTaskOperation("delete", "error")
		return err
	}

	metrics.IncrementTaskOperation("delete", "ok")
	return nil
}

// List builds the filter predicate, narrows to the principal's visible scope
// unless elevated, and returns one stable page plus the total count.
func (s *TaskService) List(ctx context.Context, p model.Principal, f query.Filter, page query.Page) (*TaskPage, error) {
	if err := authz.Require(p, authz.ListTasks, nil); err != nil {
		return nil, err
	}

	conj := query.Build(f)
	if !p.Elevated {
		conj = conj.With(query.VisibleTo(p.UserID))
	}

	page = page.Normalize()
	items, total, err := s.tasks.FindMatching(ctx, conj, page)
	if err != nil {
		return nil, err
	}

	return &TaskPage{Items: items, Total: total, Page: page}, nil
}

func (s *TaskService) resolveStatus(ctx context.Context, slug string) (*model.TaskStatus, error) {
	if s.statusCache != nil {
		if status, ok := s.statusCache.GetBySlug(ctx, slug); ok {
			return status, nil
		}
	}

	status, err := s.statuses.GetBySlug(ctx, slug)
	if err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			return nil, apperr.Newf(apperr.Validation, "status with slug %q not found", slug)
		}
		return nil, err
	}

	if s.statusCache != nil {
		s.statusCache.Set(ctx, status)
	}
	return status, nil
}

func (s *TaskService) validateAssignee(ctx context.Context, assigneeID *int64) error {
	if assigneeID == nil {
		return nil
	}
	if _, err := s.users.GetByID(ctx, *assigneeID); err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			return apperr.Newf(apperr.Validation, "assignee %d not found", *assigneeID)
		}
		return err
	}
	return nil
}

func (s *TaskService) validateLabels(ctx context.Context, labelIDs []int64) error {
	if len(labelIDs) == 0 {
		return nil
	}
	count, err := s.labels.CountByIDs(ctx, labelIDs)
	if err != nil {
		return err
	}
	if count != len(labelIDs) {
		return apperr.New(apperr.Validation, "one or more labels not found")
	}
	return nil
}

func (s *TaskService) validateIndex(ctx context.Context, index *int64, excludeTaskID int64) error {
	if index == nil {
		return nil
	}
	exists, err := s.tasks.ExistsByIndex(ctx, *index, excludeTaskID)
	if err != nil {
		return err
	}
	if exists {
		return apperr.Newf(apperr.Validation, "index %d already exists", *index)
	}
	return nil
}

func dedupe(ids []int64) []int64 {
	if len(ids) == 0 {
		return []int64{}
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
