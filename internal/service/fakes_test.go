package service

import (
	"context"
	"sort"
	"time"

	"taskhub/internal/apperr"
	"taskhub/internal/model"
	"taskhub/internal/query"
)

// In-memory fakes for the store interfaces. They model the persistence
// semantics the services rely on: identity allocation, version CAS and
// NotFound mapping.

type fakeTaskStore struct {
	nextID int64
	tasks  map[int64]*model.Task

	// FindMatching is not a SQL engine; it records what the service asked
	// for and pages over all tasks in creation order.
	lastConjunctionSQL  string
	lastConjunctionArgs []any
	lastPage            query.Page
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{nextID: 1, tasks: make(map[int64]*model.Task)}
}

func (f *fakeTaskStore) Create(_ context.Context, t *model.Task) error {
	t.ID = f.nextID
	f.nextID++
	t.Version = 1
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	clone := *t
	f.tasks[t.ID] = &clone
	return nil
}

func (f *fakeTaskStore) GetByID(_ context.Context, id int64) (*model.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, apperr.Newf(apperr.NotFound, "task %d not found", id)
	}
	clone := *t
	return &clone, nil
}

func (f *fakeTaskStore) Update(_ context.Context, t *model.Task, expectedVersion int64) error {
	stored, ok := f.tasks[t.ID]
	if !ok {
		return apperr.Newf(apperr.NotFound, "task %d not found", t.ID)
	}
	if stored.Version != expectedVersion {
		return apperr.Newf(apperr.Conflict, "task %d was modified concurrently", t.ID)
	}
	t.Version = stored.Version + 1
	t.UpdatedAt = time.Now()
	clone := *t
	f.tasks[t.ID] = &clone
	return nil
}

func (f *fakeTaskStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.tasks[id]; !ok {
		return apperr.Newf(apperr.NotFound, "task %d not found", id)
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeTaskStore) FindMatching(_ context.Context, c query.Conjunction, page query.Page) ([]model.Task, int, error) {
	f.lastConjunctionSQL, f.lastConjunctionArgs = c.SQL(1)
	f.lastPage = page

	ids := make([]int64, 0, len(f.tasks))
	for id := range f.tasks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var all []model.Task
	for _, id := range ids {
		all = append(all, *f.tasks[id])
	}

	total := len(all)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Limit()
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (f *fakeTaskStore) ExistsByStatus(_ context.Context, statusID int64) (bool, error) {
	for _, t := range f.tasks {
		if t.StatusID == statusID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTaskStore) ExistsByCreator(_ context.Context, userID int64) (bool, error) {
	for _, t := range f.tasks {
		if t.CreatorID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTaskStore) ExistsByIndex(_ context.Context, index int64, excludeTaskID int64) (bool, error) {
	for _, t := range f.tasks {
		if t.ID == excludeTaskID {
			continue
		}
		if t.Index != nil && *t.Index == index {
			return true, nil
		}
	}
	return false, nil
}

type fakeUserStore struct {
	nextID int64
	users  map[int64]*model.User

	// tasks mirrors the shared store so DeleteUnassigning can model the
	// transactional unassign-then-delete.
	tasks *fakeTaskStore
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{nextID: 1, users: make(map[int64]*model.User)}
}

func (f *fakeUserStore) Create(_ context.Context, u *model.User) error {
	u.ID = f.nextID
	f.nextID++
	u.CreatedAt = time.Now()
	clone := *u
	f.users[u.ID] = &clone
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.Newf(apperr.NotFound, "user %d not found", id)
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, apperr.Newf(apperr.NotFound, "user %s not found", email)
}

func (f *fakeUserStore) List(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUserStore) Update(_ context.Context, u *model.User) error {
	if _, ok := f.users[u.ID]; !ok {
		return apperr.Newf(apperr.NotFound, "user %d not found", u.ID)
	}
	clone := *u
	f.users[u.ID] = &clone
	return nil
}

// DeleteUnassigning mirrors the repository's transactional behavior: a
// missing user fails before any task is touched.
func (f *fakeUserStore) DeleteUnassigning(_ context.Context, id int64) error {
	if _, ok := f.users[id]; !ok {
		return apperr.Newf(apperr.NotFound, "user %d not found", id)
	}
	if f.tasks != nil {
		for _, t := range f.tasks.tasks {
			if t.AssigneeID != nil && *t.AssigneeID == id {
				t.AssigneeID = nil
			}
		}
	}
	delete(f.users, id)
	return nil
}

type fakeStatusStore struct {
	nextID   int64
	statuses map[int64]*model.TaskStatus
}

func newFakeStatusStore() *fakeStatusStore {
	return &fakeStatusStore{nextID: 1, statuses: make(map[int64]*model.TaskStatus)}
}

func (f *fakeStatusStore) Create(_ context.Context, s *model.TaskStatus) error {
	s.ID = f.nextID
	f.nextID++
	s.CreatedAt = time.Now()
	clone := *s
	f.statuses[s.ID] = &clone
	return nil
}

func (f *fakeStatusStore) GetByID(_ context.Context, id int64) (*model.TaskStatus, error) {
	s, ok := f.statuses[id]
	if !ok {
		return nil, apperr.Newf(apperr.NotFound, "task status %d not found", id)
	}
	clone := *s
	return &clone, nil
}

func (f *fakeStatusStore) GetBySlug(_ context.Context, slug string) (*model.TaskStatus, error) {
	for _, s := range f.statuses {
		if s.Slug == slug {
			clone := *s
			return &clone, nil
		}
	}
	return nil, apperr.Newf(apperr.NotFound, "task status %s not found", slug)
}

func (f *fakeStatusStore) List(_ context.Context) ([]model.TaskStatus, error) {
	var out []model.TaskStatus
	for _, s := range f.statuses {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStatusStore) Update(_ context.Context, s *model.TaskStatus) error {
	if _, ok := f.statuses[s.ID]; !ok {
		return apperr.Newf(apperr.NotFound, "task status %d not found", s.ID)
	}
	clone := *s
	f.statuses[s.ID] = &clone
	return nil
}

func (f *fakeStatusStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.statuses[id]; !ok {
		return apperr.Newf(apperr.NotFound, "task status %d not found", id)
	}
	delete(f.statuses, id)
	return nil
}

func (f *fakeStatusStore) ExistsByName(_ context.Context, name string) (bool, error) {
	for _, s := range f.statuses {
		if s.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStatusStore) ExistsBySlug(_ context.Context, slug string) (bool, error) {
	for _, s := range f.statuses {
		if s.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

type fakeLabelStore struct {
	nextID int64
	labels map[int64]*model.Label

	tasks *fakeTaskStore
}

func newFakeLabelStore() *fakeLabelStore {
	return &fakeLabelStore{nextID: 1, labels: make(map[int64]*model.Label)}
}

func (f *fakeLabelStore) Create(_ context.Context, l *model.Label) error {
	l.ID = f.nextID
	f.nextID++
	l.CreatedAt = time.Now()
	clone := *l
	f.labels[l.ID] = &clone
	return nil
}

func (f *fakeLabelStore) GetByID(_ context.Context, id int64) (*model.Label, error) {
	l, ok := f.labels[id]
	if !ok {
		return nil, apperr.Newf(apperr.NotFound, "label %d not found", id)
	}
	clone := *l
	return &clone, nil
}

func (f *fakeLabelStore) List(_ context.Context) ([]model.Label, error) {
	var out []model.Label
	for _, l := range f.labels {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeLabelStore) CountByIDs(_ context.Context, ids []int64) (int, error) {
	count := 0
	for _, id := range ids {
		if _, ok := f.labels[id]; ok {
			count++
		}
	}
	return count, nil
}

func (f *fakeLabelStore) Update(_ context.Context, l *model.Label) error {
	if _, ok := f.labels[l.ID]; !ok {
		return apperr.Newf(apperr.NotFound, "label %d not found", l.ID)
	}
	clone := *l
	f.labels[l.ID] = &clone
	return nil
}

// DeleteDetaching mirrors the repository's transactional behavior: a missing
// label fails before any association is removed.
func (f *fakeLabelStore) DeleteDetaching(_ context.Context, id int64) error {
	if _, ok := f.labels[id]; !ok {
		return apperr.Newf(apperr.NotFound, "label %d not found", id)
	}
	if f.tasks != nil {
		for _, t := range f.tasks.tasks {
			kept := t.LabelIDs[:0]
			for _, labelID := range t.LabelIDs {
				if labelID != id {
					kept = append(kept, labelID)
				}
			}
			t.LabelIDs = kept
		}
	}
	delete(f.labels, id)
	return nil
}

func (f *fakeLabelStore) ExistsByName(_ context.Context, name string) (bool, error) {
	for _, l := range f.labels {
		if l.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// fakeStatusResolver counts hits and misses so tests can assert on the
// read-through behavior.
type fakeStatusResolver struct {
	entries     map[string]*model.TaskStatus
	hits        int
	misses      int
	invalidated []string
}

func newFakeStatusResolver() *fakeStatusResolver {
	return &fakeStatusResolver{entries: make(map[string]*model.TaskStatus)}
}

func (f *fakeStatusResolver) GetBySlug(_ context.Context, slug string) (*model.TaskStatus, bool) {
	if s, ok := f.entries[slug]; ok {
		f.hits++
		clone := *s
		return &clone, true
	}
	f.misses++
	return nil, false
}

func (f *fakeStatusResolver) Set(_ context.Context, s *model.TaskStatus) {
	clone := *s
	f.entries[s.Slug] = &clone
}

func (f *fakeStatusResolver) Invalidate(_ context.Context, slug string) {
	delete(f.entries, slug)
	f.invalidated = append(f.invalidated, slug)
}
