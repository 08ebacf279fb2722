package model

import "time"

// Task references its creator, assignee, status and labels by identifier.
// Version backs the compare-and-swap check on update.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Index       *int64    `json:"index,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatorID   int64     `json:"creatorId"`
	AssigneeID  *int64    `json:"assigneeId,omitempty"`
	StatusID    int64     `json:"-"`
	StatusSlug  string    `json:"status"`
	LabelIDs    []int64   `json:"labelIds"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HasLabel reports whether the task carries the given label.
func (t *Task) HasLabel(labelID int64) bool {
	for _, id := range t.LabelIDs {
		if id == labelID {
			return true
		}
	}
	return false
}
