package model

// Principal is the authenticated identity for one request. It is derived from
// the bearer credential and never persisted.
type Principal struct {
	UserID   int64
	Email    string
	Elevated bool
}

// CanActOn reports whether the principal owns the task as creator or assignee.
func (p Principal) CanActOn(t *Task) bool {
	if p.UserID == t.CreatorID {
		return true
	}
	return t.AssigneeID != nil && *t.AssigneeID == p.UserID
}
