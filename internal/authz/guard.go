package authz

import (
	"taskhub/internal/apperr"
	"taskhub/internal/model"
)

// Action names an operation a principal may attempt.
type Action string

const (
	CreateTask   Action = "task:create"
	ReadTask     Action = "task:read"
	UpdateTask   Action = "task:update"
	DeleteTask   Action = "task:delete"
	ListTasks    Action = "task:list"
	ManageStatus Action = "status:manage"
	ManageLabel  Action = "label:manage"
	ManageUser   Action = "user:manage"
)

type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) Allowed() bool {
	return d == Allow
}

// Decide is a pure function of the principal, the action and the resource
// snapshot. Task-scoped actions require the task; management actions ignore it.
func Decide(p model.Principal, action Action, task *model.Task) Decision {
	switch action {
	case CreateTask, ListTasks:
		return Allow
	case ReadTask, UpdateTask, DeleteTask:
		if p.Elevated {
			return Allow
		}
		if task == nil {
			return Deny
		}
		if p.CanActOn(task) {
			return Allow
		}
		return Deny
	case ManageStatus, ManageLabel, ManageUser:
		if p.Elevated {
			return Allow
		}
		return Deny
	default:
		return Deny
	}
}

// Require converts a denial into a Forbidden error.
func Require(p model.Principal, action Action, task *model.Task) error {
	if Decide(p, action, task).Allowed() {
		return nil
	}
	return apperr.Newf(apperr.Forbidden, "action %s denied", action)
}
