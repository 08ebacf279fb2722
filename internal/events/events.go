package events

// Routing keys for task lifecycle events published through the outbox.
const (
	TaskCreated = "task.created"
	TaskUpdated = "task.updated"
	TaskDeleted = "task.deleted"
)

const AggregateTask = "task"

type TaskCreatedPayload struct {
	TaskID    int64  `json:"task_id"`
	Title     string `json:"title"`
	CreatorID int64  `json:"creator_id"`
	Status    string `json:"status"`
}

type TaskUpdatedPayload struct {
	TaskID  int64 `json:"task_id"`
	Version int64 `json:"version"`
}

type TaskDeletedPayload struct {
	TaskID int64 `json:"task_id"`
}
