package model

import "time"

// TaskStatus identity is opaque to the task lifecycle: any status may follow
// any status.
type TaskStatus struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
}
