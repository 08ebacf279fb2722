package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskhub/internal/apperr"
	"taskhub/internal/events"
	"taskhub/internal/model"
	"taskhub/internal/query"
	"taskhub/pkg/metrics"
	"taskhub/pkg/outbox"
)

const taskColumns = `
	t.id, t.title, t.index_num, t.description, t.creator_id, t.assignee_id,
	t.status_id, s.slug, t.version, t.created_at, t.updated_at,
	COALESCE(array_agg(tl.label_id) FILTER (WHERE tl.label_id IS NOT NULL), '{}')
`

const taskJoins = `
	FROM tasks t
	JOIN task_statuses s ON s.id = t.status_id
	LEFT JOIN task_labels tl ON tl.task_id = t.id
`

type TaskRepository struct {
	db     *pgxpool.Pool
	outbox *outbox.Repository
	logger *zap.Logger
}

func NewTaskRepository(db *pgxpool.Pool, outboxRepo *outbox.Repository, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{db: db, outbox: outboxRepo, logger: logger}
}

// Create inserts the task, its label associations and a task.created outbox
// event in one transaction.
func (r *TaskRepository) Create(ctx context.Context, t *model.Task) error {
	start := time.Now()
	defer func() {
		metrics.RecordDBQueryDuration("create", "tasks", time.Since(start))
	}()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return apperr.FromStore(err, "task")
	}
	defer tx.Rollback(ctx)

	q := `
        INSERT INTO tasks (title, index_num, description, creator_id, assignee_id, status_id, version)
        VALUES ($1, $2, $3, $4, $5, $6, 1)
        RETURNING id, version, created_at, updated_at
    `
	err = tx.QueryRow(ctx, q,
		t.Title,
		t.Index,
		t.Description,
		t.CreatorID,
		t.AssigneeID,
		t.StatusID,
	).Scan(&t.ID, &t.Version, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert task",
			zap.Error(err),
			zap.Int64("creator_id", t.CreatorID),
		)
		return apperr.FromStore(err, "task")
	}

	if err := replaceLabels(ctx, tx, t.ID, t.LabelIDs); err != nil {
		return apperr.FromStore(err, "task")
	}

	err = outbox.InsertEventInTx(ctx, tx, r.outbox, events.AggregateTask, &t.ID, events.TaskCreated,
		events.TaskCreatedPayload{
			TaskID:    t.ID,
			Title:     t.Title,
			CreatorID: t.CreatorID,
			Status:    t.StatusSlug,
		})
	if err != nil {
		return apperr.FromStore(err, "task")
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.FromStore(err, "task")
	}

	r.logger.Info("Task inserted",
		zap.Int64("task_id", t.ID),
		zap.Int64("creator_id", t.CreatorID),
	)
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	q := `SELECT ` + taskColumns + taskJoins + `
		WHERE t.id = $1
		GROUP BY t.id, s.slug
	`
	var t model.Task
	err := r.db.QueryRow(ctx, q, id).Scan(
		&t.ID,
		&t.Title,
		&t.Index,
		&t.Description,
		&t.CreatorID,
		&t.AssigneeID,
		&t.StatusID,
		&t.StatusSlug,
		&t.Version,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.LabelIDs,
	)
	if err != nil {
		return nil, apperr.FromStore(err, "task")
	}
	return &t, nil
}

// Update persists the task with a compare-and-swap on version. A stale
// expectedVersion yields Conflict; a missing row yields NotFound.
func (r *TaskRepository) Update(ctx context.Context, t *model.Task, expectedVersion int64) error {
	start := time.Now()
	defer func() {
		metrics.RecordDBQueryDuration("update", "tasks", time.Since(start))
	}()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return apperr.FromStore(err, "task")
	}
	defer tx.Rollback(ctx)

	q := `
        UPDATE tasks
        SET title = $1, index_num = $2, description = $3, assignee_id = $4,
            status_id = $5, version = version + 1,
            updated_at = GREATEST(NOW(), updated_at)
        WHERE id = $6 AND version = $7
        RETURNING version, updated_at
    `
	err = tx.QueryRow(ctx, q,
		t.Title,
		t.Index,
		t.Description,
		t.AssigneeID,
		t.StatusID,
		t.ID,
		expectedVersion,
	).Scan(&t.Version, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var current int64
			checkErr := tx.QueryRow(ctx, `SELECT version FROM tasks WHERE id = $1`, t.ID).Scan(&current)
			if checkErr != nil {
				return apperr.FromStore(checkErr, "task")
			}
			return apperr.Newf(apperr.Conflict, "task %d was modified concurrently", t.ID)
		}
		return apperr.FromStore(err, "task")
	}

	if err := clearLabels(ctx, tx, t.ID); err != nil {
		return apperr.FromStore(err, "task")
	}
	if err := replaceLabels(ctx, tx, t.ID, t.LabelIDs); err != nil {
		return apperr.FromStore(err, "task")
	}

	err = outbox.InsertEventInTx(ctx, tx, r.outbox, events.AggregateTask, &t.ID, events.TaskUpdated,
		events.TaskUpdatedPayload{TaskID: t.ID, Version: t.Version})
	if err != nil {
		return apperr.FromStore(err, "task")
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.FromStore(err, "task")
	}

	r.logger.Info("Task updated",
		zap.Int64("task_id", t.ID),
		zap.Int64("version", t.Version),
	)
	return nil
}

// Delete removes the task and its label associations.
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return apperr.FromStore(err, "task")
	}
	defer tx.Rollback(ctx)

	if err := clearLabels(ctx, tx, id); err != nil {
		return apperr.FromStore(err, "task")
	}

	tag, err := tx.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return apperr.FromStore(err, "task")
	}
	if tag.RowsAffected() == 0 {
		return apperr.Newf(apperr.NotFound, "task %d not found", id)
	}

	err = outbox.InsertEventInTx(ctx, tx, r.outbox, events.AggregateTask, &id, events.TaskDeleted,
		events.TaskDeletedPayload{TaskID: id})
	if err != nil {
		return apperr.FromStore(err, "task")
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.FromStore(err, "task")
	}

	r.logger.Info("Task deleted", zap.Int64("task_id", id))
	return nil
}

// FindMatching executes the predicate with stable pagination: created_at
// ascending, ties broken by id, so page boundaries are deterministic under
// concurrent inserts.
func (r *TaskRepository) FindMatching(ctx context.Context, c query.Conjunction, page query.Page) ([]model.Task, int, error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQueryDuration("find_matching", "tasks", time.Since(start))
	}()

	page = page.Normalize()
	where, args := c.SQL(1)

	// Count and page run on one snapshot so the total always agrees with
	// the items of this fetch.
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, 0, apperr.FromStore(err, "task")
	}
	defer tx.Rollback(ctx)

	var total int
	countQ := `SELECT COUNT(*) FROM tasks t WHERE ` + where
	if err := tx.QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, apperr.FromStore(err, "task")
	}

	n := len(args)
	listQ := `SELECT ` + taskColumns + taskJoins + `
		WHERE ` + where + `
		GROUP BY t.id, s.slug
		ORDER BY t.created_at ASC, t.id ASC
		LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	listArgs := append(append([]any(nil), args...), page.Limit(), page.Offset())

	rows, err := tx.Query(ctx, listQ, listArgs...)
	if err != nil {
		return nil, 0, apperr.FromStore(err, "task")
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(
			&t.ID,
			&t.Title,
			&t.Index,
			&t.Description,
			&t.CreatorID,
			&t.AssigneeID,
			&t.StatusID,
			&t.StatusSlug,
			&t.Version,
			&t.CreatedAt,
			&t.UpdatedAt,
			&t.LabelIDs,
		); err != nil {
			return nil, 0, apperr.FromStore(err, "task")
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.FromStore(err, "task")
	}
	rows.Close()

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, apperr.FromStore(err, "task")
	}

	return tasks, total, nil
}

// ExistsByStatus reports whether any task references the status.
func (r *TaskRepository) ExistsByStatus(ctx context.Context, statusID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tasks WHERE status_id = $1)`, statusID).Scan(&exists)
	if err != nil {
		return false, apperr.FromStore(err, "task")
	}
	return exists, nil
}

// ExistsByCreator reports whether the user created any task.
func (r *TaskRepository) ExistsByCreator(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tasks WHERE creator_id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, apperr.FromStore(err, "task")
	}
	return exists, nil
}

// ExistsByIndex reports whether another task already uses the index.
func (r *TaskRepository) ExistsByIndex(ctx context.Context, index int64, excludeTaskID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tasks WHERE index_num = $1 AND id <> $2)`,
		index, excludeTaskID).Scan(&exists)
	if err != nil {
		return false, apperr.FromStore(err, "task")
	}
	return exists, nil
}

func clearLabels(ctx context.Context, tx pgx.Tx, taskID int64) error {
	_, err := tx.Exec(ctx, `DELETE FROM task_labels WHERE task_id = $1`, taskID)
	return err
}

func replaceLabels(ctx context.Context, tx pgx.Tx, taskID int64, labelIDs []int64) error {
	for _, labelID := range labelIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO task_labels (task_id, label_id) VALUES ($1, $2)`,
			taskID, labelID)
		if err != nil {
			return err
		}
	}
	return nil
}
