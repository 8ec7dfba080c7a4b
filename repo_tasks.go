package tasks

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Tasks is the task repository. Every read and mutation below /api/tasks is
// scoped by owner id: a task that exists but belongs to someone else behaves
// exactly like a task that does not exist.
type Tasks interface {
	Create(ctx context.Context, task *Task) (*Task, error)
	CreateTx(ctx context.Context, tx bun.IDB, task *Task) (*Task, error)
	GetOwned(ctx context.Context, ownerID, taskID int64) (*Task, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*Task, error)
	UpdateOwned(ctx context.Context, ownerID, taskID int64, patch TaskPatch) (*Task, error)
	DeleteOwned(ctx context.Context, ownerID, taskID int64) error
	List(ctx context.Context) ([]*Task, error)
}

type tasksRepo struct {
	db *bun.DB
}

var _ Tasks = (*tasksRepo)(nil)

func NewTasksRepository(db *bun.DB) Tasks {
	return &tasksRepo{db: db}
}

func (a *tasksRepo) Create(ctx context.Context, task *Task) (*Task, error) {
	return a.CreateTx(ctx, a.db, task)
}

func (a *tasksRepo) CreateTx(ctx context.Context, tx bun.IDB, task *Task) (*Task, error) {
	if _, err := tx.NewInsert().Model(task).Returning("*").Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create task")
	}
	return task, nil
}

func (a *tasksRepo) GetOwned(ctx context.Context, ownerID, taskID int64) (*Task, error) {
	record := &Task{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", taskID).
		Where("?TableAlias.user_id = ?", ownerID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load task")
	}

	return record, nil
}

func (a *tasksRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*Task, error) {
	records := []*Task{}
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", ownerID).
		Order("tsk.id DESC").
		Scan(ctx)

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list tasks")
	}

	return records, nil
}

// UpdateOwned applies a partial update. The WHERE clause carries both the task
// id and the owner id so the zero-rows outcome covers absence and foreign
// ownership alike.
func (a *tasksRepo) UpdateOwned(ctx context.Context, ownerID, taskID int64, patch TaskPatch) (*Task, error) {
	if patch.Empty() {
		return nil, ErrNothingToUpdate
	}

	now := time.Now()
	q := a.db.NewUpdate().
		Model((*Task)(nil)).
		Set("updated_at = ?", now).
		Where("?TableAlias.id = ?", taskID).
		Where("?TableAlias.user_id = ?", ownerID)

	if patch.Title != nil {
		q.Set("title = ?", *patch.Title)
	}
	if patch.Description != nil {
		q.Set("description = ?", *patch.Description)
	}
	if patch.Done != nil {
		q.Set("done = ?", *patch.Done)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update task")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update task")
	}

	if affected == 0 {
		return nil, ErrTaskNotFound
	}

	return a.GetOwned(ctx, ownerID, taskID)
}

func (a *tasksRepo) DeleteOwned(ctx context.Context, ownerID, taskID int64) error {
	res, err := a.db.NewDelete().
		Model((*Task)(nil)).
		Where("?TableAlias.id = ?", taskID).
		Where("?TableAlias.user_id = ?", ownerID).
		Exec(ctx)

	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete task")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete task")
	}

	if affected == 0 {
		return ErrTaskNotFound
	}

	return nil
}

// List returns every task across all owners, newest first. Admin surface only.
func (a *tasksRepo) List(ctx context.Context) ([]*Task, error) {
	records := []*Task{}
	err := a.db.NewSelect().
		Model(&records).
		Order("tsk.id DESC").
		Scan(ctx)

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list tasks")
	}

	return records, nil
}
