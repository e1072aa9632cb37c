package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"foodbridge/internal/utils"
	"foodbridge/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskTableName = "foodbridge.tasks"

var taskColumns = utils.StructTagValues(types.Task{})

type TaskRepository struct {
	db DBTX
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: pool}
}

func (r *TaskRepository) WithTx(tx pgx.Tx) *TaskRepository {
	return &TaskRepository{db: tx}
}

func (r *TaskRepository) Task(ctx context.Context, taskID string) (*types.Task, error) {

	query, args, err := psql().Select(taskColumns...).From(taskTableName).
		Where(sq.Eq{"id": taskID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate task query: %w", err)
	}

	var task = new(types.Task)
	err = pgxscan.Get(ctx, r.db, task, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to fetch task: %w", err)
	}

	return task, nil
}

func (r *TaskRepository) Tasks(ctx context.Context) ([]*types.Task, error) {

	query, args, err := psql().Select(taskColumns...).From(taskTableName).
		OrderBy("created_at desc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks query: %w", err)
	}

	var tasks = make([]*types.Task, 0)
	err = pgxscan.Select(ctx, r.db, &tasks, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepository) TasksByVolunteer(ctx context.Context, volunteerID string) ([]*types.Task, error) {

	query, args, err := psql().Select(taskColumns...).From(taskTableName).
		Where(sq.Eq{"volunteer_id": volunteerID}).
		OrderBy("created_at desc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate volunteer tasks query: %w", err)
	}

	var tasks = make([]*types.Task, 0)
	err = pgxscan.Select(ctx, r.db, &tasks, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch volunteer tasks: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepository) TaskByFoodItem(ctx context.Context, foodItemID string) (*types.Task, error) {

	query, args, err := psql().Select(taskColumns...).From(taskTableName).
		Where(sq.Eq{"food_item_id": foodItemID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate task-by-item query: %w", err)
	}

	var task = new(types.Task)
	err = pgxscan.Get(ctx, r.db, task, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to fetch task by food item: %w", err)
	}

	return task, nil
}

func (r *TaskRepository) Create(ctx context.Context, task *types.Task) error {

	if task.ID == "" {
		task.ID = utils.NanoID()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}

	taskMap := utils.StructToMap(task)

	query, args, err := psql().Insert(taskTableName).SetMap(taskMap).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert task query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create task")
}

// MarkAccepted claims a pending task for a volunteer. The update is
// conditional on the task still being pending with no volunteer, so
// concurrent acceptances resolve to exactly one winner. Returns nil
// when the condition did not hold.
func (r *TaskRepository) MarkAccepted(ctx context.Context, taskID, volunteerID string, pickupAt time.Time) (*types.Task, error) {

	query, args, err := psql().Update(taskTableName).
		Set("volunteer_id", volunteerID).
		Set("status", types.TaskStatusAccepted).
		Set("scheduled_pickup_time", pickupAt).
		Where(sq.Eq{"id": taskID, "status": types.TaskStatusPending, "volunteer_id": nil}).
		Suffix("RETURNING " + strings.Join(taskColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate accept task query: %w", err)
	}

	var task = new(types.Task)
	err = pgxscan.Get(ctx, r.db, task, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to accept task: %w", err)
	}

	return task, nil
}

// MarkCompleted completes an accepted task, conditional on the task
// being assigned to the given volunteer. Returns nil when the
// condition did not hold.
func (r *TaskRepository) MarkCompleted(ctx context.Context, taskID, volunteerID string) (*types.Task, error) {

	query, args, err := psql().Update(taskTableName).
		Set("status", types.TaskStatusCompleted).
		Where(sq.Eq{"id": taskID, "status": types.TaskStatusAccepted, "volunteer_id": volunteerID}).
		Suffix("RETURNING " + strings.Join(taskColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate complete task query: %w", err)
	}

	var task = new(types.Task)
	err = pgxscan.Get(ctx, r.db, task, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to complete task: %w", err)
	}

	return task, nil
}
