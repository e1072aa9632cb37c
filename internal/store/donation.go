package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodbridge/pkg/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DonationStore owns the multi-row writes of the donation lifecycle.
// Each operation runs in one transaction so an observer never sees a
// FoodItem and its Task disagree about the lifecycle phase.
type DonationStore struct {
	pool      *pgxpool.Pool
	foodItems *FoodItemRepository
	tasks     *TaskRepository
}

func NewDonationStore(pool *pgxpool.Pool, foodItems *FoodItemRepository, tasks *TaskRepository) *DonationStore {
	return &DonationStore{
		pool:      pool,
		foodItems: foodItems,
		tasks:     tasks,
	}
}

func (s *DonationStore) FoodItem(ctx context.Context, itemID string) (*types.FoodItem, error) {
	return s.foodItems.FoodItem(ctx, itemID)
}

func (s *DonationStore) Task(ctx context.Context, taskID string) (*types.Task, error) {
	return s.tasks.Task(ctx, taskID)
}

// CreateDonation inserts the food item and its paired pending task as
// one atomic unit.
func (s *DonationStore) CreateDonation(ctx context.Context, item *types.FoodItem, task *types.Task) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.foodItems.WithTx(tx).Create(ctx, item); err != nil {
			return err
		}
		return s.tasks.WithTx(tx).Create(ctx, task)
	})

	if err != nil {
		return fmt.Errorf("failed to create donation pair: %w", err)
	}

	return nil
}

// AcceptTask claims a pending task and flips the paired item to
// assigned in the same transaction. The task update is conditional on
// the pending/no-volunteer state, so a lost race surfaces as
// ErrInvalidTransition rather than a silent overwrite.
func (s *DonationStore) AcceptTask(ctx context.Context, taskID, volunteerID string, pickupAt time.Time) (*types.Task, error) {
	var accepted *types.Task

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tasks := s.tasks.WithTx(tx)

		task, err := tasks.MarkAccepted(ctx, taskID, volunteerID, pickupAt)
		if err != nil {
			return err
		}

		if task == nil {
			if _, err := tasks.Task(ctx, taskID); err != nil {
				return err
			}
			return types.ErrInvalidTransition
		}

		ok, err := s.foodItems.WithTx(tx).SetStatusFrom(ctx, task.FoodItemID, types.FoodStatusAvailable, types.FoodStatusAssigned)
		if err != nil {
			return err
		}
		if !ok {
			// Pairing invariant violated outside this transaction.
			return types.ErrInvalidTransition
		}

		accepted = task
		return nil
	})

	if err != nil {
		if errors.Is(err, types.ErrTaskNotFound) || errors.Is(err, types.ErrInvalidTransition) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to accept task: %w", err)
	}

	return accepted, nil
}

// CompleteTask completes an accepted task and flips the paired item to
// completed in the same transaction. Only the assigned volunteer may
// complete the task.
func (s *DonationStore) CompleteTask(ctx context.Context, taskID, volunteerID string) (*types.Task, error) {
	var completed *types.Task

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tasks := s.tasks.WithTx(tx)

		task, err := tasks.MarkCompleted(ctx, taskID, volunteerID)
		if err != nil {
			return err
		}

		if task == nil {
			existing, err := tasks.Task(ctx, taskID)
			if err != nil {
				return err
			}
			if existing.Status != types.TaskStatusAccepted {
				return types.ErrInvalidTransition
			}
			return types.ErrNotPermitted
		}

		ok, err := s.foodItems.WithTx(tx).SetStatusFrom(ctx, task.FoodItemID, types.FoodStatusAssigned, types.FoodStatusCompleted)
		if err != nil {
			return err
		}
		if !ok {
			return types.ErrInvalidTransition
		}

		completed = task
		return nil
	})

	if err != nil {
		if errors.Is(err, types.ErrTaskNotFound) ||
			errors.Is(err, types.ErrInvalidTransition) ||
			errors.Is(err, types.ErrNotPermitted) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to complete task: %w", err)
	}

	return completed, nil
}
