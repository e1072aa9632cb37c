// Package lifecycle is the single authority for state transitions
// across a FoodItem and its paired Task, and for the events each
// transition produces.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodbridge/internal/utils"
	"foodbridge/pkg/types"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// Scheduled pickup defaults to one day after acceptance. The time is a
// default the volunteer and donor coordinate around, not a hard slot.
const pickupLeadTime = 24 * time.Hour

// Store is the transactional slice of the store layer the engine
// drives. Every mutating call applies the paired FoodItem/Task writes
// as one atomic unit and enforces the transition condition at write
// time.
type Store interface {
	FoodItem(ctx context.Context, itemID string) (*types.FoodItem, error)
	Task(ctx context.Context, taskID string) (*types.Task, error)
	CreateDonation(ctx context.Context, item *types.FoodItem, task *types.Task) error
	AcceptTask(ctx context.Context, taskID, volunteerID string, pickupAt time.Time) (*types.Task, error)
	CompleteTask(ctx context.Context, taskID, volunteerID string) (*types.Task, error)
}

type ProfileStore interface {
	Profile(ctx context.Context, profileID string) (*types.Profile, error)
}

// EventSink receives lifecycle events after the transition is durable.
// Delivery is best-effort; the sink must not fail the operation.
type EventSink interface {
	Dispatch(ctx context.Context, event types.Event)
}

type Engine struct {
	logger   *logrus.Logger
	store    Store
	profiles ProfileStore
	events   EventSink
	validate *validator.Validate

	now func() time.Time
}

func New(logger *logrus.Logger, store Store, profiles ProfileStore, events EventSink) *Engine {
	return &Engine{
		logger:   logger,
		store:    store,
		profiles: profiles,
		events:   events,
		validate: validator.New(),
		now:      time.Now,
	}
}

// CreateDonationInput carries the donor-supplied listing fields. The
// expiry date is accepted as-is; flagging past dates is a concern of
// the presentation layer.
type CreateDonationInput struct {
	Title          string `validate:"required"`
	Description    string `validate:"required"`
	Quantity       string    `validate:"required"`
	FoodType       string    `validate:"required"`
	ExpiryDate     time.Time `validate:"required"`
	PickupLocation string    `validate:"required"`
	PickupTimeFrom time.Time `validate:"required"`
	PickupTimeTo   time.Time `validate:"required"`
	Image          *string
}

// CreateDonation lists a new donation for a donor. The FoodItem starts
// available with a paired pending Task, created atomically. Emits
// FoodAvailable.
func (e *Engine) CreateDonation(ctx context.Context, donorID string, input CreateDonationInput) (*types.FoodItem, error) {

	donor, err := e.requireRole(ctx, donorID, types.RoleDonor)
	if err != nil {
		return nil, err
	}

	if err := e.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid donation input: %w", err)
	}

	now := e.now()

	item := &types.FoodItem{
		ID:             utils.NanoID(),
		DonorID:        donorID,
		Title:          input.Title,
		Description:    input.Description,
		Quantity:       input.Quantity,
		FoodType:       input.FoodType,
		ExpiryDate:     input.ExpiryDate,
		PickupLocation: input.PickupLocation,
		PickupTimeFrom: input.PickupTimeFrom,
		PickupTimeTo:   input.PickupTimeTo,
		Status:         types.FoodStatusAvailable,
		Image:          input.Image,
		CreatedAt:      now,
	}

	task := &types.Task{
		ID:         utils.NanoID(),
		FoodItemID: item.ID,
		Status:     types.TaskStatusPending,
		CreatedAt:  now,
	}

	if err := e.store.CreateDonation(ctx, item, task); err != nil {
		return nil, err
	}

	item.DonorName = donor.Name

	e.dispatch(ctx, types.FoodAvailable{Item: item})

	return item, nil
}

// AcceptTask claims a pending task for a volunteer and assigns the
// paired item. The losing side of a concurrent acceptance gets
// ErrInvalidTransition. Emits TaskAccepted.
func (e *Engine) AcceptTask(ctx context.Context, volunteerID, taskID string) (*types.Task, error) {

	if _, err := e.requireRole(ctx, volunteerID, types.RoleVolunteer); err != nil {
		return nil, err
	}

	task, err := e.store.AcceptTask(ctx, taskID, volunteerID, e.now().Add(pickupLeadTime))
	if err != nil {
		return nil, err
	}

	e.dispatchWithItem(ctx, task, func(item *types.FoodItem) types.Event {
		return types.TaskAccepted{Task: task, Item: item}
	})

	return task, nil
}

// CompleteTask completes an accepted task; only the assigned volunteer
// may do so. Emits TaskCompleted.
func (e *Engine) CompleteTask(ctx context.Context, volunteerID, taskID string) (*types.Task, error) {

	if _, err := e.requireRole(ctx, volunteerID, types.RoleVolunteer); err != nil {
		return nil, err
	}

	task, err := e.store.CompleteTask(ctx, taskID, volunteerID)
	if err != nil {
		return nil, err
	}

	e.dispatchWithItem(ctx, task, func(item *types.FoodItem) types.Event {
		return types.TaskCompleted{Task: task, Item: item}
	})

	return task, nil
}

func (e *Engine) requireRole(ctx context.Context, profileID string, role types.Role) (*types.Profile, error) {
	profile, err := e.profiles.Profile(ctx, profileID)
	if err != nil {
		if errors.Is(err, types.ErrProfileNotFound) {
			return nil, types.ErrNotPermitted
		}
		return nil, err
	}

	if profile.Role != role {
		return nil, types.ErrNotPermitted
	}

	return profile, nil
}

// dispatchWithItem loads the paired item for the notification payload.
// The transition is already durable here, so a failed read only costs
// the notification.
func (e *Engine) dispatchWithItem(ctx context.Context, task *types.Task, build func(item *types.FoodItem) types.Event) {
	if e.events == nil {
		return
	}

	item, err := e.store.FoodItem(ctx, task.FoodItemID)
	if err != nil {
		e.logger.WithError(err).
			WithField("task_id", task.ID).
			WithField("food_item_id", task.FoodItemID).
			Warn("transition applied but food item could not be loaded for notification")
		return
	}

	e.dispatch(ctx, build(item))
}

func (e *Engine) dispatch(ctx context.Context, event types.Event) {
	if e.events == nil {
		return
	}
	e.events.Dispatch(ctx, event)
}
