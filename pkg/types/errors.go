package types

import "errors"

var (
	ErrFoodItemNotFound     = errors.New("food item not found")
	ErrTaskNotFound         = errors.New("task not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrProfileNotFound      = errors.New("profile not found")

	// ErrInvalidTransition is returned when a requested status change
	// violates the lifecycle state machine, including losing an
	// acceptance race.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNotPermitted is returned when the caller's role does not allow
	// the operation.
	ErrNotPermitted = errors.New("operation not permitted for caller role")
)
