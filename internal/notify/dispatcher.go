// Package notify turns lifecycle events into persisted notification
// records and serves the notification feed.
package notify

import (
	"context"
	"fmt"

	"foodbridge/internal/utils"
	"foodbridge/pkg/types"

	"github.com/sirupsen/logrus"
)

type NotificationStore interface {
	Create(ctx context.Context, notification *types.Notification) error
	ByUser(ctx context.Context, userID string) ([]*types.Notification, error)
	MarkRead(ctx context.Context, notificationID string) error
	UnreadCount(ctx context.Context, userID string) (int, error)
}

type RecipientStore interface {
	ProfilesByRoles(ctx context.Context, roles []types.Role) ([]*types.Profile, error)
}

type Dispatcher struct {
	logger        *logrus.Logger
	notifications NotificationStore
	profiles      RecipientStore
}

func New(logger *logrus.Logger, notifications NotificationStore, profiles RecipientStore) *Dispatcher {
	return &Dispatcher{
		logger:        logger,
		notifications: notifications,
		profiles:      profiles,
	}
}

// Dispatch resolves the recipient set for an event and writes one
// notification row per recipient. Delivery is best-effort relative to
// the state transition: a failed insert is logged and dropped, never
// surfaced to the acting user.
func (d *Dispatcher) Dispatch(ctx context.Context, event types.Event) {
	switch ev := event.(type) {
	case types.FoodAvailable:
		d.dispatchFoodAvailable(ctx, ev)
	case types.TaskAccepted:
		d.insert(ctx, event, &types.Notification{
			UserID:    ev.Item.DonorID,
			Message:   fmt.Sprintf("A volunteer has accepted to pick up your donation: %s", ev.Item.Title),
			Type:      types.NotificationTaskAssigned,
			ActionURL: utils.StringPtr("/food/" + ev.Item.ID),
		})
	case types.TaskCompleted:
		d.insert(ctx, event, &types.Notification{
			UserID:    ev.Item.DonorID,
			Message:   fmt.Sprintf("Your donation has been picked up: %s", ev.Item.Title),
			Type:      types.NotificationPickupScheduled,
			ActionURL: utils.StringPtr("/food/" + ev.Item.ID),
		})
	default:
		d.logger.WithField("event", event.EventName()).Warn("no dispatch rule for event")
	}
}

// dispatchFoodAvailable fans out to every volunteer and beneficiary.
// Volunteers are pointed at the task list, beneficiaries at the item.
func (d *Dispatcher) dispatchFoodAvailable(ctx context.Context, ev types.FoodAvailable) {
	recipients, err := d.profiles.ProfilesByRoles(ctx, []types.Role{types.RoleVolunteer, types.RoleBeneficiary})
	if err != nil {
		d.logger.WithError(err).
			WithField("event", ev.EventName()).
			WithField("food_item_id", ev.Item.ID).
			Error("failed to resolve recipients for event")
		return
	}

	for _, recipient := range recipients {
		actionURL := "/food/" + ev.Item.ID
		if recipient.Role == types.RoleVolunteer {
			actionURL = "/tasks"
		}

		d.insert(ctx, ev, &types.Notification{
			UserID:    recipient.ID,
			Message:   fmt.Sprintf("New food available: %s", ev.Item.Title),
			Type:      types.NotificationFoodAvailable,
			ActionURL: utils.StringPtr(actionURL),
		})
	}
}

func (d *Dispatcher) insert(ctx context.Context, event types.Event, notification *types.Notification) {
	if err := d.notifications.Create(ctx, notification); err != nil {
		d.logger.WithError(err).
			WithField("event", event.EventName()).
			WithField("user_id", notification.UserID).
			Error("failed to write notification")
	}
}

// MarkAsRead is idempotent; re-marking a read notification is a no-op.
func (d *Dispatcher) MarkAsRead(ctx context.Context, notificationID string) error {
	return d.notifications.MarkRead(ctx, notificationID)
}

// ListForUser returns the user's notifications, newest first.
func (d *Dispatcher) ListForUser(ctx context.Context, userID string) ([]*types.Notification, error) {
	return d.notifications.ByUser(ctx, userID)
}

func (d *Dispatcher) UnreadCount(ctx context.Context, userID string) (int, error) {
	return d.notifications.UnreadCount(ctx, userID)
}
