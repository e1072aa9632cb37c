package lifecycle

import (
	"context"
	"fmt"
	"testing"
	"time"

	"foodbridge/internal/notify"
	"foodbridge/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifications struct {
	created []*types.Notification
}

func (r *recordingNotifications) Create(_ context.Context, notification *types.Notification) error {
	if notification.ID == "" {
		notification.ID = fmt.Sprintf("n-%d", len(r.created)+1)
	}
	r.created = append(r.created, notification)
	return nil
}

func (r *recordingNotifications) ByUser(_ context.Context, userID string) ([]*types.Notification, error) {
	out := make([]*types.Notification, 0)
	for i := len(r.created) - 1; i >= 0; i-- {
		if r.created[i].UserID == userID {
			out = append(out, r.created[i])
		}
	}
	return out, nil
}

func (r *recordingNotifications) MarkRead(_ context.Context, notificationID string) error {
	for _, notification := range r.created {
		if notification.ID == notificationID {
			notification.Read = true
			return nil
		}
	}
	return types.ErrNotificationNotFound
}

func (r *recordingNotifications) UnreadCount(_ context.Context, userID string) (int, error) {
	count := 0
	for _, notification := range r.created {
		if notification.UserID == userID && !notification.Read {
			count++
		}
	}
	return count, nil
}

type roleDirectory struct {
	profiles map[string]*types.Profile
}

func (d *roleDirectory) Profile(_ context.Context, profileID string) (*types.Profile, error) {
	profile, ok := d.profiles[profileID]
	if !ok {
		return nil, types.ErrProfileNotFound
	}
	return profile, nil
}

func (d *roleDirectory) ProfilesByRoles(_ context.Context, roles []types.Role) ([]*types.Profile, error) {
	wanted := map[types.Role]bool{}
	for _, role := range roles {
		wanted[role] = true
	}

	out := make([]*types.Profile, 0)
	for _, id := range []string{"donor-d", "volunteer-v", "beneficiary-b"} {
		if profile, ok := d.profiles[id]; ok && wanted[profile.Role] {
			out = append(out, profile)
		}
	}
	return out, nil
}

// Walks one donation end to end through the real dispatcher: create,
// accept, complete, checking statuses and the donor's notification feed
// at each step.
func TestDonationScenario(t *testing.T) {
	ctx := context.Background()

	store := newMemStore()
	notifications := &recordingNotifications{}
	directory := &roleDirectory{profiles: map[string]*types.Profile{
		"donor-d":       {ID: "donor-d", Name: "Oak Street Bakery", Role: types.RoleDonor},
		"volunteer-v":   {ID: "volunteer-v", Name: "Priya Shah", Role: types.RoleVolunteer},
		"beneficiary-b": {ID: "beneficiary-b", Name: "Community Kitchen", Role: types.RoleBeneficiary},
	}}

	logger := logrus.New()
	logger.SetOutput(testWriter{t})

	dispatcher := notify.New(logger, notifications, directory)
	engine := New(logger, store, directory, dispatcher)
	engine.now = func() time.Time {
		return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	}

	input := validInput()
	input.Title = "Bread"
	input.FoodType = "Bakery"
	input.PickupLocation = "12 Oak St, West End"

	item, err := engine.CreateDonation(ctx, "donor-d", input)
	require.NoError(t, err)
	assert.Equal(t, types.FoodStatusAvailable, item.Status)

	// Creation notifies the volunteer and the beneficiary, not the donor.
	donorFeed, err := dispatcher.ListForUser(ctx, "donor-d")
	require.NoError(t, err)
	assert.Empty(t, donorFeed)
	assert.Len(t, notifications.created, 2)

	var taskID string
	for id, task := range store.tasks {
		require.Equal(t, item.ID, task.FoodItemID)
		require.Equal(t, types.TaskStatusPending, task.Status)
		taskID = id
	}

	task, err := engine.AcceptTask(ctx, "volunteer-v", taskID)
	require.NoError(t, err)
	assert.Equal(t, types.TaskStatusAccepted, task.Status)
	require.NotNil(t, task.VolunteerID)
	assert.Equal(t, "volunteer-v", *task.VolunteerID)

	stored, err := store.FoodItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, types.FoodStatusAssigned, stored.Status)

	donorFeed, err = dispatcher.ListForUser(ctx, "donor-d")
	require.NoError(t, err)
	require.Len(t, donorFeed, 1)
	assert.Equal(t, types.NotificationTaskAssigned, donorFeed[0].Type)
	require.NotNil(t, donorFeed[0].ActionURL)
	assert.Equal(t, "/food/"+item.ID, *donorFeed[0].ActionURL)

	_, err = engine.CompleteTask(ctx, "volunteer-v", taskID)
	require.NoError(t, err)

	stored, err = store.FoodItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, types.FoodStatusCompleted, stored.Status)

	donorFeed, err = dispatcher.ListForUser(ctx, "donor-d")
	require.NoError(t, err)
	require.Len(t, donorFeed, 2)
	assert.Equal(t, types.NotificationPickupScheduled, donorFeed[0].Type)

	count, err := dispatcher.UnreadCount(ctx, "donor-d")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
