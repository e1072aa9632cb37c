package lifecycle

import (
	"context"
	"sync"
	"testing"
	"time"

	"foodbridge/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore applies the same conditional-update semantics as the real
// donation store, against in-memory maps.
type memStore struct {
	mu    sync.Mutex
	items map[string]*types.FoodItem
	tasks map[string]*types.Task
}

func newMemStore() *memStore {
	return &memStore{
		items: map[string]*types.FoodItem{},
		tasks: map[string]*types.Task{},
	}
}

func (s *memStore) FoodItem(_ context.Context, itemID string) (*types.FoodItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok {
		return nil, types.ErrFoodItemNotFound
	}
	copied := *item
	return &copied, nil
}

func (s *memStore) Task(_ context.Context, taskID string) (*types.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok {
		return nil, types.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (s *memStore) CreateDonation(_ context.Context, item *types.FoodItem, task *types.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	itemCopy := *item
	taskCopy := *task
	s.items[item.ID] = &itemCopy
	s.tasks[task.ID] = &taskCopy
	return nil
}

func (s *memStore) AcceptTask(_ context.Context, taskID, volunteerID string, pickupAt time.Time) (*types.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok {
		return nil, types.ErrTaskNotFound
	}
	if task.Status != types.TaskStatusPending || task.VolunteerID != nil {
		return nil, types.ErrInvalidTransition
	}

	item, ok := s.items[task.FoodItemID]
	if !ok || item.Status != types.FoodStatusAvailable {
		return nil, types.ErrInvalidTransition
	}

	task.Status = types.TaskStatusAccepted
	task.VolunteerID = &volunteerID
	task.ScheduledPickupTime = &pickupAt
	item.Status = types.FoodStatusAssigned

	copied := *task
	return &copied, nil
}

func (s *memStore) CompleteTask(_ context.Context, taskID, volunteerID string) (*types.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok {
		return nil, types.ErrTaskNotFound
	}
	if task.Status != types.TaskStatusAccepted {
		return nil, types.ErrInvalidTransition
	}
	if task.VolunteerID == nil || *task.VolunteerID != volunteerID {
		return nil, types.ErrNotPermitted
	}

	item, ok := s.items[task.FoodItemID]
	if !ok || item.Status != types.FoodStatusAssigned {
		return nil, types.ErrInvalidTransition
	}

	task.Status = types.TaskStatusCompleted
	item.Status = types.FoodStatusCompleted

	copied := *task
	return &copied, nil
}

type memProfiles struct {
	profiles map[string]*types.Profile
}

func (p *memProfiles) Profile(_ context.Context, profileID string) (*types.Profile, error) {
	profile, ok := p.profiles[profileID]
	if !ok {
		return nil, types.ErrProfileNotFound
	}
	return profile, nil
}

type memSink struct {
	mu     sync.Mutex
	events []types.Event
}

func (s *memSink) Dispatch(_ context.Context, event types.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *memSink) all() []types.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Event{}, s.events...)
}

func testEngine(t *testing.T) (*Engine, *memStore, *memSink) {
	t.Helper()

	store := newMemStore()
	sink := &memSink{}
	profiles := &memProfiles{profiles: map[string]*types.Profile{
		"donor-1":     {ID: "donor-1", Name: "Riverside Bakery", Role: types.RoleDonor},
		"volunteer-1": {ID: "volunteer-1", Name: "Priya Shah", Role: types.RoleVolunteer},
		"volunteer-2": {ID: "volunteer-2", Name: "Marcus Bell", Role: types.RoleVolunteer},
	}}

	logger := logrus.New()
	logger.SetOutput(testWriter{t})

	engine := New(logger, store, profiles, sink)
	engine.now = func() time.Time {
		return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	}

	return engine, store, sink
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func validInput() CreateDonationInput {
	return CreateDonationInput{
		Title:          "Day-old sourdough loaves",
		Description:    "Still fresh, great for toast.",
		Quantity:       "12 loaves",
		FoodType:       "Bakery",
		ExpiryDate:     time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
		PickupLocation: "14 Mill Road, West End",
		PickupTimeFrom: time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC),
		PickupTimeTo:   time.Date(2025, 6, 3, 17, 0, 0, 0, time.UTC),
	}
}

func TestCreateDonation(t *testing.T) {
	ctx := context.Background()

	t.Run("creates item with paired pending task and emits event", func(t *testing.T) {
		engine, store, sink := testEngine(t)

		item, err := engine.CreateDonation(ctx, "donor-1", validInput())
		require.NoError(t, err)
		require.NotNil(t, item)

		assert.Equal(t, types.FoodStatusAvailable, item.Status)
		assert.Equal(t, "donor-1", item.DonorID)
		assert.Equal(t, "Riverside Bakery", item.DonorName)
		assert.NotEmpty(t, item.ID)

		require.Len(t, store.tasks, 1)
		for _, task := range store.tasks {
			assert.Equal(t, item.ID, task.FoodItemID)
			assert.Equal(t, types.TaskStatusPending, task.Status)
			assert.Nil(t, task.VolunteerID)
			assert.Nil(t, task.ScheduledPickupTime)
		}

		events := sink.all()
		require.Len(t, events, 1)
		available, ok := events[0].(types.FoodAvailable)
		require.True(t, ok)
		assert.Equal(t, item.ID, available.Item.ID)
	})

	t.Run("rejects missing required fields before writing", func(t *testing.T) {
		engine, store, sink := testEngine(t)

		input := validInput()
		input.Title = ""

		_, err := engine.CreateDonation(ctx, "donor-1", input)
		require.Error(t, err)

		assert.Empty(t, store.items)
		assert.Empty(t, store.tasks)
		assert.Empty(t, sink.all())
	})

	t.Run("rejects missing description before writing", func(t *testing.T) {
		engine, store, sink := testEngine(t)

		input := validInput()
		input.Description = ""

		_, err := engine.CreateDonation(ctx, "donor-1", input)
		require.Error(t, err)

		assert.Empty(t, store.items)
		assert.Empty(t, store.tasks)
		assert.Empty(t, sink.all())
	})

	t.Run("rejects non-donor", func(t *testing.T) {
		engine, store, _ := testEngine(t)

		_, err := engine.CreateDonation(ctx, "volunteer-1", validInput())
		assert.ErrorIs(t, err, types.ErrNotPermitted)
		assert.Empty(t, store.items)
	})

	t.Run("rejects unknown profile", func(t *testing.T) {
		engine, _, _ := testEngine(t)

		_, err := engine.CreateDonation(ctx, "nobody", validInput())
		assert.ErrorIs(t, err, types.ErrNotPermitted)
	})
}

func TestAcceptTask(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns volunteer and schedules pickup a day out", func(t *testing.T) {
		engine, store, sink := testEngine(t)

		item, err := engine.CreateDonation(ctx, "donor-1", validInput())
		require.NoError(t, err)

		var taskID string
		for id := range store.tasks {
			taskID = id
		}

		task, err := engine.AcceptTask(ctx, "volunteer-1", taskID)
		require.NoError(t, err)

		assert.Equal(t, types.TaskStatusAccepted, task.Status)
		require.NotNil(t, task.VolunteerID)
		assert.Equal(t, "volunteer-1", *task.VolunteerID)
		require.NotNil(t, task.ScheduledPickupTime)
		assert.Equal(t, time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC), *task.ScheduledPickupTime)

		stored, err := store.FoodItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, types.FoodStatusAssigned, stored.Status)

		events := sink.all()
		require.Len(t, events, 2)
		accepted, ok := events[1].(types.TaskAccepted)
		require.True(t, ok)
		assert.Equal(t, item.ID, accepted.Item.ID)
	})

	t.Run("second acceptance fails without side effects", func(t *testing.T) {
		engine, store, sink := testEngine(t)

		_, err := engine.CreateDonation(ctx, "donor-1", validInput())
		require.NoError(t, err)

		var taskID string
		for id := range store.tasks {
			taskID = id
		}

		_, err = engine.AcceptTask(ctx, "volunteer-1", taskID)
		require.NoError(t, err)

		_, err = engine.AcceptTask(ctx, "volunteer-2", taskID)
		assert.ErrorIs(t, err, types.ErrInvalidTransition)

		task, err := store.Task(ctx, taskID)
		require.NoError(t, err)
		require.NotNil(t, task.VolunteerID)
		assert.Equal(t, "volunteer-1", *task.VolunteerID)

		// One FoodAvailable, one TaskAccepted; the losing attempt emits
		// nothing.
		assert.Len(t, sink.all(), 2)
	})

	t.Run("concurrent acceptances resolve to one winner", func(t *testing.T) {
		engine, store, _ := testEngine(t)

		_, err := engine.CreateDonation(ctx, "donor-1", validInput())
		require.NoError(t, err)

		var taskID string
		for id := range store.tasks {
			taskID = id
		}

		volunteers := []string{"volunteer-1", "volunteer-2"}
		results := make(chan error, len(volunteers))

		var wg sync.WaitGroup
		for _, volunteerID := range volunteers {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				_, err := engine.AcceptTask(ctx, id, taskID)
				results <- err
			}(volunteerID)
		}
		wg.Wait()
		close(results)

		var wins, losses int
		for err := range results {
			if err == nil {
				wins++
				continue
			}
			assert.ErrorIs(t, err, types.ErrInvalidTransition)
			losses++
		}

		assert.Equal(t, 1, wins)
		assert.Equal(t, 1, losses)
	})

	t.Run("rejects non-volunteer", func(t *testing.T) {
		engine, store, _ := testEngine(t)

		_, err := engine.CreateDonation(ctx, "donor-1", validInput())
		require.NoError(t, err)

		var taskID string
		for id := range store.tasks {
			taskID = id
		}

		_, err = engine.AcceptTask(ctx, "donor-1", taskID)
		assert.ErrorIs(t, err, types.ErrNotPermitted)

		task, err := store.Task(ctx, taskID)
		require.NoError(t, err)
		assert.Equal(t, types.TaskStatusPending, task.Status)
	})

	t.Run("unknown task", func(t *testing.T) {
		engine, _, _ := testEngine(t)

		_, err := engine.AcceptTask(ctx, "volunteer-1", "missing")
		assert.ErrorIs(t, err, types.ErrTaskNotFound)
	})
}

func TestCompleteTask(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*Engine, *memStore, *memSink, string, string) {
		engine, store, sink := testEngine(t)

		item, err := engine.CreateDonation(ctx, "donor-1", validInput())
		require.NoError(t, err)

		var taskID string
		for id := range store.tasks {
			taskID = id
		}

		_, err = engine.AcceptTask(ctx, "volunteer-1", taskID)
		require.NoError(t, err)

		return engine, store, sink, taskID, item.ID
	}

	t.Run("assigned volunteer completes the pickup", func(t *testing.T) {
		engine, store, sink, taskID, itemID := setup(t)

		task, err := engine.CompleteTask(ctx, "volunteer-1", taskID)
		require.NoError(t, err)
		assert.Equal(t, types.TaskStatusCompleted, task.Status)

		item, err := store.FoodItem(ctx, itemID)
		require.NoError(t, err)
		assert.Equal(t, types.FoodStatusCompleted, item.Status)

		events := sink.all()
		require.Len(t, events, 3)
		completed, ok := events[2].(types.TaskCompleted)
		require.True(t, ok)
		assert.Equal(t, itemID, completed.Item.ID)
	})

	t.Run("only the assigned volunteer may complete", func(t *testing.T) {
		engine, store, _, taskID, _ := setup(t)

		_, err := engine.CompleteTask(ctx, "volunteer-2", taskID)
		assert.ErrorIs(t, err, types.ErrNotPermitted)

		task, err := store.Task(ctx, taskID)
		require.NoError(t, err)
		assert.Equal(t, types.TaskStatusAccepted, task.Status)
	})

	t.Run("pending task cannot be completed", func(t *testing.T) {
		engine, store, _ := testEngine(t)

		_, err := engine.CreateDonation(ctx, "donor-1", validInput())
		require.NoError(t, err)

		var taskID string
		for id := range store.tasks {
			taskID = id
		}

		_, err = engine.CompleteTask(ctx, "volunteer-1", taskID)
		assert.ErrorIs(t, err, types.ErrInvalidTransition)
	})

	t.Run("completed task cannot be completed again", func(t *testing.T) {
		engine, _, _, taskID, _ := setup(t)

		_, err := engine.CompleteTask(ctx, "volunteer-1", taskID)
		require.NoError(t, err)

		_, err = engine.CompleteTask(ctx, "volunteer-1", taskID)
		assert.ErrorIs(t, err, types.ErrInvalidTransition)
	})
}
