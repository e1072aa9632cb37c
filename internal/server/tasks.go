package server

import (
	"errors"
	"net/http"

	"foodbridge/internal/query"
	"foodbridge/pkg/types"

	"github.com/alexedwards/flow"
)

func (s *Service) handleTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user id not found in context")
		s.internalServerError(w)
		return
	}

	tasks, err := s.tasks.Tasks(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch tasks")
		s.internalServerError(w)
		return
	}

	items, err := s.foodItems.FoodItems(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch food items for tasks page")
		s.internalServerError(w)
		return
	}
	s.resolveDonorNames(r, items)

	itemsByID := make(map[string]*types.FoodItem, len(items))
	for _, item := range items {
		itemsByID[item.ID] = item
	}

	view := func(tasks []*types.Task) []types.TaskView {
		out := make([]types.TaskView, 0, len(tasks))
		for _, t := range tasks {
			out = append(out, types.TaskView{Task: t, Item: itemsByID[t.FoodItemID]})
		}
		return out
	}

	var open, mine []*types.Task
	for _, t := range tasks {
		if t.Status == types.TaskStatusPending {
			open = append(open, t)
		}
	}
	mine = query.TasksForVolunteer(tasks, userID)

	var active, completed []*types.Task
	for _, t := range mine {
		switch t.Status {
		case types.TaskStatusAccepted:
			active = append(active, t)
		case types.TaskStatusCompleted:
			completed = append(completed, t)
		}
	}

	data := &types.TasksPageData{
		BasePageData: types.BasePageData{Title: "Pickup Tasks"},
		Open:         view(open),
		Active:       view(active),
		Completed:    view(completed),
		Notice:       r.URL.Query().Get("notice"),
		Error:        r.URL.Query().Get("error"),
	}

	if err := s.renderTemplate(w, r, "page.tasks", data); err != nil {
		s.logger.WithError(err).Error("failed to render tasks page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handleAcceptTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user id not found in context")
		s.internalServerError(w)
		return
	}

	taskID := flow.Param(ctx, "id")

	_, err = s.engine.AcceptTask(ctx, userID, taskID)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrTaskNotFound):
			s.redirectWithError(w, r, "/tasks", "That pickup task no longer exists.")
		case errors.Is(err, types.ErrInvalidTransition):
			s.redirectWithError(w, r, "/tasks", "Another volunteer already accepted this pickup.")
		case errors.Is(err, types.ErrNotPermitted):
			s.redirectWithError(w, r, "/tasks", "Only volunteers can accept pickup tasks.")
		default:
			s.logger.WithError(err).WithField("task_id", taskID).Error("failed to accept task")
			s.redirectWithError(w, r, "/tasks", "Unable to accept the pickup right now. Please try again.")
		}
		return
	}

	s.redirectWithNotice(w, r, "/tasks", "Pickup accepted. The donor has been notified.")
}

func (s *Service) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user id not found in context")
		s.internalServerError(w)
		return
	}

	taskID := flow.Param(ctx, "id")

	_, err = s.engine.CompleteTask(ctx, userID, taskID)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrTaskNotFound):
			s.redirectWithError(w, r, "/tasks", "That pickup task no longer exists.")
		case errors.Is(err, types.ErrInvalidTransition):
			s.redirectWithError(w, r, "/tasks", "This pickup is not in an accepted state.")
		case errors.Is(err, types.ErrNotPermitted):
			s.redirectWithError(w, r, "/tasks", "Only the assigned volunteer can complete this pickup.")
		default:
			s.logger.WithError(err).WithField("task_id", taskID).Error("failed to complete task")
			s.redirectWithError(w, r, "/tasks", "Unable to complete the pickup right now. Please try again.")
		}
		return
	}

	s.redirectWithNotice(w, r, "/tasks", "Pickup completed. Thank you!")
}
