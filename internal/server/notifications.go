package server

import (
	"errors"
	"net/http"

	"foodbridge/pkg/types"

	"github.com/alexedwards/flow"
)

func (s *Service) handleNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user id not found in context")
		s.internalServerError(w)
		return
	}

	notifications, err := s.dispatcher.ListForUser(ctx, userID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to fetch notifications")
		s.internalServerError(w)
		return
	}

	unread, err := s.dispatcher.UnreadCount(ctx, userID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("failed to fetch unread count")
		unread = 0
	}

	data := &types.NotificationsPageData{
		BasePageData:  types.BasePageData{Title: "Notifications"},
		Notifications: notifications,
		UnreadCount:   unread,
	}

	if err := s.renderTemplate(w, r, "page.notifications", data); err != nil {
		s.logger.WithError(err).Error("failed to render notifications page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	notificationID := flow.Param(ctx, "id")

	err := s.dispatcher.MarkAsRead(ctx, notificationID)
	if err != nil && !errors.Is(err, types.ErrNotificationNotFound) {
		s.logger.WithError(err).WithField("notification_id", notificationID).Error("failed to mark notification read")
		s.internalServerError(w)
		return
	}

	http.Redirect(w, r, "/notifications", http.StatusSeeOther)
}
