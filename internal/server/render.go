package server

import (
	"net/http"

	"foodbridge/pkg/types"
)

func (s *Service) renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) error {
	userID, _ := r.Context().Value(contextKeyUserID).(string)
	userEmail, _ := r.Context().Value(contextKeyEmail).(string)
	userName, _ := r.Context().Value(contextKeyUserName).(string)
	role, _ := r.Context().Value(contextKeyRole).(types.Role)

	unread := 0
	if userID != "" {
		count, err := s.dispatcher.UnreadCount(r.Context(), userID)
		if err != nil {
			s.logger.WithError(err).WithField("user_id", userID).Warn("failed to load unread count for navbar")
		} else {
			unread = count
		}
	}

	if setter, ok := data.(types.NavbarDataSetter); ok {
		setter.SetNavbarData(types.NavbarData{
			IsAuthenticated: userID != "",
			UserID:          userID,
			UserEmail:       userEmail,
			UserName:        userName,
			Role:            role,
			UnreadCount:     unread,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return s.templates.ExecuteTemplate(w, templateName, data)
}
