package server

import (
	"net/http"
	"net/url"
	"strings"

	"foodbridge/internal/query"
	"foodbridge/pkg/types"
)

func (s *Service) handleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := s.foodItems.FoodItems(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch food items for home page")
		s.internalServerError(w)
		return
	}

	available := query.Available(items)
	if len(available) > 6 {
		available = available[:6]
	}
	s.resolveDonorNames(r, available)

	data := &types.HomePageData{
		BasePageData: types.BasePageData{Title: ""},
		Notice:       r.URL.Query().Get("notice"),
		Error:        r.URL.Query().Get("error"),
		Items:        available,
	}

	if err := s.renderTemplate(w, r, "page.home", data); err != nil {
		s.logger.WithError(err).Error("failed to render home page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Service) redirectWithNotice(w http.ResponseWriter, r *http.Request, path, notice string) {
	v := url.Values{}
	v.Set("notice", notice)
	http.Redirect(w, r, path+"?"+v.Encode(), http.StatusSeeOther)
}

func (s *Service) redirectWithError(w http.ResponseWriter, r *http.Request, path, msg string) {
	v := url.Values{}
	v.Set("error", msg)
	http.Redirect(w, r, path+"?"+v.Encode(), http.StatusSeeOther)
}

func required(v string) bool {
	return strings.TrimSpace(v) != ""
}

func (s *Service) internalServerError(w http.ResponseWriter) {
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// resolveDonorNames batch-fetches the donor profiles behind a snapshot
// and fills DonorName on each item. A lookup failure degrades to the
// "Unknown Donor" fallback rather than failing the page.
func (s *Service) resolveDonorNames(r *http.Request, items []*types.FoodItem) {
	profiles, err := s.profiles.ProfilesByIDs(r.Context(), query.DonorIDs(items))
	if err != nil {
		s.logger.WithError(err).Warn("failed to resolve donor names")
		profiles = nil
	}
	query.ResolveDonorNames(items, profiles)
}
