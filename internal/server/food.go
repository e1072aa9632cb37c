package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"foodbridge/internal/lifecycle"
	"foodbridge/internal/query"
	"foodbridge/internal/utils"
	"foodbridge/pkg/types"

	"github.com/alexedwards/flow"
)

func (s *Service) handleBrowseFood(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := s.foodItems.FoodItems(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch food items for browse page")
		s.internalServerError(w)
		return
	}

	available := query.Available(items)

	foodType := strings.TrimSpace(r.URL.Query().Get("food_type"))
	location := strings.TrimSpace(r.URL.Query().Get("location"))

	filtered := query.FilterByTypeAndLocation(available, foodType, location)
	s.resolveDonorNames(r, filtered)

	data := &types.BrowsePageData{
		BasePageData:  types.BasePageData{Title: "Browse Food"},
		Items:         filtered,
		FoodTypes:     query.FoodTypes(available),
		Locations:     query.Locations(available),
		SelectedType:  foodType,
		SelectedPlace: location,
	}

	if err := s.renderTemplate(w, r, "page.browse", data); err != nil {
		s.logger.WithError(err).Error("failed to render browse page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handleFoodDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	itemID := flow.Param(ctx, "id")

	item, err := s.foodItems.FoodItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, types.ErrFoodItemNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.WithError(err).WithField("food_item_id", itemID).Error("failed to fetch food item")
		s.internalServerError(w)
		return
	}

	task, err := s.tasks.TaskByFoodItem(ctx, itemID)
	if err != nil && !errors.Is(err, types.ErrTaskNotFound) {
		s.logger.WithError(err).WithField("food_item_id", itemID).Error("failed to fetch paired task")
		s.internalServerError(w)
		return
	}

	s.resolveDonorNames(r, []*types.FoodItem{item})

	data := &types.FoodDetailPageData{
		BasePageData: types.BasePageData{Title: item.Title},
		Item:         item,
		Task:         task,
		Notice:       r.URL.Query().Get("notice"),
		Error:        r.URL.Query().Get("error"),
	}

	if err := s.renderTemplate(w, r, "page.food-detail", data); err != nil {
		s.logger.WithError(err).Error("failed to render food detail page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handleMyDonations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user id not found in context")
		s.internalServerError(w)
		return
	}

	items, err := s.foodItems.FoodItemsByDonor(ctx, userID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to fetch donor food items")
		s.internalServerError(w)
		return
	}
	s.resolveDonorNames(r, items)

	data := &types.MyDonationsPageData{
		BasePageData: types.BasePageData{Title: "My Donations"},
		Items:        items,
		Notice:       r.URL.Query().Get("notice"),
		Error:        r.URL.Query().Get("error"),
	}

	if err := s.renderTemplate(w, r, "page.my-donations", data); err != nil {
		s.logger.WithError(err).Error("failed to render my donations page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handleGetNewDonation(w http.ResponseWriter, r *http.Request) {
	role, _ := r.Context().Value(contextKeyRole).(types.Role)
	if role != types.RoleDonor {
		s.redirectWithError(w, r, "/food", "Only donors can list new donations.")
		return
	}

	data := &types.NewDonationPageData{
		BasePageData: types.BasePageData{Title: "Add New Donation"},
	}

	if err := s.renderTemplate(w, r, "page.donation-new", data); err != nil {
		s.logger.WithError(err).Error("failed to render new donation page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handlePostNewDonation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user id not found in context")
		s.internalServerError(w)
		return
	}

	if err := r.ParseMultipartForm(s.config.MaxImageSizeBytes + (1 << 20)); err != nil {
		s.redirectWithError(w, r, "/donations/new", "Invalid form payload.")
		return
	}

	var donationForm types.DonationForm
	if err := decoder.Decode(&donationForm, url.Values(r.MultipartForm.Value)); err != nil {
		s.logger.WithError(err).Error("failed to decode donation form")
		s.internalServerError(w)
		return
	}

	data := &types.NewDonationPageData{
		BasePageData: types.BasePageData{Title: "Add New Donation"},
		Form:         donationForm,
	}

	input, fieldErrors := s.buildDonationInput(donationForm)
	if len(fieldErrors) > 0 {
		data.Error = "Please fix the highlighted fields."
		data.FieldErrors = fieldErrors
		if renderErr := s.renderTemplate(w, r, "page.donation-new", data); renderErr != nil {
			s.logger.WithError(renderErr).Error("failed to render new donation page with validation errors")
			s.internalServerError(w)
		}
		return
	}

	imageURL, imageKey, ok := s.uploadDonationImage(w, r)
	if !ok {
		return
	}
	input.Image = imageURL

	item, err := s.engine.CreateDonation(ctx, userID, *input)
	if err != nil {
		s.discardDonationImage(ctx, imageKey)
		switch {
		case errors.Is(err, types.ErrNotPermitted):
			s.redirectWithError(w, r, "/food", "Only donors can list new donations.")
		default:
			s.logger.WithError(err).WithField("user_id", userID).Error("failed to create donation")
			data.Error = "Unable to add donation right now. Please try again."
			if renderErr := s.renderTemplate(w, r, "page.donation-new", data); renderErr != nil {
				s.logger.WithError(renderErr).Error("failed to render new donation page with error")
				s.internalServerError(w)
			}
		}
		return
	}

	s.redirectWithNotice(w, r, "/food/"+item.ID, "Food donation added successfully.")
}

// buildDonationInput parses the raw form fields into engine input.
// Pickup times are entered as clock times on the expiry date, matching
// the listing form.
func (s *Service) buildDonationInput(donationForm types.DonationForm) (*lifecycle.CreateDonationInput, map[string]string) {
	fieldErrors := map[string]string{}

	if !required(donationForm.Title) {
		fieldErrors["title"] = "Title is required."
	}
	if !required(donationForm.Description) {
		fieldErrors["description"] = "Description is required."
	}
	if !required(donationForm.Quantity) {
		fieldErrors["quantity"] = "Quantity is required."
	}
	if !required(donationForm.FoodType) {
		fieldErrors["food_type"] = "Food type is required."
	}
	if !required(donationForm.PickupLocation) {
		fieldErrors["pickup_location"] = "Pickup location is required."
	}

	expiryDate, err := time.Parse("2006-01-02", donationForm.ExpiryDate)
	if err != nil {
		fieldErrors["expiry_date"] = "Enter a valid expiry date."
	}

	pickupFrom, err := parseClockOn(expiryDate, donationForm.PickupTimeFrom)
	if err != nil {
		fieldErrors["pickup_time_from"] = "Enter a valid pickup window start."
	}
	pickupTo, err := parseClockOn(expiryDate, donationForm.PickupTimeTo)
	if err != nil {
		fieldErrors["pickup_time_to"] = "Enter a valid pickup window end."
	}

	if len(fieldErrors) > 0 {
		return nil, fieldErrors
	}

	return &lifecycle.CreateDonationInput{
		Title:          strings.TrimSpace(donationForm.Title),
		Description:    strings.TrimSpace(donationForm.Description),
		Quantity:       strings.TrimSpace(donationForm.Quantity),
		FoodType:       strings.TrimSpace(donationForm.FoodType),
		ExpiryDate:     expiryDate,
		PickupLocation: strings.TrimSpace(donationForm.PickupLocation),
		PickupTimeFrom: pickupFrom,
		PickupTimeTo:   pickupTo,
	}, nil
}

func parseClockOn(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}

// uploadDonationImage stores an optional listing photo and returns the
// public URL and object key. The last return reports whether the
// request should proceed; on upload failure the response has already
// been written.
func (s *Service) uploadDonationImage(w http.ResponseWriter, r *http.Request) (*string, string, bool) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", true
		}
		s.redirectWithError(w, r, "/donations/new", "Could not read the uploaded image.")
		return nil, "", false
	}
	defer file.Close()

	if header.Size > s.config.MaxImageSizeBytes {
		s.redirectWithError(w, r, "/donations/new", "Image is too large.")
		return nil, "", false
	}

	key := fmt.Sprintf("food/%s%s", utils.NanoIDSize(16), path.Ext(header.Filename))
	contentType := header.Header.Get("Content-Type")

	imageURL, err := s.images.Upload(r.Context(), key, file, contentType)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Error("failed to upload donation image")
		s.redirectWithError(w, r, "/donations/new", "Could not upload the image. Please try again.")
		return nil, "", false
	}

	return utils.StringPtr(imageURL), key, true
}

// discardDonationImage removes an uploaded image whose donation never
// materialized, so a rejected listing does not orphan the object.
func (s *Service) discardDonationImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("failed to remove orphaned donation image")
	}
}
