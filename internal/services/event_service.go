// internal/services/event_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/lavshop/storefront-backend/internal/apperrors"
	"github.com/lavshop/storefront-backend/internal/models"
	"github.com/lavshop/storefront-backend/internal/utils"
)

type EventService struct {
	db *gorm.DB
}

type CreateEventRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description" validate:"required"`
	StartDate   string   `json:"start_date" validate:"required"`
	EndDate     string   `json:"end_date" validate:"required"`
	Location    string   `json:"location,omitempty"`
	ImageLinks  []string `json:"image_links,omitempty"`
}

type UpdateEventRequest struct {
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	StartDate   string   `json:"start_date,omitempty"`
	EndDate     string   `json:"end_date,omitempty"`
	Location    string   `json:"location,omitempty"`
	ImageLinks  []string `json:"image_links,omitempty"`
}

type AddProductsRequest struct {
	Products  []string `json:"products" validate:"required,min=1"`
	Discount  float64  `json:"discount" validate:"min=0"`
	StartDate string   `json:"start_date" validate:"required"`
	EndDate   string   `json:"end_date" validate:"required"`
}

// EventSummary is an Event plus the number of products currently enrolled,
// as presented by the event list endpoint.
type EventSummary struct {
	models.Event
	AppliedProductCount int64 `json:"applied_product_count"`
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{db: db}
}

func (s *EventService) CreateEvent(req *CreateEventRequest, uploadedImages []string) (*models.Event, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("name, description, start date and end date are required")
	}

	startDate, err := ParseDate(req.StartDate)
	if err != nil {
		return nil, apperrors.Validation("invalid start date")
	}
	endDate, err := ParseDate(req.EndDate)
	if err != nil {
		return nil, apperrors.Validation("invalid end date")
	}
	if endDate.Before(startDate) {
		return nil, apperrors.Validation("end date must not be before start date")
	}

	event := &models.Event{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   startDate,
		EndDate:     endDate,
		Location:    req.Location,
		Images:      append(uploadedImages, req.ImageLinks...),
	}

	if err := s.db.Create(event).Error; err != nil {
		return nil, apperrors.Internal("failed to create event", err)
	}

	logrus.WithField("event_id", event.ID).Info("Event created")
	return event, nil
}

func (s *EventService) GetEvent(id uuid.UUID) (*models.Event, error) {
	var event models.Event
	err := s.db.Preload("Products").Preload("Products.Product").
		Preload("Products.Product.Images").First(&event, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("event not found")
		}
		return nil, apperrors.Internal("failed to fetch event", err)
	}
	return &event, nil
}

// ListEvents returns all events enriched with their enrolled-product counts.
func (s *EventService) ListEvents() ([]EventSummary, error) {
	var events []models.Event
	if err := s.db.Preload("Products").Preload("Products.Product").
		Preload("Products.Product.Images").
		Order("created_at DESC").Find(&events).Error; err != nil {
		return nil, apperrors.Internal("failed to fetch events", err)
	}

	summaries := make([]EventSummary, len(events))
	for i, event := range events {
		summaries[i] = EventSummary{
			Event:               event,
			AppliedProductCount: int64(len(event.Products)),
		}
	}
	return summaries, nil
}

// UpdateEvent applies field changes. Newly supplied images (uploaded or by
// link) fully replace the existing image list; otherwise the list is kept.
func (s *EventService) UpdateEvent(id uuid.UUID, req *UpdateEventRequest, uploadedImages []string) (*models.Event, error) {
	var event models.Event
	if err := s.db.First(&event, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("event not found")
		}
		return nil, apperrors.Internal("failed to fetch event", err)
	}

	if req.Name != "" {
		event.Name = req.Name
	}
	if req.Description != "" {
		event.Description = req.Description
	}
	if req.Location != "" {
		event.Location = req.Location
	}
	if req.StartDate != "" {
		startDate, err := ParseDate(req.StartDate)
		if err != nil {
			return nil, apperrors.Validation("invalid start date")
		}
		event.StartDate = startDate
	}
	if req.EndDate != "" {
		endDate, err := ParseDate(req.EndDate)
		if err != nil {
			return nil, apperrors.Validation("invalid end date")
		}
		event.EndDate = endDate
	}

	newImages := append(uploadedImages, req.ImageLinks...)
	if len(newImages) > 0 {
		event.Images = newImages
	}

	if err := s.db.Save(&event).Error; err != nil {
		return nil, apperrors.Internal("failed to update event", err)
	}

	logrus.WithField("event_id", event.ID).Info("Event updated")
	return &event, nil
}

// DeleteEvent removes the event together with its enrollment rows, so no
// orphaned discount windows survive the campaign.
func (s *EventService) DeleteEvent(id uuid.UUID) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.First(&event, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("event not found")
			}
			return apperrors.Internal("failed to fetch event", err)
		}

		if err := tx.Where("event_id = ?", id).Delete(&models.ApplicableProduct{}).Error; err != nil {
			return apperrors.Internal("failed to delete event enrollments", err)
		}

		if err := tx.Delete(&event).Error; err != nil {
			return apperrors.Internal("failed to delete event", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logrus.WithField("event_id", id).Info("Event deleted")
	return nil
}

// AddProducts enrolls every listed product into the event's promotional
// window. The whole enrollment is one transaction: either every product gets
// its ApplicableProduct row or none do.
func (s *EventService) AddProducts(eventID uuid.UUID, req *AddProductsRequest) ([]models.ApplicableProduct, error) {
	if len(req.Products) == 0 {
		return nil, apperrors.Validation("no products selected")
	}
	if err := utils.ValidateStruct(req); err != nil {
		if fieldErrors := utils.GetValidationErrors(err); len(fieldErrors) > 0 {
			return nil, apperrors.Validation(fieldErrors[0].Message)
		}
		return nil, apperrors.Validation("invalid enrollment request")
	}

	startDate, err := ParseDate(req.StartDate)
	if err != nil {
		return nil, apperrors.Validation("invalid start date")
	}
	endDate, err := ParseDate(req.EndDate)
	if err != nil {
		return nil, apperrors.Validation("invalid end date")
	}
	if endDate.Before(startDate) {
		return nil, apperrors.Validation("end date must not be before start date")
	}

	productIDs := make([]uuid.UUID, 0, len(req.Products))
	for _, raw := range req.Products {
		productID, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperrors.Validation(fmt.Sprintf("invalid product id %q", raw))
		}
		productIDs = append(productIDs, productID)
	}

	var created []models.ApplicableProduct
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.First(&event, "id = ?", eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("event not found")
			}
			return apperrors.Internal("failed to fetch event", err)
		}

		for _, productID := range productIDs {
			applicable := models.ApplicableProduct{
				EventID:   eventID,
				ProductID: productID,
				Discount:  req.Discount,
				StartDate: startDate,
				EndDate:   endDate,
			}
			if err := tx.Create(&applicable).Error; err != nil {
				return apperrors.Internal("failed to enroll product", err)
			}
			created = append(created, applicable)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"event_id": eventID,
		"count":    len(created),
	}).Info("Products enrolled in event")
	return created, nil
}

// RemoveProduct drops every enrollment of the given product from the event.
func (s *EventService) RemoveProduct(eventID, productID uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := s.db.First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("event not found")
		}
		return nil, apperrors.Internal("failed to fetch event", err)
	}

	if err := s.db.Where("event_id = ? AND product_id = ?", eventID, productID).
		Delete(&models.ApplicableProduct{}).Error; err != nil {
		return nil, apperrors.Internal("failed to remove product from event", err)
	}

	logrus.WithFields(logrus.Fields{
		"event_id":   eventID,
		"product_id": productID,
	}).Info("Product removed from event")
	return s.GetEvent(eventID)
}

// RemoveApplicableProduct deletes one enrollment row matching both ids and
// returns the updated event with resolved product details.
func (s *EventService) RemoveApplicableProduct(eventID, applicableID uuid.UUID) (*models.Event, error) {
	result := s.db.Where("id = ? AND event_id = ?", applicableID, eventID).
		Delete(&models.ApplicableProduct{})
	if result.Error != nil {
		return nil, apperrors.Internal("failed to delete enrollment", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NotFound("mini-event not found")
	}

	logrus.WithFields(logrus.Fields{
		"event_id":      eventID,
		"applicable_id": applicableID,
	}).Info("Mini-event removed")
	return s.GetEvent(eventID)
}

// RemoveTimeSlot deletes every enrollment of the event whose window exactly
// equals the given bounds. Exact equality, not range overlap. Returns the
// number of rows deleted.
func (s *EventService) RemoveTimeSlot(eventID uuid.UUID, start, end string) (int64, error) {
	if start == "" || end == "" {
		return 0, apperrors.Validation("start and end are required")
	}

	startDate, err := ParseDate(start)
	if err != nil {
		return 0, apperrors.Validation("invalid start date")
	}
	endDate, err := ParseDate(end)
	if err != nil {
		return 0, apperrors.Validation("invalid end date")
	}

	result := s.db.Where("event_id = ? AND start_date = ? AND end_date = ?", eventID, startDate, endDate).
		Delete(&models.ApplicableProduct{})
	if result.Error != nil {
		return 0, apperrors.Internal("failed to delete time slot", result.Error)
	}

	logrus.WithFields(logrus.Fields{
		"event_id": eventID,
		"deleted":  result.RowsAffected,
	}).Info("Time slot cleared")
	return result.RowsAffected, nil
}

// ParseDate accepts the ISO-style date formats clients send.
func ParseDate(value string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", value)
}
