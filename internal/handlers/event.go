// internal/handlers/event.go
package handlers

import (
	"encoding/json"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lavshop/storefront-backend/internal/services"
	"github.com/lavshop/storefront-backend/internal/utils"
)

type EventHandler struct {
	eventService   *services.EventService
	storageService *services.StorageService
}

func NewEventHandler(eventService *services.EventService, storageService *services.StorageService) *EventHandler {
	return &EventHandler{
		eventService:   eventService,
		storageService: storageService,
	}
}

// POST /events
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req services.CreateEventRequest
	var uploaded []string

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		req = services.CreateEventRequest{
			Name:        c.PostForm("name"),
			Description: c.PostForm("description"),
			StartDate:   c.PostForm("start_date"),
			EndDate:     c.PostForm("end_date"),
			Location:    c.PostForm("location"),
			ImageLinks:  parseImageLinks(c.PostForm("image_links")),
		}

		var err error
		uploaded, err = h.uploadImages(c, "events")
		if err != nil {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	event, err := h.eventService.CreateEvent(&req, uploaded)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Event created successfully", event)
}

// GET /events
func (h *EventHandler) GetEvents(c *gin.Context) {
	events, err := h.eventService.ListEvents()
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Retrieved events successfully", events)
}

// GET /events/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid event ID", nil)
		return
	}

	event, err := h.eventService.GetEvent(id)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Retrieved event successfully", event)
}

// PUT /events/:id
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid event ID", nil)
		return
	}

	var req services.UpdateEventRequest
	var uploaded []string

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		req = services.UpdateEventRequest{
			Name:        c.PostForm("name"),
			Description: c.PostForm("description"),
			StartDate:   c.PostForm("start_date"),
			EndDate:     c.PostForm("end_date"),
			Location:    c.PostForm("location"),
			ImageLinks:  parseImageLinks(c.PostForm("image_links")),
		}

		uploaded, err = h.uploadImages(c, "events")
		if err != nil {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	event, err := h.eventService.UpdateEvent(id, &req, uploaded)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Event updated successfully", event)
}

// DELETE /events/:id
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid event ID", nil)
		return
	}

	if err := h.eventService.DeleteEvent(id); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Event deleted successfully", nil)
}

// POST /events/:id/products
func (h *EventHandler) AddProducts(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid event ID", nil)
		return
	}

	var req services.AddProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	created, err := h.eventService.AddProducts(id, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Products added to event", created)
}

// POST /events/:id/products/remove
func (h *EventHandler) RemoveProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid event ID", nil)
		return
	}

	var req struct {
		ProductID string `json:"productId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	event, err := h.eventService.RemoveProduct(id, productID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Product removed from event successfully", event)
}

// DELETE /events/:id/minievents/:appId
func (h *EventHandler) RemoveApplicableProduct(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid event ID", nil)
		return
	}

	appID, err := uuid.Parse(c.Param("appId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid mini-event ID", nil)
		return
	}

	event, err := h.eventService.RemoveApplicableProduct(eventID, appID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Mini-event deleted", event)
}

// DELETE /events/:id/timeslot?start=&end=
func (h *EventHandler) RemoveTimeSlot(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid event ID", nil)
		return
	}

	deleted, err := h.eventService.RemoveTimeSlot(id, c.Query("start"), c.Query("end"))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Time slot cleared", gin.H{"deleted_count": deleted})
}

func (h *EventHandler) uploadImages(c *gin.Context, category string) ([]string, error) {
	return uploadFormImages(c, h.storageService, category)
}

// parseImageLinks tolerates malformed payloads: a bad JSON image-link list
// is logged and dropped rather than failing the whole request.
func parseImageLinks(raw string) []string {
	if raw == "" {
		return nil
	}

	var links []string
	if err := json.Unmarshal([]byte(raw), &links); err != nil {
		logrus.WithField("image_links", raw).Warn("image links are not valid JSON")
		return nil
	}
	return links
}

// uploadFormImages stores every file in the multipart "images" field and
// returns their recorded URLs.
func uploadFormImages(c *gin.Context, storage *services.StorageService, category string) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, nil
	}

	files := form.File["images"]
	if len(files) == 0 {
		return nil, nil
	}

	options := storage.GetDefaultUploadOptions(category)
	urls := make([]string, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			return nil, err
		}
		result, err := storage.UploadFile(file, header, options)
		file.Close()
		if err != nil {
			return nil, err
		}
		urls = append(urls, result.URL)
	}
	return urls, nil
}
