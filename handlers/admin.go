package handlers

import (
	"net/http"

	"laundrybook/database/store"
	"laundrybook/models"
	"laundrybook/services/board"
	"laundrybook/services/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler covers out-of-band provisioning: slots are created here with
// available=true, never by the reservation core.
type AdminHandler struct {
	Store store.DocumentStore
}

func NewAdminHandler(st store.DocumentStore) *AdminHandler {
	return &AdminHandler{Store: st}
}

// CreateSlotsHandler seeds one day's slots from a list of time labels.
func (h *AdminHandler) CreateSlotsHandler(c *gin.Context) {
	var input struct {
		Date  string   `json:"date" binding:"required"`
		Times []string `json:"times" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	created := make([]models.Slot, 0, len(input.Times))
	for _, label := range input.Times {
		startMinutes, err := models.ParseTimeLabel(label)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slot := models.Slot{
			ID:           uuid.New().String(),
			Time:         label,
			Date:         input.Date,
			StartMinutes: startMinutes,
			Available:    true,
		}
		fields := store.Fields{
			"time":         slot.Time,
			"date":         slot.Date,
			"startMinutes": slot.StartMinutes,
			"available":    true,
		}
		if err := h.Store.Set(c.Request.Context(), board.SlotsCollection, slot.ID, fields); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to create slot", "details": err.Error()})
			return
		}
		created = append(created, slot)
	}

	c.JSON(http.StatusCreated, gin.H{"slots": created})
}

// UpsertProfileHandler creates or replaces a resident profile.
func (h *AdminHandler) UpsertProfileHandler(c *gin.Context) {
	var input models.Profile
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	fields := store.Fields{
		"name": input.Name,
		"room": input.Room,
	}
	if input.FCMToken != "" {
		fields["fcmToken"] = input.FCMToken
	}
	// Round-trip through the boundary validation before persisting.
	if _, err := models.ProfileFromFields(input.Phone, fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Store.Set(c.Request.Context(), session.ProfilesCollection, input.Phone, fields); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to store profile", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "profile stored", "phone": input.Phone})
}
