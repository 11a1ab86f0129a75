package itineraries

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-tripboard/internal/app/handlers"
	"github.com/FACorreiaa/go-tripboard/internal/app/middleware"
	"github.com/FACorreiaa/go-tripboard/internal/app/models"
)

type Handler struct {
	*handlers.BaseHandler
	service Service
}

func NewHandler(service Service, base *handlers.BaseHandler) *Handler {
	return &Handler{BaseHandler: base, service: service}
}

// RegisterRoutes mounts the itinerary API on a group that already runs the auth guard.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/itineraries", h.CreateItinerary)
	api.GET("/itineraries", h.ListItineraries)
	api.GET("/itineraries/:id/timeline", h.Timeline)
	api.POST("/itineraries/:id/days", h.AddDay)
	api.POST("/itineraries/:id/days/:dayID/items", h.AddItem)
	api.DELETE("/itineraries/:id", h.DeleteItinerary)
	api.DELETE("/items/:itemID", h.DeleteItem)
}

func (h *Handler) currentUser(c *gin.Context) (uuid.UUID, bool) {
	user := middleware.GetUserFromContext(c)
	if user == nil || user.ID == uuid.Nil {
		h.RespondError(c, models.ErrUnauthenticated)
		return uuid.Nil, false
	}
	return user.ID, true
}

func (h *Handler) pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.RespondError(c, models.NewValidationError("Invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

// selectedDay reads the optional ?day= cursor; malformed values are ignored.
func selectedDay(c *gin.Context) *uuid.UUID {
	raw := c.Query("day")
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

// CreateItinerary handles POST /api/itineraries.
func (h *Handler) CreateItinerary(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	var params models.CreateItineraryParams
	if err := c.ShouldBindJSON(&params); err != nil {
		h.Logger.Debug("Invalid itinerary payload", zap.Error(err))
		h.RespondError(c, models.ErrMissingFields)
		return
	}

	id, err := h.service.CreateItinerary(c.Request.Context(), userID, params)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// ListItineraries handles GET /api/itineraries?country=XX.
func (h *Handler) ListItineraries(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	list, err := h.service.ListItineraries(c.Request.Context(), userID, c.Query("country"))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Timeline handles GET /api/itineraries/:id/timeline?day=<dayID>.
func (h *Handler) Timeline(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	itineraryID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	view, err := h.service.LoadTimeline(c.Request.Context(), userID, itineraryID, selectedDay(c))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// AddDay handles POST /api/itineraries/:id/days.
func (h *Handler) AddDay(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	itineraryID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var params models.AddDayParams
	if err := c.ShouldBindJSON(&params); err != nil {
		h.RespondError(c, models.NewValidationError("Invalid day payload"))
		return
	}

	view, err := h.service.AddDay(c.Request.Context(), userID, itineraryID, params)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// AddItem handles POST /api/itineraries/:id/days/:dayID/items.
func (h *Handler) AddItem(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	itineraryID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	dayID, err := uuid.Parse(c.Param("dayID"))
	if err != nil {
		h.RespondError(c, models.ErrMissingDay)
		return
	}

	var params models.AddItemParams
	if err := c.ShouldBindJSON(&params); err != nil {
		h.RespondError(c, models.NewValidationError("Invalid item payload"))
		return
	}

	view, err := h.service.AddItem(c.Request.Context(), userID, itineraryID, dayID, params)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// DeleteItem handles DELETE /api/items/:itemID?day=<dayID>.
func (h *Handler) DeleteItem(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	itemID, ok := h.pathID(c, "itemID")
	if !ok {
		return
	}
	view, err := h.service.DeleteItem(c.Request.Context(), userID, itemID, selectedDay(c))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DeleteItinerary handles DELETE /api/itineraries/:id.
func (h *Handler) DeleteItinerary(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	itineraryID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteItinerary(c.Request.Context(), userID, itineraryID); err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": itineraryID})
}
