package search

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-tripboard/internal/app/handlers"
	"github.com/FACorreiaa/go-tripboard/internal/app/models"
)

type Handler struct {
	*handlers.BaseHandler
	service Service
}

func NewHandler(service Service, base *handlers.BaseHandler) *Handler {
	return &Handler{BaseHandler: base, service: service}
}

// RegisterRoutes mounts the place search. limiter runs before the handler
// when not nil.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup, limiter gin.HandlerFunc) {
	chain := []gin.HandlerFunc{}
	if limiter != nil {
		chain = append(chain, limiter)
	}
	chain = append(chain, h.Search)
	api.GET("/search", chain...)
}

// Search handles GET /api/search?q=<place>&i=<interest>.
func (h *Handler) Search(c *gin.Context) {
	resp, err := h.service.Search(c.Request.Context(), c.Query("q"), c.Query("i"))
	if err != nil {
		h.respondSearchError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// respondSearchError keeps internal failure detail out of the response body.
func (h *Handler) respondSearchError(c *gin.Context, err error) {
	var (
		status int
		msg    string
		vErr   *models.ValidationError
		upErr  *models.UpstreamError
	)
	switch {
	case errors.Is(err, models.ErrNotConfigured):
		status, msg = http.StatusInternalServerError, handlers.Message(err)
	case errors.As(err, &vErr):
		status, msg = http.StatusBadRequest, vErr.Msg
	case errors.As(err, &upErr):
		status, msg = http.StatusBadGateway, upErr.Error()
	default:
		status, msg = http.StatusInternalServerError, "Internal error"
	}
	h.Logger.Warn("Search failed", zap.Int("status", status), zap.Error(err))
	c.AbortWithStatusJSON(status, handlers.ErrorResponse{Error: msg})
}
