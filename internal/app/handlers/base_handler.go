package handlers

import (
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-tripboard/internal/app/middleware"
	"github.com/FACorreiaa/go-tripboard/internal/app/models"
	"github.com/FACorreiaa/go-tripboard/internal/app/pages"
)

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
}

type BaseHandler struct {
	Logger *zap.Logger
}

func NewBaseHandler(logger *zap.Logger) *BaseHandler {
	return &BaseHandler{Logger: logger}
}

// StatusFor maps a domain error onto its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrMissingFields),
		errors.Is(err, models.ErrActivityRequired),
		errors.Is(err, models.ErrMissingDay),
		errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrDuplicateDay), errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Message extracts the user-facing text of err, dropping wrap prefixes
// added on the way up from the repository.
func Message(err error) string {
	var validation *models.ValidationError
	if errors.As(err, &validation) {
		return validation.Msg
	}
	var upstream *models.UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Error()
	}
	var config *models.ConfigError
	if errors.As(err, &config) {
		return config.Msg
	}
	for _, sentinel := range []error{
		models.ErrMissingFields,
		models.ErrActivityRequired,
		models.ErrMissingDay,
		models.ErrDuplicateDay,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	switch {
	case errors.Is(err, models.ErrUnauthenticated):
		return "Not authenticated"
	case errors.Is(err, models.ErrNotFound):
		return "Not found"
	}
	return err.Error()
}

// RespondError writes {"error": msg} with the status matching err.
func (h *BaseHandler) RespondError(c *gin.Context, err error) {
	status := StatusFor(err)
	l := h.Logger.With(
		zap.String("path", c.FullPath()),
		zap.Int("status", status),
		zap.Error(err),
	)
	if status >= http.StatusInternalServerError {
		l.Error("Request failed")
	} else {
		l.Debug("Request rejected")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: Message(err)})
}

func (h *BaseHandler) NewLayoutData(c *gin.Context, title, activeNav string, content templ.Component) models.LayoutTempl {
	return models.LayoutTempl{
		Title:     title,
		Nav:       models.MainNav,
		ActiveNav: activeNav,
		User:      middleware.GetUserFromContext(c),
		Content:   content,
	}
}

func (h *BaseHandler) Render(c *gin.Context, status int, component templ.Component) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := component.Render(c.Request.Context(), c.Writer); err != nil {
		h.Logger.Error("Failed to render page", zap.String("path", c.FullPath()), zap.Error(err))
	}
}

// RenderPage renders content inside the shared layout.
func (h *BaseHandler) RenderPage(c *gin.Context, title, activeNav string, content templ.Component) {
	h.Render(c, http.StatusOK, pages.LayoutPage(h.NewLayoutData(c, title, activeNav, content)))
}
