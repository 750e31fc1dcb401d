package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"property-leads/pkg/form"
	"property-leads/pkg/models"
	"property-leads/pkg/services"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	sessions    *services.SessionStore
	leadService services.LeadService
	logger      *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(sessions *services.SessionStore, leadService services.LeadService, logger *zap.Logger) *Handlers {
	return &Handlers{
		sessions:    sessions,
		leadService: leadService,
		logger:      logger,
	}
}

// Register mounts the routes on router. Submission endpoints go through submitLimit.
func (h *Handlers) Register(router gin.IRouter, submitLimit gin.HandlerFunc) {
	router.GET("/health", h.HealthCheck)

	sessions := router.Group("/sessions")
	sessions.POST("", h.CreateSession)
	sessions.GET("/:id", h.GetSession)
	sessions.PATCH("/:id/fields", h.SetField)
	sessions.POST("/:id/submit", submitLimit, h.SubmitSession)
	sessions.DELETE("/:id", h.DeleteSession)

	router.POST("/leads", submitLimit, h.SubmitLead)
}

type sessionResponse struct {
	ID string `json:"id"`
	form.View
}

type fieldChangeRequest struct {
	Field string  `json:"field" binding:"required"`
	Value *string `json:"value" binding:"required"`
}

// HealthCheck handler for monitoring
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// CreateSession mounts a new empty form
func (h *Handlers) CreateSession(c *gin.Context) {
	session := h.sessions.Create()
	c.JSON(http.StatusCreated, sessionResponse{ID: session.ID, View: session.Controller.View()})
}

// GetSession returns the current view of a form
func (h *Handlers) GetSession(c *gin.Context) {
	id := c.Param("id")
	session, err := h.sessions.Get(id)
	if err != nil {
		h.abortWithSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{ID: id, View: session.Controller.View()})
}

// SetField applies a field-change event
func (h *Handlers) SetField(c *gin.Context) {
	id := c.Param("id")

	var req fieldChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid field change"})
		return
	}

	view, err := h.sessions.SetField(id, req.Field, *req.Value)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, sessionResponse{ID: id, View: view})
	case errors.Is(err, models.ErrUnknownField), errors.Is(err, models.ErrInvalidValue):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, form.ErrAlreadySubmitted):
		c.JSON(http.StatusConflict, sessionResponse{ID: id, View: view})
	default:
		h.abortWithSessionError(c, err)
	}
}

// SubmitSession runs the submit event of a form
func (h *Handlers) SubmitSession(c *gin.Context) {
	id := c.Param("id")

	view, err := h.sessions.Submit(c.Request.Context(), id)
	resp := sessionResponse{ID: id, View: view}
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resp)
	case errors.Is(err, form.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, resp)
	case errors.Is(err, form.ErrSubmitInProgress), errors.Is(err, form.ErrAlreadySubmitted):
		c.JSON(http.StatusConflict, resp)
	case errors.Is(err, form.ErrCollectorFailure):
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, resp)
	default:
		h.abortWithSessionError(c, err)
	}
}

// DeleteSession discards a form, as when the user navigates away
func (h *Handlers) DeleteSession(c *gin.Context) {
	if err := h.sessions.Delete(c.Param("id")); err != nil {
		h.abortWithSessionError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SubmitLead validates and forwards a whole lead in one request
func (h *Handlers) SubmitLead(c *gin.Context) {
	var state models.FormState
	if err := c.ShouldBindJSON(&state); err != nil {
		h.logger.Debug("Error parsing lead", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format"})
		return
	}

	errs, err := h.leadService.SubmitLead(c.Request.Context(), state)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"message": "Your application has been received.",
		})
	case errors.Is(err, form.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errs})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"message": form.FailureMessage})
	}
}

func (h *Handlers) abortWithSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Form session not found"})
	case errors.Is(err, services.ErrSessionExpired):
		c.JSON(http.StatusGone, gin.H{"error": "Form session expired"})
	default:
		h.logger.Error("Unexpected form session error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
