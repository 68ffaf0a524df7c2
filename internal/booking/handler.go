package booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"facultypool/internal/directory"
)

// Handler exposes the booking submission endpoint.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a booking handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the booking routes.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/faculty/:id/appointments", h.book)
}

func (h *Handler) book(c *gin.Context) {
	pageFacultyID, err := strconv.Atoi(c.Param("id"))
	if err != nil || pageFacultyID <= 0 {
		c.Redirect(http.StatusSeeOther, "/v1/faculty")
		return
	}

	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	appt, err := h.svc.Book(c.Request.Context(), pageFacultyID, req, c.ClientIP())
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{"appointment": appt, "message": "appointment booked successfully"})
	case errors.Is(err, ErrFacultyMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": "security error"})
	case errors.Is(err, directory.ErrNotFound):
		c.Redirect(http.StatusSeeOther, "/v1/faculty")
	default:
		var fieldErrs FieldErrors
		var quotaErr *QuotaError
		switch {
		case errors.As(err, &fieldErrs):
			c.JSON(http.StatusBadRequest, gin.H{"errors": []string(fieldErrs)})
		case errors.As(err, &quotaErr):
			c.JSON(http.StatusConflict, gin.H{"error": quotaErr.Error()})
		default:
			h.logger.Error("booking failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "system error, try again"})
		}
	}
}
