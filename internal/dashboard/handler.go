package dashboard

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"facultypool/internal/auth"
)

// Handler exposes the faculty dashboard. All routes require a live session;
// the acting faculty id always comes from the session, never from the client.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a dashboard handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the dashboard routes on an authenticated group.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/dashboard/appointments", h.listAppointments)
	r.POST("/dashboard/appointments/:id/approve", h.approve)
	r.POST("/dashboard/appointments/:id/decline", h.decline)
	r.POST("/dashboard/attendance", h.markAttendance)
}

func (h *Handler) listAppointments(c *gin.Context) {
	facultyID, ok := auth.FacultyID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session required"})
		return
	}
	entries, err := h.svc.ListActive(c.Request.Context(), facultyID)
	if err != nil {
		h.systemError(c, "list appointments", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": entries, "count": len(entries)})
}

func (h *Handler) approve(c *gin.Context) {
	facultyID, ok := auth.FacultyID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session required"})
		return
	}
	err := h.svc.Approve(c.Request.Context(), facultyID, c.Param("id"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "appointment approved"})
	case errors.Is(err, ErrNoSuchAppointment):
		c.JSON(http.StatusNotFound, gin.H{"error": "appointment not found"})
	default:
		h.systemError(c, "approve appointment", err)
	}
}

func (h *Handler) decline(c *gin.Context) {
	facultyID, ok := auth.FacultyID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session required"})
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	err := h.svc.Decline(c.Request.Context(), facultyID, c.Param("id"), req.Reason)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "appointment declined"})
	case errors.Is(err, ErrReasonRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNoSuchAppointment):
		c.JSON(http.StatusNotFound, gin.H{"error": "appointment not found"})
	default:
		h.systemError(c, "decline appointment", err)
	}
}

func (h *Handler) markAttendance(c *gin.Context) {
	facultyID, ok := auth.FacultyID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session required"})
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	rec, err := h.svc.MarkAttendance(c.Request.Context(), facultyID, req.Status)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{"message": "attendance marked as " + rec.Status, "date": rec.MarkedOn})
	case errors.Is(err, ErrInvalidAttendance):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrAttendanceClosed):
		c.JSON(http.StatusForbidden, gin.H{"error": "attendance can only be marked before 10:30 AM"})
	default:
		h.systemError(c, "mark attendance", err)
	}
}

func (h *Handler) systemError(c *gin.Context, op string, err error) {
	h.logger.Error(op+" failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "system error, try again"})
}
