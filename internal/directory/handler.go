package directory

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler exposes the browse/search pages as JSON endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a directory handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the directory routes.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/departments", h.listDepartments)
	r.GET("/departments/:id/courses", h.departmentCourses)
	r.GET("/courses", h.coursesForSelection)
	r.GET("/faculty", h.listFaculty)
	r.GET("/faculty/experts", h.expertsForCourse)
	r.GET("/faculty/:id", h.facultyByID)
}

func (h *Handler) listDepartments(c *gin.Context) {
	departments, err := h.svc.Departments(c.Request.Context())
	if err != nil {
		h.systemError(c, "list departments", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"departments": departments})
}

func (h *Handler) departmentCourses(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.Redirect(http.StatusSeeOther, "/v1/departments")
		return
	}
	dept, semesters, err := h.svc.DepartmentCourses(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.Redirect(http.StatusSeeOther, "/v1/departments")
		return
	}
	if err != nil {
		h.systemError(c, "department courses", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"department": dept, "semesters": semesters})
}

func (h *Handler) coursesForSelection(c *gin.Context) {
	courses, err := h.svc.CoursesForSelection(c.Request.Context(), c.Query("department"), c.Query("semester"))
	if errors.Is(err, ErrMissingSelection) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please select both department and semester"})
		return
	}
	if errors.Is(err, ErrNotFound) {
		c.Redirect(http.StatusSeeOther, "/v1/departments")
		return
	}
	if err != nil {
		h.systemError(c, "courses for selection", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses, "count": len(courses)})
}

func (h *Handler) listFaculty(c *gin.Context) {
	faculty, err := h.svc.ListFaculty(c.Request.Context(), c.Query("search_name"))
	if err != nil {
		h.systemError(c, "list faculty", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"faculty": faculty, "count": len(faculty)})
}

func (h *Handler) expertsForCourse(c *gin.Context) {
	departmentID, _ := strconv.Atoi(c.Query("department_id"))
	faculty, err := h.svc.ExpertsForCourse(c.Request.Context(), departmentID, c.Query("course_name"), c.Query("course_code"))
	if errors.Is(err, ErrMissingSelection) || errors.Is(err, ErrNotFound) {
		c.Redirect(http.StatusSeeOther, "/v1/departments")
		return
	}
	if err != nil {
		h.systemError(c, "experts for course", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"faculty": faculty, "count": len(faculty)})
}

func (h *Handler) facultyByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.Redirect(http.StatusSeeOther, "/v1/faculty")
		return
	}
	faculty, err := h.svc.FacultyByID(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.Redirect(http.StatusSeeOther, "/v1/faculty")
		return
	}
	if err != nil {
		h.systemError(c, "faculty by id", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"faculty": faculty})
}

func (h *Handler) systemError(c *gin.Context, op string, err error) {
	h.logger.Error(op+" failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "system error, try again"})
}
