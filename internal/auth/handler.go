package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler exposes login/logout and the password flows.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the public auth routes.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/auth/login", h.login)
	r.POST("/auth/password/change", h.changePassword)
	r.POST("/auth/password/forgot", h.forgotPassword)
	r.POST("/auth/password/reset", h.resetPassword)
}

// RegisterAuthenticated mounts the routes that need a live session.
func (h *Handler) RegisterAuthenticated(r gin.IRouter) {
	r.POST("/auth/logout", h.logout)
}

func (h *Handler) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please enter both your email and password"})
		return
	}

	session, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password, please try again"})
		return
	}
	if err != nil {
		h.systemError(c, "login", err)
		return
	}

	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	c.SetCookie(SessionCookie, session.Token, maxAge, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"token":      session.Token,
		"faculty_id": session.FacultyID,
		"name":       session.Name,
		"expires_at": session.ExpiresAt.Unix(),
	})
}

func (h *Handler) logout(c *gin.Context) {
	jti, ok := SessionID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session required"})
		return
	}
	if err := h.svc.Logout(c.Request.Context(), jti); err != nil {
		h.systemError(c, "logout", err)
		return
	}
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *Handler) changePassword(c *gin.Context) {
	var req struct {
		Email           string `json:"email"`
		OldPassword     string `json:"old_password"`
		NewPassword     string `json:"new_password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := h.svc.ChangePassword(c.Request.Context(), req.Email, req.OldPassword, req.NewPassword, req.ConfirmPassword)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "your password has been updated, you can now log in"})
	case errors.Is(err, ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect email or old password"})
	case isPasswordRuleError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.systemError(c, "change password", err)
	}
}

func (h *Handler) forgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	err := h.svc.ForgotPassword(c.Request.Context(), req.Email)
	switch {
	case err == nil:
		// Same response whether or not the email is registered.
		c.JSON(http.StatusOK, gin.H{"message": "if the address is registered, a code has been sent"})
	case errors.Is(err, ErrWrongDomain):
		c.JSON(http.StatusBadRequest, gin.H{"error": "please use a valid institution email"})
	default:
		h.systemError(c, "forgot password", err)
	}
}

func (h *Handler) resetPassword(c *gin.Context) {
	var req struct {
		Email           string `json:"email"`
		Code            string `json:"code"`
		NewPassword     string `json:"new_password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := h.svc.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword, req.ConfirmPassword)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "password reset, you can now log in"})
	case errors.Is(err, ErrCodeInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired code"})
	case isPasswordRuleError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.systemError(c, "reset password", err)
	}
}

func isPasswordRuleError(err error) bool {
	return errors.Is(err, ErrFieldsRequired) ||
		errors.Is(err, ErrPasswordMismatch) ||
		errors.Is(err, ErrPasswordTooShort) ||
		errors.Is(err, ErrPasswordUnchanged)
}

func (h *Handler) systemError(c *gin.Context, op string, err error) {
	h.logger.Error(op+" failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "system error, try again"})
}
