package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"habitpact/internal/api/middleware"
	"habitpact/internal/model"
	"habitpact/internal/repository"
	"habitpact/internal/service"
)

type UserHandler struct {
	auth          *service.AuthService
	notifications *repository.NotificationRepository
}

func NewUserHandler(auth *service.AuthService, notifications *repository.NotificationRepository) *UserHandler {
	return &UserHandler{auth: auth, notifications: notifications}
}

func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.auth.Profile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

type updateMeRequest struct {
	Name       string `json:"name"`
	Username   string `json:"username"`
	AvatarSeed string `json:"avatarSeed"`
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	user, err := h.auth.UpdateProfile(c.Request.Context(), middleware.UserID(c), req.Name, req.Username, req.AvatarSeed)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) Notifications(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	ns, err := h.notifications.ListByUser(c.Request.Context(), middleware.UserID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if ns == nil {
		ns = []*model.Notification{}
	}
	c.JSON(http.StatusOK, gin.H{"notifications": ns})
}

func (h *UserHandler) MarkNotificationRead(c *gin.Context) {
	notificationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid notification id")
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), notificationID, middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"read": true})
}
