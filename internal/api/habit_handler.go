package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"habitpact/internal/api/middleware"
	"habitpact/internal/service"
)

type HabitHandler struct {
	habits *service.HabitService
}

func NewHabitHandler(habits *service.HabitService) *HabitHandler {
	return &HabitHandler{habits: habits}
}

// List returns the caller's habits. Elapsed days are reconciled before
// the list is returned, so penalties for missed days land here.
func (h *HabitHandler) List(c *gin.Context) {
	habits, err := h.habits.ListForUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"habits": habits})
}

type createHabitRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

func (h *HabitHandler) Create(c *gin.Context) {
	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	habit, err := h.habits.Create(c.Request.Context(), middleware.UserID(c), service.CreateHabitInput{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"habit": habit})
}

type markHabitRequest struct {
	HabitID int64  `json:"habitId" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

func (h *HabitHandler) Mark(c *gin.Context) {
	var req markHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	habit, err := h.habits.Mark(c.Request.Context(), middleware.UserID(c), req.HabitID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"habit": habit})
}

func (h *HabitHandler) Delete(c *gin.Context) {
	habitID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid habit id")
		return
	}

	if err := h.habits.Delete(c.Request.Context(), middleware.UserID(c), habitID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
