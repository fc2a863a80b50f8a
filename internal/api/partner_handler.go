package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"habitpact/internal/api/middleware"
	"habitpact/internal/service"
)

type PartnerHandler struct {
	partners *service.PartnerService
}

func NewPartnerHandler(partners *service.PartnerService) *PartnerHandler {
	return &PartnerHandler{partners: partners}
}

// Get returns the current partner (null when unpartnered) plus any
// incoming pending requests.
func (h *PartnerHandler) Get(c *gin.Context) {
	userID := middleware.UserID(c)

	partner, err := h.partners.GetPartner(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	requests, err := h.partners.ListIncoming(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"partner": partner, "requests": requests})
}

type sendRequestBody struct {
	Handle string `json:"handle" binding:"required"`
}

func (h *PartnerHandler) SendRequest(c *gin.Context) {
	var req sendRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	created, err := h.partners.SendRequest(c.Request.Context(), middleware.UserID(c), req.Handle)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"request": created})
}

type respondRequestBody struct {
	Action string `json:"action" binding:"required,oneof=accept reject"`
}

func (h *PartnerHandler) Respond(c *gin.Context) {
	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid request id")
		return
	}

	var req respondRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	updated, err := h.partners.Respond(c.Request.Context(), middleware.UserID(c), requestID, req.Action == "accept")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": updated})
}

func (h *PartnerHandler) Unpair(c *gin.Context) {
	if err := h.partners.Unpair(c.Request.Context(), middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unpaired": true})
}
