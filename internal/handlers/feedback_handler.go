package handlers

import (
	"errors"
	"math"
	"strconv"

	"practice-service/internal/middleware"
	"practice-service/internal/service"
	"practice-service/internal/utils"

	"github.com/gin-gonic/gin"
)

type FeedbackHandler struct {
	Service FeedbackService
}

func NewFeedbackHandler(s FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{Service: s}
}

func (h *FeedbackHandler) Create(c *gin.Context) {
	var req service.FeedbackInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format")
		return
	}

	userID := middleware.UserID(c)
	feedback, err := h.Service.Submit(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, service.ErrRateLimited) {
			if wait := h.Service.RetryAfter(c.Request.Context(), userID); wait > 0 {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			}
		}
		respondError(c, "Failed to save feedback", err)
		return
	}
	utils.CreatedResponse(c, "Thank you for your feedback", feedback)
}
