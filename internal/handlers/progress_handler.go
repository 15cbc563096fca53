package handlers

import (
	"practice-service/internal/middleware"
	"practice-service/internal/utils"

	"github.com/gin-gonic/gin"
)

type ProgressHandler struct {
	Service PracticeService
}

func NewProgressHandler(s PracticeService) *ProgressHandler {
	return &ProgressHandler{Service: s}
}

func (h *ProgressHandler) Get(c *gin.Context) {
	progress, err := h.Service.Progress(c.Request.Context(), middleware.UserID(c), c.Param("userId"), c.Query("learningSubject"))
	if err != nil {
		respondError(c, "Failed to load progress", err)
		return
	}
	utils.SuccessResponse(c, "Progress retrieved", progress)
}

func (h *ProgressHandler) UpdatePreferences(c *gin.Context) {
	var req struct {
		LearningSubject     string   `json:"learningSubject"`
		PreferredCategories []string `json:"preferredCategories"`
		ChallengeAreas      []string `json:"challengeAreas"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format")
		return
	}

	progress, err := h.Service.UpdatePreferences(c.Request.Context(), middleware.UserID(c), c.Param("userId"),
		req.LearningSubject, req.PreferredCategories, req.ChallengeAreas)
	if err != nil {
		respondError(c, "Failed to update preferences", err)
		return
	}
	utils.SuccessResponse(c, "Preferences updated", progress)
}
