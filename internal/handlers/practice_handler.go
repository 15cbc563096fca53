package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"practice-service/internal/export"
	"practice-service/internal/middleware"
	"practice-service/internal/models"
	"practice-service/internal/service"
	"practice-service/internal/utils"

	"github.com/gin-gonic/gin"
)

type PracticeHandler struct {
	Service PracticeService
}

func NewPracticeHandler(s PracticeService) *PracticeHandler {
	return &PracticeHandler{Service: s}
}

type generateRequest struct {
	UserID              string              `json:"userId"`
	LearningSubject     string              `json:"learningSubject"`
	Type                models.ExerciseType `json:"type" binding:"required"`
	Difficulty          *float64            `json:"difficulty"`
	Complexity          *float64            `json:"complexity"`
	PreferredCategories []string            `json:"preferredCategories"`
	ChallengeAreas      []string            `json:"challengeAreas"`
	QuestionType        string              `json:"questionType"`
	BatchSize           int                 `json:"batchSize"`
}

// Generate creates the next practice. The first one is returned as data;
// extra practices of a batch go to batch for the client's read-ahead queue.
func (h *PracticeHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Exercise type is required")
		return
	}
	userID := middleware.UserID(c)
	if req.UserID != "" && req.UserID != userID {
		respondError(c, "", service.ErrForbidden)
		return
	}

	// Generated practices are stored even if the client stops waiting.
	result, err := h.Service.Generate(context.WithoutCancel(c.Request.Context()), service.GenerateInput{
		UserID:              userID,
		LearningSubject:     req.LearningSubject,
		Type:                req.Type,
		Difficulty:          req.Difficulty,
		Complexity:          req.Complexity,
		PreferredCategories: req.PreferredCategories,
		ChallengeAreas:      req.ChallengeAreas,
		QuestionType:        req.QuestionType,
		BatchSize:           req.BatchSize,
	})
	if err != nil {
		respondError(c, "Failed to generate practice", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        "Practice generated",
		"data":           result.Practices[0],
		"batch":          result.Practices[1:],
		"adjustmentMode": result.Adjustment,
	})
}

func (h *PracticeHandler) Submit(c *gin.Context) {
	var req struct {
		PracticeID string `json:"practiceId" binding:"required"`
		Answer     string `json:"answer" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "practiceId and answer are required")
		return
	}

	// A client timeout does not abort evaluation; the result is still
	// persisted.
	result, err := h.Service.Submit(context.WithoutCancel(c.Request.Context()), middleware.UserID(c), req.PracticeID, req.Answer)
	if err != nil {
		respondError(c, "Failed to submit answer", err)
		return
	}

	resp := gin.H{
		"success":             true,
		"practice":            result.Practice,
		"feedback":            result.Feedback,
		"isCorrect":           result.IsCorrect,
		"evaluated":           result.Evaluated,
		"adjustmentCompleted": result.AdjustmentCompleted,
	}
	// Without a known state the client keeps its last one.
	if result.Adjustment != nil {
		resp["adjustmentMode"] = result.Adjustment
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PracticeHandler) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	result, err := h.Service.History(c.Request.Context(), middleware.UserID(c), c.Param("userId"), page, limit)
	if err != nil {
		respondError(c, "Failed to load history", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"practices": result.Practices,
		"pagination": gin.H{
			"total": result.Total,
			"page":  result.Page,
			"pages": result.Pages,
		},
	})
}

func (h *PracticeHandler) ExportHistory(c *gin.Context) {
	userID := c.Param("userId")
	practices, err := h.Service.AllHistory(c.Request.Context(), middleware.UserID(c), userID)
	if err != nil {
		respondError(c, "Failed to export history", err)
		return
	}

	f, err := export.HistoryWorkbook(practices)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to export history", err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("practice-history-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}

func (h *PracticeHandler) EnterAdjustmentMode(c *gin.Context) {
	var req struct {
		LearningSubject string `json:"learningSubject"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
	}

	state, err := h.Service.EnterAdjustmentMode(c.Request.Context(), middleware.UserID(c), req.LearningSubject)
	if err != nil {
		respondError(c, "Failed to enter adjustment mode", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        "Adjustment mode active",
		"adjustmentMode": state,
	})
}
