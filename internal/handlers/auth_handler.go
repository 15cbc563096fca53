package handlers

import (
	"practice-service/internal/middleware"
	"practice-service/internal/service"
	"practice-service/internal/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	Service AuthService
}

func NewAuthHandler(s AuthService) *AuthHandler {
	return &AuthHandler{Service: s}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format")
		return
	}

	result, err := h.Service.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, "Failed to register", err)
		return
	}
	utils.CreatedResponse(c, "Registration successful", result)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Email and password are required")
		return
	}

	result, err := h.Service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, "Failed to log in", err)
		return
	}
	utils.SuccessResponse(c, "Login successful", result)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.Service.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, "Failed to load user", err)
		return
	}
	utils.SuccessResponse(c, "User retrieved", user)
}
