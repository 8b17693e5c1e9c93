package handler

import (
	"net/http"

	"github.com/dcizov/t3-starter-template/internal/dto"
	"github.com/dcizov/t3-starter-template/internal/service"
	"github.com/gin-gonic/gin"
)

// SettingsHandler handles account settings requests
type SettingsHandler struct {
	settingsService service.SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// UpdateSettings applies a partial update to the authenticated user's profile
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	userID, exists := c.Get(ContextUserID)
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "User ID not found in context",
		})
		return
	}

	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	user, err := h.settingsService.UpdateSettings(c.Request.Context(), userID.(string), &req)
	if err != nil {
		respondFlowError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FlowResponse{
		Success: true,
		Message: "User updated successfully",
		User:    userView(user),
	})
}
