package handler

import (
	"net/http"

	"movexa_cms/internal/model"
	"movexa_cms/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ProfileHandler serves the authenticated user's own account
type ProfileHandler struct {
	service service.ProfileService
	log     logrus.FieldLogger
}

func NewProfileHandler(s service.ProfileService, log logrus.FieldLogger) *ProfileHandler {
	return &ProfileHandler{service: s, log: log}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		respondError(c, h.log, err, "Internal server error")
		return
	}

	user, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		respondError(c, h.log, err, "Internal server error")
		return
	}

	var req model.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.service.Update(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.log, err, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		respondError(c, h.log, err, "Internal server error")
		return
	}

	var req model.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), userID, req); err != nil {
		respondError(c, h.log, err, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// RegisterProfileRoutes registers profile routes behind authMW
func (h *ProfileHandler) RegisterProfileRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	profileGroup := rg.Group("/profile", authMW)
	{
		profileGroup.GET("", h.GetProfile)
		profileGroup.PUT("", h.UpdateProfile)
		profileGroup.PUT("/password", h.ChangePassword)
	}
}
