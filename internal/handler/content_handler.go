package handler

import (
	"net/http"

	"movexa_cms/internal/model"
	"movexa_cms/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ContentHandler handles the editable page sections
type ContentHandler struct {
	service service.ContentService
	log     logrus.FieldLogger
}

func NewContentHandler(s service.ContentService, log logrus.FieldLogger) *ContentHandler {
	return &ContentHandler{service: s, log: log}
}

func (h *ContentHandler) ListContent(c *gin.Context) {
	content, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err, "Error reading content")
		return
	}
	c.JSON(http.StatusOK, content)
}

func (h *ContentHandler) GetSection(c *gin.Context) {
	content, err := h.service.Get(c.Request.Context(), c.Param("section"))
	if err != nil {
		respondError(c, h.log, err, "Error reading content section")
		return
	}
	c.JSON(http.StatusOK, content)
}

func (h *ContentHandler) UpdateSection(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		respondError(c, h.log, err, "Error updating content")
		return
	}

	var req model.UpdateContentRequest
	if !bindJSON(c, &req) {
		return
	}

	content, err := h.service.Upsert(c.Request.Context(), c.Param("section"), userID, req)
	if err != nil {
		respondError(c, h.log, err, "Error updating content")
		return
	}
	c.JSON(http.StatusOK, content)
}

// RegisterContentRoutes registers content routes; updates need authMW and editorMW
func (h *ContentHandler) RegisterContentRoutes(rg *gin.RouterGroup, authMW, editorMW gin.HandlerFunc) {
	contentGroup := rg.Group("/content")
	{
		contentGroup.GET("", h.ListContent)
		contentGroup.GET("/:section", h.GetSection)
		contentGroup.PUT("/:section", authMW, editorMW, h.UpdateSection)
	}
}
