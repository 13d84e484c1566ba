package handler

import (
	"net/http"

	"movexa_cms/internal/model"
	"movexa_cms/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ServiceHandler handles the service catalog
type ServiceHandler struct {
	service service.CatalogService
	log     logrus.FieldLogger
}

// NewServiceHandler creates a new ServiceHandler
func NewServiceHandler(s service.CatalogService, log logrus.FieldLogger) *ServiceHandler {
	return &ServiceHandler{service: s, log: log}
}

func (h *ServiceHandler) ListServices(c *gin.Context) {
	services, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err, "Error reading services")
		return
	}
	c.JSON(http.StatusOK, services)
}

func (h *ServiceHandler) GetService(c *gin.Context) {
	id, ok := parseID(c, "Invalid service ID")
	if !ok {
		return
	}

	s, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err, "Error reading service")
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *ServiceHandler) CreateService(c *gin.Context) {
	userID, err := getAuthUserID(c)
	if err != nil {
		respondError(c, h.log, err, "Error creating service")
		return
	}

	var req model.CreateServiceRequest
	if !bindJSON(c, &req) {
		return
	}

	s, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.log, err, "Error creating service")
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *ServiceHandler) UpdateService(c *gin.Context) {
	id, ok := parseID(c, "Invalid service ID")
	if !ok {
		return
	}

	var req model.UpdateServiceRequest
	if !bindJSON(c, &req) {
		return
	}

	s, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.log, err, "Error updating service")
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *ServiceHandler) DeleteService(c *gin.Context) {
	id, ok := parseID(c, "Invalid service ID")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err, "Error deleting service")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service deleted successfully"})
}

// RegisterServiceRoutes registers catalog routes. Reads are public, writes
// need authMW and editorMW, deletes need authMW and adminMW.
func (h *ServiceHandler) RegisterServiceRoutes(rg *gin.RouterGroup, authMW, editorMW, adminMW gin.HandlerFunc) {
	servicesGroup := rg.Group("/services")
	{
		servicesGroup.GET("", h.ListServices)
		servicesGroup.GET("/:id", h.GetService)
		servicesGroup.POST("", authMW, editorMW, h.CreateService)
		servicesGroup.PUT("/:id", authMW, editorMW, h.UpdateService)
		servicesGroup.DELETE("/:id", authMW, adminMW, h.DeleteService)
	}
}
