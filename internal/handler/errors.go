package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"movexa_cms/internal/middleware"
	"movexa_cms/internal/repository"
	"movexa_cms/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var errNoAuthUser = errors.New("user ID not found in context")

// respondError maps service errors onto status codes. Anything unknown is
// logged and answered with internalMsg.
func respondError(c *gin.Context, log logrus.FieldLogger, err error, internalMsg string) {
	var verr *service.ValidationError
	var dup *repository.DuplicateKeyError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"message": verr.Error()})
	case errors.As(err, &dup):
		c.JSON(http.StatusBadRequest, gin.H{"message": duplicateMessage(dup.Field)})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
	case errors.Is(err, service.ErrIncorrectPassword):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Current password is incorrect"})
	case errors.Is(err, errNoAuthUser):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "No token provided"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
	case errors.Is(err, service.ErrServiceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Service not found"})
	case errors.Is(err, service.ErrSectionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Section not found"})
	default:
		middleware.Logger(c, log).WithError(err).Error(internalMsg)
		c.JSON(http.StatusInternalServerError, gin.H{"message": internalMsg})
	}
}

func duplicateMessage(field string) string {
	if field == "" {
		return "Record already exists"
	}
	return strings.ToUpper(field[:1]) + field[1:] + " already exists"
}

// getAuthUserID returns the user id set by the JWT middleware
func getAuthUserID(c *gin.Context) (int64, error) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return 0, errNoAuthUser
	}
	return claims.UserID, nil
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return false
	}
	return true
}

func parseID(c *gin.Context, msg string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": msg})
		return 0, false
	}
	return id, true
}
