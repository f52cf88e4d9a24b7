package response

import (
	"net/http"

	"anoa.com/wanderhub/pkg/apperror"
	"anoa.com/wanderhub/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	s, ok := userIDStr.(string)
	if !ok {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// ParamUUID parses a uuid path parameter.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperror.Wrap(apperror.ErrBadRequest, "invalid "+name)
	}
	return id, nil
}

// Error writes a standardized error response. Internal errors are attached
// to the gin context so the request logger records them.
func Error(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	if code == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(code, gin.H{"error": apperror.ErrInternal.Error()})
		return
	}

	c.JSON(code, gin.H{"error": err.Error()})
}

// BindError writes a 400 with a readable validation message.
func BindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

// IsStaff reports whether the caller was loaded as an admin or moderator.
func IsStaff(c *gin.Context) bool {
	role := c.GetString("user_role")
	return role == "admin" || role == "moderator"
}

// OptionalUserID returns the caller's id when the request was
// authenticated, or nil for anonymous requests.
func OptionalUserID(c *gin.Context) *uuid.UUID {
	id, err := GetUserID(c)
	if err != nil {
		return nil
	}
	return &id
}
