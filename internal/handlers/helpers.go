package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"authway/internal/services"
)

// более устойчиво к типам (int / int64 / float64 / string)
func getIntFromCtx(c *gin.Context, key string) (int, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n, true
		}
	}
	return 0, false
}

func accountIDFromCtx(c *gin.Context) (int, bool) {
	return getIntFromCtx(c, "account_id")
}

// respondServiceError — единое соответствие sentinel-ошибок сервисов
// HTTP-статусам. Все доменные отказы — пользовательские, не фатальные.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrDuplicateIdentifier),
		errors.Is(err, services.ErrInvalidIdentifier),
		errors.Is(err, services.ErrAlreadyVerified),
		errors.Is(err, services.ErrCodeInvalid),
		errors.Is(err, services.ErrCodeExpired),
		errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrInvalidImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidRefresh),
		errors.Is(err, services.ErrInvalidAccess):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
