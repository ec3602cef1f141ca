// internal/api/handlers/respond.go
package handlers

import (
	"errors"
	"net/http"

	"go-quickstart/internal/maps"
	"go-quickstart/internal/service"

	"github.com/gin-gonic/gin"
)

// userStatus maps user workflow errors to HTTP statuses. Zero means unexpected.
func userStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidID),
		errors.Is(err, service.ErrUserExists),
		errors.Is(err, service.ErrEmailInUse),
		errors.Is(err, service.ErrInvalidOTP),
		errors.Is(err, service.ErrEmailRequired):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrStorageDisabled):
		return http.StatusServiceUnavailable
	}
	return 0
}

// respondUser writes {"message": ...} for known errors and
// {"message": fallback, "error": ...} for everything else.
func respondUser(c *gin.Context, err error, fallback string) {
	_ = c.Error(err)
	if status := userStatus(err); status != 0 {
		c.JSON(status, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"message": fallback, "error": err.Error()})
}

// respondMaps writes {"error": ...}. Lookups that miss are 404, storage failures 500,
// everything else including upstream API errors is 400.
func respondMaps(c *gin.Context, err error) {
	_ = c.Error(err)
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, service.ErrDeliveryNotFound), errors.Is(err, service.ErrPropertyNotFound):
		status = http.StatusNotFound
	case isMapsInputError(err):
	default:
		var apiErr *maps.APIError
		if !errors.As(err, &apiErr) && !errors.Is(err, maps.ErrAddressNotFound) && !errors.Is(err, maps.ErrLocationNotFound) {
			status = http.StatusInternalServerError
		}
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func isMapsInputError(err error) bool {
	for _, target := range []error{
		service.ErrValidation,
		service.ErrInvalidID,
		service.ErrLocationRequired,
		service.ErrTooFewAddresses,
		service.ErrAddressRequired,
		service.ErrLatLngRequired,
		service.ErrRouteOptimization,
		service.ErrInvalidStatus,
		service.ErrInvalidProperty,
		service.ErrInvalidRating,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
