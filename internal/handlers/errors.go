package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/justsurfingit/applicant-tracker/internal/database"
	"github.com/justsurfingit/applicant-tracker/internal/forms"
	"github.com/justsurfingit/applicant-tracker/internal/services"
	"github.com/justsurfingit/applicant-tracker/internal/storage"
)

// respondError maps service errors onto HTTP statuses. Anything unknown is
// logged and reported as a 500 without details.
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": verr.Errors})
	case errors.Is(err, database.ErrNotFound),
		errors.Is(err, storage.ErrNotFound),
		errors.Is(err, forms.ErrFieldNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrJobClosed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, forms.ErrInvalidForm),
		errors.Is(err, forms.ErrUnknownType),
		errors.Is(err, forms.ErrNoOptions),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrNoForm),
		errors.Is(err, storage.ErrInvalidHandle):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrLLMDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
}
