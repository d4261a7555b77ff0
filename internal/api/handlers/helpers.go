package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"greencart-ops-api/internal/apperr"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// respondError writes err as {"message": ...}. Internal errors are logged and
// answered with fallback so driver or SDK details never reach the client.
func respondError(c *gin.Context, logger *zap.Logger, err error, fallback string) {
	kind := apperr.KindOf(err)
	status := kind.HTTPStatus()

	switch kind {
	case apperr.Internal:
		logger.Error(fallback, zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"message": fallback})
	case apperr.UpstreamFormat:
		logger.Error(fallback, zap.String("path", c.FullPath()), zap.Error(err))
		body := gin.H{"message": apperr.PublicMessage(err, fallback)}
		var ae *apperr.Error
		if errors.As(err, &ae) && ae.Err != nil {
			body["details"] = ae.Err.Error()
		}
		c.JSON(status, body)
	default:
		c.JSON(status, gin.H{"message": apperr.PublicMessage(err, fallback)})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": message})
}

// objectIDParam parses the :id path parameter. entity is used in the 400
// message ("Invalid driver ID.").
func objectIDParam(c *gin.Context, entity string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		badRequest(c, fmt.Sprintf("Invalid %s ID.", entity))
		return primitive.NilObjectID, false
	}
	return id, true
}

// boolQuery mirrors the front end's filters: any non-empty value other than
// "true" means false; absent means no filter.
func boolQuery(c *gin.Context, key string) *bool {
	v := c.Query(key)
	if v == "" {
		return nil
	}
	b := v == "true"
	return &b
}
