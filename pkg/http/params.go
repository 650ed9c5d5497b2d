package http

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"liyu1981.xyz/energy-opdb-service/pkg/errs"
	"liyu1981.xyz/energy-opdb-service/pkg/models"
)

func intParam(c *gin.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, errs.Validation("%s must be an integer", name)
	}
	return v, nil
}

func objectIDParam(c *gin.Context, name string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(c.Param(name))
	if err != nil {
		return bson.ObjectID{}, errs.Validation("%s must be a 24 character hex ObjectId", name)
	}
	return id, nil
}

func referenceValue(name, raw string) (models.Reference, error) {
	ref, err := models.ParseReference(raw)
	if err != nil {
		return models.Reference{}, errs.Validation("%s must be an integer id or an ObjectId", name)
	}
	return ref, nil
}

// timeQuery reads an optional RFC 3339 timestamp; a bare date means
// midnight UTC.
func timeQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, errs.Validation("%s must be an RFC 3339 timestamp", name)
}

func boolQuery(c *gin.Context, name string) (bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errs.Validation("%s must be a boolean", name)
	}
	return v, nil
}

func objectIDQuery(c *gin.Context, name string) (*bson.ObjectID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := bson.ObjectIDFromHex(raw)
	if err != nil {
		return nil, errs.Validation("%s must be a 24 character hex ObjectId", name)
	}
	return &id, nil
}

func bindBody(c *gin.Context, dest any) error {
	if err := c.ShouldBindJSON(dest); err != nil {
		return errs.Validation("invalid request body: %v", err)
	}
	return nil
}
