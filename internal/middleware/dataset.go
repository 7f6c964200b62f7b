package middleware

import (
	"errors"
	"net/http"

	"graphv/internal/models"
	"graphv/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	DatasetKey        = "dataset"
	DatasetExpiredKey = "dataset_expired"

	// SessionDatasetKey is the session field holding the dataset hash.
	SessionDatasetKey = "dataset_hash"
)

// LoadDataset resolves the session's dataset and sets it on the context.
// A hash whose dataset has expired is cleared from the session.
func LoadDataset(svc *services.GraphService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		hash, _ := session.Get(SessionDatasetKey).(string)

		if hash != "" {
			ds, err := svc.Dataset(c.Request.Context(), hash)
			switch {
			case err == nil:
				c.Set(DatasetKey, ds)
			case errors.Is(err, services.ErrDatasetNotFound):
				session.Delete(SessionDatasetKey)
				if err := session.Save(); err != nil {
					log.Warn("failed to clear session dataset", zap.Error(err))
				}
				c.Set(DatasetExpiredKey, true)
			default:
				log.Error("failed to load session dataset", zap.String("dataset", hash), zap.Error(err))
			}
		}
		c.Next()
	}
}

// DatasetRequired stops requests that have no loaded dataset. Browsers are
// sent back to the upload page, API callers get 409.
func DatasetRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(DatasetKey); exists {
			c.Next()
			return
		}
		if c.GetHeader("HX-Request") != "" || c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "no dataset loaded, upload a workbook first"})
			return
		}
		c.Redirect(http.StatusFound, "/")
		c.Abort()
	}
}

// CurrentDataset returns the dataset set by LoadDataset, if any.
func CurrentDataset(c *gin.Context) (*models.Dataset, bool) {
	v, exists := c.Get(DatasetKey)
	if !exists {
		return nil, false
	}
	ds, ok := v.(*models.Dataset)
	return ds, ok
}
