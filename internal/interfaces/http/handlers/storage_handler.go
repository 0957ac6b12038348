package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"merovian.backend/internal/domain/entities"
	domainerrors "merovian.backend/internal/domain/errors"
	"merovian.backend/internal/interfaces/http/response"
)

type objectReader interface {
	Get(ctx context.Context, bucket, path string) (*entities.StoredObject, error)
}

// StorageHandler serves stored objects by their public URL.
type StorageHandler struct {
	objects objectReader
}

func NewStorageHandler(objects objectReader) *StorageHandler {
	return &StorageHandler{objects: objects}
}

// GetPublicObject
// GET /storage/v1/object/public/:bucket/*path
func (h *StorageHandler) GetPublicObject(c *gin.Context) {
	bucket := c.Param("bucket")
	path := strings.TrimPrefix(c.Param("path"), "/")
	if bucket == "" || path == "" || strings.Contains(path, "..") {
		response.Error(c, domainerrors.BadRequest("Invalid object path"))
		return
	}

	obj, err := h.objects.Get(c.Request.Context(), bucket, path)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, obj.ContentType, obj.Data)
}
