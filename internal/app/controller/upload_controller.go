package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/tiendita/tiendita-backend/internal/errors"
	"github.com/tiendita/tiendita-backend/internal/middleware"
	"github.com/tiendita/tiendita-backend/internal/storage"
)

// Image types accepted for product uploads.
var allowedImageTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"image/webp",
}

type UploadController struct {
	storage *storage.S3Storage
}

func NewUploadController(storage *storage.S3Storage) *UploadController {
	return &UploadController{
		storage: storage,
	}
}

type PresignUploadRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// PresignUpload issues a pre-signed PUT URL for a product image (admin only)
// POST /api/v1/uploads/presigned-url
func (ctrl *UploadController) PresignUpload(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req PresignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid presign upload request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Filename and content type are required")
		return
	}

	if !storage.AllowedContentType(req.ContentType, allowedImageTypes) {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Only image files are allowed (JPEG, PNG, GIF, WEBP)")
		return
	}

	upload, err := ctrl.storage.PresignUpload(req.Filename, req.ContentType, "products")
	if err != nil {
		log.Error("Failed to presign upload", err, map[string]interface{}{
			"filename":     req.Filename,
			"content_type": req.ContentType,
		})
		apperrors.InternalError(c, "Failed to generate upload URL")
		return
	}

	log.Info("Presigned upload URL issued", map[string]interface{}{
		"filename": req.Filename,
		"key":      upload.Key,
	})

	c.JSON(http.StatusOK, upload)
}
