package handlers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"merovian.backend/internal/domain/entities"
	domainerrors "merovian.backend/internal/domain/errors"
	"merovian.backend/internal/interfaces/http/response"
)

type kycService interface {
	Submit(ctx context.Context, userID uuid.UUID, sub *entities.KYCSubmission) (*entities.KYCDetails, *entities.Profile, error)
	GetDetails(ctx context.Context, userID uuid.UUID) (*entities.KYCDetails, error)
}

// KYCHandler accepts identity verification submissions.
type KYCHandler struct {
	service        kycService
	maxUploadBytes int64
}

func NewKYCHandler(service kycService, maxUploadBytes int64) *KYCHandler {
	return &KYCHandler{service: service, maxUploadBytes: maxUploadBytes}
}

// Submit takes a multipart form with documentFront and documentBack images.
// POST /api/v1/kyc
func (h *KYCHandler) Submit(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	// two documents plus form fields
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 2*h.maxUploadBytes+1<<20)

	frontHeader, frontErr := c.FormFile("documentFront")
	backHeader, backErr := c.FormFile("documentBack")
	if frontErr != nil || backErr != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(frontErr, &tooLarge) || errors.As(backErr, &tooLarge) {
			response.Error(c, domainerrors.BadRequest("Upload too large"))
			return
		}
		response.Error(c, domainerrors.ErrMissingDocuments)
		return
	}

	var form entities.KYCForm
	if err := c.ShouldBind(&form); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	front, err := h.readUpload(frontHeader)
	if err != nil {
		response.Error(c, err)
		return
	}
	back, err := h.readUpload(backHeader)
	if err != nil {
		response.Error(c, err)
		return
	}

	details, profile, err := h.service.Submit(c.Request.Context(), userID, &entities.KYCSubmission{
		Form:  form,
		Front: front,
		Back:  back,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"kyc":     details,
		"profile": profile,
		"message": "KYC submitted. Your documents are pending review.",
	})
}

// GetDetails returns the caller's own submission.
// GET /api/v1/kyc
func (h *KYCHandler) GetDetails(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	details, err := h.service.GetDetails(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			response.Error(c, domainerrors.NotFound("No KYC submission found"))
			return
		}
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"kyc": details})
}

func (h *KYCHandler) readUpload(header *multipart.FileHeader) (*entities.UploadedFile, error) {
	if header.Size > h.maxUploadBytes {
		return nil, domainerrors.BadRequest("File " + header.Filename + " exceeds the upload limit")
	}
	f, err := header.Open()
	if err != nil {
		return nil, domainerrors.BadRequest("Unreadable upload")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes+1))
	if err != nil {
		return nil, domainerrors.BadRequest("Unreadable upload")
	}
	if int64(len(data)) > h.maxUploadBytes {
		return nil, domainerrors.BadRequest("File " + header.Filename + " exceeds the upload limit")
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return &entities.UploadedFile{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}
