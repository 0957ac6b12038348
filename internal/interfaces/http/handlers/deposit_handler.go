package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"merovian.backend/internal/domain/entities"
	"merovian.backend/internal/interfaces/http/response"
)

type depositService interface {
	ListAssets() []entities.DepositAsset
	GetAsset(code string) (entities.DepositAsset, error)
	QRCode(code string, size int) ([]byte, error)
}

// DepositHandler serves receiving addresses. Nothing here writes.
type DepositHandler struct {
	service depositService
}

func NewDepositHandler(service depositService) *DepositHandler {
	return &DepositHandler{service: service}
}

// ListAssets
// GET /api/v1/deposit/assets
func (h *DepositHandler) ListAssets(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"assets": h.service.ListAssets()})
}

// GetAsset
// GET /api/v1/deposit/assets/:code
func (h *DepositHandler) GetAsset(c *gin.Context) {
	asset, err := h.service.GetAsset(c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"asset": asset})
}

// QRCode renders the address as a PNG
// GET /api/v1/deposit/assets/:code/qr?size=256
func (h *DepositHandler) QRCode(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	png, err := h.service.QRCode(c.Param("code"), size)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/png", png)
}
