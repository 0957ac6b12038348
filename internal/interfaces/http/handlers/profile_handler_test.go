package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"merovian.backend/internal/domain/entities"
	domainerrors "merovian.backend/internal/domain/errors"
	"merovian.backend/pkg/utils"
)

type profileServiceStub struct {
	getFn  func(ctx context.Context, id uuid.UUID) (*entities.Profile, error)
	listFn func(ctx context.Context, id uuid.UUID, page, limit int) ([]*entities.Transaction, utils.PaginationMeta, error)
}

func (s profileServiceStub) GetProfile(ctx context.Context, id uuid.UUID) (*entities.Profile, error) {
	return s.getFn(ctx, id)
}

func (s profileServiceStub) ListTransactions(ctx context.Context, id uuid.UUID, page, limit int) ([]*entities.Transaction, utils.PaginationMeta, error) {
	return s.listFn(ctx, id, page, limit)
}

func TestProfileHandler_GetProfile(t *testing.T) {
	userID := uuid.New()

	t.Run("missing row", func(t *testing.T) {
		r := gin.New()
		h := NewProfileHandler(profileServiceStub{
			getFn: func(context.Context, uuid.UUID) (*entities.Profile, error) {
				return nil, domainerrors.ErrNotFound
			},
		})
		r.GET("/profile", asUser(userID), h.GetProfile)

		w := do(r, http.MethodGet, "/profile", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Profile not found", decode(t, w)["message"])
	})

	t.Run("ok", func(t *testing.T) {
		r := gin.New()
		h := NewProfileHandler(profileServiceStub{
			getFn: func(_ context.Context, id uuid.UUID) (*entities.Profile, error) {
				p := entities.NewProfile(id, "ann@example.com", "Ann", time.Now())
				p.Balance = decimal.RequireFromString("120.50")
				return p, nil
			},
		})
		r.GET("/profile", asUser(userID), h.GetProfile)

		w := do(r, http.MethodGet, "/profile", "")
		require.Equal(t, http.StatusOK, w.Code)
		profile := decode(t, w)["profile"].(map[string]any)
		assert.Equal(t, "120.5", profile["balance"])
		assert.Equal(t, "unverified", profile["kycStatus"])
	})
}

func TestProfileHandler_ListTransactions(t *testing.T) {
	userID := uuid.New()
	r := gin.New()
	h := NewProfileHandler(profileServiceStub{
		listFn: func(_ context.Context, id uuid.UUID, page, limit int) ([]*entities.Transaction, utils.PaginationMeta, error) {
			assert.Equal(t, userID, id)
			assert.Equal(t, 2, page)
			assert.Equal(t, 10, limit)
			return []*entities.Transaction{{ID: uuid.New(), UserID: id, Type: entities.TransactionWithdrawal}},
				utils.PaginationMeta{Page: 2, Limit: 10, TotalCount: 11, TotalPages: 2}, nil
		},
	})
	r.GET("/transactions", asUser(userID), h.ListTransactions)

	w := do(r, http.MethodGet, "/transactions?page=2&limit=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["transactions"], 1)
	assert.NotNil(t, body["pagination"])
}
