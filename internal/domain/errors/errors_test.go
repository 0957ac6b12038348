package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Constructors(t *testing.T) {
	err := NewAppError(http.StatusBadRequest, CodeBadRequest, "bad", ErrBadRequest)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, CodeBadRequest, err.Code)
	assert.Equal(t, "bad", err.Message)
	assert.Equal(t, ErrBadRequest.Error(), err.Error())
	assert.ErrorIs(t, err, ErrBadRequest)

	assert.Equal(t, http.StatusNotFound, NotFound("missing").Status)
	assert.Equal(t, CodeConflict, Conflict("exists").Code)
	assert.Equal(t, CodeInternalError, InternalError(stderrors.New("db down")).Code)
	assert.Equal(t, CodeInvalidInput, BadRequest("bad request").Code)
	assert.Equal(t, CodeUnauthorized, Unauthorized("unauthorized").Code)
	assert.Equal(t, http.StatusForbidden, Forbidden("nope").Status)

	custom := NewError("custom", ErrForbidden)
	assert.Equal(t, ErrForbidden.Error(), custom.Error())

	noWrapped := &AppError{Message: "only message"}
	assert.Equal(t, "only message", noWrapped.Error())
}

func TestFromError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
		msg    string
	}{
		{fmt.Errorf("get profile: %w", ErrNotFound), http.StatusNotFound, CodeNotFound, "Resource not found"},
		{ErrAlreadyExists, http.StatusConflict, CodeConflict, "Resource already exists"},
		{fmt.Errorf("debit: %w", ErrStaleWrite), http.StatusConflict, CodeStaleWrite, "The record changed while saving, please retry"},
		{ErrInsufficientFunds, http.StatusBadRequest, CodeInsufficientFunds, "Insufficient balance"},
		{ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials, "Invalid email or password"},
		{ErrForbidden, http.StatusForbidden, CodeForbidden, "Insufficient permissions"},
		{ErrMissingDocuments, http.StatusBadRequest, CodeInvalidInput, "Please upload both sides of your ID"},
		{ErrUnsupportedAsset, http.StatusBadRequest, CodeInvalidInput, "unsupported asset"},
		{ErrUnavailable, http.StatusServiceUnavailable, CodeUnavailable, "Service temporarily unavailable"},
		{stderrors.New("boom"), http.StatusInternalServerError, CodeInternalError, "internal server error"},
	}
	for _, tc := range cases {
		got := FromError(tc.err)
		assert.Equal(t, tc.status, got.Status, tc.err.Error())
		assert.Equal(t, tc.code, got.Code, tc.err.Error())
		assert.Equal(t, tc.msg, got.Message, tc.err.Error())
	}

	wrapped := fmt.Errorf("handler: %w", BadRequest("Minimum withdrawal amount is $10.00"))
	assert.Equal(t, "Minimum withdrawal amount is $10.00", FromError(wrapped).Message)
}
