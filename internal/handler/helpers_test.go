package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hepuentes/creditappweb/internal/apierror"
	"github.com/hepuentes/creditappweb/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	casos := map[service.ErrorKind]int{
		service.KindValidation:              http.StatusBadRequest,
		service.KindNotFound:                http.StatusNotFound,
		service.KindForbidden:               http.StatusForbidden,
		service.KindInsufficientStock:       http.StatusConflict,
		service.KindInsufficientTillBalance: http.StatusConflict,
		service.KindIrreversibleTransfer:    http.StatusConflict,
		service.KindNoValidHolder:           http.StatusConflict,
		service.KindInvalidPaymentAmount:    http.StatusUnprocessableEntity,
		service.KindPersistence:             http.StatusInternalServerError,
	}
	for kind, want := range casos {
		assert.Equal(t, want, statusFor(kind), "kind %v", kind)
	}
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, fmt.Errorf("abonar: %w", service.ErrForbidden))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, c.Errors)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	respondError(c, service.ErrInvalidPaymentAmount)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body apierror.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "invalid_payment_amount", body.Tipo)

	// Unclassified errors are left to the ErrorHandler middleware.
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	respondError(c, errors.New("pq: deadlock detected"))
	assert.False(t, c.Writer.Written())
	assert.Len(t, c.Errors, 1)
}

func TestParamUUID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "no-es-uuid"}}
	_, ok := paramUUID(c, "id")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "0b7c5b1e-5d8e-4a43-9d5f-8d7a1c2b3e4f"}}
	id, ok := paramUUID(c, "id")
	assert.True(t, ok)
	assert.Equal(t, "0b7c5b1e-5d8e-4a43-9d5f-8d7a1c2b3e4f", id.String())
}
