package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/exifnotes/logbook/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseIDParam_Valid(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "123"}}

	id, ok := parseIDParam(c, "id")

	assert.True(t, ok)
	assert.Equal(t, int64(123), id)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestParseIDParam_Invalid(t *testing.T) {
	for _, value := range []string{"abc", "-1", "0", ""} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: value}}

		id, ok := parseIDParam(c, "id")

		assert.False(t, ok, value)
		assert.Equal(t, int64(0), id, value)
		assert.Equal(t, http.StatusBadRequest, w.Code, value)
		assert.Contains(t, w.Body.String(), "invalid id", value)
	}
}

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		err  error
		code int
		body string
	}{
		{fmt.Errorf("camera 3: %w", services.ErrNotFound), http.StatusNotFound, "no longer exists"},
		{fmt.Errorf("lens 1: %w", services.ErrGearInUse), http.StatusConflict, "cannot be deleted"},
		{fmt.Errorf("%w: roll name is required", services.ErrInvalidInput), http.StatusBadRequest, "roll name is required"},
		{errors.New("disk I/O error"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		respondServiceError(c, zap.NewNop(), tt.err, "test")

		assert.Equal(t, tt.code, w.Code, tt.err.Error())
		assert.Contains(t, w.Body.String(), tt.body)
		assert.NotContains(t, w.Body.String(), "disk I/O")
	}
}
