package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("checkout: %w", NewInsufficientStockError([]StockShortage{
		{ProductID: uuid.New(), Name: "Rice 1kg", Requested: 9, Available: 8, Shortfall: 1},
	}))

	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "Rice 1kg (short by 1)")
}

func TestPersistenceErrorKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewPersistenceError("save bill", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Equal(t, http.StatusServiceUnavailable, err.Code)
	assert.Equal(t, "Failed to save bill", err.Message)
}

func TestGetAppError(t *testing.T) {
	t.Run("passes app errors through", func(t *testing.T) {
		in := NewFieldError("price", "must be greater than zero")
		out := GetAppError(fmt.Errorf("wrapped: %w", in))
		require.Same(t, in, out)
		assert.Equal(t, KindValidation, out.Kind)
		assert.Len(t, out.Errors, 1)
	})

	t.Run("hides unknown errors behind a 500", func(t *testing.T) {
		out := GetAppError(errors.New("boom"))
		assert.Equal(t, http.StatusInternalServerError, out.Code)
		assert.Equal(t, "Internal server error", out.Message)
		assert.ErrorContains(t, out, "boom")
	})
}
