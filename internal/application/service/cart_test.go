package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCartMergesRepeatedProducts(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	cart, err := NewCart(
		CartLine{ProductID: a, Quantity: 2},
		CartLine{ProductID: b, Quantity: 1},
		CartLine{ProductID: a, Quantity: 3},
	)
	require.NoError(t, err)

	assert.Equal(t, []CartLine{{ProductID: a, Quantity: 5}, {ProductID: b, Quantity: 1}}, cart.Lines())
	assert.Equal(t, []uuid.UUID{a, b}, cart.ProductIDs())
}

func TestNewCartValidatesLines(t *testing.T) {
	_, err := NewCart(
		CartLine{ProductID: uuid.Nil, Quantity: 1},
		CartLine{ProductID: uuid.New(), Quantity: 0},
	)
	require.Error(t, err)

	appErr := apperror.GetAppError(err)
	require.NotNil(t, appErr)
	require.Len(t, appErr.Errors, 2)
	assert.Equal(t, "lines[0].product_id", appErr.Errors[0].Field)
	assert.Equal(t, "lines[1].quantity", appErr.Errors[1].Field)
}

func TestCartAddChecksAvailable(t *testing.T) {
	pid := uuid.New()
	cart, _ := NewCart()

	require.NoError(t, cart.Add(pid, 3, 5))
	err := cart.Add(pid, 3, 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrValidation))
	assert.Equal(t, "Only 5 in stock", apperror.GetAppError(err).Errors[0].Message)
	assert.Equal(t, 3, cart.Quantity(pid))

	require.NoError(t, cart.Add(pid, 2, 5))
	assert.Equal(t, 5, cart.Quantity(pid))
}

func TestCartSet(t *testing.T) {
	pid := uuid.New()
	cart, _ := NewCart(CartLine{ProductID: pid, Quantity: 1})

	require.NoError(t, cart.Set(pid, 4, 4))
	assert.Equal(t, 4, cart.Quantity(pid))

	assert.Error(t, cart.Set(pid, 5, 4))
	assert.Error(t, cart.Set(pid, -1, 4))
	assert.True(t, errors.Is(cart.Set(uuid.New(), 1, 4), apperror.ErrNotFound))

	require.NoError(t, cart.Set(pid, 0, 0))
	assert.Empty(t, cart.Lines())
}

func TestCartLinesReturnsCopy(t *testing.T) {
	pid := uuid.New()
	cart, _ := NewCart(CartLine{ProductID: pid, Quantity: 1})

	lines := cart.Lines()
	lines[0].Quantity = 99
	assert.Equal(t, 1, cart.Quantity(pid))
}
