package enum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckoutStateTransitions(t *testing.T) {
	assert.True(t, CheckoutDraft.CanTransitionTo(CheckoutValidating))
	assert.True(t, CheckoutDraft.CanTransitionTo(CheckoutRejected))
	assert.False(t, CheckoutDraft.CanTransitionTo(CheckoutCommitted))
	assert.True(t, CheckoutValidating.CanTransitionTo(CheckoutCommitted))
	assert.True(t, CheckoutValidating.CanTransitionTo(CheckoutRejected))

	for _, final := range []CheckoutState{CheckoutCommitted, CheckoutRejected} {
		assert.True(t, final.IsFinal())
		for _, next := range []CheckoutState{CheckoutDraft, CheckoutValidating, CheckoutCommitted, CheckoutRejected} {
			assert.False(t, final.CanTransitionTo(next), "%s -> %s", final, next)
		}
	}
	assert.False(t, CheckoutValidating.IsFinal())
}
