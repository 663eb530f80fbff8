package entity

import (
	"testing"
	"time"

	"github.com/sangkips/retailpos/internal/domain/enum"
	"github.com/stretchr/testify/assert"
)

func TestIsLowStockIncludesThreshold(t *testing.T) {
	b := &InventoryBatch{Quantity: 5, LowStockThreshold: 5}
	assert.True(t, b.IsLowStock())

	b.Quantity = 6
	assert.False(t, b.IsLowStock())

	b.Quantity = 0
	assert.True(t, b.IsLowStock())
}

func TestExpiryPredicates(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		v := now.Add(d)
		return &v
	}

	tests := []struct {
		name    string
		expiry  *time.Time
		expired bool
		soon    bool
		status  enum.ExpiryStatus
	}{
		{"no expiry", nil, false, false, enum.ExpiryStatusNone},
		{"yesterday", at(-24 * time.Hour), true, false, enum.ExpiryStatusExpired},
		{"exactly now", at(0), false, true, enum.ExpiryStatusExpiringSoon},
		{"in 30 days", at(ExpiringSoonWindow), false, true, enum.ExpiryStatusExpiringSoon},
		{"in 31 days", at(31 * 24 * time.Hour), false, false, enum.ExpiryStatusFresh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &InventoryBatch{ExpiryDate: tt.expiry}
			assert.Equal(t, tt.expired, b.IsExpired(now))
			assert.Equal(t, tt.soon, b.IsExpiringSoon(now))
			assert.Equal(t, tt.status, b.ExpiryStatus(now))
		})
	}
}

func TestExpiresWithinCustomWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	expiry := now.Add(10 * 24 * time.Hour)
	b := &InventoryBatch{ExpiryDate: &expiry}

	assert.True(t, b.ExpiresWithin(now, 14*24*time.Hour))
	assert.False(t, b.ExpiresWithin(now, 7*24*time.Hour))
}
