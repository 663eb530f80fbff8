package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRound(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"236", "236.00"},
		{"2.345", "2.35"},
		{"2.355", "2.36"},
		{"2.344999", "2.34"},
		{"0.005", "0.01"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(Round(decimal.RequireFromString(tt.in))))
		})
	}
}

func TestPercent(t *testing.T) {
	got := Percent(decimal.NewFromInt(200), decimal.NewFromInt(9))
	assert.True(t, got.Equal(decimal.NewFromInt(18)), got.String())

	got = Percent(decimal.RequireFromString("15.50"), decimal.RequireFromString("2.5"))
	assert.Equal(t, "0.3875", got.String())
}

func TestHasAtMostPlaces(t *testing.T) {
	assert.True(t, HasAtMostPlaces(decimal.RequireFromString("199.99"), 2))
	assert.True(t, HasAtMostPlaces(decimal.NewFromInt(60), 2))
	assert.False(t, HasAtMostPlaces(decimal.RequireFromString("1.005"), 2))
}
