package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateClamps(t *testing.T) {
	p := &PaginationParams{Page: 0, PerPage: 500}
	p.Validate()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxPerPage, p.PerPage)
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{3, 4}, Slice(items, &PaginationParams{Page: 2, PerPage: 2}))
	assert.Equal(t, []int{5}, Slice(items, &PaginationParams{Page: 3, PerPage: 2}))
	assert.Empty(t, Slice(items, &PaginationParams{Page: 4, PerPage: 2}))
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 2, 5)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)
}
