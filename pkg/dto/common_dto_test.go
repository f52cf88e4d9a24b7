package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPaginationMeta(t *testing.T) {
	tests := []struct {
		name      string
		page      Pagination
		total     int64
		wantPages int
	}{
		{"empty", Pagination{Page: 1, Limit: 20}, 0, 0},
		{"exact", Pagination{Page: 1, Limit: 20}, 40, 2},
		{"partial last page", Pagination{Page: 2, Limit: 20}, 41, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := NewPaginationMeta(tt.page, tt.total)
			assert.Equal(t, tt.wantPages, meta.TotalPages)
			assert.Equal(t, tt.total, meta.TotalItems)
		})
	}
}

func TestPagination_Offset(t *testing.T) {
	assert.Equal(t, 0, Pagination{Page: 1, Limit: 20}.Offset())
	assert.Equal(t, 40, Pagination{Page: 3, Limit: 20}.Offset())
}
