package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paramsFor(query string) Params {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/items?"+query, nil)
	return FromQuery(c)
}

func TestFromQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		page     int
		pageSize int
		offset   int
	}{
		{"defaults", "", 1, 20, 0},
		{"explicit", "page=3&page_size=10", 3, 10, 20},
		{"garbage falls back", "page=abc&page_size=-5", 1, 20, 0},
		{"page size clamped", "page=2&page_size=500", 2, 100, 100},
		{"huge page clamped", "page=99999999999&page_size=100", 10000, 100, 999900},
		{"page past int64 falls back", "page=99999999999999999999", 1, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := paramsFor(tt.query)
			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.pageSize, p.PageSize)
			assert.Equal(t, tt.offset, p.Offset())
		})
	}
}
