package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func queryFrom(t *testing.T, rawQuery string) Query {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)
	return FromContext(c)
}

func TestFromContext(t *testing.T) {
	tests := []struct {
		name     string
		rawQuery string
		want     Query
	}{
		{"defaults", "", Query{Page: 1, Size: 20}},
		{"explicit", "page=3&size=50", Query{Page: 3, Size: 50}},
		{"zero page clamped", "page=0", Query{Page: 1, Size: 20}},
		{"negative size clamped", "size=-5", Query{Page: 1, Size: 20}},
		{"oversize clamped", "size=9999", Query{Page: 1, Size: 100}},
		{"garbage falls back", "page=abc&size=xyz", Query{Page: 1, Size: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, queryFrom(t, tt.rawQuery))
		})
	}
}

func TestMeta(t *testing.T) {
	m := Meta(45, Query{Page: 2, Size: 20})
	assert.Equal(t, int64(45), m.Total)
	assert.Equal(t, 2, m.CurrentPage)
	assert.Equal(t, 3, m.TotalPage)
	assert.True(t, m.HasNextPage)

	last := Meta(45, Query{Page: 3, Size: 20})
	assert.False(t, last.HasNextPage)

	empty := Meta(0, Query{Page: 1, Size: 20})
	assert.Equal(t, 0, empty.TotalPage)
	assert.False(t, empty.HasNextPage)
}
