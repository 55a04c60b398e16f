// server/internal/api/handlers/common_test.go
package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func testContext(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestPaginationParams(t *testing.T) {
	tests := []struct {
		query     string
		wantPage  int64
		wantLimit int64
	}{
		{"", 1, 10},
		{"page=3&limit=25", 3, 25},
		{"page=0&limit=0", 1, 10},
		{"page=-1&limit=-5", 1, 10},
		{"page=abc&limit=xyz", 1, 10},
		{"limit=500", 1, 100},
	}

	for _, tt := range tests {
		page, limit := paginationParams(testContext(tt.query))
		if page != tt.wantPage || limit != tt.wantLimit {
			t.Errorf("paginationParams(%q) = (%d, %d), want (%d, %d)", tt.query, page, limit, tt.wantPage, tt.wantLimit)
		}
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, limit, want int64
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{100, 25, 4},
		{5, 0, 0},
	}

	for _, tt := range tests {
		if got := totalPages(tt.total, tt.limit); got != tt.want {
			t.Errorf("totalPages(%d, %d) = %d, want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}

func TestNewID(t *testing.T) {
	id := newID("LOAD")
	if !strings.HasPrefix(id, "LOAD-") {
		t.Errorf("id %q missing prefix", id)
	}
	suffix := strings.TrimPrefix(id, "LOAD-")
	if len(suffix) != 8 {
		t.Errorf("id suffix %q should be 8 characters", suffix)
	}
	if suffix != strings.ToUpper(suffix) {
		t.Errorf("id suffix %q should be uppercase", suffix)
	}
	if newID("LOAD") == id {
		t.Error("two generated ids should differ")
	}
}
