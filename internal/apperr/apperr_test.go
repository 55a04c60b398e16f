// server/internal/apperr/apperr_test.go
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NotFound("load %s not found", "LOAD-1"), http.StatusNotFound},
		{Conflict("truck is busy"), http.StatusConflict},
		{BadRequest("pickup date must be in the future"), http.StatusBadRequest},
		{Forbidden("not your shipment"), http.StatusForbidden},
		{Unauthorized("invalid token"), http.StatusUnauthorized},
		{errors.New("mongo blew up"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", ErrConflict), http.StatusConflict},
	}

	for _, tt := range tests {
		if got := Status(tt.err); got != tt.want {
			t.Errorf("Status(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestMessage(t *testing.T) {
	if got := Message(NotFound("load %s not found", "LOAD-1")); got != "load LOAD-1 not found" {
		t.Errorf("Message = %q, want the sentinel prefix stripped", got)
	}
	if got := Message(errors.New("connection refused to 10.0.0.3")); got != "internal server error" {
		t.Errorf("Message leaked internals: %q", got)
	}
	if got := Message(nil); got != "" {
		t.Errorf("Message(nil) = %q, want empty", got)
	}
}

func TestErrorsIs(t *testing.T) {
	err := Conflict("carrier has already placed a bid for this load")
	if !errors.Is(err, ErrConflict) {
		t.Error("constructed error should match its sentinel")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("constructed error should not match other sentinels")
	}
}
