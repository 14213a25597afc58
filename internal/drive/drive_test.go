package drive

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/api/googleapi"
)

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"too many requests", &googleapi.Error{Code: http.StatusTooManyRequests}, true},
		{"wrapped", fmt.Errorf("listing: %w", &googleapi.Error{Code: http.StatusTooManyRequests}), true},
		{"server error", &googleapi.Error{Code: http.StatusInternalServerError}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRateLimited(tt.err); got != tt.want {
				t.Errorf("isRateLimited(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
