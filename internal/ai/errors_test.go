package ai

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"quota", errors.New("gemini API error 429 (RESOURCE_EXHAUSTED): quota exceeded"), ReasonQuota},
		{"rate limit", errors.New("rate limit hit"), ReasonQuota},
		{"bad key", errors.New("API key not valid"), ReasonAuth},
		{"forbidden", errors.New("gemini API returned status 403"), ReasonAuth},
		{"region", errors.New("user location is not supported"), ReasonRegion},
		{"timeout", fmt.Errorf("generate request failed: %w", errors.New("context deadline exceeded")), ReasonTimeout},
		{"unavailable", errors.New("gemini API returned status 503"), ReasonUnavailable},
		{"overloaded", errors.New("the model is overloaded"), ReasonUnavailable},
		{"unknown", errors.New("something odd"), ReasonUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyFailure(tt.err); got != tt.want {
				t.Errorf("ClassifyFailure(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
