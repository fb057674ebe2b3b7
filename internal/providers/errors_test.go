package providers

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"
)

func TestClassifyError(t *testing.T) {
	cases := map[string]ErrorType{
		"gemini error 429: slow down":                    ErrorRateLimit,
		"Rate limit reached for requests":                ErrorRateLimit,
		"insufficient_quota: plan limit":                 ErrorRateLimit,
		"RESOURCE_EXHAUSTED: try again later":            ErrorRateLimit,
		"gemini error 400: invalid request":              ErrorFatal,
		"gemini key missing for alias \"primary\"":       ErrorFatal,
		"decode gemini response: unexpected end of json": ErrorFatal,
	}
	for msg, want := range cases {
		if got := ClassifyError(errors.New(msg)); got != want {
			t.Fatalf("classify %q: got %s want %s", msg, got, want)
		}
	}
	if got := ClassifyError(nil); got != "" {
		t.Fatalf("nil error should classify to empty, got %s", got)
	}
}

func TestTransportCauseKeepsRequestURLFromClassifier(t *testing.T) {
	refused := &url.Error{
		Op:  "Post",
		URL: "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash-lite:generateContent",
		Err: errors.New("dial tcp 142.250.72.10:443: connect: connection refused"),
	}
	wrapped := fmt.Errorf("gemini request failed: %w", transportCause(refused))
	if strings.Contains(wrapped.Error(), "generateContent") {
		t.Fatalf("request url leaked into error text: %q", wrapped.Error())
	}
	if got := ClassifyError(wrapped); got != ErrorFatal {
		t.Fatalf("refused connection classified %s, want %s", got, ErrorFatal)
	}

	limited := errors.New("gemini error 429: slow down")
	if got := transportCause(limited); got != limited {
		t.Fatalf("non-transport error should pass through, got %v", got)
	}
}
