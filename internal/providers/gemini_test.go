package providers

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestResolveGeminiKeyAlias(t *testing.T) {
	t.Setenv("EDUPLATFORM_GEMINI_KEY_PRIMARY", "alias-key")
	t.Setenv("GEMINI_API_KEY", "shared-key")
	if got := resolveGeminiKey("primary"); got != "alias-key" {
		t.Fatalf("alias key should win, got %q", got)
	}
	if got := resolveGeminiKey("other"); got != "shared-key" {
		t.Fatalf("unknown alias should fall back to shared key, got %q", got)
	}
	if got := resolveGeminiKey(""); got != "shared-key" {
		t.Fatalf("empty alias should fall back to shared key, got %q", got)
	}
}

func TestNewGeminiProviderDefaults(t *testing.T) {
	t.Setenv("EDUPLATFORM_GEMINI_MODEL", "")
	t.Setenv("EDUPLATFORM_GEMINI_KEY_ALIAS1", "")
	t.Setenv("GEMINI_API_KEY", "")
	p := NewGeminiProvider("alias1")
	if p == nil {
		t.Fatalf("expected provider instance")
	}
	if p.model != defaultGeminiModel {
		t.Fatalf("unexpected default model %q", p.model)
	}
	if p.Configured() {
		t.Fatalf("provider without key should report unconfigured")
	}
}

type refusingTransport struct{}

func (refusingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("dial tcp 142.250.72.10:443: connect: connection refused")
}

func TestGeminiTransportFailureClassifiesFatal(t *testing.T) {
	t.Setenv("EDUPLATFORM_GEMINI_MODEL", "")
	t.Setenv("GEMINI_API_KEY", "test-key")
	p := NewGeminiProvider("")
	p.client = &http.Client{Transport: refusingTransport{}}

	_, _, err := p.Generate(context.Background(), GenerateRequest{Prompt: "hello"})
	if err == nil {
		t.Fatalf("expected transport error")
	}
	if got := ClassifyError(err); got != ErrorFatal {
		t.Fatalf("transport failure classified %s, want %s", got, ErrorFatal)
	}
}
