package providers

import (
	"fmt"
	"strings"
)

type NamedLLMProvider struct {
	Ref      ProviderRef
	Provider LLMProvider
}

// Manager holds the configured generation providers. All clients are built
// once at startup so callers share a single handle instead of racing to
// construct one lazily.
type Manager struct {
	llmProviders []NamedLLMProvider
}

func NewManager(providerSpec string) (*Manager, error) {
	m := &Manager{}
	for _, ref := range ParseProviderList(providerSpec) {
		p, err := buildProvider(ref)
		if err != nil {
			return nil, err
		}
		m.llmProviders = append(m.llmProviders, NamedLLMProvider{Ref: ref, Provider: p})
	}
	return m, nil
}

// ActiveLLMProvider returns the first provider with usable credentials.
// ok is false when nothing is configured and callers should fall back to
// deterministic generation.
func (m *Manager) ActiveLLMProvider() (LLMProvider, ProviderRef, bool) {
	for i := range m.llmProviders {
		if m.llmProviders[i].Provider.Configured() {
			return m.llmProviders[i].Provider, m.llmProviders[i].Ref, true
		}
	}
	return nil, ProviderRef{}, false
}

func (m *Manager) LLMCount() int {
	return len(m.llmProviders)
}

func buildProvider(ref ProviderRef) (LLMProvider, error) {
	switch strings.ToLower(ref.Name) {
	case "gemini":
		return NewGeminiProvider(ref.KeyAlias), nil
	case "openai":
		return NewOpenAIProvider(ref.KeyAlias), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", ref.Name)
	}
}
