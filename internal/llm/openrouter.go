package llm

import (
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

	// openRouterTitle identifies the app on the OpenRouter dashboard.
	openRouterTitle   = "interviewiz"
	openRouterReferer = "https://github.com/abhisek/interviewiz"
)

// OpenRouterProvider is an OpenAIProvider pointed at OpenRouter. Model IDs
// are vendor-prefixed ("anthropic/claude-3-haiku") and used as given.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter API key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}

	conf := openai.DefaultConfig(cfg.APIKey)
	conf.HTTPClient = &http.Client{Transport: attributionTransport{next: http.DefaultTransport}}
	return &OpenRouterProvider{OpenAIProvider: newOpenAICompatible(conf, baseURL, cfg.Model)}, nil
}

// attributionTransport adds the headers OpenRouter uses for app rankings.
type attributionTransport struct {
	next http.RoundTripper
}

func (t attributionTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("HTTP-Referer", openRouterReferer)
	r.Header.Set("X-Title", openRouterTitle)
	return t.next.RoundTrip(r)
}
