package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

// Provider is the interface for LLM providers.
type Provider interface {
	Chat(ctx context.Context, system, user string, maxTokens int) (string, error)
	Name() string
	IsConfigured() bool
}

// ChatProvider talks to any OpenAI-compatible chat completions API.
// Perplexity, OpenAI and most hosted providers share this wire format.
type ChatProvider struct {
	Label       string
	Model       string
	BaseURL     string
	APIKey      string
	Temperature float64
	client      *http.Client
}

// NewChatProvider creates a provider for an OpenAI-compatible endpoint.
// The API key is read from the named environment variable.
func NewChatProvider(label, model, baseURL, apiKeyEnv string, temperature float64) *ChatProvider {
	return &ChatProvider{
		Label:       label,
		Model:       model,
		BaseURL:     strings.TrimRight(baseURL, "/"),
		APIKey:      os.Getenv(apiKeyEnv),
		Temperature: temperature,
		client:      &http.Client{Timeout: 120 * time.Second},
	}
}

// Name returns the provider label.
func (p *ChatProvider) Name() string { return p.Label }

// IsConfigured checks if the API key is set.
func (p *ChatProvider) IsConfigured() bool {
	return p.APIKey != ""
}

// Chat sends a system and user message pair and returns the response text.
func (p *ChatProvider) Chat(ctx context.Context, system, user string, maxTokens int) (string, error) {
	if p.APIKey == "" {
		return "", fmt.Errorf("%s API key not configured", p.Label)
	}

	body := map[string]any{
		"model": p.Model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"max_tokens":  maxTokens,
		"temperature": p.Temperature,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.BaseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s API error: %w", p.Label, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%s API returned %d: %s", p.Label, resp.StatusCode, string(respBody))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in %s response", p.Label)
	}

	return result.Choices[0].Message.Content, nil
}

// OllamaProvider is a local Ollama LLM provider.
type OllamaProvider struct {
	Model   string
	BaseURL string
	client  *http.Client
}

// NewOllamaProvider creates a new Ollama provider.
func NewOllamaProvider(model, baseURL string) *OllamaProvider {
	return &OllamaProvider{
		Model:   model,
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// Name returns the provider label.
func (o *OllamaProvider) Name() string { return "ollama" }

// IsConfigured checks if Ollama is running and the model is available.
func (o *OllamaProvider) IsConfigured() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", o.BaseURL+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var result struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false
	}

	modelBase := strings.SplitN(o.Model, ":", 2)[0]
	for _, m := range result.Models {
		if strings.Contains(m.Name, modelBase) {
			return true
		}
	}
	log.Printf("Ollama model %q not found", o.Model)
	return false
}

// Chat sends a system and user message pair to Ollama.
func (o *OllamaProvider) Chat(ctx context.Context, system, user string, maxTokens int) (string, error) {
	body := map[string]any{
		"model": o.Model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"stream": false,
		"options": map[string]any{
			"num_predict": maxTokens,
		},
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.BaseURL+"/api/chat", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	return result.Message.Content, nil
}

// Options configures provider creation.
type Options struct {
	Provider    string
	Model       string
	BaseURL     string
	APIKeyEnv   string
	OllamaURL   string
	OllamaModel string
	Temperature float64
}

// CreateProvider creates an LLM provider based on configuration. Ollama is
// tried first when requested, falling back to the hosted provider.
func CreateProvider(opts Options) Provider {
	if strings.ToLower(opts.Provider) == "ollama" {
		p := NewOllamaProvider(opts.OllamaModel, opts.OllamaURL)
		if p.IsConfigured() {
			log.Printf("Using Ollama with model: %s", opts.OllamaModel)
			return p
		}
		log.Printf("Ollama not available, trying %s fallback...", opts.Provider)
	}

	label := strings.ToLower(opts.Provider)
	if label == "" || label == "ollama" {
		label = "perplexity"
	}
	p := NewChatProvider(label, opts.Model, opts.BaseURL, opts.APIKeyEnv, opts.Temperature)
	if p.IsConfigured() {
		log.Printf("Using %s with model: %s", label, opts.Model)
		return p
	}

	log.Printf("No LLM provider available. Check Ollama is running or set %s.", opts.APIKeyEnv)
	return nil
}
