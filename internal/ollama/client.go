// Package ollama implements the single-model query client against a local
// Ollama server: blocking and streaming generation, the registry listing,
// and a version probe used for readiness.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultHost is used when no Ollama host is configured.
const DefaultHost = "http://127.0.0.1:11434"

// Client talks to one Ollama server over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient constructs a Client for the given base URL.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultHost
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:    10,
		IdleConnTimeout: 90 * time.Second,
	}
	// Client.Timeout stays 0: generation runs unbounded and is cut off via
	// request contexts, never a transport-wide deadline.
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Transport: tr, Timeout: 0},
		log:        log.With().Str("component", "ollama").Logger(),
	}
}

// GenerateParams are the inputs of one model query.
type GenerateParams struct {
	Model        string
	Prompt       string
	SystemPrompt string
	Temperature  float64
}

// ClampTemperature bounds t to the accepted sampling range [0.0, 2.0].
func ClampTemperature(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 2 {
		return 2
	}
	return t
}

func (p GenerateParams) wire(stream bool) generateRequest {
	req := generateRequest{
		Model:   p.Model,
		Prompt:  p.Prompt,
		Stream:  stream,
		Options: &generateOptions{Temperature: ClampTemperature(p.Temperature)},
	}
	if strings.TrimSpace(p.SystemPrompt) != "" {
		req.System = p.SystemPrompt
	}
	return req
}

func (c *Client) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("ollama returned %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}
	return resp, nil
}

// Generate performs one blocking query and returns the full response text.
func (c *Client) Generate(ctx context.Context, p GenerateParams) (string, error) {
	start := time.Now()
	resp, err := c.post(ctx, "/api/generate", p.wire(false))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.Error != "" {
		return "", errors.New(out.Error)
	}
	c.log.Debug().Str("model", p.Model).Dur("dur", time.Since(start)).Int("len", len(out.Response)).Msg("generate done")
	return out.Response, nil
}

// GenerateStream performs one streaming query. onChunk is invoked for every
// fragment in arrival order; fragments are concatenated with no dedup and no
// reordering. If onChunk returns an error the client stops consuming and
// returns whatever was accumulated with a nil error: caller-requested early
// termination yields a partial result, not a failure.
func (c *Client) GenerateStream(ctx context.Context, p GenerateParams, onChunk func(string) error) (string, error) {
	start := time.Now()
	resp, err := c.post(ctx, "/api/generate", p.wire(true))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var full strings.Builder
	r := bufio.NewReader(resp.Body)
	for {
		line, err := r.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			var msg generateResponse
			if jerr := json.Unmarshal(bytes.TrimSpace(line), &msg); jerr != nil {
				return full.String(), fmt.Errorf("decode stream line: %w", jerr)
			}
			if msg.Error != "" {
				return full.String(), errors.New(msg.Error)
			}
			if msg.Response != "" {
				full.WriteString(msg.Response)
				if onChunk != nil {
					if cbErr := onChunk(msg.Response); cbErr != nil {
						c.log.Debug().Str("model", p.Model).Msg("stream cut short by caller")
						return full.String(), nil
					}
				}
			}
			if msg.Done {
				break
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if ctx.Err() != nil {
				return full.String(), ctx.Err()
			}
			return full.String(), err
		}
	}
	c.log.Debug().Str("model", p.Model).Dur("dur", time.Since(start)).Int("len", full.Len()).Msg("stream done")
	return full.String(), nil
}

// Query is the blocking query-client form used by the orchestration loop.
func (c *Client) Query(ctx context.Context, model, prompt, systemPrompt string, temperature float64) (string, error) {
	return c.Generate(ctx, GenerateParams{Model: model, Prompt: prompt, SystemPrompt: systemPrompt, Temperature: temperature})
}

// QueryStream is the incremental query-client form used by the orchestration loop.
func (c *Client) QueryStream(ctx context.Context, model, prompt, systemPrompt string, temperature float64, onChunk func(string) error) (string, error) {
	return c.GenerateStream(ctx, GenerateParams{Model: model, Prompt: prompt, SystemPrompt: systemPrompt, Temperature: temperature}, onChunk)
}

// List fetches the installed models from the registry.
func (c *Client) List(ctx context.Context) ([]TagModel, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("ollama returned %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}
	var out TagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return out.Models, nil
}

// Version probes the server and returns its version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/version", nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned %s", resp.Status)
	}
	var out versionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode version: %w", err)
	}
	return out.Version, nil
}
