// ABOUTME: Legal-docs tool provider: discovers a remote tool catalog and proxies invocations.
// ABOUTME: The document automation service advertises its own tools; we pass arguments through.

package agents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"github.com/docketry/docket-gateway/internal/tool"
)

// LegalDocsProvider discovers tools from the legal-docs service catalog.
// Every discovered tool becomes a proxy that forwards its input unchanged.
type LegalDocsProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewLegalDocsProvider binds a provider to the remote service. apiKey is the
// bearer credential for both discovery and invocation.
func NewLegalDocsProvider(baseURL, apiKey string, httpClient *http.Client) *LegalDocsProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &LegalDocsProvider{baseURL: baseURL, apiKey: apiKey, httpClient: httpClient}
}

// Discover fetches the remote catalog. Each entry must carry a name; entries
// without one are skipped.
func (p *LegalDocsProvider) Discover(ctx context.Context) ([]tool.Tool, error) {
	body, err := p.do(ctx, http.MethodGet, "/tools", nil)
	if err != nil {
		return nil, fmt.Errorf("discovering legal-docs tools: %w", err)
	}

	var tools []tool.Tool
	for _, entry := range gjson.GetBytes(body, "tools").Array() {
		name := entry.Get("name").String()
		if name == "" {
			continue
		}
		schema := entry.Get("input_schema").Raw
		if schema == "" {
			schema = `{"type": "object"}`
		}
		tools = append(tools, tool.Tool{
			Name:        name,
			Description: entry.Get("description").String(),
			InputSchema: schema,
			Handler:     p.invoker(name),
		})
	}
	return tools, nil
}

// invoker returns a handler that forwards the model's arguments to the
// remote tool and relays the result text.
func (p *LegalDocsProvider) invoker(name string) tool.Handler {
	return func(ctx context.Context, input json.RawMessage) (*tool.Result, error) {
		body, err := p.do(ctx, http.MethodPost, "/tools/"+url.PathEscape(name)+"/invoke", input)
		if err != nil {
			return nil, fmt.Errorf("invoking legal-docs tool %s: %w", name, err)
		}

		if result := gjson.GetBytes(body, "result"); result.Exists() {
			return &tool.Result{Content: result.String()}, nil
		}
		return &tool.Result{Content: string(body)}, nil
	}
}

func (p *LegalDocsProvider) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return respBody, nil
}
