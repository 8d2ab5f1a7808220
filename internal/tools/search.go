// ABOUTME: Web search capability for the supervisor, backed by the Tavily search API.
// ABOUTME: Returns a compact title/url/content digest of the top results.

package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/docketry/docket-gateway/internal/tool"
)

const (
	tavilyEndpoint   = "https://api.tavily.com/search"
	searchMaxResults = 2
)

const searchSchema = `{
	"type": "object",
	"properties": {
		"query": {
			"type": "string",
			"description": "The search query."
		}
	},
	"required": ["query"]
}`

// WebSearch builds the web_search tool. baseURL overrides the Tavily endpoint
// for tests; empty uses the real API.
func WebSearch(apiKey, baseURL string, httpClient *http.Client) tool.Tool {
	if baseURL == "" {
		baseURL = tavilyEndpoint
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return tool.Tool{
		Name:        "web_search",
		Description: "Search the web for current information. Use for questions no sub-agent covers.",
		InputSchema: searchSchema,
		Handler: func(ctx context.Context, input json.RawMessage) (*tool.Result, error) {
			query := gjson.GetBytes(input, "query").String()
			if query == "" {
				return nil, fmt.Errorf("query is required")
			}

			body, err := json.Marshal(map[string]any{
				"api_key":     apiKey,
				"query":       query,
				"max_results": searchMaxResults,
			})
			if err != nil {
				return nil, fmt.Errorf("encoding search request: %w", err)
			}

			req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL, bytes.NewReader(body))
			if err != nil {
				return nil, fmt.Errorf("building search request: %w", err)
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := httpClient.Do(req)
			if err != nil {
				return nil, fmt.Errorf("calling search API: %w", err)
			}
			defer resp.Body.Close()

			data, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, fmt.Errorf("reading search response: %w", err)
			}
			if resp.StatusCode != http.StatusOK {
				return nil, fmt.Errorf("search API returned status %d", resp.StatusCode)
			}

			var b strings.Builder
			for _, r := range gjson.GetBytes(data, "results").Array() {
				fmt.Fprintf(&b, "%s\n%s\n%s\n\n",
					r.Get("title").String(),
					r.Get("url").String(),
					r.Get("content").String(),
				)
			}
			if b.Len() == 0 {
				return &tool.Result{Content: "No results found."}, nil
			}
			return &tool.Result{Content: strings.TrimSpace(b.String())}, nil
		},
	}
}
