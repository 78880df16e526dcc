package websearch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// SearchTool exposes the DuckDuckGo client as an agent tool so the research
// loop can look up current information before answering.
type SearchTool struct {
	client     *Client
	defaultMax int
}

// searchInput is the JSON-serialisable input schema for SearchTool.
type searchInput struct {
	// Query is the search query text.
	Query string `json:"query"`

	// MaxResults caps returned hits (default: 5).
	MaxResults int `json:"max_results,omitempty"`
}

// NewSearchTool constructs a SearchTool around client.
func NewSearchTool(client *Client) *SearchTool {
	return &SearchTool{client: client}
}

// SetDefaultMax overrides the result count used when the model does not ask
// for a specific number. n <= 0 keeps the built-in default.
func (t *SearchTool) SetDefaultMax(n int) {
	t.defaultMax = n
}

// Name returns the tool name registered with the agent.
func (t *SearchTool) Name() string { return "web_search" }

// Info returns the tool metadata including the JSON input schema.
func (t *SearchTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: t.Name(),
		Desc: "Searches the web via DuckDuckGo and returns titles, URLs, and snippets. " +
			"Use this to gather current information about a topic before summarizing it.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {
				Type:     schema.String,
				Desc:     "The search query.",
				Required: true,
			},
			"max_results": {
				Type: schema.Integer,
				Desc: "Maximum number of results to return (default: 5, max: 30).",
			},
		}),
	}, nil
}

// InvokableRun executes the search and returns markdown-formatted results.
// A query that yields no hits is not an error; the model receives a clear
// "no results" line instead.
func (t *SearchTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var input searchInput
	if err := json.Unmarshal([]byte(argumentsInJSON), &input); err != nil {
		return "", fmt.Errorf("web_search: invalid input: %w", err)
	}
	if input.Query == "" {
		return "", fmt.Errorf("web_search: query is required")
	}

	maxResults := input.MaxResults
	if maxResults <= 0 {
		maxResults = t.defaultMax
	}

	results, err := t.client.Search(ctx, input.Query, maxResults)
	if err != nil {
		return "", fmt.Errorf("web_search: %w", err)
	}
	return FormatResults(input.Query, results), nil
}
