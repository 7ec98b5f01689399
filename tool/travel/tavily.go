package travel

import (
	"net/http"

	"github.com/hupe1980/tripgraph/tool"
)

// WebSearchToolName is the name the model uses to request a web search.
const WebSearchToolName = "tavily_web_search"

type webSearchArgs struct {
	Query string `json:"query" description:"Search query, a question or topic about the destination"`
}

type tavilyRequest struct {
	Query         string `json:"query"`
	MaxResults    int    `json:"max_results"`
	IncludeImages bool   `json:"include_images"`
	TimeRange     string `json:"time_range"`
}

// NewWebSearchTool creates the tavily_web_search tool. Results are restricted
// to the past year and include image links.
func NewWebSearchTool(opts Options) *tool.FunctionTool {
	return tool.NewTypedTool(
		WebSearchToolName,
		"Search the web for current, trusted information about destinations, attractions, "+
			"restaurants, events, weather and travel advice. Returns titles, URLs, snippets and images.",
		func(tc *tool.Context, args webSearchArgs) (any, error) {
			header := http.Header{}
			header.Set("Authorization", "Bearer "+opts.TavilyAPIKey)

			req := tavilyRequest{
				Query:         args.Query,
				MaxResults:    opts.MaxSearchResults,
				IncludeImages: true,
				TimeRange:     "year",
			}

			var out map[string]any
			if err := opts.Client.PostJSON(tc.Context(), opts.TavilyURL, header, req, &out); err != nil {
				return nil, err
			}

			return out, nil
		},
	)
}
