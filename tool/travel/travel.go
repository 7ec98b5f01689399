package travel

import (
	"github.com/hupe1980/tripgraph/tool"
)

// Default upstream endpoints.
const (
	DefaultTavilyURL   = "https://api.tavily.com/search"
	DefaultPlacesURL   = "https://places.googleapis.com/v1/places:searchText"
	DefaultUnsplashURL = "https://api.unsplash.com/search/photos"
)

// Options configure the travel tool set.
type Options struct {
	TavilyAPIKey       string
	GooglePlacesAPIKey string
	UnsplashAPIKey     string

	// MaxSearchResults caps web search hits per query.
	MaxSearchResults int

	// MaxPageChars caps the markdown returned by extract_web_page.
	MaxPageChars int

	TavilyURL   string
	PlacesURL   string
	UnsplashURL string

	Client *Client
}

func defaultOptions() Options {
	return Options{
		MaxSearchResults: 5,
		MaxPageChars:     8000,
		TavilyURL:        DefaultTavilyURL,
		PlacesURL:        DefaultPlacesURL,
		UnsplashURL:      DefaultUnsplashURL,
	}
}

// NewTools returns the research tools. API backed tools are included only
// when their key is configured; extract_web_page needs no key and is always
// present.
func NewTools(optFns ...func(o *Options)) []tool.Tool {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Client == nil {
		opts.Client = NewClient()
	}

	var tools []tool.Tool

	if opts.TavilyAPIKey != "" {
		tools = append(tools, NewWebSearchTool(opts))
	}
	if opts.GooglePlacesAPIKey != "" {
		tools = append(tools, NewPlacesTool(opts))
	}
	if opts.UnsplashAPIKey != "" {
		tools = append(tools, NewPhotoSearchTool(opts))
	}

	tools = append(tools, NewWebPageTool(opts))

	return tools
}
