package travel

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/hupe1980/tripgraph/tool"
)

// PhotoSearchToolName is the name the model uses to request photos.
const PhotoSearchToolName = "search_unsplash_photos"

const defaultPhotosPerPage = 10

type photoSearchArgs struct {
	Query   string `json:"query" description:"Short search terms, e.g. 'Sigiriya rock'"`
	PerPage int    `json:"per_page,omitempty" description:"Number of photos, leave unset for the default of 10"`
}

// photoResult is the trimmed representation returned to the model.
type photoResult struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
	Thumb       string `json:"thumb,omitempty"`
	Link        string `json:"link,omitempty"`
	Author      string `json:"author,omitempty"`
}

type unsplashResponse struct {
	Total   int `json:"total"`
	Results []struct {
		ID             string `json:"id"`
		Description    string `json:"description"`
		AltDescription string `json:"alt_description"`
		URLs           struct {
			Regular string `json:"regular"`
			Small   string `json:"small"`
			Thumb   string `json:"thumb"`
		} `json:"urls"`
		Links struct {
			HTML string `json:"html"`
		} `json:"links"`
		User struct {
			Name string `json:"name"`
		} `json:"user"`
	} `json:"results"`
}

// NewPhotoSearchTool creates the search_unsplash_photos tool (landscape
// orientation only).
func NewPhotoSearchTool(opts Options) *tool.FunctionTool {
	return tool.NewTypedTool(
		PhotoSearchToolName,
		"Search Unsplash for landscape photos to illustrate attractions, restaurants and places in the itinerary. "+
			"Keep queries short.",
		func(tc *tool.Context, args photoSearchArgs) (any, error) {
			perPage := args.PerPage
			if perPage <= 0 {
				perPage = defaultPhotosPerPage
			}

			q := url.Values{}
			q.Set("query", args.Query)
			q.Set("orientation", "landscape")
			q.Set("per_page", strconv.Itoa(perPage))

			header := http.Header{}
			header.Set("Authorization", "Client-ID "+opts.UnsplashAPIKey)
			header.Set("Accept-Version", "v1")

			var resp unsplashResponse
			if err := opts.Client.GetJSON(tc.Context(), opts.UnsplashURL+"?"+q.Encode(), header, &resp); err != nil {
				return nil, err
			}

			photos := make([]photoResult, 0, len(resp.Results))
			for _, r := range resp.Results {
				desc := r.Description
				if desc == "" {
					desc = r.AltDescription
				}
				photos = append(photos, photoResult{
					ID:          r.ID,
					Description: desc,
					URL:         r.URLs.Regular,
					Thumb:       r.URLs.Thumb,
					Link:        r.Links.HTML,
					Author:      r.User.Name,
				})
			}

			return map[string]any{"total": resp.Total, "photos": photos}, nil
		},
	)
}
