package travel

import (
	"net/http"
	"strings"

	"github.com/hupe1980/tripgraph/tool"
)

// PlacesToolName is the name the model uses to request a place lookup.
const PlacesToolName = "query_google_places"

const placesPageSize = 5

// placesFieldMask selects the place attributes useful for itinerary building.
var placesFieldMask = strings.Join([]string{
	"places.attributions",
	"places.id",
	"places.displayName",
	"places.googleMapsLinks",
	"places.formattedAddress",
	"places.businessStatus",
	"places.types",
	"places.location",
	"places.internationalPhoneNumber",
	"places.rating",
	"places.priceLevel",
	"places.priceRange",
	"places.websiteUri",
	"places.userRatingCount",
	"places.goodForChildren",
	"places.liveMusic",
	"places.paymentOptions",
	"places.servesBeer",
	"places.servesVegetarianFood",
	"places.reviews",
}, ",")

type placesArgs struct {
	Query string `json:"query" description:"Name or description of a place, e.g. 'Colosseum Rome' or 'vegetarian restaurants in Kandy'"`
}

type placesRequest struct {
	TextQuery string `json:"textQuery"`
	PageSize  int    `json:"pageSize"`
}

// NewPlacesTool creates the query_google_places tool (text search, at most
// five places per query).
func NewPlacesTool(opts Options) *tool.FunctionTool {
	return tool.NewTypedTool(
		PlacesToolName,
		"Look up places with Google Places text search. Returns addresses, ratings, price levels, "+
			"opening status, websites, map links and reviews for up to 5 matching places.",
		func(tc *tool.Context, args placesArgs) (any, error) {
			header := http.Header{}
			header.Set("X-Goog-Api-Key", opts.GooglePlacesAPIKey)
			header.Set("X-Goog-FieldMask", placesFieldMask)

			var out map[string]any
			err := opts.Client.PostJSON(tc.Context(), opts.PlacesURL, header, placesRequest{
				TextQuery: args.Query,
				PageSize:  placesPageSize,
			}, &out)
			if err != nil {
				return nil, err
			}

			return out, nil
		},
	)
}
