// Package travel provides the research tools offered to the model while it
// assembles an itinerary: web search (Tavily), place lookup (Google Places),
// photo search (Unsplash) and web page extraction.
//
// All tools share one Client that rate limits outbound requests and retries
// throttled or failed upstream calls with exponential backoff.
package travel
