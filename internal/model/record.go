package model

// RecommendationRecord is a single product recommendation assembled from the
// model's reply. Title is the only field guaranteed to be present; the parser
// fills the rest when it can and the fuser backfills from secondary search
// data afterwards. Later stages only fill absent fields, never overwrite.
type RecommendationRecord struct {
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	URL            string   `json:"url,omitempty"`
	ImageURL       string   `json:"image_url,omitempty"`
	Highlights     []string `json:"highlights,omitempty"`
	WhyMatches     string   `json:"why_matches,omitempty"`
	AdditionalInfo string   `json:"additional_info,omitempty"`
	Relevance      float64  `json:"relevance,omitempty"`
}

// SecondaryResult is a raw search hit captured from the provider's executed
// tool records. It is consumed read-only by the fuser and never returned to
// the caller directly.
type SecondaryResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	ImageURL    string `json:"image_url"`
	Description string `json:"description"`
	Text        string `json:"text"`
}

// SearchResult is the envelope returned by the search entry point. Remote and
// configuration failures are reported through it rather than as errors, so
// callers only branch on Success.
type SearchResult struct {
	Success bool                   `json:"success"`
	Results []RecommendationRecord `json:"results"`
	Error   string                 `json:"error,omitempty"`
}

// Failure builds a failed SearchResult with an empty result list.
func Failure(msg string) SearchResult {
	return SearchResult{Success: false, Results: []RecommendationRecord{}, Error: msg}
}
