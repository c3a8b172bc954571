package search

// Result is a single transcript search hit returned to the admin console.
type Result struct {
	SessionID   string `json:"sessionId"`
	Status      string `json:"status"`
	Snippet     string `json:"snippet"`
	LastUpdated string `json:"lastUpdated,omitempty"`
}

// Query describes a transcript search request.
type Query struct {
	Text   string
	Limit  int
	Offset int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search over chat transcripts.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// TranscriptRecord is the data we index per session: the message contents
// flattened into one searchable text field.
type TranscriptRecord struct {
	ID          string `json:"id"`
	Transcript  string `json:"transcript"`
	Status      string `json:"status"`
	Contact     string `json:"contact,omitempty"`
	LastUpdated string `json:"lastUpdated,omitempty"`
}
