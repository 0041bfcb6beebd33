package facecloud

// SearchRequest for POST /search
type SearchRequest struct {
	Images       []string `json:"images"` // base64 encoded JPEG
	MinScore     float64  `json:"min_score"`
	CollectionID *string  `json:"collection_id"`
	SearchMode   string   `json:"search_mode"` // "FAST" or "ACCURATE"
}

// SearchResult is one element of the POST /search response array.
type SearchResult struct {
	Person PersonResponse `json:"person"`
	Score  float64        `json:"score"`
}

// PersonRequest for POST /persons
type PersonRequest struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name,omitempty"`
	Images      []string `json:"images"`
	Collections []string `json:"collections,omitempty"`
}

type PersonResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
