package semantic

// Metadata is the payload stored alongside each vector. Key names are
// part of the store contract and must not change.
type Metadata struct {
	Text    string
	Title   string
	Speaker string
	URL     string
	TalkID  string
	Topics  string
	Views   int
}

// VectorRecord is a single (key, vector, metadata) triple to upsert. Key
// is the composite chunk id {talk_id}_{seq}; the store derives a
// deterministic point id from it, so re-upserting the same key overwrites
// rather than duplicates.
type VectorRecord struct {
	Key       string
	Embedding []float32
	Meta      Metadata
}

// SearchResult is a single similarity hit with its stored metadata.
type SearchResult struct {
	Key   string   `json:"key"`
	Score float32  `json:"score"`
	Meta  Metadata `json:"meta"`
}
