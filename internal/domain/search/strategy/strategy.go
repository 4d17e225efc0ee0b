package strategy

// Strategy is the retrieval strategy requested from the search backend.
type Strategy string

// Retrieval strategy constants.
const (
	// Hybrid combines neural and keyword retrieval.
	Hybrid  Strategy = "hybrid"
	Neural  Strategy = "neural"
	Keyword Strategy = "keyword"
)

// IsValid checks if the strategy is one of the supported values.
func (s Strategy) IsValid() bool {
	return s == Hybrid || s == Neural || s == Keyword
}
