package model

// ClassificationResult is the outcome of one classify call.
// A nil Category is a valid no-match, not a failure.
type ClassificationResult struct {
	Category *string `json:"category"`
	Prompt   string  `json:"prompt"`
	Response string  `json:"response"`
}

// Matched reports whether the backend resolved a category.
func (r ClassificationResult) Matched() bool {
	return r.Category != nil
}

// CategoryName returns the resolved category or the empty string.
func (r ClassificationResult) CategoryName() string {
	if r.Category == nil {
		return ""
	}
	return *r.Category
}
