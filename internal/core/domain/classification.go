package domain

// ClassificationResult is the outcome of running zero-shot classification
// over extracted document text. DocumentType and Confidence are both set or
// both empty; Error is set only when classification could not run at all.
type ClassificationResult struct {
	DocumentType string             `json:"document_type,omitempty"`
	Confidence   float64            `json:"confidence,omitempty"`
	Candidates   map[string]float64 `json:"candidates"`
	Error        string             `json:"error,omitempty"`
}

func NewClassificationError(message string) ClassificationResult {
	return ClassificationResult{
		Candidates: map[string]float64{},
		Error:      message,
	}
}

// Classified reports whether the result carries a usable label.
func (r ClassificationResult) Classified() bool {
	return r.Error == "" && r.DocumentType != ""
}
