package domain

// ChunkMetadata describes a single chunk produced by the chunking engine.
// TokenCount is zero when no tokenizer is configured.
type ChunkMetadata struct {
	CharacterCount int `json:"character_count"`
	WordCount      int `json:"word_count"`
	SentenceCount  int `json:"sentence_count"`
	ParagraphCount int `json:"paragraph_count"`
	TokenCount     int `json:"token_count,omitempty"`
}
