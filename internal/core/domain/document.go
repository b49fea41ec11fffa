package domain

import "time"

// DocumentStatus tags the lifecycle state of an ingested document. The set is
// open: the use cases move documents through the transient states, extraction
// reports the terminal failure states.
type DocumentStatus string

const (
	StatusUploaded         DocumentStatus = "uploaded"
	StatusProcessing       DocumentStatus = "processing"
	StatusProcessed        DocumentStatus = "processed"
	StatusCorrupted        DocumentStatus = "corrupted"
	StatusExtractionFailed DocumentStatus = "extraction_failed"
)

type Document struct {
	ID           string         `json:"id"`
	Filename     string         `json:"filename"`
	MimeType     string         `json:"mime_type"`
	StoragePath  string         `json:"storage_path"`
	DocumentType string         `json:"document_type,omitempty"`
	Confidence   float64        `json:"confidence,omitempty"`
	Status       DocumentStatus `json:"status"`
	Error        string         `json:"error,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
