package dto

import "github.com/google/uuid"

type RunIngestRequest struct {
	// Dir overrides the configured corpus directory when non-empty.
	Dir string `json:"dir,omitempty"`
}

type RunIngestResponse struct {
	JobId uuid.UUID `json:"job_id"`
}

// IngestJobMessage is the payload published to the ingestion topic.
type IngestJobMessage struct {
	JobId uuid.UUID `json:"job_id"`
	Dir   string    `json:"dir"`
}

// DocumentResultDTO reports one document's ingestion outcome. A batch never
// fails as a whole; each document succeeds or fails on its own.
type DocumentResultDTO struct {
	Document string `json:"document"`
	Status   string `json:"status"`
	Chunks   int    `json:"chunks"`
	Pages    int    `json:"pages"`
	Error    string `json:"error,omitempty"`
}
