package feeder

import (
	"time"
)

const (
	NameRequestNumberField string = "nameRequestNumber"
	SyncSucceededMessage   string = "Solr cores updated"
)

type MessageResponse struct {
	Message string `json:"message"`
}

type SyncStatus string

const (
	SyncStatusSucceeded SyncStatus = "succeeded"
	SyncStatusFailed    SyncStatus = "failed"
)

// DocumentDigest identifies one document sent to an index core.
type DocumentDigest struct {
	Core   string `json:"core"`
	ID     string `json:"id"`
	XXH3   string `json:"xxh3"`
	Landed bool   `json:"landed"`
}

// SyncEvent is published after every sync attempt for a name request.
type SyncEvent struct {
	NameRequestNumber string           `json:"nameRequestNumber"`
	Status            SyncStatus       `json:"status"`
	StatusCode        int              `json:"statusCode"`
	Message           string           `json:"message"`
	Documents         []DocumentDigest `json:"documents"`
	TraceID           string           `json:"traceID,omitempty"`
	FinishedAt        time.Time        `json:"finishedAt"`
}
