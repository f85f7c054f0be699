package dto

import "time"

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

// DocumentResponse represents a document in API responses.
type DocumentResponse struct {
	ID         string                 `json:"id"`
	Collection string                 `json:"collection"`
	Data       map[string]interface{} `json:"data"`
	CreateTime *time.Time             `json:"createTime,omitempty"`
	UpdateTime *time.Time             `json:"updateTime,omitempty"`
}

// ListDocumentsResponse represents the response for collection reads and queries.
type ListDocumentsResponse struct {
	Documents []*DocumentResponse `json:"documents"`
	Count     int                 `json:"count"`
}

// ListIDsResponse represents the response for id listings.
type ListIDsResponse struct {
	IDs   []string `json:"ids"`
	Count int      `json:"count"`
}

// WriteResultResponse represents the outcome of one write. UpdateTime is
// omitted by backends that do not report it.
type WriteResultResponse struct {
	UpdateTime *time.Time `json:"updateTime,omitempty"`
}

// CreateDocumentResponse represents the response for document creation.
type CreateDocumentResponse struct {
	ID         string     `json:"id"`
	UpdateTime *time.Time `json:"updateTime,omitempty"`
}

// BatchResponse represents the response for a batch commit.
type BatchResponse struct {
	Results []*WriteResultResponse `json:"results"`
}

// PurgeCacheResponse reports how many cached documents were dropped.
type PurgeCacheResponse struct {
	Collection string `json:"collection"`
	Deleted    int64  `json:"deleted"`
}

// SnapshotEvent is the payload of a document stream event. Exists is false
// when the document is missing.
type SnapshotEvent struct {
	Exists   bool              `json:"exists"`
	Document *DocumentResponse `json:"document,omitempty"`
}

// QuerySnapshotEvent is the payload of a collection stream event.
type QuerySnapshotEvent struct {
	Documents []*DocumentResponse `json:"documents"`
	Count     int                 `json:"count"`
}
