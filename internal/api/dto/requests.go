// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import "time"

// WriteDocumentRequest is the body of create and overwrite requests.
type WriteDocumentRequest struct {
	Data map[string]interface{} `json:"data" binding:"required"`
}

// UpdateDocumentRequest merges fields into an existing document. Keys may be
// dotted paths into nested objects.
type UpdateDocumentRequest struct {
	Fields map[string]interface{} `json:"fields" binding:"required,min=1"`

	// LastUpdateTime rejects the update unless the stored document was last
	// written at exactly this time.
	LastUpdateTime *time.Time `json:"lastUpdateTime,omitempty"`
	Exists         *bool      `json:"exists,omitempty"`
}

// ConditionRequest is one filter of a query.
type ConditionRequest struct {
	Field string      `json:"field" binding:"required"`
	Op    string      `json:"op" binding:"required"`
	Value interface{} `json:"value"`
}

// QueryRequest represents the body of a query request.
type QueryRequest struct {
	Where []ConditionRequest `json:"where" binding:"omitempty,dive"`
	Limit int                `json:"limit" binding:"omitempty,min=0"`
}

// BatchOperationRequest is one write of a batch.
type BatchOperationRequest struct {
	Op         string                 `json:"op" binding:"required,oneof=set update delete"`
	Collection string                 `json:"collection" binding:"required"`
	ID         string                 `json:"id" binding:"required"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// BatchRequest represents the body of a batch commit.
type BatchRequest struct {
	Operations []BatchOperationRequest `json:"operations" binding:"required,min=1,max=500,dive"`
}
