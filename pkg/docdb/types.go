package docdb

import (
	"fmt"
	"time"
)

// Type represents the type of document database.
type Type string

const (
	// TypeFirestore represents Google Cloud Firestore.
	TypeFirestore Type = "firestore"
	// TypeMongoDB represents a MongoDB database.
	TypeMongoDB Type = "mongodb"
	// TypeMemory represents the in-process store.
	TypeMemory Type = "memory"
)

// Operator is a query comparison operator.
type Operator string

const (
	OpLess             Operator = "<"
	OpLessEqual        Operator = "<="
	OpEqual            Operator = "=="
	OpGreater          Operator = ">"
	OpGreaterEqual     Operator = ">="
	OpNotEqual         Operator = "!="
	OpArrayContains    Operator = "array-contains"
	OpArrayContainsAny Operator = "array-contains-any"
	OpIn               Operator = "in"
	OpNotIn            Operator = "not-in"
)

// Valid reports whether op is one of the supported operators.
func (op Operator) Valid() bool {
	switch op {
	case OpLess, OpLessEqual, OpEqual, OpGreater, OpGreaterEqual, OpNotEqual,
		OpArrayContains, OpArrayContainsAny, OpIn, OpNotIn:
		return true
	}
	return false
}

// Condition is one field/operator/value filter.
type Condition struct {
	Field string
	Op    Operator
	Value any
}

// String returns the condition as "field op value".
func (c Condition) String() string {
	return fmt.Sprintf("%s %s %v", c.Field, c.Op, c.Value)
}

// Precondition is a server-checked condition on an update.
// A zero Precondition checks nothing.
type Precondition struct {
	// Exists, when set, requires the document to exist (true) or not (false).
	Exists *bool
	// LastUpdateTime, when non-zero, requires the stored update time to match.
	LastUpdateTime time.Time
}

// Exists returns a precondition on document existence.
func Exists(exists bool) Precondition {
	return Precondition{Exists: &exists}
}

// LastUpdateTime returns a precondition on the document's last update time.
func LastUpdateTime(t time.Time) Precondition {
	return Precondition{LastUpdateTime: t}
}

// WriteResult is the acknowledgment of one write.
// UpdateTime is zero when the backend does not report a server write time.
type WriteResult struct {
	UpdateTime time.Time
}

// DecodeFunc decodes a document body into v using the backend's codec.
type DecodeFunc func(v any) error

// DocumentSnapshot is a point-in-time read of one document.
type DocumentSnapshot struct {
	ID         string
	Collection string
	Exists     bool
	CreateTime time.Time
	UpdateTime time.Time
	ReadTime   time.Time

	data   map[string]any
	decode DecodeFunc
}

// NewDocumentSnapshot builds a snapshot. Adapters pass their native decoder so
// that struct tags are honored the same way the SDK honors them.
func NewDocumentSnapshot(collection, id string, exists bool, data map[string]any, decode DecodeFunc) *DocumentSnapshot {
	return &DocumentSnapshot{
		ID:         id,
		Collection: collection,
		Exists:     exists,
		data:       data,
		decode:     decode,
	}
}

// Data returns the document body as a map, or nil if the document is missing.
func (s *DocumentSnapshot) Data() map[string]any {
	if s == nil || !s.Exists {
		return nil
	}
	return s.data
}

// DataTo decodes the document body into v.
func (s *DocumentSnapshot) DataTo(v any) error {
	if s == nil || !s.Exists {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, s.collectionName(), s.docID())
	}
	if s.decode == nil {
		return fmt.Errorf("%w: snapshot has no decoder", ErrUnsupported)
	}
	return s.decode(v)
}

func (s *DocumentSnapshot) collectionName() string {
	if s == nil {
		return ""
	}
	return s.Collection
}

func (s *DocumentSnapshot) docID() string {
	if s == nil {
		return ""
	}
	return s.ID
}

// QuerySnapshot is a point-in-time read of a query's results, in the order the
// backend returned them.
type QuerySnapshot struct {
	Docs     []*DocumentSnapshot
	ReadTime time.Time
}

// Size returns the number of documents in the snapshot.
func (s *QuerySnapshot) Size() int {
	if s == nil {
		return 0
	}
	return len(s.Docs)
}

// IDs returns the document ids in snapshot order.
func (s *QuerySnapshot) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.Docs))
	for _, d := range s.Docs {
		ids = append(ids, d.ID)
	}
	return ids
}
