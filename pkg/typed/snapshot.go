package typed

import (
	"time"

	"github.com/unifiedui/typed-docdb/pkg/docdb"
)

// Snapshot is a typed view of a document snapshot.
type Snapshot[T any] struct {
	raw *docdb.DocumentSnapshot
}

func newSnapshot[T any](raw *docdb.DocumentSnapshot) *Snapshot[T] {
	if raw == nil {
		return nil
	}
	return &Snapshot[T]{raw: raw}
}

// ID returns the document id.
func (s *Snapshot[T]) ID() string {
	return s.raw.ID
}

// Exists reports whether the document existed at read time.
func (s *Snapshot[T]) Exists() bool {
	return s.raw.Exists
}

// UpdateTime returns the last write time reported by the backend.
func (s *Snapshot[T]) UpdateTime() time.Time {
	return s.raw.UpdateTime
}

// Data decodes the document body into a T.
func (s *Snapshot[T]) Data() (T, error) {
	var v T
	err := s.raw.DataTo(&v)
	return v, err
}

// Raw returns the underlying untyped snapshot.
func (s *Snapshot[T]) Raw() *docdb.DocumentSnapshot {
	return s.raw
}

// QuerySnapshot is a typed view of a query result.
type QuerySnapshot[T any] struct {
	raw *docdb.QuerySnapshot
}

func newQuerySnapshot[T any](raw *docdb.QuerySnapshot) *QuerySnapshot[T] {
	if raw == nil {
		return nil
	}
	return &QuerySnapshot[T]{raw: raw}
}

// Size returns the number of documents.
func (s *QuerySnapshot[T]) Size() int {
	return s.raw.Size()
}

// IDs returns the document ids in the order the backend returned them.
func (s *QuerySnapshot[T]) IDs() []string {
	return s.raw.IDs()
}

// Docs returns one typed snapshot per document.
func (s *QuerySnapshot[T]) Docs() []*Snapshot[T] {
	out := make([]*Snapshot[T], 0, len(s.raw.Docs))
	for _, d := range s.raw.Docs {
		out = append(out, newSnapshot[T](d))
	}
	return out
}

// Data decodes every document, stopping at the first failure.
func (s *QuerySnapshot[T]) Data() ([]T, error) {
	out := make([]T, 0, len(s.raw.Docs))
	for _, d := range s.raw.Docs {
		var v T
		if err := d.DataTo(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Raw returns the underlying untyped snapshot.
func (s *QuerySnapshot[T]) Raw() *docdb.QuerySnapshot {
	return s.raw
}
