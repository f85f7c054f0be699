package typed

import (
	"fmt"
	"sort"
	"sync"

	"github.com/unifiedui/typed-docdb/pkg/docdb"
)

// Registry binds named typed collections to one database handle.
type Registry struct {
	db docdb.Client

	mu          sync.Mutex
	collections map[string]any
}

// NewRegistry creates a registry for db.
func NewRegistry(db docdb.Client) *Registry {
	return &Registry{db: db, collections: make(map[string]any)}
}

// Bind returns the typed collection registered under name, creating it on
// first use. Binding a name already registered with another document type
// fails.
func Bind[T any](r *Registry, name string) (*Collection[T], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.collections[name]; ok {
		coll, ok := existing.(*Collection[T])
		if !ok {
			return nil, fmt.Errorf("collection %q already bound as %T", name, existing)
		}
		return coll, nil
	}

	coll := NewCollection[T](r.db, name)
	r.collections[name] = coll
	return coll, nil
}

// Batch opens a new batch on the registry's database.
func (r *Registry) Batch() *Batch {
	return NewBatch(r.db)
}

// Names returns the bound collection names in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.collections))
	for name := range r.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DB returns the database handle.
func (r *Registry) DB() docdb.Client {
	return r.db
}
