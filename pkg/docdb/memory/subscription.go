package memory

import (
	"context"
	"sync"

	"github.com/unifiedui/typed-docdb/pkg/docdb"
)

type event struct {
	doc   *docdb.DocumentSnapshot
	query *docdb.QuerySnapshot
	err   error
}

// subscription queues snapshots without blocking the writer and delivers
// them in order from a single goroutine.
type subscription struct {
	collection string
	docID      string
	query      *Query

	onDoc   func(*docdb.DocumentSnapshot, error)
	onQuery func(*docdb.QuerySnapshot, error)
	onStop  func()

	mu      sync.Mutex
	pending []event
	signal  chan struct{}
	done    chan struct{}
	once    sync.Once
}

func newSubscription(collection, docID string, q *Query) *subscription {
	return &subscription{
		collection: collection,
		docID:      docID,
		query:      q,
		signal:     make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
}

func (s *subscription) affectedBy(keys []docKey) bool {
	for _, k := range keys {
		if k.collection != s.collection {
			continue
		}
		if s.docID == "" || s.docID == k.id {
			return true
		}
	}
	return false
}

func (s *subscription) push(e event) {
	s.mu.Lock()
	s.pending = append(s.pending, e)
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *subscription) start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				s.stop()
				return
			case <-s.done:
				return
			case <-s.signal:
			}

			s.mu.Lock()
			batch := s.pending
			s.pending = nil
			s.mu.Unlock()

			for _, e := range batch {
				select {
				case <-s.done:
					return
				default:
				}
				s.deliver(e)
			}
		}
	}()
}

func (s *subscription) deliver(e event) {
	if s.onDoc != nil {
		s.onDoc(e.doc, e.err)
		return
	}
	if s.onQuery != nil {
		s.onQuery(e.query, e.err)
	}
}

func (s *subscription) stop() {
	s.once.Do(func() {
		close(s.done)
		if s.onStop != nil {
			s.onStop()
		}
	})
}
