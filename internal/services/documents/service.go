// Package documents serves schemaless documents over the typed docdb layer,
// with a Redis read-through cache in front of single-document reads.
package documents

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/unifiedui/typed-docdb/internal/core/cache"
	"github.com/unifiedui/typed-docdb/internal/domain/errors"
	"github.com/unifiedui/typed-docdb/internal/pkg/encryption"
	"github.com/unifiedui/typed-docdb/pkg/docdb"
	"github.com/unifiedui/typed-docdb/pkg/typed"
)

// DefaultCacheTTL is used when Config.TTL is zero.
const DefaultCacheTTL = 3 * time.Minute

// Fields is the document type the gateway binds every collection to.
type Fields = map[string]any

// Document is a document as returned to API callers.
type Document struct {
	ID         string     `json:"id"`
	Collection string     `json:"collection"`
	Data       Fields     `json:"data"`
	CreateTime *time.Time `json:"createTime,omitempty"`
	UpdateTime *time.Time `json:"updateTime,omitempty"`
}

// QueryRequest describes a filtered read.
type QueryRequest struct {
	Conditions []docdb.Condition
	Limit      int
}

// OpKind names a batch operation.
type OpKind string

const (
	OpSet    OpKind = "set"
	OpUpdate OpKind = "update"
	OpDelete OpKind = "delete"
)

// BatchOp is one staged write of a batch commit.
type BatchOp struct {
	Kind       OpKind
	Collection string
	ID         string
	Data       Fields
}

// Service exposes document operations to the HTTP layer.
type Service interface {
	List(ctx context.Context, collection string) ([]*Document, error)
	ListIDs(ctx context.Context, collection string) ([]string, error)
	Query(ctx context.Context, collection string, req QueryRequest) ([]*Document, error)
	Create(ctx context.Context, collection string, data Fields) (*Document, error)
	Get(ctx context.Context, collection, id string) (*Document, error)
	Set(ctx context.Context, collection, id string, data Fields) (*docdb.WriteResult, error)
	Update(ctx context.Context, collection, id string, fields Fields, preconds ...docdb.Precondition) (*docdb.WriteResult, error)
	Delete(ctx context.Context, collection, id string) (*docdb.WriteResult, error)
	Commit(ctx context.Context, ops []BatchOp) ([]*docdb.WriteResult, error)
	WatchCollection(ctx context.Context, collection string, req QueryRequest, fn func([]*Document, error)) (docdb.Unsubscribe, error)
	WatchDocument(ctx context.Context, collection, id string, fn func(*Document, error)) (docdb.Unsubscribe, error)
	PurgeCache(ctx context.Context, collection string) (int64, error)
}

// Config holds the configuration for the documents service.
type Config struct {
	Registry  *typed.Registry
	Cache     cache.Cache
	Sealer    encryption.Sealer
	TTL       time.Duration
	KeyPrefix string
	Logger    zerolog.Logger
}

type service struct {
	registry  *typed.Registry
	cache     cache.Cache
	sealer    encryption.Sealer
	ttl       time.Duration
	keyPrefix string
	logger    zerolog.Logger
	guard     *fillGuard
}

// NewService creates a new documents service.
func NewService(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if cfg.Cache == nil {
		return nil, fmt.Errorf("cache is required")
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	sealer := cfg.Sealer
	if sealer == nil {
		sealer = encryption.Plain{}
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "docdb"
	}

	return &service{
		registry:  cfg.Registry,
		cache:     cfg.Cache,
		sealer:    sealer,
		ttl:       ttl,
		keyPrefix: prefix,
		logger:    cfg.Logger.With().Str("component", "documents").Logger(),
		guard:     &fillGuard{},
	}, nil
}

func (s *service) collection(name string) (*typed.Collection[Fields], error) {
	if name == "" {
		return nil, errors.NewValidationError("collection name is required", "")
	}
	coll, err := typed.Bind[Fields](s.registry, name)
	if err != nil {
		return nil, errors.NewConflictError("collection is bound to another type", err.Error())
	}
	return coll, nil
}

func (s *service) document(collection, id string) (*typed.Document[Fields], error) {
	if id == "" {
		return nil, errors.NewValidationError("document id is required", "")
	}
	coll, err := s.collection(collection)
	if err != nil {
		return nil, err
	}
	return coll.Document(id), nil
}

// List returns every document in the collection.
func (s *service) List(ctx context.Context, collection string) ([]*Document, error) {
	coll, err := s.collection(collection)
	if err != nil {
		return nil, err
	}
	snap, err := coll.Get(ctx)
	if err != nil {
		return nil, errors.FromDocDB("list documents", err)
	}
	return fromQuerySnapshot(snap), nil
}

// ListIDs returns the ids of every document in the collection.
func (s *service) ListIDs(ctx context.Context, collection string) ([]string, error) {
	coll, err := s.collection(collection)
	if err != nil {
		return nil, err
	}
	ids, err := coll.ListIDs(ctx)
	if err != nil {
		return nil, errors.FromDocDB("list document ids", err)
	}
	return ids, nil
}

// Query runs a filtered read.
func (s *service) Query(ctx context.Context, collection string, req QueryRequest) ([]*Document, error) {
	query, err := s.query(collection, req)
	if err != nil {
		return nil, err
	}
	snap, err := query.Get(ctx)
	if err != nil {
		return nil, errors.FromDocDB("query documents", err)
	}
	return fromQuerySnapshot(snap), nil
}

func (s *service) query(collection string, req QueryRequest) (*typed.Query[Fields], error) {
	coll, err := s.collection(collection)
	if err != nil {
		return nil, err
	}
	if req.Limit < 0 {
		return nil, errors.NewValidationError("limit must not be negative", fmt.Sprint(req.Limit))
	}

	// Limit always folds after the conditions, so it can be set first.
	query := coll.Limit(req.Limit)
	for _, cond := range req.Conditions {
		if cond.Field == "" {
			return nil, errors.NewValidationError("condition field is required", cond.String())
		}
		if !cond.Op.Valid() {
			return nil, errors.NewValidationError("unknown operator", string(cond.Op))
		}
		query = query.Where(cond.Field, cond.Op, cond.Value)
	}
	return query, nil
}

// Create stores data under a generated id.
func (s *service) Create(ctx context.Context, collection string, data Fields) (*Document, error) {
	coll, err := s.collection(collection)
	if err != nil {
		return nil, err
	}
	doc := typed.NewDocument[Fields](s.registry.DB(), coll.CollectionName, "")
	result, err := doc.Set(ctx, data)
	if err != nil {
		return nil, errors.FromDocDB("create document", err)
	}

	created := &Document{ID: doc.DocName, Collection: coll.CollectionName, Data: data}
	if result != nil && !result.UpdateTime.IsZero() {
		created.UpdateTime = &result.UpdateTime
		created.CreateTime = &result.UpdateTime
	}
	return created, nil
}

// Get reads one document, consulting the cache first.
func (s *service) Get(ctx context.Context, collection, id string) (*Document, error) {
	doc, err := s.document(collection, id)
	if err != nil {
		return nil, err
	}

	key := s.cacheKey(collection, id)
	if cached := s.readCache(ctx, key); cached != nil {
		return cached, nil
	}

	gen := s.guard.generation(key)
	snap, err := doc.Get(ctx)
	if err != nil {
		return nil, errors.FromDocDB("get document", err)
	}
	if !snap.Exists() {
		return nil, errors.NewNotFoundError("document", collection+"/"+id)
	}

	result := fromSnapshot(snap)
	s.fillCache(ctx, key, gen, result)
	return result, nil
}

// Set overwrites a document.
func (s *service) Set(ctx context.Context, collection, id string, data Fields) (*docdb.WriteResult, error) {
	doc, err := s.document(collection, id)
	if err != nil {
		return nil, err
	}
	result, err := doc.Set(ctx, data)
	if err != nil {
		return nil, errors.FromDocDB("set document", err)
	}
	s.invalidate(ctx, s.cacheKey(collection, id))
	return result, nil
}

// Update merges fields into an existing document.
func (s *service) Update(ctx context.Context, collection, id string, fields Fields, preconds ...docdb.Precondition) (*docdb.WriteResult, error) {
	if len(fields) == 0 {
		return nil, errors.NewValidationError("at least one field is required", "")
	}
	doc, err := s.document(collection, id)
	if err != nil {
		return nil, err
	}
	result, err := doc.Update(ctx, fields, preconds...)
	if err != nil {
		return nil, errors.FromDocDB("update document", err)
	}
	s.invalidate(ctx, s.cacheKey(collection, id))
	return result, nil
}

// Delete removes a document. Deleting a missing document succeeds.
func (s *service) Delete(ctx context.Context, collection, id string) (*docdb.WriteResult, error) {
	doc, err := s.document(collection, id)
	if err != nil {
		return nil, err
	}
	result, err := doc.Delete(ctx)
	if err != nil {
		return nil, errors.FromDocDB("delete document", err)
	}
	s.invalidate(ctx, s.cacheKey(collection, id))
	return result, nil
}

// Commit applies ops in order as one atomic batch.
func (s *service) Commit(ctx context.Context, ops []BatchOp) ([]*docdb.WriteResult, error) {
	if len(ops) == 0 {
		return nil, errors.NewValidationError("batch has no operations", "")
	}

	batch := s.registry.Batch()
	keys := make([]string, 0, len(ops))
	for i, op := range ops {
		doc, err := s.document(op.Collection, op.ID)
		if err != nil {
			return nil, err
		}
		switch op.Kind {
		case OpSet:
			typed.BatchSet(batch, doc, op.Data)
		case OpUpdate:
			if len(op.Data) == 0 {
				return nil, errors.NewValidationError("update needs at least one field", fmt.Sprintf("operation %d", i))
			}
			typed.BatchUpdate(batch, doc, op.Data)
		case OpDelete:
			typed.BatchDelete(batch, doc)
		default:
			return nil, errors.NewValidationError("unknown batch operation", string(op.Kind))
		}
		keys = append(keys, s.cacheKey(op.Collection, op.ID))
	}

	results, err := batch.Commit(ctx)
	if err != nil {
		return nil, errors.FromDocDB("commit batch", err)
	}
	s.invalidate(ctx, keys...)
	return results, nil
}

// WatchCollection streams query results. fn receives the current results
// first and again after every change.
func (s *service) WatchCollection(ctx context.Context, collection string, req QueryRequest, fn func([]*Document, error)) (docdb.Unsubscribe, error) {
	query, err := s.query(collection, req)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("collection", collection).Int("conditions", len(req.Conditions)).Msg("collection watch started")

	return query.OnSnapshot(ctx, func(snap *typed.QuerySnapshot[Fields], err error) {
		if err != nil {
			fn(nil, errors.FromDocDB("watch collection", err))
			return
		}
		fn(fromQuerySnapshot(snap), nil)
	}), nil
}

// WatchDocument streams one document. A nil document means it does not exist.
func (s *service) WatchDocument(ctx context.Context, collection, id string, fn func(*Document, error)) (docdb.Unsubscribe, error) {
	doc, err := s.document(collection, id)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("collection", collection).Str("docId", id).Msg("document watch started")

	return doc.OnSnapshot(ctx, func(snap *typed.Snapshot[Fields], err error) {
		if err != nil {
			fn(nil, errors.FromDocDB("watch document", err))
			return
		}
		if !snap.Exists() {
			fn(nil, nil)
			return
		}
		fn(fromSnapshot(snap), nil)
	}), nil
}

// PurgeCache drops every cached document of the collection and returns how
// many entries were removed.
func (s *service) PurgeCache(ctx context.Context, collection string) (int64, error) {
	if collection == "" {
		return 0, errors.NewValidationError("collection name is required", "")
	}
	s.guard.bumpAll()
	n, err := s.cache.DeletePattern(ctx, cache.Pattern(s.keyPrefix, collection))
	if err != nil {
		return n, errors.NewServiceUnavailableError("cache", err)
	}
	s.logger.Info().Str("collection", collection).Int64("deleted", n).Msg("collection cache purged")
	return n, nil
}

func (s *service) cacheKey(collection, id string) string {
	return cache.Key(s.keyPrefix, collection, id)
}

// readCache returns nil on a miss. Cache failures and unreadable entries
// count as misses.
func (s *service) readCache(ctx context.Context, key string) *Document {
	sealed, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return nil
	}
	if sealed == nil {
		return nil
	}

	payload, err := s.sealer.Open(sealed)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("dropping unreadable cache entry")
		s.dropCache(ctx, key)
		return nil
	}
	var doc Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("dropping corrupt cache entry")
		s.dropCache(ctx, key)
		return nil
	}
	return &doc
}

// fillCache stores doc unless a write to key happened since gen was read.
// A write that lands during the store removes the entry again.
func (s *service) fillCache(ctx context.Context, key string, gen uint64, doc *Document) {
	if s.guard.changed(key, gen) {
		s.logger.Debug().Str("key", key).Msg("skipping cache fill after concurrent write")
		return
	}
	s.writeCache(ctx, key, doc)
	if s.guard.changed(key, gen) {
		s.dropCache(ctx, key)
	}
}

func (s *service) writeCache(ctx context.Context, key string, doc *Document) {
	payload, err := json.Marshal(doc)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("document not cacheable")
		return
	}
	sealed, err := s.sealer.Seal(payload)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache seal failed")
		return
	}
	if err := s.cache.Set(ctx, key, sealed, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// invalidate runs after a committed write to keys.
func (s *service) invalidate(ctx context.Context, keys ...string) {
	for _, key := range keys {
		s.guard.bump(key)
		s.dropCache(ctx, key)
	}
}

func (s *service) dropCache(ctx context.Context, key string) {
	if _, err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache invalidation failed")
	}
}

func fromSnapshot(snap *typed.Snapshot[Fields]) *Document {
	raw := snap.Raw()
	doc := &Document{
		ID:         raw.ID,
		Collection: raw.Collection,
		Data:       raw.Data(),
	}
	if doc.Data == nil {
		doc.Data = Fields{}
	}
	if !raw.CreateTime.IsZero() {
		t := raw.CreateTime
		doc.CreateTime = &t
	}
	if !raw.UpdateTime.IsZero() {
		t := raw.UpdateTime
		doc.UpdateTime = &t
	}
	return doc
}

func fromQuerySnapshot(snap *typed.QuerySnapshot[Fields]) []*Document {
	docs := make([]*Document, 0, snap.Size())
	for _, d := range snap.Docs() {
		docs = append(docs, fromSnapshot(d))
	}
	return docs
}
