package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/unifiedui/typed-docdb/internal/services/documents"
	"github.com/unifiedui/typed-docdb/pkg/docdb"
)

// MockCache is a mock implementation of cache.Cache.
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) DeletePattern(ctx context.Context, pattern string) (int64, error) {
	args := m.Called(ctx, pattern)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCache) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCache) Close() error {
	return m.Called().Error(0)
}

// MockPinger is a mock for anything health checks ping.
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockDocuments is a mock implementation of documents.Service.
type MockDocuments struct {
	mock.Mock
}

func (m *MockDocuments) List(ctx context.Context, collection string) ([]*documents.Document, error) {
	args := m.Called(ctx, collection)
	docs, _ := args.Get(0).([]*documents.Document)
	return docs, args.Error(1)
}

func (m *MockDocuments) ListIDs(ctx context.Context, collection string) ([]string, error) {
	args := m.Called(ctx, collection)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *MockDocuments) Query(ctx context.Context, collection string, req documents.QueryRequest) ([]*documents.Document, error) {
	args := m.Called(ctx, collection, req)
	docs, _ := args.Get(0).([]*documents.Document)
	return docs, args.Error(1)
}

func (m *MockDocuments) Create(ctx context.Context, collection string, data documents.Fields) (*documents.Document, error) {
	args := m.Called(ctx, collection, data)
	doc, _ := args.Get(0).(*documents.Document)
	return doc, args.Error(1)
}

func (m *MockDocuments) Get(ctx context.Context, collection, id string) (*documents.Document, error) {
	args := m.Called(ctx, collection, id)
	doc, _ := args.Get(0).(*documents.Document)
	return doc, args.Error(1)
}

func (m *MockDocuments) Set(ctx context.Context, collection, id string, data documents.Fields) (*docdb.WriteResult, error) {
	args := m.Called(ctx, collection, id, data)
	result, _ := args.Get(0).(*docdb.WriteResult)
	return result, args.Error(1)
}

func (m *MockDocuments) Update(ctx context.Context, collection, id string, fields documents.Fields, preconds ...docdb.Precondition) (*docdb.WriteResult, error) {
	args := m.Called(ctx, collection, id, fields, preconds)
	result, _ := args.Get(0).(*docdb.WriteResult)
	return result, args.Error(1)
}

func (m *MockDocuments) Delete(ctx context.Context, collection, id string) (*docdb.WriteResult, error) {
	args := m.Called(ctx, collection, id)
	result, _ := args.Get(0).(*docdb.WriteResult)
	return result, args.Error(1)
}

func (m *MockDocuments) Commit(ctx context.Context, ops []documents.BatchOp) ([]*docdb.WriteResult, error) {
	args := m.Called(ctx, ops)
	results, _ := args.Get(0).([]*docdb.WriteResult)
	return results, args.Error(1)
}

func (m *MockDocuments) WatchCollection(ctx context.Context, collection string, req documents.QueryRequest, fn func([]*documents.Document, error)) (docdb.Unsubscribe, error) {
	args := m.Called(ctx, collection, req, fn)
	unsub, _ := args.Get(0).(docdb.Unsubscribe)
	return unsub, args.Error(1)
}

func (m *MockDocuments) WatchDocument(ctx context.Context, collection, id string, fn func(*documents.Document, error)) (docdb.Unsubscribe, error) {
	args := m.Called(ctx, collection, id, fn)
	unsub, _ := args.Get(0).(docdb.Unsubscribe)
	return unsub, args.Error(1)
}

func (m *MockDocuments) PurgeCache(ctx context.Context, collection string) (int64, error) {
	args := m.Called(ctx, collection)
	return args.Get(0).(int64), args.Error(1)
}
