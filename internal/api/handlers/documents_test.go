package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/unifiedui/typed-docdb/internal/api/dto"
	"github.com/unifiedui/typed-docdb/internal/api/handlers"
	"github.com/unifiedui/typed-docdb/internal/domain/errors"
	"github.com/unifiedui/typed-docdb/internal/services/documents"
	"github.com/unifiedui/typed-docdb/internal/testutil"
	"github.com/unifiedui/typed-docdb/pkg/docdb"
)

func setupDocuments() (*gin.Engine, *testutil.MockDocuments) {
	svc := &testutil.MockDocuments{}
	h := handlers.NewDocumentsHandler(svc)

	router := testutil.SetupTestRouter()
	router.GET("/collections/:collection", h.ListDocuments)
	router.POST("/collections/:collection", h.CreateDocument)
	router.POST("/collections/:collection/query", h.QueryDocuments)
	router.GET("/collections/:collection/docs/:docId", h.GetDocument)
	router.PUT("/collections/:collection/docs/:docId", h.SetDocument)
	router.PATCH("/collections/:collection/docs/:docId", h.UpdateDocument)
	router.DELETE("/collections/:collection/docs/:docId", h.DeleteDocument)
	router.DELETE("/collections/:collection/cache", h.PurgeCache)
	router.POST("/batch", h.CommitBatch)
	return router, svc
}

func TestListDocuments(t *testing.T) {
	router, svc := setupDocuments()
	svc.On("List", mock.Anything, "users").Return([]*documents.Document{
		{ID: "alice", Collection: "users", Data: documents.Fields{"age": 30.0}},
	}, nil)

	w := testutil.PerformRequest(router, http.MethodGet, "/collections/users", nil)

	testutil.AssertStatusCode(t, http.StatusOK, w)
	var resp dto.ListDocumentsResponse
	testutil.ParseJSONResponse(t, w, &resp)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "alice", resp.Documents[0].ID)
	svc.AssertExpectations(t)
}

func TestListDocuments_IDsOnly(t *testing.T) {
	router, svc := setupDocuments()
	svc.On("ListIDs", mock.Anything, "users").Return([]string{"zed", "amy"}, nil)

	w := testutil.PerformRequest(router, http.MethodGet, "/collections/users?ids=true", nil)

	testutil.AssertStatusCode(t, http.StatusOK, w)
	var resp dto.ListIDsResponse
	testutil.ParseJSONResponse(t, w, &resp)
	assert.Equal(t, []string{"zed", "amy"}, resp.IDs)
	svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestCreateDocument(t *testing.T) {
	router, svc := setupDocuments()
	svc.On("Create", mock.Anything, "users", documents.Fields{"name": "Alice"}).
		Return(&documents.Document{ID: "gen-1", Collection: "users"}, nil)

	w := testutil.PerformRequest(router, http.MethodPost, "/collections/users", dto.WriteDocumentRequest{
		Data: map[string]interface{}{"name": "Alice"},
	})

	testutil.AssertStatusCode(t, http.StatusCreated, w)
	assert.Equal(t, "/collections/users/docs/gen-1", w.Header().Get("Location"))
	var resp dto.CreateDocumentResponse
	testutil.ParseJSONResponse(t, w, &resp)
	assert.Equal(t, "gen-1", resp.ID)
}

func TestCreateDocument_InvalidBody(t *testing.T) {
	router, svc := setupDocuments()

	var body dto.ErrorResponse
	w := testutil.PerformRequest(router, http.MethodPost, "/collections/users", `{"data":`)
	testutil.AssertStatusCode(t, http.StatusBadRequest, w)
	testutil.ParseJSONResponse(t, w, &body)
	assert.Equal(t, errors.ErrCodeBadRequest, body.Code)

	w = testutil.PerformRequest(router, http.MethodPost, "/collections/users", `{}`)
	testutil.AssertStatusCode(t, http.StatusBadRequest, w)
	testutil.ParseJSONResponse(t, w, &body)
	assert.Equal(t, errors.ErrCodeValidation, body.Code)
	assert.Contains(t, body.Details, "Data required")

	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestQueryDocuments_KeepsConditionOrder(t *testing.T) {
	router, svc := setupDocuments()
	want := documents.QueryRequest{
		Conditions: []docdb.Condition{
			{Field: "age", Op: docdb.OpGreaterEqual, Value: 18.0},
			{Field: "active", Op: docdb.OpEqual, Value: true},
		},
		Limit: 10,
	}
	svc.On("Query", mock.Anything, "users", want).Return([]*documents.Document{}, nil)

	w := testutil.PerformRequest(router, http.MethodPost, "/collections/users/query",
		`{"where":[{"field":"age","op":">=","value":18},{"field":"active","op":"==","value":true}],"limit":10}`)

	testutil.AssertStatusCode(t, http.StatusOK, w)
	assert.JSONEq(t, `{"documents":[],"count":0}`, w.Body.String())
	svc.AssertExpectations(t)
}

func TestQueryDocuments_Validation(t *testing.T) {
	router, _ := setupDocuments()

	w := testutil.PerformRequest(router, http.MethodPost, "/collections/users/query", `{"limit":-1}`)
	testutil.AssertStatusCode(t, http.StatusBadRequest, w)

	w = testutil.PerformRequest(router, http.MethodPost, "/collections/users/query", `{"where":[{"op":"=="}]}`)
	testutil.AssertStatusCode(t, http.StatusBadRequest, w)
}

func TestGetDocument(t *testing.T) {
	router, svc := setupDocuments()
	updated := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.On("Get", mock.Anything, "users", "alice").
		Return(&documents.Document{ID: "alice", Collection: "users", Data: documents.Fields{"age": 30.0}, UpdateTime: &updated}, nil)
	svc.On("Get", mock.Anything, "users", "ghost").
		Return(nil, errors.NewNotFoundError("document", "users/ghost"))

	w := testutil.PerformRequest(router, http.MethodGet, "/collections/users/docs/alice", nil)
	testutil.AssertStatusCode(t, http.StatusOK, w)
	assert.JSONEq(t,
		`{"id":"alice","collection":"users","data":{"age":30},"updateTime":"2024-05-01T12:00:00Z"}`,
		w.Body.String())

	w = testutil.PerformRequest(router, http.MethodGet, "/collections/users/docs/ghost", nil)
	testutil.AssertStatusCode(t, http.StatusNotFound, w)
}

func TestSetDocument(t *testing.T) {
	router, svc := setupDocuments()
	svc.On("Set", mock.Anything, "users", "alice", documents.Fields{"age": 30.0}).
		Return(&docdb.WriteResult{}, nil)

	w := testutil.PerformRequest(router, http.MethodPut, "/collections/users/docs/alice", `{"data":{"age":30}}`)

	testutil.AssertStatusCode(t, http.StatusOK, w)
	assert.JSONEq(t, `{}`, w.Body.String())
}

func TestUpdateDocument_Preconditions(t *testing.T) {
	router, svc := setupDocuments()
	last := time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC)
	svc.On("Update", mock.Anything, "users", "alice", documents.Fields{"profile.city": "Berlin"},
		[]docdb.Precondition{docdb.Exists(true), docdb.LastUpdateTime(last)}).
		Return(nil, errors.FromDocDB("update document", docdb.ErrPreconditionFailed))

	w := testutil.PerformRequest(router, http.MethodPatch, "/collections/users/docs/alice",
		`{"fields":{"profile.city":"Berlin"},"exists":true,"lastUpdateTime":"2024-05-01T12:00:00.123456789Z"}`)

	testutil.AssertStatusCode(t, http.StatusPreconditionFailed, w)
	svc.AssertExpectations(t)
}

func TestUpdateDocument_EmptyFields(t *testing.T) {
	router, _ := setupDocuments()

	w := testutil.PerformRequest(router, http.MethodPatch, "/collections/users/docs/alice", `{"fields":{}}`)
	testutil.AssertStatusCode(t, http.StatusBadRequest, w)
}

func TestDeleteDocument(t *testing.T) {
	router, svc := setupDocuments()
	updated := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.On("Delete", mock.Anything, "users", "alice").Return(&docdb.WriteResult{UpdateTime: updated}, nil)

	w := testutil.PerformRequest(router, http.MethodDelete, "/collections/users/docs/alice", nil)

	testutil.AssertStatusCode(t, http.StatusOK, w)
	assert.JSONEq(t, `{"updateTime":"2024-05-01T12:00:00Z"}`, w.Body.String())
}

func TestPurgeCache(t *testing.T) {
	router, svc := setupDocuments()
	svc.On("PurgeCache", mock.Anything, "users").Return(int64(3), nil)

	w := testutil.PerformRequest(router, http.MethodDelete, "/collections/users/cache", nil)

	testutil.AssertStatusCode(t, http.StatusOK, w)
	assert.JSONEq(t, `{"collection":"users","deleted":3}`, w.Body.String())
}

func TestPurgeCache_CacheDown(t *testing.T) {
	router, svc := setupDocuments()
	svc.On("PurgeCache", mock.Anything, "users").Return(int64(0), errors.NewServiceUnavailableError("cache", assert.AnError))

	w := testutil.PerformRequest(router, http.MethodDelete, "/collections/users/cache", nil)

	testutil.AssertStatusCode(t, http.StatusServiceUnavailable, w)
}

func TestCommitBatch(t *testing.T) {
	router, svc := setupDocuments()
	svc.On("Commit", mock.Anything, []documents.BatchOp{
		{Kind: documents.OpSet, Collection: "users", ID: "a", Data: documents.Fields{"n": 1.0}},
		{Kind: documents.OpDelete, Collection: "users", ID: "b"},
	}).Return([]*docdb.WriteResult{{}, {}}, nil)

	w := testutil.PerformRequest(router, http.MethodPost, "/batch", `{"operations":[
		{"op":"set","collection":"users","id":"a","data":{"n":1}},
		{"op":"delete","collection":"users","id":"b"}]}`)

	testutil.AssertStatusCode(t, http.StatusOK, w)
	var resp dto.BatchResponse
	testutil.ParseJSONResponse(t, w, &resp)
	require.Len(t, resp.Results, 2)
	svc.AssertExpectations(t)
}

func TestCommitBatch_Validation(t *testing.T) {
	router, svc := setupDocuments()

	for _, body := range []string{
		`{"operations":[]}`,
		`{"operations":[{"op":"upsert","collection":"users","id":"a"}]}`,
		`{"operations":[{"op":"set","id":"a"}]}`,
	} {
		w := testutil.PerformRequest(router, http.MethodPost, "/batch", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
	svc.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything)
}
