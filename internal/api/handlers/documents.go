package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/unifiedui/typed-docdb/internal/api/dto"
	"github.com/unifiedui/typed-docdb/internal/api/middleware"
	"github.com/unifiedui/typed-docdb/internal/domain/errors"
	"github.com/unifiedui/typed-docdb/internal/services/documents"
	"github.com/unifiedui/typed-docdb/pkg/docdb"
)

// DocumentsHandler handles collection, document and batch endpoints.
type DocumentsHandler struct {
	service documents.Service
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(service documents.Service) *DocumentsHandler {
	return &DocumentsHandler{service: service}
}

// ListDocuments handles GET /collections/{collection}
// @Summary List documents
// @Description Reads every document of a collection, or only their ids with ids=true
// @Tags Collections
// @Produce json
// @Param collection path string true "Collection name"
// @Param ids query bool false "Return ids only"
// @Success 200 {object} dto.ListDocumentsResponse
// @Success 200 {object} dto.ListIDsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/docdb/collections/{collection} [get]
func (h *DocumentsHandler) ListDocuments(c *gin.Context) {
	ctx := c.Request.Context()
	collection := c.Param("collection")

	idsOnly, _ := strconv.ParseBool(c.Query("ids"))
	if idsOnly {
		ids, err := h.service.ListIDs(ctx, collection)
		if err != nil {
			middleware.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.ListIDsResponse{IDs: ids, Count: len(ids)})
		return
	}

	docs, err := h.service.List(ctx, collection)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toListResponse(docs))
}

// CreateDocument handles POST /collections/{collection}
// @Summary Create document
// @Description Stores a document under a generated id
// @Tags Collections
// @Accept json
// @Produce json
// @Param collection path string true "Collection name"
// @Param request body dto.WriteDocumentRequest true "Document data"
// @Success 201 {object} dto.CreateDocumentResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/docdb/collections/{collection} [post]
func (h *DocumentsHandler) CreateDocument(c *gin.Context) {
	var req dto.WriteDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, middleware.BindError(err))
		return
	}

	doc, err := h.service.Create(c.Request.Context(), c.Param("collection"), req.Data)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.Header("Location", c.Request.URL.Path+"/docs/"+doc.ID)
	c.JSON(http.StatusCreated, dto.CreateDocumentResponse{ID: doc.ID, UpdateTime: doc.UpdateTime})
}

// QueryDocuments handles POST /collections/{collection}/query
// @Summary Query documents
// @Description Filters a collection. Conditions apply in the order given and the limit applies last.
// @Tags Collections
// @Accept json
// @Produce json
// @Param collection path string true "Collection name"
// @Param request body dto.QueryRequest true "Conditions and limit"
// @Success 200 {object} dto.ListDocumentsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/docdb/collections/{collection}/query [post]
func (h *DocumentsHandler) QueryDocuments(c *gin.Context) {
	var req dto.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, middleware.BindError(err))
		return
	}

	docs, err := h.service.Query(c.Request.Context(), c.Param("collection"), toQuery(req))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toListResponse(docs))
}

// GetDocument handles GET /collections/{collection}/docs/{docId}
// @Summary Get document
// @Tags Documents
// @Produce json
// @Param collection path string true "Collection name"
// @Param docId path string true "Document ID"
// @Success 200 {object} dto.DocumentResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/docdb/collections/{collection}/docs/{docId} [get]
func (h *DocumentsHandler) GetDocument(c *gin.Context) {
	doc, err := h.service.Get(c.Request.Context(), c.Param("collection"), c.Param("docId"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDocumentResponse(doc))
}

// SetDocument handles PUT /collections/{collection}/docs/{docId}
// @Summary Overwrite document
// @Description Creates the document or replaces all of its fields
// @Tags Documents
// @Accept json
// @Produce json
// @Param collection path string true "Collection name"
// @Param docId path string true "Document ID"
// @Param request body dto.WriteDocumentRequest true "Document data"
// @Success 200 {object} dto.WriteResultResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/docdb/collections/{collection}/docs/{docId} [put]
func (h *DocumentsHandler) SetDocument(c *gin.Context) {
	var req dto.WriteDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, middleware.BindError(err))
		return
	}

	result, err := h.service.Set(c.Request.Context(), c.Param("collection"), c.Param("docId"), req.Data)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWriteResult(result))
}

// UpdateDocument handles PATCH /collections/{collection}/docs/{docId}
// @Summary Update document
// @Description Merges fields into an existing document, optionally guarded by preconditions
// @Tags Documents
// @Accept json
// @Produce json
// @Param collection path string true "Collection name"
// @Param docId path string true "Document ID"
// @Param request body dto.UpdateDocumentRequest true "Fields and preconditions"
// @Success 200 {object} dto.WriteResultResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 412 {object} dto.ErrorResponse
// @Failure 501 {object} dto.ErrorResponse
// @Router /api/v1/docdb/collections/{collection}/docs/{docId} [patch]
func (h *DocumentsHandler) UpdateDocument(c *gin.Context) {
	var req dto.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, middleware.BindError(err))
		return
	}

	var preconds []docdb.Precondition
	if req.Exists != nil {
		preconds = append(preconds, docdb.Exists(*req.Exists))
	}
	if req.LastUpdateTime != nil {
		preconds = append(preconds, docdb.LastUpdateTime(*req.LastUpdateTime))
	}

	result, err := h.service.Update(c.Request.Context(), c.Param("collection"), c.Param("docId"), req.Fields, preconds...)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWriteResult(result))
}

// DeleteDocument handles DELETE /collections/{collection}/docs/{docId}
// @Summary Delete document
// @Description Removes a document. Deleting a missing document succeeds.
// @Tags Documents
// @Produce json
// @Param collection path string true "Collection name"
// @Param docId path string true "Document ID"
// @Success 200 {object} dto.WriteResultResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/docdb/collections/{collection}/docs/{docId} [delete]
func (h *DocumentsHandler) DeleteDocument(c *gin.Context) {
	result, err := h.service.Delete(c.Request.Context(), c.Param("collection"), c.Param("docId"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWriteResult(result))
}

// PurgeCache handles DELETE /collections/{collection}/cache
// @Summary Purge collection cache
// @Description Drops every cached document of the collection. Stored documents are untouched.
// @Tags Collections
// @Produce json
// @Param collection path string true "Collection name"
// @Success 200 {object} dto.PurgeCacheResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/docdb/collections/{collection}/cache [delete]
func (h *DocumentsHandler) PurgeCache(c *gin.Context) {
	collection := c.Param("collection")
	n, err := h.service.PurgeCache(c.Request.Context(), collection)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PurgeCacheResponse{Collection: collection, Deleted: n})
}

// CommitBatch handles POST /batch
// @Summary Commit batch
// @Description Applies set, update and delete operations atomically, in order
// @Tags Batch
// @Accept json
// @Produce json
// @Param request body dto.BatchRequest true "Operations"
// @Success 200 {object} dto.BatchResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/docdb/batch [post]
func (h *DocumentsHandler) CommitBatch(c *gin.Context) {
	var req dto.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, middleware.BindError(err))
		return
	}

	ops := make([]documents.BatchOp, len(req.Operations))
	for i, op := range req.Operations {
		ops[i] = documents.BatchOp{
			Kind:       documents.OpKind(op.Op),
			Collection: op.Collection,
			ID:         op.ID,
			Data:       op.Data,
		}
	}

	results, err := h.service.Commit(c.Request.Context(), ops)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	resp := dto.BatchResponse{Results: make([]*dto.WriteResultResponse, len(results))}
	for i, r := range results {
		resp.Results[i] = toWriteResult(r)
	}
	c.JSON(http.StatusOK, resp)
}

func toQuery(req dto.QueryRequest) documents.QueryRequest {
	q := documents.QueryRequest{Limit: req.Limit}
	for _, w := range req.Where {
		q.Conditions = append(q.Conditions, docdb.Condition{
			Field: w.Field,
			Op:    docdb.Operator(w.Op),
			Value: w.Value,
		})
	}
	return q
}

// parseWhere reads "field:op:value" query parameters. The value is decoded
// as JSON when it parses and used as a plain string otherwise.
func parseWhere(params []string) ([]dto.ConditionRequest, error) {
	conditions := make([]dto.ConditionRequest, 0, len(params))
	for _, p := range params {
		parts := strings.SplitN(p, ":", 3)
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
			return nil, errors.NewValidationError("where must be field:op:value", p)
		}
		var value interface{}
		if err := json.Unmarshal([]byte(parts[2]), &value); err != nil {
			value = parts[2]
		}
		conditions = append(conditions, dto.ConditionRequest{Field: parts[0], Op: parts[1], Value: value})
	}
	return conditions, nil
}

func toDocumentResponse(doc *documents.Document) *dto.DocumentResponse {
	if doc == nil {
		return nil
	}
	return &dto.DocumentResponse{
		ID:         doc.ID,
		Collection: doc.Collection,
		Data:       doc.Data,
		CreateTime: doc.CreateTime,
		UpdateTime: doc.UpdateTime,
	}
}

func toDocumentResponses(docs []*documents.Document) []*dto.DocumentResponse {
	out := make([]*dto.DocumentResponse, len(docs))
	for i, d := range docs {
		out[i] = toDocumentResponse(d)
	}
	return out
}

func toListResponse(docs []*documents.Document) dto.ListDocumentsResponse {
	return dto.ListDocumentsResponse{Documents: toDocumentResponses(docs), Count: len(docs)}
}

func toWriteResult(r *docdb.WriteResult) *dto.WriteResultResponse {
	resp := &dto.WriteResultResponse{}
	if r != nil && !r.UpdateTime.IsZero() {
		t := r.UpdateTime.UTC()
		resp.UpdateTime = &t
	}
	return resp
}
