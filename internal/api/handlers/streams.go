package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/unifiedui/typed-docdb/internal/api/dto"
	"github.com/unifiedui/typed-docdb/internal/api/middleware"
	"github.com/unifiedui/typed-docdb/internal/api/sse"
	"github.com/unifiedui/typed-docdb/internal/domain/errors"
	"github.com/unifiedui/typed-docdb/internal/services/documents"
	"github.com/unifiedui/typed-docdb/pkg/docdb"
)

// DefaultHeartbeat is the interval between keep-alive comments on idle streams.
const DefaultHeartbeat = 15 * time.Second

// StreamsHandler serves live snapshots as Server-Sent Events.
type StreamsHandler struct {
	service   documents.Service
	heartbeat time.Duration
}

// NewStreamsHandler creates a new StreamsHandler. A zero heartbeat uses
// DefaultHeartbeat.
func NewStreamsHandler(service documents.Service, heartbeat time.Duration) *StreamsHandler {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	return &StreamsHandler{service: service, heartbeat: heartbeat}
}

// update is one snapshot or error handed from a subscription callback to the
// request goroutine.
type update struct {
	payload any
	err     error
}

// StreamCollection handles GET /collections/{collection}/stream
// @Summary Stream collection
// @Description Streams query results as SSE snapshot events. The first event carries the current results.
// @Tags Streams
// @Produce text/event-stream
// @Param collection path string true "Collection name"
// @Param where query []string false "Condition as field:op:value, repeatable" collectionFormat(multi)
// @Param limit query int false "Maximum number of documents"
// @Success 200 {object} dto.QuerySnapshotEvent
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/docdb/collections/{collection}/stream [get]
func (h *StreamsHandler) StreamCollection(c *gin.Context) {
	where, err := parseWhere(c.QueryArray("where"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	req := dto.QueryRequest{Where: where}
	if raw := c.Query("limit"); raw != "" {
		if req.Limit, err = strconv.Atoi(raw); err != nil {
			middleware.HandleError(c, errors.NewValidationError("limit must be an integer", raw))
			return
		}
	}

	h.stream(c, func(ctx context.Context, push func(update)) (docdb.Unsubscribe, error) {
		return h.service.WatchCollection(ctx, c.Param("collection"), toQuery(req), func(docs []*documents.Document, err error) {
			if err != nil {
				push(update{err: err})
				return
			}
			push(update{payload: dto.QuerySnapshotEvent{Documents: toDocumentResponses(docs), Count: len(docs)}})
		})
	})
}

// StreamDocument handles GET /collections/{collection}/docs/{docId}/stream
// @Summary Stream document
// @Description Streams one document as SSE snapshot events. The first event carries the current state.
// @Tags Streams
// @Produce text/event-stream
// @Param collection path string true "Collection name"
// @Param docId path string true "Document ID"
// @Success 200 {object} dto.SnapshotEvent
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/docdb/collections/{collection}/docs/{docId}/stream [get]
func (h *StreamsHandler) StreamDocument(c *gin.Context) {
	h.stream(c, func(ctx context.Context, push func(update)) (docdb.Unsubscribe, error) {
		return h.service.WatchDocument(ctx, c.Param("collection"), c.Param("docId"), func(doc *documents.Document, err error) {
			if err != nil {
				push(update{err: err})
				return
			}
			push(update{payload: dto.SnapshotEvent{Exists: doc != nil, Document: toDocumentResponse(doc)}})
		})
	})
}

// stream subscribes through watch and writes every update to the response
// until the client disconnects or the subscription reports an error. Only the
// request goroutine writes to the response.
func (h *StreamsHandler) stream(c *gin.Context, watch func(ctx context.Context, push func(update)) (docdb.Unsubscribe, error)) {
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	logger := middleware.GetRequestLogger(c)

	updates := make(chan update, 16)
	push := func(u update) {
		select {
		case updates <- u:
		case <-ctx.Done():
		}
	}

	unsubscribe, err := watch(ctx, push)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	defer unsubscribe()

	w, err := sse.NewWriter(c.Writer)
	if err != nil {
		middleware.HandleError(c, errors.NewInternalError("failed to open stream", err))
		return
	}
	c.Status(http.StatusOK)
	logger.Debug().Msg("stream opened")

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("stream closed by client")
			return
		case <-ticker.C:
			if err := w.Heartbeat(); err != nil {
				return
			}
		case u := <-updates:
			if u.err != nil {
				writeStreamError(w, u.err)
				_ = w.WriteDone()
				return
			}
			if err := w.WriteSnapshot(u.payload); err != nil {
				logger.Warn().Err(err).Msg("failed to write snapshot")
				return
			}
		}
	}
}

func writeStreamError(w *sse.Writer, err error) {
	domainErr, ok := errors.GetDomainError(err)
	if !ok {
		domainErr = errors.NewInternalError("stream failed", err)
	}
	_ = w.WriteError(domainErr.Code, domainErr.Message, domainErr.Details)
}
