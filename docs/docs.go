// Package docs registers the OpenAPI description of the gateway.
// Regenerate with: swag init -g cmd/server/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/docdb/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "Service healthy", "schema": {"$ref": "#/definitions/dto.HealthResponse"}},
                    "503": {"description": "Service unhealthy", "schema": {"$ref": "#/definitions/dto.HealthResponse"}}
                }
            }
        },
        "/api/v1/docdb/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness check",
                "responses": {"200": {"description": "Service ready"}, "503": {"description": "Service not ready"}}
            }
        },
        "/api/v1/docdb/live": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Liveness check",
                "responses": {"200": {"description": "Service alive"}}
            }
        },
        "/api/v1/docdb/collections/{collection}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Collections"],
                "summary": "List documents",
                "parameters": [
                    {"type": "string", "name": "collection", "in": "path", "required": true},
                    {"type": "boolean", "name": "ids", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ListDocumentsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Collections"],
                "summary": "Create document",
                "parameters": [
                    {"type": "string", "name": "collection", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.WriteDocumentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.CreateDocumentResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/docdb/collections/{collection}/query": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Collections"],
                "summary": "Query documents",
                "parameters": [
                    {"type": "string", "name": "collection", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.QueryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ListDocumentsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/docdb/collections/{collection}/stream": {
            "get": {
                "produces": ["text/event-stream"],
                "tags": ["Streams"],
                "summary": "Stream collection",
                "parameters": [
                    {"type": "string", "name": "collection", "in": "path", "required": true},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "name": "where", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.QuerySnapshotEvent"}}}
            }
        },
        "/api/v1/docdb/collections/{collection}/cache": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["Collections"],
                "summary": "Purge collection cache",
                "parameters": [
                    {"type": "string", "name": "collection", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.PurgeCacheResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/docdb/collections/{collection}/docs/{docId}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Documents"],
                "summary": "Get document",
                "parameters": [
                    {"type": "string", "name": "collection", "in": "path", "required": true},
                    {"type": "string", "name": "docId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.DocumentResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Documents"],
                "summary": "Overwrite document",
                "parameters": [
                    {"type": "string", "name": "collection", "in": "path", "required": true},
                    {"type": "string", "name": "docId", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.WriteDocumentRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.WriteResultResponse"}}}
            },
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Documents"],
                "summary": "Update document",
                "parameters": [
                    {"type": "string", "name": "collection", "in": "path", "required": true},
                    {"type": "string", "name": "docId", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateDocumentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.WriteResultResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "412": {"description": "Precondition Failed", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "501": {"description": "Not Implemented", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["Documents"],
                "summary": "Delete document",
                "parameters": [
                    {"type": "string", "name": "collection", "in": "path", "required": true},
                    {"type": "string", "name": "docId", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.WriteResultResponse"}}}
            }
        },
        "/api/v1/docdb/collections/{collection}/docs/{docId}/stream": {
            "get": {
                "produces": ["text/event-stream"],
                "tags": ["Streams"],
                "summary": "Stream document",
                "parameters": [
                    {"type": "string", "name": "collection", "in": "path", "required": true},
                    {"type": "string", "name": "docId", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SnapshotEvent"}}}
            }
        },
        "/api/v1/docdb/batch": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Batch"],
                "summary": "Commit batch",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.BatchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.BatchResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "message": {"type": "string"}, "details": {"type": "string"}}
        },
        "dto.HealthResponse": {
            "type": "object",
            "properties": {"status": {"type": "string"}, "components": {"type": "object", "additionalProperties": {"type": "string"}}}
        },
        "dto.DocumentResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "collection": {"type": "string"},
                "data": {"type": "object", "additionalProperties": true},
                "createTime": {"type": "string"},
                "updateTime": {"type": "string"}
            }
        },
        "dto.ListDocumentsResponse": {
            "type": "object",
            "properties": {
                "documents": {"type": "array", "items": {"$ref": "#/definitions/dto.DocumentResponse"}},
                "count": {"type": "integer"}
            }
        },
        "dto.WriteDocumentRequest": {
            "type": "object",
            "required": ["data"],
            "properties": {"data": {"type": "object", "additionalProperties": true}}
        },
        "dto.UpdateDocumentRequest": {
            "type": "object",
            "required": ["fields"],
            "properties": {
                "fields": {"type": "object", "additionalProperties": true},
                "lastUpdateTime": {"type": "string"},
                "exists": {"type": "boolean"}
            }
        },
        "dto.ConditionRequest": {
            "type": "object",
            "required": ["field", "op"],
            "properties": {"field": {"type": "string"}, "op": {"type": "string"}, "value": {}}
        },
        "dto.QueryRequest": {
            "type": "object",
            "properties": {
                "where": {"type": "array", "items": {"$ref": "#/definitions/dto.ConditionRequest"}},
                "limit": {"type": "integer", "minimum": 0}
            }
        },
        "dto.BatchOperationRequest": {
            "type": "object",
            "required": ["op", "collection", "id"],
            "properties": {
                "op": {"type": "string", "enum": ["set", "update", "delete"]},
                "collection": {"type": "string"},
                "id": {"type": "string"},
                "data": {"type": "object", "additionalProperties": true}
            }
        },
        "dto.BatchRequest": {
            "type": "object",
            "required": ["operations"],
            "properties": {"operations": {"type": "array", "items": {"$ref": "#/definitions/dto.BatchOperationRequest"}}}
        },
        "dto.WriteResultResponse": {
            "type": "object",
            "properties": {"updateTime": {"type": "string"}}
        },
        "dto.CreateDocumentResponse": {
            "type": "object",
            "properties": {"id": {"type": "string"}, "updateTime": {"type": "string"}}
        },
        "dto.BatchResponse": {
            "type": "object",
            "properties": {"results": {"type": "array", "items": {"$ref": "#/definitions/dto.WriteResultResponse"}}}
        },
        "dto.PurgeCacheResponse": {
            "type": "object",
            "properties": {"collection": {"type": "string"}, "deleted": {"type": "integer"}}
        },
        "dto.SnapshotEvent": {
            "type": "object",
            "properties": {"exists": {"type": "boolean"}, "document": {"$ref": "#/definitions/dto.DocumentResponse"}}
        },
        "dto.QuerySnapshotEvent": {
            "type": "object",
            "properties": {
                "documents": {"type": "array", "items": {"$ref": "#/definitions/dto.DocumentResponse"}},
                "count": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Typed DocDB Gateway API",
	Description:      "HTTP and SSE access to a document database through the typed docdb layer",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
