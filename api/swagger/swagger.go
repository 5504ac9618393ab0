package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Visit Log API",
        "description": "Client visit approval workflow service",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Submissions", "description": "Visit entry intake"},
        {"name": "Edits", "description": "Workspace edit events"},
        {"name": "Approvals", "description": "Manager approval link"},
        {"name": "Batch", "description": "Notification batch passes"},
        {"name": "Ledgers", "description": "Per-employee yearly ledgers"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Store unavailable"}
                }
            }
        },
        "/submissions": {
            "post": {
                "tags": ["Submissions"],
                "summary": "Submit a visit entry",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmissionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/edits": {
            "post": {
                "tags": ["Edits"],
                "summary": "Report a cell edit",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangeEvent"}}
                ],
                "responses": {
                    "200": {"description": "Processed or ignored", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/approvals": {
            "get": {
                "tags": ["Approvals"],
                "summary": "Approve via email link",
                "produces": ["text/html"],
                "parameters": [
                    {"name": "action", "in": "query", "type": "string", "required": true},
                    {"name": "requestId", "in": "query", "type": "string", "required": true},
                    {"name": "token", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "HTML result page"},
                    "401": {"description": "Invalid or expired token"}
                }
            },
            "post": {
                "tags": ["Approvals"],
                "summary": "Approve a visit request",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ApprovalRequest"}}
                ],
                "responses": {
                    "200": {"description": "Approved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/confirmations/run": {
            "post": {
                "tags": ["Batch"],
                "summary": "Send pending confirmation digests",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/digests/pending/run": {
            "post": {
                "tags": ["Batch"],
                "summary": "Send the manager's pending digest",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/ledgers/{employee}/{year}/export": {
            "get": {
                "tags": ["Ledgers"],
                "summary": "Export an employee's yearly ledger",
                "parameters": [
                    {"name": "employee", "in": "path", "type": "string", "required": true},
                    {"name": "year", "in": "path", "type": "integer", "required": true},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Exported file"},
                    "404": {"description": "Unknown ledger", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SubmissionRequest": {
            "type": "object",
            "properties": {
                "employee_email": {"type": "string"},
                "visit_date": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "purpose": {"type": "string"},
                "reimbursement": {"type": "string"},
                "description": {"type": "string"},
                "companies": {"type": "string"},
                "values": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ChangeEvent": {
            "type": "object",
            "properties": {
                "sheet": {"type": "string"},
                "row": {"type": "integer"},
                "col": {"type": "integer"},
                "oldValue": {"type": "string"},
                "newValue": {"type": "string"}
            }
        },
        "ApprovalRequest": {
            "type": "object",
            "properties": {
                "action": {"type": "string"},
                "requestId": {"type": "string"},
                "token": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
