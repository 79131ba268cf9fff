package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Admission Simulation API",
        "description": "Capacity-constrained admission simulation with passing-score computation",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Simulation", "description": "Passing-score computation and retrieval"},
        {"name": "Enrollments", "description": "Admitted applicants per program"},
        {"name": "Applicants", "description": "Applicant and priority read models"},
        {"name": "Ingest", "description": "Applicant batch replacement"},
        {"name": "Admin", "description": "Explicit resets"},
        {"name": "Reports", "description": "Downloadable CSV/PDF reports"}
    ],
    "paths": {
        "/passing-scores": {
            "get": {
                "tags": ["Simulation"],
                "summary": "Passing scores for a cycle date",
                "description": "Runs the admission simulation once per cycle date; later calls return the persisted table with meta.from_cache=true.",
                "parameters": [
                    {"name": "date", "in": "query", "required": true, "type": "string", "description": "YYYY-MM-DD or DD.MM.YYYY"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "No programs configured", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List admitted applicants for a program",
                "parameters": [
                    {"name": "programCode", "in": "query", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown program", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/programs": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List the program catalog",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/applicants": {
            "get": {
                "tags": ["Applicants"],
                "summary": "List distinct scored applicants holding priorities",
                "parameters": [
                    {"name": "applicantId", "in": "query", "type": "integer"},
                    {"name": "minScore", "in": "query", "type": "integer"},
                    {"name": "date", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/applicants/{id}": {
            "get": {
                "tags": ["Applicants"],
                "summary": "Applicant detail with ranked priorities",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/priorities": {
            "get": {
                "tags": ["Applicants"],
                "summary": "List priority entries joined with applicant scores",
                "parameters": [
                    {"name": "programCode", "in": "query", "type": "string"},
                    {"name": "date", "in": "query", "type": "string"},
                    {"name": "applicantId", "in": "query", "type": "integer"},
                    {"name": "consent", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/ingest/batches": {
            "post": {
                "tags": ["Ingest"],
                "summary": "Replace one program's applicant batch for a cycle date",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/IngestBatchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown program", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/clear-enrollment": {
            "post": {
                "tags": ["Admin"],
                "summary": "Clear simulation output, optionally scoped to one date",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/clear": {
            "post": {
                "tags": ["Admin"],
                "summary": "Clear every ledger and all simulation output",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/enrollment": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download the per-program enrollment report",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "date", "in": "query", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "Rendered report"},
                    "404": {"description": "No enrollment data", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/passing-scores": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download the passing-score table",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "date", "in": "query", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "Rendered report"},
                    "404": {"description": "No passing scores", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "PassingScoreRow": {
            "type": "object",
            "properties": {
                "program_code": {"type": "string"},
                "program_name": {"type": "string"},
                "total_seats": {"type": "integer"},
                "passing_score": {"type": "integer", "x-nullable": true},
                "status": {"type": "string", "enum": ["COMPUTED", "UNDERSUBSCRIBED", "NO_DATA"]},
                "cycle_date": {"type": "string"}
            }
        },
        "EnrollmentAssignment": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "applicant_id": {"type": "integer"},
                "program_code": {"type": "string"},
                "priority_rank": {"type": "integer"},
                "total_score": {"type": "integer"},
                "cycle_date": {"type": "string"}
            }
        },
        "IngestRow": {
            "type": "object",
            "properties": {
                "applicant_id": {"type": "integer"},
                "physics_ict": {"type": "integer"},
                "russian": {"type": "integer"},
                "math": {"type": "integer"},
                "achievements": {"type": "integer"},
                "consent": {"type": "boolean"},
                "priority_rank": {"type": "integer"}
            }
        },
        "IngestBatchRequest": {
            "type": "object",
            "properties": {
                "program_code": {"type": "string"},
                "cycle_date": {"type": "string"},
                "rows": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/IngestRow"}
                }
            },
            "required": ["program_code", "cycle_date", "rows"]
        },
        "IngestBatchResult": {
            "type": "object",
            "properties": {
                "inserted": {"type": "integer"},
                "updated": {"type": "integer"},
                "errors": {"type": "integer"},
                "simulated": {"type": "boolean"}
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
