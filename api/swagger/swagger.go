package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Campus Lost & Found API",
        "description": "Report found items, submit ownership claims, and review them",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Registration and sessions"},
        {"name": "Users", "description": "Account approval gate"},
        {"name": "Items", "description": "Found item registry"},
        {"name": "Claims", "description": "Ownership claim workflow"}
    ],
    "paths": {
        "/auth/register/student": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a student account",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error"},
                    "409": {"description": "Username or email taken"}
                }
            }
        },
        "/auth/register/teacher": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a teacher account",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error"},
                    "409": {"description": "Username or email taken"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log in",
                "responses": {
                    "200": {"description": "Tokens issued"},
                    "401": {"description": "Invalid credentials"},
                    "403": {"description": "Account not approved"}
                }
            }
        },
        "/users/pending": {
            "get": {
                "tags": ["Users"],
                "summary": "List accounts awaiting approval",
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Admin only"}
                }
            }
        },
        "/users/{id}/approve": {
            "post": {
                "tags": ["Users"],
                "summary": "Approve a pending account",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Approved"},
                    "409": {"description": "Already decided"}
                }
            }
        },
        "/users/{id}/reject": {
            "post": {
                "tags": ["Users"],
                "summary": "Reject a pending account",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Rejected"},
                    "409": {"description": "Already decided"}
                }
            }
        },
        "/items": {
            "get": {
                "tags": ["Items"],
                "summary": "List available items",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Items"],
                "summary": "Report a found item",
                "consumes": ["multipart/form-data"],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation error"}
                }
            }
        },
        "/items/{id}": {
            "get": {
                "tags": ["Items"],
                "summary": "Item detail",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/items/my-items": {
            "get": {
                "tags": ["Items"],
                "summary": "List the caller's reported items",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/claims/items/{item_id}": {
            "post": {
                "tags": ["Claims"],
                "summary": "Submit a claim against an item",
                "parameters": [{"name": "item_id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "201": {"description": "Created"},
                    "404": {"description": "Item not found"},
                    "409": {"description": "Duplicate pending claim"}
                }
            }
        },
        "/claims/my-claims": {
            "get": {
                "tags": ["Claims"],
                "summary": "List the caller's claims",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/claims/review": {
            "get": {
                "tags": ["Claims"],
                "summary": "List claims for staff review",
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Admin only"}
                }
            }
        },
        "/claims/{id}/review": {
            "post": {
                "tags": ["Claims"],
                "summary": "Decide a claim",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Reviewed"},
                    "409": {"description": "Transition not permitted"}
                }
            }
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
