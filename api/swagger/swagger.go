package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "CRID Registry API",
        "description": "Access-controlled course registration registry",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Secretary authentication"},
        {"name": "Registry", "description": "Registry ownership and current period"},
        {"name": "Registrations", "description": "Per-student course registrations"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Secretary login",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/registry": {
            "get": {
                "tags": ["Registry"],
                "summary": "Registry ownership and current period",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/registry/period": {
            "put": {
                "tags": ["Registry"],
                "summary": "Replace the period mutations target",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetPeriodRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Empty period token"},
                    "403": {"description": "Caller is not the administrator"}
                }
            }
        },
        "/registrations": {
            "post": {
                "tags": ["Registrations"],
                "summary": "Register a student into a course for the current period",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Caller is not the administrator"},
                    "409": {"description": "Already enrolled"}
                }
            },
            "delete": {
                "tags": ["Registrations"],
                "summary": "Delete a registration from the current period",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RemoveRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Caller is not the administrator"},
                    "404": {"description": "Enrollment not found"}
                }
            }
        },
        "/registrations/status": {
            "patch": {
                "tags": ["Registrations"],
                "summary": "Overwrite the status of a registration",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangeStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Caller is not the administrator"},
                    "404": {"description": "Enrollment not found"}
                }
            }
        },
        "/students/{studentId}/registrations": {
            "get": {
                "tags": ["Registrations"],
                "summary": "List a student's registrations for a period",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "period", "in": "query", "type": "string", "description": "Defaults to the current period"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{studentId}/registrations/export": {
            "get": {
                "tags": ["Registrations"],
                "summary": "Export a student's period registrations",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "period", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "SetPeriodRequest": {
            "type": "object",
            "required": ["period"],
            "properties": {
                "period": {"type": "string", "example": "2025.1"}
            }
        },
        "EnrollRequest": {
            "type": "object",
            "required": ["student_id", "course_name", "course_code", "instructor_name", "initial_status"],
            "properties": {
                "student_id": {"type": "string"},
                "course_name": {"type": "string"},
                "course_code": {"type": "string"},
                "instructor_name": {"type": "string"},
                "initial_status": {"type": "string", "example": "Normal"}
            }
        },
        "ChangeStatusRequest": {
            "type": "object",
            "required": ["student_id", "course_code", "status"],
            "properties": {
                "student_id": {"type": "string"},
                "course_code": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "RemoveRequest": {
            "type": "object",
            "required": ["student_id", "course_code"],
            "properties": {
                "student_id": {"type": "string"},
                "course_code": {"type": "string"}
            }
        },
        "Enrollment": {
            "type": "object",
            "properties": {
                "course_name": {"type": "string"},
                "course_code": {"type": "string"},
                "instructor_name": {"type": "string"},
                "status": {"type": "string"},
                "enrolled_at": {"type": "string", "format": "date-time"}
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
