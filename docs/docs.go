// Package docs registers the OpenAPI document served by swaggo/http-swagger.
// Regenerate with: swag init -g cmd/api/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "email": "support@example.com"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.HealthResponse"}},
                    "503": {"description": "Database unreachable", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/users": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "List users",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/user.ListResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Create a user",
                "parameters": [
                    {"description": "User", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/user.Input"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/user.Response"}},
                    "400": {"description": "Invalid body", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Get a user",
                "parameters": [
                    {"type": "string", "description": "User ID (UUID)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/user.Response"}},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Update a user",
                "parameters": [
                    {"type": "string", "description": "User ID (UUID)", "name": "id", "in": "path", "required": true},
                    {"description": "User", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/user.Input"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/user.Response"}},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["users"],
                "summary": "Delete a user and their meals",
                "parameters": [
                    {"type": "string", "description": "User ID (UUID)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/meals": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["meals"],
                "summary": "Register a meal",
                "parameters": [
                    {"description": "Meal", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/meal.CreateInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/meal.Response"}},
                    "400": {"description": "Invalid body", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/meals/{userId}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["meals"],
                "summary": "List a user's meals",
                "parameters": [
                    {"type": "string", "description": "User ID (UUID)", "name": "userId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/meal.ListResponse"}},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/meals/{userId}/registered": {
            "get": {
                "produces": ["application/json"],
                "tags": ["meals"],
                "summary": "Count a user's meals",
                "parameters": [
                    {"type": "string", "description": "User ID (UUID)", "name": "userId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/meal.CountResponse"}}
                }
            }
        },
        "/meals/{userId}/in-diet": {
            "get": {
                "produces": ["application/json"],
                "tags": ["meals"],
                "summary": "Count a user's in-diet meals",
                "parameters": [
                    {"type": "string", "description": "User ID (UUID)", "name": "userId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/meal.CountResponse"}}
                }
            }
        },
        "/meals/{userId}/out-diet": {
            "get": {
                "produces": ["application/json"],
                "tags": ["meals"],
                "summary": "Count a user's out-of-diet meals",
                "parameters": [
                    {"type": "string", "description": "User ID (UUID)", "name": "userId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/meal.CountResponse"}}
                }
            }
        },
        "/meals/{userId}/sequence-in-diet": {
            "get": {
                "produces": ["application/json"],
                "tags": ["meals"],
                "summary": "Longest run of consecutive in-diet meals",
                "parameters": [
                    {"type": "string", "description": "User ID (UUID)", "name": "userId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/meal.CountResponse"}}
                }
            }
        },
        "/meals/{id}/{userId}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["meals"],
                "summary": "Get a meal",
                "parameters": [
                    {"type": "string", "description": "Meal ID (UUID)", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "User ID (UUID)", "name": "userId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/meal.Response"}},
                    "404": {"description": "User or meal not found", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["meals"],
                "summary": "Update a meal",
                "parameters": [
                    {"type": "string", "description": "Meal ID (UUID)", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "User ID (UUID)", "name": "userId", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/meal.UpdateInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/meal.Response"}},
                    "404": {"description": "Meal not found", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["meals"],
                "summary": "Delete a meal",
                "parameters": [
                    {"type": "string", "description": "Meal ID (UUID)", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "User ID (UUID)", "name": "userId", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Meal not found", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "http.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "database": {"type": "string"}
            }
        },
        "httputil.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "code": {"type": "string"},
                "fields": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "user.User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "user.Input": {
            "type": "object",
            "required": ["name", "email"],
            "properties": {
                "name": {"type": "string", "maxLength": 255},
                "email": {"type": "string", "maxLength": 254}
            }
        },
        "user.Response": {
            "type": "object",
            "properties": {"user": {"$ref": "#/definitions/user.User"}}
        },
        "user.ListResponse": {
            "type": "object",
            "properties": {"users": {"type": "array", "items": {"$ref": "#/definitions/user.User"}}}
        },
        "meal.Meal": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "date": {"type": "string", "example": "2024-10-01"},
                "hour": {"type": "string", "example": "12:00:00"},
                "is_diet": {"type": "boolean"},
                "user_id": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "meal.CreateInput": {
            "type": "object",
            "required": ["title", "date", "hour", "is_diet", "user_id"],
            "properties": {
                "title": {"type": "string", "maxLength": 255},
                "description": {"type": "string", "maxLength": 2000},
                "date": {"type": "string", "example": "2024-10-01"},
                "hour": {"type": "string", "example": "12:00"},
                "is_diet": {"type": "boolean"},
                "user_id": {"type": "string"}
            }
        },
        "meal.UpdateInput": {
            "type": "object",
            "properties": {
                "title": {"type": "string", "maxLength": 255},
                "description": {"type": "string", "maxLength": 2000},
                "date": {"type": "string", "example": "2024-10-01"},
                "hour": {"type": "string", "example": "12:00"},
                "is_diet": {"type": "boolean"}
            }
        },
        "meal.Response": {
            "type": "object",
            "properties": {"meal": {"$ref": "#/definitions/meal.Meal"}}
        },
        "meal.ListResponse": {
            "type": "object",
            "properties": {"meals": {"type": "array", "items": {"$ref": "#/definitions/meal.Meal"}}}
        },
        "meal.CountResponse": {
            "type": "object",
            "properties": {
                "meals": {
                    "type": "object",
                    "properties": {"count": {"type": "integer"}}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Daily Diet API",
	Description:      "Track meals per user and whether each one was within the diet.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
