// Package docs registers the OpenAPI description served at /swagger/*.
// Regenerate with: swag init -g cmd/server/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {"description": "Login credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "403": {"description": "Forbidden", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "429": {"description": "Too Many Requests", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"description": "User registration details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.registerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Refresh the session",
                "parameters": [
                    {"description": "Refresh token when cookies are unavailable", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/handler.refreshRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Logout",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.logoutResponse"}}
                }
            }
        },
        "/auth/status": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Session status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.statusResponse"}}
                }
            }
        },
        "/system-prompts": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["system-prompts"],
                "summary": "List system prompts",
                "parameters": [
                    {"type": "string", "description": "core, industry or client", "name": "type", "in": "query"},
                    {"type": "string", "description": "Industry filter", "name": "industryId", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["system-prompts"],
                "summary": "Create a system prompt",
                "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}
            }
        },
        "/system-prompts/active": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["system-prompts"],
                "summary": "List active system prompts",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/system-prompts/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["system-prompts"],
                "summary": "Get a system prompt",
                "parameters": [{"type": "string", "description": "Prompt ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["system-prompts"],
                "summary": "Update a system prompt",
                "parameters": [{"type": "string", "description": "Prompt ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["system-prompts"],
                "summary": "Delete a system prompt",
                "parameters": [{"type": "string", "description": "Prompt ID", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/system-prompts/{id}/activate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["system-prompts"],
                "summary": "Activate a system prompt",
                "parameters": [{"type": "string", "description": "Prompt ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/admin/industries": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "List industries", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Create an industry", "responses": {"201": {"description": "Created"}}}
        },
        "/clients": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["clients"], "summary": "List clients", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["clients"], "summary": "Create a client", "responses": {"201": {"description": "Created"}}}
        },
        "/quotes": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["quotes"],
                "summary": "List quotes",
                "parameters": [{"type": "string", "description": "Status filter", "name": "status", "in": "query"}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {"security": [{"BearerAuth": []}], "tags": ["quotes"], "summary": "Create a quote", "responses": {"201": {"description": "Created"}}}
        },
        "/quotes/{id}/status": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["quotes"],
                "summary": "Update quote status",
                "parameters": [{"type": "string", "description": "Quote ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/ai/generate": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["ai"], "summary": "Generate text", "responses": {"200": {"description": "OK"}, "502": {"description": "Bad Gateway"}}}
        },
        "/ai/compose": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["ai"], "summary": "Preview prompt composition", "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "handler.loginRequest": {
            "type": "object",
            "required": ["password"],
            "properties": {
                "identifier": {"type": "string"},
                "email": {"type": "string"},
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "handler.registerRequest": {
            "type": "object",
            "required": ["email", "password", "username"],
            "properties": {
                "username": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "name": {"type": "string"},
                "companyName": {"type": "string"},
                "industryId": {"type": "string"}
            }
        },
        "handler.refreshRequest": {
            "type": "object",
            "properties": {"refreshToken": {"type": "string"}}
        },
        "handler.authResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "accessToken": {"type": "string"},
                "refreshToken": {"type": "string"},
                "expiresIn": {"type": "integer"},
                "user": {"type": "object"}
            }
        },
        "handler.logoutResponse": {
            "type": "object",
            "properties": {"success": {"type": "boolean"}}
        },
        "handler.statusResponse": {
            "type": "object",
            "properties": {
                "authenticated": {"type": "boolean"},
                "user": {"type": "object"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Quoting System API",
	Description:      "Multi-tenant quoting API: sessions, layered system prompts, clients, quotes and AI generation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
