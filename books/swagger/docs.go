// Package swagger registers the books API document served under /swagger.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/books": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Books"],
                "summary": "List every book keyed by id",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"$ref": "#/definitions/model.Book"}}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Books"],
                "summary": "Add a book",
                "parameters": [
                    {"in": "body", "name": "book", "required": true, "schema": {"$ref": "#/definitions/model.BookCreate"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/books/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Books"],
                "summary": "Get a book",
                "parameters": [
                    {"type": "string", "in": "path", "name": "id", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Book"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Books"],
                "summary": "Update the supplied fields of a book",
                "parameters": [
                    {"type": "string", "format": "uuid", "in": "path", "name": "id", "required": true},
                    {"in": "body", "name": "book", "required": true, "schema": {"$ref": "#/definitions/model.BookUpdate"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["Books"],
                "summary": "Delete a book",
                "parameters": [
                    {"type": "string", "format": "uuid", "in": "path", "name": "id", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "model.Book": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "author": {"type": "string"},
                "year": {"type": "integer"},
                "pages": {"type": "integer"},
                "language": {"type": "string"}
            }
        },
        "model.BookCreate": {
            "type": "object",
            "required": ["title", "author", "year", "pages", "language"],
            "properties": {
                "title": {"type": "string"},
                "author": {"type": "string"},
                "year": {"type": "integer"},
                "pages": {"type": "integer"},
                "language": {"type": "string"}
            }
        },
        "model.BookUpdate": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "author": {"type": "string"},
                "year": {"type": "integer"},
                "pages": {"type": "integer"},
                "language": {"type": "string"}
            }
        },
        "model.Response": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "has_error": {"type": "boolean"},
                "error_message": {"type": "string"},
                "data": {"$ref": "#/definitions/model.Book"}
            }
        },
        "model.ErrorResponse": {
            "type": "object",
            "properties": {
                "detail": {"type": "string"},
                "has_error": {"type": "boolean"},
                "error_message": {"type": "string"}
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Books API",
	Description:      "In-memory CRUD service for book records.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
