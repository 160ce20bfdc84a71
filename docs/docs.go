// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/events-api/main.go
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
        "/events": {
            "get": {"tags": ["events"], "summary": "List events", "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "title", "in": "query"},
                    {"type": "string", "name": "location", "in": "query"},
                    {"type": "string", "name": "category", "in": "query"},
                    {"type": "number", "name": "minPrice", "in": "query"},
                    {"type": "number", "name": "maxPrice", "in": "query"},
                    {"type": "string", "name": "minDate", "in": "query"},
                    {"type": "string", "name": "maxDate", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.eventListResponse"}}}}
        },
        "/events/create": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["events"], "summary": "Create an event",
                "consumes": ["application/json", "multipart/form-data"], "produces": ["application/json"],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.eventRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.createEventResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}}}}
        },
        "/events/search/date/{date}": {
            "get": {"tags": ["events"], "summary": "Search events on a calendar day", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "date", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.eventResponse"}}}}}
        },
        "/events/search/title/{title}": {
            "get": {"tags": ["events"], "summary": "Search events by title", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "title", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.eventResponse"}}}}}
        },
        "/events/{id}": {
            "get": {"tags": ["events"], "summary": "Get an event", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.eventResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["events"], "summary": "Update an event",
                "consumes": ["application/json", "multipart/form-data"], "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.eventRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.updateEventResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["events"], "summary": "Delete an event", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}}}}
        },
        "/attendees/event/{eventId}": {
            "delete": {"security": [{"BearerAuth": []}], "tags": ["attendees"], "summary": "Cancel own registration", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "eventId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.cancelAttendanceResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}}}
        },
        "/attendees/user/{userId}": {
            "get": {"tags": ["attendees"], "summary": "List attendances of a user", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "userId", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.attendancesResponse"}}}}
        },
        "/attendees/{eventId}": {
            "get": {"tags": ["attendees"], "summary": "List attendees of an event", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "eventId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.eventAttendeeResponse"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["attendees"], "summary": "Register for an event",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "eventId", "in": "path", "required": true},
                    {"name": "body", "in": "body", "schema": {"$ref": "#/definitions/handler.registerAttendeeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.registerAttendeeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}}}
        },
        "/attendees/{eventId}/reconcile": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["attendees"], "summary": "Repair attendance links of an event", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "eventId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.reconcileResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}}}}
        },
        "/users": {
            "get": {"tags": ["users"], "summary": "List users", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.profileResponse"}}}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Update own email",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.updateEmailRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.userResponse"}}}}
        },
        "/users/favorites": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "List own favorite events", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.favoritesResponse"}}}}
        },
        "/users/favorites/{eventId}": {
            "patch": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Add or remove a favorite event", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "eventId", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.toggleFavoriteResponse"}}}}
        },
        "/users/login": {
            "post": {"tags": ["users"], "summary": "Login", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.loginResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/handler.errorResponse"}}}}
        },
        "/users/register": {
            "post": {"tags": ["users"], "summary": "Register a new user", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.registerRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.registerResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}}}}
        },
        "/users/{id}": {
            "get": {"tags": ["users"], "summary": "Get a user", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.profileResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}}}
        },
        "/upload": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["uploads"], "summary": "Upload an image",
                "consumes": ["multipart/form-data"], "produces": ["application/json"],
                "parameters": [{"type": "file", "name": "img", "in": "formData", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.uploadResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}}}}
        },
        "/health": {
            "get": {"tags": ["health"], "summary": "Liveness probe", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}}
        },
        "/health/ready": {
            "get": {"tags": ["health"], "summary": "Readiness probe", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        }
    },
    "definitions": {
        "handler.errorResponse": {"type": "object", "properties": {"message": {"type": "string"}}},
        "handler.messageResponse": {"type": "object", "properties": {"message": {"type": "string"}}},
        "handler.userRefResponse": {"type": "object", "properties": {"_id": {"type": "string"}, "userName": {"type": "string"}}},
        "handler.eventRequest": {"type": "object", "properties": {
            "title": {"type": "string"}, "category": {"type": "string"}, "date": {"type": "string"},
            "location": {"type": "string"}, "description": {"type": "string"}, "price": {"type": "number"}, "img": {"type": "string"}}},
        "handler.eventResponse": {"type": "object", "properties": {
            "_id": {"type": "string"}, "title": {"type": "string"}, "category": {"type": "string"}, "date": {"type": "string"},
            "location": {"type": "string"}, "description": {"type": "string"}, "price": {"type": "number"},
            "creator": {"$ref": "#/definitions/handler.userRefResponse"},
            "attendees": {"type": "array", "items": {"$ref": "#/definitions/handler.userRefResponse"}},
            "img": {"type": "string"}, "createdAt": {"type": "string"}, "updatedAt": {"type": "string"}}},
        "handler.eventListResponse": {"type": "object", "properties": {
            "events": {"type": "array", "items": {"$ref": "#/definitions/handler.eventResponse"}},
            "total": {"type": "integer"}, "page": {"type": "integer"}, "limit": {"type": "integer"}, "totalPages": {"type": "integer"}}},
        "handler.createEventResponse": {"type": "object", "properties": {
            "message": {"type": "string"}, "event": {"$ref": "#/definitions/handler.eventResponse"}}},
        "handler.updateEventResponse": {"type": "object", "properties": {
            "message": {"type": "string"}, "updatedEvent": {"type": "object"}}},
        "handler.registerAttendeeRequest": {"type": "object", "properties": {"userId": {"type": "string"}}},
        "handler.attendeeResponse": {"type": "object", "properties": {
            "_id": {"type": "string"}, "userId": {"type": "string"}, "eventId": {"type": "string"},
            "createdAt": {"type": "string"}, "updatedAt": {"type": "string"}}},
        "handler.eventAttendeeResponse": {"type": "object", "properties": {
            "_id": {"type": "string"}, "userId": {"$ref": "#/definitions/handler.userRefResponse"}, "eventId": {"type": "string"},
            "createdAt": {"type": "string"}, "updatedAt": {"type": "string"}}},
        "handler.attendancesResponse": {"type": "object", "properties": {
            "attendances": {"type": "array", "items": {"$ref": "#/definitions/handler.attendeeResponse"}}}},
        "handler.registerAttendeeResponse": {"type": "object", "properties": {
            "message": {"type": "string"}, "attendee": {"$ref": "#/definitions/handler.attendeeResponse"}}},
        "handler.cancelAttendanceResponse": {"type": "object", "properties": {
            "message": {"type": "string"}, "attendees": {"type": "array", "items": {"type": "string"}}}},
        "handler.reconcileResponse": {"type": "object", "properties": {
            "message": {"type": "string"}, "eventId": {"type": "string"}, "attendees": {"type": "integer"},
            "eventLinksAdded": {"type": "integer"}, "eventLinksRemoved": {"type": "integer"},
            "userLinksAdded": {"type": "integer"}, "userLinksRemoved": {"type": "integer"}}},
        "handler.registerRequest": {"type": "object", "required": ["email", "password", "userName"], "properties": {
            "userName": {"type": "string"}, "email": {"type": "string"}, "password": {"type": "string"}}},
        "handler.loginRequest": {"type": "object", "required": ["email", "password"], "properties": {
            "email": {"type": "string"}, "password": {"type": "string"}}},
        "handler.updateEmailRequest": {"type": "object", "required": ["email"], "properties": {"email": {"type": "string"}}},
        "handler.userResponse": {"type": "object", "properties": {
            "_id": {"type": "string"}, "userName": {"type": "string"}, "email": {"type": "string"},
            "roles": {"type": "array", "items": {"type": "string"}},
            "attendees": {"type": "array", "items": {"type": "string"}},
            "events": {"type": "array", "items": {"type": "string"}},
            "favorites": {"type": "array", "items": {"type": "string"}},
            "createdAt": {"type": "string"}, "updatedAt": {"type": "string"}}},
        "handler.registerResponse": {"type": "object", "properties": {
            "message": {"type": "string"}, "user": {"$ref": "#/definitions/handler.userResponse"}, "token": {"type": "string"}}},
        "handler.loginResponse": {"type": "object", "properties": {
            "token": {"type": "string"}, "user": {"type": "object"}}},
        "handler.favoriteEventResponse": {"type": "object", "properties": {
            "_id": {"type": "string"}, "title": {"type": "string"}, "date": {"type": "string"},
            "img": {"type": "string"}, "location": {"type": "string"}}},
        "handler.favoritesResponse": {"type": "object", "properties": {
            "favorites": {"type": "array", "items": {"$ref": "#/definitions/handler.favoriteEventResponse"}}}},
        "handler.toggleFavoriteResponse": {"type": "object", "properties": {
            "message": {"type": "string"}, "favorites": {"type": "array", "items": {"type": "string"}}}},
        "handler.profileResponse": {"type": "object", "properties": {
            "_id": {"type": "string"}, "userName": {"type": "string"}, "email": {"type": "string"},
            "roles": {"type": "array", "items": {"type": "string"}},
            "favorites": {"type": "array", "items": {"$ref": "#/definitions/handler.favoriteEventResponse"}},
            "attendances": {"type": "array", "items": {"type": "object"}},
            "createdAt": {"type": "string"}, "updatedAt": {"type": "string"}}},
        "handler.uploadResponse": {"type": "object", "properties": {
            "message": {"type": "string"}, "url": {"type": "string"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Events API",
	Description:      "Events platform backend: catalogue, favorites and attendance registry.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
