// Package docs contiene el documento OpenAPI que sirve /swagger/*.
// Se regenera con `swag init -g cmd/api/main.go` a partir de los comentarios godoc de los handlers.
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
        "/api/reports": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Listar reportes",
                "parameters": [
                    {"type": "string", "description": "Lost o Found", "name": "report_type", "in": "query"},
                    {"type": "string", "description": "active, found o closed", "name": "status", "in": "query"},
                    {"type": "string", "description": "Categoría", "name": "pet_type", "in": "query"},
                    {"type": "string", "description": "Búsqueda libre", "name": "q", "in": "query"},
                    {"type": "integer", "description": "Máximo de resultados", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/reports.Response"}}},
                    "400": {"description": "filtro inválido", "schema": {"type": "string"}}
                }
            },
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Crear reporte de mascota perdida o encontrada",
                "parameters": [
                    {"type": "string", "description": "ID del usuario que reporta (default anonymous)", "name": "X-User-ID", "in": "header"},
                    {"type": "file", "description": "Imágenes (una o más)", "name": "files", "in": "formData", "required": true},
                    {"type": "string", "description": "Lost o Found", "name": "report_type", "in": "formData", "required": true},
                    {"type": "string", "description": "Categoría (Dog, Cat, ...)", "name": "pet_type", "in": "formData", "required": true},
                    {"type": "string", "description": "Nombre de la mascota", "name": "pet_name", "in": "formData"},
                    {"type": "string", "description": "Nombre de contacto", "name": "user_name", "in": "formData", "required": true},
                    {"type": "string", "description": "Email de contacto", "name": "user_email", "in": "formData", "required": true},
                    {"type": "string", "description": "Teléfono de contacto", "name": "user_phone", "in": "formData"},
                    {"type": "string", "description": "Ubicación", "name": "user_location", "in": "formData"},
                    {"type": "string", "description": "Descripción libre", "name": "description", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/reports.Response"}},
                    "400": {"description": "validación", "schema": {"type": "string"}},
                    "502": {"description": "falla de extracción o de storage", "schema": {"type": "string"}},
                    "504": {"description": "timeout de extracción", "schema": {"type": "string"}}
                }
            }
        },
        "/api/reports/{reportID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Obtener reporte",
                "parameters": [
                    {"type": "string", "description": "Report ID", "name": "reportID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/reports.Response"}},
                    "400": {"description": "id inválido", "schema": {"type": "string"}},
                    "404": {"description": "no encontrado", "schema": {"type": "string"}}
                }
            }
        },
        "/api/matches": {
            "get": {
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Listar matches",
                "parameters": [
                    {"type": "string", "description": "Filtra por reporte (lado lost o found)", "name": "report_id", "in": "query"},
                    {"type": "string", "description": "pending, accepted o rejected", "name": "status", "in": "query"},
                    {"type": "integer", "description": "Máximo de resultados", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/matching.matchResponse"}}},
                    "400": {"description": "filtro inválido", "schema": {"type": "string"}}
                }
            }
        },
        "/api/matches/{matchID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Obtener match",
                "parameters": [
                    {"type": "string", "description": "Match ID", "name": "matchID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/matching.matchResponse"}},
                    "404": {"description": "no encontrado", "schema": {"type": "string"}}
                }
            }
        },
        "/api/matches/{matchID}/decision": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Aceptar o rechazar un match",
                "parameters": [
                    {"type": "string", "description": "Match ID", "name": "matchID", "in": "path", "required": true},
                    {"type": "string", "description": "accept o reject", "name": "decision", "in": "query"},
                    {"description": "Alternativa al query param", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/matching.decisionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/matching.matchResponse"}},
                    "400": {"description": "decisión inválida", "schema": {"type": "string"}},
                    "404": {"description": "no encontrado", "schema": {"type": "string"}},
                    "409": {"description": "el match ya fue decidido", "schema": {"type": "string"}}
                }
            }
        }
    },
    "definitions": {
        "reports.attributesResponse": {
            "type": "object",
            "properties": {
                "species": {"type": "string"},
                "breed": {"type": "string"},
                "primary_color": {"type": "string"},
                "age_group": {"type": "string"},
                "size": {"type": "string"},
                "marks": {"type": "array", "items": {"type": "string"}}
            }
        },
        "reports.Response": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_id": {"type": "string"},
                "report_type": {"type": "string", "enum": ["Lost", "Found"]},
                "pet_name": {"type": "string"},
                "pet_type": {"type": "string"},
                "user_name": {"type": "string"},
                "user_email": {"type": "string"},
                "user_phone": {"type": "string"},
                "user_location": {"type": "string"},
                "image_url": {"type": "string"},
                "image_urls": {"type": "array", "items": {"type": "string"}},
                "attributes": {"$ref": "#/definitions/reports.attributesResponse"},
                "description": {"type": "string"},
                "status": {"type": "string", "enum": ["active", "found", "closed"]},
                "is_matched": {"type": "boolean"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "matching.decisionRequest": {
            "type": "object",
            "properties": {
                "decision": {"type": "string", "enum": ["accept", "reject"]}
            }
        },
        "matching.matchResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "lost_report_id": {"type": "string"},
                "found_report_id": {"type": "string"},
                "score": {"type": "integer"},
                "max_score": {"type": "integer"},
                "matched_fields": {"type": "array", "items": {"type": "string"}},
                "status": {"type": "string", "enum": ["pending", "accepted", "rejected"]},
                "decided_by": {"type": "string"},
                "decided_at": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"},
                "lost_report": {"$ref": "#/definitions/reports.Response"},
                "found_report": {"$ref": "#/definitions/reports.Response"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Pet Lost & Found API",
	Description:      "Reportes de mascotas perdidas y encontradas con matching automático por atributos.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
