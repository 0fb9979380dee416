// Code generated by swag; safe to regenerate with `swag init`.
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
        "/dossiers": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dossiers"],
                "summary": "List dossiers, optionally filtered by status",
                "parameters": [
                    {"type": "string", "name": "statut", "in": "query"},
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["dossiers"],
                "summary": "Submit a new dossier",
                "parameters": [
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true}
                ],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/dossiers/{dossier_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dossiers"],
                "summary": "Get one dossier",
                "parameters": [
                    {"type": "string", "name": "dossier_id", "in": "path", "required": true},
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/dossiers/{dossier_id}/historique": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dossiers"],
                "summary": "List the status transition history of a dossier",
                "parameters": [
                    {"type": "string", "name": "dossier_id", "in": "path", "required": true},
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/dossiers/{dossier_id}/statut": {
            "put": {
                "produces": ["application/json"],
                "tags": ["dossiers"],
                "summary": "Change the dossier status",
                "parameters": [
                    {"type": "string", "name": "dossier_id", "in": "path", "required": true},
                    {"type": "string", "name": "statut", "in": "query"},
                    {"type": "string", "name": "commentaire", "in": "query"},
                    {"type": "boolean", "name": "auto", "in": "query"},
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/phases/{kind}": {
            "post": {
                "produces": ["application/json"],
                "tags": ["phases"],
                "summary": "Open a discussion or vote phase",
                "parameters": [
                    {"type": "string", "name": "kind", "in": "path", "required": true},
                    {"type": "string", "name": "dossierId", "in": "query", "required": true},
                    {"type": "string", "name": "description", "in": "query"},
                    {"type": "string", "name": "bareme", "in": "query"},
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/phases/{phase_id}/prolonger": {
            "put": {
                "produces": ["application/json"],
                "tags": ["phases"],
                "summary": "Extend the target close of an active phase",
                "parameters": [
                    {"type": "string", "name": "phase_id", "in": "path", "required": true},
                    {"type": "integer", "name": "joursSupplementaires", "in": "query", "required": true},
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "412": {"description": "Precondition Failed"}
                }
            }
        },
        "/phases/{phase_id}/terminer": {
            "put": {
                "produces": ["application/json"],
                "tags": ["phases"],
                "summary": "Close an active phase",
                "parameters": [
                    {"type": "string", "name": "phase_id", "in": "path", "required": true},
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "412": {"description": "Precondition Failed"}
                }
            }
        },
        "/phases/dossier/{dossier_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["phases"],
                "summary": "List the phases of a dossier",
                "parameters": [
                    {"type": "string", "name": "dossier_id", "in": "path", "required": true},
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/votes": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["votes"],
                "summary": "Cast or replace a vote in an active vote phase",
                "parameters": [
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "412": {"description": "Precondition Failed"}
                }
            }
        },
        "/votes/phase/{phase_id}/statistiques": {
            "get": {
                "produces": ["application/json"],
                "tags": ["votes"],
                "summary": "Aggregate the votes of a phase",
                "parameters": [
                    {"type": "string", "name": "phase_id", "in": "path", "required": true},
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/commentaires": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["commentaires"],
                "summary": "Append a comment to a dossier or phase thread",
                "parameters": [
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true}
                ],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/commentaires/dossier/{dossier_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["commentaires"],
                "summary": "List the dossier-scoped comment thread",
                "parameters": [
                    {"type": "string", "name": "dossier_id", "in": "path", "required": true},
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/commentaires/phase/{phase_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["commentaires"],
                "summary": "List the comment thread of a phase",
                "parameters": [
                    {"type": "string", "name": "phase_id", "in": "path", "required": true},
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/authz/v1/check": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["authz"],
                "summary": "Evaluate one permission for the request identity",
                "parameters": [
                    {"type": "string", "name": "X-User-Id", "in": "header", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Quorum Workflow API",
	Description:      "Dossier instruction, phase deliberation, committee voting, and comment threads.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
