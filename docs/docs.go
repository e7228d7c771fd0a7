// Package docs registers the OpenAPI description served at /swagger/*.
// The document is maintained by hand alongside the routes in cmd/main.go.
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
        "/orders": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "List the authenticated user's orders",
                "parameters": [
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Place an order and allocate its proforma invoice number",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation failure"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/orders/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Fetch an order with its line items",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/payments/intent": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Open a gateway order for an order's invoice amount",
                "responses": {
                    "201": {"description": "Created"},
                    "404": {"description": "Order not found"},
                    "502": {"description": "Payment gateway unavailable"}
                }
            }
        },
        "/payments/callback": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Gateway payment callback (signed, unauthenticated)",
                "responses": {
                    "200": {"description": "Reconciled"},
                    "202": {"description": "Captured, pending manual reconciliation"},
                    "400": {"description": "Signature verification failed"}
                }
            }
        },
        "/payments/{order_id}/abandon": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Close a pending payment attempt",
                "parameters": [
                    {"type": "string", "name": "order_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Abandoned"},
                    "404": {"description": "Order not found"}
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
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Shopmart API",
	Description:      "Order placement, invoice numbering, and payment reconciliation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
