// Package docs registers the catalog OpenAPI document with swag.
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
        "/products": {
            "get": {
                "description": "Returns one page of the public catalog. Responses are served from the read-through cache when possible.",
                "produces": ["application/json"],
                "tags": ["Products"],
                "summary": "List catalog products",
                "parameters": [
                    {"type": "integer", "description": "Page number (default 1)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size (default 24, max 100)", "name": "limit", "in": "query"},
                    {"type": "string", "description": "Category, or 'all'", "name": "category", "in": "query"},
                    {"type": "string", "description": "Free-text search over title, description and tags", "name": "q", "in": "query"},
                    {"type": "integer", "description": "Minimum price in cents", "name": "minPrice", "in": "query"},
                    {"type": "string", "description": "Maximum price in cents, or 'inf'", "name": "maxPrice", "in": "query"},
                    {"type": "string", "description": "createdAt, priceCents, title or sellerRating", "name": "sortBy", "in": "query"},
                    {"type": "string", "description": "asc or desc", "name": "sortOrder", "in": "query"},
                    {"type": "string", "description": "Seller ID, or 'all'", "name": "sellerId", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "A page of products", "schema": {"$ref": "#/definitions/models.ProductPage"}},
                    "304": {"description": "Not modified"},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Creates a product owned by the authenticated seller. At least five image URLs are required.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Products"],
                "summary": "Create a product",
                "parameters": [
                    {"description": "Product details", "name": "product", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CreateProductRequest"}}
                ],
                "responses": {
                    "201": {"description": "Product created", "schema": {"$ref": "#/definitions/models.Product"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "401": {"description": "Authentication required", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "403": {"description": "Sellers only", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "409": {"description": "Slug already taken", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/products/{slug}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Products"],
                "summary": "Get a product by slug",
                "parameters": [
                    {"type": "string", "description": "Product slug", "name": "slug", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "The product", "schema": {"$ref": "#/definitions/models.Product"}},
                    "304": {"description": "Not modified"},
                    "404": {"description": "Product not found", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/products/{id}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Partially updates a product owned by the authenticated seller. A provided image list replaces the existing one.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Products"],
                "summary": "Update a product",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Product ID (UUID)", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to update", "name": "product", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.UpdateProductRequest"}}
                ],
                "responses": {
                    "200": {"description": "Product updated", "schema": {"$ref": "#/definitions/models.Product"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "401": {"description": "Authentication required", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "403": {"description": "Not the owner", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Product not found", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "409": {"description": "Slug already taken", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Products"],
                "summary": "Delete a product",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Product ID (UUID)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "Product deleted"},
                    "401": {"description": "Authentication required", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "403": {"description": "Not the owner", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Product not found", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.Seller": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "sellerRating": {"type": "number"}
            }
        },
        "models.ProductImage": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "models.Product": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "sellerId": {"type": "string"},
                "title": {"type": "string"},
                "slug": {"type": "string"},
                "description": {"type": "string"},
                "priceCents": {"type": "integer"},
                "price": {"type": "number"},
                "discount": {"type": "integer"},
                "category": {"type": "string"},
                "stock": {"type": "integer"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "images": {"type": "array", "items": {"$ref": "#/definitions/models.ProductImage"}},
                "seller": {"$ref": "#/definitions/models.Seller"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "models.Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "total": {"type": "integer"},
                "pages": {"type": "integer"}
            }
        },
        "models.ProductPage": {
            "type": "object",
            "properties": {
                "products": {"type": "array", "items": {"$ref": "#/definitions/models.Product"}},
                "pagination": {"$ref": "#/definitions/models.Pagination"}
            }
        },
        "models.CreateProductRequest": {
            "type": "object",
            "required": ["title", "priceCents", "category", "images"],
            "properties": {
                "title": {"type": "string", "minLength": 3, "maxLength": 200},
                "description": {"type": "string", "maxLength": 5000},
                "priceCents": {"type": "integer"},
                "discount": {"type": "integer", "minimum": 0, "maximum": 100},
                "category": {"type": "string", "minLength": 2, "maxLength": 100},
                "stock": {"type": "integer", "minimum": 0},
                "tags": {"type": "array", "items": {"type": "string"}},
                "images": {"type": "array", "minItems": 5, "items": {"type": "string"}}
            }
        },
        "models.UpdateProductRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string", "minLength": 3, "maxLength": 200},
                "slug": {"type": "string", "minLength": 3, "maxLength": 200},
                "description": {"type": "string", "maxLength": 5000},
                "priceCents": {"type": "integer"},
                "discount": {"type": "integer", "minimum": 0, "maximum": 100},
                "category": {"type": "string", "minLength": 2, "maxLength": 100},
                "stock": {"type": "integer", "minimum": 0},
                "tags": {"type": "array", "items": {"type": "string"}},
                "images": {"type": "array", "minItems": 1, "items": {"type": "string"}}
            }
        },
        "response.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "details": {"type": "array", "items": {"type": "string"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the JWT.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Marketplace Catalog API",
	Description:      "Public product catalog with a read-through cache, and seller-only catalog writes.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
