// Package docs holds the OpenAPI document served at /swagger.
// Regenerate with: swag init -g cmd/server/main.go -o docs
package docs

import "github.com/swaggo/swag/v2"

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
        "/inventory/adjustments": {
            "post": {
                "description": "Applies every item atomically as one stock_adjustment ledger entry. An empty batch commits nothing and returns a null transaction_id.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "inventory"
                ],
                "summary": "Apply a stock adjustment batch",
                "operationId": "applyInventoryAdjustments",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Tenant ID",
                        "name": "X-Tenant-ID",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Replay protection key",
                        "name": "Idempotency-Key",
                        "in": "header"
                    },
                    {
                        "description": "Adjustment batch",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.AdjustmentBatchRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/inventory.AdjustmentResult"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "201": {
                        "description": "Created",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/inventory.AdjustmentResult"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/inventory/stock/{variation_id}/{location_id}": {
            "get": {
                "description": "Returns the available base-unit quantity of a variation at a location. Pairs never adjusted report zero.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "inventory"
                ],
                "summary": "Get on-hand quantity",
                "operationId": "getInventoryStock",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Tenant ID",
                        "name": "X-Tenant-ID",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Variation ID",
                        "name": "variation_id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Location ID",
                        "name": "location_id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/inventory.StockQuantityResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/reports/profit-margin": {
            "get": {
                "description": "Aggregates final sells dated within [from, to] into sales, cost and margin per product, sorted by total sales. Margin percent is rounded to two places.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reports"
                ],
                "summary": "Profit margin by product",
                "operationId": "getReportProfitMargin",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Tenant ID",
                        "name": "X-Tenant-ID",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "First day (YYYY-MM-DD)",
                        "name": "from",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Last day (YYYY-MM-DD)",
                        "name": "to",
                        "in": "query",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/report.ProfitMarginReport"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/reports/stock-valuation": {
            "get": {
                "description": "Values every stock record, zero quantities included, at the configured cost basis, optionally for one location.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reports"
                ],
                "summary": "Stock valuation",
                "operationId": "getReportStockValuation",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Tenant ID",
                        "name": "X-Tenant-ID",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Location ID",
                        "name": "location_id",
                        "in": "query",
                        "format": "uuid"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/report.StockValuationReport"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/reports/top-sellers": {
            "get": {
                "description": "Ranks products by total sales within [from, to], highest first. The limit is capped by configuration.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reports"
                ],
                "summary": "Top selling products",
                "operationId": "getReportTopSellers",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Tenant ID",
                        "name": "X-Tenant-ID",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "First day (YYYY-MM-DD)",
                        "name": "from",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Last day (YYYY-MM-DD)",
                        "name": "to",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "description": "Number of products",
                        "name": "limit",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/report.TopSellersReport"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/reports/ledger-export": {
            "get": {
                "description": "Flattens final ledger lines within [from, to] into date, type, amount, description, reference rows. CSV by default.",
                "produces": [
                    "text/csv",
                    "application/json"
                ],
                "tags": [
                    "reports"
                ],
                "summary": "Flat ledger export",
                "operationId": "exportReportLedger",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Tenant ID",
                        "name": "X-Tenant-ID",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "First day (YYYY-MM-DD)",
                        "name": "from",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Last day (YYYY-MM-DD)",
                        "name": "to",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Comma separated: sell, purchase, stock_adjustment",
                        "name": "types",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "csv or json",
                        "name": "format",
                        "in": "query",
                        "enum": [
                            "csv",
                            "json"
                        ]
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/report.ExportRow"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/reports/ledger-export/archive": {
            "post": {
                "description": "Builds the CSV export, uploads it to object storage and returns a time-limited download link.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reports"
                ],
                "summary": "Archive a ledger export",
                "operationId": "archiveReportLedgerExport",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Tenant ID",
                        "name": "X-Tenant-ID",
                        "in": "header",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "First day (YYYY-MM-DD)",
                        "name": "from",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Last day (YYYY-MM-DD)",
                        "name": "to",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Comma separated: sell, purchase, stock_adjustment",
                        "name": "types",
                        "in": "query"
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/dto.ArchivedExportResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/system/info": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "system"
                ],
                "summary": "Get system information",
                "operationId": "getSystemInfo",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.APIResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/HandlerInfoResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "HandlerInfoResponse": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string",
                    "example": "inventory-engine"
                },
                "version": {
                    "type": "string",
                    "example": "1.0.0"
                },
                "go_version": {
                    "type": "string",
                    "example": "go1.25.5"
                },
                "uptime": {
                    "type": "string",
                    "example": "1h30m45s"
                }
            }
        },
        "dto.ErrorInfo": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string",
                    "example": "ERR_INSUFFICIENT_STOCK"
                },
                "message": {
                    "type": "string"
                },
                "request_id": {
                    "type": "string"
                },
                "timestamp": {
                    "type": "string"
                },
                "details": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.ValidationDetail"
                    }
                }
            }
        },
        "dto.ValidationDetail": {
            "type": "object",
            "properties": {
                "index": {
                    "type": "integer"
                },
                "field": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                }
            }
        },
        "dto.Meta": {
            "type": "object",
            "properties": {
                "rows": {
                    "type": "integer"
                },
                "generated_at": {
                    "type": "string"
                }
            }
        },
        "dto.AdjustmentItemRequest": {
            "type": "object",
            "properties": {
                "variation_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "location_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "unit_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "quantity": {
                    "type": "string",
                    "example": "2.5"
                },
                "direction": {
                    "type": "string",
                    "example": "increase",
                    "enum": [
                        "increase",
                        "decrease"
                    ]
                },
                "reason": {
                    "type": "string",
                    "example": "cycle count"
                }
            }
        },
        "dto.AdjustmentBatchRequest": {
            "type": "object",
            "properties": {
                "date": {
                    "type": "string"
                },
                "reference": {
                    "type": "string",
                    "maxLength": 100
                },
                "note": {
                    "type": "string",
                    "maxLength": 1000
                },
                "items": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.AdjustmentItemRequest"
                    },
                    "maxItems": 500
                }
            }
        },
        "dto.ArchivedExportResponse": {
            "type": "object",
            "properties": {
                "object_key": {
                    "type": "string"
                },
                "download_url": {
                    "type": "string"
                },
                "expires_at": {
                    "type": "string"
                },
                "generated_at": {
                    "type": "string"
                },
                "rows": {
                    "type": "integer"
                }
            }
        },
        "handler.APIResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "data": {},
                "error": {
                    "$ref": "#/definitions/dto.ErrorInfo"
                },
                "meta": {
                    "$ref": "#/definitions/dto.Meta"
                }
            }
        },
        "handler.ErrorResponse": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean",
                    "example": false
                },
                "error": {
                    "$ref": "#/definitions/dto.ErrorInfo"
                }
            }
        },
        "inventory.AppliedAdjustment": {
            "type": "object",
            "properties": {
                "index": {
                    "type": "integer"
                },
                "line_id": {
                    "type": "string"
                },
                "variation_id": {
                    "type": "string"
                },
                "location_id": {
                    "type": "string"
                },
                "direction": {
                    "type": "string"
                },
                "quantity": {
                    "type": "string"
                },
                "base_quantity": {
                    "type": "string"
                },
                "applied_delta": {
                    "type": "string"
                },
                "overdraft": {
                    "type": "string"
                }
            }
        },
        "inventory.AdjustmentResult": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "transaction_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "items": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/inventory.AppliedAdjustment"
                    }
                }
            }
        },
        "inventory.StockQuantityResponse": {
            "type": "object",
            "properties": {
                "variation_id": {
                    "type": "string"
                },
                "location_id": {
                    "type": "string"
                },
                "qty_available": {
                    "type": "string"
                },
                "version": {
                    "type": "integer"
                },
                "updated_at": {
                    "type": "string"
                }
            }
        },
        "report.DateRange": {
            "type": "object",
            "properties": {
                "date_from": {
                    "type": "string"
                },
                "date_to": {
                    "type": "string"
                }
            }
        },
        "report.ProfitMarginItem": {
            "type": "object",
            "properties": {
                "product": {
                    "type": "object"
                },
                "total_sales": {
                    "type": "string"
                },
                "total_cost": {
                    "type": "string"
                },
                "profit": {
                    "type": "string"
                },
                "margin_percent": {
                    "type": "string"
                },
                "total_quantity_sold": {
                    "type": "string"
                }
            }
        },
        "report.ProfitMarginReport": {
            "type": "object",
            "properties": {
                "generated_at": {
                    "type": "string"
                },
                "period": {
                    "$ref": "#/definitions/report.DateRange"
                },
                "summary": {
                    "type": "object",
                    "properties": {
                        "total_sales": {
                            "type": "string"
                        },
                        "total_cost": {
                            "type": "string"
                        },
                        "total_profit": {
                            "type": "string"
                        },
                        "margin_percent": {
                            "type": "string"
                        },
                        "total_items_sold": {
                            "type": "string"
                        }
                    }
                },
                "items": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/report.ProfitMarginItem"
                    }
                }
            }
        },
        "report.StockValuationItem": {
            "type": "object",
            "properties": {
                "product": {
                    "type": "object"
                },
                "variation": {
                    "type": "object"
                },
                "location": {
                    "type": "object"
                },
                "qty_available": {
                    "type": "string"
                },
                "unit_cost": {
                    "type": "string"
                },
                "total_value": {
                    "type": "string"
                }
            }
        },
        "report.StockValuationReport": {
            "type": "object",
            "properties": {
                "generated_at": {
                    "type": "string"
                },
                "location_id": {
                    "type": "string"
                },
                "summary": {
                    "type": "object",
                    "properties": {
                        "total_items": {
                            "type": "integer"
                        },
                        "total_quantity": {
                            "type": "string"
                        },
                        "total_value": {
                            "type": "string"
                        },
                        "locations_count": {
                            "type": "integer"
                        }
                    }
                },
                "items": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/report.StockValuationItem"
                    }
                }
            }
        },
        "report.TopSeller": {
            "type": "object",
            "properties": {
                "rank": {
                    "type": "integer"
                },
                "product": {
                    "type": "object"
                },
                "total_quantity_sold": {
                    "type": "string"
                },
                "total_sales": {
                    "type": "string"
                },
                "transaction_count": {
                    "type": "integer"
                },
                "average_price": {
                    "type": "string"
                }
            }
        },
        "report.TopSellersReport": {
            "type": "object",
            "properties": {
                "generated_at": {
                    "type": "string"
                },
                "period": {
                    "$ref": "#/definitions/report.DateRange"
                },
                "limit": {
                    "type": "integer"
                },
                "items": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/report.TopSeller"
                    }
                }
            }
        },
        "report.ExportRow": {
            "type": "object",
            "properties": {
                "date": {
                    "type": "string"
                },
                "type": {
                    "type": "string"
                },
                "amount": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "reference": {
                    "type": "string"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Boutique Back-Office Inventory API",
	Description:      "Stock adjustments and profitability reports over the retail ledger.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
