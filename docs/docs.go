// Package docs Swagger文档(swag init生成的格式,路由变更后重新生成)
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
        "/cards": {
            "get": {
                "produces": ["application/json"],
                "tags": ["卡牌"],
                "summary": "卡牌列表",
                "parameters": [
                    {"type": "string", "name": "name", "in": "query"},
                    {"type": "string", "name": "set_code", "in": "query"},
                    {"type": "string", "name": "rarity", "in": "query"},
                    {"type": "string", "name": "colors", "in": "query"},
                    {"type": "string", "name": "type_line", "in": "query"},
                    {"type": "string", "name": "keywords", "in": "query"},
                    {"type": "string", "name": "source", "in": "query"},
                    {"type": "string", "name": "sort_by", "in": "query"},
                    {"type": "string", "name": "sort_order", "in": "query"},
                    {"type": "integer", "default": 1, "name": "page", "in": "query"},
                    {"type": "integer", "default": 20, "name": "per_page", "in": "query"},
                    {"type": "boolean", "name": "refresh", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.CardPageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/cards/search": {
            "get": {
                "produces": ["application/json"],
                "tags": ["卡牌"],
                "summary": "搜索卡牌",
                "parameters": [
                    {"type": "string", "name": "q", "in": "query", "required": true},
                    {"type": "integer", "default": 1, "name": "page", "in": "query"},
                    {"type": "integer", "default": 20, "name": "per_page", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.CardPageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/cards/bulk": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["卡牌"],
                "summary": "批量查询卡牌",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.BulkCardsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.BulkCardsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/cards/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["卡牌"],
                "summary": "卡牌详情",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "boolean", "name": "refresh", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.CardResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/keywords": {
            "get": {
                "produces": ["application/json"],
                "tags": ["卡牌"],
                "summary": "全部关键字",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.KeywordsResponse"}}
                }
            }
        },
        "/all-sets": {
            "get": {
                "produces": ["application/json"],
                "tags": ["系列"],
                "summary": "系列列表",
                "parameters": [
                    {"type": "string", "name": "name", "in": "query"},
                    {"type": "string", "name": "set_type", "in": "query"},
                    {"type": "string", "name": "sort_by", "in": "query"},
                    {"type": "string", "default": "desc", "name": "sort_order", "in": "query"},
                    {"type": "integer", "default": 1, "name": "page", "in": "query"},
                    {"type": "integer", "default": 20, "name": "per_page", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SetPageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/sets/{code}/cards": {
            "get": {
                "produces": ["application/json"],
                "tags": ["系列"],
                "summary": "系列卡牌",
                "parameters": [
                    {"type": "string", "name": "code", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SetCardsResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/v2/cards": {
            "get": {
                "produces": ["application/json"],
                "tags": ["卡牌"],
                "summary": "卡牌列表v2",
                "parameters": [
                    {"type": "string", "name": "set_code", "in": "query"},
                    {"type": "string", "name": "source", "in": "query"},
                    {"type": "boolean", "name": "include_set_details", "in": "query"},
                    {"type": "integer", "default": 1, "name": "page", "in": "query"},
                    {"type": "integer", "default": 20, "name": "per_page", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.V2CardsResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/{bucket}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["库存"],
                "summary": "桶内卡牌",
                "parameters": [
                    {"type": "string", "name": "bucket", "in": "path", "required": true, "enum": ["collection", "kiosk"]},
                    {"type": "integer", "default": 1, "name": "page", "in": "query"},
                    {"type": "integer", "default": 20, "name": "per_page", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.CardPageResponse"}}
                }
            }
        },
        "/{bucket}/sets": {
            "get": {
                "produces": ["application/json"],
                "tags": ["库存"],
                "summary": "桶内系列",
                "description": "collection_count为该桶在该系列持有的总张数(Σ regular+foil),percentage = collection_count / card_count × 100",
                "parameters": [
                    {"type": "string", "name": "bucket", "in": "path", "required": true, "enum": ["collection", "kiosk"]},
                    {"type": "string", "name": "sort_by", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SetPageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/{bucket}/sets/{code}/cards": {
            "get": {
                "produces": ["application/json"],
                "tags": ["库存"],
                "summary": "桶内系列卡牌",
                "parameters": [
                    {"type": "string", "name": "bucket", "in": "path", "required": true, "enum": ["collection", "kiosk"]},
                    {"type": "string", "name": "code", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.BucketSetCardsResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/{bucket}/{card_id}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["库存"],
                "summary": "设置库存数量",
                "parameters": [
                    {"type": "string", "name": "bucket", "in": "path", "required": true, "enum": ["collection", "kiosk"]},
                    {"type": "string", "name": "card_id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateQuantityRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.InventoryResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["库存"],
                "summary": "清空库存",
                "parameters": [
                    {"type": "string", "name": "bucket", "in": "path", "required": true, "enum": ["collection", "kiosk"]},
                    {"type": "string", "name": "card_id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/{bucket}/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["库存"],
                "summary": "库存统计",
                "parameters": [
                    {"type": "string", "name": "bucket", "in": "path", "required": true, "enum": ["collection", "kiosk"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.StatsResponse"}}
                }
            }
        },
        "/{bucket}/import_csv": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["库存"],
                "summary": "CSV导入",
                "parameters": [
                    {"type": "string", "name": "bucket", "in": "path", "required": true, "enum": ["collection", "kiosk"]},
                    {"type": "file", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ImportResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/cache_stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["运维"],
                "summary": "缓存统计",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.CacheStatsResponse"}}
                }
            }
        },
        "/admin/refresh-collection-counts": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["运维"],
                "summary": "刷新系列收藏统计",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.RefreshCountsResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["认证"],
                "summary": "管理员登录",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.TokenResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["认证"],
                "summary": "登出",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        }
    },
    "definitions": {
        "response.ErrorBody": {
            "type": "object",
            "properties": {"error": {"type": "string", "example": "card not found"}}
        },
        "dto.CardResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "set_code": {"type": "string"},
                "set_name": {"type": "string"},
                "collector_number": {"type": "string"},
                "rarity": {"type": "string"},
                "type_line": {"type": "string"},
                "category": {"type": "string"},
                "quantity_collection_regular": {"type": "integer"},
                "quantity_collection_foil": {"type": "integer"},
                "quantity_kiosk_regular": {"type": "integer"},
                "quantity_kiosk_foil": {"type": "integer"}
            }
        },
        "dto.CardPageResponse": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/dto.CardResponse"}},
                "total": {"type": "integer"},
                "pages": {"type": "integer"},
                "current_page": {"type": "integer"}
            }
        },
        "dto.BulkCardsRequest": {
            "type": "object",
            "properties": {"card_ids": {"type": "array", "items": {"type": "string"}}}
        },
        "dto.BulkCardsResponse": {
            "type": "object",
            "properties": {"cards": {"type": "array", "items": {"$ref": "#/definitions/dto.CardResponse"}}}
        },
        "dto.KeywordsResponse": {
            "type": "object",
            "properties": {"keywords": {"type": "array", "items": {"type": "string"}}}
        },
        "dto.SetSummaryResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "name": {"type": "string"},
                "set_type": {"type": "string"},
                "released_at": {"type": "string"},
                "card_count": {"type": "integer"},
                "collection_count": {"type": "integer"},
                "percentage": {"type": "number"}
            }
        },
        "dto.SetPageResponse": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/dto.SetSummaryResponse"}},
                "total": {"type": "integer"},
                "pages": {"type": "integer"},
                "current_page": {"type": "integer"}
            }
        },
        "dto.SetCardsResponse": {
            "type": "object",
            "properties": {
                "set": {"$ref": "#/definitions/dto.SetSummaryResponse"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/dto.CardResponse"}},
                "total": {"type": "integer"}
            }
        },
        "dto.V2CardsResponse": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/dto.CardResponse"}},
                "total": {"type": "integer"},
                "pages": {"type": "integer"},
                "current_page": {"type": "integer"},
                "set_details": {"$ref": "#/definitions/dto.SetSummaryResponse"}
            }
        },
        "dto.BucketSetCardsResponse": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/dto.CardResponse"}},
                "total": {"type": "integer"},
                "pages": {"type": "integer"},
                "current_page": {"type": "integer"},
                "set": {"$ref": "#/definitions/dto.SetSummaryResponse"}
            }
        },
        "dto.UpdateQuantityRequest": {
            "type": "object",
            "required": ["quantity_regular", "quantity_foil"],
            "properties": {
                "quantity_regular": {"type": "integer", "minimum": 0},
                "quantity_foil": {"type": "integer", "minimum": 0}
            }
        },
        "dto.InventoryResponse": {
            "type": "object",
            "properties": {
                "card_id": {"type": "string"},
                "bucket": {"type": "string"},
                "quantity_regular": {"type": "integer"},
                "quantity_foil": {"type": "integer"}
            }
        },
        "dto.StatsResponse": {
            "type": "object",
            "properties": {
                "total_cards": {"type": "integer"},
                "unique_cards": {"type": "integer"},
                "total_value": {"type": "number"}
            }
        },
        "dto.ImportResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "imported": {"type": "integer"},
                "skipped": {"type": "integer"},
                "errors": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "row": {"type": "integer"},
                            "scryfall_id": {"type": "string"},
                            "error": {"type": "string"}
                        }
                    }
                }
            }
        },
        "dto.CacheStatsResponse": {
            "type": "object",
            "properties": {
                "total_calls": {"type": "integer"},
                "hits": {"type": "integer"},
                "misses": {"type": "integer"},
                "hit_rate": {"type": "string"}
            }
        },
        "dto.RefreshCountsResponse": {
            "type": "object",
            "properties": {"sets_refreshed": {"type": "integer"}}
        },
        "dto.LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "dto.TokenResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "refresh_token": {"type": "string"},
                "token_type": {"type": "string"},
                "expires_in": {"type": "integer"}
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

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "mtgkiosk API",
	Description:      "卡牌收藏与kiosk库存服务",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
