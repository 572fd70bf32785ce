// Package docs swagger 文档模板, 与 internal/api 下的 handler 注解手工保持同步
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
        "/api/v1/price/aptos": {
            "get": {
                "produces": ["application/json"],
                "tags": ["价格"],
                "summary": "获取 APT 行情",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.APIResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.APIResponse"}}
                }
            }
        },
        "/api/v1/price/aptos/history": {
            "get": {
                "produces": ["application/json"],
                "tags": ["价格"],
                "summary": "历史价格柱状图",
                "parameters": [
                    {"type": "integer", "description": "天数, 1-365", "name": "days", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.APIResponse"}}
                }
            }
        },
        "/api/v1/price/aptos/refresh": {
            "post": {
                "produces": ["application/json"],
                "tags": ["价格"],
                "summary": "立即刷新行情",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.APIResponse"}}
                }
            }
        },
        "/api/v1/wallet/connect": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["钱包"],
                "summary": "连接钱包",
                "parameters": [
                    {"description": "钱包连接请求", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.WalletConnectRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.APIResponse"}}
                }
            }
        },
        "/api/v1/wallet/disconnect": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["钱包"],
                "summary": "断开钱包",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.APIResponse"}}
                }
            }
        },
        "/api/v1/wallet/summary": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["钱包"],
                "summary": "钱包概览",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.APIResponse"}}
                }
            }
        },
        "/api/v1/will/actions/{action}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["遗嘱"],
                "summary": "执行操作",
                "parameters": [
                    {
                        "enum": ["initialize", "create_will", "ping", "claim", "set_recipient", "deposit", "initialize_will"],
                        "type": "string", "description": "操作", "name": "action", "in": "path", "required": true
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.APIResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/types.APIResponse"}}
                }
            }
        },
        "/api/v1/will/activities": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["遗嘱"],
                "summary": "操作记录",
                "parameters": [
                    {"type": "integer", "description": "页码", "name": "page", "in": "query"},
                    {"type": "integer", "description": "每页数量", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.APIResponse"}}
                }
            }
        },
        "/api/v1/will/events": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["遗嘱"],
                "summary": "获取事件日志",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.APIResponse"}}
                }
            }
        },
        "/api/v1/will/inputs": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["遗嘱"],
                "summary": "更新表单输入",
                "parameters": [
                    {"description": "输入", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.UpdateInputsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.APIResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/types.APIResponse"}}
                }
            }
        },
        "/api/v1/will/record": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["遗嘱"],
                "summary": "获取链上遗嘱记录",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.APIResponse"}}
                }
            }
        },
        "/api/v1/will/state": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["遗嘱"],
                "summary": "获取流程状态",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "details": {},
                "message": {"type": "string"}
            }
        },
        "types.APIResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"$ref": "#/definitions/types.APIError"},
                "success": {"type": "boolean"}
            }
        },
        "types.UpdateInputsRequest": {
            "type": "object",
            "properties": {
                "amount": {"type": "string"},
                "recipient": {"type": "string"}
            }
        },
        "types.WalletConnectRequest": {
            "type": "object",
            "properties": {
                "account": {"type": "string"},
                "address": {"type": "string"},
                "variant": {"type": "string", "enum": ["create", "deposit"]}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Digital Will Backend API",
	Description:      "Digital Will Backend API",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
