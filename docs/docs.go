// Package docs 接口文档，修改 controller 注释后执行 swag init 重新生成
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
		"/health": {
			"get": {
				"tags": [
					"系统"
				],
				"summary": "健康检查",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"503": {
						"description": "Service Unavailable",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				}
			}
		},
		"/progress": {
			"get": {
				"tags": [
					"成长体系"
				],
				"summary": "获取成长记录",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		},
		"/progress/check-in": {
			"post": {
				"tags": [
					"成长体系"
				],
				"summary": "每日签到",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		},
		"/progress/character-class": {
			"put": {
				"tags": [
					"成长体系"
				],
				"summary": "选择职业",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"parameters": [
					{
						"description": "请求体",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/controller.ChooseClassRequest"
						}
					}
				],
				"consumes": [
					"application/json"
				]
			}
		},
		"/leaderboard": {
			"get": {
				"tags": [
					"成长体系"
				],
				"summary": "获取排行榜",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"parameters": [
					{
						"enum": [
							"level",
							"xp",
							"battles",
							"streak"
						],
						"type": "string",
						"default": "level",
						"description": "排行类型",
						"name": "type",
						"in": "query"
					},
					{
						"type": "integer",
						"default": 10,
						"description": "返回数量",
						"name": "limit",
						"in": "query"
					}
				]
			}
		},
		"/quests": {
			"get": {
				"tags": [
					"任务"
				],
				"summary": "任务列表",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		},
		"/quests/recommended": {
			"get": {
				"tags": [
					"任务"
				],
				"summary": "推荐任务",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		},
		"/quests/{questId}": {
			"get": {
				"tags": [
					"任务"
				],
				"summary": "任务详情",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "任务ID",
						"name": "questId",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/quests/{questId}/rate": {
			"post": {
				"tags": [
					"任务"
				],
				"summary": "任务评分",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "任务ID",
						"name": "questId",
						"in": "path",
						"required": true
					},
					{
						"description": "请求体",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/controller.RateQuestRequest"
						}
					}
				],
				"consumes": [
					"application/json"
				]
			}
		},
		"/quests/{questId}/start": {
			"post": {
				"tags": [
					"任务"
				],
				"summary": "开始任务",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "任务ID",
						"name": "questId",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/quests/{questId}/submit": {
			"post": {
				"tags": [
					"任务"
				],
				"summary": "提交代码",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"503": {
						"description": "Service Unavailable",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "任务ID",
						"name": "questId",
						"in": "path",
						"required": true
					},
					{
						"description": "请求体",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/controller.SubmitQuestRequest"
						}
					}
				],
				"consumes": [
					"application/json"
				]
			}
		},
		"/quests/{questId}/abandon": {
			"post": {
				"tags": [
					"任务"
				],
				"summary": "放弃任务",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "任务ID",
						"name": "questId",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/quests/{questId}/hints/{index}": {
			"post": {
				"tags": [
					"任务"
				],
				"summary": "购买提示",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "任务ID",
						"name": "questId",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "提示序号",
						"name": "index",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/achievements": {
			"get": {
				"tags": [
					"成就系统"
				],
				"summary": "获取成就列表",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		},
		"/achievements/check": {
			"post": {
				"tags": [
					"成就系统"
				],
				"summary": "检查成就",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		},
		"/skill-trees/{tree}/skills/{skillId}": {
			"post": {
				"tags": [
					"成长体系"
				],
				"summary": "解锁技能",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "技能树",
						"name": "tree",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"description": "技能ID",
						"name": "skillId",
						"in": "path",
						"required": true
					},
					{
						"description": "请求体",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/controller.SpendSkillPointsRequest"
						}
					}
				],
				"consumes": [
					"application/json"
				]
			}
		},
		"/admin/users/{userId}/xp": {
			"post": {
				"tags": [
					"成长体系管理"
				],
				"summary": "发放经验（教师/管理员）",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "用户ID",
						"name": "userId",
						"in": "path",
						"required": true
					},
					{
						"description": "请求体",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/controller.GrantXPRequest"
						}
					}
				],
				"consumes": [
					"application/json"
				]
			}
		},
		"/admin/users/{userId}/stats": {
			"post": {
				"tags": [
					"成长体系管理"
				],
				"summary": "上报行为计数（教师/管理员）",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/util.Response"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "用户ID",
						"name": "userId",
						"in": "path",
						"required": true
					},
					{
						"description": "请求体",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/controller.RecordActivityRequest"
						}
					}
				],
				"consumes": [
					"application/json"
				]
			}
		}
	},
	"definitions": {
		"util.Response": {
			"type": "object",
			"properties": {
				"code": {
					"type": "integer"
				},
				"message": {
					"type": "string"
				},
				"data": {}
			}
		},
		"controller.SubmitQuestRequest": {
			"type": "object",
			"required": [
				"code"
			],
			"properties": {
				"code": {
					"type": "string"
				},
				"languageId": {
					"type": "integer"
				},
				"timeSpent": {
					"type": "integer",
					"minimum": 0
				}
			}
		},
		"controller.ChooseClassRequest": {
			"type": "object",
			"required": [
				"characterClass"
			],
			"properties": {
				"characterClass": {
					"type": "string",
					"enum": [
						"novice_coder",
						"frontend_wizard",
						"backend_knight",
						"ai_sorcerer",
						"fullstack_paladin"
					]
				}
			}
		},
		"controller.RateQuestRequest": {
			"type": "object",
			"required": [
				"rating",
				"difficulty"
			],
			"properties": {
				"rating": {
					"type": "integer",
					"minimum": 1,
					"maximum": 5
				},
				"difficulty": {
					"type": "integer",
					"minimum": 1,
					"maximum": 5
				},
				"feedback": {
					"type": "string",
					"maxLength": 500
				}
			}
		},
		"controller.SpendSkillPointsRequest": {
			"type": "object",
			"required": [
				"points"
			],
			"properties": {
				"points": {
					"type": "integer",
					"minimum": 1
				}
			}
		},
		"controller.GrantXPRequest": {
			"type": "object",
			"required": [
				"amount"
			],
			"properties": {
				"amount": {
					"type": "integer",
					"minimum": 1,
					"maximum": 1000
				}
			}
		},
		"controller.RecordActivityRequest": {
			"type": "object",
			"required": [
				"stat",
				"delta"
			],
			"properties": {
				"stat": {
					"type": "string"
				},
				"delta": {
					"type": "integer",
					"minimum": 1
				}
			}
		}
	},
	"securityDefinitions": {
		"ApiKeyAuth": {
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
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "CoderQuest 成长体系 API",
	Description:      "编程学习平台的经验、等级、任务、成就与技能树服务。",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
