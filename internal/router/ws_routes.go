// Package router 提供 HTTP 路由注册
// 本文件定义 WebSocket 相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterWebSocketRoutes 注册 WebSocket 相关路由
// 浏览器的 WebSocket API 无法携带 Authorization 头，Token 在 Handler 内
// 从查询参数校验，因此不走 JWT 中间件
// 请求示例: ws://host:port/wss?token=xxx
func (rt *Router) RegisterWebSocketRoutes(r *gin.Engine) {
	r.GET("/wss", rt.handlers.Ws.Connect)
}
