// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"huddle_chat_server/internal/handler"
	"huddle_chat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// Router 路由管理器，持有 Handler 聚合对象
type Router struct {
	handlers *handler.Handlers
}

// NewRouter 创建路由管理器
func NewRouter(handlers *handler.Handlers) *Router {
	return &Router{handlers: handlers}
}

// RegisterRoutes 注册所有路由
// 在 https_server.Init() 中调用
// 业务接口统一挂 JWT 认证中间件，WebSocket 入口单独认证（Token 走查询参数）
func (rt *Router) RegisterRoutes(engine *gin.Engine) {
	authed := engine.Group("")
	authed.Use(middleware.JWTAuth())

	rt.RegisterGroupRoutes(authed)   // 群组路由
	rt.RegisterMessageRoutes(authed) // 消息路由

	rt.RegisterWebSocketRoutes(engine) // WebSocket 路由
}
