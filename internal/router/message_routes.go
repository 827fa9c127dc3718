// Package router 提供 HTTP 路由注册
// 本文件定义消息相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterMessageRoutes 注册消息相关路由（需要认证）
func (rt *Router) RegisterMessageRoutes(rg *gin.RouterGroup) {
	messageGroup := rg.Group("/message")
	{
		messageGroup.POST("/sendGroupMessage", rt.handlers.Message.SendGroupMessage)      // 发送群消息
		messageGroup.GET("/getGroupMessageList", rt.handlers.Message.GetGroupMessageList) // 分页拉取群历史消息
	}
}
