// Package router 提供 HTTP 路由注册
// 本文件定义群组相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterGroupRoutes 注册群组相关路由（需要认证）
func (rt *Router) RegisterGroupRoutes(rg *gin.RouterGroup) {
	groupGroup := rg.Group("/group")
	{
		groupGroup.POST("/createGroup", rt.handlers.Group.CreateGroup)              // 创建群组
		groupGroup.POST("/joinGroup", rt.handlers.Group.JoinGroup)                  // 通过邀请码加入群组
		groupGroup.GET("/getGroupList", rt.handlers.Group.GetGroupList)             // 获取已加入的群组列表
		groupGroup.GET("/getGroupMemberList", rt.handlers.Group.GetGroupMemberList) // 获取群成员列表
	}
}
