// Package handler 提供 HTTP 请求处理器
// 本文件处理群组相关的 API 请求
package handler

import (
	"huddle_chat_server/internal/dto/request"
	"huddle_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// GroupHandler 群组请求处理器
// 通过构造函数注入 GroupService，遵循依赖倒置原则
type GroupHandler struct {
	groupSvc service.GroupService
}

// NewGroupHandler 创建群组处理器实例
func NewGroupHandler(groupSvc service.GroupService) *GroupHandler {
	return &GroupHandler{groupSvc: groupSvc}
}

// CreateGroup 创建群聊
// POST /group/createGroup
// 请求体: request.CreateGroupRequest
// 响应: respond.CreateGroupRespond（含邀请码）
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req request.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.groupSvc.CreateGroup(c.GetString("user_id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// JoinGroup 通过邀请码加入群聊
// POST /group/joinGroup
// 请求体: request.JoinGroupRequest
// 响应: respond.CreateGroupRespond
func (h *GroupHandler) JoinGroup(c *gin.Context) {
	var req request.JoinGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.groupSvc.JoinGroup(c.GetString("user_id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetGroupList 获取我加入的群列表
// GET /group/getGroupList
// 响应: []respond.GetGroupListRespond
func (h *GroupHandler) GetGroupList(c *gin.Context) {
	data, err := h.groupSvc.GetGroupList(c.GetString("user_id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetGroupMemberList 获取群成员列表
// GET /group/getGroupMemberList?group_id=xxx
// 查询参数: request.GetGroupMemberListRequest
// 响应: []respond.GetGroupMemberListRespond
func (h *GroupHandler) GetGroupMemberList(c *gin.Context) {
	var req request.GetGroupMemberListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.groupSvc.GetGroupMemberList(req.GroupId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
