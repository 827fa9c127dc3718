// Package handler 提供 HTTP 请求处理器
// 本文件处理消息相关的 API 请求
package handler

import (
	"huddle_chat_server/internal/dto/request"
	"huddle_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// MessageHandler 消息请求处理器
type MessageHandler struct {
	messageSvc service.MessageService
}

// NewMessageHandler 创建消息处理器实例
func NewMessageHandler(messageSvc service.MessageService) *MessageHandler {
	return &MessageHandler{messageSvc: messageSvc}
}

// SendGroupMessage 发送群消息
// POST /message/sendGroupMessage
// 请求体: request.SendGroupMessageRequest
// 响应: respond.GroupMessageRespond
func (h *MessageHandler) SendGroupMessage(c *gin.Context) {
	var req request.SendGroupMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.SendGroupMessage(c.Request.Context(), c.GetString("user_id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetGroupMessageList 分页获取群消息记录
// GET /message/getGroupMessageList?group_id=xxx&limit=20&offset=0
// 查询参数: request.GetGroupMessageListRequest
// 响应: respond.GetGroupMessageListRespond
func (h *MessageHandler) GetGroupMessageList(c *gin.Context) {
	var req request.GetGroupMessageListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.GetGroupMessageList(c.GetString("user_id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
