// Package handler 提供 HTTP 请求处理器
// 本文件处理 WebSocket 连接相关的 API 请求
package handler

import (
	"net/http"

	"huddle_chat_server/internal/service"
	"huddle_chat_server/pkg/errorx"
	"huddle_chat_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WsHandler WebSocket 请求处理器
type WsHandler struct {
	svc *service.Services
}

// NewWsHandler 创建 WebSocket 处理器实例
func NewWsHandler(svc *service.Services) *WsHandler {
	return &WsHandler{svc: svc}
}

// Connect 建立 WebSocket 连接
// GET /wss?token=xxx
// 浏览器的 WebSocket API 无法设置 Authorization 头，Token 走查询参数
// 认证通过后升级连接，读循环在网关中处理订阅/发布指令
func (h *WsHandler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code": errorx.CodeUnauthorized,
			"msg":  "请先登录",
		})
		return
	}
	claims, err := jwt.ParseToken(token)
	if err != nil || claims.Subject != "access_token" {
		zap.L().Warn("ws token 校验失败", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{
			"code": errorx.CodeUnauthorized,
			"msg":  "Token 已过期或无效，请重新登录",
		})
		return
	}
	h.svc.Gateway.HandleConnection(c, claims.UserID, claims.Username)
}
