package request

// SendGroupMessageRequest 发送群聊消息请求
// 使用位置:
//   - internal/handler/message_handler.go: SendGroupMessage
//   - internal/service/chat/gateway.go: handlePublish
type SendGroupMessageRequest struct {
	GroupId string `json:"group_id" binding:"required"`
	Content string `json:"content" binding:"required"`
}
