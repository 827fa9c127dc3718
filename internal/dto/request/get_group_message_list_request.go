package request

// GetGroupMessageListRequest 获取群聊消息记录请求
// 使用位置:
//   - internal/handler/message_handler.go: GetGroupMessageList
type GetGroupMessageListRequest struct {
	GroupId string `json:"group_id" form:"group_id" binding:"required"`
	Limit   int    `json:"limit" form:"limit" binding:"omitempty,min=1,max=100"`
	Offset  int    `json:"offset" form:"offset" binding:"omitempty,min=0"`
}
