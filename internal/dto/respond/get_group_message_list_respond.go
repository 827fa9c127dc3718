package respond

// GetGroupMessageListRespond 获取群聊消息记录响应
// 使用位置:
//   - internal/service/message/service.go: GetGroupMessageList
//
// List 按发送时间倒序排列（最新在前）
// Exhausted 为 true 时表示没有更早的历史了
type GetGroupMessageListRespond struct {
	List      []GroupMessageRespond `json:"list"`
	Exhausted bool                  `json:"exhausted"`
}
