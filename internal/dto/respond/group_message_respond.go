package respond

// GroupMessageRespond 群聊消息
// 使用位置:
//   - internal/service/message/service.go: GetGroupMessageList / SendGroupMessage
//   - internal/service/history/timeline.go: 历史与实时流合并
//   - internal/service/chat/gateway.go: 群消息转发
type GroupMessageRespond struct {
	// Uuid 雪花 ID 的十进制字符串形式，避免 JavaScript 精度丢失
	Uuid     string `json:"uuid"`
	GroupId  string `json:"group_id"`
	SendId   string `json:"send_id"`
	SendName string `json:"send_name"`
	Content  string `json:"content"`
	SendAt   string `json:"send_at"`
}
