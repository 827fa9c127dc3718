package respond

// ChatEventRespond 服务端推送事件 (WebSocket)
// 使用位置:
//   - internal/service/chat/gateway.go: 事件下发
//   - internal/service/message/service.go: SendGroupMessage (广播)
//
// Event 取值:
//   - history      历史消息（首屏或向前翻页），Messages 按时间升序
//   - new_message  实时新消息，Message 为单条
//   - presence     在线状态快照，Readers/Writers 为用户名列表
//   - error        错误提示，Msg 为人类可读信息
type ChatEventRespond struct {
	Event     string                `json:"event"`
	GroupId   string                `json:"group_id"`
	Message   *GroupMessageRespond  `json:"message,omitempty"`
	Messages  []GroupMessageRespond `json:"messages,omitempty"`
	Exhausted bool                  `json:"exhausted,omitempty"`
	Readers   []string              `json:"readers,omitempty"`
	Writers   []string              `json:"writers,omitempty"`
	Msg       string                `json:"msg,omitempty"`
}
