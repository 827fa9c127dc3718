package request

// WsCommandRequest WebSocket 客户端指令 (WebSocket)
// 使用位置:
//   - internal/service/chat/gateway.go: handleCommand
//
// Op 取值:
//   - subscribe   订阅群，建立实时流并下发首屏历史
//   - unsubscribe 取消订阅
//   - publish     发送消息，Content 为消息文本
//   - typing      输入中信号，驱动 writer 在线状态
//   - load_older  向前翻页，追加一页更早的历史
type WsCommandRequest struct {
	Op      string `json:"op" binding:"required"`
	GroupId string `json:"group_id" binding:"required"`
	Content string `json:"content"`
}
