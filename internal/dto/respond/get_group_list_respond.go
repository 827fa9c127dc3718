package respond

// GetGroupListRespond 获取群聊列表响应
// 使用位置:
//   - internal/service/group/service.go: GetGroupList
type GetGroupListRespond struct {
	Uuid      string `json:"uuid"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar,omitempty"`
	JoinCode  string `json:"join_code"`
	OwnerId   string `json:"owner_id"`
	MemberCnt int    `json:"member_cnt"`
	CreatedAt string `json:"created_at"`
	// LastMessage 群内最新一条消息，无消息时为 nil
	LastMessage *GroupMessageRespond `json:"last_message,omitempty"`
}
