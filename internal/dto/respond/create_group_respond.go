package respond

// CreateGroupRespond 创建群聊响应
// 使用位置:
//   - internal/service/group/service.go: CreateGroup
type CreateGroupRespond struct {
	Uuid     string `json:"uuid"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar,omitempty"`
	JoinCode string `json:"join_code"`
}
