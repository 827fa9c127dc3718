package respond

// GetGroupMemberListRespond 获取群成员列表响应
// 使用位置:
//   - internal/service/group/service.go: GetGroupMemberList
type GetGroupMemberListRespond struct {
	UserId   string `json:"user_id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}
