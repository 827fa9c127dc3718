package request

// CreateGroupRequest 创建群聊请求
// 使用位置:
//   - internal/handler/group_handler.go: CreateGroup
//   - internal/service/group/service.go: CreateGroup
type CreateGroupRequest struct {
	Name   string `json:"name" binding:"required,max=32"`
	Avatar string `json:"avatar" binding:"omitempty,max=255"`
	// JoinCode 可选的自定义邀请码，留空时服务端生成 8 位随机码
	JoinCode string `json:"join_code" binding:"omitempty,alphanum,min=4,max=16"`
}
