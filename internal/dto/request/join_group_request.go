package request

// JoinGroupRequest 加入群聊请求
// 使用位置:
//   - internal/handler/group_handler.go: JoinGroup
//   - internal/service/group/service.go: JoinGroup
type JoinGroupRequest struct {
	JoinCode string `json:"join_code" binding:"required,alphanum,min=4,max=16"`
}
