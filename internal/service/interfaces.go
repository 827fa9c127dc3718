// Package service 定义业务层接口
// 本文件定义所有 Service 接口，供 Handler 层调用
// 接口设计遵循依赖倒置原则，便于测试和解耦
package service

import (
	"context"

	"huddle_chat_server/internal/dto/request"
	"huddle_chat_server/internal/dto/respond"
)

// GroupService 群组业务接口
// 处理群组的创建、加入、列表查询等功能
type GroupService interface {
	// CreateGroup 创建群组，创建者自动入群
	CreateGroup(userId string, req request.CreateGroupRequest) (*respond.CreateGroupRespond, error)
	// JoinGroup 通过邀请码加入群组
	JoinGroup(userId string, req request.JoinGroupRequest) (*respond.CreateGroupRespond, error)
	// GetGroupList 获取用户加入的群列表（含最新消息预览）
	GetGroupList(userId string) ([]respond.GetGroupListRespond, error)
	// GetGroupMemberList 获取群成员列表
	GetGroupMemberList(groupId string) ([]respond.GetGroupMemberListRespond, error)
}

// MessageService 消息业务接口
// 处理消息的发送与历史分页
type MessageService interface {
	// SendGroupMessage 发送群消息（持久化后广播）
	SendGroupMessage(ctx context.Context, userId string, req request.SendGroupMessageRequest) (*respond.GroupMessageRespond, error)
	// GetGroupMessageList 分页获取群消息记录
	GetGroupMessageList(userId string, req request.GetGroupMessageListRequest) (*respond.GetGroupMessageListRespond, error)
	// PageMessages 按发送时间倒序取一页消息（供时间线翻页使用）
	PageMessages(groupId string, limit, offset int) ([]respond.GroupMessageRespond, error)
}
