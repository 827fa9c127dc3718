// Package repository 定义数据访问层接口和聚合结构
// 所有 Repository 接口在此文件定义，具体实现在各自的文件中
package repository

import (
	"huddle_chat_server/internal/model"

	"gorm.io/gorm"
)

// ==================== Repository 接口定义 ====================

// UserRepository 用户数据访问接口
type UserRepository interface {
	// FindByUuid 根据 UUID 查找用户
	FindByUuid(uuid string) (*model.UserInfo, error)
	// FindByUsername 根据用户名查找用户
	FindByUsername(username string) (*model.UserInfo, error)
	// Create 创建新用户
	Create(user *model.UserInfo) error
	// UpdateLastOnlineAt 更新上次上线时间
	UpdateLastOnlineAt(uuid string) error
	// UpdateLastOfflineAt 更新最近离线时间
	UpdateLastOfflineAt(uuid string) error
}

// GroupRepository 群组数据访问接口
type GroupRepository interface {
	// FindByUuid 根据 UUID 查找群组
	FindByUuid(uuid string) (*model.GroupInfo, error)
	// FindByJoinCode 根据邀请码查找群组
	FindByJoinCode(joinCode string) (*model.GroupInfo, error)
	// ListByMember 查找用户加入的所有群组，按创建时间倒序
	ListByMember(userUuid string) ([]model.GroupInfo, error)
	// Create 创建新群组
	Create(group *model.GroupInfo) error
	// IncrementMemberCount 增加群成员数量（+1）
	IncrementMemberCount(uuid string) error
}

// MessageRepository 消息数据访问接口
type MessageRepository interface {
	// Create 持久化一条消息
	Create(message *model.Message) error
	// PageByGroup 按发送时间倒序分页查询群消息
	PageByGroup(groupUuid string, limit, offset int) ([]model.Message, error)
	// LatestByGroup 查询群最新一条消息，群内无消息时返回 CodeNotFound
	LatestByGroup(groupUuid string) (*model.Message, error)
}

// ==================== 复合结构 ====================

// GroupMemberWithUserInfo 群成员详细信息（含用户资料）
// 用于群成员列表展示
type GroupMemberWithUserInfo struct {
	UserId   string `json:"userId"`   // 用户 UUID
	Username string `json:"username"` // 用户名
	Avatar   string `json:"avatar"`   // 用户头像
}

// GroupMemberRepository 群成员数据访问接口
type GroupMemberRepository interface {
	// Create 添加群成员
	Create(member *model.GroupMember) error
	// IsMember 判断用户是否为群成员
	IsMember(groupUuid, userUuid string) (bool, error)
	// FindMembersWithUserInfo 查找群成员（含用户详细信息）
	FindMembersWithUserInfo(groupUuid string) ([]GroupMemberWithUserInfo, error)
}

// ==================== Repository 聚合 ====================

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	db          *gorm.DB              // GORM 数据库实例
	User        UserRepository        // 用户 Repository
	Group       GroupRepository       // 群组 Repository
	GroupMember GroupMemberRepository // 群成员 Repository
	Message     MessageRepository     // 消息 Repository
}

// NewRepositories 创建所有 Repository 实例
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:          db,
		User:        NewUserRepository(db),
		Group:       NewGroupRepository(db),
		GroupMember: NewGroupMemberRepository(db),
		Message:     NewMessageRepository(db),
	}
}

// Transaction 在数据库事务中执行函数
// 事务内的所有操作要么全部成功，要么全部回滚
// fn: 事务执行函数，接收事务内的 Repositories 实例
// 未绑定 *gorm.DB 的聚合（纯内存实现）没有事务语义，原地执行 fn
func (r *Repositories) Transaction(fn func(txRepos *Repositories) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
