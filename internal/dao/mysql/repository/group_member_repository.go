// Package repository 提供数据访问层的具体实现
// 本文件实现 GroupMemberRepository 接口，处理群成员相关的数据库操作
package repository

import (
	"huddle_chat_server/internal/model"

	"gorm.io/gorm"
)

// groupMemberRepository GroupMemberRepository 接口的实现
type groupMemberRepository struct {
	db *gorm.DB // GORM 数据库实例
}

// NewGroupMemberRepository 创建 GroupMemberRepository 实例
func NewGroupMemberRepository(db *gorm.DB) GroupMemberRepository {
	return &groupMemberRepository{db: db}
}

// Create 添加群成员
// 联合唯一索引保证同一用户不会重复入群，冲突时返回 CodeConflict
func (r *groupMemberRepository) Create(member *model.GroupMember) error {
	if err := r.db.Create(member).Error; err != nil {
		return wrapDBError(err, "创建群成员")
	}
	return nil
}

// IsMember 判断用户是否为群成员
// 成员校验是发消息、拉历史、订阅的前置检查，只查计数不取整行
func (r *groupMemberRepository) IsMember(groupUuid, userUuid string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.GroupMember{}).
		Where("group_uuid = ? AND user_uuid = ?", groupUuid, userUuid).
		Count(&count).Error; err != nil {
		return false, wrapDBErrorf(err, "查询群成员 group_uuid=%s user_uuid=%s", groupUuid, userUuid)
	}
	return count > 0, nil
}

// FindMembersWithUserInfo 查询群成员详细信息（包含用户基本资料）
// 通过 JOIN 查询关联用户表获取用户名和头像
func (r *groupMemberRepository) FindMembersWithUserInfo(groupUuid string) ([]GroupMemberWithUserInfo, error) {
	var members []GroupMemberWithUserInfo
	// 使用 LEFT JOIN 关联 user_info 表
	if err := r.db.Table("group_member").
		Select("user_info.uuid as user_id, user_info.username, user_info.avatar").
		Joins("LEFT JOIN user_info ON group_member.user_uuid = user_info.uuid").
		Where("group_member.group_uuid = ? AND group_member.deleted_at IS NULL", groupUuid).
		Scan(&members).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群成员详情 group_uuid=%s", groupUuid)
	}
	return members, nil
}
