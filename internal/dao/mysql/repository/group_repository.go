// Package repository 提供数据访问层的具体实现
// 本文件实现 GroupRepository 接口，处理群组相关的数据库操作
package repository

import (
	"huddle_chat_server/internal/model"

	"gorm.io/gorm"
)

// groupRepository GroupRepository 接口的实现
type groupRepository struct {
	db *gorm.DB // GORM 数据库实例
}

// NewGroupRepository 创建 GroupRepository 实例
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

// FindByUuid 根据 UUID 查找群组
func (r *groupRepository) FindByUuid(uuid string) (*model.GroupInfo, error) {
	var group model.GroupInfo
	if err := r.db.First(&group, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群组 uuid=%s", uuid)
	}
	return &group, nil
}

// FindByJoinCode 根据邀请码查找群组
// 邀请码大小写敏感由数据库排序规则决定，业务层按原样匹配
func (r *groupRepository) FindByJoinCode(joinCode string) (*model.GroupInfo, error) {
	var group model.GroupInfo
	if err := r.db.First(&group, "join_code = ?", joinCode).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群组 join_code=%s", joinCode)
	}
	return &group, nil
}

// ListByMember 查找用户加入的所有群组
// 通过 JOIN 群成员表过滤，按群创建时间倒序
func (r *groupRepository) ListByMember(userUuid string) ([]model.GroupInfo, error) {
	var groups []model.GroupInfo
	if err := r.db.Table("group_info").
		Select("group_info.*").
		Joins("INNER JOIN group_member ON group_member.group_uuid = group_info.uuid").
		Where("group_member.user_uuid = ? AND group_member.deleted_at IS NULL AND group_info.deleted_at IS NULL", userUuid).
		Order("group_info.created_at DESC").
		Scan(&groups).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户群列表 user_uuid=%s", userUuid)
	}
	return groups, nil
}

// Create 创建群组
// 邀请码唯一索引冲突时返回 CodeConflict，调用方负责换码重试
func (r *groupRepository) Create(group *model.GroupInfo) error {
	if err := r.db.Create(group).Error; err != nil {
		return wrapDBError(err, "创建群组")
	}
	return nil
}

// IncrementMemberCount 增加群成员计数
// 使用 UpdateColumn + gorm.Expr 实现原子自增
func (r *groupRepository) IncrementMemberCount(uuid string) error {
	if err := r.db.Model(&model.GroupInfo{}).Where("uuid = ?", uuid).UpdateColumn("member_cnt", gorm.Expr("member_cnt + ?", 1)).Error; err != nil {
		return wrapDBErrorf(err, "增加群成员数 uuid=%s", uuid)
	}
	return nil
}
