package model

import "gorm.io/gorm"

// GroupMember 群成员关联表
// GroupUuid + UserUuid 联合唯一，保证重复加群在数据库层面也被拒绝
type GroupMember struct {
	gorm.Model
	GroupUuid string `gorm:"type:char(36);uniqueIndex:idx_group_user;not null;comment:群组ID"`
	UserUuid  string `gorm:"type:char(20);uniqueIndex:idx_group_user;index;not null;comment:用户ID"`
	Role      int8   `gorm:"default:1;comment:1普通成员 3群主"`
}

func (GroupMember) TableName() string {
	return "group_member"
}
