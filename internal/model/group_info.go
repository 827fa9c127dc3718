package model

import (
	"gorm.io/gorm"
)

type GroupInfo struct {
	gorm.Model
	Uuid      string `gorm:"column:uuid;uniqueIndex;type:char(36);not null;comment:群组唯一id"`
	Name      string `gorm:"column:name;type:varchar(32);not null;comment:群名称"`
	Avatar    string `gorm:"column:avatar;type:char(255);comment:群头像"`
	JoinCode  string `gorm:"column:join_code;uniqueIndex;type:varchar(16);not null;comment:入群邀请码"`
	MemberCnt int    `gorm:"column:member_cnt;default:1;comment:群人数"`
	OwnerId   string `gorm:"column:owner_id;type:char(20);not null;comment:群主uuid"`
	Status    int8   `gorm:"column:status;default:0;comment:状态，0.正常，1.禁用，2.解散"`
}

func (GroupInfo) TableName() string {
	return "group_info"
}
