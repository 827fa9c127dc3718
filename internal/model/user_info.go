// Package model 定义数据库实体模型
// 本文件定义用户信息模型
package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// UserInfo 用户信息模型
// 对应数据库 user_info 表
// 认证由外部服务完成，这里只保留核心需要的用户资料
type UserInfo struct {
	gorm.Model // 内嵌 GORM 模型，包含 ID、CreatedAt、UpdatedAt、DeletedAt

	// Uuid 用户唯一标识
	// 格式：U + 13位时间戳随机字符串，如 "U2024010412345678"
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);comment:用户唯一id"`

	// Username 用户名
	// 作为展示名写入消息与在线状态
	Username string `gorm:"column:username;uniqueIndex;type:varchar(32);not null;comment:用户名"`

	// Avatar 用户头像 URL
	Avatar string `gorm:"column:avatar;type:char(255);comment:头像"`

	// LastOnlineAt 上次上线时间
	LastOnlineAt sql.NullTime `gorm:"column:last_online_at;type:datetime;comment:上次上线时间"`

	// LastOfflineAt 最近离线时间
	LastOfflineAt sql.NullTime `gorm:"column:last_offline_at;type:datetime;comment:最近离线时间"`

	// Status 账号状态
	// 0=正常, 1=禁用
	Status int8 `gorm:"column:status;index;not null;comment:状态，0.正常，1.禁用"`
}

// TableName 指定表名
func (UserInfo) TableName() string {
	return "user_info"
}
