// Package model 定义数据库实体模型
// 本文件定义消息模型，用于存储群聊消息
package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// Message 消息模型
// 对应数据库 message 表
type Message struct {
	gorm.Model

	// Uuid 消息唯一标识
	// 使用雪花算法生成的 int64 类型 ID，同时作为实时流的去重依据
	Uuid int64 `gorm:"column:uuid;uniqueIndex;type:bigint;not null;comment:消息雪花ID"`

	// GroupUuid 群组 UUID
	// 关联到 GroupInfo 表，标识消息属于哪个群
	GroupUuid string `gorm:"column:group_uuid;index:idx_group_created;type:char(36);not null;comment:群组uuid"`

	// Content 消息文本内容
	Content string `gorm:"column:content;type:TEXT;not null;comment:消息内容"`

	// SendId 发送者 UUID
	SendId string `gorm:"column:send_id;index;type:char(20);not null;comment:发送者uuid"`

	// SendName 发送者用户名
	// 冗余存储，避免每次查询消息时都要关联用户表
	SendName string `gorm:"column:send_name;type:varchar(32);not null;comment:发送者用户名"`

	// SendAt 实际发送时间
	// 历史分页按该时间倒序排列
	SendAt sql.NullTime `gorm:"column:send_at;index:idx_group_created;comment:发送时间"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "message"
}
