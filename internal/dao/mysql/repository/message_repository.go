// Package repository 提供数据访问层的具体实现
// 本文件实现 MessageRepository 接口，处理消息相关的数据库操作
package repository

import (
	"huddle_chat_server/internal/model"

	"gorm.io/gorm"
)

// messageRepository MessageRepository 接口的实现
type messageRepository struct {
	db *gorm.DB // GORM 数据库实例
}

// NewMessageRepository 创建 MessageRepository 实例
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create 持久化一条消息
func (r *messageRepository) Create(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return wrapDBError(err, "创建消息")
	}
	return nil
}

// PageByGroup 按发送时间倒序分页查询群消息
// 同一秒内的消息用雪花 ID 作为次序兜底，保证分页结果稳定
func (r *messageRepository) PageByGroup(groupUuid string, limit, offset int) ([]model.Message, error) {
	var messages []model.Message
	if offset < 0 {
		offset = 0
	}
	if err := r.db.Where("group_uuid = ?", groupUuid).
		Order("send_at DESC, uuid DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error; err != nil {
		return nil, wrapDBErrorf(err, "分页查询群消息 group_uuid=%s", groupUuid)
	}
	return messages, nil
}

// LatestByGroup 查询群最新一条消息
// 群内无消息时返回 CodeNotFound，调用方自行降级
func (r *messageRepository) LatestByGroup(groupUuid string) (*model.Message, error) {
	var message model.Message
	if err := r.db.Where("group_uuid = ?", groupUuid).
		Order("send_at DESC, uuid DESC").
		First(&message).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群最新消息 group_uuid=%s", groupUuid)
	}
	return &message, nil
}
