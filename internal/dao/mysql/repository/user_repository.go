package repository

import (
	"time"

	"huddle_chat_server/internal/model"

	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户 Repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// FindByUuid 按 UUID 查找用户
func (r *userRepository) FindByUuid(uuid string) (*model.UserInfo, error) {
	var user model.UserInfo
	if err := r.db.First(&user, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 uuid=%s", uuid)
	}
	return &user, nil
}

// FindByUsername 按用户名查找用户
func (r *userRepository) FindByUsername(username string) (*model.UserInfo, error) {
	var user model.UserInfo
	if err := r.db.First(&user, "username = ?", username).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 username=%s", username)
	}
	return &user, nil
}

// Create 创建用户
func (r *userRepository) Create(user *model.UserInfo) error {
	if err := r.db.Create(user).Error; err != nil {
		return wrapDBError(err, "创建用户")
	}
	return nil
}

// UpdateLastOnlineAt 更新上次上线时间
func (r *userRepository) UpdateLastOnlineAt(uuid string) error {
	if err := r.db.Model(&model.UserInfo{}).Where("uuid = ?", uuid).Update("last_online_at", time.Now()).Error; err != nil {
		return wrapDBErrorf(err, "更新上线时间 uuid=%s", uuid)
	}
	return nil
}

// UpdateLastOfflineAt 更新最近离线时间
func (r *userRepository) UpdateLastOfflineAt(uuid string) error {
	if err := r.db.Model(&model.UserInfo{}).Where("uuid = ?", uuid).Update("last_offline_at", time.Now()).Error; err != nil {
		return wrapDBErrorf(err, "更新离线时间 uuid=%s", uuid)
	}
	return nil
}
