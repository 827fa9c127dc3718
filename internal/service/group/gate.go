package group

import (
	"context"
	"time"

	"go.uber.org/zap"

	"huddle_chat_server/internal/dao/mysql/repository"
	myredis "huddle_chat_server/internal/dao/redis"
	"huddle_chat_server/pkg/constants"
	"huddle_chat_server/pkg/errorx"
)

// MemberGate 群成员资格校验
// 发消息、拉历史、订阅实时流之前都要过这道校验
// 正向结果写入缓存，负向结果不缓存，避免刚入群的用户被旧缓存拒绝
type MemberGate struct {
	repos *repository.Repositories
	cache myredis.AsyncCacheService
}

// NewMemberGate 创建成员校验器
func NewMemberGate(repos *repository.Repositories, cacheService myredis.AsyncCacheService) *MemberGate {
	return &MemberGate{
		repos: repos,
		cache: cacheService,
	}
}

// EnsureMember 校验用户是否为群成员
// 不是成员时返回 CodeUnauthorized
func (m *MemberGate) EnsureMember(groupId, userId string) error {
	cacheKey := "group_member_" + groupId + "_" + userId

	// 1. 尝试从缓存获取
	if m.cache != nil {
		val, err := m.cache.Get(context.Background(), cacheKey)
		if err == nil && val == "1" {
			return nil
		}
	}

	// 2. 缓存未命中 -> 查询数据库
	ok, err := m.repos.GroupMember.IsMember(groupId, userId)
	if err != nil {
		zap.L().Error("查询群成员资格失败", zap.Error(err))
		return errorx.ErrServerBusy
	}
	if !ok {
		return errorx.Newf(errorx.CodeUnauthorized, "用户 %s 不是群 %s 的成员", userId, groupId)
	}

	// 3. 异步回写缓存（只缓存正向结果）
	if m.cache != nil {
		m.cache.SubmitTask(func() {
			if err := m.cache.Set(context.Background(), cacheKey, "1", time.Minute*constants.REDIS_TIMEOUT); err != nil {
				zap.L().Error("Set member cache error", zap.Error(err))
			}
		})
	}
	return nil
}
