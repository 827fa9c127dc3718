// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"huddle_chat_server/internal/config"
	"huddle_chat_server/internal/dao/mysql/repository"
	myredis "huddle_chat_server/internal/dao/redis"
	"huddle_chat_server/internal/service/chat"
	"huddle_chat_server/internal/service/group"
	"huddle_chat_server/internal/service/message"
	"huddle_chat_server/pkg/constants"
)

// Services 聚合所有 Service 实例
// 作为依赖注入的入口，Handler 层通过此结构访问各个 Service
type Services struct {
	Group   GroupService   // 群组 Service
	Message MessageService // 消息 Service

	// ChatServer 聊天服务器（Broker 生命周期）
	ChatServer *chat.ChatServer
	// Gateway WebSocket 网关
	Gateway *chat.Gateway
	// Tracker 在线状态跟踪器
	Tracker *chat.Tracker
}

// NewServices 创建并注入所有 Service 实例
// 依赖注入流程：
//  1. 接收 Repository 聚合实例和缓存服务
//  2. 创建聊天服务器（根据配置选择 Channel/Kafka 模式）
//  3. 创建各个 Service 实例，注入依赖
//  4. 组装 WebSocket 网关并返回聚合
func NewServices(repos *repository.Repositories, cacheService myredis.AsyncCacheService) *Services {
	chatServer := chat.NewChatServer(chat.ChatServerConfig{
		Mode: config.GetConfig().KafkaConfig.MessageMode,
	})
	broker := chatServer.GetBroker()

	gate := group.NewMemberGate(repos, cacheService)
	groupSvc := group.NewGroupService(repos, cacheService)
	messageSvc := message.NewMessageService(repos, cacheService, broker, gate)

	tracker := chat.NewTracker(constants.PRESENCE_STALE_WINDOW)
	gateway := chat.NewGateway(broker, tracker, gate, messageSvc, messageSvc)

	return &Services{
		Group:      groupSvc,
		Message:    messageSvc,
		ChatServer: chatServer,
		Gateway:    gateway,
		Tracker:    tracker,
	}
}

// Svc 全局 Services 实例
var Svc *Services

// InitServices 初始化全局 Services 实例
// 应在 main.go 中调用，在 Repository 和 Redis 初始化之后
func InitServices(repos *repository.Repositories, cacheService myredis.AsyncCacheService) {
	Svc = NewServices(repos, cacheService)
}
