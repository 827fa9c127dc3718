// Package chat 实现了聊天系统的核心服务层
// channel_broker.go
// 核心职责：单机模式下的消息代理实现
// 1. Publish 写入带缓冲的转发通道，主循环消费后广播给订阅者
// 2. 不依赖外部消息队列，适合小规模或开发环境
package chat

import (
	"context"

	"go.uber.org/zap"

	"huddle_chat_server/pkg/constants"
	"huddle_chat_server/pkg/errorx"
)

// envelope 转发通道中的一条消息
type envelope struct {
	Key     string
	Payload []byte
}

// StandaloneBroker 单机消息代理
// 共享同一个 ChannelRegistry，发布的消息经 Transmit 通道串行广播
type StandaloneBroker struct {
	registry *ChannelRegistry
	// Transmit 消息转发通道，用于处理待广播的消息
	Transmit chan envelope
	quit     chan struct{}
}

// NewStandaloneBroker 创建单机消息代理
func NewStandaloneBroker(registry *ChannelRegistry) *StandaloneBroker {
	return &StandaloneBroker{
		registry: registry,
		Transmit: make(chan envelope, constants.CHANNEL_SIZE),
		quit:     make(chan struct{}),
	}
}

// Publish 实现 MessageBroker 接口：发布消息到转发通道
// 通道满时返回 ErrServerBusy，调用方决定重试或提示用户
func (b *StandaloneBroker) Publish(ctx context.Context, key string, payload []byte) error {
	select {
	case b.Transmit <- envelope{Key: key, Payload: payload}:
		return nil
	case <-ctx.Done():
		return errorx.Wrap(ctx.Err(), errorx.CodeServerBusy, "发布消息超时")
	default:
		zap.L().Warn("standalone broker transmit channel full", zap.String("key", key))
		return errorx.ErrServerBusy
	}
}

// Subscribe 实现 MessageBroker 接口：订阅主题
func (b *StandaloneBroker) Subscribe(key string, sink func(payload []byte) bool) *Subscription {
	return b.registry.Subscribe(key, sink)
}

// Start 启动主循环，消费转发通道并广播
func (b *StandaloneBroker) Start() {
	zap.L().Info("standalone broker started")
	for {
		select {
		case <-b.quit:
			return
		case env := <-b.Transmit:
			b.registry.Broadcast(env.Key, env.Payload)
		}
	}
}

// Close 关闭代理
func (b *StandaloneBroker) Close() {
	close(b.quit)
}
