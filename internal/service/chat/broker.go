// Package chat 实现了聊天系统的核心服务层
// broker.go
// 核心职责：定义消息代理接口
// 抽象按主题的消息发布与订阅，支持 Kafka 和 Channel 两种实现
package chat

import "context"

// MessageBroker 定义消息代理接口
// key 为主题："{群ID}" 承载消息，"{群ID}-activity" 承载在线状态
// 支持多种实现：KafkaBroker (分布式), StandaloneBroker (单机)
type MessageBroker interface {
	// Publish 发布消息到指定主题
	Publish(ctx context.Context, key string, payload []byte) error
	// Subscribe 订阅主题，sink 返回 false 表示该条投递失败
	Subscribe(key string, sink func(payload []byte) bool) *Subscription
	// Start 启动消息消费循环
	Start()
	// Close 关闭代理资源
	Close()
}
