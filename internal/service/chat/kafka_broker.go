// Package chat 实现了聊天系统的核心服务层
// kafka_broker.go
// 核心职责：分布式模式下的消息代理实现
// 1. Publish 将消息写入 Kafka，Key 为主题路由键
// 2. 消费协程从 Kafka 读取全量消息，广播给本机订阅者
// 3. 多实例部署时各实例消费同一 topic，各自推送本机连接
package chat

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"huddle_chat_server/pkg/errorx"
)

// KafkaBroker 基于 Kafka 的消息代理
type KafkaBroker struct {
	client   *KafkaClient
	registry *ChannelRegistry
	quit     chan struct{}
}

// NewKafkaBroker 创建 Kafka 消息代理
func NewKafkaBroker(client *KafkaClient, registry *ChannelRegistry) *KafkaBroker {
	return &KafkaBroker{
		client:   client,
		registry: registry,
		quit:     make(chan struct{}),
	}
}

// Publish 实现 MessageBroker 接口：发布消息到 Kafka
func (b *KafkaBroker) Publish(ctx context.Context, key string, payload []byte) error {
	if err := b.client.SendMessage(ctx, []byte(key), payload); err != nil {
		return errorx.Wrapf(err, errorx.CodeServerBusy, "kafka 发布消息 key=%s", key)
	}
	return nil
}

// Subscribe 实现 MessageBroker 接口：订阅主题
func (b *KafkaBroker) Subscribe(key string, sink func(payload []byte) bool) *Subscription {
	return b.registry.Subscribe(key, sink)
}

// Start 启动 Kafka 消费循环
// Kafka 消息的 Key 即路由主题，Value 原样广播给订阅者
func (b *KafkaBroker) Start() {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error(fmt.Sprintf("kafka broker panic: %v", r))
		}
	}()
	zap.L().Info("kafka broker started")

	ctx := context.Background()
	for {
		select {
		case <-b.quit:
			return
		default:
		}
		kafkaMessage, err := b.client.Consumer.ReadMessage(ctx)
		if err != nil {
			zap.L().Error(err.Error())
			continue // 读取失败，重试
		}
		b.registry.Broadcast(string(kafkaMessage.Key), kafkaMessage.Value)
	}
}

// Close 关闭代理
func (b *KafkaBroker) Close() {
	close(b.quit)
}
