// Package chat 实现了聊天系统的核心服务层
// registry.go
// 核心职责：按主题维护订阅者集合
// 1. 每个群对应两个主题："{群ID}" 承载消息，"{群ID}-activity" 承载在线状态
// 2. 广播只持有该主题自己的锁，群与群之间互不阻塞
// 3. 订阅者消费不过来时只丢它自己的消息，不拖慢其他订阅者
package chat

import (
	"sync"
)

// Subscription 一次订阅的句柄
// Cancel 幂等，重复调用只生效一次
type Subscription struct {
	key      string
	registry *ChannelRegistry
	sink     func(payload []byte) bool
	once     sync.Once
}

// Key 返回订阅的主题
func (s *Subscription) Key() string {
	return s.key
}

// Cancel 取消订阅
// 最后一个订阅者退出后主题从注册表中移除
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.registry.remove(s)
	})
}

// topic 单个主题的订阅者集合
// mu 只保护本主题，广播期间不影响其他主题
type topic struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// ChannelRegistry 主题注册表
// 注册表级别的锁只用于主题映射的增删查，广播走主题自己的锁
type ChannelRegistry struct {
	mu     sync.RWMutex
	topics map[string]*topic
}

// NewChannelRegistry 创建主题注册表
func NewChannelRegistry() *ChannelRegistry {
	return &ChannelRegistry{
		topics: make(map[string]*topic),
	}
}

// Subscribe 订阅主题
// sink 在广播协程中被调用，返回 false 表示本条投递失败（如缓冲已满被丢弃）
func (r *ChannelRegistry) Subscribe(key string, sink func(payload []byte) bool) *Subscription {
	sub := &Subscription{
		key:      key,
		registry: r,
		sink:     sink,
	}

	// 挂载全程持有注册表锁
	// 否则末位订阅者退出删除主题时，新订阅可能落在已被移出映射的 topic 上
	r.mu.Lock()
	t, ok := r.topics[key]
	if !ok {
		t = &topic{subs: make(map[*Subscription]struct{})}
		r.topics[key] = t
	}
	t.mu.Lock()
	t.subs[sub] = struct{}{}
	t.mu.Unlock()
	r.mu.Unlock()

	return sub
}

// Broadcast 向主题的所有订阅者投递消息
// 返回成功投递的订阅者数量，主题不存在时为 0
func (r *ChannelRegistry) Broadcast(key string, payload []byte) int {
	r.mu.RLock()
	t, ok := r.topics[key]
	r.mu.RUnlock()
	if !ok {
		return 0
	}

	delivered := 0
	t.mu.Lock()
	for sub := range t.subs {
		if sub.sink(payload) {
			delivered++
		}
	}
	t.mu.Unlock()
	return delivered
}

// SubscriberCount 返回主题当前的订阅者数量
func (r *ChannelRegistry) SubscriberCount(key string) int {
	r.mu.RLock()
	t, ok := r.topics[key]
	r.mu.RUnlock()
	if !ok {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

// remove 从主题中移除订阅，主题空了就删掉
func (r *ChannelRegistry) remove(sub *Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.topics[sub.key]
	if !ok {
		return
	}
	t.mu.Lock()
	delete(t.subs, sub)
	empty := len(t.subs) == 0
	t.mu.Unlock()
	if empty {
		delete(r.topics, sub.key)
	}
}
