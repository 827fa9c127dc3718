// Package chat 实现了聊天系统的核心服务层
// presence.go
// 核心职责：维护每个群的在线状态
// 1. 心跳写入 reader/writer 两类角色，写入一类会把用户从另一类中移除
// 2. 不开后台清理协程，读取快照时惰性过滤并删除过期条目
// 3. 同一用户同时出现在两类中时，快照以 writer 为准
package chat

import (
	"sort"
	"sync"
	"time"

	"huddle_chat_server/pkg/constants"
)

// Role 在线状态角色
type Role int8

const (
	// RoleReader 正在看
	RoleReader Role = iota
	// RoleWriter 正在输入
	RoleWriter
)

// groupPresence 单个群的在线状态
// mu 只保护本群，群与群之间互不阻塞
type groupPresence struct {
	mu      sync.Mutex
	readers map[string]time.Time // 用户名 -> 最近心跳时间
	writers map[string]time.Time
}

// Tracker 在线状态跟踪器
type Tracker struct {
	mu     sync.RWMutex
	groups map[string]*groupPresence
	window time.Duration
	now    func() time.Time // 便于测试注入
}

// NewTracker 创建在线状态跟踪器
// window <= 0 时使用默认过期窗口
func NewTracker(window time.Duration) *Tracker {
	if window <= 0 {
		window = constants.PRESENCE_STALE_WINDOW
	}
	return &Tracker{
		groups: make(map[string]*groupPresence),
		window: window,
		now:    time.Now,
	}
}

// Heartbeat 记录一次心跳
// 同一用户只会留在一类角色中，角色切换即覆盖
func (t *Tracker) Heartbeat(groupId, username string, role Role) {
	g := t.group(groupId)
	g.mu.Lock()
	defer g.mu.Unlock()
	now := t.now()
	if role == RoleWriter {
		delete(g.readers, username)
		g.writers[username] = now
	} else {
		delete(g.writers, username)
		g.readers[username] = now
	}
}

// Remove 将用户从群的在线状态中移除（连接断开时调用）
func (t *Tracker) Remove(groupId, username string) {
	t.mu.RLock()
	g, ok := t.groups[groupId]
	t.mu.RUnlock()
	if !ok {
		return
	}
	g.mu.Lock()
	delete(g.readers, username)
	delete(g.writers, username)
	g.mu.Unlock()
}

// Snapshot 返回群当前的在线状态快照
// 过期条目在此处被过滤并删除，结果按用户名排序保证稳定输出
func (t *Tracker) Snapshot(groupId string) (readers, writers []string) {
	t.mu.RLock()
	g, ok := t.groups[groupId]
	t.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	deadline := t.now().Add(-t.window)

	for name, seen := range g.writers {
		if seen.Before(deadline) {
			delete(g.writers, name)
			continue
		}
		writers = append(writers, name)
	}
	for name, seen := range g.readers {
		if seen.Before(deadline) {
			delete(g.readers, name)
			continue
		}
		// writer 优先，同名不再计入 reader
		if _, ok := g.writers[name]; ok {
			continue
		}
		readers = append(readers, name)
	}

	sort.Strings(readers)
	sort.Strings(writers)
	return readers, writers
}

// group 获取或创建群的在线状态
func (t *Tracker) group(groupId string) *groupPresence {
	t.mu.RLock()
	g, ok := t.groups[groupId]
	t.mu.RUnlock()
	if ok {
		return g
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if g, ok = t.groups[groupId]; ok {
		return g
	}
	g = &groupPresence{
		readers: make(map[string]time.Time),
		writers: make(map[string]time.Time),
	}
	t.groups[groupId] = g
	return g
}
