// Package history 实现历史消息与实时流的合并
// 每条 WebSocket 订阅持有一个 Timeline：
// 1. 首屏加载最近一页历史
// 2. 向前翻页按"实际返回条数"推进游标，避免新消息写入导致的偏移漂移
// 3. 实时消息按消息 ID 去重后并入，防止与历史页重复
package history

import (
	"huddle_chat_server/internal/dto/respond"
	"huddle_chat_server/pkg/constants"
)

// Pager 历史分页数据源
// 返回按发送时间倒序（最新在前）的一页消息
type Pager interface {
	PageMessages(groupId string, limit, offset int) ([]respond.GroupMessageRespond, error)
}

// Timeline 单个订阅的消息时间线
// 非并发安全，调用方负责串行化（网关按会话加锁）
type Timeline struct {
	pager     Pager
	groupId   string
	limit     int
	cursor    int  // 已向数据源取走的条数
	exhausted bool // 没有更早的历史了
	seen      map[string]struct{}
	msgs      []respond.GroupMessageRespond // 按时间升序
}

// NewTimeline 创建时间线
// limit <= 0 时使用默认分页大小
func NewTimeline(pager Pager, groupId string, limit int) *Timeline {
	if limit <= 0 {
		limit = constants.HISTORY_PAGE_LIMIT
	}
	return &Timeline{
		pager:   pager,
		groupId: groupId,
		limit:   limit,
		seen:    make(map[string]struct{}),
	}
}

// Load 加载首屏历史（最近一页）
func (t *Timeline) Load() error {
	page, err := t.fetch()
	if err != nil {
		return err
	}
	t.msgs = append(t.msgs, page...)
	return nil
}

// FetchOlder 向前翻页，取一页更早的历史
// 返回本次新取到的消息（升序）和是否已取完
func (t *Timeline) FetchOlder() ([]respond.GroupMessageRespond, bool, error) {
	if t.exhausted {
		return nil, true, nil
	}
	page, err := t.fetch()
	if err != nil {
		return nil, t.exhausted, err
	}
	// 更早的消息插到时间线头部
	t.msgs = append(append([]respond.GroupMessageRespond{}, page...), t.msgs...)
	return page, t.exhausted, nil
}

// fetch 取下一页并推进游标
// 游标按数据源实际返回的条数推进（含去重前），短页即视为取完
func (t *Timeline) fetch() ([]respond.GroupMessageRespond, error) {
	raw, err := t.pager.PageMessages(t.groupId, t.limit, t.cursor)
	if err != nil {
		return nil, err
	}
	t.cursor += len(raw)
	if len(raw) < t.limit {
		t.exhausted = true
	}

	// 倒序转升序，同时过滤已见过的消息
	page := make([]respond.GroupMessageRespond, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		msg := raw[i]
		if _, dup := t.seen[msg.Uuid]; dup {
			continue
		}
		t.seen[msg.Uuid] = struct{}{}
		page = append(page, msg)
	}
	return page, nil
}

// ApplyLive 并入一条实时消息
// 已见过的消息（如与历史页重叠）返回 false，调用方不应重复下发
func (t *Timeline) ApplyLive(msg respond.GroupMessageRespond) bool {
	if _, dup := t.seen[msg.Uuid]; dup {
		return false
	}
	t.seen[msg.Uuid] = struct{}{}
	t.msgs = append(t.msgs, msg)
	return true
}

// Messages 返回当前时间线（升序）
func (t *Timeline) Messages() []respond.GroupMessageRespond {
	return t.msgs
}

// Exhausted 是否没有更早的历史了
func (t *Timeline) Exhausted() bool {
	return t.exhausted
}
