package history

import (
	"fmt"
	"testing"

	"huddle_chat_server/internal/dto/respond"
)

// fakePager 基于内存切片的分页数据源
// data 按发送时间倒序（最新在前），与数据库返回顺序一致
type fakePager struct {
	data  []respond.GroupMessageRespond
	calls int
}

func (p *fakePager) PageMessages(groupId string, limit, offset int) ([]respond.GroupMessageRespond, error) {
	p.calls++
	if offset >= len(p.data) {
		return []respond.GroupMessageRespond{}, nil
	}
	end := offset + limit
	if end > len(p.data) {
		end = len(p.data)
	}
	page := make([]respond.GroupMessageRespond, end-offset)
	copy(page, p.data[offset:end])
	return page, nil
}

// descMessages 生成 n 条倒序消息，编号越大越新
func descMessages(n int) []respond.GroupMessageRespond {
	msgs := make([]respond.GroupMessageRespond, 0, n)
	for i := n; i >= 1; i-- {
		msgs = append(msgs, respond.GroupMessageRespond{
			Uuid:    fmt.Sprintf("%d", i),
			GroupId: "G_1",
			Content: fmt.Sprintf("msg-%d", i),
		})
	}
	return msgs
}

func TestTimelineLoadFirstPage(t *testing.T) {
	pager := &fakePager{data: descMessages(25)}
	tl := NewTimeline(pager, "G_1", 20)

	if err := tl.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	msgs := tl.Messages()
	if len(msgs) != 20 {
		t.Fatalf("len = %d, want 20", len(msgs))
	}
	// 升序：最早的在前
	if msgs[0].Uuid != "6" || msgs[19].Uuid != "25" {
		t.Fatalf("order wrong: first=%s last=%s", msgs[0].Uuid, msgs[19].Uuid)
	}
	if tl.Exhausted() {
		t.Fatal("should not be exhausted after first page of 25")
	}
}

func TestTimelineFetchOlder(t *testing.T) {
	pager := &fakePager{data: descMessages(25)}
	tl := NewTimeline(pager, "G_1", 20)
	if err := tl.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	page, exhausted, err := tl.FetchOlder()
	if err != nil {
		t.Fatalf("fetch older: %v", err)
	}
	if len(page) != 5 {
		t.Fatalf("page len = %d, want 5", len(page))
	}
	if page[0].Uuid != "1" || page[4].Uuid != "5" {
		t.Fatalf("page order wrong: first=%s last=%s", page[0].Uuid, page[4].Uuid)
	}
	// 短页即取完
	if !exhausted {
		t.Fatal("want exhausted after short page")
	}

	msgs := tl.Messages()
	if len(msgs) != 25 || msgs[0].Uuid != "1" || msgs[24].Uuid != "25" {
		t.Fatalf("merged timeline wrong: len=%d", len(msgs))
	}
}

func TestTimelineFetchOlderAfterExhausted(t *testing.T) {
	pager := &fakePager{data: descMessages(3)}
	tl := NewTimeline(pager, "G_1", 20)
	if err := tl.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !tl.Exhausted() {
		t.Fatal("want exhausted, 3 < 20")
	}

	calls := pager.calls
	page, exhausted, err := tl.FetchOlder()
	if err != nil || !exhausted || page != nil {
		t.Fatalf("page=%v exhausted=%v err=%v", page, exhausted, err)
	}
	if pager.calls != calls {
		t.Fatal("pager should not be queried again after exhausted")
	}
}

func TestTimelineCursorSurvivesNewInserts(t *testing.T) {
	// 首页取走 3 条后，有新消息插入头部，偏移整体后移一位
	pager := &fakePager{data: descMessages(7)}
	tl := NewTimeline(pager, "G_1", 3)
	if err := tl.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	// 时间线此时是 5,6,7

	newHead := respond.GroupMessageRespond{Uuid: "8", GroupId: "G_1", Content: "msg-8"}
	pager.data = append([]respond.GroupMessageRespond{newHead}, pager.data...)

	// 游标 3 现在指向 5（已见过），去重后只返回 3、4
	page, exhausted, err := tl.FetchOlder()
	if err != nil {
		t.Fatalf("fetch older: %v", err)
	}
	if exhausted {
		t.Fatal("should not be exhausted, full page returned")
	}
	if len(page) != 2 || page[0].Uuid != "3" || page[1].Uuid != "4" {
		t.Fatalf("page = %v, want [3 4]", page)
	}

	// 再翻一页拿到 1、2
	page, _, err = tl.FetchOlder()
	if err != nil {
		t.Fatalf("fetch older: %v", err)
	}
	if len(page) != 2 || page[0].Uuid != "1" || page[1].Uuid != "2" {
		t.Fatalf("page = %v, want [1 2]", page)
	}

	msgs := tl.Messages()
	for i, msg := range msgs {
		if want := fmt.Sprintf("%d", i+1); msg.Uuid != want {
			t.Fatalf("msgs[%d] = %s, want %s", i, msg.Uuid, want)
		}
	}
}

func TestTimelineApplyLiveDeduplicates(t *testing.T) {
	pager := &fakePager{data: descMessages(2)}
	tl := NewTimeline(pager, "G_1", 20)
	if err := tl.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	live := respond.GroupMessageRespond{Uuid: "3", GroupId: "G_1", Content: "msg-3"}
	if !tl.ApplyLive(live) {
		t.Fatal("fresh live message should be applied")
	}
	// 同一条再来一次（如历史页与实时流重叠）
	if tl.ApplyLive(live) {
		t.Fatal("duplicate live message should be rejected")
	}
	// 与历史重叠的也要被拒
	if tl.ApplyLive(respond.GroupMessageRespond{Uuid: "2"}) {
		t.Fatal("message already in history should be rejected")
	}

	msgs := tl.Messages()
	if len(msgs) != 3 || msgs[2].Uuid != "3" {
		t.Fatalf("timeline = %v", msgs)
	}
}

func TestTimelineDefaultLimit(t *testing.T) {
	pager := &fakePager{data: descMessages(1)}
	tl := NewTimeline(pager, "G_1", 0)
	if err := tl.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tl.Messages()) != 1 || !tl.Exhausted() {
		t.Fatalf("msgs=%v exhausted=%v", tl.Messages(), tl.Exhausted())
	}
}
