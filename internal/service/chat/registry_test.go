package chat

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestRegistryBroadcastOnlyMatchingTopic(t *testing.T) {
	r := NewChannelRegistry()

	var g1Got, g2Got [][]byte
	r.Subscribe("G_1", func(p []byte) bool {
		g1Got = append(g1Got, p)
		return true
	})
	r.Subscribe("G_2", func(p []byte) bool {
		g2Got = append(g2Got, p)
		return true
	})

	delivered := r.Broadcast("G_1", []byte("hello"))
	if delivered != 1 {
		t.Fatalf("delivered = %d, want 1", delivered)
	}
	if len(g1Got) != 1 || string(g1Got[0]) != "hello" {
		t.Fatalf("G_1 got %v", g1Got)
	}
	if len(g2Got) != 0 {
		t.Fatalf("G_2 should not receive messages for G_1, got %v", g2Got)
	}
}

func TestRegistryBroadcastCountsOnlySuccessfulSinks(t *testing.T) {
	r := NewChannelRegistry()

	r.Subscribe("G_1", func(p []byte) bool { return true })
	// 消费不过来的订阅者丢弃本条
	r.Subscribe("G_1", func(p []byte) bool { return false })

	if delivered := r.Broadcast("G_1", []byte("x")); delivered != 1 {
		t.Fatalf("delivered = %d, want 1", delivered)
	}
}

func TestRegistryBroadcastUnknownTopic(t *testing.T) {
	r := NewChannelRegistry()
	if delivered := r.Broadcast("nope", []byte("x")); delivered != 0 {
		t.Fatalf("delivered = %d, want 0", delivered)
	}
}

func TestSubscriptionCancel(t *testing.T) {
	r := NewChannelRegistry()

	sub1 := r.Subscribe("G_1", func(p []byte) bool { return true })
	sub2 := r.Subscribe("G_1", func(p []byte) bool { return true })

	if n := r.SubscriberCount("G_1"); n != 2 {
		t.Fatalf("SubscriberCount = %d, want 2", n)
	}

	sub1.Cancel()
	// Cancel 幂等
	sub1.Cancel()
	if n := r.SubscriberCount("G_1"); n != 1 {
		t.Fatalf("SubscriberCount after cancel = %d, want 1", n)
	}

	sub2.Cancel()
	if n := r.SubscriberCount("G_1"); n != 0 {
		t.Fatalf("SubscriberCount after all cancelled = %d, want 0", n)
	}
	if delivered := r.Broadcast("G_1", []byte("x")); delivered != 0 {
		t.Fatalf("delivered after all cancelled = %d, want 0", delivered)
	}
}

// 末位订阅者退出会把空主题从映射里删掉
// 与此同时进来的新订阅不能落在被删的主题对象上
func TestSubscribeDuringLastCancel(t *testing.T) {
	r := NewChannelRegistry()

	for i := 0; i < 1000; i++ {
		leaving := r.Subscribe("G_1", func(p []byte) bool { return true })

		var got int32
		var arriving *Subscription
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			leaving.Cancel()
		}()
		go func() {
			defer wg.Done()
			arriving = r.Subscribe("G_1", func(p []byte) bool {
				atomic.AddInt32(&got, 1)
				return true
			})
		}()
		wg.Wait()

		if delivered := r.Broadcast("G_1", []byte("x")); delivered == 0 {
			t.Fatalf("iteration %d: broadcast missed surviving subscriber", i)
		}
		if atomic.LoadInt32(&got) == 0 {
			t.Fatalf("iteration %d: surviving subscriber received nothing", i)
		}
		arriving.Cancel()
	}
}

func TestSubscriptionKey(t *testing.T) {
	r := NewChannelRegistry()
	sub := r.Subscribe("G_1-activity", func(p []byte) bool { return true })
	if sub.Key() != "G_1-activity" {
		t.Fatalf("Key = %q", sub.Key())
	}
}
