package api_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"huddle_chat_server/internal/dto/request"
	"huddle_chat_server/internal/dto/respond"
	"huddle_chat_server/internal/handler"
	"huddle_chat_server/internal/https_server"
	"huddle_chat_server/internal/service"
	chat "huddle_chat_server/internal/service/chat"
	"huddle_chat_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// pagedMessageService 带固定落库历史的消息服务替身
type pagedMessageService struct {
	stubMessageService
	history []respond.GroupMessageRespond // 按发送时间倒序
}

func (s pagedMessageService) PageMessages(groupId string, limit, offset int) ([]respond.GroupMessageRespond, error) {
	if offset >= len(s.history) {
		return []respond.GroupMessageRespond{}, nil
	}
	end := offset + limit
	if end > len(s.history) {
		end = len(s.history)
	}
	return s.history[offset:end], nil
}

// 订阅与实时广播并发时，首屏快照只含落库历史
// 同一条消息不能既出现在快照里又以 new_message 下发
func TestSubscribeSnapshotExcludesLiveStream(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwt.Init("test-secret", 15, 168)
	if err := handler.InitTrans("zh"); err != nil {
		t.Fatalf("init trans: %v", err)
	}

	chatServer := chat.NewChatServer(chat.ChatServerConfig{Mode: "channel"})
	go chatServer.Start()
	defer chatServer.Close()

	msgSvc := pagedMessageService{history: []respond.GroupMessageRespond{
		{Uuid: "h3", GroupId: "G_LIVE", Content: "三"},
		{Uuid: "h2", GroupId: "G_LIVE", Content: "二"},
		{Uuid: "h1", GroupId: "G_LIVE", Content: "一"},
	}}
	tracker := chat.NewTracker(0)
	gateway := chat.NewGateway(chatServer.GetBroker(), tracker, allowAllGate{}, msgSvc, msgSvc)

	svcs := &service.Services{
		Group:      stubGroupService{},
		Message:    msgSvc,
		ChatServer: chatServer,
		Gateway:    gateway,
		Tracker:    tracker,
	}
	server := httptest.NewServer(https_server.Init(handler.NewHandlers(svcs)))
	defer server.Close()

	accessToken, err := jwt.GenerateAccessToken("U_LIVE", "liveuser")
	if err != nil {
		t.Fatalf("generate access token: %v", err)
	}

	// 持续向群主题灌入实时消息，和下面的订阅过程并发
	stop := make(chan struct{})
	var floodWg sync.WaitGroup
	floodWg.Add(1)
	go func() {
		defer floodWg.Done()
		broker := chatServer.GetBroker()
		for seq := 1; ; seq++ {
			select {
			case <-stop:
				return
			default:
			}
			event := respond.ChatEventRespond{
				Event:   "new_message",
				GroupId: "G_LIVE",
				Message: &respond.GroupMessageRespond{
					Uuid:    "live-" + strconv.Itoa(seq),
					GroupId: "G_LIVE",
					Content: "x",
				},
			}
			payload, err := json.Marshal(event)
			if err != nil {
				return
			}
			_ = broker.Publish(context.Background(), "G_LIVE", payload)
			time.Sleep(200 * time.Microsecond)
		}
	}()
	defer func() {
		close(stop)
		floodWg.Wait()
	}()

	wsBase := "ws" + strings.TrimPrefix(server.URL, "http")
	for i := 0; i < 30; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(wsBase+"/wss?token="+accessToken, nil)
		if err != nil {
			t.Fatalf("iteration %d: websocket dial: %v", i, err)
		}

		sendCommand(t, conn, request.WsCommandRequest{Op: "subscribe", GroupId: "G_LIVE"})

		// 该群的第一个消息类事件必须是快照
		first := waitForEvent(t, conn, func(e respond.ChatEventRespond) bool {
			return e.GroupId == "G_LIVE" && (e.Event == "history" || e.Event == "new_message")
		})
		if first.Event != "history" {
			t.Fatalf("iteration %d: first event = %q, want history", i, first.Event)
		}
		snapshot := make(map[string]bool, len(first.Messages))
		for _, m := range first.Messages {
			if snapshot[m.Uuid] {
				t.Fatalf("iteration %d: duplicate %q inside snapshot", i, m.Uuid)
			}
			snapshot[m.Uuid] = true
			if strings.HasPrefix(m.Uuid, "live-") {
				t.Fatalf("iteration %d: live message %q leaked into snapshot", i, m.Uuid)
			}
		}

		// 实时流与快照不得出现同一条消息，实时流自身也不得重复
		live := make(map[string]bool)
		for collected := 0; collected < 3; collected++ {
			event := waitForEvent(t, conn, func(e respond.ChatEventRespond) bool {
				return e.GroupId == "G_LIVE" && e.Event == "new_message" && e.Message != nil
			})
			if snapshot[event.Message.Uuid] {
				t.Fatalf("iteration %d: %q delivered both in snapshot and live", i, event.Message.Uuid)
			}
			if live[event.Message.Uuid] {
				t.Fatalf("iteration %d: %q delivered twice on live stream", i, event.Message.Uuid)
			}
			live[event.Message.Uuid] = true
		}
		_ = conn.Close()
	}
}
