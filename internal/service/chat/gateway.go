// Package chat 实现了聊天系统的核心服务层
// gateway.go
// 核心职责：WebSocket 连接生命周期管理
// 1. 建立 WebSocket 连接 (Upgrade)，管理读写协程 (Read/Write Loop)
// 2. 处理客户端指令：subscribe / unsubscribe / publish / typing / load_older
// 3. 每条订阅持有一个 Timeline，历史与实时流在这里合并去重
// 4. 心跳协程定期上报在线状态并广播快照
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"huddle_chat_server/internal/dto/request"
	"huddle_chat_server/internal/dto/respond"
	"huddle_chat_server/internal/service/history"
	"huddle_chat_server/pkg/constants"
	"huddle_chat_server/pkg/errorx"
)

// MemberGate 成员资格校验依赖
// 由 group 包的 MemberGate 实现
type MemberGate interface {
	EnsureMember(groupId, userId string) error
}

// MessagePublisher 消息发布依赖
// 由 message 包的 messageService 实现，内部完成持久化与广播
type MessagePublisher interface {
	SendGroupMessage(ctx context.Context, userId string, req request.SendGroupMessageRequest) (*respond.GroupMessageRespond, error)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	// 允许跨域连接，前端与后端通常不同源
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Gateway WebSocket 网关
type Gateway struct {
	broker    MessageBroker
	tracker   *Tracker
	gate      MemberGate
	publisher MessagePublisher
	pager     history.Pager
}

// NewGateway 创建 WebSocket 网关
func NewGateway(broker MessageBroker, tracker *Tracker, gate MemberGate, publisher MessagePublisher, pager history.Pager) *Gateway {
	return &Gateway{
		broker:    broker,
		tracker:   tracker,
		gate:      gate,
		publisher: publisher,
		pager:     pager,
	}
}

// groupSession 连接上的一个群订阅
type groupSession struct {
	groupId     string
	sub         *Subscription // 消息主题订阅
	activitySub *Subscription // 在线状态主题订阅

	// mu 保护 timeline 和 writingUntil
	// sink 在广播协程中触碰 timeline，读循环也会翻页
	mu           sync.Mutex
	timeline     *history.Timeline
	writingUntil time.Time // 在此之前视为 writer
}

// clientSession 一条连接的全部状态
type clientSession struct {
	conn *UserConn
	mu   sync.Mutex
	// groups 当前订阅的群，Key 为群 UUID
	groups map[string]*groupSession
}

// HandleConnection 处理一条已认证的 WebSocket 连接
// 读循环在当前协程运行，连接断开后清理所有订阅和在线状态
func (g *Gateway) HandleConnection(c *gin.Context, userId, username string) {
	wsConn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Error(err.Error())
		return
	}
	conn := NewUserConn(wsConn, userId, username, constants.CHANNEL_SIZE)
	go conn.Write()
	zap.L().Info("ws连接成功", zap.String("uuid", userId))

	client := &clientSession{
		conn:   conn,
		groups: make(map[string]*groupSession),
	}
	go g.heartbeatLoop(client)

	defer g.cleanup(client)
	for {
		_, jsonMessage, err := conn.Conn.ReadMessage()
		if err != nil {
			zap.L().Info("ws连接断开", zap.String("uuid", userId), zap.Error(err))
			return
		}
		var cmd request.WsCommandRequest
		if err := json.Unmarshal(jsonMessage, &cmd); err != nil {
			g.sendError(conn, "", "指令格式错误")
			continue
		}
		if cmd.GroupId == "" {
			g.sendError(conn, "", "缺少 group_id")
			continue
		}
		g.handleCommand(client, cmd)
	}
}

// handleCommand 分发客户端指令
func (g *Gateway) handleCommand(client *clientSession, cmd request.WsCommandRequest) {
	switch cmd.Op {
	case "subscribe":
		g.handleSubscribe(client, cmd.GroupId)
	case "unsubscribe":
		g.handleUnsubscribe(client, cmd.GroupId)
	case "publish":
		g.handlePublish(client, cmd)
	case "typing":
		g.handleTyping(client, cmd.GroupId)
	case "load_older":
		g.handleLoadOlder(client, cmd.GroupId)
	default:
		g.sendError(client.conn, cmd.GroupId, "未知指令: "+cmd.Op)
	}
}

// handleSubscribe 订阅群
// 成员校验通过后：加载首屏历史 -> 下发 history 事件 -> 建立实时订阅
// 重复订阅幂等，重发当前时间线
func (g *Gateway) handleSubscribe(client *clientSession, groupId string) {
	conn := client.conn

	client.mu.Lock()
	if session, ok := client.groups[groupId]; ok {
		client.mu.Unlock()
		session.mu.Lock()
		g.sendHistory(conn, groupId, session.timeline.Messages(), session.timeline.Exhausted())
		session.mu.Unlock()
		return
	}
	client.mu.Unlock()

	if err := g.gate.EnsureMember(groupId, conn.Uuid); err != nil {
		g.sendError(conn, groupId, errorMessage(err))
		return
	}

	timeline := history.NewTimeline(g.pager, groupId, constants.HISTORY_PAGE_LIMIT)
	if err := timeline.Load(); err != nil {
		zap.L().Error("加载首屏历史失败", zap.Error(err))
		g.sendError(conn, groupId, "加载历史消息失败")
		return
	}

	session := &groupSession{
		groupId:  groupId,
		timeline: timeline,
	}

	// 快照在接入实时流之前下发
	// 之后到达的实时消息只以 new_message 出现，不会再挤进快照
	g.sendHistory(conn, groupId, timeline.Messages(), timeline.Exhausted())

	// 实时消息先过时间线去重再下发
	session.sub = g.broker.Subscribe(groupId, func(payload []byte) bool {
		var event respond.ChatEventRespond
		if err := json.Unmarshal(payload, &event); err != nil {
			zap.L().Error(err.Error())
			return false
		}
		if event.Event == "new_message" && event.Message != nil {
			session.mu.Lock()
			fresh := session.timeline.ApplyLive(*event.Message)
			session.mu.Unlock()
			if !fresh {
				// 已经在历史页里了，不重复下发
				return true
			}
		}
		return conn.TrySend(payload)
	})
	// 在线状态快照原样透传
	session.activitySub = g.broker.Subscribe(groupId+"-activity", func(payload []byte) bool {
		return conn.TrySend(payload)
	})

	client.mu.Lock()
	client.groups[groupId] = session
	client.mu.Unlock()

	// 立刻上报一次心跳，不等下个周期
	g.tracker.Heartbeat(groupId, conn.Username, RoleReader)
	g.publishPresence(groupId)
}

// handleUnsubscribe 取消订阅
func (g *Gateway) handleUnsubscribe(client *clientSession, groupId string) {
	client.mu.Lock()
	session, ok := client.groups[groupId]
	if ok {
		delete(client.groups, groupId)
	}
	client.mu.Unlock()
	if !ok {
		return
	}
	session.sub.Cancel()
	session.activitySub.Cancel()
	g.tracker.Remove(groupId, client.conn.Username)
	g.publishPresence(groupId)
}

// handlePublish 发送消息
// 持久化与广播由 MessagePublisher 完成，这里只做会话检查和错误回传
func (g *Gateway) handlePublish(client *clientSession, cmd request.WsCommandRequest) {
	client.mu.Lock()
	_, subscribed := client.groups[cmd.GroupId]
	client.mu.Unlock()
	if !subscribed {
		g.sendError(client.conn, cmd.GroupId, "尚未订阅该群")
		return
	}

	_, err := g.publisher.SendGroupMessage(context.Background(), client.conn.Uuid, request.SendGroupMessageRequest{
		GroupId: cmd.GroupId,
		Content: cmd.Content,
	})
	if err != nil {
		g.sendError(client.conn, cmd.GroupId, errorMessage(err))
	}
}

// handleTyping 输入中信号
// 把用户标记为 writer，停止输入后经过回落时间自动降回 reader
func (g *Gateway) handleTyping(client *clientSession, groupId string) {
	client.mu.Lock()
	session, ok := client.groups[groupId]
	client.mu.Unlock()
	if !ok {
		return
	}
	session.mu.Lock()
	session.writingUntil = time.Now().Add(constants.TYPING_DEBOUNCE)
	session.mu.Unlock()

	g.tracker.Heartbeat(groupId, client.conn.Username, RoleWriter)
	g.publishPresence(groupId)
}

// handleLoadOlder 向前翻页
func (g *Gateway) handleLoadOlder(client *clientSession, groupId string) {
	client.mu.Lock()
	session, ok := client.groups[groupId]
	client.mu.Unlock()
	if !ok {
		g.sendError(client.conn, groupId, "尚未订阅该群")
		return
	}

	session.mu.Lock()
	page, exhausted, err := session.timeline.FetchOlder()
	session.mu.Unlock()
	if err != nil {
		zap.L().Error("向前翻页失败", zap.Error(err))
		g.sendError(client.conn, groupId, "加载历史消息失败")
		return
	}
	g.sendHistory(client.conn, groupId, page, exhausted)
}

// heartbeatLoop 心跳协程
// 周期性为每个订阅上报角色并广播在线状态快照
func (g *Gateway) heartbeatLoop(client *clientSession) {
	ticker := time.NewTicker(constants.HEARTBEAT_INTERVAL)
	defer ticker.Stop()
	for {
		select {
		case <-client.conn.Done():
			return
		case <-ticker.C:
			client.mu.Lock()
			sessions := make([]*groupSession, 0, len(client.groups))
			for _, s := range client.groups {
				sessions = append(sessions, s)
			}
			client.mu.Unlock()

			now := time.Now()
			for _, session := range sessions {
				session.mu.Lock()
				role := RoleReader
				if now.Before(session.writingUntil) {
					role = RoleWriter
				}
				session.mu.Unlock()
				g.tracker.Heartbeat(session.groupId, client.conn.Username, role)
				g.publishPresence(session.groupId)
			}
		}
	}
}

// publishPresence 广播群的在线状态快照
func (g *Gateway) publishPresence(groupId string) {
	readers, writers := g.tracker.Snapshot(groupId)
	event := respond.ChatEventRespond{
		Event:   "presence",
		GroupId: groupId,
		Readers: readers,
		Writers: writers,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		zap.L().Error(err.Error())
		return
	}
	if err := g.broker.Publish(context.Background(), groupId+"-activity", payload); err != nil {
		zap.L().Error("广播在线状态失败", zap.Error(err))
	}
}

// cleanup 连接断开时的清理
func (g *Gateway) cleanup(client *clientSession) {
	client.mu.Lock()
	sessions := client.groups
	client.groups = make(map[string]*groupSession)
	client.mu.Unlock()

	for groupId, session := range sessions {
		session.sub.Cancel()
		session.activitySub.Cancel()
		g.tracker.Remove(groupId, client.conn.Username)
		g.publishPresence(groupId)
	}
	client.conn.Close()
}

// sendHistory 下发 history 事件
func (g *Gateway) sendHistory(conn *UserConn, groupId string, messages []respond.GroupMessageRespond, exhausted bool) {
	if messages == nil {
		messages = []respond.GroupMessageRespond{}
	}
	event := respond.ChatEventRespond{
		Event:     "history",
		GroupId:   groupId,
		Messages:  messages,
		Exhausted: exhausted,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		zap.L().Error(err.Error())
		return
	}
	conn.TrySend(payload)
}

// sendError 下发 error 事件
func (g *Gateway) sendError(conn *UserConn, groupId, msg string) {
	event := respond.ChatEventRespond{
		Event:   "error",
		GroupId: groupId,
		Msg:     msg,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		zap.L().Error(err.Error())
		return
	}
	conn.TrySend(payload)
}

// errorMessage 提取展示给用户的错误消息
func errorMessage(err error) string {
	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Msg
	}
	return "服务繁忙"
}
