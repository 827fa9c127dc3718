// Package chat 实现了聊天系统的核心服务层
// conn.go
// 核心职责：WebSocket 连接的发送侧封装
// 1. SendBack 为带缓冲的发送通道，写协程串行消费
// 2. TrySend 非阻塞投递，缓冲满即丢弃本条，慢消费者不拖慢广播
package chat

import (
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// UserConn 表示一个 WebSocket 客户端连接
type UserConn struct {
	Conn     *websocket.Conn
	Uuid     string // 用户 UUID
	Username string
	SendBack chan []byte // 给前端

	closeOnce sync.Once
	done      chan struct{}
}

// NewUserConn 封装一条已升级的 WebSocket 连接
func NewUserConn(conn *websocket.Conn, uuid, username string, bufSize int) *UserConn {
	return &UserConn{
		Conn:     conn,
		Uuid:     uuid,
		Username: username,
		SendBack: make(chan []byte, bufSize),
		done:     make(chan struct{}),
	}
}

// TrySend 非阻塞投递一条消息
// 缓冲已满或连接已关闭时返回 false，消息被丢弃
func (c *UserConn) TrySend(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.SendBack <- payload:
		return true
	default:
		zap.L().Warn("ws send buffer full, dropping message",
			zap.String("uuid", c.Uuid))
		return false
	}
}

// Write 从 SendBack 通道读取消息并发送给 WebSocket
// 写失败视为连接断开，直接退出
func (c *UserConn) Write() {
	zap.L().Info("ws write goroutine start", zap.String("uuid", c.Uuid))
	for {
		select {
		case <-c.done:
			return
		case payload, ok := <-c.SendBack:
			if !ok {
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				zap.L().Error(err.Error())
				return
			}
		}
	}
}

// Close 关闭连接，幂等
func (c *UserConn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if err := c.Conn.Close(); err != nil {
			zap.L().Error(err.Error())
		}
	})
}

// Done 连接关闭信号
func (c *UserConn) Done() <-chan struct{} {
	return c.done
}
