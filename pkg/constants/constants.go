package constants

import "time"

const (
	CHANNEL_SIZE     = 100  // 通道大小（广播缓冲、客户端发送缓冲）
	MESSAGE_MAX_SIZE = 4096 // 单条消息最大字节数
	REDIS_TIMEOUT    = 1    // redis timeout (分钟)

	JOIN_CODE_LENGTH   = 8  // 群邀请码固定长度
	JOIN_CODE_MIN_LEN  = 4  // 客户端提交的邀请码最小长度
	JOIN_CODE_MAX_LEN  = 16 // 客户端提交的邀请码最大长度
	HISTORY_PAGE_LIMIT = 20 // 历史消息默认分页大小
)

const (
	// HEARTBEAT_INTERVAL 在线状态心跳间隔
	HEARTBEAT_INTERVAL = 3 * time.Second
	// TYPING_DEBOUNCE 输入状态回落时间，超时后 writer 回落为 reader
	TYPING_DEBOUNCE = 2 * time.Second
	// PRESENCE_STALE_WINDOW 在线状态过期窗口，超过该时长的条目在读取时被过滤
	PRESENCE_STALE_WINDOW = 20 * time.Second
)
