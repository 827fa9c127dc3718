package message

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"huddle_chat_server/internal/dao/mysql/repository"
	myredis "huddle_chat_server/internal/dao/redis"
	"huddle_chat_server/internal/dto/request"
	"huddle_chat_server/internal/dto/respond"
	"huddle_chat_server/internal/model"
	"huddle_chat_server/internal/service/chat"
	"huddle_chat_server/pkg/constants"
	"huddle_chat_server/pkg/errorx"
	"huddle_chat_server/pkg/util/snowflake"
)

// MemberGate 成员资格校验依赖
// 由 group 包的 MemberGate 实现
type MemberGate interface {
	EnsureMember(groupId, userId string) error
}

// messageService 消息业务逻辑实现
type messageService struct {
	repos  *repository.Repositories
	cache  myredis.AsyncCacheService
	broker chat.MessageBroker
	gate   MemberGate
}

// NewMessageService 构造函数，注入所有依赖
func NewMessageService(
	repos *repository.Repositories,
	cacheService myredis.AsyncCacheService,
	broker chat.MessageBroker,
	gate MemberGate,
) *messageService {
	return &messageService{
		repos:  repos,
		cache:  cacheService,
		broker: broker,
		gate:   gate,
	}
}

// SendGroupMessage 发送群消息
// 流程：参数校验 -> 成员校验 -> 持久化 -> 广播
// 先落库再广播，广播失败消息也不会丢，订阅者下次翻页能拉到
func (m *messageService) SendGroupMessage(ctx context.Context, userId string, req request.SendGroupMessageRequest) (*respond.GroupMessageRespond, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "消息内容为空")
	}
	if len(content) > constants.MESSAGE_MAX_SIZE {
		return nil, errorx.New(errorx.CodeInvalidParam, "消息内容过长")
	}

	if err := m.gate.EnsureMember(req.GroupId, userId); err != nil {
		return nil, err
	}

	user, err := m.repos.User.FindByUuid(userId)
	if err != nil {
		zap.L().Error("查询发送者失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	message := model.Message{
		Uuid:      snowflake.GenerateID(),
		GroupUuid: req.GroupId,
		Content:   content,
		SendId:    user.Uuid,
		SendName:  user.Username,
		SendAt:    sql.NullTime{Time: time.Now(), Valid: true},
	}
	if err := m.repos.Message.Create(&message); err != nil {
		zap.L().Error("创建消息失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	messageRsp := toGroupMessageRespond(&message)
	event := respond.ChatEventRespond{
		Event:   "new_message",
		GroupId: req.GroupId,
		Message: &messageRsp,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		zap.L().Error(err.Error())
		return &messageRsp, nil
	}
	// 广播失败只记日志，消息已持久化
	if err := m.broker.Publish(ctx, req.GroupId, payload); err != nil {
		zap.L().Error("广播消息失败", zap.Error(err))
	}

	// 异步失效首页消息缓存
	m.cache.SubmitTask(func() {
		if err := m.cache.Delete(context.Background(), "group_messagelist_"+req.GroupId); err != nil {
			zap.L().Error(err.Error())
		}
	})

	return &messageRsp, nil
}

// GetGroupMessageList 分页获取群消息记录
// 按发送时间倒序（最新在前），返回条数不足一页即视为取完
// 只有首页走缓存，翻页直接查库
func (m *messageService) GetGroupMessageList(userId string, req request.GetGroupMessageListRequest) (*respond.GetGroupMessageListRespond, error) {
	if err := m.gate.EnsureMember(req.GroupId, userId); err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = constants.HISTORY_PAGE_LIMIT
	}

	firstPage := req.Offset == 0 && limit == constants.HISTORY_PAGE_LIMIT
	cacheKey := "group_messagelist_" + req.GroupId

	if firstPage {
		rspString, err := m.cache.Get(context.Background(), cacheKey)
		if err == nil && rspString != "" {
			var rsp respond.GetGroupMessageListRespond
			if err := json.Unmarshal([]byte(rspString), &rsp); err == nil {
				return &rsp, nil
			}
			zap.L().Error("Unmarshal message list cache error", zap.Error(err))
		} else if err != nil {
			zap.L().Error("Redis get error", zap.Error(err))
		}
	}

	messages, err := m.PageMessages(req.GroupId, limit, req.Offset)
	if err != nil {
		zap.L().Error("分页查询群消息失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	rsp := &respond.GetGroupMessageListRespond{
		List:      messages,
		Exhausted: len(messages) < limit,
	}

	if firstPage {
		m.cache.SubmitTask(func() {
			rspBytes, err := json.Marshal(rsp)
			if err != nil {
				zap.L().Error("Marshal message list error", zap.Error(err))
				return
			}
			if err := m.cache.Set(context.Background(), cacheKey, string(rspBytes), time.Minute*constants.REDIS_TIMEOUT); err != nil {
				zap.L().Error("Set cache error", zap.Error(err))
			}
		})
	}

	return rsp, nil
}

// PageMessages 按发送时间倒序取一页消息
// 实现 history.Pager，供时间线翻页使用，成员校验由调用方完成
func (m *messageService) PageMessages(groupId string, limit, offset int) ([]respond.GroupMessageRespond, error) {
	messages, err := m.repos.Message.PageByGroup(groupId, limit, offset)
	if err != nil {
		return nil, err
	}
	// 使用 make 初始化 len=0，确保序列化后是 [] 而不是 null
	list := make([]respond.GroupMessageRespond, 0, len(messages))
	for i := range messages {
		list = append(list, toGroupMessageRespond(&messages[i]))
	}
	return list, nil
}

// toGroupMessageRespond 数据库模型转响应 DTO
func toGroupMessageRespond(message *model.Message) respond.GroupMessageRespond {
	return respond.GroupMessageRespond{
		Uuid:     strconv.FormatInt(message.Uuid, 10),
		GroupId:  message.GroupUuid,
		SendId:   message.SendId,
		SendName: message.SendName,
		Content:  message.Content,
		SendAt:   message.SendAt.Time.Format("2006-01-02 15:04:05"),
	}
}
