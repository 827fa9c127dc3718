package group

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"huddle_chat_server/internal/dao/mysql/repository"
	myredis "huddle_chat_server/internal/dao/redis"
	"huddle_chat_server/internal/dto/request"
	"huddle_chat_server/internal/dto/respond"
	"huddle_chat_server/internal/model"
	"huddle_chat_server/pkg/constants"
	"huddle_chat_server/pkg/errorx"
	"huddle_chat_server/pkg/util/random"
)

// joinCodeMaxAttempts 服务端生成邀请码的最大重试次数
// 62^8 的空间内碰撞概率极低，重试多次仍冲突说明出了别的问题
const joinCodeMaxAttempts = 5

// groupService 群组业务逻辑实现
// 通过构造函数注入 Repository 和 Cache 依赖
type groupService struct {
	repos *repository.Repositories
	cache myredis.AsyncCacheService
}

// NewGroupService 构造函数，注入所有依赖
func NewGroupService(repos *repository.Repositories, cacheService myredis.AsyncCacheService) *groupService {
	return &groupService{
		repos: repos,
		cache: cacheService,
	}
}

// CreateGroup 创建群聊
// 创建者自动成为群主和首个成员
// 未指定邀请码时服务端生成 8 位随机码，与已有码冲突时换码重试；
// 指定了邀请码而该码已被占用时返回 CodeConflict
func (g *groupService) CreateGroup(userId string, groupReq request.CreateGroupRequest) (*respond.CreateGroupRespond, error) {
	generated := groupReq.JoinCode == ""

	var group model.GroupInfo
	for attempt := 0; ; attempt++ {
		joinCode := groupReq.JoinCode
		if generated {
			joinCode = random.GetRandomString(constants.JOIN_CODE_LENGTH)
		}
		group = model.GroupInfo{
			Uuid:      uuid.NewString(),
			Name:      groupReq.Name,
			Avatar:    groupReq.Avatar,
			JoinCode:  joinCode,
			OwnerId:   userId,
			MemberCnt: 1,
		}

		err := g.repos.Transaction(func(txRepos *repository.Repositories) error {
			if err := txRepos.Group.Create(&group); err != nil {
				return err
			}
			member := model.GroupMember{
				GroupUuid: group.Uuid,
				UserUuid:  userId,
				Role:      3,
			}
			return txRepos.GroupMember.Create(&member)
		})
		if err == nil {
			break
		}
		if errorx.GetCode(err) == errorx.CodeConflict {
			if !generated {
				return nil, errorx.New(errorx.CodeConflict, "邀请码已被占用")
			}
			if attempt+1 < joinCodeMaxAttempts {
				continue // 换码重试
			}
		}
		zap.L().Error("创建群组失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	g.invalidateGroupList(userId)

	return &respond.CreateGroupRespond{
		Uuid:     group.Uuid,
		Name:     group.Name,
		Avatar:   group.Avatar,
		JoinCode: group.JoinCode,
	}, nil
}

// JoinGroup 通过邀请码加入群聊
// 邀请码无效返回 CodeNotFound，重复加群返回 CodeConflict
func (g *groupService) JoinGroup(userId string, joinReq request.JoinGroupRequest) (*respond.CreateGroupRespond, error) {
	group, err := g.repos.Group.FindByJoinCode(joinReq.JoinCode)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeNotFound, "邀请码无效")
		}
		zap.L().Error("查询邀请码失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	err = g.repos.Transaction(func(txRepos *repository.Repositories) error {
		member := model.GroupMember{
			GroupUuid: group.Uuid,
			UserUuid:  userId,
			Role:      1,
		}
		if err := txRepos.GroupMember.Create(&member); err != nil {
			return err
		}
		return txRepos.Group.IncrementMemberCount(group.Uuid)
	})
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeConflict {
			return nil, errorx.New(errorx.CodeConflict, "已经在群里了")
		}
		zap.L().Error("加入群组失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	g.invalidateGroupList(userId)

	return &respond.CreateGroupRespond{
		Uuid:     group.Uuid,
		Name:     group.Name,
		Avatar:   group.Avatar,
		JoinCode: group.JoinCode,
	}, nil
}

// GetGroupList 获取用户加入的群列表
// 每个群带上最新一条消息，供前端列表预览
func (g *groupService) GetGroupList(userId string) ([]respond.GetGroupListRespond, error) {
	cacheKey := "group_list_" + userId

	// 1. 尝试从缓存获取 (Happy Path)
	rspString, err := g.cache.Get(context.Background(), cacheKey)
	if err == nil && rspString != "" {
		var groupListRsp []respond.GetGroupListRespond
		if err := json.Unmarshal([]byte(rspString), &groupListRsp); err == nil {
			return groupListRsp, nil
		}
		// 缓存数据脏了，打个日志，继续往下查库
		zap.L().Error("Unmarshal group list cache error", zap.Error(err))
	} else if err != nil {
		// Redis 连接错误等，记录日志但不中断业务
		zap.L().Error("Redis get error", zap.Error(err))
	}

	// 2. 缓存未命中 或 缓存出错 -> 查询数据库
	groupList, err := g.repos.Group.ListByMember(userId)
	if err != nil {
		zap.L().Error("Find group list from DB error", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	// 3. 构建返回结果
	// 使用 make 初始化 len=0，确保序列化后是 [] 而不是 null
	groupListRsp := make([]respond.GetGroupListRespond, 0, len(groupList))
	for _, group := range groupList {
		item := respond.GetGroupListRespond{
			Uuid:      group.Uuid,
			Name:      group.Name,
			Avatar:    group.Avatar,
			JoinCode:  group.JoinCode,
			OwnerId:   group.OwnerId,
			MemberCnt: group.MemberCnt,
			CreatedAt: group.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		latest, err := g.repos.Message.LatestByGroup(group.Uuid)
		if err == nil {
			item.LastMessage = &respond.GroupMessageRespond{
				Uuid:     strconv.FormatInt(latest.Uuid, 10),
				GroupId:  latest.GroupUuid,
				SendId:   latest.SendId,
				SendName: latest.SendName,
				Content:  latest.Content,
				SendAt:   latest.SendAt.Time.Format("2006-01-02 15:04:05"),
			}
		} else if !errorx.IsNotFound(err) {
			zap.L().Error("查询群最新消息失败", zap.Error(err))
		}
		groupListRsp = append(groupListRsp, item)
	}

	// 4. 回写缓存 (异步)
	// 最新消息随时在变，TTL 放短
	g.cache.SubmitTask(func() {
		rspBytes, err := json.Marshal(groupListRsp)
		if err != nil {
			zap.L().Error("Marshal group list error", zap.Error(err))
			return
		}
		if err := g.cache.Set(context.Background(), cacheKey, string(rspBytes), time.Minute*constants.REDIS_TIMEOUT); err != nil {
			zap.L().Error("Set cache error", zap.Error(err))
		}
	})

	return groupListRsp, nil
}

// GetGroupMemberList 获取群成员列表
func (g *groupService) GetGroupMemberList(groupId string) ([]respond.GetGroupMemberListRespond, error) {
	members, err := g.repos.GroupMember.FindMembersWithUserInfo(groupId)
	if err != nil {
		zap.L().Error("查询群成员失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	memberListRsp := make([]respond.GetGroupMemberListRespond, 0, len(members))
	for _, m := range members {
		memberListRsp = append(memberListRsp, respond.GetGroupMemberListRespond{
			UserId:   m.UserId,
			Username: m.Username,
			Avatar:   m.Avatar,
		})
	}
	return memberListRsp, nil
}

// invalidateGroupList 异步失效用户的群列表缓存
func (g *groupService) invalidateGroupList(userId string) {
	g.cache.SubmitTask(func() {
		if err := g.cache.Delete(context.Background(), "group_list_"+userId); err != nil {
			zap.L().Error(err.Error())
		}
	})
}
