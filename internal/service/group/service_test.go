package group

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"huddle_chat_server/internal/dao/mysql/repository"
	"huddle_chat_server/internal/dto/request"
	"huddle_chat_server/internal/dto/respond"
	"huddle_chat_server/internal/model"
	"huddle_chat_server/pkg/constants"
	"huddle_chat_server/pkg/errorx"
)

// ==================== 测试替身 ====================

type fakeGroupRepo struct {
	groups []model.GroupInfo
	calls  int

	createConflicts int      // 前 N 次 Create 返回唯一键冲突
	attemptedCodes  []string // Create 收到过的邀请码
	incremented     []string // IncrementMemberCount 收到的群
}

func (f *fakeGroupRepo) FindByUuid(uuid string) (*model.GroupInfo, error) {
	for i := range f.groups {
		if f.groups[i].Uuid == uuid {
			return &f.groups[i], nil
		}
	}
	return nil, errorx.New(errorx.CodeNotFound, "群组不存在")
}
func (f *fakeGroupRepo) FindByJoinCode(joinCode string) (*model.GroupInfo, error) {
	for i := range f.groups {
		if f.groups[i].JoinCode == joinCode {
			return &f.groups[i], nil
		}
	}
	return nil, errorx.New(errorx.CodeNotFound, "群组不存在")
}
func (f *fakeGroupRepo) ListByMember(userUuid string) ([]model.GroupInfo, error) {
	f.calls++
	return f.groups, nil
}
func (f *fakeGroupRepo) Create(group *model.GroupInfo) error {
	f.attemptedCodes = append(f.attemptedCodes, group.JoinCode)
	if f.createConflicts > 0 {
		f.createConflicts--
		return errorx.New(errorx.CodeConflict, "邀请码已存在")
	}
	f.groups = append(f.groups, *group)
	return nil
}
func (f *fakeGroupRepo) IncrementMemberCount(uuid string) error {
	f.incremented = append(f.incremented, uuid)
	return nil
}

type fakeGroupMemberRepo struct {
	members map[string]bool // "{groupId}/{userId}" -> 是否成员
	calls   int

	createErr error
	added     []model.GroupMember
}

func (f *fakeGroupMemberRepo) Create(member *model.GroupMember) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.added = append(f.added, *member)
	return nil
}
func (f *fakeGroupMemberRepo) IsMember(groupUuid, userUuid string) (bool, error) {
	f.calls++
	return f.members[groupUuid+"/"+userUuid], nil
}
func (f *fakeGroupMemberRepo) FindMembersWithUserInfo(groupUuid string) ([]repository.GroupMemberWithUserInfo, error) {
	return []repository.GroupMemberWithUserInfo{
		{UserId: "U_1", Username: "alice", Avatar: "a.png"},
		{UserId: "U_2", Username: "bob", Avatar: "b.png"},
	}, nil
}

type fakeMessageRepo struct {
	latest map[string]*model.Message
}

func (f *fakeMessageRepo) Create(message *model.Message) error { return nil }
func (f *fakeMessageRepo) PageByGroup(groupUuid string, limit, offset int) ([]model.Message, error) {
	return []model.Message{}, nil
}
func (f *fakeMessageRepo) LatestByGroup(groupUuid string) (*model.Message, error) {
	if msg, ok := f.latest[groupUuid]; ok {
		return msg, nil
	}
	return nil, errorx.New(errorx.CodeNotFound, "无消息")
}

// fakeCache 内存缓存，SubmitTask 同步执行便于断言
type fakeCache struct {
	mu sync.Mutex
	m  map[string]string
}

func newFakeCache() *fakeCache { return &fakeCache{m: make(map[string]string)} }

func (f *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.m[key] = value
	return nil
}
func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.m[key], nil
}
func (f *fakeCache) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.m, key)
	return nil
}
func (f *fakeCache) DeleteByPattern(ctx context.Context, pattern string) error     { return nil }
func (f *fakeCache) DeleteByPatterns(ctx context.Context, patterns []string) error { return nil }
func (f *fakeCache) SubmitTask(action func())                                      { action() }

// ==================== MemberGate ====================

func TestMemberGateAllowsMember(t *testing.T) {
	memberRepo := &fakeGroupMemberRepo{members: map[string]bool{"G_1/U_1": true}}
	cache := newFakeCache()
	gate := NewMemberGate(&repository.Repositories{GroupMember: memberRepo}, cache)

	if err := gate.EnsureMember("G_1", "U_1"); err != nil {
		t.Fatalf("member rejected: %v", err)
	}
	// 正向结果进缓存
	if v, _ := cache.Get(context.Background(), "group_member_G_1_U_1"); v != "1" {
		t.Fatalf("membership not cached: %q", v)
	}

	// 第二次命中缓存，不再查库
	calls := memberRepo.calls
	if err := gate.EnsureMember("G_1", "U_1"); err != nil {
		t.Fatalf("member rejected on cache hit: %v", err)
	}
	if memberRepo.calls != calls {
		t.Fatal("DB queried despite cache hit")
	}
}

func TestMemberGateRejectsNonMember(t *testing.T) {
	memberRepo := &fakeGroupMemberRepo{members: map[string]bool{}}
	cache := newFakeCache()
	gate := NewMemberGate(&repository.Repositories{GroupMember: memberRepo}, cache)

	err := gate.EnsureMember("G_1", "U_9")
	if errorx.GetCode(err) != errorx.CodeUnauthorized {
		t.Fatalf("err = %v, want CodeUnauthorized", err)
	}
	// 负向结果不缓存
	if v, _ := cache.Get(context.Background(), "group_member_G_1_U_9"); v != "" {
		t.Fatalf("negative result cached: %q", v)
	}
}

// ==================== 建群与入群 ====================

func isAlphanumeric(s string) bool {
	for _, r := range s {
		if !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9') {
			return false
		}
	}
	return true
}

func TestCreateGroupGeneratesJoinCode(t *testing.T) {
	groupRepo := &fakeGroupRepo{}
	memberRepo := &fakeGroupMemberRepo{}
	cache := newFakeCache()
	cache.m["group_list_U_1"] = "stale"
	svc := NewGroupService(&repository.Repositories{Group: groupRepo, GroupMember: memberRepo}, cache)

	rsp, err := svc.CreateGroup("U_1", request.CreateGroupRequest{Name: "新群", Avatar: "g.png"})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if len(rsp.JoinCode) != constants.JOIN_CODE_LENGTH || !isAlphanumeric(rsp.JoinCode) {
		t.Fatalf("join code = %q", rsp.JoinCode)
	}
	if rsp.Avatar != "g.png" {
		t.Fatalf("avatar = %q", rsp.Avatar)
	}
	// 创建者成为群主
	if len(memberRepo.added) != 1 || memberRepo.added[0].Role != 3 ||
		memberRepo.added[0].UserUuid != "U_1" || memberRepo.added[0].GroupUuid != rsp.Uuid {
		t.Fatalf("owner membership = %+v", memberRepo.added)
	}
	// 群列表缓存失效
	if v, _ := cache.Get(context.Background(), "group_list_U_1"); v != "" {
		t.Fatalf("group list cache not invalidated: %q", v)
	}
}

func TestCreateGroupRetriesOnJoinCodeCollision(t *testing.T) {
	groupRepo := &fakeGroupRepo{createConflicts: 1}
	svc := NewGroupService(&repository.Repositories{Group: groupRepo, GroupMember: &fakeGroupMemberRepo{}}, newFakeCache())

	rsp, err := svc.CreateGroup("U_1", request.CreateGroupRequest{Name: "碰撞群"})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if len(groupRepo.attemptedCodes) != 2 {
		t.Fatalf("attempts = %d, want 2", len(groupRepo.attemptedCodes))
	}
	// 重试必须换一个新码
	if groupRepo.attemptedCodes[0] == groupRepo.attemptedCodes[1] {
		t.Fatalf("retry reused colliding code %q", groupRepo.attemptedCodes[0])
	}
	for _, code := range groupRepo.attemptedCodes {
		if len(code) != constants.JOIN_CODE_LENGTH || !isAlphanumeric(code) {
			t.Fatalf("generated code = %q", code)
		}
	}
	if rsp.JoinCode != groupRepo.attemptedCodes[1] {
		t.Fatalf("join code = %q, want %q", rsp.JoinCode, groupRepo.attemptedCodes[1])
	}
}

func TestCreateGroupCustomCodeConflictFailsFast(t *testing.T) {
	groupRepo := &fakeGroupRepo{createConflicts: 5}
	svc := NewGroupService(&repository.Repositories{Group: groupRepo, GroupMember: &fakeGroupMemberRepo{}}, newFakeCache())

	_, err := svc.CreateGroup("U_1", request.CreateGroupRequest{Name: "定制码群", JoinCode: "mycode12"})
	if errorx.GetCode(err) != errorx.CodeConflict {
		t.Fatalf("err = %v, want CodeConflict", err)
	}
	// 客户端自选的码不重试
	if len(groupRepo.attemptedCodes) != 1 || groupRepo.attemptedCodes[0] != "mycode12" {
		t.Fatalf("attempts = %v, want single mycode12", groupRepo.attemptedCodes)
	}
}

func TestJoinGroupByCode(t *testing.T) {
	groupRepo := &fakeGroupRepo{groups: []model.GroupInfo{
		{Uuid: "G_1", Name: "讨论组", Avatar: "g1.png", JoinCode: "abc12345", OwnerId: "U_0", MemberCnt: 1},
	}}
	memberRepo := &fakeGroupMemberRepo{}
	cache := newFakeCache()
	cache.m["group_list_U_2"] = "stale"
	svc := NewGroupService(&repository.Repositories{Group: groupRepo, GroupMember: memberRepo}, cache)

	rsp, err := svc.JoinGroup("U_2", request.JoinGroupRequest{JoinCode: "abc12345"})
	if err != nil {
		t.Fatalf("join group: %v", err)
	}
	if rsp.Uuid != "G_1" || rsp.Avatar != "g1.png" {
		t.Fatalf("rsp = %+v", rsp)
	}
	if len(memberRepo.added) != 1 || memberRepo.added[0].Role != 1 || memberRepo.added[0].UserUuid != "U_2" {
		t.Fatalf("membership = %+v", memberRepo.added)
	}
	if len(groupRepo.incremented) != 1 || groupRepo.incremented[0] != "G_1" {
		t.Fatalf("member count increments = %v", groupRepo.incremented)
	}
	if v, _ := cache.Get(context.Background(), "group_list_U_2"); v != "" {
		t.Fatalf("group list cache not invalidated: %q", v)
	}
}

func TestJoinGroupInvalidCode(t *testing.T) {
	svc := NewGroupService(&repository.Repositories{Group: &fakeGroupRepo{}, GroupMember: &fakeGroupMemberRepo{}}, newFakeCache())

	_, err := svc.JoinGroup("U_2", request.JoinGroupRequest{JoinCode: "nosuch99"})
	if errorx.GetCode(err) != errorx.CodeNotFound {
		t.Fatalf("err = %v, want CodeNotFound", err)
	}
}

func TestJoinGroupTwiceConflicts(t *testing.T) {
	groupRepo := &fakeGroupRepo{groups: []model.GroupInfo{
		{Uuid: "G_1", Name: "讨论组", JoinCode: "abc12345", OwnerId: "U_0", MemberCnt: 2},
	}}
	memberRepo := &fakeGroupMemberRepo{createErr: errorx.New(errorx.CodeConflict, "已是成员")}
	svc := NewGroupService(&repository.Repositories{Group: groupRepo, GroupMember: memberRepo}, newFakeCache())

	_, err := svc.JoinGroup("U_2", request.JoinGroupRequest{JoinCode: "abc12345"})
	if errorx.GetCode(err) != errorx.CodeConflict {
		t.Fatalf("err = %v, want CodeConflict", err)
	}
}

// ==================== GroupService ====================

func TestGetGroupListWithLatestPreview(t *testing.T) {
	groupRepo := &fakeGroupRepo{groups: []model.GroupInfo{
		{
			Model:     gorm.Model{CreatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)},
			Uuid:      "G_1",
			Name:      "讨论组",
			Avatar:    "g1.png",
			JoinCode:  "abc12345",
			OwnerId:   "U_1",
			MemberCnt: 2,
		},
		{
			Model:    gorm.Model{CreatedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)},
			Uuid:     "G_2",
			Name:     "新群",
			JoinCode: "xyz98765",
			OwnerId:  "U_1",
		},
	}}
	msgRepo := &fakeMessageRepo{latest: map[string]*model.Message{
		"G_1": {Uuid: 42, GroupUuid: "G_1", Content: "最新消息", SendId: "U_2", SendName: "bob"},
	}}
	cache := newFakeCache()
	svc := NewGroupService(&repository.Repositories{Group: groupRepo, Message: msgRepo}, cache)

	list, err := svc.GetGroupList("U_1")
	if err != nil {
		t.Fatalf("get list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list = %d, want 2", len(list))
	}
	if list[0].LastMessage == nil || list[0].LastMessage.Uuid != "42" {
		t.Fatalf("G_1 preview = %+v", list[0].LastMessage)
	}
	if list[0].Avatar != "g1.png" {
		t.Fatalf("G_1 avatar = %q", list[0].Avatar)
	}
	// 无消息的群没有预览
	if list[1].LastMessage != nil {
		t.Fatalf("G_2 should have no preview, got %+v", list[1].LastMessage)
	}

	// 回写了缓存，第二次不再查库
	calls := groupRepo.calls
	if _, err := svc.GetGroupList("U_1"); err != nil {
		t.Fatalf("get cached list: %v", err)
	}
	if groupRepo.calls != calls {
		t.Fatal("DB queried despite cache hit")
	}
}

func TestGetGroupListCacheHit(t *testing.T) {
	cached := []respond.GetGroupListRespond{{Uuid: "G_9", Name: "缓存群"}}
	payload, err := json.Marshal(cached)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	cache := newFakeCache()
	cache.m["group_list_U_1"] = string(payload)

	groupRepo := &fakeGroupRepo{}
	svc := NewGroupService(&repository.Repositories{Group: groupRepo}, cache)

	list, err := svc.GetGroupList("U_1")
	if err != nil {
		t.Fatalf("get list: %v", err)
	}
	if len(list) != 1 || list[0].Uuid != "G_9" {
		t.Fatalf("list = %+v", list)
	}
	if groupRepo.calls != 0 {
		t.Fatal("DB queried despite cache hit")
	}
}

func TestGetGroupMemberList(t *testing.T) {
	svc := NewGroupService(&repository.Repositories{GroupMember: &fakeGroupMemberRepo{}}, newFakeCache())

	members, err := svc.GetGroupMemberList("G_1")
	if err != nil {
		t.Fatalf("get members: %v", err)
	}
	if len(members) != 2 || members[0].Username != "alice" || members[1].Username != "bob" {
		t.Fatalf("members = %+v", members)
	}
}
