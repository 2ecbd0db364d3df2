package alliance

import (
	"context"
	"strings"
	"testing"
	"time"

	"alliance_chat_server/internal/dao/mysql/repository"
	"alliance_chat_server/internal/dto/request"
	"alliance_chat_server/internal/model"
	"alliance_chat_server/pkg/constants"
	"alliance_chat_server/pkg/enum/channel/channel_type_enum"
	"alliance_chat_server/pkg/enum/member/role_enum"
	"alliance_chat_server/pkg/errorx"
)

// ==================== 假实现 ====================

var errNotFound = errorx.New(errorx.CodeNotFound, "record not found")

type fakeAllianceRepo struct {
	alliances map[string]*model.Alliance // key: uuid
}

func newFakeAllianceRepo() *fakeAllianceRepo {
	return &fakeAllianceRepo{alliances: make(map[string]*model.Alliance)}
}

// 查询返回副本，模拟数据库每次读出新行的语义
func (f *fakeAllianceRepo) FindByUuid(uuid string) (*model.Alliance, error) {
	if a, ok := f.alliances[uuid]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, errNotFound
}

func (f *fakeAllianceRepo) FindByServerName(serverName string) (*model.Alliance, error) {
	for _, a := range f.alliances {
		if a.ServerName == serverName {
			cp := *a
			return &cp, nil
		}
	}
	return nil, errNotFound
}

func (f *fakeAllianceRepo) FindByInviteCode(inviteCode string) (*model.Alliance, error) {
	for _, a := range f.alliances {
		if a.InviteCode == inviteCode {
			cp := *a
			return &cp, nil
		}
	}
	return nil, errNotFound
}

func (f *fakeAllianceRepo) FindByUuids(uuids []string) ([]model.Alliance, error) {
	var out []model.Alliance
	for _, id := range uuids {
		if a, ok := f.alliances[id]; ok {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAllianceRepo) Create(alliance *model.Alliance) error {
	f.alliances[alliance.Uuid] = alliance
	return nil
}

func (f *fakeAllianceRepo) Update(alliance *model.Alliance) error {
	f.alliances[alliance.Uuid] = alliance
	return nil
}

func (f *fakeAllianceRepo) IncrementMemberCount(uuid string) error {
	if a, ok := f.alliances[uuid]; ok {
		a.MemberCnt++
	}
	return nil
}

func (f *fakeAllianceRepo) DecrementMemberCount(uuid string) error {
	if a, ok := f.alliances[uuid]; ok {
		a.MemberCnt--
	}
	return nil
}

func (f *fakeAllianceRepo) IncrementMessageCount(uuid string) error {
	if a, ok := f.alliances[uuid]; ok {
		a.MessageCnt++
	}
	return nil
}

type fakeMemberRepo struct {
	members map[string]*model.AllianceMember // key: allianceId|userId
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: make(map[string]*model.AllianceMember)}
}

func (f *fakeMemberRepo) FindByAllianceAndUser(allianceUuid, userUuid string) (*model.AllianceMember, error) {
	if m, ok := f.members[allianceUuid+"|"+userUuid]; ok {
		return m, nil
	}
	return nil, errNotFound
}

func (f *fakeMemberRepo) FindByAllianceUuid(allianceUuid string) ([]model.AllianceMember, error) {
	var out []model.AllianceMember
	for _, m := range f.members {
		if m.AllianceId == allianceUuid {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMemberRepo) FindByUserUuid(userUuid string) ([]model.AllianceMember, error) {
	var out []model.AllianceMember
	for _, m := range f.members {
		if m.UserId == userUuid {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMemberRepo) FindMembersWithUserInfo(allianceUuid string) ([]repository.MemberWithUserInfo, error) {
	var out []repository.MemberWithUserInfo
	for _, m := range f.members {
		if m.AllianceId == allianceUuid {
			out = append(out, repository.MemberWithUserInfo{UserId: m.UserId, Role: m.Role})
		}
	}
	return out, nil
}

func (f *fakeMemberRepo) GetMemberIdsByAllianceUuid(allianceUuid string) ([]string, error) {
	var out []string
	for _, m := range f.members {
		if m.AllianceId == allianceUuid {
			out = append(out, m.UserId)
		}
	}
	return out, nil
}

func (f *fakeMemberRepo) DistinctLanguagesByAllianceUuid(allianceUuid string) ([]string, error) {
	return nil, nil
}

func (f *fakeMemberRepo) CountOnlineByAllianceUuid(allianceUuid string) (int64, error) {
	return 0, nil
}

func (f *fakeMemberRepo) Create(member *model.AllianceMember) error {
	f.members[member.AllianceId+"|"+member.UserId] = member
	return nil
}

func (f *fakeMemberRepo) UpdateRole(allianceUuid, userUuid string, role int8) error {
	if m, ok := f.members[allianceUuid+"|"+userUuid]; ok {
		m.Role = role
		return nil
	}
	return errNotFound
}

func (f *fakeMemberRepo) Delete(allianceUuid, userUuid string) error {
	delete(f.members, allianceUuid+"|"+userUuid)
	return nil
}

type fakeChannelRepo struct {
	channels []*model.Channel
}

func (f *fakeChannelRepo) FindByUuid(uuid string) (*model.Channel, error) {
	for _, ch := range f.channels {
		if ch.Uuid == uuid {
			return ch, nil
		}
	}
	return nil, errNotFound
}

func (f *fakeChannelRepo) FindByAllianceUuid(allianceUuid string) ([]model.Channel, error) {
	var out []model.Channel
	for _, ch := range f.channels {
		if ch.AllianceId == allianceUuid {
			out = append(out, *ch)
		}
	}
	return out, nil
}

func (f *fakeChannelRepo) FindByAllianceAndName(allianceUuid, name string) (*model.Channel, error) {
	for _, ch := range f.channels {
		if ch.AllianceId == allianceUuid && strings.EqualFold(ch.Name, name) {
			return ch, nil
		}
	}
	return nil, errNotFound
}

func (f *fakeChannelRepo) FindByAllianceAndAccessCode(allianceUuid, accessCode string) (*model.Channel, error) {
	return nil, errNotFound
}

func (f *fakeChannelRepo) Create(channel *model.Channel) error {
	f.channels = append(f.channels, channel)
	return nil
}

func (f *fakeChannelRepo) CountByAllianceUuid(allianceUuid string) (int64, error) {
	var cnt int64
	for _, ch := range f.channels {
		if ch.AllianceId == allianceUuid {
			cnt++
		}
	}
	return cnt, nil
}

// fakeCache 内存缓存假实现，SubmitTask 同步执行便于断言
type fakeCache struct {
	strings map[string]string
	sets    map[string]map[string]struct{}
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		strings: make(map[string]string),
		sets:    make(map[string]map[string]struct{}),
	}
}

func (f *fakeCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	f.strings[key] = value
	return nil
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	return f.strings[key], nil
}

func (f *fakeCache) GetOrError(ctx context.Context, key string) (string, error) {
	if v, ok := f.strings[key]; ok {
		return v, nil
	}
	return "", errNotFound
}

func (f *fakeCache) GetByPrefix(ctx context.Context, prefix string) (string, error) {
	return "", errNotFound
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	delete(f.strings, key)
	delete(f.sets, key)
	return nil
}

func (f *fakeCache) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range f.strings {
		if strings.HasPrefix(k, prefix) {
			delete(f.strings, k)
		}
	}
	return nil
}

func (f *fakeCache) DeleteByPatterns(ctx context.Context, patterns []string) error {
	for _, p := range patterns {
		_ = f.DeleteByPattern(ctx, p)
	}
	return nil
}

func (f *fakeCache) AddToSet(ctx context.Context, key string, members ...interface{}) error {
	set, ok := f.sets[key]
	if !ok {
		set = make(map[string]struct{})
		f.sets[key] = set
	}
	for _, m := range members {
		if s, ok := m.(string); ok {
			set[s] = struct{}{}
		}
	}
	return nil
}

func (f *fakeCache) GetSetMembers(ctx context.Context, key string) ([]string, error) {
	var out []string
	for m := range f.sets[key] {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeCache) RemoveFromSet(ctx context.Context, key string, members ...interface{}) error {
	for _, m := range members {
		if s, ok := m.(string); ok {
			delete(f.sets[key], s)
		}
	}
	return nil
}

func (f *fakeCache) SubmitTask(action func()) {
	action()
}

// ==================== 测试环境 ====================

type allianceTestEnv struct {
	svc      *allianceService
	alliance *fakeAllianceRepo
	member   *fakeMemberRepo
	channel  *fakeChannelRepo
}

func newAllianceTestEnv() *allianceTestEnv {
	allianceRepo := newFakeAllianceRepo()
	memberRepo := newFakeMemberRepo()
	channelRepo := &fakeChannelRepo{}
	repos := &repository.Repositories{
		Alliance: allianceRepo,
		Member:   memberRepo,
		Channel:  channelRepo,
	}
	return &allianceTestEnv{
		svc:      NewAllianceService(repos, newFakeCache()),
		alliance: allianceRepo,
		member:   memberRepo,
		channel:  channelRepo,
	}
}

// ==================== BootstrapOrJoin ====================

func TestBootstrapCreatesAllianceWithDefaults(t *testing.T) {
	env := newAllianceTestEnv()

	rsp, err := env.svc.BootstrapOrJoin("U_first", request.CreateAllianceRequest{ServerName: "S101"})
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if rsp.MyRole != role_enum.LEADER {
		t.Errorf("role = %d, want LEADER", rsp.MyRole)
	}
	if rsp.LeaderId != "U_first" {
		t.Errorf("leaderId = %q", rsp.LeaderId)
	}
	if len(rsp.InviteCode) != constants.INVITE_CODE_LENGTH {
		t.Errorf("invite code %q, want length %d", rsp.InviteCode, constants.INVITE_CODE_LENGTH)
	}
	if rsp.AutoTranslate != 1 {
		t.Errorf("auto translate default = %d, want 1", rsp.AutoTranslate)
	}

	// 默认生成 5 个频道，公告频道仅盟主/官员可发言
	channels, _ := env.channel.FindByAllianceUuid(rsp.Uuid)
	if len(channels) != 5 {
		t.Fatalf("default channels = %d, want 5", len(channels))
	}
	for _, ch := range channels {
		writeRoles := role_enum.RoleSet(ch.WriteRoles)
		if ch.Type == channel_type_enum.ANNOUNCEMENTS {
			if writeRoles.Permits(role_enum.MEMBER) {
				t.Error("announcements should not be writable by member")
			}
			if !writeRoles.Permits(role_enum.OFFICER) {
				t.Error("announcements should be writable by officer")
			}
		} else if !writeRoles.Permits(role_enum.MEMBER) {
			t.Errorf("channel %s should be writable by member", ch.Name)
		}
	}
}

func TestBootstrapSecondUserJoinsAsMember(t *testing.T) {
	env := newAllianceTestEnv()

	first, err := env.svc.BootstrapOrJoin("U_first", request.CreateAllianceRequest{ServerName: "S101"})
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	second, err := env.svc.BootstrapOrJoin("U_second", request.CreateAllianceRequest{ServerName: "S101"})
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if second.Uuid != first.Uuid {
		t.Errorf("should join the same alliance")
	}
	if second.MyRole != role_enum.MEMBER {
		t.Errorf("role = %d, want MEMBER", second.MyRole)
	}
	// 普通成员看不到邀请码
	if second.InviteCode != "" {
		t.Errorf("invite code should be hidden from member")
	}
	if a, _ := env.alliance.FindByUuid(first.Uuid); a.MemberCnt != 2 {
		t.Errorf("member count = %d, want 2", a.MemberCnt)
	}
}

func TestBootstrapIdempotentForSameUser(t *testing.T) {
	env := newAllianceTestEnv()

	first, _ := env.svc.BootstrapOrJoin("U1", request.CreateAllianceRequest{ServerName: "S101"})
	again, err := env.svc.BootstrapOrJoin("U1", request.CreateAllianceRequest{ServerName: "S101"})
	if err != nil {
		t.Fatalf("repeat: %v", err)
	}
	if again.Uuid != first.Uuid || again.MyRole != role_enum.LEADER {
		t.Errorf("repeated bootstrap should return same alliance and role")
	}
	if a, _ := env.alliance.FindByUuid(first.Uuid); a.MemberCnt != 1 {
		t.Errorf("member count = %d, want 1", a.MemberCnt)
	}
}

func TestBootstrapEmptyServerName(t *testing.T) {
	env := newAllianceTestEnv()
	if _, err := env.svc.BootstrapOrJoin("U1", request.CreateAllianceRequest{ServerName: "   "}); errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("empty server name should be invalid param")
	}
}

// ==================== JoinByInviteCode ====================

func TestJoinByInviteCode(t *testing.T) {
	env := newAllianceTestEnv()
	leaderRsp, _ := env.svc.BootstrapOrJoin("U_leader", request.CreateAllianceRequest{ServerName: "S101"})

	// 小写输入规范化后命中
	rsp, err := env.svc.JoinByInviteCode("U_new", strings.ToLower(leaderRsp.InviteCode))
	if err != nil {
		t.Fatalf("join by code: %v", err)
	}
	if rsp.Uuid != leaderRsp.Uuid || rsp.MyRole != role_enum.MEMBER {
		t.Errorf("unexpected join result: %+v", rsp)
	}

	// 重复加入幂等
	if _, err := env.svc.JoinByInviteCode("U_new", leaderRsp.InviteCode); err != nil {
		t.Fatalf("repeat join: %v", err)
	}
	if a, _ := env.alliance.FindByUuid(leaderRsp.Uuid); a.MemberCnt != 2 {
		t.Errorf("member count = %d, want 2", a.MemberCnt)
	}
}

func TestJoinByInvalidInviteCode(t *testing.T) {
	env := newAllianceTestEnv()
	for _, code := range []string{"", "SHORT", "WRONGCOD"} {
		if _, err := env.svc.JoinByInviteCode("U1", code); errorx.GetCode(err) != errorx.CodeInvalidCode {
			t.Errorf("code %q: got %d, want CodeInvalidCode", code, errorx.GetCode(err))
		}
	}
}

// ==================== RemoveMember / ChangeRole ====================

func TestRemoveMemberLeaderOnly(t *testing.T) {
	env := newAllianceTestEnv()
	leaderRsp, _ := env.svc.BootstrapOrJoin("U_leader", request.CreateAllianceRequest{ServerName: "S101"})
	_, _ = env.svc.BootstrapOrJoin("U_member", request.CreateAllianceRequest{ServerName: "S101"})
	allianceId := leaderRsp.Uuid

	// 普通成员无权移除
	if err := env.svc.RemoveMember(allianceId, "U_member", "U_leader"); errorx.GetCode(err) != errorx.CodeForbidden {
		t.Fatalf("member remove should be forbidden")
	}
	// 盟主不能移除自己
	if err := env.svc.RemoveMember(allianceId, "U_leader", "U_leader"); errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("self removal should be invalid param")
	}
	// 盟主移除成员
	if err := env.svc.RemoveMember(allianceId, "U_leader", "U_member"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := env.member.FindByAllianceAndUser(allianceId, "U_member"); !errorx.IsNotFound(err) {
		t.Error("member should be removed")
	}
	if a, _ := env.alliance.FindByUuid(allianceId); a.MemberCnt != 1 {
		t.Errorf("member count = %d, want 1", a.MemberCnt)
	}
}

func TestChangeRole(t *testing.T) {
	env := newAllianceTestEnv()
	leaderRsp, _ := env.svc.BootstrapOrJoin("U_leader", request.CreateAllianceRequest{ServerName: "S101"})
	_, _ = env.svc.BootstrapOrJoin("U_member", request.CreateAllianceRequest{ServerName: "S101"})
	allianceId := leaderRsp.Uuid

	// 提升为官员
	if err := env.svc.ChangeRole(allianceId, "U_leader", "U_member", role_enum.OFFICER); err != nil {
		t.Fatalf("promote: %v", err)
	}
	if m, _ := env.member.FindByAllianceAndUser(allianceId, "U_member"); m.Role != role_enum.OFFICER {
		t.Errorf("role = %d, want OFFICER", m.Role)
	}

	// 不能任命新盟主
	if err := env.svc.ChangeRole(allianceId, "U_leader", "U_member", role_enum.LEADER); errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Error("promoting to leader should be invalid param")
	}
	// 不能变更自己
	if err := env.svc.ChangeRole(allianceId, "U_leader", "U_leader", role_enum.OFFICER); errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Error("changing own role should be invalid param")
	}
	// 非盟主无权操作
	if err := env.svc.ChangeRole(allianceId, "U_member", "U_leader", role_enum.MEMBER); errorx.GetCode(err) != errorx.CodeForbidden {
		t.Error("non-leader change should be forbidden")
	}
}

// ==================== SetAutoTranslate / Stats / MemberIds ====================

func TestSetAutoTranslateLeaderOnly(t *testing.T) {
	env := newAllianceTestEnv()
	leaderRsp, _ := env.svc.BootstrapOrJoin("U_leader", request.CreateAllianceRequest{ServerName: "S101"})
	_, _ = env.svc.BootstrapOrJoin("U_member", request.CreateAllianceRequest{ServerName: "S101"})
	allianceId := leaderRsp.Uuid

	if err := env.svc.SetAutoTranslate(allianceId, "U_member", 0); errorx.GetCode(err) != errorx.CodeForbidden {
		t.Fatalf("member toggle should be forbidden")
	}
	if err := env.svc.SetAutoTranslate(allianceId, "U_leader", 0); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if a, _ := env.alliance.FindByUuid(allianceId); a.AutoTranslate != 0 {
		t.Errorf("auto translate = %d, want 0", a.AutoTranslate)
	}
}

func TestGetAllianceStatsRequiresMembership(t *testing.T) {
	env := newAllianceTestEnv()
	leaderRsp, _ := env.svc.BootstrapOrJoin("U_leader", request.CreateAllianceRequest{ServerName: "S101"})

	if _, err := env.svc.GetAllianceStats(leaderRsp.Uuid, "U_stranger"); errorx.GetCode(err) != errorx.CodeNotMember {
		t.Fatalf("stranger stats should be not member")
	}
	stats, err := env.svc.GetAllianceStats(leaderRsp.Uuid, "U_leader")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.MemberCnt != 1 || stats.ChannelCnt != 5 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestMemberIds(t *testing.T) {
	env := newAllianceTestEnv()
	leaderRsp, _ := env.svc.BootstrapOrJoin("U_leader", request.CreateAllianceRequest{ServerName: "S101"})
	_, _ = env.svc.BootstrapOrJoin("U_member", request.CreateAllianceRequest{ServerName: "S101"})

	ids, err := env.svc.MemberIds(leaderRsp.Uuid)
	if err != nil {
		t.Fatalf("member ids: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("got %d ids, want 2", len(ids))
	}
}
