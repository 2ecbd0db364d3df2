package chat

import (
	"encoding/json"
	"sync"
	"testing"

	"alliance_chat_server/internal/dto/request"
	"alliance_chat_server/internal/dto/respond"
	"alliance_chat_server/internal/model"
	"alliance_chat_server/pkg/enum/channel/channel_type_enum"
	"alliance_chat_server/pkg/errorx"
)

// ==================== 假实现 ====================

var errNotFound = errorx.New(errorx.CodeNotFound, "record not found")

// fakePipeline 可编程的消息管道假实现
type fakePipeline struct {
	sendRsp   *respond.NewMessageRespond
	sendErr   error
	editRsp   *respond.MessageEditedRespond
	deleteRsp *respond.MessageDeletedRespond
	alliance  string
}

func (f *fakePipeline) SendChannelMessage(req request.ChatEventRequest) (*respond.NewMessageRespond, error) {
	return f.sendRsp, f.sendErr
}

func (f *fakePipeline) EditMessage(req request.ChatEventRequest) (*respond.MessageEditedRespond, string, error) {
	return f.editRsp, f.alliance, nil
}

func (f *fakePipeline) DeleteMessage(req request.ChatEventRequest) (*respond.MessageDeletedRespond, string, error) {
	return f.deleteRsp, f.alliance, nil
}

// fakeChannelDir 频道目录假实现
type fakeChannelDir struct {
	accessErr error
	granted   []string
}

func (f *fakeChannelDir) CheckAccess(channelId, userId, intent string) error {
	return f.accessErr
}

func (f *fakeChannelDir) GrantedUserIds(channelId string) ([]string, error) {
	return f.granted, nil
}

// fakeAllianceDir 联盟目录假实现
type fakeAllianceDir struct {
	members []string
}

func (f *fakeAllianceDir) MemberIds(allianceId string) ([]string, error) {
	return f.members, nil
}

// fakeUserRepo 只实现测试需要的行为，记录在线状态变更
type fakeUserRepo struct {
	mu     sync.Mutex
	online map[string]int8
	users  map[string]*model.UserInfo
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		online: make(map[string]int8),
		users:  make(map[string]*model.UserInfo),
	}
}

func (f *fakeUserRepo) FindByUuid(uuid string) (*model.UserInfo, error) {
	if u, ok := f.users[uuid]; ok {
		return u, nil
	}
	return nil, errNotFound
}

func (f *fakeUserRepo) FindByUsername(username string) (*model.UserInfo, error) {
	return nil, errNotFound
}

func (f *fakeUserRepo) FindByUuids(uuids []string) ([]model.UserInfo, error) { return nil, nil }

func (f *fakeUserRepo) Create(user *model.UserInfo) error { return nil }

func (f *fakeUserRepo) UpdateUserInfo(user *model.UserInfo) error { return nil }

func (f *fakeUserRepo) UpdateOnlineStatus(uuid string, online int8) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.online[uuid] = online
	return nil
}

type fakeChannelRepo struct {
	channels map[string]*model.Channel
}

func (f *fakeChannelRepo) FindByUuid(uuid string) (*model.Channel, error) {
	if ch, ok := f.channels[uuid]; ok {
		return ch, nil
	}
	return nil, errNotFound
}

func (f *fakeChannelRepo) FindByAllianceUuid(allianceUuid string) ([]model.Channel, error) {
	return nil, nil
}

func (f *fakeChannelRepo) FindByAllianceAndName(allianceUuid, name string) (*model.Channel, error) {
	return nil, errNotFound
}

func (f *fakeChannelRepo) FindByAllianceAndAccessCode(allianceUuid, accessCode string) (*model.Channel, error) {
	return nil, errNotFound
}

func (f *fakeChannelRepo) Create(channel *model.Channel) error { return nil }

func (f *fakeChannelRepo) CountByAllianceUuid(allianceUuid string) (int64, error) { return 0, nil }

// ==================== 测试辅助 ====================

func newTestConn(userId string) *UserConn {
	return &UserConn{
		Uuid:     userId,
		SendBack: make(chan *MessageBack, 8),
	}
}

type wsEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// recvEvent 非阻塞读取连接的下一条下行事件
func recvEvent(t *testing.T, conn *UserConn) (*wsEnvelope, *MessageBack) {
	t.Helper()
	select {
	case mb := <-conn.SendBack:
		var env wsEnvelope
		if err := json.Unmarshal(mb.Message, &env); err != nil {
			t.Fatalf("unmarshal downlink: %v; raw=%s", err, mb.Message)
		}
		return &env, mb
	default:
		return nil, nil
	}
}

func requireNoEvent(t *testing.T, conn *UserConn, who string) {
	t.Helper()
	if env, _ := recvEvent(t, conn); env != nil {
		t.Fatalf("%s should not receive events, got %s", who, env.Event)
	}
}

func mustEvent(t *testing.T, conn *UserConn, want string) (*wsEnvelope, *MessageBack) {
	t.Helper()
	env, mb := recvEvent(t, conn)
	if env == nil {
		t.Fatalf("expected %s event, channel empty", want)
	}
	if env.Event != want {
		t.Fatalf("event = %s, want %s", env.Event, want)
	}
	return env, mb
}

// ==================== ConnRegistry ====================

func TestConnRegistryMultiDevice(t *testing.T) {
	r := NewConnRegistry()
	c1 := newTestConn("U1")
	c2 := newTestConn("U1")

	if cnt := r.Add(c1); cnt != 1 {
		t.Fatalf("first add cnt = %d", cnt)
	}
	if cnt := r.Add(c2); cnt != 2 {
		t.Fatalf("second add cnt = %d", cnt)
	}
	if r.OnlineCount() != 1 {
		t.Fatalf("online users = %d, want 1", r.OnlineCount())
	}
	if len(r.ConnectionsFor("U1")) != 2 {
		t.Fatalf("connections = %d, want 2", len(r.ConnectionsFor("U1")))
	}

	remaining, removed := r.Remove(c1)
	if !removed || remaining != 1 {
		t.Fatalf("remove c1: remaining=%d removed=%v", remaining, removed)
	}
	// 同一连接重复移除不算真正移除
	if _, removed := r.Remove(c1); removed {
		t.Fatal("double remove should report removed=false")
	}
	remaining, removed = r.Remove(c2)
	if !removed || remaining != 0 {
		t.Fatalf("remove c2: remaining=%d removed=%v", remaining, removed)
	}
	if r.OnlineCount() != 0 {
		t.Fatal("registry should be empty")
	}
}

func TestConnRegistryConcurrent(t *testing.T) {
	r := NewConnRegistry()
	var wg sync.WaitGroup
	conns := make([]*UserConn, 100)
	for i := range conns {
		conns[i] = newTestConn("U1")
	}
	for _, c := range conns {
		wg.Add(1)
		go func(c *UserConn) {
			defer wg.Done()
			r.Add(c)
		}(c)
	}
	wg.Wait()
	if got := len(r.ConnectionsFor("U1")); got != 100 {
		t.Fatalf("connections = %d, want 100", got)
	}
	for _, c := range conns {
		wg.Add(1)
		go func(c *UserConn) {
			defer wg.Done()
			r.Remove(c)
		}(c)
	}
	wg.Wait()
	if r.OnlineCount() != 0 {
		t.Fatal("registry should be empty after concurrent removes")
	}
}

// ==================== Hub 投递 ====================

func newDeliveryHub(pipeline *fakePipeline, channels *fakeChannelDir, alliances *fakeAllianceDir) *Hub {
	return NewHub(pipeline, channels, alliances, newFakeUserRepo(), &fakeChannelRepo{channels: map[string]*model.Channel{}})
}

func TestHubSendMessageEchoAndFanout(t *testing.T) {
	pipeline := &fakePipeline{
		sendRsp: &respond.NewMessageRespond{
			Message:   &respond.ChannelMessageRespond{MessageId: "12345", AllianceId: "A1"},
			ChannelId: "C1",
		},
	}
	h := newDeliveryHub(pipeline, &fakeChannelDir{}, &fakeAllianceDir{members: []string{"U1", "U2", "U3"}})

	sender := newTestConn("U1")
	peerA := newTestConn("U2")
	peerB := newTestConn("U2") // U2 双端在线
	h.registry.Add(sender)
	h.registry.Add(peerA)
	h.registry.Add(peerB)
	// U3 不在线

	raw, _ := json.Marshal(request.ChatEventRequest{Event: EventSendMessage, ChannelId: "C1", SendId: "U1"})
	h.dispatch(raw)

	// 发送者收到回显，msgUuid 用于投递状态回写
	_, mb := mustEvent(t, sender, EventNewMessage)
	if mb.Uuid != 12345 {
		t.Errorf("messageBack uuid = %d, want 12345", mb.Uuid)
	}
	mustEvent(t, peerA, EventNewMessage)
	mustEvent(t, peerB, EventNewMessage)
}

func TestHubPrivateChannelDeliversOnlyToGranted(t *testing.T) {
	pipeline := &fakePipeline{
		sendRsp: &respond.NewMessageRespond{
			Message:          &respond.ChannelMessageRespond{MessageId: "1", AllianceId: "A1"},
			ChannelId:        "C_priv",
			IsPrivateChannel: true,
		},
	}
	// 联盟有 U1/U2，但私密频道只授权 U1
	h := newDeliveryHub(pipeline,
		&fakeChannelDir{granted: []string{"U1"}},
		&fakeAllianceDir{members: []string{"U1", "U2"}})

	granted := newTestConn("U1")
	ungranted := newTestConn("U2")
	h.registry.Add(granted)
	h.registry.Add(ungranted)

	raw, _ := json.Marshal(request.ChatEventRequest{Event: EventSendMessage, ChannelId: "C_priv", SendId: "U1"})
	h.dispatch(raw)

	mustEvent(t, granted, EventNewMessage)
	requireNoEvent(t, ungranted, "ungranted member")
}

func TestHubPrivateChannelExcludesRemovedMember(t *testing.T) {
	pipeline := &fakePipeline{
		sendRsp: &respond.NewMessageRespond{
			Message:          &respond.ChannelMessageRespond{MessageId: "1", AllianceId: "A1"},
			ChannelId:        "C_priv",
			IsPrivateChannel: true,
		},
	}
	// U2 曾被授权，随后被移出联盟，授权记录残留
	h := newDeliveryHub(pipeline,
		&fakeChannelDir{granted: []string{"U1", "U2"}},
		&fakeAllianceDir{members: []string{"U1"}})

	granted := newTestConn("U1")
	removed := newTestConn("U2")
	h.registry.Add(granted)
	h.registry.Add(removed)

	raw, _ := json.Marshal(request.ChatEventRequest{Event: EventSendMessage, ChannelId: "C_priv", SendId: "U1"})
	h.dispatch(raw)

	mustEvent(t, granted, EventNewMessage)
	// 成员资格是外层闸门，残留授权不恢复投递
	requireNoEvent(t, removed, "removed member with stale grant")
}

// 三名成员的完整投递场景：公开频道全员可见，
// 私密议事频道只达被授权成员，退盟后即使授权残留也收不到
func TestHubAllianceDeliveryScenario(t *testing.T) {
	pipeline := &fakePipeline{}
	channels := &fakeChannelDir{}
	alliances := &fakeAllianceDir{members: []string{"M1", "M2", "M3"}}
	h := newDeliveryHub(pipeline, channels, alliances)

	m1 := newTestConn("M1")
	m2 := newTestConn("M2")
	m3 := newTestConn("M3")
	h.registry.Add(m1)
	h.registry.Add(m2)
	h.registry.Add(m3)

	// 公开频道：全员收到
	pipeline.sendRsp = &respond.NewMessageRespond{
		Message:   &respond.ChannelMessageRespond{MessageId: "1", AllianceId: "A_srv"},
		ChannelId: "C_general",
	}
	raw, _ := json.Marshal(request.ChatEventRequest{Event: EventSendMessage, ChannelId: "C_general", SendId: "M1"})
	h.dispatch(raw)
	mustEvent(t, m1, EventNewMessage)
	mustEvent(t, m2, EventNewMessage)
	mustEvent(t, m3, EventNewMessage)

	// 私密议事频道只授权 M1/M2：M3 不可见
	channels.granted = []string{"M1", "M2"}
	pipeline.sendRsp = &respond.NewMessageRespond{
		Message:          &respond.ChannelMessageRespond{MessageId: "2", AllianceId: "A_srv"},
		ChannelId:        "C_council",
		IsPrivateChannel: true,
	}
	raw, _ = json.Marshal(request.ChatEventRequest{Event: EventSendMessage, ChannelId: "C_council", SendId: "M2"})
	h.dispatch(raw)
	mustEvent(t, m1, EventNewMessage)
	mustEvent(t, m2, EventNewMessage)
	requireNoEvent(t, m3, "ungranted member")

	// M2 被移出联盟，授权残留，后续投递不再包含 M2
	alliances.members = []string{"M1", "M3"}
	pipeline.sendRsp = &respond.NewMessageRespond{
		Message:          &respond.ChannelMessageRespond{MessageId: "3", AllianceId: "A_srv"},
		ChannelId:        "C_council",
		IsPrivateChannel: true,
	}
	raw, _ = json.Marshal(request.ChatEventRequest{Event: EventSendMessage, ChannelId: "C_council", SendId: "M1"})
	h.dispatch(raw)
	mustEvent(t, m1, EventNewMessage)
	requireNoEvent(t, m2, "removed member")
	requireNoEvent(t, m3, "ungranted member")
}

func TestHubErrorOnlyToSender(t *testing.T) {
	pipeline := &fakePipeline{sendErr: errorx.New(errorx.CodeForbidden, "角色权限不足")}
	h := newDeliveryHub(pipeline, &fakeChannelDir{}, &fakeAllianceDir{members: []string{"U1", "U2"}})

	sender := newTestConn("U1")
	peer := newTestConn("U2")
	h.registry.Add(sender)
	h.registry.Add(peer)

	raw, _ := json.Marshal(request.ChatEventRequest{Event: EventSendMessage, ChannelId: "C1", SendId: "U1"})
	h.dispatch(raw)

	env, _ := mustEvent(t, sender, EventError)
	var data respond.WsErrorRespond
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("unmarshal error payload: %v", err)
	}
	if data.Code != errorx.CodeForbidden || data.Message != "角色权限不足" {
		t.Errorf("error payload = %+v", data)
	}
	requireNoEvent(t, peer, "peer")
}

func TestHubUnknownEvent(t *testing.T) {
	h := newDeliveryHub(&fakePipeline{}, &fakeChannelDir{}, &fakeAllianceDir{})
	sender := newTestConn("U1")
	h.registry.Add(sender)

	raw, _ := json.Marshal(request.ChatEventRequest{Event: "poke", SendId: "U1"})
	h.dispatch(raw)

	mustEvent(t, sender, EventError)
}

// ==================== Typing ====================

func TestHubTypingExcludesSender(t *testing.T) {
	userRepo := newFakeUserRepo()
	userRepo.users["U1"] = &model.UserInfo{Uuid: "U1", Nickname: "alice"}
	channelRepo := &fakeChannelRepo{channels: map[string]*model.Channel{
		"C1": {Uuid: "C1", AllianceId: "A1", Type: channel_type_enum.GENERAL},
	}}
	h := NewHub(&fakePipeline{}, &fakeChannelDir{}, &fakeAllianceDir{members: []string{"U1", "U2"}},
		userRepo, channelRepo)

	sender := newTestConn("U1")
	peer := newTestConn("U2")
	h.registry.Add(sender)
	h.registry.Add(peer)

	raw, _ := json.Marshal(request.ChatEventRequest{Event: EventTypingStart, ChannelId: "C1", SendId: "U1"})
	h.dispatch(raw)

	env, _ := mustEvent(t, peer, EventUserTyping)
	var data respond.UserTypingRespond
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("unmarshal typing payload: %v", err)
	}
	if data.UserId != "U1" || data.Nickname != "alice" || data.ChannelId != "C1" {
		t.Errorf("typing payload = %+v", data)
	}
	// 发送者自己不收输入状态
	requireNoEvent(t, sender, "typing sender")
}

func TestHubTypingSilentlyDroppedWithoutWriteAccess(t *testing.T) {
	channelRepo := &fakeChannelRepo{channels: map[string]*model.Channel{
		"C1": {Uuid: "C1", AllianceId: "A1", Type: channel_type_enum.GENERAL},
	}}
	h := NewHub(&fakePipeline{},
		&fakeChannelDir{accessErr: errorx.New(errorx.CodeForbidden, "角色权限不足")},
		&fakeAllianceDir{members: []string{"U1", "U2"}},
		newFakeUserRepo(), channelRepo)

	sender := newTestConn("U1")
	peer := newTestConn("U2")
	h.registry.Add(sender)
	h.registry.Add(peer)

	raw, _ := json.Marshal(request.ChatEventRequest{Event: EventTypingStart, ChannelId: "C1", SendId: "U1"})
	h.dispatch(raw)

	// 无写权限：不投递，也不回错误
	requireNoEvent(t, peer, "peer")
	requireNoEvent(t, sender, "sender")
}

// ==================== 登录/登出 ====================

func TestHubLoginLogoutLifecycle(t *testing.T) {
	userRepo := newFakeUserRepo()
	h := NewHub(&fakePipeline{}, &fakeChannelDir{}, &fakeAllianceDir{}, userRepo, &fakeChannelRepo{})

	c1 := newTestConn("U1")
	c2 := newTestConn("U1")

	h.onLogin(c1)
	mustEvent(t, c1, EventConnected)
	if userRepo.online["U1"] != 1 {
		t.Fatal("first connection should mark user online")
	}

	// 第二条连接建立不重复置位
	userRepo.online["U1"] = 9
	h.onLogin(c2)
	mustEvent(t, c2, EventConnected)
	if userRepo.online["U1"] != 9 {
		t.Fatal("second connection should not touch online status")
	}

	h.onLogout(c1)
	if userRepo.online["U1"] != 9 {
		t.Fatal("user still online with one connection left")
	}
	// c1 的下行通道已关闭
	if _, ok := <-c1.SendBack; ok {
		t.Fatal("c1 SendBack should be closed and drained")
	}

	h.onLogout(c2)
	if userRepo.online["U1"] != 0 {
		t.Fatal("last logout should mark user offline")
	}
	// 重复登出不 panic、不重复关闭
	h.onLogout(c2)
}
