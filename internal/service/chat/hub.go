// hub.go
// 核心职责：单机模式下的聊天 Hub 实现
// 1. 维护在线用户连接（登录/登出事件循环）
// 2. 上行事件分发：send_message / edit_message / delete_message / typing_start / typing_stop
// 3. 下行投递：公开频道发给全体联盟成员，私密频道只发给被授权成员
// 4. 业务错误只回给出错连接，不广播
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"alliance_chat_server/internal/dao/mysql/repository"
	"alliance_chat_server/internal/dto/request"
	"alliance_chat_server/internal/dto/respond"
	"alliance_chat_server/pkg/constants"
	"alliance_chat_server/pkg/enum/channel/channel_type_enum"
	"alliance_chat_server/pkg/errorx"
)

// 上行事件类型
const (
	EventSendMessage   = "send_message"
	EventEditMessage   = "edit_message"
	EventDeleteMessage = "delete_message"
	EventTypingStart   = "typing_start"
	EventTypingStop    = "typing_stop"
)

// 下行事件类型
const (
	EventConnected      = "connected"
	EventNewMessage     = "new_message"
	EventMessageEdited  = "message_edited"
	EventMessageDeleted = "message_deleted"
	EventUserTyping     = "user_typing"
	EventUserStopTyping = "user_stop_typing"
	EventError          = "error"
)

// MessagePipeline 消息管道接口，由 message service 实现
// Hub 只负责路由投递，鉴权、落库、翻译都在管道内完成
type MessagePipeline interface {
	SendChannelMessage(req request.ChatEventRequest) (*respond.NewMessageRespond, error)
	EditMessage(req request.ChatEventRequest) (*respond.MessageEditedRespond, string, error)
	DeleteMessage(req request.ChatEventRequest) (*respond.MessageDeletedRespond, string, error)
}

// ChannelDirectory 频道目录接口，由 channel service 实现
type ChannelDirectory interface {
	// CheckAccess 校验用户对频道的访问权限
	CheckAccess(channelId, userId, intent string) error
	// GrantedUserIds 私密频道的授权用户集合，投递时实时解析
	GrantedUserIds(channelId string) ([]string, error)
}

// AllianceDirectory 联盟目录接口，由 alliance service 实现
type AllianceDirectory interface {
	// MemberIds 联盟全部成员，公开频道的投递范围
	MemberIds(allianceId string) ([]string, error)
}

// Hub 单机模式聊天中枢
type Hub struct {
	registry *ConnRegistry
	// Transmit 消息转发通道，承接上行事件
	Transmit chan []byte
	// Login 客户端登录通道，当有新连接建立时写入此通道
	Login chan *UserConn
	// Logout 客户端登出通道，当连接断开时写入此通道
	Logout chan *UserConn

	// 依赖注入字段（遵循依赖倒置原则）
	messages    MessagePipeline
	channels    ChannelDirectory
	alliances   AllianceDirectory
	userRepo    repository.UserRepository
	channelRepo repository.ChannelRepository
}

// NewHub 创建单机聊天 Hub（依赖注入）
func NewHub(messages MessagePipeline, channels ChannelDirectory, alliances AllianceDirectory,
	userRepo repository.UserRepository, channelRepo repository.ChannelRepository) *Hub {
	return &Hub{
		registry:    NewConnRegistry(),
		Transmit:    make(chan []byte, constants.CHANNEL_SIZE),
		Login:       make(chan *UserConn, constants.CHANNEL_SIZE),
		Logout:      make(chan *UserConn, constants.CHANNEL_SIZE),
		messages:    messages,
		channels:    channels,
		alliances:   alliances,
		userRepo:    userRepo,
		channelRepo: channelRepo,
	}
}

// Start 启动 Hub 主循环
// 1. 客户端管理循环 (Login/Logout channels): 维护连接表和用户在线状态
// 2. 消息消费循环 (Transmit channel): 接收事件 -> 反序列化 -> 按事件类型分发
func (h *Hub) Start() {
	for {
		select {
		// 处理客户端登录事件
		case client, ok := <-h.Login:
			if !ok {
				return
			}
			if client == nil {
				continue
			}
			h.onLogin(client)

		// 处理客户端登出事件
		case client, ok := <-h.Logout:
			if !ok {
				return
			}
			if client == nil {
				continue
			}
			h.onLogout(client)

		// 处理上行事件（核心分发循环）
		case data, ok := <-h.Transmit:
			if !ok {
				return
			}
			h.dispatch(data)
		}
	}
}

// onLogin 连接登记
// 同一用户的第一条连接建立时才把在线标志置 1
func (h *Hub) onLogin(client *UserConn) {
	cnt := h.registry.Add(client)
	zap.L().Info("用户连接建立", zap.String("userId", client.Uuid), zap.Int("conns", cnt))
	if cnt == 1 && h.userRepo != nil {
		if err := h.userRepo.UpdateOnlineStatus(client.Uuid, 1); err != nil {
			zap.L().Error(err.Error())
		}
	}
	h.sendToConn(client, respond.WsEvent{Event: EventConnected, Data: nil}, 0)
}

// onLogout 连接注销
// 最后一条连接断开时才把在线标志置 0
func (h *Hub) onLogout(client *UserConn) {
	remaining, removed := h.registry.Remove(client)
	if !removed {
		return
	}
	close(client.SendBack)
	zap.L().Info("用户连接断开", zap.String("userId", client.Uuid), zap.Int("conns", remaining))
	if remaining == 0 && h.userRepo != nil {
		if err := h.userRepo.UpdateOnlineStatus(client.Uuid, 0); err != nil {
			zap.L().Error(err.Error())
		}
	}
}

// dispatch 按事件类型分发上行事件
func (h *Hub) dispatch(data []byte) {
	var event request.ChatEventRequest
	if err := json.Unmarshal(data, &event); err != nil {
		zap.L().Error("事件反序列化失败", zap.Error(err))
		return
	}

	switch event.Event {
	case EventSendMessage:
		h.handleSendMessage(event)
	case EventEditMessage:
		h.handleEditMessage(event)
	case EventDeleteMessage:
		h.handleDeleteMessage(event)
	case EventTypingStart:
		h.handleTyping(event, EventUserTyping)
	case EventTypingStop:
		h.handleTyping(event, EventUserStopTyping)
	default:
		h.sendErrorTo(event.SendId, errorx.Newf(errorx.CodeInvalidParam, "未知事件: %s", event.Event))
	}
}

// handleSendMessage 处理发送消息事件
// 管道负责鉴权落库翻译，Hub 负责把结果投递给频道受众（含发送者回显）
func (h *Hub) handleSendMessage(event request.ChatEventRequest) {
	rsp, err := h.messages.SendChannelMessage(event)
	if err != nil {
		h.sendErrorTo(event.SendId, err)
		return
	}
	msgUuid, _ := strconv.ParseInt(rsp.Message.MessageId, 10, 64)
	audience := h.audienceFor(rsp.Message.AllianceId, rsp.ChannelId, rsp.IsPrivateChannel)
	h.deliver(audience, respond.WsEvent{Event: EventNewMessage, Data: rsp}, msgUuid, "")
}

// handleEditMessage 处理编辑消息事件
func (h *Hub) handleEditMessage(event request.ChatEventRequest) {
	rsp, allianceId, err := h.messages.EditMessage(event)
	if err != nil {
		h.sendErrorTo(event.SendId, err)
		return
	}
	audience := h.audienceFor(allianceId, rsp.ChannelId, rsp.IsPrivateChannel)
	h.deliver(audience, respond.WsEvent{Event: EventMessageEdited, Data: rsp}, 0, "")
}

// handleDeleteMessage 处理删除消息事件
func (h *Hub) handleDeleteMessage(event request.ChatEventRequest) {
	rsp, allianceId, err := h.messages.DeleteMessage(event)
	if err != nil {
		h.sendErrorTo(event.SendId, err)
		return
	}
	audience := h.audienceFor(allianceId, rsp.ChannelId, rsp.IsPrivateChannel)
	h.deliver(audience, respond.WsEvent{Event: EventMessageDeleted, Data: rsp}, 0, "")
}

// handleTyping 处理输入状态事件
// 无写权限时静默丢弃，不回传错误；投递时排除发送者自己
func (h *Hub) handleTyping(event request.ChatEventRequest, downEvent string) {
	if event.ChannelId == "" || event.SendId == "" {
		return
	}
	if err := h.channels.CheckAccess(event.ChannelId, event.SendId, "write"); err != nil {
		return
	}
	ch, err := h.channelRepo.FindByUuid(event.ChannelId)
	if err != nil {
		zap.L().Error(err.Error())
		return
	}

	nickname := ""
	if user, err := h.userRepo.FindByUuid(event.SendId); err == nil {
		nickname = user.Nickname
	}

	rsp := respond.UserTypingRespond{
		ChannelId: ch.Uuid,
		UserId:    event.SendId,
		Nickname:  nickname,
	}
	audience := h.audienceFor(ch.AllianceId, ch.Uuid, ch.Type == channel_type_enum.PRIVATE)
	h.deliver(audience, respond.WsEvent{Event: downEvent, Data: rsp}, 0, event.SendId)
}

// audienceFor 解析投递范围
// 私密频道在投递时实时解析授权集合，授权变更立即生效；
// 授权记录只增不减，成员资格是外层闸门：已退盟用户即使留有授权记录也不在投递范围内，
// 与 CheckAccess 先校验成员身份再查授权的顺序保持一致
func (h *Hub) audienceFor(allianceId, channelId string, isPrivate bool) []string {
	memberIds, err := h.alliances.MemberIds(allianceId)
	if err != nil {
		zap.L().Error("解析联盟受众失败", zap.String("allianceId", allianceId), zap.Error(err))
		return nil
	}
	if !isPrivate {
		return memberIds
	}
	grantedIds, err := h.channels.GrantedUserIds(channelId)
	if err != nil {
		zap.L().Error("解析私密频道受众失败", zap.String("channelId", channelId), zap.Error(err))
		return nil
	}
	memberSet := make(map[string]struct{}, len(memberIds))
	for _, id := range memberIds {
		memberSet[id] = struct{}{}
	}
	audience := make([]string, 0, len(grantedIds))
	for _, id := range grantedIds {
		if _, ok := memberSet[id]; ok {
			audience = append(audience, id)
		}
	}
	return audience
}

// deliver 把下行事件投递给目标用户的全部在线连接
// 离线用户直接跳过，消息已落库，上线后走历史拉取
func (h *Hub) deliver(userIds []string, payload respond.WsEvent, msgUuid int64, excludeUserId string) {
	jsonMessage, err := json.Marshal(payload)
	if err != nil {
		zap.L().Error(err.Error())
		return
	}
	messageBack := &MessageBack{
		Message: jsonMessage,
		Uuid:    msgUuid,
	}
	for _, userId := range userIds {
		if userId == excludeUserId {
			continue
		}
		for _, conn := range h.registry.ConnectionsFor(userId) {
			select {
			case conn.SendBack <- messageBack:
			default:
				// 下行通道已满，丢弃本条，避免拖垮整个 Hub
				zap.L().Warn("下行通道已满，消息被丢弃", zap.String("userId", userId))
			}
		}
	}
}

// sendErrorTo 业务错误只回给出错用户的连接
func (h *Hub) sendErrorTo(userId string, err error) {
	if userId == "" {
		return
	}
	msg := "服务繁忙"
	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) {
		msg = codeErr.Msg
	}
	payload := respond.WsEvent{
		Event: EventError,
		Data: respond.WsErrorRespond{
			Code:    errorx.GetCode(err),
			Message: msg,
		},
	}
	jsonMessage, jsonErr := json.Marshal(payload)
	if jsonErr != nil {
		zap.L().Error(jsonErr.Error())
		return
	}
	messageBack := &MessageBack{Message: jsonMessage}
	for _, conn := range h.registry.ConnectionsFor(userId) {
		select {
		case conn.SendBack <- messageBack:
		default:
		}
	}
}

// sendToConn 发送下行事件到单条连接
func (h *Hub) sendToConn(client *UserConn, payload respond.WsEvent, msgUuid int64) {
	jsonMessage, err := json.Marshal(payload)
	if err != nil {
		zap.L().Error(err.Error())
		return
	}
	select {
	case client.SendBack <- &MessageBack{Message: jsonMessage, Uuid: msgUuid}:
	default:
	}
}

// Close 关闭服务通道
func (h *Hub) Close() {
	close(h.Login)
	close(h.Logout)
	close(h.Transmit)
}

// ConnectionsFor 实现 MessageBroker 接口：获取用户全部连接
func (h *Hub) ConnectionsFor(userId string) []*UserConn {
	return h.registry.ConnectionsFor(userId)
}

// Publish 实现 MessageBroker 接口：发布事件到 Channel
func (h *Hub) Publish(ctx context.Context, msg []byte) error {
	h.Transmit <- msg
	return nil
}

// RegisterClient 实现 MessageBroker 接口：注册客户端
func (h *Hub) RegisterClient(client *UserConn) {
	h.Login <- client
}

// UnregisterClient 实现 MessageBroker 接口：注销客户端
func (h *Hub) UnregisterClient(client *UserConn) {
	h.Logout <- client
}
