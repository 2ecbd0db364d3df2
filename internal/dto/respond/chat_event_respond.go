package respond

// WsEvent WebSocket 下行事件信封
// 所有服务端推送统一为 {event, data} 结构
// 使用位置:
//   - internal/service/chat/hub.go: 各 handle* 方法
type WsEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// NewMessageRespond new_message 事件载荷
type NewMessageRespond struct {
	Message          *ChannelMessageRespond `json:"message"`
	ChannelId        string                 `json:"channel_id"`
	IsPrivateChannel bool                   `json:"is_private_channel"`
}

// EditHistoryItem 消息编辑历史项
type EditHistoryItem struct {
	Content  string `json:"content"`
	Language string `json:"language"`
	EditedAt string `json:"edited_at"`
}

// MessageEditedRespond message_edited 事件载荷
type MessageEditedRespond struct {
	Message          *ChannelMessageRespond `json:"message"`
	ChannelId        string                 `json:"channel_id"`
	IsPrivateChannel bool                   `json:"is_private_channel"`
	EditHistory      []EditHistoryItem      `json:"edit_history"`
}

// MessageDeletedRespond message_deleted 事件载荷
type MessageDeletedRespond struct {
	MessageId        string `json:"message_id"`
	ChannelId        string `json:"channel_id"`
	IsPrivateChannel bool   `json:"is_private_channel"`
	DeletedBy        string `json:"deleted_by"`
}

// UserTypingRespond user_typing / user_stop_typing 事件载荷
type UserTypingRespond struct {
	ChannelId string `json:"channel_id"`
	UserId    string `json:"user_id"`
	Nickname  string `json:"nickname,omitempty"`
}

// WsErrorRespond error 事件载荷，仅发给出错的连接
type WsErrorRespond struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
