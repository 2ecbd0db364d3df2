package request

// ChatEventRequest 聊天事件请求 (WebSocket)
// 所有客户端上行事件共用一个扁平结构，按 Event 字段分发
// SendId 不信任客户端，由连接网关按认证身份覆盖写入
// 使用位置:
//   - internal/service/chat/ws_gateway.go: Read
//   - internal/service/chat/hub.go: dispatch
type ChatEventRequest struct {
	// Event 事件类型: send_message / edit_message / delete_message / typing_start / typing_stop
	Event      string `json:"event" binding:"required"`
	AllianceId string `json:"alliance_id"`
	ChannelId  string `json:"channel_id"`

	// send_message 字段
	Type     int8   `json:"type"`
	Content  string `json:"content"`
	Url      string `json:"url"`
	FileSize string `json:"file_size"`
	FileType string `json:"file_type"`
	FileName string `json:"file_name"`

	// edit_message / delete_message 字段，字符串承载雪花 ID
	MessageId  string `json:"message_id"`
	NewContent string `json:"new_content"`

	// SendId 发送者 UUID，网关按连接身份写入
	SendId string `json:"send_id"`
}
