package respond

// ChannelMessageRespond 频道消息响应
// MessageId 使用字符串承载雪花 ID，避免 JavaScript 精度丢失
// Translations 为 language -> 译文 的映射，客户端按用户首选语言选取
// 使用位置:
//   - internal/service/message/service.go: SendChannelMessage, GetChannelMessageList
//   - internal/service/chat/hub.go: handleSendMessage
type ChannelMessageRespond struct {
	MessageId    string            `json:"message_id"`
	AllianceId   string            `json:"alliance_id"`
	ChannelId    string            `json:"channel_id"`
	SendId       string            `json:"send_id"`
	SendName     string            `json:"send_name"`
	SendAvatar   string            `json:"send_avatar"`
	Type         int8              `json:"type"`
	Content      string            `json:"content"`
	Language     string            `json:"language"`
	Translations map[string]string `json:"translations,omitempty"`
	Url          string            `json:"url,omitempty"`
	FileType     string            `json:"file_type,omitempty"`
	FileName     string            `json:"file_name,omitempty"`
	FileSize     string            `json:"file_size,omitempty"`
	IsEdited     int8              `json:"is_edited"`
	IsDeleted    int8              `json:"is_deleted"`
	IsPinned     int8              `json:"is_pinned"`
	CreatedAt    string            `json:"created_at"`
}

// ContentFor 返回指定语言下应展示的文本
// 优先级：目标语言译文 > 原文。总是有值，不会因缺少译文而失败
func (m *ChannelMessageRespond) ContentFor(lang string) string {
	if lang == m.Language {
		return m.Content
	}
	if translated, ok := m.Translations[lang]; ok && translated != "" {
		return translated
	}
	return m.Content
}
