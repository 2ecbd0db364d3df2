package request

// PinMessageRequest 置顶/取消置顶消息请求（盟主/官员）
// MessageId 使用字符串承载雪花 ID，避免 JavaScript 精度丢失
// 使用位置:
//   - internal/handler/message_handler.go: PinMessage, UnpinMessage
//   - internal/service/message/service.go: SetPinned
type PinMessageRequest struct {
	MessageId string `json:"message_id" binding:"required"`
}
