// Package message_type_enum 定义消息内容类型
package message_type_enum

const (
	TEXT int8 = 1 // 文本消息
	FILE int8 = 2 // 文件/媒体消息
)

// IsValid 检查消息类型是否合法
func IsValid(messageType int8) bool {
	return messageType == TEXT || messageType == FILE
}
