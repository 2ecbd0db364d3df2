// Package message_status_enum 定义消息投递状态
package message_status_enum

const (
	UNSENT int8 = 0 // 未投递
	SENT   int8 = 1 // 已投递
)
