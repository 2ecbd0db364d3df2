package model

import (
	"gorm.io/gorm"
)

// MessageTranslation 消息译文
// (message_uuid, language) 唯一，编辑消息时按语言原地替换
type MessageTranslation struct {
	gorm.Model
	MessageUuid int64  `gorm:"column:message_uuid;uniqueIndex:idx_message_language;index;type:bigint;not null;comment:消息雪花ID"`
	Language    string `gorm:"column:language;uniqueIndex:idx_message_language;type:char(8);not null;comment:译文语言"`
	Content     string `gorm:"column:content;type:TEXT;comment:译文内容"`
}

func (MessageTranslation) TableName() string {
	return "message_translation"
}
