package model

import (
	"gorm.io/gorm"
)

// MessageEdit 消息编辑历史，只增不改
// 每次编辑前把旧原文追加一条记录
type MessageEdit struct {
	gorm.Model
	MessageUuid  int64  `gorm:"column:message_uuid;index;type:bigint;not null;comment:消息雪花ID"`
	EditedBy     string `gorm:"column:edited_by;type:char(20);not null;comment:编辑者uuid"`
	PrevContent  string `gorm:"column:prev_content;type:TEXT;comment:编辑前原文"`
	PrevLanguage string `gorm:"column:prev_language;type:char(8);not null;comment:编辑前原文语言"`
}

func (MessageEdit) TableName() string {
	return "message_edit"
}
