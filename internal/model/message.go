// Package model 定义数据库实体模型
// 本文件定义消息模型，用于存储频道聊天消息
package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// Message 消息模型
// 对应数据库 message 表
// 存储联盟频道内的文本和文件消息，译文存储在 message_translation 表
type Message struct {
	gorm.Model

	// Uuid 消息唯一标识
	// 使用雪花算法生成的 int64 类型 ID
	// bigint 类型支持大数值，避免 ID 溢出
	Uuid int64 `gorm:"column:uuid;uniqueIndex;type:bigint;not null;comment:消息雪花ID"`

	// AllianceId 所属联盟 UUID
	AllianceId string `gorm:"column:alliance_id;index;type:char(20);not null;comment:联盟uuid"`

	// ChannelId 所属频道 UUID
	// 按频道拉取历史消息时走此索引
	ChannelId string `gorm:"column:channel_id;index;type:char(20);not null;comment:频道uuid"`

	// Type 消息类型
	// 1=文本消息, 2=文件/媒体消息
	// 参见 pkg/enum/message/message_type_enum
	Type int8 `gorm:"column:type;not null;comment:消息类型，1.文本，2.文件"`

	// Content 消息原文内容
	Content string `gorm:"column:content;type:TEXT;comment:消息原文"`

	// Language 原文语言代码
	// 落库时取发送者的首选语言
	Language string `gorm:"column:language;type:char(8);not null;comment:原文语言"`

	// SendId 发送者 UUID
	// 关联到 UserInfo 表
	SendId string `gorm:"column:send_id;index;type:char(20);not null;comment:发送者uuid"`

	// SendName 发送者昵称
	// 冗余存储，避免每次查询消息时都要关联用户表
	SendName string `gorm:"column:send_name;type:varchar(20);not null;comment:发送者昵称"`

	// SendAvatar 发送者头像
	// 冗余存储，存储相对路径如 "/static/avatars/xxx.jpg"
	SendAvatar string `gorm:"column:send_avatar;type:varchar(255);not null;comment:发送者头像"`

	// Url 资源 URL
	// 文件/媒体消息先上传到静态目录或对象存储，再把访问链接存到这里
	Url string `gorm:"column:url;type:char(255);comment:消息url"`

	// FileType 文件 MIME 类型
	// 如 "image/jpeg", "application/pdf"
	FileType string `gorm:"column:file_type;type:char(50);comment:文件类型"`

	// FileName 文件名
	FileName string `gorm:"column:file_name;type:varchar(50);comment:文件名"`

	// FileSize 文件大小
	// 字符串格式，如 "1.5MB"
	FileSize string `gorm:"column:file_size;type:char(20);comment:文件大小"`

	// IsEdited 是否被编辑过
	IsEdited int8 `gorm:"column:is_edited;default:0;comment:是否编辑过，0.否，1.是"`

	// IsDeleted 业务软删除标志
	// 与 gorm.DeletedAt 区分：软删除的消息仍占据时间线位置，内容对客户端隐藏
	IsDeleted int8 `gorm:"column:is_deleted;default:0;comment:是否删除，0.否，1.是"`

	// DeletedBy 删除操作者 UUID（发送者本人或盟主/官员）
	DeletedBy string `gorm:"column:deleted_by;type:char(20);comment:删除者uuid"`

	// IsPinned 是否置顶
	IsPinned int8 `gorm:"column:is_pinned;default:0;comment:是否置顶，0.否，1.是"`

	// PinnedBy 置顶操作者 UUID
	PinnedBy string `gorm:"column:pinned_by;type:char(20);comment:置顶者uuid"`

	// Status 消息投递状态
	// 0=未投递, 1=已投递
	// 参见 pkg/enum/message/message_status_enum
	Status int8 `gorm:"column:status;not null;comment:状态，0.未投递，1.已投递"`

	// SendAt 实际发送时间
	SendAt sql.NullTime `gorm:"column:send_at;comment:发送时间"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "message"
}
