package model

import (
	"gorm.io/gorm"
)

// Channel 联盟频道
// 默认频道在联盟创建时生成，私密频道由盟主/官员手动创建
// (alliance_id, name) 唯一，MySQL 默认排序规则下不区分大小写
type Channel struct {
	gorm.Model
	Uuid        string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:频道唯一id"`
	AllianceId  string `gorm:"column:alliance_id;uniqueIndex:idx_alliance_channel_name;index;type:char(20);not null;comment:联盟uuid"`
	Name        string `gorm:"column:name;uniqueIndex:idx_alliance_channel_name;type:varchar(30);not null;comment:频道名称"`
	Type        string `gorm:"column:type;type:char(20);not null;comment:频道类型"`
	Description string `gorm:"column:description;type:varchar(200);comment:频道描述"`
	CreatorId   string `gorm:"column:creator_id;type:char(20);not null;comment:创建者uuid"`

	// AccessCode 私密频道访问码，6位大写字母数字，仅私密频道非空
	AccessCode string `gorm:"column:access_code;index;type:char(6);comment:访问码"`

	// WriteRoles / ReadRoles 角色位掩码，参见 pkg/enum/member/role_enum
	WriteRoles int8 `gorm:"column:write_roles;not null;comment:可发言角色位掩码"`
	ReadRoles  int8 `gorm:"column:read_roles;not null;comment:可读角色位掩码"`

	Status int8 `gorm:"column:status;default:0;comment:状态，0.正常，1.归档"`
}

func (Channel) TableName() string {
	return "channel"
}
