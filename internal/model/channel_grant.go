package model

import (
	"gorm.io/gorm"
)

// ChannelGrant 私密频道访问授权
// 只增不减：成员兑换访问码或创建频道时写入，没有撤销操作
type ChannelGrant struct {
	gorm.Model
	ChannelId string `gorm:"column:channel_id;uniqueIndex:idx_channel_user;index;type:char(20);not null;comment:频道uuid"`
	UserId    string `gorm:"column:user_id;uniqueIndex:idx_channel_user;index;type:char(20);not null;comment:用户uuid"`
	GrantedBy string `gorm:"column:granted_by;type:char(20);not null;comment:授权来源，creator/access_code"`
}

func (ChannelGrant) TableName() string {
	return "channel_grant"
}
