package model

import (
	"gorm.io/gorm"
)

// AllianceMember 联盟成员关系
// (alliance_id, user_id) 唯一，一个用户可加入多个服务器的联盟
type AllianceMember struct {
	gorm.Model
	AllianceId string `gorm:"column:alliance_id;uniqueIndex:idx_alliance_user;type:char(20);not null;comment:联盟uuid"`
	UserId     string `gorm:"column:user_id;uniqueIndex:idx_alliance_user;index;type:char(20);not null;comment:成员uuid"`
	Role       int8   `gorm:"column:role;default:1;not null;comment:角色，1.成员，2.官员，3.盟主"`
	JoinedVia  string `gorm:"column:joined_via;type:char(20);comment:加入方式，bootstrap/invite_code"`
}

func (AllianceMember) TableName() string {
	return "alliance_member"
}
