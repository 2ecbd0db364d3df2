package model

import (
	"gorm.io/gorm"
)

// Alliance 游戏联盟，一个游戏服务器下有且仅有一个联盟
type Alliance struct {
	gorm.Model
	Uuid          string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:联盟唯一id"`
	Name          string `gorm:"column:name;type:varchar(50);not null;comment:联盟名称"`
	ServerName    string `gorm:"column:server_name;uniqueIndex;type:varchar(50);not null;comment:游戏服务器名"`
	LeaderId      string `gorm:"column:leader_id;type:char(20);not null;comment:盟主uuid"`
	InviteCode    string `gorm:"column:invite_code;uniqueIndex;type:char(8);not null;comment:邀请码"`
	AutoTranslate int8   `gorm:"column:auto_translate;default:1;comment:自动翻译，0.关闭，1.开启"`
	MemberCnt     int    `gorm:"column:member_cnt;default:1;comment:成员数"`
	MessageCnt    int64  `gorm:"column:message_cnt;default:0;comment:累计消息数"`
	Status        int8   `gorm:"column:status;default:0;comment:状态，0.正常，1.禁用"`
}

func (Alliance) TableName() string {
	return "alliance"
}
