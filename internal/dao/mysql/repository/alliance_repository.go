// Package repository 提供数据访问层的具体实现
// 本文件实现 AllianceRepository 接口，处理联盟相关的数据库操作
package repository

import (
	"alliance_chat_server/internal/model"

	"gorm.io/gorm"
)

// allianceRepository AllianceRepository 接口的实现
type allianceRepository struct {
	db *gorm.DB // GORM 数据库实例
}

// NewAllianceRepository 创建 AllianceRepository 实例
func NewAllianceRepository(db *gorm.DB) AllianceRepository {
	return &allianceRepository{db: db}
}

// FindByUuid 根据 UUID 查找联盟
func (r *allianceRepository) FindByUuid(uuid string) (*model.Alliance, error) {
	var alliance model.Alliance
	if err := r.db.Where("uuid = ?", uuid).First(&alliance).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询联盟 uuid=%s", uuid)
	}
	return &alliance, nil
}

// FindByServerName 根据游戏服务器名查找联盟
// 一个服务器名下有且仅有一个联盟
func (r *allianceRepository) FindByServerName(serverName string) (*model.Alliance, error) {
	var alliance model.Alliance
	if err := r.db.Where("server_name = ?", serverName).First(&alliance).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询联盟 server_name=%s", serverName)
	}
	return &alliance, nil
}

// FindByInviteCode 根据邀请码查找联盟
func (r *allianceRepository) FindByInviteCode(inviteCode string) (*model.Alliance, error) {
	var alliance model.Alliance
	if err := r.db.Where("invite_code = ?", inviteCode).First(&alliance).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询联盟 invite_code=%s", inviteCode)
	}
	return &alliance, nil
}

// FindByUuids 批量根据 UUID 查找联盟
func (r *allianceRepository) FindByUuids(uuids []string) ([]model.Alliance, error) {
	var alliances []model.Alliance
	if len(uuids) == 0 {
		return alliances, nil
	}
	if err := r.db.Where("uuid IN ?", uuids).Find(&alliances).Error; err != nil {
		return nil, wrapDBError(err, "批量查询联盟")
	}
	return alliances, nil
}

// Create 创建新联盟
func (r *allianceRepository) Create(alliance *model.Alliance) error {
	if err := r.db.Create(alliance).Error; err != nil {
		return wrapDBError(err, "创建联盟")
	}
	return nil
}

// Update 更新联盟信息
func (r *allianceRepository) Update(alliance *model.Alliance) error {
	if err := r.db.Save(alliance).Error; err != nil {
		return wrapDBErrorf(err, "更新联盟 uuid=%s", alliance.Uuid)
	}
	return nil
}

// IncrementMemberCount 成员数 +1
func (r *allianceRepository) IncrementMemberCount(uuid string) error {
	if err := r.db.Model(&model.Alliance{}).Where("uuid = ?", uuid).
		UpdateColumn("member_cnt", gorm.Expr("member_cnt + 1")).Error; err != nil {
		return wrapDBErrorf(err, "增加联盟成员数 uuid=%s", uuid)
	}
	return nil
}

// DecrementMemberCount 成员数 -1
func (r *allianceRepository) DecrementMemberCount(uuid string) error {
	if err := r.db.Model(&model.Alliance{}).Where("uuid = ? AND member_cnt > 0", uuid).
		UpdateColumn("member_cnt", gorm.Expr("member_cnt - 1")).Error; err != nil {
		return wrapDBErrorf(err, "减少联盟成员数 uuid=%s", uuid)
	}
	return nil
}

// IncrementMessageCount 累计消息数 +1
// 每发送一条频道消息调用一次
func (r *allianceRepository) IncrementMessageCount(uuid string) error {
	if err := r.db.Model(&model.Alliance{}).Where("uuid = ?", uuid).
		UpdateColumn("message_cnt", gorm.Expr("message_cnt + 1")).Error; err != nil {
		return wrapDBErrorf(err, "增加联盟消息数 uuid=%s", uuid)
	}
	return nil
}
