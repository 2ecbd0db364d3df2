// Package repository 提供数据访问层的具体实现
// 本文件实现 ChannelRepository 接口，处理频道相关的数据库操作
package repository

import (
	"alliance_chat_server/internal/model"

	"gorm.io/gorm"
)

// channelRepository ChannelRepository 接口的实现
type channelRepository struct {
	db *gorm.DB // GORM 数据库实例
}

// NewChannelRepository 创建 ChannelRepository 实例
func NewChannelRepository(db *gorm.DB) ChannelRepository {
	return &channelRepository{db: db}
}

// FindByUuid 根据 UUID 查找频道
func (r *channelRepository) FindByUuid(uuid string) (*model.Channel, error) {
	var channel model.Channel
	if err := r.db.Where("uuid = ?", uuid).First(&channel).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询频道 uuid=%s", uuid)
	}
	return &channel, nil
}

// FindByAllianceUuid 查找联盟全部频道
func (r *channelRepository) FindByAllianceUuid(allianceUuid string) ([]model.Channel, error) {
	var channels []model.Channel
	if err := r.db.Where("alliance_id = ?", allianceUuid).Order("id ASC").Find(&channels).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询联盟频道 alliance_id=%s", allianceUuid)
	}
	return channels, nil
}

// FindByAllianceAndName 按名称查找频道
// MySQL 默认排序规则下比较不区分大小写，用于重名检查
func (r *channelRepository) FindByAllianceAndName(allianceUuid, name string) (*model.Channel, error) {
	var channel model.Channel
	if err := r.db.Where("alliance_id = ? AND name = ?", allianceUuid, name).First(&channel).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询频道 alliance_id=%s name=%s", allianceUuid, name)
	}
	return &channel, nil
}

// FindByAllianceAndAccessCode 按访问码查找私密频道
func (r *channelRepository) FindByAllianceAndAccessCode(allianceUuid, accessCode string) (*model.Channel, error) {
	var channel model.Channel
	if err := r.db.Where("alliance_id = ? AND access_code = ?", allianceUuid, accessCode).First(&channel).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询频道 alliance_id=%s access_code=%s", allianceUuid, accessCode)
	}
	return &channel, nil
}

// Create 创建频道
func (r *channelRepository) Create(channel *model.Channel) error {
	if err := r.db.Create(channel).Error; err != nil {
		return wrapDBError(err, "创建频道")
	}
	return nil
}

// CountByAllianceUuid 统计联盟频道数
func (r *channelRepository) CountByAllianceUuid(allianceUuid string) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Channel{}).Where("alliance_id = ?", allianceUuid).Count(&count).Error; err != nil {
		return 0, wrapDBErrorf(err, "统计联盟频道 alliance_id=%s", allianceUuid)
	}
	return count, nil
}
