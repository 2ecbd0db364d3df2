// Package repository 提供数据访问层的具体实现
// 本文件实现 GrantRepository 接口，处理私密频道授权的数据库操作
package repository

import (
	"alliance_chat_server/internal/model"

	"gorm.io/gorm"
)

// grantRepository GrantRepository 接口的实现
type grantRepository struct {
	db *gorm.DB // GORM 数据库实例
}

// NewGrantRepository 创建 GrantRepository 实例
func NewGrantRepository(db *gorm.DB) GrantRepository {
	return &grantRepository{db: db}
}

// FindByChannelAndUser 查找授权记录
// 未授权时返回 CodeNotFound，调用方据此做 fail-closed 判定
func (r *grantRepository) FindByChannelAndUser(channelUuid, userUuid string) (*model.ChannelGrant, error) {
	var grant model.ChannelGrant
	if err := r.db.Where("channel_id = ? AND user_id = ?", channelUuid, userUuid).First(&grant).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询频道授权 channel_id=%s user_id=%s", channelUuid, userUuid)
	}
	return &grant, nil
}

// FindUserUuidsByChannelUuid 查找频道全部被授权用户 UUID
// 私密频道消息投递时在投递侧调用，保证新授权立即生效
func (r *grantRepository) FindUserUuidsByChannelUuid(channelUuid string) ([]string, error) {
	var ids []string
	if err := r.db.Model(&model.ChannelGrant{}).Where("channel_id = ?", channelUuid).
		Pluck("user_id", &ids).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询频道授权用户 channel_id=%s", channelUuid)
	}
	return ids, nil
}

// FindChannelUuidsByUser 查找用户被授权的全部频道 UUID
func (r *grantRepository) FindChannelUuidsByUser(userUuid string) ([]string, error) {
	var ids []string
	if err := r.db.Model(&model.ChannelGrant{}).Where("user_id = ?", userUuid).
		Pluck("channel_id", &ids).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户授权频道 user_id=%s", userUuid)
	}
	return ids, nil
}

// Create 写入授权
func (r *grantRepository) Create(grant *model.ChannelGrant) error {
	if err := r.db.Create(grant).Error; err != nil {
		return wrapDBError(err, "创建频道授权")
	}
	return nil
}

// CountByChannelUuid 统计频道授权人数
func (r *grantRepository) CountByChannelUuid(channelUuid string) (int64, error) {
	var count int64
	if err := r.db.Model(&model.ChannelGrant{}).Where("channel_id = ?", channelUuid).Count(&count).Error; err != nil {
		return 0, wrapDBErrorf(err, "统计频道授权 channel_id=%s", channelUuid)
	}
	return count, nil
}
