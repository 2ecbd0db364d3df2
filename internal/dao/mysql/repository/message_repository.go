// Package repository 提供数据访问层的具体实现
// 本文件实现 MessageRepository 接口，处理消息、译文和编辑历史的数据库操作
package repository

import (
	"errors"

	"alliance_chat_server/internal/model"

	"gorm.io/gorm"
)

// messageRepository MessageRepository 接口的实现
type messageRepository struct {
	db *gorm.DB // GORM 数据库实例
}

// NewMessageRepository 创建 MessageRepository 实例
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// FindByUuid 根据雪花 ID 查找消息
func (r *messageRepository) FindByUuid(uuid int64) (*model.Message, error) {
	var message model.Message
	if err := r.db.Where("uuid = ?", uuid).First(&message).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询消息 uuid=%d", uuid)
	}
	return &message, nil
}

// FindByChannelUuid 按频道拉取消息
// 时间倒序分页，includeDeleted 为 false 时过滤业务软删除的消息
func (r *messageRepository) FindByChannelUuid(channelUuid string, limit, offset int, includeDeleted bool) ([]model.Message, error) {
	var messages []model.Message
	query := r.db.Where("channel_id = ?", channelUuid)
	if !includeDeleted {
		query = query.Where("is_deleted = 0")
	}
	if err := query.Order("uuid DESC").Limit(limit).Offset(offset).Find(&messages).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询频道消息 channel_id=%s", channelUuid)
	}
	return messages, nil
}

// FindPinnedByChannelUuid 查找频道置顶消息
func (r *messageRepository) FindPinnedByChannelUuid(channelUuid string) ([]model.Message, error) {
	var messages []model.Message
	if err := r.db.Where("channel_id = ? AND is_pinned = 1 AND is_deleted = 0", channelUuid).
		Order("uuid DESC").Find(&messages).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询置顶消息 channel_id=%s", channelUuid)
	}
	return messages, nil
}

// Create 写入消息
func (r *messageRepository) Create(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return wrapDBError(err, "创建消息")
	}
	return nil
}

// UpdateContent 编辑消息原文并标记编辑标志
func (r *messageRepository) UpdateContent(uuid int64, content, language string) error {
	if err := r.db.Model(&model.Message{}).Where("uuid = ?", uuid).
		Updates(map[string]interface{}{
			"content":   content,
			"language":  language,
			"is_edited": 1,
		}).Error; err != nil {
		return wrapDBErrorf(err, "更新消息内容 uuid=%d", uuid)
	}
	return nil
}

// MarkDeleted 业务软删除
// 消息行保留，内容对客户端隐藏
func (r *messageRepository) MarkDeleted(uuid int64, deletedBy string) error {
	if err := r.db.Model(&model.Message{}).Where("uuid = ?", uuid).
		Updates(map[string]interface{}{
			"is_deleted": 1,
			"deleted_by": deletedBy,
		}).Error; err != nil {
		return wrapDBErrorf(err, "删除消息 uuid=%d", uuid)
	}
	return nil
}

// UpdatePinned 置顶/取消置顶
func (r *messageRepository) UpdatePinned(uuid int64, pinned int8, pinnedBy string) error {
	if err := r.db.Model(&model.Message{}).Where("uuid = ?", uuid).
		Updates(map[string]interface{}{
			"is_pinned": pinned,
			"pinned_by": pinnedBy,
		}).Error; err != nil {
		return wrapDBErrorf(err, "更新置顶状态 uuid=%d", uuid)
	}
	return nil
}

// UpdateStatus 更新投递状态
// WebSocket 写泵投递成功后调用
func (r *messageRepository) UpdateStatus(uuid int64, status int8) error {
	if err := r.db.Model(&model.Message{}).Where("uuid = ?", uuid).
		Update("status", status).Error; err != nil {
		return wrapDBErrorf(err, "更新消息状态 uuid=%d", uuid)
	}
	return nil
}

// CountByAllianceUuid 统计联盟累计消息数（不含软删除）
func (r *messageRepository) CountByAllianceUuid(allianceUuid string) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Message{}).
		Where("alliance_id = ? AND is_deleted = 0", allianceUuid).Count(&count).Error; err != nil {
		return 0, wrapDBErrorf(err, "统计联盟消息 alliance_id=%s", allianceUuid)
	}
	return count, nil
}

// FindTranslations 查找单条消息的全部译文
func (r *messageRepository) FindTranslations(messageUuid int64) ([]model.MessageTranslation, error) {
	var translations []model.MessageTranslation
	if err := r.db.Where("message_uuid = ?", messageUuid).Find(&translations).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询消息译文 message_uuid=%d", messageUuid)
	}
	return translations, nil
}

// FindTranslationsByMessageUuids 批量查找译文
// 用于历史消息列表，避免逐条查询
func (r *messageRepository) FindTranslationsByMessageUuids(messageUuids []int64) ([]model.MessageTranslation, error) {
	var translations []model.MessageTranslation
	if len(messageUuids) == 0 {
		return translations, nil
	}
	if err := r.db.Where("message_uuid IN ?", messageUuids).Find(&translations).Error; err != nil {
		return nil, wrapDBError(err, "批量查询消息译文")
	}
	return translations, nil
}

// DistinctTranslationLanguages 查找消息已有译文的语言集合
// 编辑消息时只重译这些语言，不扩大译文范围
func (r *messageRepository) DistinctTranslationLanguages(messageUuid int64) ([]string, error) {
	var languages []string
	if err := r.db.Model(&model.MessageTranslation{}).Distinct("language").
		Where("message_uuid = ?", messageUuid).Pluck("language", &languages).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询译文语言 message_uuid=%d", messageUuid)
	}
	return languages, nil
}

// SaveTranslation 写入或按 (message_uuid, language) 原地替换译文
func (r *messageRepository) SaveTranslation(translation *model.MessageTranslation) error {
	var existing model.MessageTranslation
	err := r.db.Where("message_uuid = ? AND language = ?", translation.MessageUuid, translation.Language).
		First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return wrapDBErrorf(err, "查询译文 message_uuid=%d language=%s", translation.MessageUuid, translation.Language)
		}
		if err := r.db.Create(translation).Error; err != nil {
			return wrapDBError(err, "创建消息译文")
		}
		return nil
	}
	existing.Content = translation.Content
	if err := r.db.Save(&existing).Error; err != nil {
		return wrapDBErrorf(err, "更新消息译文 message_uuid=%d language=%s", translation.MessageUuid, translation.Language)
	}
	return nil
}

// CreateEdit 追加编辑历史
func (r *messageRepository) CreateEdit(edit *model.MessageEdit) error {
	if err := r.db.Create(edit).Error; err != nil {
		return wrapDBError(err, "创建编辑历史")
	}
	return nil
}

// FindEdits 查找消息编辑历史（时间正序）
func (r *messageRepository) FindEdits(messageUuid int64) ([]model.MessageEdit, error) {
	var edits []model.MessageEdit
	if err := r.db.Where("message_uuid = ?", messageUuid).Order("id ASC").Find(&edits).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询编辑历史 message_uuid=%d", messageUuid)
	}
	return edits, nil
}
