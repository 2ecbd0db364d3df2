// Package repository 提供数据访问层的具体实现
// 本文件实现 MemberRepository 接口，处理联盟成员相关的数据库操作
package repository

import (
	"alliance_chat_server/internal/model"

	"gorm.io/gorm"
)

// memberRepository MemberRepository 接口的实现
type memberRepository struct {
	db *gorm.DB // GORM 数据库实例
}

// NewMemberRepository 创建 MemberRepository 实例
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

// FindByAllianceAndUser 查找成员关系
// 用于成员资格和角色校验，未加入时返回 CodeNotFound
func (r *memberRepository) FindByAllianceAndUser(allianceUuid, userUuid string) (*model.AllianceMember, error) {
	var member model.AllianceMember
	if err := r.db.Where("alliance_id = ? AND user_id = ?", allianceUuid, userUuid).First(&member).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询联盟成员 alliance_id=%s user_id=%s", allianceUuid, userUuid)
	}
	return &member, nil
}

// FindByAllianceUuid 查找联盟全部成员关系
func (r *memberRepository) FindByAllianceUuid(allianceUuid string) ([]model.AllianceMember, error) {
	var members []model.AllianceMember
	if err := r.db.Where("alliance_id = ?", allianceUuid).Find(&members).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询联盟成员 alliance_id=%s", allianceUuid)
	}
	return members, nil
}

// FindByUserUuid 查找用户加入的所有联盟
func (r *memberRepository) FindByUserUuid(userUuid string) ([]model.AllianceMember, error) {
	var members []model.AllianceMember
	if err := r.db.Where("user_id = ?", userUuid).Find(&members).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户所在联盟 user_id=%s", userUuid)
	}
	return members, nil
}

// FindMembersWithUserInfo 查询成员详细信息（包含用户基本资料）
// 通过 JOIN 查询关联用户表获取昵称、头像、首选语言和在线状态
// allianceUuid: 联盟 UUID
// 返回: 带用户信息的成员列表
func (r *memberRepository) FindMembersWithUserInfo(allianceUuid string) ([]MemberWithUserInfo, error) {
	var members []MemberWithUserInfo
	// 使用 LEFT JOIN 关联 user_info 表
	if err := r.db.Table("alliance_member").
		Select("user_info.uuid as user_id, user_info.nickname, user_info.avatar, alliance_member.role, user_info.preferred_language, user_info.is_online").
		Joins("LEFT JOIN user_info ON alliance_member.user_id = user_info.uuid").
		Where("alliance_member.alliance_id = ? AND alliance_member.deleted_at IS NULL", allianceUuid).
		Scan(&members).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询联盟成员详情 alliance_id=%s", allianceUuid)
	}
	return members, nil
}

// GetMemberIdsByAllianceUuid 获取联盟全部成员 UUID
// 用于消息投递时的收件人展开
func (r *memberRepository) GetMemberIdsByAllianceUuid(allianceUuid string) ([]string, error) {
	var ids []string
	if err := r.db.Model(&model.AllianceMember{}).Where("alliance_id = ?", allianceUuid).
		Pluck("user_id", &ids).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询联盟成员ID alliance_id=%s", allianceUuid)
	}
	return ids, nil
}

// DistinctLanguagesByAllianceUuid 获取联盟成员首选语言集合（去重）
// 用于自动翻译时确定目标语言
func (r *memberRepository) DistinctLanguagesByAllianceUuid(allianceUuid string) ([]string, error) {
	var languages []string
	if err := r.db.Table("alliance_member").
		Distinct("user_info.preferred_language").
		Joins("LEFT JOIN user_info ON alliance_member.user_id = user_info.uuid").
		Where("alliance_member.alliance_id = ? AND alliance_member.deleted_at IS NULL AND user_info.preferred_language <> ''", allianceUuid).
		Pluck("user_info.preferred_language", &languages).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询联盟成员语言 alliance_id=%s", allianceUuid)
	}
	return languages, nil
}

// CountOnlineByAllianceUuid 统计联盟当前在线成员数
func (r *memberRepository) CountOnlineByAllianceUuid(allianceUuid string) (int64, error) {
	var count int64
	if err := r.db.Table("alliance_member").
		Joins("LEFT JOIN user_info ON alliance_member.user_id = user_info.uuid").
		Where("alliance_member.alliance_id = ? AND alliance_member.deleted_at IS NULL AND user_info.is_online = 1", allianceUuid).
		Count(&count).Error; err != nil {
		return 0, wrapDBErrorf(err, "统计在线成员 alliance_id=%s", allianceUuid)
	}
	return count, nil
}

// Create 添加成员
func (r *memberRepository) Create(member *model.AllianceMember) error {
	if err := r.db.Create(member).Error; err != nil {
		return wrapDBError(err, "创建联盟成员")
	}
	return nil
}

// UpdateRole 变更成员角色
func (r *memberRepository) UpdateRole(allianceUuid, userUuid string, role int8) error {
	if err := r.db.Model(&model.AllianceMember{}).
		Where("alliance_id = ? AND user_id = ?", allianceUuid, userUuid).
		Update("role", role).Error; err != nil {
		return wrapDBErrorf(err, "更新成员角色 alliance_id=%s user_id=%s", allianceUuid, userUuid)
	}
	return nil
}

// Delete 移除成员
func (r *memberRepository) Delete(allianceUuid, userUuid string) error {
	if err := r.db.Where("alliance_id = ? AND user_id = ?", allianceUuid, userUuid).
		Delete(&model.AllianceMember{}).Error; err != nil {
		return wrapDBErrorf(err, "删除联盟成员 alliance_id=%s user_id=%s", allianceUuid, userUuid)
	}
	return nil
}
