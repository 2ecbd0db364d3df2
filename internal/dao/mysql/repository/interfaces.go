// Package repository 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
// 所有 Repository 接口在此文件定义，具体实现在各自的文件中
package repository

import (
	"errors"

	"alliance_chat_server/internal/model"
	"alliance_chat_server/pkg/errorx"

	"gorm.io/gorm"
)

// ==================== 错误包装辅助函数 ====================

// wrapDBError 包装数据库错误
// 根据错误类型返回不同的错误码：
//   - ErrRecordNotFound -> CodeNotFound
//   - 其他错误 -> CodeDBError
//
// err: 原始错误
// msg: 错误描述
// 返回: 包装后的错误
func wrapDBError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.Wrap(err, errorx.CodeNotFound, msg)
	}
	return errorx.Wrap(err, errorx.CodeDBError, msg)
}

// wrapDBErrorf 包装数据库错误（支持格式化消息）
// 功能同 wrapDBError，但支持 fmt.Sprintf 风格的格式化
func wrapDBErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.Wrapf(err, errorx.CodeNotFound, format, args...)
	}
	return errorx.Wrapf(err, errorx.CodeDBError, format, args...)
}

// ==================== Repository 接口定义 ====================

// UserRepository 用户数据访问接口
// 提供用户的增删改查操作
type UserRepository interface {
	// FindByUuid 根据 UUID 查找用户
	FindByUuid(uuid string) (*model.UserInfo, error)
	// FindByUsername 根据用户名查找用户
	FindByUsername(username string) (*model.UserInfo, error)
	// FindByUuids 批量根据 UUID 查找用户
	FindByUuids(uuids []string) ([]model.UserInfo, error)
	// Create 创建新用户
	Create(user *model.UserInfo) error
	// UpdateUserInfo 更新用户信息
	UpdateUserInfo(user *model.UserInfo) error
	// UpdateOnlineStatus 更新在线状态及上/离线时间
	UpdateOnlineStatus(uuid string, online int8) error
}

// AllianceRepository 联盟数据访问接口
type AllianceRepository interface {
	// FindByUuid 根据 UUID 查找联盟
	FindByUuid(uuid string) (*model.Alliance, error)
	// FindByServerName 根据游戏服务器名查找联盟
	FindByServerName(serverName string) (*model.Alliance, error)
	// FindByInviteCode 根据邀请码查找联盟
	FindByInviteCode(inviteCode string) (*model.Alliance, error)
	// FindByUuids 批量根据 UUID 查找联盟
	FindByUuids(uuids []string) ([]model.Alliance, error)
	// Create 创建新联盟
	Create(alliance *model.Alliance) error
	// Update 更新联盟信息
	Update(alliance *model.Alliance) error
	// IncrementMemberCount 成员数 +1
	IncrementMemberCount(uuid string) error
	// DecrementMemberCount 成员数 -1
	DecrementMemberCount(uuid string) error
	// IncrementMessageCount 累计消息数 +1
	IncrementMessageCount(uuid string) error
}

// MemberRepository 联盟成员数据访问接口
type MemberRepository interface {
	// FindByAllianceAndUser 查找成员关系，用于成员资格校验
	FindByAllianceAndUser(allianceUuid, userUuid string) (*model.AllianceMember, error)
	// FindByAllianceUuid 查找联盟全部成员关系
	FindByAllianceUuid(allianceUuid string) ([]model.AllianceMember, error)
	// FindByUserUuid 查找用户加入的所有联盟
	FindByUserUuid(userUuid string) ([]model.AllianceMember, error)
	// FindMembersWithUserInfo 查找成员列表（含用户资料）
	FindMembersWithUserInfo(allianceUuid string) ([]MemberWithUserInfo, error)
	// GetMemberIdsByAllianceUuid 获取联盟全部成员 UUID
	GetMemberIdsByAllianceUuid(allianceUuid string) ([]string, error)
	// DistinctLanguagesByAllianceUuid 获取联盟成员的首选语言集合（去重）
	DistinctLanguagesByAllianceUuid(allianceUuid string) ([]string, error)
	// CountOnlineByAllianceUuid 统计联盟当前在线成员数
	CountOnlineByAllianceUuid(allianceUuid string) (int64, error)
	// Create 添加成员
	Create(member *model.AllianceMember) error
	// UpdateRole 变更成员角色
	UpdateRole(allianceUuid, userUuid string, role int8) error
	// Delete 移除成员
	Delete(allianceUuid, userUuid string) error
}

// ChannelRepository 频道数据访问接口
type ChannelRepository interface {
	// FindByUuid 根据 UUID 查找频道
	FindByUuid(uuid string) (*model.Channel, error)
	// FindByAllianceUuid 查找联盟全部频道
	FindByAllianceUuid(allianceUuid string) ([]model.Channel, error)
	// FindByAllianceAndName 按名称查找频道（MySQL 默认排序规则不区分大小写）
	FindByAllianceAndName(allianceUuid, name string) (*model.Channel, error)
	// FindByAllianceAndAccessCode 按访问码查找私密频道
	FindByAllianceAndAccessCode(allianceUuid, accessCode string) (*model.Channel, error)
	// Create 创建频道
	Create(channel *model.Channel) error
	// CountByAllianceUuid 统计联盟频道数
	CountByAllianceUuid(allianceUuid string) (int64, error)
}

// GrantRepository 私密频道授权数据访问接口
// 授权只增不减，没有删除操作
type GrantRepository interface {
	// FindByChannelAndUser 查找授权记录，用于访问校验
	FindByChannelAndUser(channelUuid, userUuid string) (*model.ChannelGrant, error)
	// FindUserUuidsByChannelUuid 查找频道全部被授权用户 UUID
	FindUserUuidsByChannelUuid(channelUuid string) ([]string, error)
	// FindChannelUuidsByUser 查找用户被授权的全部频道 UUID
	FindChannelUuidsByUser(userUuid string) ([]string, error)
	// Create 写入授权
	Create(grant *model.ChannelGrant) error
	// CountByChannelUuid 统计频道授权人数
	CountByChannelUuid(channelUuid string) (int64, error)
}

// MessageRepository 消息数据访问接口
// 同时管理消息主体、译文和编辑历史
type MessageRepository interface {
	// FindByUuid 根据雪花 ID 查找消息
	FindByUuid(uuid int64) (*model.Message, error)
	// FindByChannelUuid 按频道拉取消息（时间倒序分页）
	// includeDeleted 为 false 时过滤业务软删除的消息
	FindByChannelUuid(channelUuid string, limit, offset int, includeDeleted bool) ([]model.Message, error)
	// FindPinnedByChannelUuid 查找频道置顶消息
	FindPinnedByChannelUuid(channelUuid string) ([]model.Message, error)
	// Create 写入消息
	Create(message *model.Message) error
	// UpdateContent 编辑消息原文
	UpdateContent(uuid int64, content, language string) error
	// MarkDeleted 业务软删除
	MarkDeleted(uuid int64, deletedBy string) error
	// UpdatePinned 置顶/取消置顶
	UpdatePinned(uuid int64, pinned int8, pinnedBy string) error
	// UpdateStatus 更新投递状态
	UpdateStatus(uuid int64, status int8) error
	// CountByAllianceUuid 统计联盟累计消息数（不含软删除）
	CountByAllianceUuid(allianceUuid string) (int64, error)

	// FindTranslations 查找单条消息的全部译文
	FindTranslations(messageUuid int64) ([]model.MessageTranslation, error)
	// FindTranslationsByMessageUuids 批量查找译文，用于历史消息列表
	FindTranslationsByMessageUuids(messageUuids []int64) ([]model.MessageTranslation, error)
	// DistinctTranslationLanguages 查找消息已有译文的语言集合
	DistinctTranslationLanguages(messageUuid int64) ([]string, error)
	// SaveTranslation 写入或按 (message_uuid, language) 原地替换译文
	SaveTranslation(translation *model.MessageTranslation) error

	// CreateEdit 追加编辑历史
	CreateEdit(edit *model.MessageEdit) error
	// FindEdits 查找消息编辑历史（时间正序）
	FindEdits(messageUuid int64) ([]model.MessageEdit, error)
}

// ==================== 复合结构 ====================

// MemberWithUserInfo 成员详细信息（含用户资料）
// 用于成员列表展示
type MemberWithUserInfo struct {
	UserId            string `json:"userId"`            // 用户 UUID
	Nickname          string `json:"nickname"`          // 用户昵称
	Avatar            string `json:"avatar"`            // 用户头像
	Role              int8   `json:"role"`              // 联盟角色
	PreferredLanguage string `json:"preferredLanguage"` // 首选语言
	IsOnline          int8   `json:"isOnline"`          // 是否在线
}

// ==================== Repository 聚合 ====================

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	db       *gorm.DB           // GORM 数据库实例
	User     UserRepository     // 用户 Repository
	Alliance AllianceRepository // 联盟 Repository
	Member   MemberRepository   // 联盟成员 Repository
	Channel  ChannelRepository  // 频道 Repository
	Grant    GrantRepository    // 频道授权 Repository
	Message  MessageRepository  // 消息 Repository
}

// NewRepositories 创建所有 Repository 实例
// 接收 GORM 数据库实例，初始化并返回 Repositories 聚合
// db: GORM 数据库实例
// 返回: Repositories 聚合指针
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:       db,
		User:     NewUserRepository(db),
		Alliance: NewAllianceRepository(db),
		Member:   NewMemberRepository(db),
		Channel:  NewChannelRepository(db),
		Grant:    NewGrantRepository(db),
		Message:  NewMessageRepository(db),
	}
}

// Transaction 在数据库事务中执行函数
// 事务内的所有操作要么全部成功，要么全部回滚
// fn: 事务执行函数，接收事务内的 Repositories 实例
// 返回: 操作错误（如有错误会自动回滚）
func (r *Repositories) Transaction(fn func(txRepos *Repositories) error) error {
	// 测试场景下可能没有真实数据库连接，直接执行
	if r.db == nil {
		return fn(r)
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		// 使用事务 db 创建新的 Repositories 实例
		return fn(NewRepositories(tx))
	})
}
