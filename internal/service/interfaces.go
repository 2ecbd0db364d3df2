// Package service 定义业务层接口
// 本文件定义所有 Service 接口，供 Handler 层和聊天 Hub 调用
// 接口设计遵循依赖倒置原则，便于测试和解耦
package service

import (
	"github.com/gin-gonic/gin"

	"alliance_chat_server/internal/dto/request"
	"alliance_chat_server/internal/dto/respond"
)

// 频道访问意图，用于 ChannelService.CheckAccess
const (
	AccessRead  = "read"  // 读取历史消息、接收推送
	AccessWrite = "write" // 发送消息
)

// UserService 用户业务接口
// 处理用户注册、登录、信息管理等功能
type UserService interface {
	// Register 用户注册，按 server_name 自动创建或加入联盟
	Register(req request.RegisterRequest) (*respond.RegisterRespond, error)
	// Login 密码登录，签发 access/refresh token
	Login(req request.LoginRequest) (*respond.LoginRespond, error)
	// UpdateUserInfo 更新用户信息
	UpdateUserInfo(userId string, req request.UpdateUserInfoRequest) error
	// GetUserInfo 获取单个用户信息
	GetUserInfo(uuid string) (*respond.GetUserInfoRespond, error)
}

// AllianceService 联盟业务接口
// 处理联盟创建/加入、成员管理和统计
type AllianceService interface {
	// BootstrapOrJoin 服务器名下无联盟则创建（申请人为盟主并生成默认频道），
	// 已存在则作为普通成员加入
	BootstrapOrJoin(userId string, req request.CreateAllianceRequest) (*respond.AllianceInfoRespond, error)
	// JoinByInviteCode 通过邀请码加入联盟
	JoinByInviteCode(userId, inviteCode string) (*respond.AllianceInfoRespond, error)
	// GetAllianceInfo 获取联盟信息（需要成员身份）
	GetAllianceInfo(allianceId, userId string) (*respond.AllianceInfoRespond, error)
	// GetMyAllianceList 获取用户加入的联盟列表
	GetMyAllianceList(userId string) ([]respond.AllianceInfoRespond, error)
	// GetMemberList 获取成员列表（需要成员身份）
	GetMemberList(allianceId, operatorId string) ([]respond.MemberListRespond, error)
	// RemoveMember 移除成员（仅盟主，不能移除自己）
	RemoveMember(allianceId, operatorId, targetId string) error
	// ChangeRole 变更成员角色（仅盟主，不能变更自己）
	ChangeRole(allianceId, operatorId, targetId string, role int8) error
	// GetAllianceStats 获取联盟统计（需要成员身份）
	GetAllianceStats(allianceId, operatorId string) (*respond.AllianceStatsRespond, error)
	// SetAutoTranslate 开关联盟自动翻译（仅盟主）
	SetAutoTranslate(allianceId, operatorId string, enabled int8) error
	// MemberIds 获取联盟全部成员 UUID，消息投递用，走缓存
	MemberIds(allianceId string) ([]string, error)
}

// ChannelService 频道业务接口
// 处理频道授权、私密频道创建和访问码兑换
type ChannelService interface {
	// CheckAccess 校验用户对频道的访问权限，intent 为 AccessRead / AccessWrite
	// 非联盟成员返回 CodeNotMember，角色或授权不足返回 CodeForbidden
	// 任何查询失败都按无权限处理（fail-closed）
	CheckAccess(channelId, userId, intent string) error
	// CreatePrivateChannel 创建私密频道（盟主/官员），创建者自动获得授权
	CreatePrivateChannel(creatorId string, req request.CreatePrivateChannelRequest) (*respond.ChannelRespond, error)
	// RedeemAccessCode 兑换访问码获取私密频道授权，重复兑换幂等
	RedeemAccessCode(userId string, req request.RedeemAccessCodeRequest) (*respond.ChannelRespond, error)
	// GetChannelList 获取用户可见的频道列表（私密频道仅授权者可见）
	GetChannelList(allianceId, userId string) ([]respond.ChannelRespond, error)
	// GetChannelInfo 获取频道详情（私密频道需要授权）
	GetChannelInfo(channelId, userId string) (*respond.ChannelInfoRespond, error)
	// GrantedUserIds 获取私密频道的授权用户 UUID，投递时调用
	GrantedUserIds(channelId string) ([]string, error)
}

// MessageService 消息业务接口
// 消息管道：鉴权、落库、翻译、计数，投递由聊天 Hub 完成
type MessageService interface {
	// SendChannelMessage 发送频道消息
	SendChannelMessage(req request.ChatEventRequest) (*respond.NewMessageRespond, error)
	// EditMessage 编辑消息（仅发送者），只重译已有译文语言
	EditMessage(req request.ChatEventRequest) (*respond.MessageEditedRespond, string, error)
	// DeleteMessage 软删除消息（发送者或盟主/官员）
	DeleteMessage(req request.ChatEventRequest) (*respond.MessageDeletedRespond, string, error)
	// GetChannelMessageList 拉取频道历史消息
	GetChannelMessageList(userId string, req request.ChannelMessageListRequest) ([]respond.ChannelMessageRespond, error)
	// SetPinned 置顶/取消置顶（盟主/官员）
	SetPinned(operatorId, messageId string, pinned int8) error
	// UploadFile 上传文件，返回文件名列表
	UploadFile(c *gin.Context) ([]string, error)
	// UploadAvatar 上传头像，返回新文件名
	UploadAvatar(c *gin.Context) (string, error)
}

// AuthService 认证业务接口
type AuthService interface {
	// ValidateTokenID 验证 Refresh Token 的 TokenID 是否为当前有效值（单点互踢）
	ValidateTokenID(userID, tokenID string) (bool, error)
	// StoreTokenID 登录/刷新后写入当前有效 TokenID
	StoreTokenID(userID, tokenID string) error
}
