// Package alliance 提供联盟相关的业务逻辑
// 一个游戏服务器名下有且仅有一个联盟：第一个用户创建并成为盟主，
// 后续用户直接加入
package alliance

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"alliance_chat_server/internal/dao/mysql/repository"
	myredis "alliance_chat_server/internal/dao/redis"
	"alliance_chat_server/internal/dto/request"
	"alliance_chat_server/internal/dto/respond"
	"alliance_chat_server/internal/model"
	"alliance_chat_server/pkg/constants"
	"alliance_chat_server/pkg/enum/channel/channel_type_enum"
	"alliance_chat_server/pkg/enum/member/role_enum"
	"alliance_chat_server/pkg/errorx"
	"alliance_chat_server/pkg/util/random"
)

// defaultChannelDef 联盟创建时生成的默认频道定义
type defaultChannelDef struct {
	name        string
	channelType string
	description string
	writeRoles  role_enum.RoleSet
}

// 默认频道：公告频道仅盟主/官员可发言，其余全员可发言
var defaultChannels = []defaultChannelDef{
	{"announcements", channel_type_enum.ANNOUNCEMENTS, "联盟公告", role_enum.OFFICER_UP},
	{"general", channel_type_enum.GENERAL, "综合讨论", role_enum.ALL},
	{"war", channel_type_enum.WAR, "战争指挥", role_enum.ALL},
	{"events", channel_type_enum.EVENTS, "活动协调", role_enum.ALL},
	{"media", channel_type_enum.MEDIA, "图片与视频", role_enum.ALL},
}

// allianceService 联盟业务逻辑实现
// 通过构造函数注入 Repository 和 Cache 依赖
type allianceService struct {
	repos *repository.Repositories
	cache myredis.AsyncCacheService
}

// NewAllianceService 构造函数，注入所有依赖
func NewAllianceService(repos *repository.Repositories, cacheService myredis.AsyncCacheService) *allianceService {
	return &allianceService{
		repos: repos,
		cache: cacheService,
	}
}

// requireMember 校验用户是联盟成员并返回成员关系
func (s *allianceService) requireMember(allianceId, userId string) (*model.AllianceMember, error) {
	member, err := s.repos.Member.FindByAllianceAndUser(allianceId, userId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeNotMember, "不是联盟成员")
		}
		zap.L().Error("成员校验查询失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return member, nil
}

// buildInfoRespond 构建联盟信息响应
// 邀请码仅对盟主/官员返回
func buildInfoRespond(alliance *model.Alliance, myRole int8) *respond.AllianceInfoRespond {
	rsp := &respond.AllianceInfoRespond{
		Uuid:          alliance.Uuid,
		Name:          alliance.Name,
		ServerName:    alliance.ServerName,
		LeaderId:      alliance.LeaderId,
		AutoTranslate: alliance.AutoTranslate,
		MemberCnt:     alliance.MemberCnt,
		MyRole:        myRole,
		CreatedAt:     alliance.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if role_enum.OFFICER_UP.Permits(myRole) {
		rsp.InviteCode = alliance.InviteCode
	}
	return rsp
}

// BootstrapOrJoin 创建或加入服务器联盟
// 服务器名下无联盟时创建：申请人为盟主，生成邀请码和默认频道；
// 已存在时作为普通成员加入；重复调用幂等
func (s *allianceService) BootstrapOrJoin(userId string, req request.CreateAllianceRequest) (*respond.AllianceInfoRespond, error) {
	serverName := strings.TrimSpace(req.ServerName)
	if serverName == "" {
		return nil, errorx.ErrInvalidParam
	}

	alliance, err := s.repos.Alliance.FindByServerName(serverName)
	if err == nil {
		return s.join(alliance, userId, "server")
	}
	if !errorx.IsNotFound(err) {
		zap.L().Error("查询服务器联盟失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	// 服务器名下无联盟，创建并成为盟主
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = serverName + " Alliance"
	}
	inviteCode, err := s.freshInviteCode()
	if err != nil {
		return nil, err
	}

	newAlliance := model.Alliance{
		Uuid:          fmt.Sprintf("A%s", random.GetNowAndLenRandomString(11)),
		Name:          name,
		ServerName:    serverName,
		LeaderId:      userId,
		InviteCode:    inviteCode,
		AutoTranslate: 1,
		MemberCnt:     1,
	}

	err = s.repos.Transaction(func(txRepos *repository.Repositories) error {
		if err := txRepos.Alliance.Create(&newAlliance); err != nil {
			zap.L().Error(err.Error())
			return errorx.ErrServerBusy
		}
		member := model.AllianceMember{
			AllianceId: newAlliance.Uuid,
			UserId:     userId,
			Role:       role_enum.LEADER,
			JoinedVia:  "bootstrap",
		}
		if err := txRepos.Member.Create(&member); err != nil {
			zap.L().Error(err.Error())
			return errorx.ErrServerBusy
		}
		// 生成默认频道
		for _, def := range defaultChannels {
			ch := model.Channel{
				Uuid:        fmt.Sprintf("C%s", random.GetNowAndLenRandomString(11)),
				AllianceId:  newAlliance.Uuid,
				Name:        def.name,
				Type:        def.channelType,
				Description: def.description,
				CreatorId:   userId,
				WriteRoles:  int8(def.writeRoles),
				ReadRoles:   int8(role_enum.ALL),
			}
			if err := txRepos.Channel.Create(&ch); err != nil {
				zap.L().Error(err.Error())
				return errorx.ErrServerBusy
			}
		}
		return nil
	})
	if err != nil {
		// 并发创建时可能撞 server_name 唯一索引，改走加入路径
		if alliance, err2 := s.repos.Alliance.FindByServerName(serverName); err2 == nil {
			return s.join(alliance, userId, "server")
		}
		return nil, err
	}

	return buildInfoRespond(&newAlliance, role_enum.LEADER), nil
}

// join 加入已存在的联盟，已是成员时幂等返回
func (s *allianceService) join(alliance *model.Alliance, userId, via string) (*respond.AllianceInfoRespond, error) {
	if member, err := s.repos.Member.FindByAllianceAndUser(alliance.Uuid, userId); err == nil {
		return buildInfoRespond(alliance, member.Role), nil
	} else if !errorx.IsNotFound(err) {
		zap.L().Error("成员查询失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	err := s.repos.Transaction(func(txRepos *repository.Repositories) error {
		member := model.AllianceMember{
			AllianceId: alliance.Uuid,
			UserId:     userId,
			Role:       role_enum.MEMBER,
			JoinedVia:  via,
		}
		if err := txRepos.Member.Create(&member); err != nil {
			zap.L().Error(err.Error())
			return errorx.ErrServerBusy
		}
		if err := txRepos.Alliance.IncrementMemberCount(alliance.Uuid); err != nil {
			zap.L().Error(err.Error())
			return errorx.ErrServerBusy
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateMemberCache(alliance.Uuid)
	alliance.MemberCnt++
	return buildInfoRespond(alliance, role_enum.MEMBER), nil
}

// freshInviteCode 生成未使用的联盟邀请码
func (s *allianceService) freshInviteCode() (string, error) {
	for i := 0; i < 5; i++ {
		code := random.GetUpperCode(constants.INVITE_CODE_LENGTH)
		_, err := s.repos.Alliance.FindByInviteCode(code)
		if errorx.IsNotFound(err) {
			return code, nil
		}
		if err == nil {
			continue // 撞码，重新生成
		}
		zap.L().Error("邀请码查重失败", zap.Error(err))
		return "", errorx.ErrServerBusy
	}
	return "", errorx.ErrServerBusy
}

// JoinByInviteCode 通过邀请码加入联盟
func (s *allianceService) JoinByInviteCode(userId, inviteCode string) (*respond.AllianceInfoRespond, error) {
	code := random.NormalizeCode(inviteCode)
	if len(code) != constants.INVITE_CODE_LENGTH {
		return nil, errorx.New(errorx.CodeInvalidCode, "邀请码无效")
	}

	alliance, err := s.repos.Alliance.FindByInviteCode(code)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeInvalidCode, "邀请码无效")
		}
		zap.L().Error("邀请码查询失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return s.join(alliance, userId, "invite_code")
}

// GetAllianceInfo 获取联盟信息（需要成员身份）
func (s *allianceService) GetAllianceInfo(allianceId, userId string) (*respond.AllianceInfoRespond, error) {
	member, err := s.requireMember(allianceId, userId)
	if err != nil {
		return nil, err
	}

	cacheKey := "alliance_info_" + allianceId

	// 1. 尝试从缓存获取 (Happy Path)
	rspString, err := s.cache.Get(context.Background(), cacheKey)
	if err == nil && rspString != "" {
		var alliance model.Alliance
		if err := json.Unmarshal([]byte(rspString), &alliance); err == nil {
			return buildInfoRespond(&alliance, member.Role), nil
		}
		zap.L().Warn("Unmarshal alliance info cache failed, fallback to DB", zap.String("allianceId", allianceId))
	} else if err != nil {
		zap.L().Error("Redis get error", zap.Error(err))
	}

	// 2. 缓存未命中 或 缓存出错 -> 查询数据库
	alliance, err := s.repos.Alliance.FindByUuid(allianceId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeNotFound, "联盟不存在")
		}
		zap.L().Error("查询联盟失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	// 3. 回写缓存 (异步)
	s.cache.SubmitTask(func() {
		if rspBytes, err := json.Marshal(alliance); err == nil {
			if err := s.cache.Set(context.Background(), cacheKey, string(rspBytes), time.Minute*30); err != nil {
				zap.L().Error("Set cache error", zap.Error(err))
			}
		}
	})

	return buildInfoRespond(alliance, member.Role), nil
}

// GetMyAllianceList 获取用户加入的联盟列表
func (s *allianceService) GetMyAllianceList(userId string) ([]respond.AllianceInfoRespond, error) {
	memberships, err := s.repos.Member.FindByUserUuid(userId)
	if err != nil {
		zap.L().Error("查询用户联盟失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	allianceIds := make([]string, 0, len(memberships))
	roleByAlliance := make(map[string]int8, len(memberships))
	for _, m := range memberships {
		allianceIds = append(allianceIds, m.AllianceId)
		roleByAlliance[m.AllianceId] = m.Role
	}

	alliances, err := s.repos.Alliance.FindByUuids(allianceIds)
	if err != nil {
		zap.L().Error("批量查询联盟失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	// 使用 make 初始化 len=0，确保序列化后是 [] 而不是 null
	rsp := make([]respond.AllianceInfoRespond, 0, len(alliances))
	for i := range alliances {
		rsp = append(rsp, *buildInfoRespond(&alliances[i], roleByAlliance[alliances[i].Uuid]))
	}
	return rsp, nil
}

// GetMemberList 获取成员列表（需要成员身份）
func (s *allianceService) GetMemberList(allianceId, operatorId string) ([]respond.MemberListRespond, error) {
	if _, err := s.requireMember(allianceId, operatorId); err != nil {
		return nil, err
	}

	members, err := s.repos.Member.FindMembersWithUserInfo(allianceId)
	if err != nil {
		zap.L().Error("查询成员列表失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	rsp := make([]respond.MemberListRespond, 0, len(members))
	for _, m := range members {
		rsp = append(rsp, respond.MemberListRespond{
			UserId:            m.UserId,
			Nickname:          m.Nickname,
			Avatar:            m.Avatar,
			Role:              m.Role,
			PreferredLanguage: m.PreferredLanguage,
			IsOnline:          m.IsOnline,
		})
	}
	return rsp, nil
}

// RemoveMember 移除成员
// 仅盟主可操作，不能移除自己
func (s *allianceService) RemoveMember(allianceId, operatorId, targetId string) error {
	operator, err := s.requireMember(allianceId, operatorId)
	if err != nil {
		return err
	}
	if operator.Role != role_enum.LEADER {
		return errorx.New(errorx.CodeForbidden, "仅盟主可移除成员")
	}
	if targetId == operatorId {
		return errorx.New(errorx.CodeInvalidParam, "不能移除自己")
	}
	if _, err := s.requireMember(allianceId, targetId); err != nil {
		return err
	}

	err = s.repos.Transaction(func(txRepos *repository.Repositories) error {
		if err := txRepos.Member.Delete(allianceId, targetId); err != nil {
			zap.L().Error(err.Error())
			return errorx.ErrServerBusy
		}
		if err := txRepos.Alliance.DecrementMemberCount(allianceId); err != nil {
			zap.L().Error(err.Error())
			return errorx.ErrServerBusy
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateMemberCache(allianceId)
	return nil
}

// ChangeRole 变更成员角色
// 仅盟主可操作，不能变更自己，不能直接任命新盟主
func (s *allianceService) ChangeRole(allianceId, operatorId, targetId string, role int8) error {
	operator, err := s.requireMember(allianceId, operatorId)
	if err != nil {
		return err
	}
	if operator.Role != role_enum.LEADER {
		return errorx.New(errorx.CodeForbidden, "仅盟主可变更角色")
	}
	if targetId == operatorId {
		return errorx.New(errorx.CodeInvalidParam, "不能变更自己的角色")
	}
	if role != role_enum.MEMBER && role != role_enum.OFFICER {
		return errorx.New(errorx.CodeInvalidParam, "角色无效")
	}
	if _, err := s.requireMember(allianceId, targetId); err != nil {
		return err
	}

	if err := s.repos.Member.UpdateRole(allianceId, targetId, role); err != nil {
		zap.L().Error(err.Error())
		return errorx.ErrServerBusy
	}
	return nil
}

// GetAllianceStats 获取联盟统计（需要成员身份）
func (s *allianceService) GetAllianceStats(allianceId, operatorId string) (*respond.AllianceStatsRespond, error) {
	if _, err := s.requireMember(allianceId, operatorId); err != nil {
		return nil, err
	}

	alliance, err := s.repos.Alliance.FindByUuid(allianceId)
	if err != nil {
		zap.L().Error("查询联盟失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	onlineCnt, err := s.repos.Member.CountOnlineByAllianceUuid(allianceId)
	if err != nil {
		zap.L().Error("统计在线成员失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	channelCnt, err := s.repos.Channel.CountByAllianceUuid(allianceId)
	if err != nil {
		zap.L().Error("统计频道失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	return &respond.AllianceStatsRespond{
		AllianceId:    allianceId,
		MemberCnt:     alliance.MemberCnt,
		OnlineCnt:     onlineCnt,
		ChannelCnt:    channelCnt,
		TotalMessages: alliance.MessageCnt,
	}, nil
}

// SetAutoTranslate 开关联盟自动翻译（仅盟主）
func (s *allianceService) SetAutoTranslate(allianceId, operatorId string, enabled int8) error {
	operator, err := s.requireMember(allianceId, operatorId)
	if err != nil {
		return err
	}
	if operator.Role != role_enum.LEADER {
		return errorx.New(errorx.CodeForbidden, "仅盟主可修改联盟设置")
	}

	alliance, err := s.repos.Alliance.FindByUuid(allianceId)
	if err != nil {
		zap.L().Error("查询联盟失败", zap.Error(err))
		return errorx.ErrServerBusy
	}
	alliance.AutoTranslate = enabled
	if err := s.repos.Alliance.Update(alliance); err != nil {
		zap.L().Error(err.Error())
		return errorx.ErrServerBusy
	}

	s.cache.SubmitTask(func() {
		if err := s.cache.Delete(context.Background(), "alliance_info_"+allianceId); err != nil {
			zap.L().Error(err.Error())
		}
	})
	return nil
}

// MemberIds 获取联盟全部成员 UUID
// 投递路径高频调用，走 Redis Set 缓存，缓存为空时回源数据库
func (s *allianceService) MemberIds(allianceId string) ([]string, error) {
	cacheKey := "alliance_members_" + allianceId

	members, err := s.cache.GetSetMembers(context.Background(), cacheKey)
	if err == nil && len(members) > 0 {
		return members, nil
	}
	if err != nil {
		zap.L().Error("Redis get error", zap.Error(err))
	}

	ids, err := s.repos.Member.GetMemberIdsByAllianceUuid(allianceId)
	if err != nil {
		zap.L().Error("查询联盟成员失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	if len(ids) > 0 {
		s.cache.SubmitTask(func() {
			values := make([]interface{}, 0, len(ids))
			for _, id := range ids {
				values = append(values, id)
			}
			if err := s.cache.AddToSet(context.Background(), cacheKey, values...); err != nil {
				zap.L().Error(err.Error())
			}
		})
	}
	return ids, nil
}

// invalidateMemberCache 成员变动后清理成员集合缓存
func (s *allianceService) invalidateMemberCache(allianceId string) {
	s.cache.SubmitTask(func() {
		if err := s.cache.Delete(context.Background(), "alliance_members_"+allianceId); err != nil {
			zap.L().Error(err.Error())
		}
	})
}
