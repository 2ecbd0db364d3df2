// Package channel 提供频道授权相关的业务逻辑
// 核心规则：
//  1. 权限校验失败一律拒绝（fail-closed），查询异常不放行
//  2. 私密频道默认拒绝，只有授权记录能放行，盟主也不例外
//  3. 授权只增不减，没有撤销操作
package channel

import (
	"context"
	"fmt"
	"strings"

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

// 访问意图，与 service 包常量保持一致
const (
	accessRead  = "read"
	accessWrite = "write"
)

// channelService 频道业务逻辑实现
// 通过构造函数注入 Repository 和 Cache 依赖
type channelService struct {
	repos *repository.Repositories
	cache myredis.AsyncCacheService
}

// NewChannelService 构造函数，注入所有依赖
func NewChannelService(repos *repository.Repositories, cacheService myredis.AsyncCacheService) *channelService {
	return &channelService{
		repos: repos,
		cache: cacheService,
	}
}

// requireMember 校验用户是联盟成员并返回成员关系
// 未加入返回 CodeNotMember；查询异常按无权限处理（fail-closed）
func (s *channelService) requireMember(allianceId, userId string) (*model.AllianceMember, error) {
	member, err := s.repos.Member.FindByAllianceAndUser(allianceId, userId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeNotMember, "不是联盟成员")
		}
		zap.L().Error("成员校验查询失败，按无权限处理", zap.Error(err))
		return nil, errorx.Wrap(err, errorx.CodeForbidden, "权限校验失败")
	}
	return member, nil
}

// CheckAccess 校验用户对频道的访问权限
// intent 为 read / write，未知 intent 一律拒绝
func (s *channelService) CheckAccess(channelId, userId, intent string) error {
	ch, err := s.repos.Channel.FindByUuid(channelId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return errorx.New(errorx.CodeNotFound, "频道不存在")
		}
		zap.L().Error("频道查询失败，按无权限处理", zap.Error(err))
		return errorx.Wrap(err, errorx.CodeForbidden, "权限校验失败")
	}

	member, err := s.requireMember(ch.AllianceId, userId)
	if err != nil {
		return err
	}

	var roles role_enum.RoleSet
	switch intent {
	case accessRead:
		roles = role_enum.RoleSet(ch.ReadRoles)
	case accessWrite:
		roles = role_enum.RoleSet(ch.WriteRoles)
	default:
		return errorx.New(errorx.CodeForbidden, "未知的访问类型")
	}
	if !roles.Permits(member.Role) {
		return errorx.New(errorx.CodeForbidden, "角色权限不足")
	}

	// 私密频道额外要求授权记录，任何角色都不例外
	if ch.Type == channel_type_enum.PRIVATE {
		if _, err := s.repos.Grant.FindByChannelAndUser(channelId, userId); err != nil {
			if errorx.IsNotFound(err) {
				return errorx.New(errorx.CodeForbidden, "未获得私密频道授权")
			}
			zap.L().Error("授权查询失败，按无权限处理", zap.Error(err))
			return errorx.Wrap(err, errorx.CodeForbidden, "权限校验失败")
		}
	}
	return nil
}

// CreatePrivateChannel 创建私密频道
// 仅盟主/官员可创建；同联盟内频道名不区分大小写唯一；创建者自动获得授权
func (s *channelService) CreatePrivateChannel(creatorId string, req request.CreatePrivateChannelRequest) (*respond.ChannelRespond, error) {
	member, err := s.requireMember(req.AllianceId, creatorId)
	if err != nil {
		return nil, err
	}
	if !role_enum.OFFICER_UP.Permits(member.Role) {
		return nil, errorx.New(errorx.CodeForbidden, "仅盟主/官员可创建私密频道")
	}

	name := strings.TrimSpace(req.Name)
	if len(name) < 2 {
		return nil, errorx.New(errorx.CodeInvalidParam, "频道名至少2个字符")
	}

	// 重名检查，MySQL 默认排序规则下不区分大小写
	if _, err := s.repos.Channel.FindByAllianceAndName(req.AllianceId, name); err == nil {
		return nil, errorx.New(errorx.CodeDuplicateName, "频道名已存在")
	} else if !errorx.IsNotFound(err) {
		zap.L().Error("频道重名检查失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	accessCode, err := s.freshAccessCode(req.AllianceId)
	if err != nil {
		return nil, err
	}

	ch := model.Channel{
		Uuid:        fmt.Sprintf("C%s", random.GetNowAndLenRandomString(11)),
		AllianceId:  req.AllianceId,
		Name:        name,
		Type:        channel_type_enum.PRIVATE,
		Description: req.Description,
		CreatorId:   creatorId,
		AccessCode:  accessCode,
		WriteRoles:  int8(role_enum.ALL),
		ReadRoles:   int8(role_enum.ALL),
	}

	err = s.repos.Transaction(func(txRepos *repository.Repositories) error {
		if err := txRepos.Channel.Create(&ch); err != nil {
			zap.L().Error(err.Error())
			return errorx.ErrServerBusy
		}
		// 创建者自动授权
		grant := model.ChannelGrant{
			ChannelId: ch.Uuid,
			UserId:    creatorId,
			GrantedBy: "creator",
		}
		if err := txRepos.Grant.Create(&grant); err != nil {
			zap.L().Error(err.Error())
			return errorx.ErrServerBusy
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.SubmitTask(func() {
		if err := s.cache.AddToSet(context.Background(), "channel_grants_"+ch.Uuid, creatorId); err != nil {
			zap.L().Error(err.Error())
		}
	})

	// 访问码只在创建响应中返回给创建者
	return &respond.ChannelRespond{
		Uuid:        ch.Uuid,
		AllianceId:  ch.AllianceId,
		Name:        ch.Name,
		Type:        ch.Type,
		Description: ch.Description,
		AccessCode:  ch.AccessCode,
		CanWrite:    true,
		CreatedAt:   ch.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

// freshAccessCode 生成联盟内未使用的访问码
func (s *channelService) freshAccessCode(allianceId string) (string, error) {
	for i := 0; i < 5; i++ {
		code := random.GetUpperCode(constants.ACCESS_CODE_LENGTH)
		_, err := s.repos.Channel.FindByAllianceAndAccessCode(allianceId, code)
		if errorx.IsNotFound(err) {
			return code, nil
		}
		if err == nil {
			continue // 撞码，重新生成
		}
		zap.L().Error("访问码查重失败", zap.Error(err))
		return "", errorx.ErrServerBusy
	}
	return "", errorx.ErrServerBusy
}

// RedeemAccessCode 兑换访问码获取私密频道授权
// 访问码先规范化（去空白、转大写）；已有授权时幂等返回成功
func (s *channelService) RedeemAccessCode(userId string, req request.RedeemAccessCodeRequest) (*respond.ChannelRespond, error) {
	member, err := s.requireMember(req.AllianceId, userId)
	if err != nil {
		return nil, err
	}

	code := random.NormalizeCode(req.AccessCode)
	if len(code) != constants.ACCESS_CODE_LENGTH {
		return nil, errorx.New(errorx.CodeInvalidCode, "访问码无效")
	}

	ch, err := s.repos.Channel.FindByAllianceAndAccessCode(req.AllianceId, code)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeInvalidCode, "访问码无效")
		}
		zap.L().Error("访问码查询失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	rsp := &respond.ChannelRespond{
		Uuid:        ch.Uuid,
		AllianceId:  ch.AllianceId,
		Name:        ch.Name,
		Type:        ch.Type,
		Description: ch.Description,
		CanWrite:    role_enum.RoleSet(ch.WriteRoles).Permits(member.Role),
		CreatedAt:   ch.CreatedAt.Format("2006-01-02 15:04:05"),
	}

	// 已有授权直接返回，重复兑换幂等
	if _, err := s.repos.Grant.FindByChannelAndUser(ch.Uuid, userId); err == nil {
		return rsp, nil
	} else if !errorx.IsNotFound(err) {
		zap.L().Error("授权查询失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	grant := model.ChannelGrant{
		ChannelId: ch.Uuid,
		UserId:    userId,
		GrantedBy: "access_code",
	}
	if err := s.repos.Grant.Create(&grant); err != nil {
		// 并发兑换时可能撞唯一索引，再查一次，存在即视为成功
		if _, err2 := s.repos.Grant.FindByChannelAndUser(ch.Uuid, userId); err2 == nil {
			return rsp, nil
		}
		zap.L().Error(err.Error())
		return nil, errorx.ErrServerBusy
	}

	s.cache.SubmitTask(func() {
		if err := s.cache.AddToSet(context.Background(), "channel_grants_"+ch.Uuid, userId); err != nil {
			zap.L().Error(err.Error())
		}
	})

	return rsp, nil
}

// GetChannelList 获取用户可见的频道列表
// 私密频道只对已授权用户可见，其余频道按读权限过滤
func (s *channelService) GetChannelList(allianceId, userId string) ([]respond.ChannelRespond, error) {
	member, err := s.requireMember(allianceId, userId)
	if err != nil {
		return nil, err
	}

	channels, err := s.repos.Channel.FindByAllianceUuid(allianceId)
	if err != nil {
		zap.L().Error("查询联盟频道失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	grantedChannels, err := s.repos.Grant.FindChannelUuidsByUser(userId)
	if err != nil {
		zap.L().Error("查询用户授权失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	granted := make(map[string]struct{}, len(grantedChannels))
	for _, id := range grantedChannels {
		granted[id] = struct{}{}
	}

	// 使用 make 初始化 len=0，确保序列化后是 [] 而不是 null
	rsp := make([]respond.ChannelRespond, 0, len(channels))
	for _, ch := range channels {
		if ch.Type == channel_type_enum.PRIVATE {
			if _, ok := granted[ch.Uuid]; !ok {
				continue
			}
		} else if !role_enum.RoleSet(ch.ReadRoles).Permits(member.Role) {
			continue
		}
		rsp = append(rsp, respond.ChannelRespond{
			Uuid:        ch.Uuid,
			AllianceId:  ch.AllianceId,
			Name:        ch.Name,
			Type:        ch.Type,
			Description: ch.Description,
			CanWrite:    role_enum.RoleSet(ch.WriteRoles).Permits(member.Role),
			CreatedAt:   ch.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return rsp, nil
}

// GetChannelInfo 获取频道详情
// 权限校验与读取一致：私密频道需要授权，查询异常拒绝
func (s *channelService) GetChannelInfo(channelId, userId string) (*respond.ChannelInfoRespond, error) {
	if err := s.CheckAccess(channelId, userId, accessRead); err != nil {
		return nil, err
	}

	ch, err := s.repos.Channel.FindByUuid(channelId)
	if err != nil {
		zap.L().Error("频道查询失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	member, err := s.requireMember(ch.AllianceId, userId)
	if err != nil {
		return nil, err
	}

	rsp := &respond.ChannelInfoRespond{
		Uuid:        ch.Uuid,
		AllianceId:  ch.AllianceId,
		Name:        ch.Name,
		Type:        ch.Type,
		Description: ch.Description,
		CreatorId:   ch.CreatorId,
		CanWrite:    role_enum.RoleSet(ch.WriteRoles).Permits(member.Role),
		CreatedAt:   ch.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if ch.Type == channel_type_enum.PRIVATE {
		if cnt, err := s.repos.Grant.CountByChannelUuid(channelId); err == nil {
			rsp.GrantCnt = cnt
		}
	}
	return rsp, nil
}

// GrantedUserIds 获取私密频道的授权用户 UUID
// 投递路径高频调用，走 Redis Set 缓存，缓存为空时回源数据库
func (s *channelService) GrantedUserIds(channelId string) ([]string, error) {
	cacheKey := "channel_grants_" + channelId

	members, err := s.cache.GetSetMembers(context.Background(), cacheKey)
	if err == nil && len(members) > 0 {
		return members, nil
	}
	if err != nil {
		zap.L().Error("Redis get error", zap.Error(err))
	}

	ids, err := s.repos.Grant.FindUserUuidsByChannelUuid(channelId)
	if err != nil {
		zap.L().Error("查询频道授权用户失败", zap.Error(err))
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
