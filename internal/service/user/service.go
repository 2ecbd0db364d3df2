// Package user 提供用户相关的业务逻辑
// 处理用户注册、登录、信息管理等功能
package user

import (
	"strings"

	"go.uber.org/zap"

	"alliance_chat_server/internal/dao/mysql/repository"
	myredis "alliance_chat_server/internal/dao/redis"
	"alliance_chat_server/internal/dto/request"
	"alliance_chat_server/internal/dto/respond"
	"alliance_chat_server/internal/model"
	"alliance_chat_server/pkg/enum/language/language_enum"
	"alliance_chat_server/pkg/errorx"
	"alliance_chat_server/pkg/util/jwt"
	"alliance_chat_server/pkg/util/random"
)

// AllianceBootstrapper 注册时的联盟创建/加入接口
// 由 alliance service 实现，避免业务包之间的循环依赖
type AllianceBootstrapper interface {
	BootstrapOrJoin(userId string, req request.CreateAllianceRequest) (*respond.AllianceInfoRespond, error)
}

// TokenStore 登录成功后写入有效 TokenID，实现单点互踢
type TokenStore interface {
	StoreTokenID(userID, tokenID string) error
}

// userService 用户业务逻辑实现
type userService struct {
	repos    *repository.Repositories
	cache    myredis.AsyncCacheService
	alliance AllianceBootstrapper
	tokens   TokenStore
}

// NewUserService 构造函数，注入所有依赖
func NewUserService(repos *repository.Repositories, cacheService myredis.AsyncCacheService,
	alliance AllianceBootstrapper, tokens TokenStore) *userService {
	return &userService{
		repos:    repos,
		cache:    cacheService,
		alliance: alliance,
		tokens:   tokens,
	}
}

// Register 用户注册
// 注册成功后按 server_name 自动创建或加入所在服务器的联盟：
// 该服务器尚无联盟时申请人成为盟主，否则作为普通成员加入
func (u *userService) Register(req request.RegisterRequest) (*respond.RegisterRespond, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, errorx.ErrInvalidParam
	}
	if req.PreferredLanguage != "" && !language_enum.IsSupported(req.PreferredLanguage) {
		return nil, errorx.New(errorx.CodeInvalidParam, "不支持的语言")
	}

	if _, err := u.repos.User.FindByUsername(username); err == nil {
		return nil, errorx.New(errorx.CodeUserExist, "用户名已被占用")
	} else if !errorx.IsNotFound(err) {
		zap.L().Error("查询用户失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	newUser := model.UserInfo{
		Uuid:              "U" + random.GetNowAndLenRandomString(11),
		Username:          username,
		Nickname:          req.Nickname,
		Email:             req.Email,
		PreferredLanguage: language_enum.OrDefault(req.PreferredLanguage),
		RawPassword:       req.Password, // BeforeSave Hook 自动加密
	}
	if err := u.repos.User.Create(&newUser); err != nil {
		zap.L().Error(err.Error())
		// 唯一索引兜底，并发重名注册
		return nil, errorx.New(errorx.CodeUserExist, "用户名已被占用")
	}

	// 按服务器名创建或加入联盟
	// 联盟侧失败不回滚用户，用户可稍后凭邀请码加入
	allianceRsp, err := u.alliance.BootstrapOrJoin(newUser.Uuid, request.CreateAllianceRequest{
		ServerName: req.ServerName,
	})
	if err != nil {
		zap.L().Error("注册后创建/加入联盟失败", zap.String("userId", newUser.Uuid), zap.Error(err))
		allianceRsp = nil
	}

	return &respond.RegisterRespond{
		Uuid:              newUser.Uuid,
		Username:          newUser.Username,
		Nickname:          newUser.Nickname,
		Avatar:            newUser.Avatar,
		Email:             newUser.Email,
		PreferredLanguage: newUser.PreferredLanguage,
		CreatedAt:         newUser.CreatedAt.Format("2006-01-02 15:04:05"),
		Status:            newUser.Status,
		Alliance:          allianceRsp,
	}, nil
}

// Login 密码登录
// 校验通过后签发 access/refresh token，并写入当前有效 TokenID 实现单点互踢
func (u *userService) Login(req request.LoginRequest) (*respond.LoginRespond, error) {
	user, err := u.repos.User.FindByUsername(strings.TrimSpace(req.Username))
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUserNotExist, "用户不存在")
		}
		zap.L().Error("查询用户失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if !user.CheckPassword(req.Password) {
		return nil, errorx.New(errorx.CodeInvalidPassword, "密码不正确")
	}
	if user.Status != 0 {
		return nil, errorx.New(errorx.CodeForbidden, "账号已被禁用")
	}

	accessToken, err := jwt.GenerateAccessToken(user.Uuid)
	if err != nil {
		zap.L().Error("生成 access token 失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	refreshToken, tokenID, err := jwt.GenerateRefreshToken(user.Uuid)
	if err != nil {
		zap.L().Error("生成 refresh token 失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if err := u.tokens.StoreTokenID(user.Uuid, tokenID); err != nil {
		zap.L().Error("写入 token id 失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	return &respond.LoginRespond{
		Uuid:              user.Uuid,
		Username:          user.Username,
		Nickname:          user.Nickname,
		Avatar:            user.Avatar,
		Email:             user.Email,
		PreferredLanguage: user.PreferredLanguage,
		CreatedAt:         user.CreatedAt.Format("2006-01-02 15:04:05"),
		Status:            user.Status,
		AccessToken:       accessToken,
		RefreshToken:      refreshToken,
	}, nil
}

// UpdateUserInfo 更新用户信息
// 首选语言变更会影响后续消息的翻译目标语言集合
func (u *userService) UpdateUserInfo(userId string, req request.UpdateUserInfoRequest) error {
	user, err := u.repos.User.FindByUuid(userId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return errorx.New(errorx.CodeUserNotExist, "用户不存在")
		}
		zap.L().Error("查询用户失败", zap.Error(err))
		return errorx.ErrServerBusy
	}

	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Nickname != "" {
		user.Nickname = req.Nickname
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}
	if req.PreferredLanguage != "" {
		if !language_enum.IsSupported(req.PreferredLanguage) {
			return errorx.New(errorx.CodeInvalidParam, "不支持的语言")
		}
		user.PreferredLanguage = req.PreferredLanguage
	}

	if err := u.repos.User.UpdateUserInfo(user); err != nil {
		zap.L().Error(err.Error())
		return errorx.ErrServerBusy
	}
	return nil
}

// GetUserInfo 获取单个用户信息
func (u *userService) GetUserInfo(uuid string) (*respond.GetUserInfoRespond, error) {
	user, err := u.repos.User.FindByUuid(uuid)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUserNotExist, "用户不存在")
		}
		zap.L().Error("查询用户失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return &respond.GetUserInfoRespond{
		Uuid:              user.Uuid,
		Username:          user.Username,
		Nickname:          user.Nickname,
		Avatar:            user.Avatar,
		Email:             user.Email,
		PreferredLanguage: user.PreferredLanguage,
		IsOnline:          user.IsOnline,
		CreatedAt:         user.CreatedAt.Format("2006-01-02 15:04:05"),
		Status:            user.Status,
	}, nil
}
