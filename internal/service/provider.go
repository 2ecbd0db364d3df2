// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"alliance_chat_server/internal/dao/mysql/repository"
	myredis "alliance_chat_server/internal/dao/redis"
	"alliance_chat_server/internal/infrastructure/translate"
	"alliance_chat_server/internal/service/alliance"
	"alliance_chat_server/internal/service/auth"
	"alliance_chat_server/internal/service/channel"
	"alliance_chat_server/internal/service/message"
	"alliance_chat_server/internal/service/user"
)

// Services 聚合所有 Service 实例
// 作为依赖注入的入口，Handler 层通过 service.Svc 访问各个 Service
type Services struct {
	User     UserService     // 用户 Service
	Alliance AllianceService // 联盟 Service
	Channel  ChannelService  // 频道 Service
	Message  MessageService  // 消息 Service
	Auth     AuthService     // 认证 Service
}

// NewServices 创建并注入所有 Service 实例
// 依赖注入流程：
//  1. 接收 Repository 聚合、缓存服务、翻译网关
//  2. 按依赖顺序创建各个 Service 实例
//  3. 返回 Services 聚合
//
// repos: Repository 层聚合实例
// cache: Redis 缓存服务（带异步任务池）
// gateway: 翻译网关
func NewServices(repos *repository.Repositories, cache myredis.AsyncCacheService,
	gateway *translate.Gateway) *Services {
	// 创建各个 Service 实例，message 依赖 channel 的访问校验，
	// user 依赖 alliance 的创建/加入和 auth 的 TokenID 存储
	authSvc := auth.NewAuthService(cache)
	allianceSvc := alliance.NewAllianceService(repos, cache)
	channelSvc := channel.NewChannelService(repos, cache)
	messageSvc := message.NewMessageService(repos, cache, gateway, channelSvc)
	userSvc := user.NewUserService(repos, cache, allianceSvc, authSvc)

	// 聚合并返回
	return &Services{
		User:     userSvc,
		Alliance: allianceSvc,
		Channel:  channelSvc,
		Message:  messageSvc,
		Auth:     authSvc,
	}
}

// Svc 全局 Services 实例
// Handler 层通过 service.Svc.User.Login() 等方式调用
var Svc *Services

// InitServices 初始化全局 Services 实例
// 应在 main.go 中调用，在 Repository、Redis、翻译网关初始化之后
func InitServices(repos *repository.Repositories, cache myredis.AsyncCacheService,
	gateway *translate.Gateway) {
	Svc = NewServices(repos, cache, gateway)
}
