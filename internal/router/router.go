// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"github.com/gin-gonic/gin"

	"alliance_chat_server/internal/handler"
	"alliance_chat_server/internal/infrastructure/middleware"
)

// Router 路由管理器
// 持有 Handler 聚合实例，各模块路由通过方法注册
type Router struct {
	handlers *handler.Handlers
}

// NewRouter 创建路由管理器
func NewRouter(handlers *handler.Handlers) *Router {
	return &Router{handlers: handlers}
}

// RegisterRoutes 注册所有路由
// 在 https_server.Init() 中调用
// 公开接口（注册/登录/刷新）不走认证中间件，其余接口统一要求 Access Token
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	rt.RegisterAuthRoutes(r) // 认证路由（注册、登录、Token 刷新）
	rt.RegisterWsRoutes(r)   // WebSocket 路由（Token 走查询参数）

	// 需要认证的接口
	authed := r.Group("/")
	authed.Use(middleware.JWTAuth())
	{
		rt.RegisterUserRoutes(authed)     // 用户路由
		rt.RegisterAllianceRoutes(authed) // 联盟路由
		rt.RegisterChannelRoutes(authed)  // 频道路由
		rt.RegisterMessageRoutes(authed)  // 消息路由
	}
}
