// Package router 提供 HTTP 路由注册
// 本文件定义 WebSocket 相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterWsRoutes 注册 WebSocket 路由
// 浏览器的 WebSocket API 无法自定义 Header，认证在 handler 内按查询参数 token 完成
func (rt *Router) RegisterWsRoutes(r *gin.Engine) {
	r.GET("/wss", rt.handlers.Ws.WsLogin)
}
