// Package router 提供 HTTP 路由注册
// 本文件定义用户相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterUserRoutes 注册用户相关路由（需要认证）
func (rt *Router) RegisterUserRoutes(rg *gin.RouterGroup) {
	userGroup := rg.Group("/user")
	{
		userGroup.GET("/getUserInfo", rt.handlers.User.GetUserInfo)        // 获取用户信息
		userGroup.POST("/updateUserInfo", rt.handlers.User.UpdateUserInfo) // 修改用户信息（含首选语言）
		userGroup.POST("/wsLogout", rt.handlers.Ws.WsLogout)               // 关闭 WebSocket 连接
	}
}
