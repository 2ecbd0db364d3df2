// Package router 提供 HTTP 路由注册
// 本文件定义频道相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterChannelRoutes 注册频道相关路由（需要认证）
// 包括私密频道创建和访问码兑换
func (rt *Router) RegisterChannelRoutes(rg *gin.RouterGroup) {
	channelGroup := rg.Group("/channel")
	{
		channelGroup.GET("/list", rt.handlers.Channel.GetChannelList)                 // 获取可见频道列表
		channelGroup.GET("/info", rt.handlers.Channel.GetChannelInfo)                 // 获取频道详情
		channelGroup.POST("/createPrivate", rt.handlers.Channel.CreatePrivateChannel) // 创建私密频道
		channelGroup.POST("/redeemCode", rt.handlers.Channel.RedeemAccessCode)        // 兑换访问码
	}
}
