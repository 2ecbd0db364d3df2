// Package router 提供 HTTP 路由注册
// 本文件定义消息相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterMessageRoutes 注册消息相关路由（需要认证）
// 包括消息历史查询、置顶和文件上传功能
func (rt *Router) RegisterMessageRoutes(rg *gin.RouterGroup) {
	messageGroup := rg.Group("/message")
	{
		messageGroup.GET("/channelList", rt.handlers.Message.GetChannelMessageList) // 拉取频道历史消息
		messageGroup.POST("/pin", rt.handlers.Message.PinMessage)                   // 置顶消息
		messageGroup.POST("/unpin", rt.handlers.Message.UnpinMessage)               // 取消置顶
		messageGroup.POST("/uploadAvatar", rt.handlers.Message.UploadAvatar)        // 上传用户头像
		messageGroup.POST("/uploadFile", rt.handlers.Message.UploadFile)            // 上传聊天文件
	}
}
