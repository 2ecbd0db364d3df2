// Package router 提供 HTTP 路由注册
// 本文件定义联盟相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterAllianceRoutes 注册联盟相关路由（需要认证）
// 包括联盟创建/加入、成员管理和统计
func (rt *Router) RegisterAllianceRoutes(rg *gin.RouterGroup) {
	allianceGroup := rg.Group("/alliance")
	{
		// ===== 创建与加入 =====
		allianceGroup.POST("/create", rt.handlers.Alliance.CreateAlliance) // 按服务器名创建或加入联盟
		allianceGroup.POST("/join", rt.handlers.Alliance.JoinAlliance)     // 通过邀请码加入联盟

		// ===== 查询 =====
		allianceGroup.GET("/info", rt.handlers.Alliance.GetAllianceInfo)       // 获取联盟信息
		allianceGroup.GET("/myList", rt.handlers.Alliance.GetMyAllianceList)   // 获取已加入的联盟列表
		allianceGroup.GET("/memberList", rt.handlers.Alliance.GetMemberList)   // 获取成员列表
		allianceGroup.GET("/stats", rt.handlers.Alliance.GetAllianceStats)     // 获取联盟统计

		// ===== 管理（仅盟主） =====
		allianceGroup.POST("/removeMember", rt.handlers.Alliance.RemoveMember)         // 移除成员
		allianceGroup.POST("/changeRole", rt.handlers.Alliance.ChangeRole)             // 变更成员角色
		allianceGroup.POST("/setAutoTranslate", rt.handlers.Alliance.SetAutoTranslate) // 开关自动翻译
	}
}
