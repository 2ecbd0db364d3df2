// Package handler 提供 HTTP 请求处理器
// 本文件处理 WebSocket 连接相关的 API 请求
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"alliance_chat_server/internal/service/chat"
	"alliance_chat_server/pkg/errorx"
	"alliance_chat_server/pkg/util/jwt"
)

// WsHandler WebSocket 请求处理器
type WsHandler struct{}

// NewWsHandler 创建 WebSocket 处理器实例
func NewWsHandler() *WsHandler {
	return &WsHandler{}
}

// WsLogin WebSocket 登录（升级 HTTP 连接为 WebSocket）
// GET /wss?token=xxx
// 浏览器的 WebSocket API 无法自定义 Header，Access Token 通过查询参数传递
// 连接身份取自 Token，后续所有上行事件的 send_id 按此身份覆盖
func (h *WsHandler) WsLogin(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code": errorx.CodeUnauthorized,
			"msg":  "请先登录",
		})
		return
	}
	claims, err := jwt.ParseToken(token)
	if err != nil || claims.Subject != "access_token" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code": errorx.CodeUnauthorized,
			"msg":  "Token 已过期或无效，请重新登录",
		})
		return
	}
	// 初始化 WebSocket 客户端连接
	chat.NewClientInit(c, claims.UserID)
}

// WsLogout WebSocket 登出
// POST /user/wsLogout
// 关闭当前用户的全部 WebSocket 连接
func (h *WsHandler) WsLogout(c *gin.Context) {
	if err := chat.ClientLogout(c.GetString("user_id")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
