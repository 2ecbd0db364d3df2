// Package handler 提供 HTTP 请求处理器
// 本文件处理注册、登录和 Token 刷新相关的 API 请求
package handler

import (
	"github.com/gin-gonic/gin"

	"alliance_chat_server/internal/dto/request"
	"alliance_chat_server/internal/service"
	"alliance_chat_server/pkg/errorx"
	"alliance_chat_server/pkg/util/jwt"
)

// AuthHandler 认证请求处理器
// 通过构造函数注入 Service，遵循依赖倒置原则
type AuthHandler struct {
	userSvc service.UserService
	authSvc service.AuthService
}

// NewAuthHandler 创建认证处理器实例
func NewAuthHandler(userSvc service.UserService, authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{
		userSvc: userSvc,
		authSvc: authSvc,
	}
}

// Register 用户注册
// POST /register
// 请求体: request.RegisterRequest
// 响应: respond.RegisterRespond (用户信息 + 联盟信息)
// 注册成功后按 server_name 自动创建或加入所在服务器的联盟
func (h *AuthHandler) Register(c *gin.Context) {
	var req request.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.userSvc.Register(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Login 用户登录（密码登录）
// POST /login
// 请求体: request.LoginRequest
// 响应: respond.LoginRespond (用户信息 + JWT Token)
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.userSvc.Login(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// RefreshToken 刷新 Access Token
// POST /auth/refresh
// 请求体: request.RefreshTokenRequest
// 响应: { access_token: string }
//
// 单点互踢机制:
//   - 用户登录时会在 Redis 中存储 Token ID
//   - 如果用户在其他设备登录，会覆盖旧的 Token ID
//   - 使用旧 Token ID 刷新时会被拒绝
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req request.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	// 1. 解析 Refresh Token
	claims, err := jwt.ParseToken(req.RefreshToken)
	if err != nil {
		HandleError(c, errorx.New(errorx.CodeUnauthorized, "Refresh Token 已过期或无效，请重新登录"))
		return
	}

	// 2. 验证是否为 Refresh Token（防止使用 Access Token 刷新）
	if claims.Subject != "refresh_token" {
		HandleError(c, errorx.New(errorx.CodeUnauthorized, "请使用 Refresh Token"))
		return
	}

	// 3. 比对 Redis 中的最新 Token ID，实现单点互踢
	valid, err := h.authSvc.ValidateTokenID(claims.UserID, claims.TokenID)
	if err != nil {
		HandleError(c, errorx.ErrServerBusy)
		return
	}
	if !valid {
		HandleError(c, errorx.New(errorx.CodeUnauthorized, "您的账号已在其他设备登录，请重新登录"))
		return
	}

	// 4. 生成新的 Access Token
	newAccessToken, err := jwt.GenerateAccessToken(claims.UserID)
	if err != nil {
		HandleError(c, errorx.ErrServerBusy)
		return
	}

	HandleSuccess(c, gin.H{
		"access_token": newAccessToken,
	})
}
