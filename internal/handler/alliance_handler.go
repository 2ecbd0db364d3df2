// Package handler 提供 HTTP 请求处理器
// 本文件处理联盟相关的 API 请求
package handler

import (
	"github.com/gin-gonic/gin"

	"alliance_chat_server/internal/dto/request"
	"alliance_chat_server/internal/service"
	"alliance_chat_server/pkg/errorx"
)

// AllianceHandler 联盟请求处理器
type AllianceHandler struct {
	allianceSvc service.AllianceService
}

// NewAllianceHandler 创建联盟处理器实例
func NewAllianceHandler(allianceSvc service.AllianceService) *AllianceHandler {
	return &AllianceHandler{allianceSvc: allianceSvc}
}

// CreateAlliance 创建/加入服务器联盟
// POST /alliance/create
// 请求体: request.CreateAllianceRequest
// 同一服务器名下只有一个联盟：不存在则创建（申请人为盟主），已存在则直接加入
func (h *AllianceHandler) CreateAlliance(c *gin.Context) {
	var req request.CreateAllianceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.allianceSvc.BootstrapOrJoin(c.GetString("user_id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// JoinAlliance 通过邀请码加入联盟
// POST /alliance/join
// 请求体: request.JoinAllianceRequest
func (h *AllianceHandler) JoinAlliance(c *gin.Context) {
	var req request.JoinAllianceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.allianceSvc.JoinByInviteCode(c.GetString("user_id"), req.InviteCode)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetAllianceInfo 获取联盟信息
// GET /alliance/info?alliance_id=xxx
// 邀请码只对盟主/官员可见
func (h *AllianceHandler) GetAllianceInfo(c *gin.Context) {
	allianceId := c.Query("alliance_id")
	if allianceId == "" {
		HandleError(c, errorx.ErrInvalidParam)
		return
	}
	data, err := h.allianceSvc.GetAllianceInfo(allianceId, c.GetString("user_id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetMyAllianceList 获取当前用户加入的联盟列表
// GET /alliance/myList
func (h *AllianceHandler) GetMyAllianceList(c *gin.Context) {
	data, err := h.allianceSvc.GetMyAllianceList(c.GetString("user_id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetMemberList 获取联盟成员列表
// GET /alliance/memberList?alliance_id=xxx
func (h *AllianceHandler) GetMemberList(c *gin.Context) {
	allianceId := c.Query("alliance_id")
	if allianceId == "" {
		HandleError(c, errorx.ErrInvalidParam)
		return
	}
	data, err := h.allianceSvc.GetMemberList(allianceId, c.GetString("user_id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// RemoveMember 移除联盟成员（仅盟主）
// POST /alliance/removeMember
// 请求体: request.RemoveMemberRequest
func (h *AllianceHandler) RemoveMember(c *gin.Context) {
	var req request.RemoveMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.allianceSvc.RemoveMember(req.AllianceId, c.GetString("user_id"), req.TargetId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// ChangeRole 变更成员角色（仅盟主）
// POST /alliance/changeRole
// 请求体: request.ChangeRoleRequest
func (h *AllianceHandler) ChangeRole(c *gin.Context) {
	var req request.ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.allianceSvc.ChangeRole(req.AllianceId, c.GetString("user_id"), req.TargetId, req.Role); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// GetAllianceStats 获取联盟统计信息
// GET /alliance/stats?alliance_id=xxx
func (h *AllianceHandler) GetAllianceStats(c *gin.Context) {
	allianceId := c.Query("alliance_id")
	if allianceId == "" {
		HandleError(c, errorx.ErrInvalidParam)
		return
	}
	data, err := h.allianceSvc.GetAllianceStats(allianceId, c.GetString("user_id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// SetAutoTranslate 开关联盟自动翻译（仅盟主）
// POST /alliance/setAutoTranslate
// 请求体: request.SetAutoTranslateRequest
func (h *AllianceHandler) SetAutoTranslate(c *gin.Context) {
	var req request.SetAutoTranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.allianceSvc.SetAutoTranslate(req.AllianceId, c.GetString("user_id"), req.Enabled); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
