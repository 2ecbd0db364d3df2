// Package handler 提供 HTTP 请求处理器
// 本文件处理频道相关的 API 请求
package handler

import (
	"github.com/gin-gonic/gin"

	"alliance_chat_server/internal/dto/request"
	"alliance_chat_server/internal/service"
	"alliance_chat_server/pkg/errorx"
)

// ChannelHandler 频道请求处理器
type ChannelHandler struct {
	channelSvc service.ChannelService
}

// NewChannelHandler 创建频道处理器实例
func NewChannelHandler(channelSvc service.ChannelService) *ChannelHandler {
	return &ChannelHandler{channelSvc: channelSvc}
}

// CreatePrivateChannel 创建私密频道（盟主/官员）
// POST /channel/createPrivate
// 请求体: request.CreatePrivateChannelRequest
// 响应: respond.ChannelRespond（含访问码，只在创建时返回给创建者）
func (h *ChannelHandler) CreatePrivateChannel(c *gin.Context) {
	var req request.CreatePrivateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.channelSvc.CreatePrivateChannel(c.GetString("user_id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// RedeemAccessCode 兑换访问码获取私密频道授权
// POST /channel/redeemCode
// 请求体: request.RedeemAccessCodeRequest
// 重复兑换幂等返回已授权的频道
func (h *ChannelHandler) RedeemAccessCode(c *gin.Context) {
	var req request.RedeemAccessCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.channelSvc.RedeemAccessCode(c.GetString("user_id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetChannelList 获取当前用户可见的频道列表
// GET /channel/list?alliance_id=xxx
// 私密频道仅对被授权成员可见
func (h *ChannelHandler) GetChannelList(c *gin.Context) {
	allianceId := c.Query("alliance_id")
	if allianceId == "" {
		HandleError(c, errorx.ErrInvalidParam)
		return
	}
	data, err := h.channelSvc.GetChannelList(allianceId, c.GetString("user_id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetChannelInfo 获取频道详情
// GET /channel/info?channel_id=xxx
// 私密频道需要读授权
func (h *ChannelHandler) GetChannelInfo(c *gin.Context) {
	channelId := c.Query("channel_id")
	if channelId == "" {
		HandleError(c, errorx.ErrInvalidParam)
		return
	}
	data, err := h.channelSvc.GetChannelInfo(channelId, c.GetString("user_id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
