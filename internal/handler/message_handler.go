// Package handler 提供 HTTP 请求处理器
// 本文件处理消息历史、置顶和文件上传相关的 API 请求
package handler

import (
	"github.com/gin-gonic/gin"

	"alliance_chat_server/internal/dto/request"
	"alliance_chat_server/internal/service"
)

// MessageHandler 消息请求处理器
type MessageHandler struct {
	messageSvc service.MessageService
}

// NewMessageHandler 创建消息处理器实例
func NewMessageHandler(messageSvc service.MessageService) *MessageHandler {
	return &MessageHandler{messageSvc: messageSvc}
}

// GetChannelMessageList 拉取频道历史消息
// GET /message/channelList?channel_id=xxx&page=1&page_size=50&include_deleted=false
// include_deleted 仅盟主/官员生效
func (h *MessageHandler) GetChannelMessageList(c *gin.Context) {
	var req request.ChannelMessageListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.GetChannelMessageList(c.GetString("user_id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// PinMessage 置顶消息（盟主/官员）
// POST /message/pin
// 请求体: request.PinMessageRequest
func (h *MessageHandler) PinMessage(c *gin.Context) {
	var req request.PinMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.messageSvc.SetPinned(c.GetString("user_id"), req.MessageId, 1); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// UnpinMessage 取消置顶消息（盟主/官员）
// POST /message/unpin
// 请求体: request.PinMessageRequest
func (h *MessageHandler) UnpinMessage(c *gin.Context) {
	var req request.PinMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.messageSvc.SetPinned(c.GetString("user_id"), req.MessageId, 0); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// UploadAvatar 上传头像
// POST /message/uploadAvatar
func (h *MessageHandler) UploadAvatar(c *gin.Context) {
	path, err := h.messageSvc.UploadAvatar(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, path)
}

// UploadFile 上传文件
// POST /message/uploadFile
func (h *MessageHandler) UploadFile(c *gin.Context) {
	paths, err := h.messageSvc.UploadFile(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, paths)
}
