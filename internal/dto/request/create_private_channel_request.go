package request

// CreatePrivateChannelRequest 创建私密频道请求（盟主/官员）
// 使用位置:
//   - internal/handler/channel_handler.go: CreatePrivateChannel
//   - internal/service/channel/service.go: CreatePrivateChannel
type CreatePrivateChannelRequest struct {
	AllianceId  string `json:"alliance_id" binding:"required"`
	Name        string `json:"name" binding:"required,min=2,max=30"`
	Description string `json:"description"`
}
