package request

// ChannelMessageListRequest 拉取频道历史消息请求
// IncludeDeleted 仅盟主/官员生效，普通成员强制过滤软删除消息
// 使用位置:
//   - internal/handler/message_handler.go: GetChannelMessageList
//   - internal/service/message/service.go: GetChannelMessageList
type ChannelMessageListRequest struct {
	ChannelId      string `form:"channel_id" binding:"required"`
	Page           int    `form:"page"`
	PageSize       int    `form:"page_size"`
	IncludeDeleted bool   `form:"include_deleted"`
}
