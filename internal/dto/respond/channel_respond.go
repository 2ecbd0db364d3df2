package respond

// ChannelRespond 频道列表项
// AccessCode 仅在创建私密频道的响应中返回给创建者
// 使用位置:
//   - internal/service/channel/service.go: CreatePrivateChannel, RedeemAccessCode, GetChannelList
type ChannelRespond struct {
	Uuid        string `json:"uuid"`
	AllianceId  string `json:"alliance_id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	AccessCode  string `json:"access_code,omitempty"`
	CanWrite    bool   `json:"can_write"`
	CreatedAt   string `json:"created_at"`
}
