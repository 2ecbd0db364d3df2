package respond

// ChannelInfoRespond 频道详情响应
// GrantCnt 仅私密频道有意义，表示已授权人数
// 使用位置:
//   - internal/service/channel/service.go: GetChannelInfo
type ChannelInfoRespond struct {
	Uuid        string `json:"uuid"`
	AllianceId  string `json:"alliance_id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	CreatorId   string `json:"creator_id"`
	CanWrite    bool   `json:"can_write"`
	GrantCnt    int64  `json:"grant_cnt,omitempty"`
	CreatedAt   string `json:"created_at"`
}
