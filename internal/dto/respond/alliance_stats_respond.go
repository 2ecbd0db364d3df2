package respond

// AllianceStatsRespond 联盟统计信息响应
// 使用位置:
//   - internal/service/alliance/service.go: GetAllianceStats
type AllianceStatsRespond struct {
	AllianceId    string `json:"alliance_id"`
	MemberCnt     int    `json:"member_cnt"`
	OnlineCnt     int64  `json:"online_cnt"`
	ChannelCnt    int64  `json:"channel_cnt"`
	TotalMessages int64  `json:"total_messages"`
}
