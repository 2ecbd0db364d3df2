package respond

// AllianceInfoRespond 联盟信息响应
// MyRole 为请求者在该联盟中的角色，未加入时为 0
// InviteCode 仅对盟主/官员返回
// 使用位置:
//   - internal/service/alliance/service.go: BootstrapOrJoin, JoinByInviteCode, GetAllianceInfo, GetMyAllianceList
type AllianceInfoRespond struct {
	Uuid          string `json:"uuid"`
	Name          string `json:"name"`
	ServerName    string `json:"server_name"`
	LeaderId      string `json:"leader_id"`
	InviteCode    string `json:"invite_code,omitempty"`
	AutoTranslate int8   `json:"auto_translate"`
	MemberCnt     int    `json:"member_cnt"`
	MyRole        int8   `json:"my_role"`
	CreatedAt     string `json:"created_at"`
}
