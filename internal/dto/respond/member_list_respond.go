package respond

// MemberListRespond 联盟成员列表项
// 使用位置:
//   - internal/service/alliance/service.go: GetMemberList
type MemberListRespond struct {
	UserId            string `json:"user_id"`
	Nickname          string `json:"nickname"`
	Avatar            string `json:"avatar"`
	Role              int8   `json:"role"`
	PreferredLanguage string `json:"preferred_language"`
	IsOnline          int8   `json:"is_online"`
}
