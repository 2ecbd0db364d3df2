package respond

// GetUserInfoRespond 获取用户信息响应
// 使用位置:
//   - internal/service/user/service.go: GetUserInfo
type GetUserInfoRespond struct {
	Uuid              string `json:"uuid"`
	Username          string `json:"username"`
	Nickname          string `json:"nickname"`
	Avatar            string `json:"avatar"`
	Email             string `json:"email"`
	PreferredLanguage string `json:"preferred_language"`
	IsOnline          int8   `json:"is_online"`
	CreatedAt         string `json:"created_at"`
	Status            int8   `json:"status"`
}
