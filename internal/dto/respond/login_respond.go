package respond

// LoginRespond 用户登录响应
// 使用位置:
//   - internal/service/user/service.go: Login
type LoginRespond struct {
	Uuid              string `json:"uuid"`
	Username          string `json:"username"`
	Nickname          string `json:"nickname"`
	Avatar            string `json:"avatar"`
	Email             string `json:"email"`
	PreferredLanguage string `json:"preferred_language"`
	CreatedAt         string `json:"created_at"`
	Status            int8   `json:"status"`
	AccessToken       string `json:"access_token"`
	RefreshToken      string `json:"refresh_token"`
}
