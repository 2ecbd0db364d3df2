package request

// UpdateUserInfoRequest 更新用户信息请求
// 使用位置:
//   - internal/handler/user_handler.go: UpdateUserInfo
//   - internal/service/user/service.go: UpdateUserInfo
type UpdateUserInfoRequest struct {
	Email             string `json:"email"`
	Nickname          string `json:"nickname"`
	Avatar            string `json:"avatar"`
	PreferredLanguage string `json:"preferred_language"`
}
