package request

// RegisterRequest 用户注册请求
// 注册成功后按 ServerName 自动创建或加入所在服务器的联盟
// 使用位置:
//   - internal/handler/auth_handler.go: Register
//   - internal/service/user/service.go: Register
type RegisterRequest struct {
	Username          string `json:"username" binding:"required,min=3,max=30"`
	Password          string `json:"password" binding:"required,min=6"`
	Nickname          string `json:"nickname" binding:"required"`
	ServerName        string `json:"server_name" binding:"required"`
	PreferredLanguage string `json:"preferred_language"`
	Email             string `json:"email"`
}
