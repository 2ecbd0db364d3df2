package respond

// RegisterRespond 用户注册响应
// 注册同时完成联盟创建/加入，附带联盟信息
// 使用位置:
//   - internal/service/user/service.go: Register
type RegisterRespond struct {
	Uuid              string               `json:"uuid"`
	Username          string               `json:"username"`
	Nickname          string               `json:"nickname"`
	Avatar            string               `json:"avatar"`
	Email             string               `json:"email"`
	PreferredLanguage string               `json:"preferred_language"`
	CreatedAt         string               `json:"created_at"`
	Status            int8                 `json:"status"`
	Alliance          *AllianceInfoRespond `json:"alliance,omitempty"`
}
