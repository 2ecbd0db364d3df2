package request

// CreateAllianceRequest 创建/加入服务器联盟请求
// 同一服务器名下只有一个联盟：不存在则创建（申请人为盟主），已存在则直接加入
// 使用位置:
//   - internal/handler/alliance_handler.go: CreateAlliance
//   - internal/service/alliance/service.go: BootstrapOrJoin
type CreateAllianceRequest struct {
	ServerName string `json:"server_name" binding:"required"`
	Name       string `json:"name"`
}
