package request

// ChangeRoleRequest 变更成员角色请求（仅盟主）
// 使用位置:
//   - internal/handler/alliance_handler.go: ChangeRole
//   - internal/service/alliance/service.go: ChangeRole
type ChangeRoleRequest struct {
	AllianceId string `json:"alliance_id" binding:"required"`
	TargetId   string `json:"target_id" binding:"required"`
	Role       int8   `json:"role" binding:"required"`
}
