package request

// RemoveMemberRequest 移除联盟成员请求（仅盟主）
// 使用位置:
//   - internal/handler/alliance_handler.go: RemoveMember
//   - internal/service/alliance/service.go: RemoveMember
type RemoveMemberRequest struct {
	AllianceId string `json:"alliance_id" binding:"required"`
	TargetId   string `json:"target_id" binding:"required"`
}
