package request

// JoinAllianceRequest 通过邀请码加入联盟请求
// 使用位置:
//   - internal/handler/alliance_handler.go: JoinAlliance
//   - internal/service/alliance/service.go: JoinByInviteCode
type JoinAllianceRequest struct {
	InviteCode string `json:"invite_code" binding:"required"`
}
