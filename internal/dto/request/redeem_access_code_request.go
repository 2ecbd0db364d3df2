package request

// RedeemAccessCodeRequest 兑换私密频道访问码请求
// 使用位置:
//   - internal/handler/channel_handler.go: RedeemAccessCode
//   - internal/service/channel/service.go: RedeemAccessCode
type RedeemAccessCodeRequest struct {
	AllianceId string `json:"alliance_id" binding:"required"`
	AccessCode string `json:"access_code" binding:"required"`
}
