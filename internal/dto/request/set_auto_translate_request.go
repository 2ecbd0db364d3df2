package request

// SetAutoTranslateRequest 开关联盟自动翻译请求（仅盟主）
// 使用位置:
//   - internal/handler/alliance_handler.go: SetAutoTranslate
//   - internal/service/alliance/service.go: SetAutoTranslate
type SetAutoTranslateRequest struct {
	AllianceId string `json:"alliance_id" binding:"required"`
	Enabled    int8   `json:"enabled" binding:"oneof=0 1"`
}
