package constants

const (
	CHANNEL_SIZE       = 100   // 通道大小
	FILE_MAX_SIZE      = 50000 // 文件最大大小
	REDIS_TIMEOUT      = 1     // redis timeout (分钟)
	ACCESS_CODE_LENGTH = 6     // 私密频道访问码长度
	INVITE_CODE_LENGTH = 8     // 联盟邀请码长度
	EDIT_HISTORY_MAX   = 50    // 单条消息保留的编辑历史上限
)
