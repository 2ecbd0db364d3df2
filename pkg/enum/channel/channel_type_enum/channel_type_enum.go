// Package channel_type_enum 定义联盟频道类型
package channel_type_enum

const (
	ANNOUNCEMENTS = "announcements" // 公告频道（官员及以上可发言）
	GENERAL       = "general"       // 综合频道
	WAR           = "war"           // 战争频道
	EVENTS        = "events"        // 活动频道
	MEDIA         = "media"         // 媒体频道
	PRIVATE       = "private"       // 私密频道（需要访问码）
)

// IsValid 检查频道类型是否合法
func IsValid(channelType string) bool {
	switch channelType {
	case ANNOUNCEMENTS, GENERAL, WAR, EVENTS, MEDIA, PRIVATE:
		return true
	}
	return false
}
