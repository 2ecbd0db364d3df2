// Package language_enum 定义支持的消息语言
package language_enum

// DEFAULT 默认语言
const DEFAULT = "en"

// supported 支持的语言代码（阿里云机器翻译语言代码）
var supported = map[string]struct{}{
	"tr": {}, // 土耳其语
	"en": {}, // 英语
	"es": {}, // 西班牙语
	"de": {}, // 德语
	"fr": {}, // 法语
	"ru": {}, // 俄语
	"ar": {}, // 阿拉伯语
	"zh": {}, // 中文
	"ja": {}, // 日语
	"ko": {}, // 韩语
}

// IsSupported 检查语言代码是否受支持
func IsSupported(lang string) bool {
	_, ok := supported[lang]
	return ok
}

// OrDefault 返回受支持的语言代码，不支持时回退到默认语言
func OrDefault(lang string) string {
	if IsSupported(lang) {
		return lang
	}
	return DEFAULT
}
