package random

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// 访问码/邀请码字符集：大写字母 + 数字
const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GetUpperCode 生成指定长度的大写字母数字随机码
// 用于私密频道访问码和联盟邀请码
func GetUpperCode(length int) string {
	result := make([]byte, length)
	charsetLen := big.NewInt(int64(len(codeCharset)))
	for i := range result {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			result[i] = 'X'
			continue
		}
		result[i] = codeCharset[n.Int64()]
	}
	return string(result)
}

// NormalizeCode 规范化用户输入的访问码：去除首尾空白并转大写
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
