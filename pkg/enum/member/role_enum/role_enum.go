// Package role_enum 定义联盟成员角色及角色集合
package role_enum

// 联盟成员角色
const (
	MEMBER  int8 = 1 // 普通成员
	OFFICER int8 = 2 // 官员
	LEADER  int8 = 3 // 盟主
)

// IsValid 检查角色值是否合法
func IsValid(role int8) bool {
	return role == MEMBER || role == OFFICER || role == LEADER
}

// RoleSet 角色集合位掩码，用于频道读写权限
// 位布局：bit0=MEMBER, bit1=OFFICER, bit2=LEADER
type RoleSet int8

// Of 由若干角色构造角色集合，非法角色被忽略
func Of(roles ...int8) RoleSet {
	var s RoleSet
	for _, r := range roles {
		if IsValid(r) {
			s |= 1 << uint(r-1)
		}
	}
	return s
}

// Permits 判断角色是否在集合中，非法角色一律返回 false
func (s RoleSet) Permits(role int8) bool {
	if !IsValid(role) {
		return false
	}
	return s&(1<<uint(role-1)) != 0
}

// With 返回加入指定角色后的新集合
func (s RoleSet) With(role int8) RoleSet {
	return s | Of(role)
}

// 常用角色集合
var (
	ALL        = Of(MEMBER, OFFICER, LEADER) // 全体成员
	OFFICER_UP = Of(OFFICER, LEADER)         // 官员及以上
	LEADER_SET = Of(LEADER)                  // 仅盟主
)
