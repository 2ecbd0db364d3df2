// conn_registry.go
// 核心职责：在线连接表
// 同一用户允许多端同时在线，Key 为 UserUUID，Value 为该用户的连接集合
package chat

import "sync"

// ConnRegistry 并发安全的在线连接表
type ConnRegistry struct {
	mu    sync.RWMutex
	conns map[string]map[*UserConn]struct{}
}

// NewConnRegistry 创建空连接表
func NewConnRegistry() *ConnRegistry {
	return &ConnRegistry{
		conns: make(map[string]map[*UserConn]struct{}),
	}
}

// Add 登记连接，返回该用户当前的连接数
func (r *ConnRegistry) Add(client *UserConn) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.conns[client.Uuid]
	if !ok {
		set = make(map[*UserConn]struct{})
		r.conns[client.Uuid] = set
	}
	set[client] = struct{}{}
	return len(set)
}

// Remove 移除连接，返回该用户剩余的连接数以及本次是否真正移除
// removed 用于保证通道只被关闭一次；剩余为 0 表示用户完全离线
func (r *ConnRegistry) Remove(client *UserConn) (remaining int, removed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.conns[client.Uuid]
	if !ok {
		return 0, false
	}
	if _, ok := set[client]; !ok {
		return len(set), false
	}
	delete(set, client)
	if len(set) == 0 {
		delete(r.conns, client.Uuid)
		return 0, true
	}
	return len(set), true
}

// ConnectionsFor 获取指定用户的全部连接快照
// 使用 make 初始化 len=0，调用方可以直接 range
func (r *ConnRegistry) ConnectionsFor(userId string) []*UserConn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.conns[userId]
	if !ok {
		return nil
	}
	list := make([]*UserConn, 0, len(set))
	for conn := range set {
		list = append(list, conn)
	}
	return list
}

// OnlineCount 当前在线用户数（非连接数）
func (r *ConnRegistry) OnlineCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
