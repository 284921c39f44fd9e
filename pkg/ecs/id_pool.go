package ecs

import "log"

// IDPool 实体 ID 池
//
// 归还的 ID 按先进先出顺序复用；池内 ID 从 start 开始递增分配。
// limit > 0 时最多同时占用 limit 个 ID。
type IDPool struct {
	next  int
	limit int
	free  []int
	inUse map[int]struct{}
}

// NewIDPool 创建 ID 池，start 小于 1 时按 1 处理
func NewIDPool(start, limit int) *IDPool {
	return &IDPool{
		next:  max(1, start),
		limit: limit,
		inUse: make(map[int]struct{}),
	}
}

// Acquire 分配一个 ID，池已满时返回 false
func (p *IDPool) Acquire() (int, bool) {
	if p.limit > 0 && len(p.inUse) >= p.limit {
		return 0, false
	}
	var id int
	if len(p.free) > 0 {
		id = p.free[0]
		p.free = p.free[1:]
	} else {
		id = p.next
		p.next++
	}
	p.inUse[id] = struct{}{}
	return id, true
}

// Release 归还 ID，重复归还或未分配的 ID 只记录警告
func (p *IDPool) Release(id int) {
	if _, ok := p.inUse[id]; !ok {
		log.Printf("[IDPool] Warning: release of id %d which is not in use", id)
		return
	}
	delete(p.inUse, id)
	p.free = append(p.free, id)
}

// InUse 是否已分配
func (p *IDPool) InUse(id int) bool {
	_, ok := p.inUse[id]
	return ok
}

// InUseCount 已分配数量
func (p *IDPool) InUseCount() int {
	return len(p.inUse)
}
