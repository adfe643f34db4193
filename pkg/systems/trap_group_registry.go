package systems

import (
	"sort"

	"github.com/gonewx/platformer/pkg/ecs"
)

// TrapGroupRegistry 陷阱分组登记表
//
// groupID → 成员陷阱实体。陷阱启用时登记、禁用时注销，
// 成员清空的分组会被移除。登记表由场景持有，每次加载关卡重新创建。
type TrapGroupRegistry struct {
	groups map[string][]ecs.EntityID
}

// NewTrapGroupRegistry 创建空的分组登记表
func NewTrapGroupRegistry() *TrapGroupRegistry {
	return &TrapGroupRegistry{
		groups: make(map[string][]ecs.EntityID),
	}
}

// Register 将陷阱加入分组，重复登记无效果；空分组名被忽略
func (r *TrapGroupRegistry) Register(group string, id ecs.EntityID) {
	if group == "" {
		return
	}
	for _, member := range r.groups[group] {
		if member == id {
			return
		}
	}
	r.groups[group] = append(r.groups[group], id)
}

// Unregister 将陷阱移出分组，分组为空时删除分组
func (r *TrapGroupRegistry) Unregister(group string, id ecs.EntityID) {
	members, ok := r.groups[group]
	if !ok {
		return
	}
	for i, member := range members {
		if member == id {
			members = append(members[:i], members[i+1:]...)
			break
		}
	}
	if len(members) == 0 {
		delete(r.groups, group)
		return
	}
	r.groups[group] = members
}

// Members 返回分组成员的快照，分组不存在时返回 nil, false
// 调用方在遍历快照期间修改登记表不会影响快照本身。
func (r *TrapGroupRegistry) Members(group string) ([]ecs.EntityID, bool) {
	members, ok := r.groups[group]
	if !ok {
		return nil, false
	}
	snapshot := make([]ecs.EntityID, len(members))
	copy(snapshot, members)
	return snapshot, true
}

// Groups 返回所有分组名（已排序）
func (r *TrapGroupRegistry) Groups() []string {
	names := make([]string, 0, len(r.groups))
	for name := range r.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len 返回分组数量
func (r *TrapGroupRegistry) Len() int {
	return len(r.groups)
}
