package systems

import (
	"github.com/gonewx/platformer/pkg/components"
	"github.com/gonewx/platformer/pkg/ecs"
)

// LifetimeSystem 管理实体的生命周期
// 被收集的苹果、死亡坠落的敌人到期后被标记删除
type LifetimeSystem struct {
	entityManager *ecs.EntityManager
	onExpire      func(id ecs.EntityID)
	expired       int
}

// NewLifetimeSystem 创建一个新的生命周期系统
func NewLifetimeSystem(em *ecs.EntityManager) *LifetimeSystem {
	return &LifetimeSystem{
		entityManager: em,
	}
}

// SetExpireHandler 设置实体到期时的回调（每个实体只调用一次）
func (s *LifetimeSystem) SetExpireHandler(fn func(id ecs.EntityID)) {
	s.onExpire = fn
}

// ExpiredCount 返回已到期的实体数量
func (s *LifetimeSystem) ExpiredCount() int {
	return s.expired
}

// Update 更新所有拥有生命周期组件的实体
func (s *LifetimeSystem) Update(deltaTime float64) {
	entities := ecs.GetEntitiesWith1[*components.LifetimeComponent](s.entityManager)

	for _, id := range entities {
		lifetime, ok := ecs.GetComponent[*components.LifetimeComponent](s.entityManager, id)
		if !ok {
			continue
		}

		// 已过期的实体等待清理
		if lifetime.IsExpired {
			s.entityManager.DestroyEntity(id)
			continue
		}

		lifetime.CurrentLifetime += deltaTime
		if lifetime.CurrentLifetime < lifetime.MaxLifetime {
			continue
		}

		lifetime.IsExpired = true
		s.expired++
		s.entityManager.DestroyEntity(id)
		if s.onExpire != nil {
			s.onExpire(id)
		}
	}
}
