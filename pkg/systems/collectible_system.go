package systems

import (
	"github.com/gonewx/platformer/pkg/components"
	"github.com/gonewx/platformer/pkg/ecs"
	"github.com/gonewx/platformer/pkg/game"
)

// CollectedAnimTrigger 收集特效的动画 trigger
const CollectedAnimTrigger = "collected"

// CollectibleSystem 处理苹果等收集物
// 收集后立即隐藏并关闭碰撞体，留出 DestroyDelay 的时间播放收集特效后销毁。
type CollectibleSystem struct {
	em        *ecs.EntityManager
	lc        *game.LifeController
	sounds    game.SoundPlayer
	collected int
}

// NewCollectibleSystem 创建收集物系统
func NewCollectibleSystem(em *ecs.EntityManager, lc *game.LifeController, sounds game.SoundPlayer) *CollectibleSystem {
	return &CollectibleSystem{
		em:     em,
		lc:     lc,
		sounds: sounds,
	}
}

// CollectedCount 返回本关已收集的数量
func (cs *CollectibleSystem) CollectedCount() int {
	return cs.collected
}

// OnPlayerEnter 玩家碰到收集物
func (cs *CollectibleSystem) OnPlayerEnter(id ecs.EntityID) {
	item, ok := ecs.GetComponent[*components.CollectibleComponent](cs.em, id)
	if !ok || item.Collected {
		return
	}
	item.Collected = true
	cs.collected++

	if cs.lc != nil {
		cs.lc.AddScore(item.ScoreValue)
		cs.lc.CountApple(item.AppleValue)
	}
	if cs.sounds != nil {
		cs.sounds.PlaySound(game.SoundCollect)
	}

	if sprite, ok := ecs.GetComponent[*components.SpriteComponent](cs.em, id); ok {
		sprite.Visible = false
	}
	if col, ok := ecs.GetComponent[*components.CollisionComponent](cs.em, id); ok {
		col.Enabled = false
	}
	if animator, ok := ecs.GetComponent[*components.AnimatorComponent](cs.em, id); ok {
		animator.SetTrigger(CollectedAnimTrigger)
	}

	if item.DestroyDelay <= 0 {
		cs.em.DestroyEntity(id)
		return
	}
	ecs.AddComponent(cs.em, id, &components.LifetimeComponent{MaxLifetime: item.DestroyDelay})
}
