package systems

import (
	"log"

	"github.com/gonewx/platformer/pkg/components"
	"github.com/gonewx/platformer/pkg/ecs"
	"github.com/gonewx/platformer/pkg/game"
)

// CheckpointSystem 检查点登记
// 持有唯一的"当前检查点"引用，保证任意时刻最多一个检查点处于激活状态。
type CheckpointSystem struct {
	em      *ecs.EntityManager
	lc      *game.LifeController
	sounds  game.SoundPlayer
	current ecs.EntityID
	hasCur  bool
}

// NewCheckpointSystem 创建检查点系统
func NewCheckpointSystem(em *ecs.EntityManager, lc *game.LifeController, sounds game.SoundPlayer) *CheckpointSystem {
	return &CheckpointSystem{
		em:     em,
		lc:     lc,
		sounds: sounds,
	}
}

// Current 返回当前激活的检查点
func (cs *CheckpointSystem) Current() (ecs.EntityID, bool) {
	if cs.hasCur && !cs.em.IsAlive(cs.current) {
		cs.hasCur = false
	}
	return cs.current, cs.hasCur
}

// OnPlayerEnter 玩家经过检查点
func (cs *CheckpointSystem) OnPlayerEnter(id ecs.EntityID) {
	cs.Activate(id)
}

// Activate 激活检查点
// 已激活的检查点再次激活没有任何效果。
func (cs *CheckpointSystem) Activate(id ecs.EntityID) {
	cp, ok := ecs.GetComponent[*components.CheckpointComponent](cs.em, id)
	if !ok || cp.Checked {
		return
	}

	if prev, ok := cs.Current(); ok && prev != id {
		if prevCp, ok := ecs.GetComponent[*components.CheckpointComponent](cs.em, prev); ok {
			prevCp.Checked = false
			cs.applyAnimatorState(prev, prevCp)
		}
	}

	cs.current = id
	cs.hasCur = true
	cp.Checked = true
	cs.applyAnimatorState(id, cp)

	if cs.sounds != nil {
		cs.sounds.PlaySound(game.SoundCheckpoint)
	}
	if cs.lc != nil {
		cs.lc.SetRespawn(cp.RespawnPoint)
	}
	log.Printf("[CheckpointSystem] Checkpoint %q activated (respawn %.2f, %.2f)", cp.Name, cp.RespawnPoint.X, cp.RespawnPoint.Y)
}

func (cs *CheckpointSystem) applyAnimatorState(id ecs.EntityID, cp *components.CheckpointComponent) {
	animator, ok := ecs.GetComponent[*components.AnimatorComponent](cs.em, id)
	if !ok {
		return
	}
	animator.SetBool(components.CheckpointAnimBool, cp.Checked)
	if cp.Checked {
		animator.SetTrigger(components.CheckpointAnimTrigger)
	}
}
