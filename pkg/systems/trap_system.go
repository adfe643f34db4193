package systems

import (
	"fmt"
	"log"
	"math"

	"github.com/gonewx/platformer/pkg/components"
	"github.com/gonewx/platformer/pkg/ecs"
	"github.com/gonewx/platformer/pkg/game"
	"github.com/gonewx/platformer/pkg/scheduler"
	"github.com/gonewx/platformer/pkg/types"
	"github.com/gonewx/platformer/pkg/utils"
)

// 小于该时长的伸缩动画直接跳到终点
const instantMoveThreshold = 1e-4

// PlayerOverlapper 查询实体当前是否与玩家重叠
type PlayerOverlapper interface {
	OverlapsPlayer(id ecs.EntityID) bool
}

// TrapSystem 尖刺陷阱状态机
//
// 每个陷阱最多同时存在一个激活序列（key: level:trap:<id>:activation）
// 和一个伸缩动画（key: level:trap:<id>:move），新的序列总是先取消旧的。
// 冷却锁 NextAvailableTime 在序列开始时一次性计算并保存。
type TrapSystem struct {
	em       *ecs.EntityManager
	sched    *scheduler.Scheduler
	registry *TrapGroupRegistry
	lc       *game.LifeController
	sounds   game.SoundPlayer
	overlap  PlayerOverlapper
}

// NewTrapSystem 创建陷阱系统
// lc、sounds 可为 nil，此时对应的副作用被跳过
func NewTrapSystem(em *ecs.EntityManager, sched *scheduler.Scheduler, registry *TrapGroupRegistry, lc *game.LifeController, sounds game.SoundPlayer) *TrapSystem {
	if registry == nil {
		registry = NewTrapGroupRegistry()
	}
	return &TrapSystem{
		em:       em,
		sched:    sched,
		registry: registry,
		lc:       lc,
		sounds:   sounds,
	}
}

// SetOverlapper 设置玩家重叠查询，尖刺伸出时据此判断是否刺中原地不动的玩家
func (ts *TrapSystem) SetOverlapper(o PlayerOverlapper) {
	ts.overlap = o
}

// Registry 返回分组登记表
func (ts *TrapSystem) Registry() *TrapGroupRegistry {
	return ts.registry
}

func activationKey(id ecs.EntityID) string {
	return fmt.Sprintf("level:trap:%d:activation", id)
}

func moveKey(id ecs.EntityID) string {
	return fmt.Sprintf("level:trap:%d:move", id)
}

func (ts *TrapSystem) trap(id ecs.EntityID) (*components.TrapComponent, bool) {
	if !ts.em.IsAlive(id) {
		return nil, false
	}
	return ecs.GetComponent[*components.TrapComponent](ts.em, id)
}

// Traps 返回所有陷阱实体
func (ts *TrapSystem) Traps() []ecs.EntityID {
	return ecs.GetEntitiesWith1[*components.TrapComponent](ts.em)
}

// Enable 启用陷阱并登记到分组
func (ts *TrapSystem) Enable(id ecs.EntityID) {
	trap, ok := ts.trap(id)
	if !ok {
		return
	}
	trap.Enabled = true
	ts.registry.Register(trap.GroupID, id)
}

// Disable 禁用陷阱：停止进行中的序列和动画，注销分组
func (ts *TrapSystem) Disable(id ecs.EntityID) {
	ts.sched.Cancel(activationKey(id))
	ts.sched.Cancel(moveKey(id))

	trap, ok := ts.trap(id)
	if !ok {
		return
	}
	trap.Enabled = false
	ts.registry.Unregister(trap.GroupID, id)

	if trap.Timed {
		trap.State = components.TrapIdle
		ts.setTrapState(id, trap, false, true)
	}
}

// Start 应用初始状态（立即生效，不播放动画）
// 常驻陷阱永久伸出；定时陷阱按 StartHidden 决定初始收起或伸出。
func (ts *TrapSystem) Start(id ecs.EntityID) {
	trap, ok := ts.trap(id)
	if !ok {
		return
	}

	active := true
	if trap.Timed {
		active = !trap.StartHidden
	}
	if active {
		trap.State = components.TrapActive
	} else {
		trap.State = components.TrapIdle
	}
	ts.setTrapState(id, trap, active, true)
}

// OnPlayerEnter 玩家进入陷阱触发区域
func (ts *TrapSystem) OnPlayerEnter(id ecs.EntityID) {
	trap, ok := ts.trap(id)
	if !ok || !trap.Enabled {
		return
	}

	if trap.Timed {
		ts.TryActivate(id, false)
	}
	if trap.Active {
		ts.killPlayer(id)
	}
}

// OnPlayerCollide 玩家与陷阱发生实心碰撞
func (ts *TrapSystem) OnPlayerCollide(id ecs.EntityID) {
	trap, ok := ts.trap(id)
	if !ok || !trap.Enabled || !trap.Active {
		return
	}
	ts.killPlayer(id)
}

// TryActivate 尝试触发陷阱
// 冷却锁未到期时拒绝（force 除外）。有分组的陷阱向分组内所有仍启用的成员广播强制激活，
// 分组不在登记表中时退回为单独激活。
func (ts *TrapSystem) TryActivate(id ecs.EntityID, force bool) {
	trap, ok := ts.trap(id)
	if !ok {
		return
	}
	if !force && ts.sched.Now() < trap.NextAvailableTime {
		return
	}

	if trap.GroupID != "" {
		ts.triggerGroup(id, trap.GroupID, force)
		return
	}
	ts.ScheduleActivation(id, force)
}

func (ts *TrapSystem) triggerGroup(id ecs.EntityID, group string, force bool) {
	members, ok := ts.registry.Members(group)
	if !ok {
		ts.ScheduleActivation(id, force)
		return
	}

	log.Printf("[TrapSystem] Group %q triggered by trap %d (%d members)", group, id, len(members))
	for _, member := range members {
		trap, ok := ts.trap(member)
		if !ok || !trap.Enabled {
			continue
		}
		ts.ScheduleActivation(member, true)
	}
}

// ScheduleActivation 启动激活序列
//
// 序列：Delaying → 等待 Delay → 播放音效、伸出（Active）→ 等待 ActiveDuration →
// 收回（Retracting）→ 动画结束后 Cooldown → 冷却锁到期后 Idle。
// 冷却锁 now + max(0, Delay+ActiveDuration+Cooldown) 在开始时就写入。
func (ts *TrapSystem) ScheduleActivation(id ecs.EntityID, force bool) {
	trap, ok := ts.trap(id)
	if !ok {
		return
	}
	now := ts.sched.Now()
	if !force && now < trap.NextAvailableTime {
		return
	}

	lock := math.Max(0, trap.Delay+trap.ActiveDuration+trap.Cooldown)
	trap.NextAvailableTime = now + lock
	// 还伸着的尖刺被分组强制重新触发时仍然伤人，状态保持 Active
	if !trap.Active {
		trap.State = components.TrapDelaying
	}

	ts.sched.Start(activationKey(id),
		scheduler.Wait(trap.Delay),
		scheduler.Call(func() {
			if ts.sounds != nil {
				ts.sounds.PlaySound(game.SoundTrap)
			}
			trap.State = components.TrapActive
			ts.setTrapState(id, trap, true, false)
			// 尖刺伸到原本就站在区域内的玩家身上也算接触
			if ts.overlap != nil && ts.overlap.OverlapsPlayer(id) {
				ts.killPlayer(id)
			}
		}),
		scheduler.Wait(trap.ActiveDuration),
		scheduler.Call(func() {
			trap.State = components.TrapRetracting
			ts.setTrapState(id, trap, false, false)
		}),
		scheduler.WaitUntil(func() bool { return !ts.sched.Running(moveKey(id)) }, -1),
		scheduler.Call(func() {
			trap.State = components.TrapCooldown
		}),
		scheduler.WaitUntil(func() bool { return ts.sched.Now() >= trap.NextAvailableTime }, -1),
		scheduler.Call(func() {
			trap.State = components.TrapIdle
		}),
	)
}

// setTrapState 切换伸出/收起，并把尖刺视觉移动到对应位置
func (ts *TrapSystem) setTrapState(id ecs.EntityID, trap *components.TrapComponent, active, instant bool) {
	trap.Active = active
	trap.DamageEnabled = active

	ts.sched.Cancel(moveKey(id))

	targetOffset := types.Vec2{}
	targetProgress := 0.0
	if active {
		targetOffset = trap.Displacement
		targetProgress = 1
	}

	if instant || trap.MoveDuration <= instantMoveThreshold {
		trap.VisualOffset = targetOffset
		trap.MoveProgress = targetProgress
		return
	}

	easing := trap.Easing
	if easing == nil {
		easing = utils.EaseInOut
	}
	fromOffset := trap.VisualOffset
	fromProgress := trap.MoveProgress

	ts.sched.Start(moveKey(id),
		scheduler.Tween(trap.MoveDuration, func(p float64) {
			eased := easing(p)
			trap.VisualOffset = types.LerpUnclamped(fromOffset, targetOffset, eased)
			trap.MoveProgress = fromProgress + (targetProgress-fromProgress)*eased
		}),
		scheduler.Call(func() {
			trap.VisualOffset = targetOffset
			trap.MoveProgress = targetProgress
		}),
	)
}

func (ts *TrapSystem) killPlayer(id ecs.EntityID) {
	if ts.lc == nil {
		return
	}
	origin := types.Vec2{}
	if transform, ok := ecs.GetComponent[*components.TransformComponent](ts.em, id); ok {
		origin = transform.Position
	}
	log.Printf("[TrapSystem] Trap %d hit the player", id)
	ts.lc.LoseLifeFromHit(origin)
}
