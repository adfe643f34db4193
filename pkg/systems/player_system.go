package systems

import (
	"math"

	"github.com/gonewx/platformer/pkg/components"
	"github.com/gonewx/platformer/pkg/ecs"
	"github.com/gonewx/platformer/pkg/game"
	"github.com/gonewx/platformer/pkg/types"
)

const (
	// 二段跳冲量 = JumpForce / doubleJumpDivisor
	doubleJumpDivisor = 1.5
	// 下落速度低于该值时播放下落动画
	fallVelocityThreshold = -0.1

	// 脚步声：基础间隔，速度越快间隔越短
	baseStepInterval = 0.4
	minSpeedForSteps = 0.1
)

// PlayerSystem 玩家控制
//
// 水平移动直接修改位置（x += axis*speed*dt），不低于 MinX；
// 着地时跳跃，空中允许一次二段跳（冲量为 JumpForce/1.5）。
// 死亡序列关闭 InputEnabled 期间不处理任何输入。
// 同时实现 game.PlayerLocator。
type PlayerSystem struct {
	em     *ecs.EntityManager
	input  InputReader
	sounds game.SoundPlayer
}

var _ game.PlayerLocator = (*PlayerSystem)(nil)

// NewPlayerSystem 创建玩家系统
func NewPlayerSystem(em *ecs.EntityManager, input InputReader, sounds game.SoundPlayer) *PlayerSystem {
	return &PlayerSystem{
		em:     em,
		input:  input,
		sounds: sounds,
	}
}

// FindPlayer 返回场景中的玩家（ID 最小的玩家实体）
func (ps *PlayerSystem) FindPlayer() (game.PlayerBody, bool) {
	id, ok := ps.PlayerID()
	if !ok {
		return nil, false
	}
	return NewPlayerBody(ps.em, id), true
}

// PlayerID 返回玩家实体
func (ps *PlayerSystem) PlayerID() (ecs.EntityID, bool) {
	for _, id := range ecs.GetEntitiesWith2[*components.PlayerComponent, *components.TransformComponent](ps.em) {
		if ps.em.IsMarkedForDestroy(id) {
			continue
		}
		return id, true
	}
	return 0, false
}

// Update 处理玩家输入
func (ps *PlayerSystem) Update(dt float64) {
	var in InputState
	if ps.input != nil {
		in = ps.input.State()
	}

	for _, id := range ecs.GetEntitiesWith3[*components.PlayerComponent, *components.TransformComponent, *components.RigidbodyComponent](ps.em) {
		player, _ := ecs.GetComponent[*components.PlayerComponent](ps.em, id)
		transform, _ := ecs.GetComponent[*components.TransformComponent](ps.em, id)
		rb, _ := ecs.GetComponent[*components.RigidbodyComponent](ps.em, id)
		animator, _ := ecs.GetComponent[*components.AnimatorComponent](ps.em, id)

		if !player.InputEnabled {
			player.WasGrounded = rb.Grounded
			continue
		}

		ps.updateGroundedState(player, rb, animator)
		ps.move(id, player, transform, in, dt, animator)
		ps.updateFall(rb, animator)
		ps.jump(player, rb, in, animator)
		ps.updateFootsteps(player, rb, in, dt)

		player.WasGrounded = rb.Grounded
	}
}

// updateGroundedState 落地时重置二段跳，离地时切换到跳跃动画
func (ps *PlayerSystem) updateGroundedState(player *components.PlayerComponent, rb *components.RigidbodyComponent, animator *components.AnimatorComponent) {
	switch {
	case rb.Grounded && !player.WasGrounded:
		player.CanDoubleJump = false
		setAnim(animator, components.PlayerAnimFall, false)
		setAnim(animator, components.PlayerAnimJump, false)
		setAnim(animator, components.PlayerAnimDoubleJump, false)
	case !rb.Grounded && player.WasGrounded:
		setAnim(animator, components.PlayerAnimJump, true)
	}
}

func (ps *PlayerSystem) move(id ecs.EntityID, player *components.PlayerComponent, transform *components.TransformComponent, in InputState, dt float64, animator *components.AnimatorComponent) {
	x := transform.Position.X + in.Horizontal*player.Speed*dt
	if x < player.MinX {
		x = player.MinX
	}
	transform.Position.X = x

	setAnim(animator, components.PlayerAnimWalking, in.Horizontal != 0)

	if sprite, ok := ecs.GetComponent[*components.SpriteComponent](ps.em, id); ok {
		if in.Horizontal < 0 {
			sprite.FlipX = true
		} else if in.Horizontal > 0 {
			sprite.FlipX = false
		}
	}
}

func (ps *PlayerSystem) updateFall(rb *components.RigidbodyComponent, animator *components.AnimatorComponent) {
	if !rb.Grounded && rb.Velocity.Y < fallVelocityThreshold {
		setAnim(animator, components.PlayerAnimFall, true)
		setAnim(animator, components.PlayerAnimDoubleJump, false)
		setAnim(animator, components.PlayerAnimJump, false)
	}
}

func (ps *PlayerSystem) jump(player *components.PlayerComponent, rb *components.RigidbodyComponent, in InputState, animator *components.AnimatorComponent) {
	if !in.JumpPressed {
		return
	}

	if rb.Grounded {
		rb.ApplyImpulse(types.Vec2{Y: player.JumpForce})
		rb.Grounded = false
		player.CanDoubleJump = true
		setAnim(animator, components.PlayerAnimJump, true)
		ps.playSound(game.SoundJump)
		return
	}

	if player.CanDoubleJump {
		setAnim(animator, components.PlayerAnimDoubleJump, true)
		setAnim(animator, components.PlayerAnimJump, false)
		rb.ApplyImpulse(types.Vec2{Y: player.JumpForce / doubleJumpDivisor})
		player.CanDoubleJump = false
		ps.playSound(game.SoundJump)
	}
}

// updateFootsteps 着地移动时按速度播放脚步声
func (ps *PlayerSystem) updateFootsteps(player *components.PlayerComponent, rb *components.RigidbodyComponent, in InputState, dt float64) {
	speed := math.Abs(in.Horizontal * player.Speed)
	if !rb.Grounded || speed <= minSpeedForSteps {
		player.StepTimer = 0
		return
	}

	player.StepTimer -= dt
	if player.StepTimer > 0 {
		return
	}
	ps.playSound(game.SoundFootstep)
	player.StepTimer = footstepInterval(speed)
}

// footstepInterval 速度 0.5~8 之间线性地把间隔从 base/0.7 缩短到 base/1.6
func footstepInterval(speed float64) float64 {
	factor := types.Clamp(speed, 0.5, 8)
	t := (factor - 0.5) / 7.5
	return baseStepInterval / (0.7 + (1.6-0.7)*t)
}

func (ps *PlayerSystem) playSound(id game.SoundID) {
	if ps.sounds != nil {
		ps.sounds.PlaySound(id)
	}
}

func setAnim(animator *components.AnimatorComponent, name string, value bool) {
	if animator != nil {
		animator.SetBool(name, value)
	}
}
