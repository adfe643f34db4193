package systems

import (
	"github.com/gonewx/platformer/pkg/components"
	"github.com/gonewx/platformer/pkg/ecs"
	"github.com/gonewx/platformer/pkg/game"
	"github.com/gonewx/platformer/pkg/types"
)

// PlayerBody 把玩家实体的组件包装成 game.PlayerBody
// 缺少某个组件时对应的读取返回零值，写入被忽略。
type PlayerBody struct {
	em *ecs.EntityManager
	id ecs.EntityID
}

var _ game.PlayerBody = (*PlayerBody)(nil)

// NewPlayerBody 包装玩家实体
func NewPlayerBody(em *ecs.EntityManager, id ecs.EntityID) *PlayerBody {
	return &PlayerBody{em: em, id: id}
}

// ID 返回玩家实体
func (b *PlayerBody) ID() ecs.EntityID {
	return b.id
}

func (b *PlayerBody) transform() *components.TransformComponent {
	t, _ := ecs.GetComponent[*components.TransformComponent](b.em, b.id)
	return t
}

func (b *PlayerBody) rigidbody() *components.RigidbodyComponent {
	rb, _ := ecs.GetComponent[*components.RigidbodyComponent](b.em, b.id)
	return rb
}

func (b *PlayerBody) collider() *components.CollisionComponent {
	col, _ := ecs.GetComponent[*components.CollisionComponent](b.em, b.id)
	return col
}

func (b *PlayerBody) sprite() *components.SpriteComponent {
	sp, _ := ecs.GetComponent[*components.SpriteComponent](b.em, b.id)
	return sp
}

func (b *PlayerBody) Position() types.Vec2 {
	if t := b.transform(); t != nil {
		return t.Position
	}
	return types.Vec2{}
}

func (b *PlayerBody) SetPosition(p types.Vec2) {
	if t := b.transform(); t != nil {
		t.Position = p
	}
}

func (b *PlayerBody) Velocity() types.Vec2 {
	if rb := b.rigidbody(); rb != nil {
		return rb.Velocity
	}
	return types.Vec2{}
}

func (b *PlayerBody) SetVelocity(v types.Vec2) {
	if rb := b.rigidbody(); rb != nil {
		rb.Velocity = v
	}
}

func (b *PlayerBody) ApplyImpulse(impulse types.Vec2) {
	if rb := b.rigidbody(); rb != nil {
		rb.ApplyImpulse(impulse)
	}
}

func (b *PlayerBody) GravityScale() float64 {
	if rb := b.rigidbody(); rb != nil {
		return rb.GravityScale
	}
	return 0
}

func (b *PlayerBody) SetGravityScale(scale float64) {
	if rb := b.rigidbody(); rb != nil {
		rb.GravityScale = scale
	}
}

func (b *PlayerBody) CollidersEnabled() bool {
	if col := b.collider(); col != nil {
		return col.Enabled
	}
	return false
}

func (b *PlayerBody) SetCollidersEnabled(enabled bool) {
	if col := b.collider(); col != nil {
		col.Enabled = enabled
	}
}

// SetInputEnabled 死亡序列期间关闭操作
func (b *PlayerBody) SetInputEnabled(enabled bool) {
	if p, ok := ecs.GetComponent[*components.PlayerComponent](b.em, b.id); ok {
		p.InputEnabled = enabled
	}
}

// InputEnabled 玩家当前是否可操作
func (b *PlayerBody) InputEnabled() bool {
	p, ok := ecs.GetComponent[*components.PlayerComponent](b.em, b.id)
	return ok && p.InputEnabled
}

func (b *PlayerBody) Visible() bool {
	if sp := b.sprite(); sp != nil {
		return sp.Visible
	}
	return false
}

func (b *PlayerBody) SetVisible(visible bool) {
	if sp := b.sprite(); sp != nil {
		sp.Visible = visible
	}
}

// Layer 返回玩家碰撞层，没有碰撞体时为 Player
func (b *PlayerBody) Layer() string {
	if col := b.collider(); col != nil && col.Layer != "" {
		return col.Layer
	}
	return components.LayerPlayer
}

// ResetMotionAnimation 清除移动相关的动画参数
func (b *PlayerBody) ResetMotionAnimation() {
	animator, ok := ecs.GetComponent[*components.AnimatorComponent](b.em, b.id)
	if !ok {
		return
	}
	animator.SetBool(components.PlayerAnimWalking, false)
	animator.SetBool(components.PlayerAnimJump, false)
	animator.SetBool(components.PlayerAnimDoubleJump, false)
	animator.SetBool(components.PlayerAnimFall, false)
}
