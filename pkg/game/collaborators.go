package game

import "github.com/gonewx/platformer/pkg/types"

// PlayerBody 生命控制器在死亡/重生序列中操作玩家所需的能力
// 由持有玩家实体的系统实现，控制器本身不了解实体存储方式
type PlayerBody interface {
	Position() types.Vec2
	SetPosition(p types.Vec2)
	Velocity() types.Vec2
	SetVelocity(v types.Vec2)
	ApplyImpulse(impulse types.Vec2)

	GravityScale() float64
	SetGravityScale(scale float64)

	CollidersEnabled() bool
	SetCollidersEnabled(enabled bool)
	SetInputEnabled(enabled bool)

	Visible() bool
	SetVisible(visible bool)

	// Layer 玩家所在的碰撞层
	Layer() string
	// ResetMotionAnimation 清除 walking/jump/dblJump 等动画参数
	ResetMotionAnimation()
}

// PlayerLocator 查找当前场景中的玩家
// 找不到时返回 false，依赖玩家的操作应静默跳过
type PlayerLocator interface {
	FindPlayer() (PlayerBody, bool)
}

// CollisionMatrix 碰撞层之间的忽略关系
type CollisionMatrix interface {
	HasLayer(name string) bool
	IgnoreLayerCollision(a, b string, ignore bool)
}

// SoundID 音效标识
type SoundID string

// 游戏音效
const (
	SoundDeath      SoundID = "death"
	SoundNewLife    SoundID = "new_life"
	SoundCheckpoint SoundID = "checkpoint"
	SoundTrap       SoundID = "trap"
	SoundStomp      SoundID = "stomp"
	SoundCollect    SoundID = "collect"
	SoundJump       SoundID = "jump"
	SoundFootstep   SoundID = "footstep"
)

// SoundPlayer 播放一次性音效
type SoundPlayer interface {
	PlaySound(id SoundID)
}

// SoundFunc 将普通函数适配为 SoundPlayer
type SoundFunc func(id SoundID)

// PlaySound 实现 SoundPlayer 接口
func (f SoundFunc) PlaySound(id SoundID) {
	f(id)
}
