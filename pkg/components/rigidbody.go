package components

import "github.com/gonewx/platformer/pkg/types"

// RigidbodyComponent 受物理系统积分的刚体
type RigidbodyComponent struct {
	Velocity     types.Vec2
	GravityScale float64 // 重力倍率，0 表示不受重力
	Mass         float64 // 质量，<= 0 按 1 处理
	Kinematic    bool    // 运动学刚体：不受重力，不与地面碰撞，只按速度移动
	Grounded     bool    // 本帧是否站在地面上（由物理系统写入）
}

// ApplyImpulse 施加冲量（速度变化 = 冲量 / 质量）
func (rb *RigidbodyComponent) ApplyImpulse(impulse types.Vec2) {
	mass := rb.Mass
	if mass <= 0 {
		mass = 1
	}
	rb.Velocity = rb.Velocity.Add(impulse.Scale(1 / mass))
}
