package components

import "github.com/gonewx/platformer/pkg/types"

// TrapState 陷阱状态机的状态
type TrapState int

const (
	// TrapIdle 尖刺收起，可以被触发
	TrapIdle TrapState = iota
	// TrapDelaying 已触发，等待激活延迟
	TrapDelaying
	// TrapActive 尖刺伸出，接触即死
	TrapActive
	// TrapRetracting 尖刺正在收回
	TrapRetracting
	// TrapCooldown 已收回，冷却锁未到期
	TrapCooldown
)

// String 返回状态名称
func (s TrapState) String() string {
	switch s {
	case TrapIdle:
		return "Idle"
	case TrapDelaying:
		return "Delaying"
	case TrapActive:
		return "Active"
	case TrapRetracting:
		return "Retracting"
	case TrapCooldown:
		return "Cooldown"
	default:
		return "Unknown"
	}
}

// TrapComponent 尖刺陷阱
//
// 定时陷阱的生命周期：Idle → Delaying → Active → Retracting → Cooldown → Idle。
// 常驻陷阱（Timed=false）永久处于 Active。
// 同一 GroupID 的陷阱在任一成员被触发时一起激活。
type TrapComponent struct {
	Name    string
	GroupID string

	Timed       bool // false: 常驻陷阱
	StartHidden bool // 定时陷阱初始是否收起

	Delay          float64 // 检测到玩家到尖刺伸出的延迟（秒）
	ActiveDuration float64 // 尖刺保持伸出的时间（秒）
	Cooldown       float64 // 收回后再次可触发前的额外冷却（秒）
	MoveDuration   float64 // 伸出/收回动画时长（秒）

	Displacement types.Vec2            // 伸出时视觉相对静止位置的偏移
	Easing       func(float64) float64 // 动画缓动曲线

	State             TrapState
	NextAvailableTime float64 // 冷却锁到期时间，now < NextAvailableTime 时拒绝再次触发

	// VisualOffset 尖刺视觉相对陷阱原点的当前偏移；静止位置为 0
	VisualOffset types.Vec2
	// MoveProgress 当前偏移占 Displacement 的比例（0 收起，1 伸出）
	MoveProgress float64

	Active        bool // 逻辑上是否处于伸出（致命）状态
	DamageEnabled bool // 伤害碰撞体是否启用
	Enabled       bool // 是否已启用并登记到分组
}
