package components

import "github.com/gonewx/platformer/pkg/types"

// 碰撞层名称
const (
	LayerPlayer     = "Player"
	LayerEnemy      = "Enemy"
	LayerHazard     = "Hazard"
	LayerCheckpoint = "Checkpoint"
	LayerPickup     = "Pickup"
	LayerGround     = "Piso"
)

// CollisionComponent 定义实体的碰撞检测边界框
// 物理系统据此检测玩家与陷阱、检查点、收集物、敌人之间的接触
type CollisionComponent struct {
	Width   float64 // 碰撞盒宽度（世界单位）
	Height  float64 // 碰撞盒高度（世界单位）
	OffsetX float64 // 碰撞盒相对于实体位置的X偏移量，正值向右偏移
	OffsetY float64 // 碰撞盒相对于实体位置的Y偏移量，正值向上偏移

	Layer     string // 碰撞层，用于层间忽略（如无敌期间忽略 Player x Enemy）
	IsTrigger bool   // true: 只产生进入事件；false: 实心碰撞
	Enabled   bool   // 禁用后不参与任何接触检测
}

// Bounds 返回碰撞盒在世界坐标中的矩形
func (c *CollisionComponent) Bounds(position types.Vec2) types.Rect {
	return types.RectAt(
		types.Vec2{X: position.X + c.OffsetX, Y: position.Y + c.OffsetY},
		types.Vec2{X: c.Width, Y: c.Height},
	)
}
