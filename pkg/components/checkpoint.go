package components

import "github.com/gonewx/platformer/pkg/types"

// 检查点动画参数名
const (
	CheckpointAnimBool    = "isChecked"
	CheckpointAnimTrigger = "passCheck"
)

// CheckpointComponent 检查点
// 全局同一时间最多一个检查点处于激活（Checked）状态
type CheckpointComponent struct {
	Name         string
	Checked      bool
	RespawnPoint types.Vec2 // 激活后玩家的重生位置
}
