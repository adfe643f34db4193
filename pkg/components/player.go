package components

// 玩家动画参数名
const (
	PlayerAnimWalking    = "walking"
	PlayerAnimJump       = "jump"
	PlayerAnimDoubleJump = "dblJump"
	PlayerAnimFall       = "fall"
)

// PlayerComponent 玩家控制参数和状态
type PlayerComponent struct {
	Speed     float64 // 水平移动速度（单位/秒）
	JumpForce float64 // 起跳冲量，二段跳为其 1/1.5
	MinX      float64 // 玩家允许到达的最小X坐标（关卡左边界）

	InputEnabled  bool // 死亡序列期间为 false
	CanDoubleJump bool // 起跳后允许一次二段跳
	WasGrounded   bool // 上一个 tick 是否着地，用于判断起跳/落地

	StepTimer float64 // 距离下一次脚步声的时间
}
