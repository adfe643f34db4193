package components

// EnemyKind 敌人类型
type EnemyKind int

const (
	// EnemyWalker 地面巡逻敌人，侧面接触伤害玩家
	EnemyWalker EnemyKind = iota
	// EnemyFlyer 空中上下飞行的敌人，只能被踩踏
	EnemyFlyer
)

// String 返回敌人类型名称
func (k EnemyKind) String() string {
	switch k {
	case EnemyWalker:
		return "walker"
	case EnemyFlyer:
		return "flyer"
	default:
		return "unknown"
	}
}

// EnemyComponent 敌人状态
type EnemyComponent struct {
	Kind EnemyKind

	Speed     float64
	Direction int // 1 向右/向上，-1 向左/向下

	// 踩踏
	StompYOffset float64 // 玩家需要高出敌人多少才算踩踏
	StompBounce  float64 // 踩踏后玩家获得的向上速度
	StompScore   int     // 踩踏得分

	// 侧面接触伤害（仅地面敌人）
	HitCooldown   float64 // 防止连续扣血的时间窗口
	HitKnockbackX float64 // 接触时推开玩家的水平速度
	LastHitTime   float64

	// 飞行敌人的上下移动范围
	ChangeDirectionTime float64
	DirectionTimer      float64
	MinY, MaxY          float64

	// 死亡表现
	Dead            bool
	DeathJumpY      float64
	DeathKnockbackX float64
	DeathGravity    float64
	DeathTimeout    float64
	OffscreenMargin float64
}
