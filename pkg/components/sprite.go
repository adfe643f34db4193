package components

// SpriteKind 渲染层使用的图元种类
type SpriteKind int

const (
	SpritePlayer SpriteKind = iota
	SpriteSpike
	SpriteCheckpoint
	SpriteApple
	SpriteWalker
	SpriteFlyer
)

// SpriteComponent 可见性和朝向
// 渲染本身由外部表现层完成，这里只保存表现层需要读取的状态
type SpriteComponent struct {
	Kind    SpriteKind
	Visible bool
	FlipX   bool
	Width   float64
	Height  float64
}
