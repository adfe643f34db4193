package components

import "github.com/gonewx/platformer/pkg/types"

// CameraComponent 跟随玩家的正交镜头
type CameraComponent struct {
	// Position 镜头中心（世界坐标）
	Position types.Vec2

	// HalfWidth/HalfHeight 可视区域的一半（正交镜头 size*aspect 与 size）
	HalfWidth  float64
	HalfHeight float64

	// LeftLimit 世界左边界，镜头左缘不超过它
	LeftLimit float64
	// BottomLimit 世界下边界，镜头下缘不低于它
	BottomLimit float64

	// LookOffsetY 上下看时的最大偏移，LookLerp 为偏移插值速度
	LookOffsetY float64
	LookLerp    float64
	// CurrentLookY 当前已应用的偏移
	CurrentLookY float64

	// ConfineMinX/ConfineMaxX 控制器未启用水平限制时使用的后备边界
	ConfineMinX float64
	ConfineMaxX float64
	// ConfinePadding 应用在控制器边界上的额外偏移（X 加到下界，Y 加到上界）
	ConfinePadding types.Vec2
}
