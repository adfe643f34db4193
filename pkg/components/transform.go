package components

import "github.com/gonewx/platformer/pkg/types"

// TransformComponent 实体在世界中的位置（Y 轴向上）
type TransformComponent struct {
	Position types.Vec2
}
