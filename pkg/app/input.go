package app

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gonewx/platformer/pkg/systems"
	"github.com/gonewx/platformer/pkg/utils"
)

// keyboardInput 从键盘读取玩家输入
// 方向键或 WASD 移动/上下看，空格、W、上方向键跳跃。
type keyboardInput struct{}

var _ systems.InputSource = keyboardInput{}

// Poll 实现 systems.InputSource 接口
func (keyboardInput) Poll(now float64) systems.InputState {
	var state systems.InputState

	if anyPressed(ebiten.KeyArrowLeft, ebiten.KeyA) {
		state.Horizontal--
	}
	if anyPressed(ebiten.KeyArrowRight, ebiten.KeyD) {
		state.Horizontal++
	}
	if anyPressed(ebiten.KeyArrowUp) {
		state.Vertical++
	}
	if anyPressed(ebiten.KeyArrowDown, ebiten.KeyS) {
		state.Vertical--
	}
	state.JumpHeld = anyPressed(ebiten.KeySpace, ebiten.KeyW, ebiten.KeyArrowUp)

	return state
}

func anyPressed(keys ...ebiten.Key) bool {
	for _, k := range keys {
		if ebiten.IsKeyPressed(k) {
			return true
		}
	}
	return false
}

// touchInput 触屏输入：屏幕左右两侧的三分之一移动，中间跳跃
// 同时合并键盘输入，方便在桌面上模拟移动端。
type touchInput struct {
	keyboard keyboardInput
	touches  []ebiten.TouchID
}

var _ systems.InputSource = (*touchInput)(nil)

// Poll 实现 systems.InputSource 接口
func (t *touchInput) Poll(now float64) systems.InputState {
	state := t.keyboard.Poll(now)

	t.touches = ebiten.AppendTouchIDs(t.touches[:0])
	for _, id := range t.touches {
		x, _ := ebiten.TouchPosition(id)
		switch {
		case x < ScreenWidth/3:
			state.Horizontal = -1
		case x > ScreenWidth*2/3:
			state.Horizontal = 1
		default:
			state.JumpHeld = true
		}
	}
	return state
}

// newInputSource 移动端使用触屏输入，桌面端使用键盘
func newInputSource() systems.InputSource {
	if utils.IsMobile() {
		return &touchInput{}
	}
	return keyboardInput{}
}
