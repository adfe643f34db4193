package main

import (
	"github.com/gdamore/tcell/v2"

	"github.com/gonewx/platformer/pkg/systems"
)

// 终端只发送按下事件（以及按住时的自动重复），没有松开事件。
// 每次按键把对应方向保持 holdSeconds，覆盖自动重复的首次延迟。
const holdSeconds = 0.3

// 跳跃只保持较短时间，松开后才能触发二段跳
const jumpHoldSeconds = 0.15

// keyInput 把 tcell 按键事件转换为 systems.InputSource
// 时间使用模拟时钟，事件和 Poll 都在主循环上调用。
type keyInput struct {
	leftUntil  float64
	rightUntil float64
	upUntil    float64
	downUntil  float64
	jumpUntil  float64
}

var _ systems.InputSource = (*keyInput)(nil)

// handle 处理一个按键事件，返回是否是移动/跳跃键
func (k *keyInput) handle(ev *tcell.EventKey, now float64) bool {
	switch ev.Key() {
	case tcell.KeyLeft:
		k.leftUntil = now + holdSeconds
		k.rightUntil = 0
	case tcell.KeyRight:
		k.rightUntil = now + holdSeconds
		k.leftUntil = 0
	case tcell.KeyUp:
		k.upUntil = now + holdSeconds
		k.jumpUntil = now + jumpHoldSeconds
	case tcell.KeyDown:
		k.downUntil = now + holdSeconds
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'a', 'A':
			k.leftUntil = now + holdSeconds
			k.rightUntil = 0
		case 'd', 'D':
			k.rightUntil = now + holdSeconds
			k.leftUntil = 0
		case 's', 'S':
			k.downUntil = now + holdSeconds
		case ' ', 'w', 'W':
			k.jumpUntil = now + jumpHoldSeconds
		default:
			return false
		}
	default:
		return false
	}
	return true
}

// Poll 实现 systems.InputSource 接口
func (k *keyInput) Poll(now float64) systems.InputState {
	var state systems.InputState
	if now < k.leftUntil {
		state.Horizontal--
	}
	if now < k.rightUntil {
		state.Horizontal++
	}
	if now < k.upUntil {
		state.Vertical++
	}
	if now < k.downUntil {
		state.Vertical--
	}
	state.JumpHeld = now < k.jumpUntil
	return state
}
