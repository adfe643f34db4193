package systems

import (
	"github.com/gonewx/platformer/pkg/types"
)

// 轴输入死区
const axisDeadZone = 0.1

// InputState 一个 tick 的玩家输入
type InputState struct {
	Horizontal float64 // -1 左，1 右
	Vertical   float64 // -1 下，1 上（镜头上下看）
	JumpHeld   bool
	// JumpPressed 只在按下跳跃的那个 tick 为 true（由 InputSystem 计算）
	JumpPressed bool
}

// InputSource 输入来源（键盘、终端、脚本）
// now 为模拟时钟的当前时间，脚本输入据此回放。
type InputSource interface {
	Poll(now float64) InputState
}

// InputSourceFunc 将普通函数适配为 InputSource
type InputSourceFunc func(now float64) InputState

// Poll 实现 InputSource 接口
func (f InputSourceFunc) Poll(now float64) InputState {
	return f(now)
}

// InputReader 读取本 tick 的输入状态
type InputReader interface {
	State() InputState
}

// InputSystem 每个 tick 轮询一次输入来源，计算跳跃的按下边沿
// 输入来源为 nil 时输出空输入。
type InputSystem struct {
	source   InputSource
	state    InputState
	prevJump bool
	now      float64
}

// NewInputSystem 创建输入系统
func NewInputSystem(source InputSource) *InputSystem {
	return &InputSystem{source: source}
}

// SetSource 更换输入来源（例如关卡重载后沿用前端的来源）
func (s *InputSystem) SetSource(source InputSource) {
	s.source = source
	s.prevJump = false
}

// Update 轮询输入
func (s *InputSystem) Update(deltaTime float64) {
	s.now += deltaTime

	var raw InputState
	if s.source != nil {
		raw = s.source.Poll(s.now)
	}

	raw.Horizontal = applyDeadZone(types.Clamp(raw.Horizontal, -1, 1))
	raw.Vertical = applyDeadZone(types.Clamp(raw.Vertical, -1, 1))
	raw.JumpPressed = raw.JumpPressed || (raw.JumpHeld && !s.prevJump)
	s.prevJump = raw.JumpHeld

	s.state = raw
}

// State 返回本 tick 的输入
func (s *InputSystem) State() InputState {
	return s.state
}

func applyDeadZone(v float64) float64 {
	if v > -axisDeadZone && v < axisDeadZone {
		return 0
	}
	return v
}

// InputSegment 脚本输入的一段：在 [From, To) 时间内保持的输入
type InputSegment struct {
	From       float64 `yaml:"from"`
	To         float64 `yaml:"to"`
	Horizontal float64 `yaml:"horizontal"`
	Vertical   float64 `yaml:"vertical"`
	Jump       bool    `yaml:"jump"`
}

// ScriptedInput 按时间回放的输入，用于无界面模拟和测试
// 多个片段重叠时，轴取最后一个片段的值，跳跃取或。
type ScriptedInput struct {
	Segments []InputSegment `yaml:"segments"`
}

// Poll 实现 InputSource 接口
func (s *ScriptedInput) Poll(now float64) InputState {
	var state InputState
	for _, seg := range s.Segments {
		if now < seg.From || now >= seg.To {
			continue
		}
		if seg.Horizontal != 0 {
			state.Horizontal = seg.Horizontal
		}
		if seg.Vertical != 0 {
			state.Vertical = seg.Vertical
		}
		state.JumpHeld = state.JumpHeld || seg.Jump
	}
	return state
}

// Duration 返回脚本最后一个片段的结束时间
func (s *ScriptedInput) Duration() float64 {
	end := 0.0
	for _, seg := range s.Segments {
		if seg.To > end {
			end = seg.To
		}
	}
	return end
}
