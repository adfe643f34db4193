package scenes

import (
	"log"

	"github.com/gonewx/platformer/pkg/scheduler"
	"github.com/gonewx/platformer/pkg/systems"
)

// menuTaskPrefix 菜单的淡入和幕布任务前缀
const menuTaskPrefix = "menu:"

const (
	menuFadeDuration    = 0.5 // 菜单选项淡入时长（秒）
	menuCurtainDuration = 1.0 // 开始游戏时幕布落下的时长（秒）
)

// MenuPhase 菜单所处阶段
type MenuPhase int

const (
	MenuWaiting  MenuPhase = iota // 显示“按任意键”
	MenuChoosing                  // 选项已显示，等待选择
	MenuStarting                  // 幕布落下中，结束后加载关卡
	MenuClosed                    // 已选择退出或已被卸载
)

func (p MenuPhase) String() string {
	switch p {
	case MenuWaiting:
		return "Waiting"
	case MenuChoosing:
		return "Choosing"
	case MenuStarting:
		return "Starting"
	case MenuClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// MenuOption 菜单选项
type MenuOption int

const (
	MenuStart MenuOption = iota
	MenuQuit
)

var menuLabels = []string{"Start", "Quit"}

func (o MenuOption) String() string {
	if int(o) < len(menuLabels) {
		return menuLabels[o]
	}
	return "Unknown"
}

// MenuScene 标题菜单
//
// 任意输入唤出选项（淡入），上下选择，跳跃键确认。
// 选择开始后幕布在 1 秒内落下，随后调用 onStart；选择退出立即调用 onQuit。
// 淡入和幕布都跑在共享调度器上，Unload 时一并取消。
type MenuScene struct {
	sched *scheduler.Scheduler
	input systems.InputReader

	onStart func()
	onQuit  func()

	phase    MenuPhase
	selected MenuOption
	fade     float64 // 选项透明度 0-1
	curtain  float64 // 幕布 0-1，1 为全黑

	curtainDown bool
	prevAny     bool
	prevAxis    float64
}

// NewMenuScene 创建菜单场景
func NewMenuScene(sched *scheduler.Scheduler, input systems.InputReader, onStart, onQuit func()) *MenuScene {
	return &MenuScene{
		sched:   sched,
		input:   input,
		onStart: onStart,
		onQuit:  onQuit,
	}
}

// Update 处理一个 tick 的菜单输入
func (ms *MenuScene) Update(deltaTime float64) {
	in := ms.input.State()
	anyNow := in.JumpHeld || in.Horizontal != 0 || in.Vertical != 0
	anyPressed := (anyNow && !ms.prevAny) || in.JumpPressed
	axisPressed := in.Vertical != 0 && ms.prevAxis == 0
	ms.prevAny = anyNow
	ms.prevAxis = in.Vertical

	switch ms.phase {
	case MenuWaiting:
		if anyPressed {
			ms.showOptions()
		}
	case MenuChoosing:
		if axisPressed {
			ms.move(in.Vertical)
		}
		if in.JumpPressed {
			ms.confirm()
		}
	case MenuStarting:
		if ms.curtainDown {
			ms.phase = MenuClosed
			if ms.onStart != nil {
				ms.onStart()
			}
		}
	}
}

func (ms *MenuScene) showOptions() {
	ms.phase = MenuChoosing
	ms.sched.Start(menuTaskPrefix+"fade",
		scheduler.Tween(menuFadeDuration, func(p float64) { ms.fade = p }),
	)
}

// move 上移 +1、下移 -1，首尾循环
func (ms *MenuScene) move(axis float64) {
	n := MenuOption(len(menuLabels))
	if axis > 0 {
		ms.selected = (ms.selected + n - 1) % n
	} else {
		ms.selected = (ms.selected + 1) % n
	}
}

func (ms *MenuScene) confirm() {
	switch ms.selected {
	case MenuStart:
		log.Printf("[MenuScene] Start selected")
		ms.phase = MenuStarting
		ms.sched.Start(menuTaskPrefix+"curtain",
			scheduler.Tween(menuCurtainDuration, func(p float64) { ms.curtain = p }),
			scheduler.Call(func() { ms.curtainDown = true }),
		)
	case MenuQuit:
		log.Printf("[MenuScene] Quit selected")
		ms.phase = MenuClosed
		if ms.onQuit != nil {
			ms.onQuit()
		}
	}
}

// Unload 取消淡入和幕布任务
func (ms *MenuScene) Unload() {
	n := ms.sched.CancelPrefix(menuTaskPrefix)
	ms.phase = MenuClosed
	log.Printf("[MenuScene] Unloaded, cancelled %d tasks", n)
}

func (ms *MenuScene) Phase() MenuPhase {
	return ms.phase
}

func (ms *MenuScene) Selected() MenuOption {
	return ms.selected
}

func (ms *MenuScene) snapshot(snap *Snapshot) {
	snap.Scene = "menu"
	snap.Menu = &MenuSnapshot{
		Phase:    ms.phase.String(),
		Options:  menuLabels,
		Selected: int(ms.selected),
		Fade:     ms.fade,
		Curtain:  ms.curtain,
	}
}
