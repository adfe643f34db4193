package game

import (
	"fmt"

	"github.com/gonewx/platformer/pkg/types"
)

// HorizontalLimits 玩家/镜头的水平活动范围
type HorizontalLimits struct {
	Min     float64
	Max     float64
	Enabled bool
}

// GameState 存储一局游戏的分数、生命和重生状态
// 由 LifeController 独占修改，其他系统只读取快照
type GameState struct {
	TotalScore int // 当前分数
	HighScore  int // 最高分（游戏结束时保留）
	LifeCount  int // 剩余生命
	NextLifeAt int // 下一次奖励生命的阈值（分数和苹果数共用）
	AppleCount int // 已收集苹果数

	IsDying bool // 死亡序列进行中，期间拒绝新的扣血

	RespawnPoint types.Vec2 // 玩家重生位置
	HasRespawn   bool       // 是否已设置重生位置

	Limits HorizontalLimits
}

// HUDText HUD 上显示的格式化文本
type HUDText struct {
	Score     string
	HighScore string
	Lives     string
	Apples    string
}

// FormatHUD 将状态格式化为补零的 HUD 文本（分数4位，生命2位）
func FormatHUD(s GameState) HUDText {
	lives := s.LifeCount
	if lives < 0 {
		lives = 0
	}
	return HUDText{
		Score:     fmt.Sprintf("%04d", s.TotalScore),
		HighScore: fmt.Sprintf("%04d", s.HighScore),
		Lives:     fmt.Sprintf("%02d", lives),
		Apples:    fmt.Sprintf("%04d", s.AppleCount),
	}
}

// HUD 显示分数、最高分、生命、苹果数的表现层
type HUD interface {
	Render(text HUDText)
}

// HUDFunc 将普通函数适配为 HUD
type HUDFunc func(text HUDText)

// Render 实现 HUD 接口
func (f HUDFunc) Render(text HUDText) {
	f(text)
}
