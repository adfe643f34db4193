package main

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/gonewx/platformer/pkg/components"
	"github.com/gonewx/platformer/pkg/ecs"
	"github.com/gonewx/platformer/pkg/game"
	"github.com/gonewx/platformer/pkg/scenes"
	"github.com/gonewx/platformer/pkg/types"
)

// 终端字符大约是 1:2 的宽高比，横向每个世界单位用两倍的列数
const cellAspect = 2.0

var (
	styleSky        = tcell.StyleDefault.Background(tcell.ColorNavy)
	styleGround     = tcell.StyleDefault.Foreground(tcell.ColorOlive).Background(tcell.ColorNavy)
	stylePlayer     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy).Bold(true)
	styleSpike      = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleSpikeArmed = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorNavy).Bold(true)
	styleCheckpoint = tcell.StyleDefault.Foreground(tcell.ColorYellow).Background(tcell.ColorNavy)
	styleChecked    = tcell.StyleDefault.Foreground(tcell.ColorGreen).Background(tcell.ColorNavy)
	styleApple      = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorNavy)
	styleEnemy      = tcell.StyleDefault.Foreground(tcell.ColorPurple).Background(tcell.ColorNavy).Bold(true)
	styleDead       = tcell.StyleDefault.Foreground(tcell.ColorGray).Background(tcell.ColorNavy)
	styleHUD        = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
)

// grid 世界坐标到字符格的变换，第 0 行留给 HUD
type grid struct {
	width, height int
	center        types.Vec2
	rowsPerUnit   float64
}

func newGrid(width, height int, cam *components.CameraComponent) grid {
	g := grid{width: width, height: height, rowsPerUnit: 2}
	if cam != nil {
		g.center = cam.Position
		if cam.HalfHeight > 0 {
			g.rowsPerUnit = float64(height-1) / (2 * cam.HalfHeight)
		}
	}
	return g
}

// cells 返回矩形覆盖的字符格范围 [x0, x1) × [y0, y1)，至少一格
func (g grid) cells(center types.Vec2, w, h float64) (x0, y0, x1, y1 int) {
	colsPerUnit := g.rowsPerUnit * cellAspect
	left := (center.X-w/2-g.center.X)*colsPerUnit + float64(g.width)/2
	top := float64(g.height+1)/2 - (center.Y+h/2-g.center.Y)*g.rowsPerUnit

	x0 = int(math.Floor(left))
	y0 = int(math.Floor(top))
	x1 = max(x0+1, int(math.Round(left+w*colsPerUnit)))
	y1 = max(y0+1, int(math.Round(top+h*g.rowsPerUnit)))
	return x0, y0, x1, y1
}

func (g grid) fill(screen tcell.Screen, x0, y0, x1, y1 int, r rune, style tcell.Style) {
	for y := max(y0, 1); y < min(y1, g.height); y++ {
		for x := max(x0, 0); x < min(x1, g.width); x++ {
			screen.SetContent(x, y, r, nil, style)
		}
	}
}

// drawWorld 把场景画成字符
func drawWorld(screen tcell.Screen, scene *scenes.LevelScene) {
	width, height := screen.Size()
	screen.Fill(' ', styleSky)
	if scene == nil {
		return
	}
	em := scene.EntityManager()
	g := newGrid(width, height, scene.Camera())

	sprites := ecs.GetEntitiesWith2[*components.TransformComponent, *components.SpriteComponent](em)
	for _, id := range sprites {
		if ecs.HasComponent[*components.TrapComponent](em, id) {
			drawSprite(screen, em, g, id)
		}
	}

	for _, id := range ecs.GetEntitiesWith2[*components.TransformComponent, *components.CollisionComponent](em) {
		col, _ := ecs.GetComponent[*components.CollisionComponent](em, id)
		if col.Layer != components.LayerGround {
			continue
		}
		transform, _ := ecs.GetComponent[*components.TransformComponent](em, id)
		x0, y0, x1, y1 := g.cells(transform.Position, col.Width, col.Height)
		g.fill(screen, x0, y0, x1, y1, '█', styleGround)
	}

	for _, id := range sprites {
		if !ecs.HasComponent[*components.TrapComponent](em, id) {
			drawSprite(screen, em, g, id)
		}
	}
}

func drawSprite(screen tcell.Screen, em *ecs.EntityManager, g grid, id ecs.EntityID) {
	sprite, _ := ecs.GetComponent[*components.SpriteComponent](em, id)
	if !sprite.Visible {
		return
	}
	transform, _ := ecs.GetComponent[*components.TransformComponent](em, id)
	pos := transform.Position
	if trap, ok := ecs.GetComponent[*components.TrapComponent](em, id); ok {
		pos = pos.Add(trap.VisualOffset).Sub(trap.Displacement)
	}
	r, style := spriteGlyph(em, id, sprite)
	x0, y0, x1, y1 := g.cells(pos, sprite.Width, sprite.Height)
	g.fill(screen, x0, y0, x1, y1, r, style)
}

func spriteGlyph(em *ecs.EntityManager, id ecs.EntityID, sprite *components.SpriteComponent) (rune, tcell.Style) {
	switch sprite.Kind {
	case components.SpritePlayer:
		return '@', stylePlayer
	case components.SpriteSpike:
		if trap, ok := ecs.GetComponent[*components.TrapComponent](em, id); ok && trap.Active {
			return '^', styleSpikeArmed
		}
		return '^', styleSpike
	case components.SpriteCheckpoint:
		if cp, ok := ecs.GetComponent[*components.CheckpointComponent](em, id); ok && cp.Checked {
			return 'F', styleChecked
		}
		return 'P', styleCheckpoint
	case components.SpriteApple:
		return 'o', styleApple
	case components.SpriteWalker, components.SpriteFlyer:
		r := 'w'
		if sprite.Kind == components.SpriteFlyer {
			r = 'v'
		}
		if enemy, ok := ecs.GetComponent[*components.EnemyComponent](em, id); ok && enemy.Dead {
			return r, styleDead
		}
		return r, styleEnemy
	}
	return '?', styleSky
}

// hud 保存最近一次渲染的 HUD 文本
type hud struct {
	text game.HUDText
}

var _ game.HUD = (*hud)(nil)

// Render 实现 game.HUD 接口
func (h *hud) Render(text game.HUDText) {
	h.text = text
}

func (h *hud) draw(screen tcell.Screen, snap scenes.Snapshot, musicOn bool) {
	width, _ := screen.Size()
	music := "on"
	if !musicOn {
		music = "off"
	}
	line := fmt.Sprintf(" SCORE %s  HI %s  LIVES %s  APPLES %s  %s  music:%s [m]  quit [q]",
		h.text.Score, h.text.HighScore, h.text.Lives, h.text.Apples, snap.Phase, music)

	col := 0
	for _, r := range line {
		if col >= width {
			break
		}
		screen.SetContent(col, 0, r, nil, styleHUD)
		col++
	}
	for ; col < width; col++ {
		screen.SetContent(col, 0, ' ', nil, styleHUD)
	}
}
