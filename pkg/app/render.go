package app

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/gonewx/platformer/pkg/components"
	"github.com/gonewx/platformer/pkg/ecs"
	"github.com/gonewx/platformer/pkg/game"
	"github.com/gonewx/platformer/pkg/scenes"
	"github.com/gonewx/platformer/pkg/types"
)

// 逻辑屏幕尺寸
const (
	ScreenWidth  = 960
	ScreenHeight = 540
)

var (
	colorSky        = color.RGBA{R: 92, G: 148, B: 252, A: 255}
	colorGround     = color.RGBA{R: 120, G: 84, B: 52, A: 255}
	colorPlayer     = color.RGBA{R: 240, G: 240, B: 240, A: 255}
	colorSpike      = color.RGBA{R: 200, G: 200, B: 210, A: 255}
	colorSpikeArmed = color.RGBA{R: 230, G: 60, B: 60, A: 255}
	colorCheckpoint = color.RGBA{R: 250, G: 220, B: 80, A: 255}
	colorChecked    = color.RGBA{R: 80, G: 220, B: 120, A: 255}
	colorApple      = color.RGBA{R: 220, G: 30, B: 40, A: 255}
	colorWalker     = color.RGBA{R: 150, G: 70, B: 170, A: 255}
	colorFlyer      = color.RGBA{R: 60, G: 60, B: 60, A: 255}
	colorDead       = color.RGBA{R: 90, G: 90, B: 90, A: 160}
	colorHUDBack    = color.RGBA{A: 140}
	colorMenuBack   = color.RGBA{R: 24, G: 28, B: 48, A: 255}
)

// view 世界坐标到屏幕坐标的变换（Y 轴向上，镜头中心在屏幕中心）
type view struct {
	center types.Vec2
	scale  float64 // 每个世界单位的像素数
}

func newView(cam *components.CameraComponent) view {
	v := view{scale: ScreenHeight / 10.0}
	if cam != nil {
		v.center = cam.Position
		if cam.HalfHeight > 0 {
			v.scale = ScreenHeight / (2 * cam.HalfHeight)
		}
	}
	return v
}

func (v view) rect(center types.Vec2, w, h float64) (x, y, sw, sh float32) {
	sx := (center.X-w/2-v.center.X)*v.scale + ScreenWidth/2
	sy := ScreenHeight/2 - (center.Y+h/2-v.center.Y)*v.scale
	return float32(sx), float32(sy), float32(w * v.scale), float32(h * v.scale)
}

// drawWorld 把场景中的碰撞盒画成色块
func drawWorld(screen *ebiten.Image, scene *scenes.LevelScene) {
	screen.Fill(colorSky)
	if scene == nil {
		return
	}
	em := scene.EntityManager()
	v := newView(scene.Camera())

	// 收起的尖刺画在地面下方，被地面遮住
	sprites := ecs.GetEntitiesWith2[*components.TransformComponent, *components.SpriteComponent](em)
	for _, id := range sprites {
		if ecs.HasComponent[*components.TrapComponent](em, id) {
			drawSprite(screen, em, v, id)
		}
	}

	// 地面没有精灵，直接画碰撞盒
	for _, id := range ecs.GetEntitiesWith2[*components.TransformComponent, *components.CollisionComponent](em) {
		col, _ := ecs.GetComponent[*components.CollisionComponent](em, id)
		if col.Layer != components.LayerGround {
			continue
		}
		transform, _ := ecs.GetComponent[*components.TransformComponent](em, id)
		x, y, w, h := v.rect(transform.Position, col.Width, col.Height)
		vector.DrawFilledRect(screen, x, y, w, h, colorGround, false)
	}

	for _, id := range sprites {
		if !ecs.HasComponent[*components.TrapComponent](em, id) {
			drawSprite(screen, em, v, id)
		}
	}
}

func drawSprite(screen *ebiten.Image, em *ecs.EntityManager, v view, id ecs.EntityID) {
	sprite, _ := ecs.GetComponent[*components.SpriteComponent](em, id)
	if !sprite.Visible {
		return
	}
	transform, _ := ecs.GetComponent[*components.TransformComponent](em, id)
	pos := transform.Position
	if trap, ok := ecs.GetComponent[*components.TrapComponent](em, id); ok {
		pos = pos.Add(trap.VisualOffset).Sub(trap.Displacement)
	}
	x, y, w, h := v.rect(pos, sprite.Width, sprite.Height)
	vector.DrawFilledRect(screen, x, y, w, h, spriteColor(em, id, sprite), false)

	// 朝向标记
	if sprite.Kind == components.SpritePlayer || sprite.Kind == components.SpriteWalker {
		eyeX := x + w*0.65
		if sprite.FlipX {
			eyeX = x + w*0.2
		}
		vector.DrawFilledRect(screen, eyeX, y+h*0.2, w*0.15, h*0.15, color.Black, false)
	}
}

func spriteColor(em *ecs.EntityManager, id ecs.EntityID, sprite *components.SpriteComponent) color.Color {
	switch sprite.Kind {
	case components.SpritePlayer:
		return colorPlayer
	case components.SpriteSpike:
		if trap, ok := ecs.GetComponent[*components.TrapComponent](em, id); ok && trap.Active {
			return colorSpikeArmed
		}
		return colorSpike
	case components.SpriteCheckpoint:
		if cp, ok := ecs.GetComponent[*components.CheckpointComponent](em, id); ok && cp.Checked {
			return colorChecked
		}
		return colorCheckpoint
	case components.SpriteApple:
		return colorApple
	case components.SpriteWalker, components.SpriteFlyer:
		if enemy, ok := ecs.GetComponent[*components.EnemyComponent](em, id); ok && enemy.Dead {
			return colorDead
		}
		if sprite.Kind == components.SpriteFlyer {
			return colorFlyer
		}
		return colorWalker
	}
	return color.White
}

// menuLines 标题菜单的文字，选中项前加箭头；选项还没开始淡入时只有提示
func menuLines(m *scenes.MenuSnapshot) []string {
	lines := []string{"PLATFORMER", ""}
	if m.Phase == scenes.MenuWaiting.String() {
		return append(lines, "press any key")
	}
	if m.Fade <= 0 {
		return lines
	}
	for i, label := range m.Options {
		prefix := "  "
		if i == m.Selected {
			prefix = "> "
		}
		lines = append(lines, prefix+label)
	}
	return lines
}

func drawMenu(screen *ebiten.Image, m *scenes.MenuSnapshot) {
	screen.Fill(colorMenuBack)
	for i, line := range menuLines(m) {
		ebitenutil.DebugPrintAt(screen, line, ScreenWidth/2-48, ScreenHeight/3+i*18)
	}
	if m.Curtain > 0 {
		curtain := color.RGBA{A: uint8(255 * m.Curtain)}
		vector.DrawFilledRect(screen, 0, 0, ScreenWidth, ScreenHeight, curtain, false)
	}
}

// hud 保存最近一次渲染的 HUD 文本，Draw 时画到屏幕左上角
type hud struct {
	text game.HUDText
}

var _ game.HUD = (*hud)(nil)

// Render 实现 game.HUD 接口
func (h *hud) Render(text game.HUDText) {
	h.text = text
}

func (h *hud) draw(screen *ebiten.Image, snap scenes.Snapshot, musicOn bool) {
	vector.DrawFilledRect(screen, 0, 0, ScreenWidth, 22, colorHUDBack, false)
	music := "on"
	if !musicOn {
		music = "off"
	}
	line := fmt.Sprintf("SCORE %s   HI %s   LIVES %s   APPLES %s   %s   music:%s [M]",
		h.text.Score, h.text.HighScore, h.text.Lives, h.text.Apples, snap.Phase, music)
	ebitenutil.DebugPrintAt(screen, line, 8, 4)
}
