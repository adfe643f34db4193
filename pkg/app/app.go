// Package app 提供游戏应用的核心包装器
//
// 该包将游戏初始化逻辑从 main 包提取出来：创建存储、音频后端和模拟 Session，
// 并把它们包装成 ebiten.Game。桌面端通过 main.go 调用 NewApp()。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	synth "github.com/gonewx/platformer/internal/audio"
	"github.com/gonewx/platformer/pkg/game"
	"github.com/gonewx/platformer/pkg/scenes"
	"github.com/gonewx/platformer/pkg/utils"
)

// AppName 存储目录名
const AppName = "gonewx-platformer"

// DefaultLevel 没有存档时加载的关卡
const DefaultLevel = "1-1"

// tickSeconds 固定步长
const tickSeconds = 1.0 / 60.0

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// Level 指定要加载的关卡（如 "1-1"），为空则先显示标题菜单，
	// 开始后使用存档中最近一次的关卡或默认 1-1
	Level string
	// Seed 随机种子（敌人行为、随机播放），为 0 时使用当前时间
	Seed int64
}

// App 是游戏应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	session  *scenes.Session
	settings *game.SettingsManager
	hud      *hud
	verbose  bool

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化游戏应用
//
// 调用此函数前，必须先调用 embedded.Init() 初始化嵌入的关卡数据。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	// Android 上 gdata 不会预先创建存储目录
	if err := utils.EnsureStorageDir(); err != nil {
		log.Printf("[App] Warning: %v", err)
	}

	// 存储打开失败时进入降级模式（只在内存中保存设置和记录）
	storage, err := game.OpenStorage(AppName)
	if err != nil {
		log.Printf("[App] Warning: %v (settings will not persist)", err)
	}
	settings, err := game.NewSettingsManager(storage)
	if err != nil {
		return nil, fmt.Errorf("设置初始化失败: %w", err)
	}
	saves := game.NewSaveManager(storage)

	levelToLoad := cfg.Level
	if levelToLoad == "" {
		levelToLoad = saves.Records().LastLevel
		if levelToLoad != "" {
			log.Printf("[App] Loading from save: last level = %s", levelToLoad)
		}
	}
	if levelToLoad == "" {
		levelToLoad = DefaultLevel
		log.Printf("[App] No save found, starting new game at level %s", DefaultLevel)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	// 初始化音频上下文
	audioContext := audio.NewContext(synth.DefaultSampleRate)

	h := &hud{}
	session, err := scenes.NewSession(scenes.SessionOptions{
		LevelID:   levelToLoad,
		Menu:      cfg.Level == "",
		Input:     newInputSource(),
		HUD:       h,
		SoundBank: newSynthBank(audioContext),
		Channels:  [2]game.MusicChannel{newPlayerChannel(audioContext), newPlayerChannel(audioContext)},
		Settings:  settings,
		Saves:     saves,
		Seed:      seed,
	})
	if err != nil {
		return nil, fmt.Errorf("关卡加载失败: %w", err)
	}
	log.Printf("[App] Starting level: %s", levelToLoad)

	if settings.GetSettings().Fullscreen {
		ebiten.SetFullscreen(true)
	}

	return &App{
		session:  session,
		settings: settings,
		hud:      h,
		verbose:  cfg.Verbose,
	}, nil
}

// Update 更新游戏逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		a.toggleFullscreen()
	}

	// M 切换音乐
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		s := a.settings.GetSettings()
		a.settings.SetMusicEnabled(!s.MusicEnabled)
		a.session.Music().ApplySettings(s)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	a.session.Update(tickSeconds)
	if a.session.QuitRequested() {
		return ebiten.Termination
	}
	return nil
}

func (a *App) toggleFullscreen() {
	if ebiten.IsFullscreen() {
		// 退出全屏
		ebiten.SetFullscreen(false)
		if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
			ebiten.RestoreWindow()
		}
		// 延迟几帧后设置窗口大小，让窗口管理器有时间处理
		a.pendingWindowSizeReset = true
		a.windowSizeResetCountdown = 3
		a.settings.SetFullscreen(false)
		log.Printf("[App] Exit fullscreen, will reset window size in 3 frames")
		return
	}
	ebiten.SetFullscreen(true)
	a.settings.SetFullscreen(true)
}

// Draw 绘制游戏画面
// 每帧调用一次
func (a *App) Draw(screen *ebiten.Image) {
	snap := a.session.Snapshot()
	if snap.Menu != nil {
		drawMenu(screen, snap.Menu)
		return
	}
	drawWorld(screen, a.session.Scene())
	a.hud.draw(screen, snap, a.settings.GetSettings().MusicEnabled)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	// 先填充黑色背景（全屏时左右两边为黑色）
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterNearest
	screen.DrawImage(offscreen, op)
}

// Layout 返回游戏的逻辑屏幕尺寸
// 此尺寸独立于实际窗口大小，Ebitengine 会自动处理缩放
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}

// Session 返回模拟 Session
func (a *App) Session() *scenes.Session {
	return a.session
}

// Close 保存设置和本局记录
// 用于在游戏关闭时保存存档
func (a *App) Close() error {
	if err := a.settings.Save(); err != nil {
		log.Printf("[App] Warning: Failed to save settings: %v", err)
	}
	return a.session.Close()
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
