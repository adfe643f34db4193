package scenes

import (
	"fmt"
	"log"
	"sync"

	"github.com/gonewx/platformer/pkg/config"
	"github.com/gonewx/platformer/pkg/game"
	"github.com/gonewx/platformer/pkg/scheduler"
	"github.com/gonewx/platformer/pkg/systems"
)

// LevelLoader 按关卡ID读取配置
type LevelLoader func(levelID string) (*config.LevelConfig, error)

// SessionOptions 创建 Session 的参数
// 除 LevelID 外都可以省略：
//   - Loader 默认读取嵌入的关卡文件
//   - Channels 为 nil 的通道使用 SilentChannel
//   - Settings/Saves 为 nil 时不读写持久化数据
//
// Menu 为 true 时先显示标题菜单，选择开始后才加载 LevelID。
type SessionOptions struct {
	LevelID   string
	Menu      bool
	Loader    LevelLoader
	Input     systems.InputSource
	HUD       game.HUD
	SoundBank game.SoundBank
	Channels  [2]game.MusicChannel
	Settings  *game.SettingsManager
	Saves     *game.SaveManager
	Seed      int64
}

// Session 一次游戏运行的模拟根
//
// 调度器、生命控制器、音乐和输入跨关卡重载存活；
// 每次（重新）加载关卡时由场景工厂创建新的 LevelScene 并重新绑定。
// Update 必须在同一个 goroutine 上调用，Snapshot 可以在任意 goroutine 上读取。
type Session struct {
	sched  *scheduler.Scheduler
	life   *game.LifeController
	audio  *game.AudioManager
	music  *game.MusicManager
	input  *systems.InputSystem
	scenes *game.SceneManager

	hud    game.HUD
	saves  *game.SaveManager
	loader LevelLoader
	seed   int64

	scene  *LevelScene
	menu   *MenuScene
	played bool // 是否加载过关卡，没玩过的会话退出时不记录
	quit   bool

	mu   sync.RWMutex
	snap Snapshot
}

// NewSession 加载第一个关卡并开始播放音乐
func NewSession(opts SessionOptions) (*Session, error) {
	if opts.LevelID == "" {
		return nil, fmt.Errorf("level ID is required")
	}
	loader := opts.Loader
	if loader == nil {
		loader = config.LoadEmbeddedLevel
	}

	level, err := loader(opts.LevelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load level %s: %w", opts.LevelID, err)
	}

	s := &Session{
		sched:  scheduler.New(),
		scenes: game.NewSceneManager(),
		input:  systems.NewInputSystem(opts.Input),
		hud:    opts.HUD,
		saves:  opts.Saves,
		loader: loader,
		seed:   opts.Seed,
	}

	s.life = game.NewLifeController(s.sched, level.LifeTuning())
	s.audio = game.NewAudioManager(opts.SoundBank, opts.Settings)

	a, b := opts.Channels[0], opts.Channels[1]
	if a == nil {
		a = game.NewSilentChannel(s.sched)
	}
	if b == nil {
		b = game.NewSilentChannel(s.sched)
	}
	s.music = game.NewMusicManager(s.sched, a, b, level.Music.Tracks, level.MusicOptions(opts.Seed))
	s.audio.SetMusicManager(s.music)

	if s.saves != nil {
		s.life.RestoreHighScore(s.saves.HighScore())
	}
	s.life.SetReloadHandler(s.scenes.RequestReload)
	s.life.SetGameOverHandler(s.onGameOver)

	// 第一次加载复用已经读好的配置
	first := level
	s.scenes.SetSceneFactory(func(levelID string) game.Scene {
		cfg := first
		first = nil
		if cfg == nil {
			var err error
			cfg, err = s.loader(levelID)
			if err != nil {
				log.Printf("[Session] Failed to load level %s: %v", levelID, err)
				return nil
			}
		}
		s.scene = NewLevelScene(s, cfg)
		return s.scene
	})

	if opts.Menu {
		levelID := opts.LevelID
		s.menu = NewMenuScene(s.sched, s.input, func() {
			if err := s.startLevel(levelID); err != nil {
				log.Printf("[Session] %v", err)
			}
		}, s.requestQuit)
		s.scenes.SwitchTo(s.menu)
	} else if err := s.startLevel(opts.LevelID); err != nil {
		return nil, err
	}

	s.music.PlayIndex(0)
	s.publish()
	return s, nil
}

// startLevel 加载关卡，替换掉菜单
func (s *Session) startLevel(levelID string) error {
	if !s.scenes.LoadLevel(levelID) {
		return fmt.Errorf("failed to build level %s", levelID)
	}
	s.menu = nil
	s.played = true
	if s.saves != nil {
		s.saves.SetLastLevel(levelID)
	}
	return nil
}

func (s *Session) requestQuit() {
	log.Printf("[Session] Quit requested from menu")
	s.quit = true
}

// QuitRequested 菜单中是否选择了退出
func (s *Session) QuitRequested() bool {
	return s.quit
}

func (s *Session) onGameOver(final game.GameState) {
	log.Printf("[Session] Game over: score %d, apples %d", final.TotalScore, final.AppleCount)
	if s.saves == nil {
		return
	}
	if s.saves.SubmitRun(final) {
		log.Printf("[Session] New high score: %d", final.TotalScore)
	}
	if err := s.saves.Save(); err != nil {
		log.Printf("[Session] Warning: Failed to save records: %v", err)
	}
}

// Update 推进一个固定步长
// 顺序：输入 → 场景（可能在末尾重载）→ 调度任务 → 音乐自动切歌 → 发布快照
func (s *Session) Update(dt float64) {
	s.input.Update(dt)
	s.scenes.Update(dt)
	s.sched.Update(dt)
	s.music.Update()
	s.publish()
}

func (s *Session) publish() {
	snap := Snapshot{
		Time:    s.sched.Now(),
		Tick:    s.sched.Tick(),
		Reloads: s.scenes.ReloadCount(),
		State:   hudState(s.life.State()),
		Phase:   s.life.Phase().String(),
	}
	if track, ok := s.music.CurrentTrack(); ok {
		snap.Music = track.ID
	}
	if s.menu != nil {
		s.menu.snapshot(&snap)
	} else if s.scene != nil {
		s.scene.snapshot(&snap)
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

// Snapshot 返回最近一个 tick 结束时的状态
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Menu 当前的标题菜单，关卡开始后为 nil
func (s *Session) Menu() *MenuScene {
	return s.menu
}

// Scene 当前关卡场景（只能在模拟 goroutine 上使用），还在菜单时为 nil
func (s *Session) Scene() *LevelScene {
	return s.scene
}

// Life 返回生命控制器
func (s *Session) Life() *game.LifeController {
	return s.life
}

// Audio 返回音频管理器
func (s *Session) Audio() *game.AudioManager {
	return s.audio
}

// Music 返回音乐管理器
func (s *Session) Music() *game.MusicManager {
	return s.music
}

// Scheduler 返回模拟时钟
func (s *Session) Scheduler() *scheduler.Scheduler {
	return s.sched
}

// Input 返回输入系统
func (s *Session) Input() *systems.InputSystem {
	return s.input
}

// Scenes 返回场景管理器
func (s *Session) Scenes() *game.SceneManager {
	return s.scenes
}

// Close 退出时合并本局记录并保存
func (s *Session) Close() error {
	if cur, ok := s.scenes.GetCurrentScene().(game.Unloadable); ok {
		cur.Unload()
	}
	s.music.Stop(0)
	if s.saves == nil || !s.played {
		return nil
	}
	s.saves.SubmitRun(s.life.State())
	if err := s.saves.Save(); err != nil {
		return fmt.Errorf("failed to save records: %w", err)
	}
	return nil
}
