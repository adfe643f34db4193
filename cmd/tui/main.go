// tui 在终端里运行游戏
//
// 用法:
//
//	go run ./cmd/tui --level 1-1
//	go run ./cmd/tui --mute --http :8080
//
// 方向键/WASD 移动，空格跳跃，m 切换音乐，q 或 Esc 退出。
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/gonewx/platformer/internal/debugserver"
	"github.com/gonewx/platformer/pkg/embedded"
	"github.com/gonewx/platformer/pkg/game"
	"github.com/gonewx/platformer/pkg/scenes"
	"github.com/gonewx/platformer/pkg/utils"
)

// 与桌面版共用存储目录，最高分在两个前端之间共享
const appName = "gonewx-platformer"

const tickSeconds = 1.0 / 60.0

var (
	level    = flag.String("level", "", "关卡ID（默认使用存档中最近一次的关卡）")
	dataRoot = flag.String("data", ".", "包含 data/levels 的目录")
	mute     = flag.Bool("mute", false, "不初始化音频设备")
	httpAddr = flag.String("http", "", "调试接口监听地址")
	seed     = flag.Int64("seed", 0, "随机种子（0 表示当前时间）")
	logFile  = flag.String("log", "", "日志文件（终端界面占用标准输出）")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tui: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	log.SetOutput(io.Discard)
	if *logFile != "" {
		f, err := os.Create(*logFile)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	embedded.Init(os.DirFS(*dataRoot))

	if err := utils.EnsureStorageDir(); err != nil {
		log.Printf("[TUI] Warning: %v", err)
	}
	storage, err := game.OpenStorage(appName)
	if err != nil {
		log.Printf("[TUI] Warning: %v (settings will not persist)", err)
	}
	settings, err := game.NewSettingsManager(storage)
	if err != nil {
		return fmt.Errorf("failed to init settings: %w", err)
	}
	saves := game.NewSaveManager(storage)

	levelID := *level
	if levelID == "" {
		levelID = saves.Records().LastLevel
	}
	if levelID == "" {
		levelID = "1-1"
	}

	runSeed := *seed
	if runSeed == 0 {
		runSeed = time.Now().UnixNano()
	}

	input := &keyInput{}
	h := &hud{}
	opts := scenes.SessionOptions{
		LevelID:  levelID,
		Input:    input,
		HUD:      h,
		Settings: settings,
		Saves:    saves,
		Seed:     runSeed,
	}

	if !*mute {
		out, err := newSpeakerOutput()
		if err != nil {
			log.Printf("[TUI] Warning: %v, running without sound", err)
		} else {
			defer out.Close()
			opts.SoundBank = newSpeakerBank(out)
			opts.Channels = [2]game.MusicChannel{newSpeakerChannel(out), newSpeakerChannel(out)}
		}
	}

	session, err := scenes.NewSession(opts)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to init screen: %w", err)
	}
	defer screen.Fini()
	screen.HideCursor()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *httpAddr != "" {
		srv := debugserver.New(session)
		go func() {
			if err := srv.ListenAndServe(ctx, *httpAddr); err != nil {
				log.Printf("[TUI] %v", err)
			}
		}()
	}

	loopErr := loop(ctx, screen, session, input, h, settings)

	if err := settings.Save(); err != nil {
		log.Printf("[TUI] Warning: Failed to save settings: %v", err)
	}
	if err := session.Close(); err != nil {
		return err
	}
	return loopErr
}

// loop 事件读取在单独的 goroutine 上，模拟和绘制都在这里
func loop(ctx context.Context, screen tcell.Screen, session *scenes.Session, input *keyInput, h *hud, settings *game.SettingsManager) error {
	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(time.Duration(tickSeconds * float64(time.Second)))
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
					(ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q')) {
					return nil
				}
				if ev.Key() == tcell.KeyRune && (ev.Rune() == 'm' || ev.Rune() == 'M') {
					s := settings.GetSettings()
					settings.SetMusicEnabled(!s.MusicEnabled)
					session.Music().ApplySettings(s)
					continue
				}
				input.handle(ev, session.Scheduler().Now())
			case *tcell.EventResize:
				screen.Sync()
			}

		case <-ticker.C:
			session.Update(tickSeconds)
			drawWorld(screen, session.Scene())
			h.draw(screen, session.Snapshot(), settings.GetSettings().MusicEnabled)
			screen.Show()

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
