// simulate 无界面运行一个关卡
//
// 用法:
//
//	go run ./cmd/simulate --level 1-1 --seconds 20 --script script.yaml
//	go run ./cmd/simulate --level 1-1 --http :8080   # 实时运行并提供调试接口
//	go run ./cmd/simulate --list
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gonewx/platformer/internal/debugserver"
	"github.com/gonewx/platformer/pkg/config"
	"github.com/gonewx/platformer/pkg/embedded"
	"github.com/gonewx/platformer/pkg/scenes"
	"github.com/gonewx/platformer/pkg/systems"
)

var (
	level    = flag.String("level", "1-1", "关卡ID")
	dataRoot = flag.String("data", ".", "包含 data/levels 的目录")
	seconds  = flag.Float64("seconds", 0, "模拟时长（秒），0 表示脚本时长或 10 秒")
	dt       = flag.Float64("dt", 1.0/60.0, "固定步长（秒）")
	script   = flag.String("script", "", "YAML 输入脚本")
	httpAddr = flag.String("http", "", "调试接口监听地址（设置后按实时速度运行）")
	seed     = flag.Int64("seed", 1, "随机种子")
	trace    = flag.Bool("trace", false, "每秒输出一行状态")
	asJSON   = flag.Bool("json", false, "以 JSON 输出最终快照")
	verbose  = flag.Bool("verbose", false, "显示详细调试信息")
	list     = flag.Bool("list", false, "列出可用关卡后退出")
)

func main() {
	flag.Parse()

	if !*verbose {
		log.SetOutput(io.Discard)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "simulate: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if *dt <= 0 {
		return fmt.Errorf("dt must be positive, got %v", *dt)
	}

	embedded.Init(os.DirFS(*dataRoot))

	if *list {
		ids, err := config.EmbeddedLevelIDs()
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	}

	input, err := loadScript(*script)
	if err != nil {
		return err
	}

	duration := *seconds
	if duration <= 0 {
		duration = 10
		if input != nil && input.Duration() > 0 {
			duration = input.Duration()
		}
	}

	opts := scenes.SessionOptions{LevelID: *level, Seed: *seed}
	if input != nil {
		opts.Input = input
	}
	session, err := scenes.NewSession(opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var serverErr chan error
	if *httpAddr != "" {
		serverErr = make(chan error, 1)
		srv := debugserver.New(session)
		go func() {
			serverErr <- srv.ListenAndServe(ctx, *httpAddr)
		}()
		fmt.Printf("debug server on %s\n", *httpAddr)
	}

	steps := int(duration / *dt)
	var ticker *time.Ticker
	if *httpAddr != "" {
		ticker = time.NewTicker(time.Duration(*dt * float64(time.Second)))
		defer ticker.Stop()
	}

	nextTrace := 1.0
	for i := 0; i < steps; i++ {
		if ticker != nil {
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return finish(session)
			}
		}
		session.Update(*dt)

		if *trace && session.Scheduler().Now() >= nextTrace {
			printTrace(session.Snapshot())
			nextTrace++
		}
	}

	if err := finish(session); err != nil {
		return err
	}

	// 模拟结束后保持调试接口，直到 Ctrl-C
	if serverErr != nil {
		fmt.Println("simulation finished, press Ctrl-C to stop the debug server")
		<-ctx.Done()
		return <-serverErr
	}
	return nil
}

func loadScript(path string) (*systems.ScriptedInput, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	var input systems.ScriptedInput
	if err := yaml.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to parse script YAML: %w", err)
	}
	return &input, nil
}

func printTrace(s scenes.Snapshot) {
	fmt.Printf("t=%6.2f pos=(%6.2f,%5.2f) score=%04d lives=%02d apples=%04d phase=%s\n",
		s.Time, s.Player.Position.X, s.Player.Position.Y, s.State.Score, s.State.Lives, s.State.Apples, s.Phase)
}

func finish(session *scenes.Session) error {
	snap := session.Snapshot()
	if err := session.Close(); err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	fmt.Printf("level %s  run %s  t=%.2fs  ticks=%d  reloads=%d\n", snap.LevelID, snap.RunID, snap.Time, snap.Tick, snap.Reloads)
	fmt.Printf("score %04d  high %04d  lives %02d  apples %04d  phase %s\n",
		snap.State.Score, snap.State.HighScore, snap.State.Lives, snap.State.Apples, snap.Phase)
	fmt.Printf("player (%.2f, %.2f) grounded=%v  checkpoint=%q\n",
		snap.Player.Position.X, snap.Player.Position.Y, snap.Player.Grounded, snap.Checkpoint)
	fmt.Printf("enemies alive %d  stomps %d  apples left %d  music %q\n",
		snap.EnemiesAlive, snap.Stomps, snap.ApplesLeft, snap.Music)
	for _, t := range snap.Traps {
		fmt.Printf("  trap %-12s %-10s active=%v\n", t.Name, t.State, t.Active)
	}
	return nil
}
