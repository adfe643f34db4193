package scenes

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gonewx/platformer/pkg/components"
	"github.com/gonewx/platformer/pkg/config"
	"github.com/gonewx/platformer/pkg/game"
	"github.com/gonewx/platformer/pkg/systems"
	"github.com/gonewx/platformer/pkg/types"
)

const testDT = 1.0 / 60

// 地面顶部在 y=-0.5，玩家（高 1）站稳后 y=0
const sessionLevel = `id: "t-1"
name: "Session Test"
player:
  spawn: {x: 0, y: 0}
life:
  initialLives: %d
music:
  tracks:
    - {id: a, notes: [0, 2, 4, 5], tempo: 120}
    - {id: b, notes: [7, 5], tempo: 120}
ground:
  - {position: {x: 5, y: -1}, size: {x: 20, y: 1}}
traps:
  - {name: spike, position: {x: 8, y: -0.25}, delay: 0.1}
checkpoints:
  - {name: cp, position: {x: 4, y: 0}}
apples:
  - {position: {x: 2, y: 0}}
`

func inlineLoader(lives int) LevelLoader {
	return func(levelID string) (*config.LevelConfig, error) {
		if levelID != "t-1" {
			return nil, fmt.Errorf("unknown level %s", levelID)
		}
		return config.ParseLevelConfig([]byte(fmt.Sprintf(sessionLevel, lives)), "inline")
	}
}

func newTestSession(t *testing.T, lives int, input systems.InputSource) (*Session, *game.SaveManager) {
	t.Helper()
	saves := game.NewSaveManager(nil)
	s, err := NewSession(SessionOptions{
		LevelID: "t-1",
		Loader:  inlineLoader(lives),
		Input:   input,
		Saves:   saves,
		Seed:    1,
	})
	if err != nil {
		t.Fatalf("NewSession() failed: %v", err)
	}
	return s, saves
}

func run(s *Session, seconds float64) {
	for i := 0; i < int(seconds/testDT+0.5); i++ {
		s.Update(testDT)
	}
}

func TestNewSessionLoadsLevel(t *testing.T) {
	s, saves := newTestSession(t, 3, nil)

	snap := s.Snapshot()
	if snap.LevelID != "t-1" || snap.RunID == "" {
		t.Errorf("LevelID=%q RunID=%q", snap.LevelID, snap.RunID)
	}
	if !snap.Player.Found || snap.Player.Position != types.V(0, 0) {
		t.Errorf("玩家应在出生点: %+v", snap.Player)
	}
	if len(snap.Traps) != 1 || snap.Traps[0].Name != "spike" {
		t.Errorf("Traps = %+v", snap.Traps)
	}
	if snap.State.Lives != 3 || snap.ApplesLeft != 1 {
		t.Errorf("Lives=%d ApplesLeft=%d", snap.State.Lives, snap.ApplesLeft)
	}
	if snap.Music != "a" {
		t.Errorf("Music = %q, 期望第一首曲目", snap.Music)
	}
	if saves.Records().LastLevel != "t-1" {
		t.Error("应记录最近一次游玩的关卡")
	}
}

func TestNewSessionErrors(t *testing.T) {
	tests := []struct {
		name    string
		opts    SessionOptions
		wantErr string
	}{
		{"缺少关卡ID", SessionOptions{Loader: inlineLoader(3)}, "level ID is required"},
		{"关卡不存在", SessionOptions{LevelID: "9-9", Loader: inlineLoader(3)}, "failed to load level 9-9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSession(tt.opts)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("错误 = %v, 期望包含 %q", err, tt.wantErr)
			}
		})
	}
}

func TestSessionPlayerSettlesOnGround(t *testing.T) {
	s, _ := newTestSession(t, 3, nil)

	run(s, 1)

	snap := s.Snapshot()
	if !snap.Player.Grounded {
		t.Error("玩家应站在地面上")
	}
	if snap.Player.Position.Y < -0.05 || snap.Player.Position.Y > 0.05 {
		t.Errorf("玩家高度 = %v, 期望约 0", snap.Player.Position.Y)
	}
	if snap.Tick != 60 {
		t.Errorf("Tick = %d, 期望 60", snap.Tick)
	}
}

func TestSessionCollectsAppleAndCheckpoint(t *testing.T) {
	input := &systems.ScriptedInput{Segments: []systems.InputSegment{
		{From: 0, To: 1, Horizontal: 1},
	}}
	s, _ := newTestSession(t, 3, input)

	run(s, 1.2)

	snap := s.Snapshot()
	if snap.ApplesLeft != 0 || snap.State.Apples != 1 {
		t.Errorf("ApplesLeft=%d Apples=%d, 期望苹果已被收集", snap.ApplesLeft, snap.State.Apples)
	}
	if snap.State.Score != config.DefaultAppleScore {
		t.Errorf("Score = %d, 期望 %d", snap.State.Score, config.DefaultAppleScore)
	}
	if snap.Checkpoint != "cp" || snap.State.Respawn != types.V(4, 0) {
		t.Errorf("Checkpoint=%q Respawn=%v", snap.Checkpoint, snap.State.Respawn)
	}
}

func TestSessionFallLosesLife(t *testing.T) {
	s, _ := newTestSession(t, 3, nil)

	if err := s.Scene().Teleport(types.V(0, -10)); err != nil {
		t.Fatalf("Teleport() failed: %v", err)
	}
	s.Update(testDT)

	snap := s.Snapshot()
	if snap.State.Lives != 2 {
		t.Errorf("Lives = %d, 期望 2", snap.State.Lives)
	}
	if snap.Player.Position.Y < -1 {
		t.Errorf("玩家应回到重生点, 位置 %v", snap.Player.Position)
	}
	if snap.Phase != game.PhaseInvulnerable.String() {
		t.Errorf("Phase = %s, 期望重生后无敌", snap.Phase)
	}
}

func TestSessionGameOverReloadsLevel(t *testing.T) {
	s, saves := newTestSession(t, 1, nil)
	first := s.Scene()
	firstRun := s.Snapshot().RunID

	if err := first.Teleport(types.V(0, -10)); err != nil {
		t.Fatalf("Teleport() failed: %v", err)
	}
	s.Update(testDT)

	snap := s.Snapshot()
	if snap.Reloads != 1 {
		t.Fatalf("Reloads = %d, 期望 1", snap.Reloads)
	}
	if s.Scene() == first || snap.RunID == firstRun {
		t.Error("游戏结束后应创建新的场景")
	}
	if snap.State.Lives != 1 || snap.State.Score != 0 {
		t.Errorf("游戏应被重置: %+v", snap.State)
	}
	if saves.Records().GamesPlayed != 1 {
		t.Errorf("GamesPlayed = %d, 期望 1", saves.Records().GamesPlayed)
	}

	// 旧场景的任务已被取消，新场景的陷阱任务仍可正常运行
	if !first.unloaded {
		t.Error("旧场景应已卸载")
	}
	run(s, 0.5)
	if s.Snapshot().Reloads != 1 {
		t.Error("不应发生额外的重载")
	}
}

// 出生点上叠着两根常驻尖刺，同一个 tick 里玩家会碰到两次
const twinSpikeLevel = `id: "t-2"
name: "Twin Spikes"
player:
  spawn: {x: 0, y: 0}
life:
  initialLives: %d
ground:
  - {position: {x: 0, y: -1}, size: {x: 20, y: 1}}
traps:
  - {name: twin-a, position: {x: 0, y: -0.25}, alwaysOn: true}
  - {name: twin-b, position: {x: 0.5, y: -0.25}, alwaysOn: true}
`

func TestSessionGameOverCountsOverlappingHitsOnce(t *testing.T) {
	tests := []struct {
		name         string
		initialLives int
		losesBefore  int
	}{
		{"最后一条命", 3, 2},
		{"只有一条命", 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saves := game.NewSaveManager(nil)
			s, err := NewSession(SessionOptions{
				LevelID: "t-2",
				Loader: func(string) (*config.LevelConfig, error) {
					return config.ParseLevelConfig([]byte(fmt.Sprintf(twinSpikeLevel, tt.initialLives)), "inline")
				},
				Saves: saves,
				Seed:  1,
			})
			if err != nil {
				t.Fatalf("NewSession() failed: %v", err)
			}
			for i := 0; i < tt.losesBefore; i++ {
				s.Life().LoseLife()
			}
			if lives := s.Life().State().LifeCount; lives != 1 {
				t.Fatalf("准备阶段生命数应为 1, got %d", lives)
			}

			s.Update(testDT)

			snap := s.Snapshot()
			if snap.Reloads != 1 {
				t.Fatalf("Reloads = %d, 期望 1", snap.Reloads)
			}
			if snap.State.Lives != tt.initialLives || snap.State.Score != 0 || snap.State.NextLifeAt != 100 {
				t.Errorf("游戏结束应重置为初始状态, got %+v", snap.State)
			}
			if snap.Phase != game.PhaseIdle.String() {
				t.Errorf("Phase = %s, 期望 Idle", snap.Phase)
			}
			if saves.Records().GamesPlayed != 1 {
				t.Errorf("GamesPlayed = %d, 同一次游戏结束只应记录一次", saves.Records().GamesPlayed)
			}
			if s.Life().ReloadPending() {
				t.Error("新场景绑定后不应再等待重载")
			}
		})
	}
}

// 两根收起的定时尖刺，一根是触发区域，一根是实心碰撞体
const solidTrapLevel = `id: "t-3"
name: "Solid Trap"
player:
  spawn: {x: 0, y: 0}
ground:
  - {position: {x: 5, y: -1}, size: {x: 20, y: 1}}
traps:
  - {name: solid, position: {x: 4, y: -0.25}, delay: 0.1, solid: true}
  - {name: trigger, position: {x: 8, y: -0.25}, delay: 0.1}
`

func TestLevelSceneRoutesTrapContactsByTrigger(t *testing.T) {
	s, err := NewSession(SessionOptions{
		LevelID: "t-3",
		Loader: func(string) (*config.LevelConfig, error) {
			return config.ParseLevelConfig([]byte(solidTrapLevel), "inline")
		},
		Seed: 1,
	})
	if err != nil {
		t.Fatalf("NewSession() failed: %v", err)
	}
	trapState := func(name string) string {
		for _, trap := range s.Snapshot().Traps {
			if trap.Name == name {
				return trap.State
			}
		}
		t.Fatalf("找不到陷阱 %s", name)
		return ""
	}

	lives := s.Life().State().LifeCount
	if err := s.Scene().Teleport(types.V(4, 0)); err != nil {
		t.Fatalf("Teleport() failed: %v", err)
	}
	s.Update(testDT)

	if got := trapState("solid"); got != components.TrapIdle.String() {
		t.Errorf("碰到收起的实心陷阱不应触发激活, state=%s", got)
	}
	if s.Life().State().LifeCount != lives {
		t.Error("收起的实心陷阱不应伤害玩家")
	}

	if err := s.Scene().Teleport(types.V(8, 0)); err != nil {
		t.Fatalf("Teleport() failed: %v", err)
	}
	s.Update(testDT)

	if got := trapState("trigger"); got != components.TrapDelaying.String() {
		t.Errorf("进入触发区域应开始激活序列, state=%s", got)
	}
}

func TestLevelSceneUnloadCancelsTasks(t *testing.T) {
	s, _ := newTestSession(t, 3, nil)
	scene := s.Scene()

	// 走到陷阱上触发激活任务
	if err := scene.Teleport(types.V(8, 0)); err != nil {
		t.Fatalf("Teleport() failed: %v", err)
	}
	s.Update(testDT)

	scene.Unload()
	if n := s.Scheduler().CancelPrefix(levelTaskPrefix); n != 0 {
		t.Errorf("卸载后仍有 %d 个关卡任务", n)
	}

	// 卸载后的场景不再推进
	elapsed := scene.Elapsed()
	scene.Update(testDT)
	if scene.Elapsed() != elapsed {
		t.Error("卸载后的场景不应继续更新")
	}
}

func TestSessionClose(t *testing.T) {
	s, saves := newTestSession(t, 3, nil)

	if err := s.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if saves.Records().GamesPlayed != 1 {
		t.Errorf("GamesPlayed = %d, 期望 1", saves.Records().GamesPlayed)
	}
	if !s.Music().Stopped() {
		t.Error("Close 应停止音乐")
	}
}
