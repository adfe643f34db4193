package game

import (
	"math/rand"
	"testing"

	"github.com/gonewx/platformer/pkg/scheduler"
	"github.com/gonewx/platformer/pkg/types"
)

// ========== 测试替身 ==========

type fakePlayer struct {
	pos        types.Vec2
	vel        types.Vec2
	gravity    float64
	colliders  bool
	input      bool
	visible    bool
	impulses   []types.Vec2
	animResets int
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{gravity: 1, colliders: true, input: true, visible: true}
}

func (p *fakePlayer) Position() types.Vec2            { return p.pos }
func (p *fakePlayer) SetPosition(v types.Vec2)        { p.pos = v }
func (p *fakePlayer) Velocity() types.Vec2            { return p.vel }
func (p *fakePlayer) SetVelocity(v types.Vec2)        { p.vel = v }
func (p *fakePlayer) ApplyImpulse(i types.Vec2)       { p.impulses = append(p.impulses, i); p.vel = p.vel.Add(i) }
func (p *fakePlayer) GravityScale() float64           { return p.gravity }
func (p *fakePlayer) SetGravityScale(g float64)       { p.gravity = g }
func (p *fakePlayer) CollidersEnabled() bool          { return p.colliders }
func (p *fakePlayer) SetCollidersEnabled(on bool)     { p.colliders = on }
func (p *fakePlayer) SetInputEnabled(on bool)         { p.input = on }
func (p *fakePlayer) Visible() bool                   { return p.visible }
func (p *fakePlayer) SetVisible(on bool)              { p.visible = on }
func (p *fakePlayer) Layer() string                   { return "Player" }
func (p *fakePlayer) ResetMotionAnimation()           { p.animResets++ }

type fakeLocator struct {
	player *fakePlayer
}

func (l *fakeLocator) FindPlayer() (PlayerBody, bool) {
	if l.player == nil {
		return nil, false
	}
	return l.player, true
}

type fakeMatrix struct {
	ignored map[string]bool
}

func newFakeMatrix() *fakeMatrix {
	return &fakeMatrix{ignored: make(map[string]bool)}
}

func (m *fakeMatrix) HasLayer(name string) bool { return name == "Player" || name == "Enemy" }

func (m *fakeMatrix) IgnoreLayerCollision(a, b string, ignore bool) {
	m.ignored[a+"|"+b] = ignore
}

func (m *fakeMatrix) ignoring() bool {
	return m.ignored["Player|Enemy"]
}

type soundLog struct {
	played []SoundID
}

func (s *soundLog) PlaySound(id SoundID) { s.played = append(s.played, id) }

func (s *soundLog) count(id SoundID) int {
	n := 0
	for _, p := range s.played {
		if p == id {
			n++
		}
	}
	return n
}

type testRig struct {
	sched   *scheduler.Scheduler
	lc      *LifeController
	player  *fakePlayer
	locator *fakeLocator
	matrix  *fakeMatrix
	sounds  *soundLog
	hud     []HUDText
	reloads int
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	r := &testRig{
		sched:  scheduler.New(),
		player: newFakePlayer(),
		matrix: newFakeMatrix(),
		sounds: &soundLog{},
	}
	r.locator = &fakeLocator{player: r.player}
	r.lc = NewLifeController(r.sched, DefaultLifeTuning())
	r.lc.SetReloadHandler(func() { r.reloads++ })
	r.lc.Rebind(Bindings{
		Players:         r.locator,
		HUD:             HUDFunc(func(text HUDText) { r.hud = append(r.hud, text) }),
		Sounds:          r.sounds,
		Collisions:      r.matrix,
		LevelRespawn:    types.V(-6, 0),
		HasLevelRespawn: true,
	})
	return r
}

func (r *testRig) advance(seconds, dt float64) {
	for elapsed := 0.0; elapsed < seconds-1e-9; elapsed += dt {
		r.sched.Update(dt)
		r.lc.Update(dt)
	}
}

// ========== 分数与奖励生命 ==========

func TestNewLifeControllerInitialState(t *testing.T) {
	lc := NewLifeController(scheduler.New(), DefaultLifeTuning())
	s := lc.State()

	if s.TotalScore != 0 || s.LifeCount != 3 || s.NextLifeAt != 100 || s.AppleCount != 0 {
		t.Errorf("初始状态错误: %+v", s)
	}
	if lc.Phase() != PhaseIdle {
		t.Errorf("初始阶段应为 Idle, got %v", lc.Phase())
	}
}

func TestAddScoreGrantsLives(t *testing.T) {
	tests := []struct {
		name      string
		amounts   []int
		wantScore int
		wantLives int
		wantNext  int
	}{
		{"未越过阈值", []int{10, 20}, 30, 3, 100},
		{"刚好到达阈值", []int{100}, 100, 4, 200},
		{"一次越过多个阈值", []int{250}, 250, 5, 300},
		{"多次累加越过", []int{60, 60, 60}, 180, 4, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRig(t)
			for _, a := range tt.amounts {
				r.lc.AddScore(a)
			}
			s := r.lc.State()
			if s.TotalScore != tt.wantScore {
				t.Errorf("TotalScore = %d, 期望 %d", s.TotalScore, tt.wantScore)
			}
			if s.LifeCount != tt.wantLives {
				t.Errorf("LifeCount = %d, 期望 %d", s.LifeCount, tt.wantLives)
			}
			if s.NextLifeAt != tt.wantNext {
				t.Errorf("NextLifeAt = %d, 期望 %d", s.NextLifeAt, tt.wantNext)
			}
			if s.HighScore != tt.wantScore {
				t.Errorf("HighScore = %d, 期望 %d", s.HighScore, tt.wantScore)
			}
			if got := r.sounds.count(SoundNewLife); got != tt.wantLives-3 {
				t.Errorf("新生命音效次数 = %d, 期望 %d", got, tt.wantLives-3)
			}
		})
	}
}

// TestAddScoreThresholdFollowsTotal 任意正分数序列下阈值与奖励生命数都由总分唯一决定
func TestAddScoreThresholdFollowsTotal(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 50; run++ {
		r := newTestRig(t)
		for i := 0; i < 40; i++ {
			r.lc.AddScore(rng.Intn(120) + 1)

			s := r.lc.State()
			crossings := s.TotalScore / 100
			if s.NextLifeAt != 100*(crossings+1) {
				t.Fatalf("run %d: score=%d NextLifeAt=%d, 期望 %d", run, s.TotalScore, s.NextLifeAt, 100*(crossings+1))
			}
			if s.LifeCount != 3+crossings {
				t.Fatalf("run %d: score=%d LifeCount=%d, 期望 %d", run, s.TotalScore, s.LifeCount, 3+crossings)
			}
		}
	}
}

func TestCountAppleSharesThreshold(t *testing.T) {
	r := newTestRig(t)

	r.lc.AddScore(150) // 越过 100 → 阈值 200
	if s := r.lc.State(); s.LifeCount != 4 || s.NextLifeAt != 200 {
		t.Fatalf("分数奖励后状态错误: %+v", s)
	}

	r.lc.CountApple(150) // 150 < 200，不奖励
	if s := r.lc.State(); s.LifeCount != 4 {
		t.Errorf("苹果数未达阈值不应奖励生命, lives=%d", s.LifeCount)
	}

	r.lc.CountApple(60) // 210 >= 200
	s := r.lc.State()
	if s.LifeCount != 5 || s.NextLifeAt != 300 {
		t.Errorf("苹果数越过共享阈值应奖励生命: %+v", s)
	}
	if s.AppleCount != 210 || s.TotalScore != 150 {
		t.Errorf("苹果数与分数应独立计数: apples=%d score=%d", s.AppleCount, s.TotalScore)
	}
}

func TestHUDFormatting(t *testing.T) {
	r := newTestRig(t)
	r.lc.AddScore(5)
	r.lc.CountApple(1)

	if len(r.hud) == 0 {
		t.Fatal("HUD 应该被刷新")
	}
	last := r.hud[len(r.hud)-1]
	want := HUDText{Score: "0005", HighScore: "0005", Lives: "03", Apples: "0001"}
	if last != want {
		t.Errorf("HUD = %+v, 期望 %+v", last, want)
	}

	if got := FormatHUD(GameState{LifeCount: -1}).Lives; got != "00" {
		t.Errorf("负生命数应显示为 00, got %q", got)
	}
}

// ========== 扣血与游戏结束 ==========

func TestLoseLifeLastLifeResets(t *testing.T) {
	r := newTestRig(t)
	r.lc.AddScore(50)
	r.lc.CountApple(7)
	r.lc.LoseLife()
	r.advance(6, 0.5) // 等无敌结束
	r.lc.LoseLife()
	if r.lc.State().LifeCount != 1 {
		t.Fatalf("准备阶段生命数应为 1, got %d", r.lc.State().LifeCount)
	}
	r.advance(6, 0.5)

	r.lc.LoseLife()

	s := r.lc.State()
	if s.TotalScore != 0 || s.LifeCount != 3 || s.NextLifeAt != 100 {
		t.Errorf("游戏结束后应重置为 {0, 3, 100}, got score=%d lives=%d next=%d", s.TotalScore, s.LifeCount, s.NextLifeAt)
	}
	if s.AppleCount != 0 {
		t.Errorf("游戏结束后苹果数应清零, got %d", s.AppleCount)
	}
	if s.HighScore != 50 {
		t.Errorf("最高分应保留, got %d", s.HighScore)
	}
	if r.reloads != 1 {
		t.Errorf("应请求重载关卡一次, got %d", r.reloads)
	}
	if r.lc.Phase() != PhaseIdle {
		t.Errorf("游戏结束后阶段应为 Idle, got %v", r.lc.Phase())
	}
}

func TestGameOverHandlerSeesFinalState(t *testing.T) {
	r := newTestRig(t)
	var final GameState
	calls := 0
	r.lc.SetGameOverHandler(func(s GameState) {
		final = s
		calls++
	})

	r.lc.AddScore(30)
	for i := 0; i < 3; i++ {
		r.lc.ResetTransient()
		r.lc.LoseLife()
	}

	if calls != 1 {
		t.Fatalf("游戏结束回调应调用一次, got %d", calls)
	}
	if final.TotalScore != 30 || final.LifeCount != 0 {
		t.Errorf("回调应看到重置前的状态, got %+v", final)
	}
}

// 游戏结束后、场景重载之前，同一个 tick 里的其余伤害和得分都不再结算
func TestGameOverIgnoresHitsUntilRebind(t *testing.T) {
	r := newTestRig(t)
	gameOvers := 0
	r.lc.SetGameOverHandler(func(GameState) { gameOvers++ })

	for i := 0; i < 3; i++ {
		r.lc.ResetTransient()
		r.lc.LoseLifeFromHit(types.V(1, 0))
	}
	if !r.lc.ReloadPending() {
		t.Fatal("游戏结束后应等待重载")
	}

	// 相邻的第二个陷阱、掉出屏幕检查、收集物在同一个 tick 内继续上报
	r.lc.LoseLifeFromHit(types.V(2, 0))
	r.lc.LoseLife()
	r.player.pos = types.V(0, r.lc.KillLineY()-1)
	r.lc.Update(0.016)
	r.lc.AddScore(40)
	r.lc.CountApple(1)

	s := r.lc.State()
	if s.TotalScore != 0 || s.LifeCount != 3 || s.NextLifeAt != 100 || s.AppleCount != 0 {
		t.Errorf("重置后的状态应保持 {0, 3, 100, 0}, got score=%d lives=%d next=%d apples=%d",
			s.TotalScore, s.LifeCount, s.NextLifeAt, s.AppleCount)
	}
	if gameOvers != 1 || r.reloads != 1 {
		t.Errorf("游戏结束回调 %d 次、重载请求 %d 次, 期望各 1 次", gameOvers, r.reloads)
	}
	if r.lc.Phase() != PhaseIdle {
		t.Errorf("等待重载时不应开始死亡序列, phase=%v", r.lc.Phase())
	}

	// 新场景绑定后恢复结算
	r.lc.Rebind(Bindings{Players: r.locator, Collisions: r.matrix})
	if r.lc.ReloadPending() {
		t.Error("Rebind 后应清除等待标记")
	}
	r.lc.LoseLife()
	if r.lc.State().LifeCount != 2 {
		t.Errorf("Rebind 后应正常扣血, lives=%d", r.lc.State().LifeCount)
	}
}

func TestRestoreHighScore(t *testing.T) {
	r := newTestRig(t)
	r.lc.RestoreHighScore(500)
	r.lc.RestoreHighScore(200)

	if r.lc.State().HighScore != 500 {
		t.Errorf("HighScore = %d, 期望 500", r.lc.State().HighScore)
	}
	r.lc.AddScore(10)
	if r.lc.State().HighScore != 500 {
		t.Error("低于记录的分数不应改变最高分")
	}
	if last := r.hud[len(r.hud)-1]; last.HighScore != "0500" {
		t.Errorf("HUD 最高分 = %q", last.HighScore)
	}
}

func TestLoseLifeRespawnsWithInvulnerability(t *testing.T) {
	r := newTestRig(t)
	r.player.pos = types.V(12, 3)
	r.player.vel = types.V(4, -2)

	r.lc.LoseLife()

	if r.lc.State().LifeCount != 2 {
		t.Errorf("LifeCount = %d, 期望 2", r.lc.State().LifeCount)
	}
	if r.player.pos != types.V(-6, 0) {
		t.Errorf("玩家应被移到重生点, got %+v", r.player.pos)
	}
	if r.player.vel != (types.Vec2{}) {
		t.Errorf("重生后速度应清零, got %+v", r.player.vel)
	}
	if len(r.player.impulses) != 0 {
		t.Error("LoseLife 不应施加击退冲量")
	}
	if r.sounds.count(SoundDeath) != 1 {
		t.Error("应播放死亡音效")
	}
	if r.lc.Phase() != PhaseInvulnerable {
		t.Fatalf("重生后应处于无敌阶段, got %v", r.lc.Phase())
	}
	if !r.matrix.ignoring() {
		t.Error("无敌期间应忽略玩家与敌人的碰撞")
	}

	r.advance(4, 0.5)
	if r.lc.Phase() != PhaseInvulnerable {
		t.Error("4 秒时仍应无敌")
	}

	r.advance(2, 0.5)
	if r.lc.Phase() != PhaseIdle {
		t.Errorf("无敌结束后应回到 Idle, got %v", r.lc.Phase())
	}
	if r.matrix.ignoring() {
		t.Error("无敌结束后应恢复碰撞")
	}
	if !r.player.visible {
		t.Error("无敌结束后玩家应可见")
	}
}

func TestInvulnerabilityBlinks(t *testing.T) {
	r := newTestRig(t)
	r.lc.LoseLife()

	toggles := 0
	last := r.player.visible
	for i := 0; i < 20; i++ {
		r.sched.Update(0.1)
		if r.player.visible != last {
			toggles++
			last = r.player.visible
		}
	}
	if toggles < 10 {
		t.Errorf("无敌期间应持续闪烁, 2 秒内只切换了 %d 次", toggles)
	}
}

// ========== 死亡序列 ==========

func TestLoseLifeFromHitDeathSequence(t *testing.T) {
	r := newTestRig(t)
	r.player.pos = types.V(3, 1)
	r.player.gravity = 1.5

	r.lc.LoseLifeFromHit(types.V(5, 1)) // 伤害源在右侧

	if r.lc.Phase() != PhaseDying {
		t.Fatalf("应进入 Dying 阶段, got %v", r.lc.Phase())
	}
	if r.player.input || r.player.colliders {
		t.Error("死亡期间应禁用输入和碰撞体")
	}
	if r.player.gravity != 4.5 {
		t.Errorf("死亡期间重力应为 4.5, got %v", r.player.gravity)
	}
	if len(r.player.impulses) != 1 {
		t.Fatalf("应施加一次击退冲量, got %d", len(r.player.impulses))
	}
	if imp := r.player.impulses[0]; imp.X != -2 || imp.Y != 20 {
		t.Errorf("冲量应远离伤害源并向上, got %+v", imp)
	}
	if r.player.animResets != 1 {
		t.Error("应清除移动动画参数")
	}

	// 死亡期间的重复击中被忽略
	r.lc.LoseLifeFromHit(types.V(0, 0))
	r.lc.LoseLife()
	if r.lc.State().LifeCount != 2 {
		t.Errorf("死亡序列期间不应重复扣血, lives=%d", r.lc.State().LifeCount)
	}

	// 玩家掉出屏幕后序列结束
	r.player.pos = types.V(2, -10)
	r.sched.Update(0.016)

	if r.lc.State().IsDying {
		t.Error("掉出屏幕后死亡序列应结束")
	}
	if !r.player.input || !r.player.colliders {
		t.Error("重生前应恢复输入和碰撞体")
	}
	if r.player.gravity != 1.5 {
		t.Errorf("应恢复原始重力 1.5, got %v", r.player.gravity)
	}
	if r.player.pos != types.V(-6, 0) {
		t.Errorf("应重生在重生点, got %+v", r.player.pos)
	}
	if r.lc.Phase() != PhaseInvulnerable {
		t.Errorf("重生后应进入无敌阶段, got %v", r.lc.Phase())
	}
}

func TestDeathSequenceTimeout(t *testing.T) {
	r := newTestRig(t)
	r.player.pos = types.V(0, 5)

	r.lc.LoseLifeFromHit(types.V(-1, 5))
	if imp := r.player.impulses[0]; imp.X != 2 {
		t.Errorf("伤害源在左侧时应向右击退, got %+v", imp)
	}

	// 玩家卡住不下落：超时后仍然完成
	for i := 0; i < 5; i++ {
		r.sched.Update(0.5)
	}
	if !r.lc.State().IsDying {
		t.Fatal("超时前应仍在死亡序列中")
	}

	r.sched.Update(0.5)
	if r.lc.State().IsDying {
		t.Error("超时后死亡序列应结束")
	}
	if !r.player.colliders || !r.player.input {
		t.Error("超时结束同样应恢复碰撞体和输入")
	}
}

func TestDeathSequenceWithoutPlayerIsNoop(t *testing.T) {
	r := newTestRig(t)
	r.locator.player = nil

	r.lc.LoseLifeFromHit(types.V(0, 0))

	s := r.lc.State()
	if s.LifeCount != 2 {
		t.Errorf("找不到玩家时仍然扣血, lives=%d", s.LifeCount)
	}
	if s.IsDying {
		t.Error("找不到玩家时不应进入死亡状态")
	}
	if r.sched.Len() != 0 {
		t.Errorf("不应启动任何任务, got %d", r.sched.Len())
	}
}

func TestRebindCancelsDeathAndRestoresColliders(t *testing.T) {
	r := newTestRig(t)
	r.lc.LoseLifeFromHit(types.V(1, 0))
	if r.player.colliders {
		t.Fatal("死亡期间碰撞体应被禁用")
	}

	r.lc.Rebind(Bindings{Players: r.locator, Collisions: r.matrix})

	if r.lc.State().IsDying {
		t.Error("重新绑定后死亡状态应被清除")
	}
	if !r.player.colliders || !r.player.input {
		t.Error("取消死亡序列时应恢复碰撞体和输入")
	}
	if r.lc.Phase() != PhaseIdle {
		t.Errorf("Phase = %v, 期望 Idle", r.lc.Phase())
	}
}

func TestUpdateDetectsFallOutOfScreen(t *testing.T) {
	r := newTestRig(t)
	r.player.pos = types.V(4, r.lc.KillLineY()-0.1)

	r.lc.Update(0.016)

	if r.lc.State().LifeCount != 2 {
		t.Errorf("掉出屏幕应扣血, lives=%d", r.lc.State().LifeCount)
	}
	if r.player.pos != types.V(-6, 0) {
		t.Errorf("掉出屏幕后应重生, got %+v", r.player.pos)
	}
}

// ========== 重生点与水平限制 ==========

func TestSetRespawn(t *testing.T) {
	r := newTestRig(t)
	r.lc.SetRespawn(types.V(20, 1))

	p, ok := r.lc.RespawnPoint()
	if !ok || p != types.V(20, 1) {
		t.Errorf("RespawnPoint = %+v, %v", p, ok)
	}

	r.lc.LoseLife()
	if r.player.pos != types.V(20, 1) {
		t.Errorf("应在新的重生点重生, got %+v", r.player.pos)
	}
}

func TestSetHorizontalLimits(t *testing.T) {
	lc := NewLifeController(scheduler.New(), DefaultLifeTuning())

	lc.SetHorizontalLimits(5, -5, true)
	min, max, enabled := lc.HorizontalLimits()
	if min != -5 || max != 5 || !enabled {
		t.Errorf("反向边界应被交换: (%v, %v, %v)", min, max, enabled)
	}

	lc.SetHorizontalLimits(100, 200, false)
	min, max, enabled = lc.HorizontalLimits()
	if enabled {
		t.Error("enabled=false 应关闭限制")
	}
	if min != -5 || max != 5 {
		t.Errorf("关闭限制时应保留原有边界, got (%v, %v)", min, max)
	}
}

func TestTuningNormalization(t *testing.T) {
	lc := NewLifeController(scheduler.New(), LifeTuning{LifeStep: 0, InitialLives: 0})

	tuning := lc.Tuning()
	if tuning.LifeStep != 100 || tuning.InitialLives != 3 || tuning.FirstLifeAt != 100 {
		t.Errorf("非法参数应被修正: %+v", tuning)
	}

	lc.AddScore(1000)
	if lc.State().NextLifeAt != 1100 {
		t.Errorf("NextLifeAt = %d, 期望 1100", lc.State().NextLifeAt)
	}
}
