package game

import (
	"log"

	"github.com/gonewx/platformer/pkg/scheduler"
	"github.com/gonewx/platformer/pkg/types"
)

// 调度任务 key
const (
	deathTaskKey           = "life:death"
	invulnerabilityTaskKey = "life:invulnerability"
)

// LifePhase 死亡/重生流程所处阶段
type LifePhase int

const (
	// PhaseIdle 正常游戏
	PhaseIdle LifePhase = iota
	// PhaseDying 死亡序列进行中（击退、坠落）
	PhaseDying
	// PhaseInvulnerable 重生后的无敌时间
	PhaseInvulnerable
)

// String 返回阶段名称
func (p LifePhase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseDying:
		return "Dying"
	case PhaseInvulnerable:
		return "Invulnerable"
	default:
		return "Unknown"
	}
}

// LifeTuning 生命/死亡流程的可调参数
type LifeTuning struct {
	InitialLives int // 新游戏的生命数
	FirstLifeAt  int // 新游戏的第一个奖励生命阈值
	LifeStep     int // 每次越过阈值后阈值的增量

	InvulnSeconds float64 // 重生后无敌时长
	BlinkInterval float64 // 无敌期间闪烁间隔
	EnemyLayer    string  // 无敌期间与玩家忽略碰撞的层

	CameraBottomLimit float64 // 镜头下缘的世界坐标
	FallDeathBuffer   float64 // 低于镜头下缘多少视为掉出屏幕

	DeathJumpY              float64 // 死亡时向上的冲量
	DeathKnockbackX         float64 // 死亡时远离伤害源的水平冲量
	DeathGravity            float64 // 死亡坠落期间的重力倍率
	DeathTimeout            float64 // 死亡坠落的最长等待时间
	DisableCollidersOnDeath bool    // 死亡期间是否关闭玩家碰撞体
}

// DefaultLifeTuning 返回默认参数
func DefaultLifeTuning() LifeTuning {
	return LifeTuning{
		InitialLives:            3,
		FirstLifeAt:             100,
		LifeStep:                100,
		InvulnSeconds:           5.0,
		BlinkInterval:           0.1,
		EnemyLayer:              "Enemy",
		CameraBottomLimit:       -2.48,
		FallDeathBuffer:         0.5,
		DeathJumpY:              20,
		DeathKnockbackX:         2,
		DeathGravity:            4.5,
		DeathTimeout:            3.0,
		DisableCollidersOnDeath: true,
	}
}

// normalized 修正非法参数（阈值增量必须为正，否则奖励循环无法结束）
func (t LifeTuning) normalized() LifeTuning {
	def := DefaultLifeTuning()
	if t.InitialLives <= 0 {
		t.InitialLives = def.InitialLives
	}
	if t.LifeStep <= 0 {
		t.LifeStep = def.LifeStep
	}
	if t.FirstLifeAt <= 0 {
		t.FirstLifeAt = t.LifeStep
	}
	if t.BlinkInterval <= 0 {
		t.BlinkInterval = def.BlinkInterval
	}
	if t.DeathTimeout < 0 {
		t.DeathTimeout = 0
	}
	return t
}

// Bindings 场景（重新）加载后需要重新获取的引用
type Bindings struct {
	Players    PlayerLocator
	HUD        HUD
	Sounds     SoundPlayer
	Collisions CollisionMatrix

	// LevelRespawn 关卡默认重生点；检查点设置的重生点随旧场景失效
	LevelRespawn    types.Vec2
	HasLevelRespawn bool
}

// LifeController 分数、生命、重生的唯一权威
//
// 敌人、陷阱、收集物通过它报告事件；镜头和玩家出生逻辑通过它查询水平限制和重生点。
// 它跨场景重载存活，每次加载后由场景调用 Rebind 重新绑定引用。
type LifeController struct {
	state  GameState
	tuning LifeTuning
	sched  *scheduler.Scheduler

	players    PlayerLocator
	hud        HUD
	sounds     SoundPlayer
	collisions CollisionMatrix

	onReload   func()
	onGameOver func(final GameState)

	// 游戏结束后到场景重载完成（Rebind）之前为 true，期间不再结算伤害和得分
	reloadPending bool
}

// NewLifeController 创建生命控制器
// sched 是模拟根持有的调度器，死亡序列和无敌闪烁都在其中运行。
func NewLifeController(sched *scheduler.Scheduler, tuning LifeTuning) *LifeController {
	tuning = tuning.normalized()
	lc := &LifeController{
		tuning: tuning,
		sched:  sched,
	}
	lc.state = GameState{
		LifeCount:  tuning.InitialLives,
		NextLifeAt: tuning.FirstLifeAt,
	}
	return lc
}

// State 返回当前状态快照
func (lc *LifeController) State() GameState {
	return lc.state
}

// Tuning 返回当前参数
func (lc *LifeController) Tuning() LifeTuning {
	return lc.tuning
}

// Phase 返回死亡/重生流程所处阶段
func (lc *LifeController) Phase() LifePhase {
	if lc.state.IsDying {
		return PhaseDying
	}
	if lc.sched.Running(invulnerabilityTaskKey) {
		return PhaseInvulnerable
	}
	return PhaseIdle
}

// SetReloadHandler 设置生命耗尽时的关卡重载回调
func (lc *LifeController) SetReloadHandler(fn func()) {
	lc.onReload = fn
}

// SetGameOverHandler 设置游戏结束回调，参数是重置之前的最终状态
func (lc *LifeController) SetGameOverHandler(fn func(final GameState)) {
	lc.onGameOver = fn
}

// RestoreHighScore 用持久化的记录初始化最高分（只会提高）
func (lc *LifeController) RestoreHighScore(high int) {
	if high > lc.state.HighScore {
		lc.state.HighScore = high
		lc.updateHUD()
	}
}

// Rebind 场景加载后重新绑定玩家、HUD、音效和碰撞矩阵，并刷新 HUD
// 旧场景遗留的死亡/无敌任务会先被取消。
func (lc *LifeController) Rebind(b Bindings) {
	lc.ResetTransient()
	lc.reloadPending = false

	lc.players = b.Players
	lc.hud = b.HUD
	lc.sounds = b.Sounds
	lc.collisions = b.Collisions

	if b.HasLevelRespawn {
		lc.state.RespawnPoint = b.LevelRespawn
		lc.state.HasRespawn = true
	}

	lc.updateHUD()
}

// ResetTransient 取消进行中的死亡序列和无敌时间，恢复它们施加的副作用
func (lc *LifeController) ResetTransient() {
	lc.sched.Cancel(deathTaskKey)
	lc.sched.Cancel(invulnerabilityTaskKey)
	lc.state.IsDying = false
}

// ReloadPending 游戏结束后、新场景绑定之前为 true
func (lc *LifeController) ReloadPending() bool {
	return lc.reloadPending
}

// AddScore 增加分数，更新最高分，越过阈值时奖励生命（一次可越过多个阈值）
func (lc *LifeController) AddScore(amount int) {
	if lc.reloadPending {
		return
	}
	lc.state.TotalScore += amount
	if lc.state.TotalScore > lc.state.HighScore {
		lc.state.HighScore = lc.state.TotalScore
	}

	for lc.state.TotalScore >= lc.state.NextLifeAt {
		lc.grantThresholdLife()
	}
	lc.updateHUD()
}

// CountApple 增加苹果数，和分数共用同一个奖励阈值
func (lc *LifeController) CountApple(amount int) {
	if lc.reloadPending {
		return
	}
	lc.state.AppleCount += amount

	for lc.state.AppleCount >= lc.state.NextLifeAt {
		lc.grantThresholdLife()
	}
	lc.updateHUD()
}

func (lc *LifeController) grantThresholdLife() {
	lc.GainLife()
	lc.state.NextLifeAt += lc.tuning.LifeStep
	lc.playSound(SoundNewLife)
	log.Printf("[LifeController] Extra life granted (lives=%d, next at %d)", lc.state.LifeCount, lc.state.NextLifeAt)
}

// GainLife 增加一条生命
func (lc *LifeController) GainLife() {
	lc.state.LifeCount++
	lc.updateHUD()
}

// LoseLife 扣除一条生命并直接重生（无击退动画）
// 死亡序列进行中或等待重载时忽略；生命耗尽时重置游戏并请求重载关卡。
func (lc *LifeController) LoseLife() {
	if lc.state.IsDying || lc.reloadPending {
		return
	}
	if lc.decrementLife() {
		return
	}

	lc.playSound(SoundDeath)
	lc.respawnPlayer()
	lc.updateHUD()
}

// LoseLifeFromHit 被伤害源击中：扣除生命，存活时播放完整的死亡序列
// hitOrigin 用于计算击退方向。
func (lc *LifeController) LoseLifeFromHit(hitOrigin types.Vec2) {
	if lc.state.IsDying || lc.reloadPending {
		return
	}
	if lc.decrementLife() {
		return
	}

	lc.updateHUD()
	lc.playSound(SoundDeath)
	lc.startDeathSequence(hitOrigin)
}

// decrementLife 扣除一条生命，生命耗尽时执行游戏结束并返回 true
// 同一个 tick 里其余的伤害落在旧场景上，重载完成前都被忽略，重置后的状态保持不变。
func (lc *LifeController) decrementLife() bool {
	lc.state.LifeCount--
	if lc.state.LifeCount > 0 {
		return false
	}

	log.Printf("[LifeController] Game over (score=%d, high=%d), reloading level", lc.state.TotalScore, lc.state.HighScore)
	lc.ResetTransient()
	if lc.onGameOver != nil {
		lc.onGameOver(lc.state)
	}
	lc.state.TotalScore = 0
	lc.state.LifeCount = lc.tuning.InitialLives
	lc.state.NextLifeAt = lc.tuning.FirstLifeAt
	lc.state.AppleCount = 0

	if lc.onReload != nil {
		lc.reloadPending = true
		lc.onReload()
	}
	return true
}

// SetRespawn 更新重生点（检查点激活时调用）
func (lc *LifeController) SetRespawn(point types.Vec2) {
	lc.state.RespawnPoint = point
	lc.state.HasRespawn = true
}

// RespawnPoint 返回当前重生点
func (lc *LifeController) RespawnPoint() (types.Vec2, bool) {
	return lc.state.RespawnPoint, lc.state.HasRespawn
}

// SetHorizontalLimits 设置水平限制
// min > max 时自动交换；enabled 为 false 时只关闭限制，保留原有边界。
func (lc *LifeController) SetHorizontalLimits(min, max float64, enabled bool) {
	lc.state.Limits.Enabled = enabled
	if !enabled {
		return
	}
	if min > max {
		min, max = max, min
	}
	lc.state.Limits.Min = min
	lc.state.Limits.Max = max
}

// HorizontalLimits 返回当前水平限制
func (lc *LifeController) HorizontalLimits() (min, max float64, enabled bool) {
	l := lc.state.Limits
	return l.Min, l.Max, l.Enabled
}

// KillLineY 低于此高度视为掉出屏幕
func (lc *LifeController) KillLineY() float64 {
	return lc.tuning.CameraBottomLimit - lc.tuning.FallDeathBuffer
}

// Update 每个 tick 检查玩家是否掉出屏幕
func (lc *LifeController) Update(dt float64) {
	if lc.state.IsDying || lc.reloadPending {
		return
	}
	player, ok := lc.findPlayer()
	if !ok {
		return
	}
	if player.Position().Y < lc.KillLineY() {
		log.Printf("[LifeController] Player fell below kill line (y=%.2f)", player.Position().Y)
		lc.LoseLife()
	}
}

// startDeathSequence 死亡序列：击退 → 坠落（有超时）→ 恢复 → 重生 → 无敌
func (lc *LifeController) startDeathSequence(hitOrigin types.Vec2) {
	player, ok := lc.findPlayer()
	if !ok {
		log.Printf("[LifeController] Death sequence skipped: player not found")
		return
	}

	lc.state.IsDying = true

	t := lc.tuning
	originalGravity := player.GravityScale()
	restore := func() {
		player.SetGravityScale(originalGravity)
		if t.DisableCollidersOnDeath {
			player.SetCollidersEnabled(true)
		}
		player.SetInputEnabled(true)
	}

	task := lc.sched.Start(deathTaskKey,
		scheduler.Call(func() {
			player.SetInputEnabled(false)
			player.ResetMotionAnimation()
			if t.DisableCollidersOnDeath {
				player.SetCollidersEnabled(false)
			}
			player.SetVelocity(types.Vec2{})
			player.SetGravityScale(t.DeathGravity)
			dir := types.Sign(player.Position().X - hitOrigin.X)
			player.ApplyImpulse(types.Vec2{X: dir * t.DeathKnockbackX, Y: t.DeathJumpY})
		}),
		scheduler.WaitUntil(func() bool {
			return player.Position().Y < lc.KillLineY()
		}, t.DeathTimeout),
		scheduler.Call(func() {
			restore()
			lc.respawnPlayer()
			lc.state.IsDying = false
		}),
	)
	task.OnCancel(func() {
		restore()
		lc.state.IsDying = false
	})
}

// respawnPlayer 把玩家放回重生点并开始无敌时间
func (lc *LifeController) respawnPlayer() {
	player, ok := lc.findPlayer()
	if !ok {
		return
	}

	if lc.state.HasRespawn {
		player.SetPosition(lc.state.RespawnPoint)
	}
	player.SetVelocity(types.Vec2{})

	lc.startInvulnerability(player)
}

// startInvulnerability 忽略玩家与敌人层的碰撞并闪烁，到期后恢复
func (lc *LifeController) startInvulnerability(player PlayerBody) {
	t := lc.tuning
	if t.InvulnSeconds <= 0 || t.EnemyLayer == "" {
		return
	}
	collisions := lc.collisions
	if collisions == nil || !collisions.HasLayer(t.EnemyLayer) {
		return
	}

	playerLayer := player.Layer()
	finish := func() {
		player.SetVisible(true)
		collisions.IgnoreLayerCollision(playerLayer, t.EnemyLayer, false)
	}

	task := lc.sched.Start(invulnerabilityTaskKey,
		scheduler.Call(func() {
			collisions.IgnoreLayerCollision(playerLayer, t.EnemyLayer, true)
		}),
		scheduler.Every(t.BlinkInterval, scheduler.RepeatCount(t.InvulnSeconds, t.BlinkInterval), func(int) {
			player.SetVisible(!player.Visible())
		}),
		scheduler.Call(finish),
	)
	task.OnCancel(finish)
}

func (lc *LifeController) findPlayer() (PlayerBody, bool) {
	if lc.players == nil {
		return nil, false
	}
	return lc.players.FindPlayer()
}

func (lc *LifeController) playSound(id SoundID) {
	if lc.sounds != nil {
		lc.sounds.PlaySound(id)
	}
}

func (lc *LifeController) updateHUD() {
	if lc.hud != nil {
		lc.hud.Render(FormatHUD(lc.state))
	}
}
