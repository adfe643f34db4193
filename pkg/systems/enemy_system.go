package systems

import (
	"fmt"
	"log"
	"math"
	"math/rand"

	"github.com/gonewx/platformer/pkg/components"
	"github.com/gonewx/platformer/pkg/ecs"
	"github.com/gonewx/platformer/pkg/game"
	"github.com/gonewx/platformer/pkg/scheduler"
	"github.com/gonewx/platformer/pkg/types"
)

const (
	// 巡逻探测
	groundCheckDistance = 0.25
	wallCheckDistance   = 0.12
	sensorInset         = 0.05

	// 死亡后检查是否掉出屏幕的间隔
	offscreenCheckInterval = 0.15

	// 敌人动画参数
	EnemyAnimWalk = "walk"
	EnemyAnimDead = "dead"
)

// GroundProber 地面/墙壁射线探测（由 PhysicsSystem 实现）
type GroundProber interface {
	ProbeDown(origin types.Vec2, distance float64) bool
	ProbeAhead(origin types.Vec2, dir int, distance float64) bool
}

// CameraBottom 提供镜头下缘（由 CameraSystem 实现）
type CameraBottom interface {
	Bottom() float64
}

// EnemySystem 敌人行为
//
// 地面敌人沿平台巡逻，前方没有地面或有墙时掉头；飞行敌人在高度范围内随机上下移动。
// 玩家从上方落下踩中敌人时敌人死亡、玩家弹起并加分；
// 地面敌人的侧面接触会推开玩家并扣一条命（有防连击冷却）。
// 死亡的敌人受重力坠落，掉出镜头下缘或超时后销毁。
type EnemySystem struct {
	em     *ecs.EntityManager
	sched  *scheduler.Scheduler
	prober GroundProber
	camera CameraBottom
	lc     *game.LifeController
	sounds game.SoundPlayer
	rng    *rand.Rand

	stomps int
}

// NewEnemySystem 创建敌人系统
// rng 为 nil 时使用固定种子，保证模拟可复现
func NewEnemySystem(em *ecs.EntityManager, sched *scheduler.Scheduler, prober GroundProber, lc *game.LifeController, sounds game.SoundPlayer, rng *rand.Rand) *EnemySystem {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &EnemySystem{
		em:     em,
		sched:  sched,
		prober: prober,
		lc:     lc,
		sounds: sounds,
		rng:    rng,
	}
}

// SetCamera 设置用于判断掉出屏幕的镜头
func (es *EnemySystem) SetCamera(c CameraBottom) {
	es.camera = c
}

// StompCount 返回被踩死的敌人数量
func (es *EnemySystem) StompCount() int {
	return es.stomps
}

func offscreenKey(id ecs.EntityID) string {
	return fmt.Sprintf("level:enemy:%d:offscreen", id)
}

// Update 更新所有存活敌人的移动
func (es *EnemySystem) Update(dt float64) {
	for _, id := range ecs.GetEntitiesWith3[*components.EnemyComponent, *components.TransformComponent, *components.RigidbodyComponent](es.em) {
		enemy, _ := ecs.GetComponent[*components.EnemyComponent](es.em, id)
		if enemy.Dead {
			continue
		}
		transform, _ := ecs.GetComponent[*components.TransformComponent](es.em, id)
		rb, _ := ecs.GetComponent[*components.RigidbodyComponent](es.em, id)

		switch enemy.Kind {
		case components.EnemyWalker:
			es.patrol(id, enemy, transform, rb)
		case components.EnemyFlyer:
			es.fly(enemy, transform, dt)
		}

		if sprite, ok := ecs.GetComponent[*components.SpriteComponent](es.em, id); ok {
			sprite.FlipX = enemy.Direction < 0
		}
	}
}

// patrol 地面巡逻：前方没有地面或有墙时掉头
func (es *EnemySystem) patrol(id ecs.EntityID, enemy *components.EnemyComponent, transform *components.TransformComponent, rb *components.RigidbodyComponent) {
	if enemy.Direction == 0 {
		enemy.Direction = -1
	}

	if es.prober != nil {
		halfW, halfH := 0.5, 0.5
		if col, ok := ecs.GetComponent[*components.CollisionComponent](es.em, id); ok {
			halfW, halfH = col.Width/2, col.Height/2
		}
		dir := float64(enemy.Direction)
		pos := transform.Position

		groundOrigin := types.Vec2{X: pos.X + dir*halfW, Y: pos.Y - halfH + sensorInset}
		wallOrigin := types.Vec2{X: pos.X + dir*(halfW-sensorInset), Y: pos.Y}

		hasGroundAhead := es.prober.ProbeDown(groundOrigin, groundCheckDistance)
		hasWallAhead := es.prober.ProbeAhead(wallOrigin, enemy.Direction, wallCheckDistance)
		if rb.Grounded && (!hasGroundAhead || hasWallAhead) {
			enemy.Direction = -enemy.Direction
		}
	}

	rb.Velocity.X = float64(enemy.Direction) * enemy.Speed

	if animator, ok := ecs.GetComponent[*components.AnimatorComponent](es.em, id); ok {
		animator.SetBool(EnemyAnimWalk, math.Abs(rb.Velocity.X) > 0.05)
	}
}

// fly 在 [MinY, MaxY] 内上下移动，计时结束或到达边界时重新选择方向
// 到达边界时总是折返，避免冲出范围。
func (es *EnemySystem) fly(enemy *components.EnemyComponent, transform *components.TransformComponent, dt float64) {
	if enemy.Direction == 0 {
		enemy.Direction = 1
	}
	transform.Position.Y += float64(enemy.Direction) * enemy.Speed * dt
	enemy.DirectionTimer -= dt

	y := transform.Position.Y
	if enemy.DirectionTimer > 0 && y < enemy.MaxY && y > enemy.MinY {
		return
	}

	switch {
	case y >= enemy.MaxY:
		enemy.Direction = -1
	case y <= enemy.MinY:
		enemy.Direction = 1
	default:
		if es.rng.Intn(2) == 0 {
			enemy.Direction = 1
		} else {
			enemy.Direction = -1
		}
	}
	change := enemy.ChangeDirectionTime
	enemy.DirectionTimer = change*0.5 + es.rng.Float64()*change
}

// OnPlayerContact 玩家与敌人接触
func (es *EnemySystem) OnPlayerContact(id ecs.EntityID, player game.PlayerBody) {
	enemy, ok := ecs.GetComponent[*components.EnemyComponent](es.em, id)
	if !ok || enemy.Dead || player == nil {
		return
	}
	transform, ok := ecs.GetComponent[*components.TransformComponent](es.em, id)
	if !ok {
		return
	}

	playerPos := player.Position()
	playerVel := player.Velocity()
	above := playerPos.Y > transform.Position.Y+enemy.StompYOffset
	descending := playerVel.Y <= 0

	if above && descending {
		es.stomp(id, enemy, player)
		return
	}

	if enemy.Kind != components.EnemyWalker {
		return
	}

	now := es.sched.Now()
	if now-enemy.LastHitTime < enemy.HitCooldown {
		return
	}
	enemy.LastHitTime = now

	dir := types.Sign(playerPos.X - transform.Position.X)
	player.SetVelocity(types.Vec2{X: dir * enemy.HitKnockbackX, Y: playerVel.Y})
	log.Printf("[EnemySystem] Player hit by %s %d", enemy.Kind, id)
	if es.lc != nil {
		es.lc.LoseLife()
	}
}

func (es *EnemySystem) stomp(id ecs.EntityID, enemy *components.EnemyComponent, player game.PlayerBody) {
	es.Die(id)
	es.stomps++

	v := player.Velocity()
	player.SetVelocity(types.Vec2{X: v.X, Y: enemy.StompBounce})

	if es.sounds != nil {
		es.sounds.PlaySound(game.SoundStomp)
	}
	if es.lc != nil {
		es.lc.AddScore(enemy.StompScore)
	}
}

// Die 敌人死亡：关闭碰撞，向上弹起并随机向一侧击退，然后受重力坠落
func (es *EnemySystem) Die(id ecs.EntityID) {
	enemy, ok := ecs.GetComponent[*components.EnemyComponent](es.em, id)
	if !ok || enemy.Dead {
		return
	}
	enemy.Dead = true

	if col, ok := ecs.GetComponent[*components.CollisionComponent](es.em, id); ok {
		col.Enabled = false
	}
	if rb, ok := ecs.GetComponent[*components.RigidbodyComponent](es.em, id); ok {
		rb.Kinematic = false
		rb.GravityScale = enemy.DeathGravity
		rb.Velocity = types.Vec2{}
		knock := 1.0
		if es.rng.Float64() < 0.5 {
			knock = -1
		}
		rb.ApplyImpulse(types.Vec2{X: knock * enemy.DeathKnockbackX, Y: enemy.DeathJumpY})
	}
	if animator, ok := ecs.GetComponent[*components.AnimatorComponent](es.em, id); ok {
		animator.SetBool(EnemyAnimWalk, false)
		animator.SetTrigger(EnemyAnimDead)
	}

	if enemy.DeathTimeout > 0 {
		ecs.AddComponent(es.em, id, &components.LifetimeComponent{MaxLifetime: enemy.DeathTimeout})
	}
	es.scheduleOffscreenCheck(id, enemy)
}

// scheduleOffscreenCheck 每隔 0.15 秒检查一次是否已经掉出镜头下缘
func (es *EnemySystem) scheduleOffscreenCheck(id ecs.EntityID, enemy *components.EnemyComponent) {
	es.sched.Start(offscreenKey(id),
		scheduler.Wait(offscreenCheckInterval),
		scheduler.Call(func() {
			if !es.em.IsAlive(id) || es.em.IsMarkedForDestroy(id) {
				return
			}
			if es.isOffscreen(id, enemy) {
				es.em.DestroyEntity(id)
				return
			}
			es.scheduleOffscreenCheck(id, enemy)
		}),
	)
}

func (es *EnemySystem) isOffscreen(id ecs.EntityID, enemy *components.EnemyComponent) bool {
	if es.camera == nil {
		return true
	}
	transform, ok := ecs.GetComponent[*components.TransformComponent](es.em, id)
	if !ok {
		return true
	}
	return transform.Position.Y < es.camera.Bottom()-enemy.OffscreenMargin
}

// OnDestroyed 实体被其他途径（如死亡超时）销毁时停止掉出屏幕检查
func (es *EnemySystem) OnDestroyed(id ecs.EntityID) {
	es.sched.Cancel(offscreenKey(id))
}
