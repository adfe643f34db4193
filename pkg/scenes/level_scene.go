package scenes

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/google/uuid"

	"github.com/gonewx/platformer/pkg/components"
	"github.com/gonewx/platformer/pkg/config"
	"github.com/gonewx/platformer/pkg/ecs"
	"github.com/gonewx/platformer/pkg/entities"
	"github.com/gonewx/platformer/pkg/game"
	"github.com/gonewx/platformer/pkg/systems"
	"github.com/gonewx/platformer/pkg/types"
)

// levelTaskPrefix 场景启动的调度任务都以此为前缀，卸载时一次性取消
const levelTaskPrefix = "level:"

// LevelScene 一个关卡的 ECS 世界
//
// 每次加载（包括游戏结束后的重载）都会新建一个 LevelScene；
// 跨重载存活的对象（调度器、生命控制器、音乐、输入）由 Session 持有。
//
// 每个 tick 的顺序：
//  1. 玩家控制（输入已由 Session 轮询）
//  2. 物理积分 + 接触检测
//  3. 接触事件分发（陷阱、检查点、收集物、敌人）
//  4. 敌人行为
//  5. 生命周期
//  6. 镜头跟随 + 水平限制
//  7. 掉出屏幕检查
//  8. 清理已标记删除的实体
type LevelScene struct {
	session *Session
	level   *config.LevelConfig
	runID   string

	em       *ecs.EntityManager
	playerID ecs.EntityID

	playerSystem      *systems.PlayerSystem
	physicsSystem     *systems.PhysicsSystem
	trapSystem        *systems.TrapSystem
	checkpointSystem  *systems.CheckpointSystem
	collectibleSystem *systems.CollectibleSystem
	enemySystem       *systems.EnemySystem
	lifetimeSystem    *systems.LifetimeSystem
	cameraSystem      *systems.CameraSystem

	elapsed  float64
	unloaded bool
}

var _ game.Unloadable = (*LevelScene)(nil)

// NewLevelScene 按关卡配置构建世界并重新绑定生命控制器
func NewLevelScene(session *Session, level *config.LevelConfig) *LevelScene {
	em := ecs.NewEntityManager()
	sched := session.sched
	lc := session.life
	sounds := session.audio

	ls := &LevelScene{
		session: session,
		level:   level,
		runID:   uuid.NewString(),
		em:      em,
	}

	ls.playerID = entities.BuildLevel(em, level)

	ls.physicsSystem = systems.NewPhysicsSystem(em, systems.DefaultLayerMatrix())
	ls.playerSystem = systems.NewPlayerSystem(em, session.input, sounds)

	ls.trapSystem = systems.NewTrapSystem(em, sched, systems.NewTrapGroupRegistry(), lc, sounds)
	ls.trapSystem.SetOverlapper(ls.physicsSystem)
	for _, id := range ls.trapSystem.Traps() {
		ls.trapSystem.Enable(id)
		ls.trapSystem.Start(id)
	}

	ls.checkpointSystem = systems.NewCheckpointSystem(em, lc, sounds)
	ls.collectibleSystem = systems.NewCollectibleSystem(em, lc, sounds)

	// 每次加载使用不同的种子，同一 Session 内仍可复现
	rng := rand.New(rand.NewSource(session.seed + int64(session.scenes.ReloadCount())))
	ls.enemySystem = systems.NewEnemySystem(em, sched, ls.physicsSystem, lc, sounds, rng)

	ls.cameraSystem = systems.NewCameraSystem(em, lc, session.input)
	applyCameraConfig(ls.cameraSystem.Camera(), level.Camera)
	ls.enemySystem.SetCamera(ls.cameraSystem)

	ls.lifetimeSystem = systems.NewLifetimeSystem(em)
	ls.lifetimeSystem.SetExpireHandler(ls.enemySystem.OnDestroyed)

	lc.SetHorizontalLimits(level.Limits.Min, level.Limits.Max, level.Limits.Enabled)
	lc.Rebind(game.Bindings{
		Players:         ls.playerSystem,
		HUD:             session.hud,
		Sounds:          sounds,
		Collisions:      ls.physicsSystem.Matrix(),
		LevelRespawn:    level.Player.Spawn,
		HasLevelRespawn: true,
	})

	ls.cameraSystem.Snap()

	log.Printf("[LevelScene] Loaded level %s (%s), run %s: %d entities, %d traps",
		level.ID, level.Name, ls.runID, em.EntityCount(), len(ls.trapSystem.Traps()))
	return ls
}

func applyCameraConfig(cam *components.CameraComponent, cfg config.CameraConfig) {
	if cam == nil {
		return
	}
	cam.HalfHeight = cfg.HalfHeight
	cam.HalfWidth = cfg.HalfHeight * cfg.Aspect
	cam.LeftLimit = cfg.LeftLimit
	cam.BottomLimit = cfg.BottomLimit
	cam.LookOffsetY = cfg.LookOffsetY
	cam.LookLerp = cfg.LookLerp
	cam.ConfineMinX = cfg.ConfineMinX
	cam.ConfineMaxX = cfg.ConfineMaxX
	cam.ConfinePadding = cfg.Padding
}

// RunID 本次加载的唯一标识
func (ls *LevelScene) RunID() string {
	return ls.runID
}

// Level 返回关卡配置
func (ls *LevelScene) Level() *config.LevelConfig {
	return ls.level
}

// EntityManager 返回场景的实体管理器（表现层用于绘制）
func (ls *LevelScene) EntityManager() *ecs.EntityManager {
	return ls.em
}

// Camera 返回镜头组件
func (ls *LevelScene) Camera() *components.CameraComponent {
	return ls.cameraSystem.Camera()
}

// PlayerID 返回玩家实体
func (ls *LevelScene) PlayerID() ecs.EntityID {
	return ls.playerID
}

// Traps 返回陷阱系统（调试和测试用）
func (ls *LevelScene) Traps() *systems.TrapSystem {
	return ls.trapSystem
}

// Checkpoints 返回检查点系统
func (ls *LevelScene) Checkpoints() *systems.CheckpointSystem {
	return ls.checkpointSystem
}

// Physics 返回物理系统
func (ls *LevelScene) Physics() *systems.PhysicsSystem {
	return ls.physicsSystem
}

// Enemies 返回敌人系统
func (ls *LevelScene) Enemies() *systems.EnemySystem {
	return ls.enemySystem
}

// Elapsed 本次加载后经过的时间
func (ls *LevelScene) Elapsed() float64 {
	return ls.elapsed
}

// Update 推进一个 tick
func (ls *LevelScene) Update(dt float64) {
	if ls.unloaded {
		return
	}
	ls.elapsed += dt

	ls.playerSystem.Update(dt)
	ls.physicsSystem.Update(dt)
	ls.routeContacts()
	ls.enemySystem.Update(dt)
	ls.lifetimeSystem.Update(dt)
	ls.cameraSystem.Update(dt)
	ls.session.life.Update(dt)

	ls.em.RemoveMarkedEntities()
}

// routeContacts 按实体上的组件把接触事件分发给对应系统
func (ls *LevelScene) routeContacts() {
	for _, c := range ls.physicsSystem.Contacts() {
		switch {
		case ecs.HasComponent[*components.TrapComponent](ls.em, c.Other):
			if c.Trigger {
				ls.trapSystem.OnPlayerEnter(c.Other)
			} else {
				ls.trapSystem.OnPlayerCollide(c.Other)
			}
		case ecs.HasComponent[*components.CheckpointComponent](ls.em, c.Other):
			ls.checkpointSystem.OnPlayerEnter(c.Other)
		case ecs.HasComponent[*components.CollectibleComponent](ls.em, c.Other):
			ls.collectibleSystem.OnPlayerEnter(c.Other)
		case ecs.HasComponent[*components.EnemyComponent](ls.em, c.Other):
			ls.enemySystem.OnPlayerContact(c.Other, systems.NewPlayerBody(ls.em, c.Player))
		default:
			log.Printf("[LevelScene] Unhandled contact with entity %d (layer %s)", c.Other, c.Layer)
		}
	}
}

// Unload 取消本场景启动的所有调度任务，停止陷阱
func (ls *LevelScene) Unload() {
	if ls.unloaded {
		return
	}
	ls.unloaded = true

	for _, id := range ls.trapSystem.Traps() {
		ls.trapSystem.Disable(id)
	}
	n := ls.session.sched.CancelPrefix(levelTaskPrefix)
	log.Printf("[LevelScene] Unloaded level %s (run %s), cancelled %d tasks", ls.level.ID, ls.runID, n)
}

// Teleport 把玩家移动到指定位置（调试用）
func (ls *LevelScene) Teleport(p types.Vec2) error {
	body, ok := ls.playerSystem.FindPlayer()
	if !ok {
		return fmt.Errorf("level %s has no player", ls.level.ID)
	}
	body.SetPosition(p)
	body.SetVelocity(types.Vec2{})
	return nil
}
