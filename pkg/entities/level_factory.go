package entities

import (
	"github.com/gonewx/platformer/pkg/components"
	"github.com/gonewx/platformer/pkg/config"
	"github.com/gonewx/platformer/pkg/ecs"
	"github.com/gonewx/platformer/pkg/types"
	"github.com/gonewx/platformer/pkg/utils"
)

// 敌人的固定手感参数
const (
	walkerStompYOffset = 0.1
	flyerStompYOffset  = 0.05
	stompBounce        = 8.0
	hitCooldown        = 0.35
	hitKnockbackX      = 6.0
	enemyDeathJumpY    = 5.5
	enemyDeathKnockX   = 1.5
	enemyDeathGravity  = 4.5
	enemyDeathTimeout  = 4.0
	offscreenMargin    = 1.0
)

// NewPlayerEntity 创建玩家实体
// 参数:
//   - manager: EntityManager 实例
//   - cfg: 关卡中的玩家配置（已应用默认值）
//
// 返回: 创建的实体ID
func NewPlayerEntity(manager *ecs.EntityManager, cfg config.PlayerConfig) ecs.EntityID {
	id := manager.CreateEntity()

	ecs.AddComponent(manager, id, &components.TransformComponent{Position: cfg.Spawn})
	ecs.AddComponent(manager, id, &components.RigidbodyComponent{
		GravityScale: cfg.GravityScale,
		Mass:         1,
	})
	ecs.AddComponent(manager, id, &components.CollisionComponent{
		Width:   cfg.Size.X,
		Height:  cfg.Size.Y,
		Layer:   components.LayerPlayer,
		Enabled: true,
	})
	ecs.AddComponent(manager, id, &components.PlayerComponent{
		Speed:        cfg.Speed,
		JumpForce:    cfg.JumpForce,
		MinX:         cfg.MinX,
		InputEnabled: true,
	})
	ecs.AddComponent(manager, id, &components.SpriteComponent{
		Kind:    components.SpritePlayer,
		Visible: true,
		Width:   cfg.Size.X,
		Height:  cfg.Size.Y,
	})
	ecs.AddComponent(manager, id, components.NewAnimatorComponent())

	return id
}

// NewGroundEntity 创建一块静态地面（"Piso" 层）
func NewGroundEntity(manager *ecs.EntityManager, cfg config.GroundConfig) ecs.EntityID {
	id := manager.CreateEntity()
	ecs.AddComponent(manager, id, &components.TransformComponent{Position: cfg.Position})
	ecs.AddComponent(manager, id, &components.CollisionComponent{
		Width:   cfg.Size.X,
		Height:  cfg.Size.Y,
		Layer:   components.LayerGround,
		Enabled: true,
	})
	return id
}

// NewTrapEntity 创建尖刺陷阱
// 陷阱的初始状态由 TrapSystem.Start 设置，这里只写入参数
func NewTrapEntity(manager *ecs.EntityManager, cfg config.TrapConfig) ecs.EntityID {
	id := manager.CreateEntity()

	easing, _ := utils.EasingByName(cfg.Easing)
	displacement := types.V(0, config.DefaultTrapDisplaceY)
	if cfg.Displacement != nil {
		displacement = *cfg.Displacement
	}

	ecs.AddComponent(manager, id, &components.TransformComponent{Position: cfg.Position})
	ecs.AddComponent(manager, id, &components.CollisionComponent{
		Width:     cfg.Size.X,
		Height:    cfg.Size.Y,
		Layer:     components.LayerHazard,
		IsTrigger: !cfg.Solid,
		Enabled:   true,
	})
	ecs.AddComponent(manager, id, &components.TrapComponent{
		Name:           cfg.Name,
		GroupID:        cfg.Group,
		Timed:          !cfg.AlwaysOn,
		StartHidden:    !cfg.StartVisible,
		Delay:          derefOr(cfg.Delay, config.DefaultTrapDelay),
		ActiveDuration: derefOr(cfg.Active, config.DefaultTrapActive),
		Cooldown:       derefOr(cfg.Cooldown, config.DefaultTrapCooldown),
		MoveDuration:   derefOr(cfg.Move, config.DefaultTrapMove),
		Displacement:   displacement,
		Easing:         easing,
	})
	ecs.AddComponent(manager, id, &components.SpriteComponent{
		Kind:    components.SpriteSpike,
		Visible: true,
		Width:   cfg.Size.X,
		Height:  cfg.Size.Y,
	})

	return id
}

// NewCheckpointEntity 创建检查点（触发器）
func NewCheckpointEntity(manager *ecs.EntityManager, cfg config.CheckpointConfig) ecs.EntityID {
	id := manager.CreateEntity()

	respawn := cfg.Position
	if cfg.Respawn != nil {
		respawn = *cfg.Respawn
	}

	ecs.AddComponent(manager, id, &components.TransformComponent{Position: cfg.Position})
	ecs.AddComponent(manager, id, &components.CollisionComponent{
		Width:     cfg.Size.X,
		Height:    cfg.Size.Y,
		Layer:     components.LayerCheckpoint,
		IsTrigger: true,
		Enabled:   true,
	})
	ecs.AddComponent(manager, id, &components.CheckpointComponent{
		Name:         cfg.Name,
		RespawnPoint: respawn,
	})
	ecs.AddComponent(manager, id, &components.SpriteComponent{
		Kind:    components.SpriteCheckpoint,
		Visible: true,
		Width:   cfg.Size.X,
		Height:  cfg.Size.Y,
	})
	ecs.AddComponent(manager, id, components.NewAnimatorComponent())

	return id
}

// NewAppleEntity 创建苹果
func NewAppleEntity(manager *ecs.EntityManager, cfg config.AppleConfig) ecs.EntityID {
	id := manager.CreateEntity()

	ecs.AddComponent(manager, id, &components.TransformComponent{Position: cfg.Position})
	ecs.AddComponent(manager, id, &components.CollisionComponent{
		Width:     0.5,
		Height:    0.5,
		Layer:     components.LayerPickup,
		IsTrigger: true,
		Enabled:   true,
	})
	ecs.AddComponent(manager, id, &components.CollectibleComponent{
		ScoreValue:   cfg.Score,
		AppleValue:   cfg.Apples,
		DestroyDelay: cfg.DestroyDelay,
	})
	ecs.AddComponent(manager, id, &components.SpriteComponent{
		Kind:    components.SpriteApple,
		Visible: true,
		Width:   0.5,
		Height:  0.5,
	})
	ecs.AddComponent(manager, id, components.NewAnimatorComponent())

	return id
}

// NewEnemyEntity 创建敌人
// walker 是受重力的动态刚体；flyer 是运动学刚体，只在出生高度上下 verticalDistance/2 的范围内移动。
func NewEnemyEntity(manager *ecs.EntityManager, cfg config.EnemyConfig) ecs.EntityID {
	id := manager.CreateEntity()

	enemy := &components.EnemyComponent{
		Speed:           cfg.Speed,
		Direction:       cfg.Direction,
		StompBounce:     stompBounce,
		StompScore:      cfg.StompScore,
		HitCooldown:     hitCooldown,
		HitKnockbackX:   hitKnockbackX,
		LastHitTime:     -hitCooldown,
		DeathJumpY:      enemyDeathJumpY,
		DeathKnockbackX: enemyDeathKnockX,
		DeathGravity:    enemyDeathGravity,
		DeathTimeout:    enemyDeathTimeout,
		OffscreenMargin: offscreenMargin,
	}
	rb := &components.RigidbodyComponent{GravityScale: 1, Mass: 1}
	sprite := components.SpriteWalker

	if cfg.Kind == config.EnemyKindFlyer {
		enemy.Kind = components.EnemyFlyer
		enemy.StompYOffset = flyerStompYOffset
		enemy.ChangeDirectionTime = cfg.ChangeDirectionTime
		enemy.DirectionTimer = cfg.ChangeDirectionTime
		enemy.MinY = cfg.Position.Y - cfg.VerticalDistance/2
		enemy.MaxY = cfg.Position.Y + cfg.VerticalDistance/2
		rb.Kinematic = true
		rb.GravityScale = 0
		sprite = components.SpriteFlyer
	} else {
		enemy.Kind = components.EnemyWalker
		enemy.StompYOffset = walkerStompYOffset
	}

	ecs.AddComponent(manager, id, &components.TransformComponent{Position: cfg.Position})
	ecs.AddComponent(manager, id, rb)
	ecs.AddComponent(manager, id, &components.CollisionComponent{
		Width:   cfg.Size.X,
		Height:  cfg.Size.Y,
		Layer:   components.LayerEnemy,
		Enabled: true,
	})
	ecs.AddComponent(manager, id, enemy)
	ecs.AddComponent(manager, id, &components.SpriteComponent{
		Kind:    sprite,
		Visible: true,
		Width:   cfg.Size.X,
		Height:  cfg.Size.Y,
	})
	ecs.AddComponent(manager, id, components.NewAnimatorComponent())

	return id
}

// BuildLevel 按关卡配置创建所有实体，返回玩家实体
func BuildLevel(manager *ecs.EntityManager, level *config.LevelConfig) ecs.EntityID {
	for _, g := range level.Ground {
		NewGroundEntity(manager, g)
	}
	for _, t := range level.Traps {
		NewTrapEntity(manager, t)
	}
	for _, cp := range level.Checkpoints {
		NewCheckpointEntity(manager, cp)
	}
	for _, a := range level.Apples {
		NewAppleEntity(manager, a)
	}
	for _, e := range level.Enemies {
		NewEnemyEntity(manager, e)
	}
	return NewPlayerEntity(manager, level.Player)
}

func derefOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
