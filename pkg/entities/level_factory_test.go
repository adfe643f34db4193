package entities

import (
	"testing"

	"github.com/gonewx/platformer/pkg/components"
	"github.com/gonewx/platformer/pkg/config"
	"github.com/gonewx/platformer/pkg/ecs"
	"github.com/gonewx/platformer/pkg/types"
)

func loadTestLevel(t *testing.T) *config.LevelConfig {
	t.Helper()
	level, err := config.ParseLevelConfig([]byte(`id: "t-1"
name: "Factory Test"
player:
  spawn: {x: -2, y: 1}
ground:
  - {position: {x: 0, y: -1}, size: {x: 10, y: 1}}
traps:
  - {name: a, group: g, position: {x: 1, y: -0.25}, move: 0, easing: linear}
  - {name: b, position: {x: 3, y: -0.25}, alwaysOn: true, solid: true}
checkpoints:
  - {name: cp, position: {x: 2, y: 0}, respawn: {x: 2, y: 0.5}}
apples:
  - {position: {x: 0, y: 0}}
enemies:
  - {kind: walker, position: {x: 4, y: 0}}
  - {kind: flyer, position: {x: 5, y: 2}, verticalDistance: 2}
`), "inline")
	if err != nil {
		t.Fatalf("ParseLevelConfig() failed: %v", err)
	}
	return level
}

func TestBuildLevel(t *testing.T) {
	em := ecs.NewEntityManager()
	level := loadTestLevel(t)

	playerID := BuildLevel(em, level)

	counts := map[string]int{
		"trap":       len(ecs.GetEntitiesWith1[*components.TrapComponent](em)),
		"checkpoint": len(ecs.GetEntitiesWith1[*components.CheckpointComponent](em)),
		"apple":      len(ecs.GetEntitiesWith1[*components.CollectibleComponent](em)),
		"enemy":      len(ecs.GetEntitiesWith1[*components.EnemyComponent](em)),
		"player":     len(ecs.GetEntitiesWith1[*components.PlayerComponent](em)),
	}
	want := map[string]int{"trap": 2, "checkpoint": 1, "apple": 1, "enemy": 2, "player": 1}
	for k, v := range want {
		if counts[k] != v {
			t.Errorf("%s 数量 = %d, 期望 %d", k, counts[k], v)
		}
	}

	transform, _ := ecs.GetComponent[*components.TransformComponent](em, playerID)
	if transform.Position != types.V(-2, 1) {
		t.Errorf("玩家出生点 = %v", transform.Position)
	}
	player, _ := ecs.GetComponent[*components.PlayerComponent](em, playerID)
	if !player.InputEnabled || player.Speed != config.DefaultPlayerSpeed {
		t.Errorf("玩家参数不正确: %+v", player)
	}
}

func TestNewTrapEntity(t *testing.T) {
	em := ecs.NewEntityManager()
	level := loadTestLevel(t)

	timed := NewTrapEntity(em, level.Traps[0])
	always := NewTrapEntity(em, level.Traps[1])

	trap, _ := ecs.GetComponent[*components.TrapComponent](em, timed)
	if !trap.Timed || !trap.StartHidden || trap.GroupID != "g" {
		t.Errorf("定时陷阱参数不正确: %+v", trap)
	}
	if trap.MoveDuration != 0 || trap.Delay != config.DefaultTrapDelay {
		t.Errorf("MoveDuration=%v Delay=%v", trap.MoveDuration, trap.Delay)
	}
	if trap.Displacement != types.V(0, 1) {
		t.Errorf("Displacement = %v, 期望 (0, 1)", trap.Displacement)
	}
	if trap.Easing == nil || trap.Easing(0.5) != 0.5 {
		t.Error("linear 缓动应原样返回进度")
	}

	col, _ := ecs.GetComponent[*components.CollisionComponent](em, timed)
	if !col.IsTrigger || col.Layer != components.LayerHazard {
		t.Error("陷阱应是 Hazard 层的触发器")
	}

	alwaysTrap, _ := ecs.GetComponent[*components.TrapComponent](em, always)
	if alwaysTrap.Timed {
		t.Error("alwaysOn 陷阱不应是定时陷阱")
	}
	if solid, _ := ecs.GetComponent[*components.CollisionComponent](em, always); solid.IsTrigger {
		t.Error("solid 陷阱不应是触发器")
	}
}

func TestNewEnemyEntity(t *testing.T) {
	em := ecs.NewEntityManager()
	level := loadTestLevel(t)

	walkerID := NewEnemyEntity(em, level.Enemies[0])
	flyerID := NewEnemyEntity(em, level.Enemies[1])

	walker, _ := ecs.GetComponent[*components.EnemyComponent](em, walkerID)
	walkerRB, _ := ecs.GetComponent[*components.RigidbodyComponent](em, walkerID)
	if walker.Kind != components.EnemyWalker || walker.Direction != -1 || walkerRB.Kinematic {
		t.Errorf("walker 参数不正确: %+v", walker)
	}
	if walker.StompScore != 10 || walker.HitCooldown != 0.35 {
		t.Errorf("walker 踩踏/冷却参数不正确: %+v", walker)
	}

	flyer, _ := ecs.GetComponent[*components.EnemyComponent](em, flyerID)
	flyerRB, _ := ecs.GetComponent[*components.RigidbodyComponent](em, flyerID)
	if flyer.Kind != components.EnemyFlyer || !flyerRB.Kinematic {
		t.Error("flyer 应是运动学刚体")
	}
	if flyer.MinY != 1 || flyer.MaxY != 3 {
		t.Errorf("flyer 范围 = [%v, %v], 期望 [1, 3]", flyer.MinY, flyer.MaxY)
	}
}

func TestNewCheckpointEntity(t *testing.T) {
	em := ecs.NewEntityManager()
	level := loadTestLevel(t)

	id := NewCheckpointEntity(em, level.Checkpoints[0])

	cp, _ := ecs.GetComponent[*components.CheckpointComponent](em, id)
	if cp.Checked || cp.RespawnPoint != types.V(2, 0.5) {
		t.Errorf("检查点参数不正确: %+v", cp)
	}
	if !ecs.HasComponent[*components.AnimatorComponent](em, id) {
		t.Error("检查点需要动画组件")
	}
}
