package systems

import (
	"math/rand"
	"testing"

	"github.com/gonewx/platformer/pkg/components"
	"github.com/gonewx/platformer/pkg/ecs"
	"github.com/gonewx/platformer/pkg/game"
	"github.com/gonewx/platformer/pkg/scheduler"
	"github.com/gonewx/platformer/pkg/types"
)

func addCheckpoint(em *ecs.EntityManager, name string, respawn types.Vec2) ecs.EntityID {
	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.CheckpointComponent{Name: name, RespawnPoint: respawn})
	ecs.AddComponent(em, id, components.NewAnimatorComponent())
	return id
}

func newCheckpointRig() (*ecs.EntityManager, *game.LifeController, *soundRecorder, *CheckpointSystem) {
	em := ecs.NewEntityManager()
	lc := game.NewLifeController(scheduler.New(), game.DefaultLifeTuning())
	sounds := &soundRecorder{}
	return em, lc, sounds, NewCheckpointSystem(em, lc, sounds)
}

func TestCheckpointActivate(t *testing.T) {
	em, lc, sounds, cs := newCheckpointRig()
	id := addCheckpoint(em, "cp1", types.V(4, 1))

	cs.OnPlayerEnter(id)

	cp, _ := ecs.GetComponent[*components.CheckpointComponent](em, id)
	animator, _ := ecs.GetComponent[*components.AnimatorComponent](em, id)
	if !cp.Checked || !animator.Bool(components.CheckpointAnimBool) {
		t.Error("激活后应标记为已检查并更新动画参数")
	}
	if triggers := animator.ConsumeTriggers(); len(triggers) != 1 || triggers[0] != components.CheckpointAnimTrigger {
		t.Errorf("应触发一次 %s, got %v", components.CheckpointAnimTrigger, triggers)
	}
	if p, ok := lc.RespawnPoint(); !ok || p != types.V(4, 1) {
		t.Errorf("重生点应更新为检查点位置, got %v %v", p, ok)
	}
	if sounds.count(game.SoundCheckpoint) != 1 {
		t.Error("应播放一次检查点音效")
	}
	if cur, ok := cs.Current(); !ok || cur != id {
		t.Error("Current() 应返回刚激活的检查点")
	}
}

func TestCheckpointActivateIsIdempotent(t *testing.T) {
	em, lc, sounds, cs := newCheckpointRig()
	id := addCheckpoint(em, "cp1", types.V(4, 1))

	cs.Activate(id)
	lc.SetRespawn(types.V(0, 0)) // 之后再次激活不应覆盖
	cs.Activate(id)

	if sounds.count(game.SoundCheckpoint) != 1 {
		t.Errorf("重复激活不应再播放音效, got %d", sounds.count(game.SoundCheckpoint))
	}
	if p, _ := lc.RespawnPoint(); p != types.V(0, 0) {
		t.Errorf("重复激活不应再次设置重生点, got %v", p)
	}
}

func TestCheckpointOnlyOneActive(t *testing.T) {
	em, lc, _, cs := newCheckpointRig()
	var ids []ecs.EntityID
	for i := 0; i < 5; i++ {
		ids = append(ids, addCheckpoint(em, "cp", types.V(float64(i), 0)))
	}

	rng := rand.New(rand.NewSource(42))
	for step := 0; step < 200; step++ {
		id := ids[rng.Intn(len(ids))]
		cs.Activate(id)

		active := 0
		for _, other := range ids {
			cp, _ := ecs.GetComponent[*components.CheckpointComponent](em, other)
			animator, _ := ecs.GetComponent[*components.AnimatorComponent](em, other)
			if cp.Checked {
				active++
			}
			if animator.Bool(components.CheckpointAnimBool) != cp.Checked {
				t.Fatalf("动画参数与状态不一致: checkpoint %d", other)
			}
		}
		if active != 1 {
			t.Fatalf("第 %d 步后激活的检查点数量为 %d", step, active)
		}

		cp, _ := ecs.GetComponent[*components.CheckpointComponent](em, id)
		if p, _ := lc.RespawnPoint(); p != cp.RespawnPoint {
			t.Fatalf("重生点应指向最后激活的检查点")
		}
	}
}

func TestCheckpointMissingComponentIgnored(t *testing.T) {
	em, _, sounds, cs := newCheckpointRig()
	id := em.CreateEntity()

	cs.Activate(id)
	cs.Activate(ecs.EntityID(999))

	if len(sounds.ids) != 0 {
		t.Error("没有检查点组件的实体应被忽略")
	}
	if _, ok := cs.Current(); ok {
		t.Error("不应有当前检查点")
	}
}
