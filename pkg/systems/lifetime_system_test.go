package systems

import (
	"testing"

	"github.com/gonewx/platformer/pkg/components"
	"github.com/gonewx/platformer/pkg/ecs"
)

func TestLifetimeUpdate(t *testing.T) {
	tests := []struct {
		name        string
		maxLifetime float64
		steps       []float64
		wantAge     float64
		wantExpired bool
	}{
		{"未到期", 10, []float64{5}, 5, false},
		{"一步超过上限", 10, []float64{12}, 12, true},
		{"多步累积", 10, []float64{3, 3, 3}, 9, false},
		{"多步累积后到期", 10, []float64{3, 3, 3, 2}, 11, true},
		{"正好到期", 0.25, []float64{0.25}, 0.25, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			em := ecs.NewEntityManager()
			system := NewLifetimeSystem(em)

			id := em.CreateEntity()
			ecs.AddComponent(em, id, &components.LifetimeComponent{MaxLifetime: tt.maxLifetime})

			for _, dt := range tt.steps {
				system.Update(dt)
			}

			lifetime, _ := ecs.GetComponent[*components.LifetimeComponent](em, id)
			if lifetime.CurrentLifetime != tt.wantAge {
				t.Errorf("CurrentLifetime = %v, 期望 %v", lifetime.CurrentLifetime, tt.wantAge)
			}
			if lifetime.IsExpired != tt.wantExpired {
				t.Errorf("IsExpired = %v, 期望 %v", lifetime.IsExpired, tt.wantExpired)
			}
			if em.IsMarkedForDestroy(id) != tt.wantExpired {
				t.Errorf("IsMarkedForDestroy = %v, 期望 %v", em.IsMarkedForDestroy(id), tt.wantExpired)
			}
		})
	}
}

func TestLifetimeRemovesOnlyExpired(t *testing.T) {
	em := ecs.NewEntityManager()
	system := NewLifetimeSystem(em)

	apple := em.CreateEntity()
	ecs.AddComponent(em, apple, &components.LifetimeComponent{MaxLifetime: 0.25})
	enemy := em.CreateEntity()
	ecs.AddComponent(em, enemy, &components.LifetimeComponent{MaxLifetime: 5})

	system.Update(1)
	em.RemoveMarkedEntities()

	if em.IsAlive(apple) {
		t.Error("到期的苹果应被删除")
	}
	if !em.IsAlive(enemy) || !ecs.HasComponent[*components.LifetimeComponent](em, enemy) {
		t.Error("未到期的敌人应保留")
	}
}

func TestLifetimeExpireHandlerCalledOnce(t *testing.T) {
	em := ecs.NewEntityManager()
	system := NewLifetimeSystem(em)

	var expired []ecs.EntityID
	system.SetExpireHandler(func(id ecs.EntityID) {
		expired = append(expired, id)
	})

	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.LifetimeComponent{MaxLifetime: 0.25})

	system.Update(0.1)
	if len(expired) != 0 {
		t.Fatal("未到期时不应调用回调")
	}

	system.Update(0.2)
	system.Update(0.2) // 清理前再更新一次
	if len(expired) != 1 || expired[0] != id {
		t.Errorf("到期回调应只调用一次, got %v", expired)
	}
	if system.ExpiredCount() != 1 {
		t.Errorf("ExpiredCount() = %d, 期望 1", system.ExpiredCount())
	}
}
