package scenes

import (
	"sort"

	"github.com/gonewx/platformer/pkg/components"
	"github.com/gonewx/platformer/pkg/ecs"
	"github.com/gonewx/platformer/pkg/game"
	"github.com/gonewx/platformer/pkg/types"
)

// Snapshot 一个 tick 结束时的只读状态
// 由 Session 在模拟 goroutine 上生成，可以安全地交给其他 goroutine（调试服务器）读取。
type Snapshot struct {
	RunID   string  `json:"runId"`
	LevelID string  `json:"levelId"`
	Time    float64 `json:"time"`
	Tick    uint64  `json:"tick"`
	Reloads int     `json:"reloads"`
	Scene   string  `json:"scene"` // "menu" 或 "level"，两者都没有时为空

	Menu *MenuSnapshot `json:"menu,omitempty"`

	State HUDState `json:"state"`
	Phase string   `json:"phase"`

	Player     PlayerSnapshot `json:"player"`
	Camera     types.Vec2     `json:"camera"`
	Checkpoint string         `json:"checkpoint,omitempty"`
	Traps      []TrapSnapshot `json:"traps"`

	EnemiesAlive int `json:"enemiesAlive"`
	Stomps       int `json:"stomps"`
	ApplesLeft   int `json:"applesLeft"`

	Music string `json:"music,omitempty"`
}

// HUDState 分数和生命
type HUDState struct {
	Score      int        `json:"score"`
	HighScore  int        `json:"highScore"`
	Lives      int        `json:"lives"`
	Apples     int        `json:"apples"`
	NextLifeAt int        `json:"nextLifeAt"`
	Dying      bool       `json:"dying"`
	Respawn    types.Vec2 `json:"respawn"`
}

// PlayerSnapshot 玩家状态
type PlayerSnapshot struct {
	Found    bool       `json:"found"`
	Position types.Vec2 `json:"position"`
	Velocity types.Vec2 `json:"velocity"`
	Grounded bool       `json:"grounded"`
	Visible  bool       `json:"visible"`
}

// MenuSnapshot 标题菜单状态
type MenuSnapshot struct {
	Phase    string   `json:"phase"`
	Options  []string `json:"options"`
	Selected int      `json:"selected"`
	Fade     float64  `json:"fade"`
	Curtain  float64  `json:"curtain"`
}

// TrapSnapshot 陷阱状态
type TrapSnapshot struct {
	ID       ecs.EntityID `json:"id"`
	Name     string       `json:"name"`
	Group    string       `json:"group,omitempty"`
	State    string       `json:"state"`
	Active   bool         `json:"active"`
	Progress float64      `json:"progress"`
}

func hudState(s game.GameState) HUDState {
	return HUDState{
		Score:      s.TotalScore,
		HighScore:  s.HighScore,
		Lives:      s.LifeCount,
		Apples:     s.AppleCount,
		NextLifeAt: s.NextLifeAt,
		Dying:      s.IsDying,
		Respawn:    s.RespawnPoint,
	}
}

// snapshot 采集场景内的实体状态
func (ls *LevelScene) snapshot(snap *Snapshot) {
	snap.Scene = "level"
	snap.LevelID = ls.level.ID
	snap.RunID = ls.runID

	if id, ok := ls.playerSystem.PlayerID(); ok {
		transform, _ := ecs.GetComponent[*components.TransformComponent](ls.em, id)
		snap.Player.Found = true
		snap.Player.Position = transform.Position
		if rb, ok := ecs.GetComponent[*components.RigidbodyComponent](ls.em, id); ok {
			snap.Player.Velocity = rb.Velocity
			snap.Player.Grounded = rb.Grounded
		}
		if sprite, ok := ecs.GetComponent[*components.SpriteComponent](ls.em, id); ok {
			snap.Player.Visible = sprite.Visible
		}
	}

	if cam := ls.cameraSystem.Camera(); cam != nil {
		snap.Camera = cam.Position
	}

	if id, ok := ls.checkpointSystem.Current(); ok {
		if cp, ok := ecs.GetComponent[*components.CheckpointComponent](ls.em, id); ok {
			snap.Checkpoint = cp.Name
		}
	}

	traps := ls.trapSystem.Traps()
	sort.Slice(traps, func(i, j int) bool { return traps[i] < traps[j] })
	snap.Traps = make([]TrapSnapshot, 0, len(traps))
	for _, id := range traps {
		trap, ok := ecs.GetComponent[*components.TrapComponent](ls.em, id)
		if !ok {
			continue
		}
		snap.Traps = append(snap.Traps, TrapSnapshot{
			ID:       id,
			Name:     trap.Name,
			Group:    trap.GroupID,
			State:    trap.State.String(),
			Active:   trap.Active,
			Progress: trap.MoveProgress,
		})
	}

	for _, id := range ecs.GetEntitiesWith1[*components.EnemyComponent](ls.em) {
		enemy, _ := ecs.GetComponent[*components.EnemyComponent](ls.em, id)
		if !enemy.Dead {
			snap.EnemiesAlive++
		}
	}
	snap.Stomps = ls.enemySystem.StompCount()

	for _, id := range ecs.GetEntitiesWith1[*components.CollectibleComponent](ls.em) {
		item, _ := ecs.GetComponent[*components.CollectibleComponent](ls.em, id)
		if !item.Collected {
			snap.ApplesLeft++
		}
	}
}
