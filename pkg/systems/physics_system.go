package systems

import (
	"math"

	"github.com/gonewx/platformer/pkg/components"
	"github.com/gonewx/platformer/pkg/ecs"
	"github.com/gonewx/platformer/pkg/types"
)

// DefaultGravity 重力加速度（世界单位/秒²，Y 轴向上）
const DefaultGravity = -9.81

// 贴合误差：小于该深度的重叠视为边缘接触
const contactEpsilon = 1e-6

// 射线检测忽略距离过近的命中（紧贴或拐角）
const minProbeHitDistance = 0.02

// Contact 玩家与其他实体之间新产生的接触（进入事件）
type Contact struct {
	Player  ecs.EntityID
	Other   ecs.EntityID
	Layer   string // Other 的碰撞层
	Trigger bool   // Other 是否为触发器
}

type contactPair struct {
	player ecs.EntityID
	other  ecs.EntityID
}

// LayerMatrix 碰撞层表，记录哪些层之间忽略碰撞
// 实现 game.CollisionMatrix
type LayerMatrix struct {
	layers  map[string]bool
	ignored map[[2]string]bool
}

// NewLayerMatrix 创建包含给定层的碰撞层表
func NewLayerMatrix(layers ...string) *LayerMatrix {
	m := &LayerMatrix{
		layers:  make(map[string]bool),
		ignored: make(map[[2]string]bool),
	}
	for _, layer := range layers {
		m.layers[layer] = true
	}
	return m
}

// DefaultLayerMatrix 返回包含所有内置层的碰撞层表
func DefaultLayerMatrix() *LayerMatrix {
	return NewLayerMatrix(
		components.LayerPlayer,
		components.LayerEnemy,
		components.LayerHazard,
		components.LayerCheckpoint,
		components.LayerPickup,
		components.LayerGround,
	)
}

// HasLayer 层是否存在
func (m *LayerMatrix) HasLayer(name string) bool {
	return m.layers[name]
}

// IgnoreLayerCollision 设置两层之间是否忽略碰撞（对称）
func (m *LayerMatrix) IgnoreLayerCollision(a, b string, ignore bool) {
	key := layerKey(a, b)
	if ignore {
		m.ignored[key] = true
	} else {
		delete(m.ignored, key)
	}
}

// Ignored 两层之间当前是否忽略碰撞
func (m *LayerMatrix) Ignored(a, b string) bool {
	return m.ignored[layerKey(a, b)]
}

func layerKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

// PhysicsSystem 简化的 2D 物理
//
// 职责：
//   - 对刚体做重力积分和速度积分
//   - 与地面层（Piso）的实心碰撞盒做轴分离解算，写入 Grounded
//   - 检测玩家与其他碰撞体的接触，只在接触开始时产生 Contact 事件
//   - 提供地面/墙壁射线探测，供敌人巡逻使用
//
// 层表中被忽略的层之间不产生接触；碰撞体禁用后玩家与其的接触记录被清除，
// 重新启用时如果仍然重叠会再次产生进入事件。
type PhysicsSystem struct {
	em       *ecs.EntityManager
	matrix   *LayerMatrix
	gravity  float64
	touching map[contactPair]bool
	contacts []Contact
}

// NewPhysicsSystem 创建物理系统
//
// 参数:
//   - em: 实体管理器
//   - matrix: 碰撞层表，nil 时使用 DefaultLayerMatrix
func NewPhysicsSystem(em *ecs.EntityManager, matrix *LayerMatrix) *PhysicsSystem {
	if matrix == nil {
		matrix = DefaultLayerMatrix()
	}
	return &PhysicsSystem{
		em:       em,
		matrix:   matrix,
		gravity:  DefaultGravity,
		touching: make(map[contactPair]bool),
	}
}

// Matrix 返回碰撞层表
func (ps *PhysicsSystem) Matrix() *LayerMatrix {
	return ps.matrix
}

// SetGravity 设置重力加速度
func (ps *PhysicsSystem) SetGravity(g float64) {
	ps.gravity = g
}

// Gravity 返回重力加速度
func (ps *PhysicsSystem) Gravity() float64 {
	return ps.gravity
}

// Contacts 返回最近一次 Update 产生的接触事件
func (ps *PhysicsSystem) Contacts() []Contact {
	return ps.contacts
}

// Update 积分刚体并检测接触
func (ps *PhysicsSystem) Update(dt float64) {
	if dt < 0 {
		dt = 0
	}
	solids := ps.collectSolids()

	for _, id := range ecs.GetEntitiesWith2[*components.TransformComponent, *components.RigidbodyComponent](ps.em) {
		transform, _ := ecs.GetComponent[*components.TransformComponent](ps.em, id)
		rb, _ := ecs.GetComponent[*components.RigidbodyComponent](ps.em, id)
		ps.integrate(id, transform, rb, solids, dt)
	}

	ps.detectContacts()
}

type solidBox struct {
	id   ecs.EntityID
	rect types.Rect
}

func (ps *PhysicsSystem) collectSolids() []solidBox {
	var solids []solidBox
	for _, id := range ecs.GetEntitiesWith2[*components.TransformComponent, *components.CollisionComponent](ps.em) {
		col, _ := ecs.GetComponent[*components.CollisionComponent](ps.em, id)
		if !col.Enabled || col.IsTrigger || col.Layer != components.LayerGround {
			continue
		}
		transform, _ := ecs.GetComponent[*components.TransformComponent](ps.em, id)
		solids = append(solids, solidBox{id: id, rect: col.Bounds(transform.Position)})
	}
	return solids
}

// integrate 对单个刚体做一步积分
// 运动学刚体只按速度移动；碰撞体禁用的刚体穿过地面。
func (ps *PhysicsSystem) integrate(id ecs.EntityID, transform *components.TransformComponent, rb *components.RigidbodyComponent, solids []solidBox, dt float64) {
	if rb.Kinematic {
		transform.Position = transform.Position.Add(rb.Velocity.Scale(dt))
		rb.Grounded = false
		return
	}

	rb.Velocity.Y += ps.gravity * rb.GravityScale * dt

	col, hasCol := ecs.GetComponent[*components.CollisionComponent](ps.em, id)
	if !hasCol || !col.Enabled || col.IsTrigger {
		transform.Position = transform.Position.Add(rb.Velocity.Scale(dt))
		rb.Grounded = false
		return
	}

	// X 轴
	transform.Position.X += rb.Velocity.X * dt
	for _, solid := range solids {
		box := col.Bounds(transform.Position)
		dx, dy := overlapDepth(box, solid.rect)
		if dx <= contactEpsilon || dy <= contactEpsilon {
			continue
		}
		if box.Center.X < solid.rect.Center.X {
			transform.Position.X -= dx
			if rb.Velocity.X > 0 {
				rb.Velocity.X = 0
			}
		} else {
			transform.Position.X += dx
			if rb.Velocity.X < 0 {
				rb.Velocity.X = 0
			}
		}
	}

	// Y 轴
	grounded := false
	transform.Position.Y += rb.Velocity.Y * dt
	for _, solid := range solids {
		box := col.Bounds(transform.Position)
		dx, dy := overlapDepth(box, solid.rect)
		if dx <= contactEpsilon || dy <= contactEpsilon {
			continue
		}
		if box.Center.Y > solid.rect.Center.Y {
			transform.Position.Y += dy
			if rb.Velocity.Y < 0 {
				rb.Velocity.Y = 0
			}
			grounded = true
		} else {
			transform.Position.Y -= dy
			if rb.Velocity.Y > 0 {
				rb.Velocity.Y = 0
			}
		}
	}
	rb.Grounded = grounded
}

// overlapDepth 返回两个矩形在各轴上的重叠深度（不重叠时为负或 0）
func overlapDepth(a, b types.Rect) (float64, float64) {
	dx := a.Half.X + b.Half.X - math.Abs(a.Center.X-b.Center.X)
	dy := a.Half.Y + b.Half.Y - math.Abs(a.Center.Y-b.Center.Y)
	return dx, dy
}

// detectContacts 比较本帧与上一帧的重叠集合，生成进入事件
func (ps *PhysicsSystem) detectContacts() {
	ps.contacts = ps.contacts[:0]
	current := make(map[contactPair]bool)

	colliders := ecs.GetEntitiesWith2[*components.TransformComponent, *components.CollisionComponent](ps.em)
	for _, playerID := range ecs.GetEntitiesWith3[*components.PlayerComponent, *components.TransformComponent, *components.CollisionComponent](ps.em) {
		playerBox, playerLayer, ok := ps.bounds(playerID)
		if !ok {
			continue
		}

		for _, otherID := range colliders {
			if otherID == playerID || ps.em.IsMarkedForDestroy(otherID) {
				continue
			}
			otherBox, otherLayer, ok := ps.bounds(otherID)
			if !ok || otherLayer == components.LayerGround || otherLayer == components.LayerPlayer {
				continue
			}
			if ps.matrix.Ignored(playerLayer, otherLayer) {
				continue
			}
			if !playerBox.Overlaps(otherBox) {
				continue
			}

			pair := contactPair{player: playerID, other: otherID}
			current[pair] = true
			if !ps.touching[pair] {
				col, _ := ecs.GetComponent[*components.CollisionComponent](ps.em, otherID)
				ps.contacts = append(ps.contacts, Contact{
					Player:  playerID,
					Other:   otherID,
					Layer:   otherLayer,
					Trigger: col.IsTrigger,
				})
			}
		}
	}

	ps.touching = current
}

// bounds 返回启用的碰撞盒
func (ps *PhysicsSystem) bounds(id ecs.EntityID) (types.Rect, string, bool) {
	col, ok := ecs.GetComponent[*components.CollisionComponent](ps.em, id)
	if !ok || !col.Enabled {
		return types.Rect{}, "", false
	}
	transform, ok := ecs.GetComponent[*components.TransformComponent](ps.em, id)
	if !ok {
		return types.Rect{}, "", false
	}
	return col.Bounds(transform.Position), col.Layer, true
}

// OverlapsPlayer 判断实体的碰撞盒当前是否与任一玩家重叠（忽略层表）
func (ps *PhysicsSystem) OverlapsPlayer(id ecs.EntityID) bool {
	box, _, ok := ps.bounds(id)
	if !ok {
		return false
	}
	for _, playerID := range ecs.GetEntitiesWith2[*components.PlayerComponent, *components.CollisionComponent](ps.em) {
		playerBox, _, ok := ps.bounds(playerID)
		if ok && playerBox.Overlaps(box) {
			return true
		}
	}
	return false
}

// ProbeDown 从 origin 向下发射长度为 distance 的射线，判断是否命中地面
func (ps *PhysicsSystem) ProbeDown(origin types.Vec2, distance float64) bool {
	for _, solid := range ps.collectSolids() {
		lo, hi := solid.rect.Min(), solid.rect.Max()
		if origin.X < lo.X || origin.X > hi.X {
			continue
		}
		if origin.Y >= lo.Y && origin.Y-distance <= hi.Y {
			return true
		}
	}
	return false
}

// ProbeAhead 从 origin 沿水平方向 dir（±1）发射长度为 distance 的射线，判断前方是否有墙
// 距离过近的命中被忽略（起点已经贴住或处在拐角时）。
func (ps *PhysicsSystem) ProbeAhead(origin types.Vec2, dir int, distance float64) bool {
	for _, solid := range ps.collectSolids() {
		lo, hi := solid.rect.Min(), solid.rect.Max()
		if origin.Y < lo.Y || origin.Y > hi.Y {
			continue
		}
		var hit float64
		if dir >= 0 {
			hit = lo.X - origin.X
		} else {
			hit = origin.X - hi.X
		}
		if hit > minProbeHitDistance && hit <= distance {
			return true
		}
	}
	return false
}
