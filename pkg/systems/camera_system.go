package systems

import (
	"github.com/gonewx/platformer/pkg/components"
	"github.com/gonewx/platformer/pkg/ecs"
	"github.com/gonewx/platformer/pkg/types"
)

const (
	// 镜头默认参数（正交镜头 size 5，16:9）
	DefaultCameraHalfHeight = 5.0
	DefaultCameraHalfWidth  = 5.0 * 16 / 9

	DefaultCameraLeftLimit   = -7.194367
	DefaultCameraBottomLimit = -2.48
	DefaultLookOffsetY       = 2.0
	DefaultLookLerp          = 6.0

	// 控制器没有启用水平限制时的后备边界
	DefaultConfineMinX = -5.451
	DefaultConfineMaxX = 200.0

	// 竖直输入超过该值才开始上下看
	lookInputThreshold = 0.1
)

// LimitsSource 提供水平限制（由 LifeController 实现）
type LimitsSource interface {
	HorizontalLimits() (min, max float64, enabled bool)
}

// ConfineX 把 x 限制在 [lo, hi] 内，lo > hi 时先交换
func ConfineX(x, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	return types.Clamp(x, lo, hi)
}

// ResolveConfineBounds 计算本帧使用的水平边界
// source 启用了水平限制时使用 [min+padding.X, max+padding.Y]，否则使用后备边界。
func ResolveConfineBounds(fallbackMin, fallbackMax float64, padding types.Vec2, source LimitsSource) (float64, float64) {
	lo, hi := fallbackMin, fallbackMax
	if source != nil {
		if minX, maxX, enabled := source.HorizontalLimits(); enabled {
			lo = minX + padding.X
			hi = maxX + padding.Y
		}
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi
}

// CameraSystem 跟随玩家的镜头
//
// 每个 tick 的顺序：
//  1. 玩家着地时根据竖直输入计算上下看偏移并平滑过渡
//  2. 以玩家位置（加偏移）作为目标
//  3. 镜头左缘不超过 LeftLimit，下缘不低于 BottomLimit
//  4. 最后应用水平限制（ConfineX）
type CameraSystem struct {
	entityManager *ecs.EntityManager
	limits        LimitsSource
	input         InputReader
	cameraEntity  ecs.EntityID
}

// NewCameraSystem 创建镜头系统，同时创建镜头实体
// limits、input 可为 nil
func NewCameraSystem(em *ecs.EntityManager, limits LimitsSource, input InputReader) *CameraSystem {
	cs := &CameraSystem{
		entityManager: em,
		limits:        limits,
		input:         input,
	}

	cs.cameraEntity = em.CreateEntity()
	ecs.AddComponent(em, cs.cameraEntity, &components.CameraComponent{
		HalfWidth:   DefaultCameraHalfWidth,
		HalfHeight:  DefaultCameraHalfHeight,
		LeftLimit:   DefaultCameraLeftLimit,
		BottomLimit: DefaultCameraBottomLimit,
		LookOffsetY: DefaultLookOffsetY,
		LookLerp:    DefaultLookLerp,
		ConfineMinX: DefaultConfineMinX,
		ConfineMaxX: DefaultConfineMaxX,
	})

	return cs
}

// CameraEntity 返回镜头实体
func (cs *CameraSystem) CameraEntity() ecs.EntityID {
	return cs.cameraEntity
}

// Camera 返回镜头组件
func (cs *CameraSystem) Camera() *components.CameraComponent {
	cam, _ := ecs.GetComponent[*components.CameraComponent](cs.entityManager, cs.cameraEntity)
	return cam
}

// Bottom 返回镜头下缘的世界坐标
func (cs *CameraSystem) Bottom() float64 {
	cam := cs.Camera()
	if cam == nil {
		return DefaultCameraBottomLimit
	}
	return cam.Position.Y - cam.HalfHeight
}

// Snap 立即把镜头移到玩家位置（关卡开始时调用）
func (cs *CameraSystem) Snap() {
	cs.follow(0, true)
}

// Update 更新镜头位置
func (cs *CameraSystem) Update(dt float64) {
	cs.follow(dt, false)
}

func (cs *CameraSystem) follow(dt float64, snap bool) {
	cam := cs.Camera()
	if cam == nil {
		return
	}

	playerPos, grounded, ok := cs.findPlayer()
	if !ok {
		return
	}

	desiredLook := 0.0
	if grounded && cs.input != nil {
		v := cs.input.State().Vertical
		if v > lookInputThreshold {
			desiredLook = cam.LookOffsetY
		} else if v < -lookInputThreshold {
			desiredLook = -cam.LookOffsetY
		}
	}
	if snap {
		cam.CurrentLookY = desiredLook
	} else {
		t := types.Clamp01(dt * cam.LookLerp)
		cam.CurrentLookY += (desiredLook - cam.CurrentLookY) * t
	}

	target := types.Vec2{X: playerPos.X, Y: playerPos.Y + cam.CurrentLookY}
	if minX := cam.LeftLimit + cam.HalfWidth; target.X < minX {
		target.X = minX
	}
	if minY := cam.BottomLimit + cam.HalfHeight; target.Y < minY {
		target.Y = minY
	}

	lo, hi := ResolveConfineBounds(cam.ConfineMinX, cam.ConfineMaxX, cam.ConfinePadding, cs.limits)
	target.X = ConfineX(target.X, lo, hi)

	cam.Position = target
}

func (cs *CameraSystem) findPlayer() (types.Vec2, bool, bool) {
	for _, id := range ecs.GetEntitiesWith2[*components.PlayerComponent, *components.TransformComponent](cs.entityManager) {
		transform, _ := ecs.GetComponent[*components.TransformComponent](cs.entityManager, id)
		grounded := false
		if rb, ok := ecs.GetComponent[*components.RigidbodyComponent](cs.entityManager, id); ok {
			grounded = rb.Grounded
		}
		return transform.Position, grounded, true
	}
	return types.Vec2{}, false, false
}
