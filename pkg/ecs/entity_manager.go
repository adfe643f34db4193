// Package ecs 提供最小化的实体-组件存储
//
// 组件按其动态类型索引，每个实体同一类型最多持有一个组件实例。
// 系统通过查询组件组合来遍历实体，彼此之间不直接引用。
package ecs

import (
	"reflect"
	"slices"
)

// EntityID 是实体的唯一标识符，0 保留为无效ID
type EntityID uint64

type componentSet map[reflect.Type]any

// EntityManager 管理所有实体和组件
//
// 删除是延迟的：DestroyEntity 只做标记，实体在 RemoveMarkedEntities
// 之前仍可查询，这样一帧内的系统看到的是同一批实体。
type EntityManager struct {
	lastID   EntityID
	entities map[EntityID]componentSet

	// 标记顺序即清理顺序
	doomed    []EntityID
	doomedSet map[EntityID]struct{}
}

// NewEntityManager 创建一个空的实体管理器
func NewEntityManager() *EntityManager {
	return &EntityManager{
		entities:  make(map[EntityID]componentSet),
		doomedSet: make(map[EntityID]struct{}),
	}
}

// CreateEntity 分配一个新实体，ID 从 1 开始递增且不复用
func (em *EntityManager) CreateEntity() EntityID {
	em.lastID++
	em.entities[em.lastID] = make(componentSet)
	return em.lastID
}

// IsAlive 判断实体是否存在（已标记删除但尚未清理的实体仍视为存在）
func (em *EntityManager) IsAlive(id EntityID) bool {
	_, ok := em.entities[id]
	return ok
}

func (em *EntityManager) EntityCount() int {
	return len(em.entities)
}

// DestroyEntity 标记实体待删除，重复标记无效
func (em *EntityManager) DestroyEntity(id EntityID) {
	if _, marked := em.doomedSet[id]; marked {
		return
	}
	em.doomedSet[id] = struct{}{}
	em.doomed = append(em.doomed, id)
}

func (em *EntityManager) IsMarkedForDestroy(id EntityID) bool {
	_, marked := em.doomedSet[id]
	return marked
}

// RemoveMarkedEntities 清理所有标记删除的实体，通常在每帧末尾调用
func (em *EntityManager) RemoveMarkedEntities() {
	for _, id := range em.doomed {
		delete(em.entities, id)
		delete(em.doomedSet, id)
	}
	em.doomed = em.doomed[:0]
}

// AddComponent 以组件的动态类型为键挂到实体上，同类型组件会被替换
func (em *EntityManager) AddComponent(id EntityID, component any) {
	if set, ok := em.entities[id]; ok {
		set[reflect.TypeOf(component)] = component
	}
}

func (em *EntityManager) RemoveComponent(id EntityID, componentType reflect.Type) {
	if set, ok := em.entities[id]; ok {
		delete(set, componentType)
	}
}

// GetComponent 按类型取组件，调用方需要自行断言；优先使用泛型版本
func (em *EntityManager) GetComponent(id EntityID, componentType reflect.Type) (any, bool) {
	comp, ok := em.entities[id][componentType]
	return comp, ok
}

func (em *EntityManager) HasComponent(id EntityID, componentType reflect.Type) bool {
	_, ok := em.entities[id][componentType]
	return ok
}

// GetEntitiesWith 返回同时拥有所有给定组件类型的实体
// 结果按 ID 升序，保证每帧遍历顺序稳定（模拟可复现依赖于此）。
func (em *EntityManager) GetEntitiesWith(componentTypes ...reflect.Type) []EntityID {
	var result []EntityID
	for id, set := range em.entities {
		if hasAll(set, componentTypes) {
			result = append(result, id)
		}
	}
	slices.Sort(result)
	return result
}

func hasAll(set componentSet, types []reflect.Type) bool {
	for _, t := range types {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	return true
}
