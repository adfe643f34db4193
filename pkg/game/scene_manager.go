package game

import (
	"log"
)

// SceneFactory 场景工厂函数类型
// 用于创建指定ID的关卡场景，避免循环依赖
type SceneFactory func(levelID string) Scene

// SceneManager manages the game's high-level state by controlling which scene is active.
// It ensures only one scene's Update method is called at any given time.
//
// 关卡重载是延迟执行的：RequestReload 只做标记，实际重建发生在当前场景 Update 返回之后，
// 这样在系统遍历实体的过程中触发的游戏结束不会把世界拆掉。
type SceneManager struct {
	currentScene   Scene
	currentLevelID string
	sceneFactory   SceneFactory // 场景工厂函数，用于创建新场景
	pendingReload  bool
	reloadCount    int
}

// NewSceneManager creates and returns a new SceneManager instance.
// The manager starts with no active scene; use SwitchTo or LoadLevel to set the initial scene.
func NewSceneManager() *SceneManager {
	return &SceneManager{}
}

// SetSceneFactory 设置场景工厂函数
func (sm *SceneManager) SetSceneFactory(factory SceneFactory) {
	sm.sceneFactory = factory
}

// SwitchTo changes the active scene to the provided scene.
// The previous scene is unloaded first when it implements Unloadable.
func (sm *SceneManager) SwitchTo(scene Scene) {
	if sm.currentScene != nil && sm.currentScene != scene {
		if u, ok := sm.currentScene.(Unloadable); ok {
			u.Unload()
		}
	}
	sm.currentScene = scene
}

// GetCurrentScene 返回当前活动的场景，没有活动场景时返回 nil
func (sm *SceneManager) GetCurrentScene() Scene {
	return sm.currentScene
}

// CurrentLevelID 返回当前关卡ID
func (sm *SceneManager) CurrentLevelID() string {
	return sm.currentLevelID
}

// ReloadCount 返回关卡被重载的次数
func (sm *SceneManager) ReloadCount() int {
	return sm.reloadCount
}

// LoadLevel 加载指定ID的关卡场景
// levelID: 关卡ID，如 "1-1"
func (sm *SceneManager) LoadLevel(levelID string) bool {
	log.Printf("[SceneManager] 加载关卡: %s", levelID)

	if sm.sceneFactory == nil {
		log.Printf("[SceneManager] 错误: SceneFactory 未设置")
		return false
	}

	// 先卸载旧场景，新场景构建时才能安全地复用共享的调度器
	if u, ok := sm.currentScene.(Unloadable); ok {
		u.Unload()
	}
	sm.currentScene = nil

	newScene := sm.sceneFactory(levelID)
	if newScene == nil {
		log.Printf("[SceneManager] 错误: 无法创建关卡场景: %s", levelID)
		return false
	}

	sm.currentScene = newScene
	sm.currentLevelID = levelID
	log.Printf("[SceneManager] 成功切换到关卡: %s", levelID)
	return true
}

// RequestReload 请求在当前 tick 结束后重新加载当前关卡
// 同一个 tick 内多次请求只会重载一次。
func (sm *SceneManager) RequestReload() {
	sm.pendingReload = true
}

// ReloadPending 是否有尚未执行的重载请求
func (sm *SceneManager) ReloadPending() bool {
	return sm.pendingReload
}

// Update updates the currently active scene, then applies a pending reload.
// deltaTime is the time elapsed since the last update in seconds.
func (sm *SceneManager) Update(deltaTime float64) {
	if sm.currentScene != nil {
		sm.currentScene.Update(deltaTime)
	}

	if sm.pendingReload {
		sm.pendingReload = false
		if sm.currentLevelID == "" {
			log.Printf("[SceneManager] 忽略重载请求: 当前没有关卡")
			return
		}
		sm.reloadCount++
		sm.LoadLevel(sm.currentLevelID)
	}
}
