package game

// Scene represents a game scene (e.g., a playable level).
// Scenes only advance simulation state; front-ends read their snapshots to draw.
type Scene interface {
	// Update updates the scene logic based on the elapsed time.
	// deltaTime is the time elapsed since the last update in seconds.
	Update(deltaTime float64)
}

// Unloadable 是一个可选接口，场景被替换或重载前调用
//
// 实现此接口的场景应在 Unload 中取消自己启动的调度任务、释放实体，
// 避免旧场景的回调作用到新场景上。
type Unloadable interface {
	Unload()
}
