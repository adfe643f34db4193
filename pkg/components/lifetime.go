package components

// LifetimeComponent 给实体一个存活时间上限，到期后由 LifetimeSystem 删除
// 被收集的苹果播放完拾取效果、被踩死的敌人掉出画面都靠它清理。
type LifetimeComponent struct {
	MaxLifetime     float64 // 秒
	CurrentLifetime float64
	IsExpired       bool
}
