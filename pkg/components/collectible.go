package components

// CollectibleComponent 可收集物品（苹果）
type CollectibleComponent struct {
	ScoreValue   int     // 收集时增加的分数
	AppleValue   int     // 收集时增加的苹果数
	DestroyDelay float64 // 收集后到销毁的延迟（留给收集特效）
	Collected    bool
}
