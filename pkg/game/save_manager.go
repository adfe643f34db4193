package game

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// SaveData 保存数据结构
//
// 保存内容只有跨局的记录，一局内的分数、生命、检查点不做持久化：
//   - 历史最高分
//   - 单局最多苹果数
//   - 最近一次游玩的关卡
type SaveData struct {
	HighScore   int    `yaml:"highScore"`   // 历史最高分
	MostApples  int    `yaml:"mostApples"`  // 单局最多苹果数
	LastLevel   string `yaml:"lastLevel"`   // 最近一次游玩的关卡ID，如 "1-1"
	GamesPlayed int    `yaml:"gamesPlayed"` // 结束的局数（游戏结束或退出）
}

// 存储路径常量
const (
	recordsObject   = "records"
	recordsProperty = "player"
)

// SaveManager 保存管理器
//
// 职责：
//   - 加载和保存跨局记录
//   - 在一局结束时合并新的记录
//
// 和 SettingsManager 一样，gdataManager 为 nil 时进入降级模式，只在内存中记录。
type SaveManager struct {
	gdataManager *gdata.Manager
	data         *SaveData
}

// NewSaveManager 创建保存管理器并尝试加载已有记录
// 加载失败不是致命错误，使用空记录。
func NewSaveManager(gdataManager *gdata.Manager) *SaveManager {
	sm := &SaveManager{
		gdataManager: gdataManager,
		data:         &SaveData{},
	}
	if err := sm.Load(); err != nil {
		log.Printf("[SaveManager] Warning: Failed to load records: %v (starting fresh)", err)
	}
	return sm
}

// Load 从 gdata 加载记录
func (sm *SaveManager) Load() error {
	if sm.gdataManager == nil {
		sm.data = &SaveData{}
		return nil
	}
	if !sm.gdataManager.ObjectPropExists(recordsObject, recordsProperty) {
		sm.data = &SaveData{}
		return nil
	}

	raw, err := sm.gdataManager.LoadObjectProp(recordsObject, recordsProperty)
	if err != nil {
		sm.data = &SaveData{}
		return fmt.Errorf("failed to load records: %w", err)
	}

	var loaded SaveData
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		sm.data = &SaveData{}
		return fmt.Errorf("failed to unmarshal records: %w", err)
	}
	if loaded.HighScore < 0 {
		loaded.HighScore = 0
	}
	if loaded.MostApples < 0 {
		loaded.MostApples = 0
	}

	sm.data = &loaded
	log.Printf("[SaveManager] Records loaded (high score %d)", loaded.HighScore)
	return nil
}

// Save 保存记录到 gdata，降级模式下直接返回 nil
func (sm *SaveManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	raw, err := yaml.Marshal(sm.data)
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	if err := sm.gdataManager.SaveObjectProp(recordsObject, recordsProperty, raw); err != nil {
		return fmt.Errorf("failed to save records: %w", err)
	}
	return nil
}

// Records 返回当前记录的副本
func (sm *SaveManager) Records() SaveData {
	return *sm.data
}

// HighScore 返回历史最高分
func (sm *SaveManager) HighScore() int {
	return sm.data.HighScore
}

// SetLastLevel 记录最近一次游玩的关卡
func (sm *SaveManager) SetLastLevel(levelID string) {
	sm.data.LastLevel = levelID
}

// SubmitRun 一局结束时合并记录，返回是否刷新了最高分
// state 是结束时（重置之前）的状态。
func (sm *SaveManager) SubmitRun(state GameState) bool {
	sm.data.GamesPlayed++

	improved := false
	best := state.HighScore
	if state.TotalScore > best {
		best = state.TotalScore
	}
	if best > sm.data.HighScore {
		sm.data.HighScore = best
		improved = true
	}
	if state.AppleCount > sm.data.MostApples {
		sm.data.MostApples = state.AppleCount
	}
	return improved
}
