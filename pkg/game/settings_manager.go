package game

import (
	"fmt"
	"log"
	"math"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// GameSettings 玩家设置
// 只持久化偏好，不保存分数和关卡进度（每次启动都是新游戏）
type GameSettings struct {
	// 音频设置
	MusicVolume      float64 `yaml:"musicVolume"`      // 音乐音量 0.0 ~ 1.0
	SoundVolume      float64 `yaml:"soundVolume"`      // 音效音量 0.0 ~ 1.0
	MusicEnabled     bool    `yaml:"musicEnabled"`     // 音乐开关
	SoundEnabled     bool    `yaml:"soundEnabled"`     // 音效开关
	ShuffleMusic     bool    `yaml:"shuffleMusic"`     // 随机播放曲目
	CrossfadeSeconds float64 `yaml:"crossfadeSeconds"` // 切歌交叉淡入淡出时长

	// 显示设置
	Fullscreen bool `yaml:"fullscreen"` // 启动时是否全屏
}

// DefaultSettings 返回默认设置
func DefaultSettings() *GameSettings {
	return &GameSettings{
		MusicVolume:      0.7,
		SoundVolume:      0.8,
		MusicEnabled:     true,
		SoundEnabled:     true,
		ShuffleMusic:     false,
		CrossfadeSeconds: 1.0,
		Fullscreen:       false,
	}
}

// OpenStorage 打开跨平台存储
// 失败时返回 nil 和错误，调用方可以把 nil 交给 NewSettingsManager 进入降级模式。
func OpenStorage(appName string) (*gdata.Manager, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("failed to open storage %q: %w", appName, err)
	}
	return m, nil
}

// SettingsManager 负责设置的加载、保存和内存管理
// gdata 存储为 nil 时进入降级模式：设置只保存在内存中，Save 不报错。
type SettingsManager struct {
	storage  *gdata.Manager
	settings *GameSettings
}

// 设置在 gdata 中的位置
const (
	settingsObject   = "settings"
	settingsProperty = "global"
)

// NewSettingsManager 创建设置管理器并尝试加载已保存的设置
// 加载失败只记录警告并使用默认设置，返回的 error 目前总是 nil。
func NewSettingsManager(storage *gdata.Manager) (*SettingsManager, error) {
	sm := &SettingsManager{storage: storage, settings: DefaultSettings()}
	if err := sm.Load(); err != nil {
		log.Printf("[SettingsManager] Warning: %v (using defaults)", err)
	}
	return sm, nil
}

// Load 从 gdata 加载设置
// 没有存储或没有保存过时使用默认设置；数据损坏时回到默认设置并返回错误。
func (sm *SettingsManager) Load() error {
	sm.settings = DefaultSettings()
	if sm.storage == nil || !sm.storage.ObjectPropExists(settingsObject, settingsProperty) {
		return nil
	}

	data, err := sm.storage.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	loaded, err := decodeSettings(data)
	if err != nil {
		return err
	}

	sm.settings = loaded
	log.Printf("[SettingsManager] Settings loaded")
	return nil
}

// decodeSettings 解析 YAML 并修正旧版本文件缺失或越界的字段
func decodeSettings(data []byte) (*GameSettings, error) {
	var s GameSettings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	if s.CrossfadeSeconds <= 0 {
		s.CrossfadeSeconds = DefaultSettings().CrossfadeSeconds
	}
	s.MusicVolume = clampVolume(s.MusicVolume)
	s.SoundVolume = clampVolume(s.SoundVolume)
	return &s, nil
}

// Save 把设置写入 gdata，降级模式下什么也不做
func (sm *SettingsManager) Save() error {
	if sm.storage == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := sm.storage.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	log.Printf("[SettingsManager] Settings saved")
	return nil
}

// GetSettings 返回当前设置
// 返回的是内部指针，Set* 的修改会立即反映出来。
func (sm *SettingsManager) GetSettings() *GameSettings {
	return sm.settings
}

// SetMusicVolume 设置音乐音量（限制在 0~1），需要 Save 才会持久化
func (sm *SettingsManager) SetMusicVolume(volume float64) {
	sm.settings.MusicVolume = clampVolume(volume)
}

// SetSoundVolume 设置音效音量（限制在 0~1）
func (sm *SettingsManager) SetSoundVolume(volume float64) {
	sm.settings.SoundVolume = clampVolume(volume)
}

// SetMusicEnabled 音乐开关
func (sm *SettingsManager) SetMusicEnabled(enabled bool) {
	sm.settings.MusicEnabled = enabled
}

// SetSoundEnabled 音效开关
func (sm *SettingsManager) SetSoundEnabled(enabled bool) {
	sm.settings.SoundEnabled = enabled
}

// SetShuffleMusic 设置随机播放
func (sm *SettingsManager) SetShuffleMusic(enabled bool) {
	sm.settings.ShuffleMusic = enabled
}

// SetCrossfadeSeconds 设置交叉淡入淡出时长，负数视为 0
func (sm *SettingsManager) SetCrossfadeSeconds(seconds float64) {
	sm.settings.CrossfadeSeconds = math.Max(0, seconds)
}

// SetFullscreen 启动时是否全屏
func (sm *SettingsManager) SetFullscreen(enabled bool) {
	sm.settings.Fullscreen = enabled
}

// EffectiveMusicVolume 音乐关闭时为 0，否则为音乐音量
func (s *GameSettings) EffectiveMusicVolume() float64 {
	if !s.MusicEnabled {
		return 0
	}
	return s.MusicVolume
}

// EffectiveSoundVolume 音效关闭时为 0，否则为音效音量
func (s *GameSettings) EffectiveSoundVolume() float64 {
	if !s.SoundEnabled {
		return 0
	}
	return s.SoundVolume
}

func clampVolume(volume float64) float64 {
	return math.Min(1, math.Max(0, volume))
}
