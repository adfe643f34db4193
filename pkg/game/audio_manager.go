package game

import (
	"log"
)

// SoundBank 具体的音效后端（ebiten 合成音、终端 beep 等）
type SoundBank interface {
	// PlaySound 以给定音量播放一次音效，返回是否成功播放
	PlaySound(id SoundID, volume float64) bool
}

// AudioManager 音频管理器
// 职责：
//   - 统一管理游戏中所有音效的播放，实现 SoundPlayer 接口
//   - 实现音量控制（从 SettingsManager 读取设置）
//   - 把音乐音量变化同步给 MusicManager
type AudioManager struct {
	bank            SoundBank        // 音效后端，可为 nil（静音）
	settingsManager *SettingsManager // 设置管理器（用于读取音量设置，可为 nil）
	music           *MusicManager    // 背景音乐，可为 nil
	playCounts      map[SoundID]int  // 每种音效的播放次数
}

// NewAudioManager 创建新的音频管理器
//
// 参数：
//   - bank: 音效后端（可为 nil，此时只记录不发声）
//   - sm: SettingsManager 实例（用于读取音量设置，可为 nil）
func NewAudioManager(bank SoundBank, sm *SettingsManager) *AudioManager {
	return &AudioManager{
		bank:            bank,
		settingsManager: sm,
		playCounts:      make(map[SoundID]int),
	}
}

// SetMusicManager 关联背景音乐管理器，并立即应用当前设置
func (am *AudioManager) SetMusicManager(m *MusicManager) {
	am.music = m
	if m != nil && am.settingsManager != nil {
		m.ApplySettings(am.settingsManager.GetSettings())
	}
}

// MusicManager 返回关联的背景音乐管理器
func (am *AudioManager) MusicManager() *MusicManager {
	return am.music
}

// PlaySound 播放音效
// 音效使用 SoundVolume 设置控制音量；音效关闭时只计数不播放
func (am *AudioManager) PlaySound(id SoundID) {
	am.playCounts[id]++

	if am.settingsManager != nil {
		settings := am.settingsManager.GetSettings()
		if !settings.SoundEnabled {
			return
		}
	}
	if am.bank == nil {
		return
	}

	if !am.bank.PlaySound(id, am.getSoundVolume()) {
		log.Printf("[AudioManager] Warning: Sound not played: %s", id)
	}
}

// PlayCount 返回某个音效被请求播放的次数
func (am *AudioManager) PlayCount(id SoundID) int {
	return am.playCounts[id]
}

// SetMusicVolume 设置音乐音量，立即应用到背景音乐
func (am *AudioManager) SetMusicVolume(volume float64) {
	if am.settingsManager != nil {
		am.settingsManager.SetMusicVolume(volume)
	}
	if am.music != nil {
		if am.settingsManager != nil {
			am.music.ApplySettings(am.settingsManager.GetSettings())
		} else {
			am.music.SetVolume(volume)
		}
	}
}

// SetSoundVolume 设置音效音量，影响后续播放的所有音效
func (am *AudioManager) SetSoundVolume(volume float64) {
	if am.settingsManager != nil {
		am.settingsManager.SetSoundVolume(volume)
	}
}

// GetSoundVolume 获取当前音效音量
func (am *AudioManager) GetSoundVolume() float64 {
	return am.getSoundVolume()
}

// getSoundVolume 获取音效音量设置
func (am *AudioManager) getSoundVolume() float64 {
	if am.settingsManager != nil {
		return am.settingsManager.GetSettings().SoundVolume
	}
	return 0.8 // 默认值
}
