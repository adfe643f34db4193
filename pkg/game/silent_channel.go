package game

import (
	"fmt"

	"github.com/gonewx/platformer/pkg/scheduler"
)

// defaultTempo 曲目未指定速度时使用的每分钟拍数
const defaultTempo = 120.0

// Duration 曲目时长（秒），每个音符一拍
func (t Track) Duration() float64 {
	tempo := t.Tempo
	if tempo <= 0 {
		tempo = defaultTempo
	}
	return float64(len(t.Notes)) * 60 / tempo
}

// SilentChannel 不发声的音乐通道，按曲目时长在模拟时钟上"播放"
// 用于无界面模拟和测试，播放结束后 MusicManager 会自动切到下一首。
type SilentChannel struct {
	sched   *scheduler.Scheduler
	track   Track
	endsAt  float64
	playing bool
	volume  float64
}

// NewSilentChannel 创建静音通道
func NewSilentChannel(sched *scheduler.Scheduler) *SilentChannel {
	return &SilentChannel{sched: sched}
}

// Play 开始播放，没有音符的曲目无法播放
func (c *SilentChannel) Play(track Track) error {
	if track.Duration() <= 0 {
		return fmt.Errorf("track %q has no notes", track.ID)
	}
	c.track = track
	c.endsAt = c.sched.Now() + track.Duration()
	c.playing = true
	return nil
}

// Stop 停止播放
func (c *SilentChannel) Stop() {
	c.playing = false
}

// IsPlaying 曲目是否仍在播放
func (c *SilentChannel) IsPlaying() bool {
	return c.playing && c.sched.Now() < c.endsAt
}

// SetVolume 设置音量
func (c *SilentChannel) SetVolume(volume float64) {
	c.volume = volume
}

// Volume 返回音量
func (c *SilentChannel) Volume() float64 {
	return c.volume
}

// Track 返回最近一次播放的曲目
func (c *SilentChannel) Track() Track {
	return c.track
}
