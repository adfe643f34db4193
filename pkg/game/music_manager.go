package game

import (
	"log"
	"math"
	"math/rand"

	"github.com/gonewx/platformer/pkg/scheduler"
)

// 调度任务 key
const (
	musicCrossfadeKey = "music:crossfade"
	musicFadeOutKey   = "music:fadeout"
)

// minCrossfadeSeconds 交叉淡入淡出的最短时长
const minCrossfadeSeconds = 0.05

// Track 播放列表中的一首曲目
// ID 由具体的音频后端解析（合成旋律、文件路径等）
type Track struct {
	ID    string  `yaml:"id"`
	Title string  `yaml:"title"`
	Notes []int   `yaml:"notes"` // 合成后端使用的音符序列（半音，相对 A4）
	Tempo float64 `yaml:"tempo"` // 每分钟拍数
}

// MusicChannel 一个可独立控制音量的音乐播放通道
type MusicChannel interface {
	Play(track Track) error
	Stop()
	IsPlaying() bool
	SetVolume(volume float64)
	Volume() float64
}

// MusicOptions 音乐管理器参数
type MusicOptions struct {
	Volume    float64 // 目标音量 0.0 ~ 1.0
	Crossfade float64 // 交叉淡入淡出时长（秒）
	Shuffle   bool    // 随机播放
	Seed      int64   // 随机播放的种子
}

// MusicManager 双通道音乐播放器
// 职责：
//   - 维护播放列表和当前曲目
//   - 切歌时在两个通道之间交叉淡入淡出
//   - 两个通道都停止时自动播放下一首
type MusicManager struct {
	sched    *scheduler.Scheduler
	channels [2]MusicChannel
	active   int // 最近一次开始播放的通道

	playlist  []Track
	index     int // 当前曲目，-1 表示还没播放过
	volume    float64
	crossfade float64
	shuffle   bool
	rng       *rand.Rand

	// stopped 为 true 时暂停自动切歌，直到下一次显式播放
	stopped bool
}

// NewMusicManager 创建音乐管理器
// a、b 是两个播放通道，初始音量会被设为 0。
func NewMusicManager(sched *scheduler.Scheduler, a, b MusicChannel, playlist []Track, opts MusicOptions) *MusicManager {
	m := &MusicManager{
		sched:     sched,
		channels:  [2]MusicChannel{a, b},
		playlist:  append([]Track(nil), playlist...),
		index:     -1,
		volume:    clampVolume(opts.Volume),
		crossfade: opts.Crossfade,
		shuffle:   opts.Shuffle,
		rng:       rand.New(rand.NewSource(opts.Seed)),
	}
	for _, ch := range m.channels {
		ch.SetVolume(0)
	}
	return m
}

// ApplySettings 从玩家设置读取音量、交叉淡入淡出时长和随机播放开关
func (m *MusicManager) ApplySettings(s *GameSettings) {
	if s == nil {
		return
	}
	m.crossfade = s.CrossfadeSeconds
	m.shuffle = s.ShuffleMusic
	m.SetVolume(s.EffectiveMusicVolume())
}

// CurrentIndex 返回当前曲目序号，-1 表示还没播放过
func (m *MusicManager) CurrentIndex() int {
	return m.index
}

// CurrentTrack 返回当前曲目
func (m *MusicManager) CurrentTrack() (Track, bool) {
	if m.index < 0 || m.index >= len(m.playlist) {
		return Track{}, false
	}
	return m.playlist[m.index], true
}

// Volume 返回目标音量
func (m *MusicManager) Volume() float64 {
	return m.volume
}

// Stopped 是否处于停止状态（不会自动切歌）
func (m *MusicManager) Stopped() bool {
	return m.stopped
}

// Crossfading 是否正在交叉淡入淡出
func (m *MusicManager) Crossfading() bool {
	return m.sched.Running(musicCrossfadeKey)
}

// PlayIndex 播放指定曲目（越界时限制到播放列表范围内）
func (m *MusicManager) PlayIndex(i int) {
	n := len(m.playlist)
	if n == 0 {
		return
	}
	if i < 0 {
		i = 0
	}
	if i > n-1 {
		i = n - 1
	}
	m.index = i
	m.crossfadeTo(m.playlist[i])
}

// PlayNext 播放下一首：随机模式下随机选择，否则顺序循环
func (m *MusicManager) PlayNext() {
	n := len(m.playlist)
	if n == 0 {
		return
	}
	if m.shuffle {
		m.index = m.rng.Intn(n)
	} else {
		m.index = (m.index + 1) % n
	}
	m.crossfadeTo(m.playlist[m.index])
}

// Stop 在 fadeOut 秒内淡出两个通道后停止，并暂停自动切歌
func (m *MusicManager) Stop(fadeOut float64) {
	m.stopped = true
	m.sched.Cancel(musicCrossfadeKey)

	a, b := m.channels[0], m.channels[1]
	a0, b0 := a.Volume(), b.Volume()
	stopAll := func() {
		a.Stop()
		b.Stop()
		a.SetVolume(0)
		b.SetVolume(0)
	}

	task := m.sched.Start(musicFadeOutKey,
		scheduler.Tween(fadeOut, func(p float64) {
			a.SetVolume(a0 * (1 - p))
			b.SetVolume(b0 * (1 - p))
		}),
		scheduler.Call(stopAll),
	)
	task.OnCancel(stopAll)
	log.Printf("[MusicManager] Stopping music (fade out %.2fs)", fadeOut)
}

// SetVolume 设置目标音量，正在播放的通道只会被调低不会被调高
func (m *MusicManager) SetVolume(v float64) {
	m.volume = clampVolume(v)
	for _, ch := range m.channels {
		if ch.IsPlaying() {
			ch.SetVolume(math.Min(ch.Volume(), m.volume))
		}
	}
}

// Update 两个通道都停止时自动播放下一首
func (m *MusicManager) Update() {
	if m.stopped || m.index < 0 || len(m.playlist) == 0 {
		return
	}
	if m.sched.Running(musicCrossfadeKey) {
		return
	}
	if m.channels[0].IsPlaying() || m.channels[1].IsPlaying() {
		return
	}
	m.PlayNext()
}

// crossfadeTo 新曲目在空闲通道淡入，正在播放的通道淡出
// 进行中的交叉淡入淡出会先被立即完成。
func (m *MusicManager) crossfadeTo(track Track) {
	m.sched.Cancel(musicCrossfadeKey)
	m.sched.Cancel(musicFadeOutKey)
	m.stopped = false

	var from MusicChannel
	toIndex := 0
	if m.channels[m.active].IsPlaying() {
		from = m.channels[m.active]
		toIndex = 1 - m.active
	} else if m.channels[1-m.active].IsPlaying() {
		from = m.channels[1-m.active]
		toIndex = m.active
	}
	to := m.channels[toIndex]

	to.SetVolume(0)
	if err := to.Play(track); err != nil {
		log.Printf("[MusicManager] Warning: Failed to play %q: %v", track.ID, err)
		m.stopped = true
		return
	}
	m.active = toIndex

	startFrom := 0.0
	if from != nil {
		startFrom = from.Volume()
	}
	duration := math.Max(minCrossfadeSeconds, m.crossfade)

	finish := func() {
		to.SetVolume(m.volume)
		if from != nil {
			from.Stop()
			from.SetVolume(0)
		}
	}

	task := m.sched.Start(musicCrossfadeKey,
		scheduler.Tween(duration, func(p float64) {
			to.SetVolume(m.volume * p)
			if from != nil {
				from.SetVolume(startFrom * (1 - p))
			}
		}),
		scheduler.Call(finish),
	)
	task.OnCancel(finish)

	log.Printf("[MusicManager] Playing track %d: %s (crossfade %.2fs)", m.index, track.ID, duration)
}
