package game

import (
	"errors"
	"math"
	"testing"

	"github.com/gonewx/platformer/pkg/scheduler"
)

type fakeChannel struct {
	playing bool
	volume  float64
	track   Track
	plays   int
	failOn  string
}

func (c *fakeChannel) Play(track Track) error {
	if c.failOn != "" && track.ID == c.failOn {
		return errors.New("decode failed")
	}
	c.playing = true
	c.track = track
	c.plays++
	return nil
}

func (c *fakeChannel) Stop()               { c.playing = false }
func (c *fakeChannel) IsPlaying() bool     { return c.playing }
func (c *fakeChannel) SetVolume(v float64) { c.volume = v }
func (c *fakeChannel) Volume() float64     { return c.volume }

func testPlaylist() []Track {
	return []Track{{ID: "intro"}, {ID: "forest"}, {ID: "castle"}}
}

func newTestMusic(opts MusicOptions) (*MusicManager, *scheduler.Scheduler, *fakeChannel, *fakeChannel) {
	sched := scheduler.New()
	a, b := &fakeChannel{volume: 1}, &fakeChannel{volume: 1}
	return NewMusicManager(sched, a, b, testPlaylist(), opts), sched, a, b
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMusicChannelsStartMuted(t *testing.T) {
	_, _, a, b := newTestMusic(MusicOptions{Volume: 0.5})
	if a.volume != 0 || b.volume != 0 {
		t.Errorf("通道初始音量应为 0, got %v %v", a.volume, b.volume)
	}
}

func TestPlayIndexClamps(t *testing.T) {
	tests := []struct {
		input int
		want  int
	}{
		{-3, 0},
		{1, 1},
		{99, 2},
	}
	for _, tt := range tests {
		m, _, _, _ := newTestMusic(MusicOptions{Volume: 0.5})
		m.PlayIndex(tt.input)
		if m.CurrentIndex() != tt.want {
			t.Errorf("PlayIndex(%d): index = %d, 期望 %d", tt.input, m.CurrentIndex(), tt.want)
		}
	}
}

func TestPlayEmptyPlaylistIsNoop(t *testing.T) {
	sched := scheduler.New()
	a, b := &fakeChannel{}, &fakeChannel{}
	m := NewMusicManager(sched, a, b, nil, MusicOptions{Volume: 1})

	m.PlayIndex(0)
	m.PlayNext()
	m.Update()

	if a.plays+b.plays != 0 {
		t.Error("空播放列表不应播放任何曲目")
	}
}

func TestCrossfadeBetweenChannels(t *testing.T) {
	m, sched, a, b := newTestMusic(MusicOptions{Volume: 0.6, Crossfade: 1.0})

	m.PlayIndex(0)
	if !a.playing || a.track.ID != "intro" {
		t.Fatalf("第一首应在通道 A 播放")
	}
	sched.Update(1.0)
	if !almostEqual(a.volume, 0.6) {
		t.Errorf("淡入结束后音量应为 0.6, got %v", a.volume)
	}

	m.PlayNext()
	if !b.playing || b.track.ID != "forest" {
		t.Fatalf("第二首应在空闲通道 B 播放")
	}
	if b.volume != 0 {
		t.Errorf("淡入开始时音量应为 0, got %v", b.volume)
	}

	sched.Update(0.5)
	if !almostEqual(b.volume, 0.3) || !almostEqual(a.volume, 0.3) {
		t.Errorf("过半时两个通道应各为 0.3, got a=%v b=%v", a.volume, b.volume)
	}

	sched.Update(0.5)
	if a.playing {
		t.Error("淡出结束后旧通道应停止")
	}
	if !almostEqual(b.volume, 0.6) {
		t.Errorf("淡入结束后新通道音量应为 0.6, got %v", b.volume)
	}
	if a.playing && b.playing {
		t.Error("交叉结束后只能有一个通道在播放")
	}
}

func TestNewCrossfadeCompletesPrevious(t *testing.T) {
	m, sched, a, b := newTestMusic(MusicOptions{Volume: 0.8, Crossfade: 2.0})

	m.PlayIndex(0)
	sched.Update(2.0)

	m.PlayIndex(1) // A → B
	sched.Update(0.5)

	m.PlayIndex(2) // 打断：A 立即停止，B 立即到满音量后作为新的 from

	if a.track.ID != "castle" || !a.playing {
		t.Fatalf("第三首应在通道 A 播放, got %q playing=%v", a.track.ID, a.playing)
	}
	if !b.playing || !almostEqual(b.volume, 0.8) {
		t.Errorf("被打断的淡入应立即完成, b.volume=%v", b.volume)
	}

	sched.Update(2.0)
	if b.playing {
		t.Error("交叉结束后通道 B 应停止")
	}
	if !almostEqual(a.volume, 0.8) {
		t.Errorf("a.volume = %v, 期望 0.8", a.volume)
	}
}

func TestMinimumCrossfadeDuration(t *testing.T) {
	m, sched, a, _ := newTestMusic(MusicOptions{Volume: 1, Crossfade: 0})

	m.PlayIndex(0)
	if !m.Crossfading() {
		t.Fatal("即使时长为 0 也应有最短的淡入过程")
	}
	sched.Update(0.05)
	if m.Crossfading() || a.volume != 1 {
		t.Errorf("最短时长后应完成淡入, volume=%v", a.volume)
	}
}

func TestPlayNextWrapsInOrder(t *testing.T) {
	m, sched, _, _ := newTestMusic(MusicOptions{Volume: 1, Crossfade: 0.1})

	var order []int
	for i := 0; i < 4; i++ {
		m.PlayNext()
		sched.Update(0.1)
		order = append(order, m.CurrentIndex())
	}

	want := []int{0, 1, 2, 0}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("顺序播放 = %v, 期望 %v", order, want)
		}
	}
}

func TestPlayNextShuffleStaysInRange(t *testing.T) {
	m, sched, _, _ := newTestMusic(MusicOptions{Volume: 1, Crossfade: 0.1, Shuffle: true, Seed: 7})

	for i := 0; i < 30; i++ {
		m.PlayNext()
		sched.Update(0.1)
		if idx := m.CurrentIndex(); idx < 0 || idx >= 3 {
			t.Fatalf("随机序号越界: %d", idx)
		}
	}
}

func TestUpdateAutoAdvances(t *testing.T) {
	m, sched, a, b := newTestMusic(MusicOptions{Volume: 1, Crossfade: 0.1})

	m.Update()
	if a.plays+b.plays != 0 {
		t.Fatal("还没播放过时不应自动开始")
	}

	m.PlayIndex(0)
	sched.Update(0.1)
	a.playing = false // 曲目自然结束

	m.Update()
	if m.CurrentIndex() != 1 {
		t.Errorf("曲目结束后应自动播放下一首, index=%d", m.CurrentIndex())
	}
	if !(a.playing && a.track.ID == "forest") && !(b.playing && b.track.ID == "forest") {
		t.Error("下一首应开始播放")
	}
}

func TestStopFadesOutAndPausesAutoAdvance(t *testing.T) {
	m, sched, a, _ := newTestMusic(MusicOptions{Volume: 1, Crossfade: 0.1})
	m.PlayIndex(0)
	sched.Update(0.1)

	m.Stop(1.0)
	sched.Update(0.5)
	if !almostEqual(a.volume, 0.5) {
		t.Errorf("淡出过半音量应为 0.5, got %v", a.volume)
	}
	sched.Update(0.6)
	if a.playing {
		t.Error("淡出结束后应停止")
	}

	m.Update()
	if a.playing || !m.Stopped() {
		t.Error("Stop 之后不应自动切歌")
	}

	m.PlayIndex(1)
	if m.Stopped() {
		t.Error("显式播放后应恢复自动切歌")
	}
}

func TestSetVolumeOnlyLowersPlaying(t *testing.T) {
	m, sched, a, b := newTestMusic(MusicOptions{Volume: 0.8, Crossfade: 0.1})
	m.PlayIndex(0)
	sched.Update(0.1)

	m.SetVolume(0.3)
	if !almostEqual(a.volume, 0.3) {
		t.Errorf("降低音量应作用到正在播放的通道, got %v", a.volume)
	}
	if b.volume != 0 {
		t.Error("未播放的通道音量不应改变")
	}

	m.SetVolume(2)
	if m.Volume() != 1 {
		t.Errorf("音量应被限制为 1, got %v", m.Volume())
	}
	if !almostEqual(a.volume, 0.3) {
		t.Errorf("提高音量不应立即调高正在播放的通道, got %v", a.volume)
	}
}

func TestPlayFailurePausesAutoAdvance(t *testing.T) {
	sched := scheduler.New()
	a := &fakeChannel{failOn: "intro"}
	b := &fakeChannel{failOn: "intro"}
	m := NewMusicManager(sched, a, b, testPlaylist(), MusicOptions{Volume: 1})

	m.PlayIndex(0)
	if !m.Stopped() {
		t.Error("播放失败后应暂停自动切歌")
	}
	m.Update()
	if a.plays+b.plays != 0 {
		t.Error("播放失败后不应反复重试")
	}
}

func TestApplySettings(t *testing.T) {
	m, _, _, _ := newTestMusic(MusicOptions{Volume: 1})
	s := DefaultSettings()
	s.ShuffleMusic = true
	s.MusicEnabled = false

	m.ApplySettings(s)

	if m.Volume() != 0 {
		t.Errorf("关闭音乐时目标音量应为 0, got %v", m.Volume())
	}
	if !m.shuffle || m.crossfade != 1.0 {
		t.Errorf("设置未生效: shuffle=%v crossfade=%v", m.shuffle, m.crossfade)
	}
}
