package main

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	synth "github.com/gonewx/platformer/internal/audio"
	"github.com/gonewx/platformer/pkg/game"
)

const sampleRate = beep.SampleRate(synth.DefaultSampleRate)

// speakerOutput 终端下的音频输出：一个 beep 混音器，音效和音乐都加到里面
type speakerOutput struct {
	mixer *beep.Mixer
}

// newSpeakerOutput 初始化扬声器
// 没有音频设备时返回错误，调用方退回静音模式。
func newSpeakerOutput() (*speakerOutput, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("failed to init speaker: %w", err)
	}
	out := &speakerOutput{mixer: &beep.Mixer{}}
	speaker.Play(out.mixer)
	return out, nil
}

func (o *speakerOutput) add(s beep.Streamer) {
	speaker.Lock()
	o.mixer.Add(s)
	speaker.Unlock()
}

// Close 停止所有声音
func (o *speakerOutput) Close() {
	speaker.Lock()
	o.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
}

// speakerBank 用合成音实现 game.SoundBank
// PCM 数据按音效缓存，每次播放创建新的读取位置，同一音效可以重叠。
type speakerBank struct {
	out    *speakerOutput
	synth  *synth.Synth
	sounds map[game.SoundID]*synth.Stream
}

var _ game.SoundBank = (*speakerBank)(nil)

func newSpeakerBank(out *speakerOutput) *speakerBank {
	return &speakerBank{
		out:    out,
		synth:  synth.NewSynth(int(sampleRate), synth.WaveSquare),
		sounds: make(map[game.SoundID]*synth.Stream),
	}
}

// PlaySound 实现 game.SoundBank 接口
func (b *speakerBank) PlaySound(id game.SoundID, volume float64) bool {
	stream, ok := b.sounds[id]
	if !ok {
		notes, found := synth.Effect(string(id))
		if !found {
			log.Printf("[SpeakerBank] Warning: unknown sound %q", id)
			return false
		}
		stream = b.synth.Render(notes)
		b.sounds[id] = stream
	}
	b.out.add(synth.WithVolume(synth.NewSamples(stream), volume))
	return true
}

// speakerChannel 基于 beep 的音乐通道
type speakerChannel struct {
	out    *speakerOutput
	synth  *synth.Synth
	ctrl   *beep.Ctrl
	vol    *effects.Volume
	volume float64

	// 每次 Play 递增，旧曲目的结束回调不会影响新曲目
	generation atomic.Int64
	playing    atomic.Bool
}

var _ game.MusicChannel = (*speakerChannel)(nil)

func newSpeakerChannel(out *speakerOutput) *speakerChannel {
	return &speakerChannel{
		out:   out,
		synth: synth.NewSynth(int(sampleRate), synth.WaveTriangle),
	}
}

// Play 实现 game.MusicChannel 接口
func (c *speakerChannel) Play(track game.Track) error {
	if len(track.Notes) == 0 {
		return fmt.Errorf("track %q has no notes", track.ID)
	}
	c.Stop()

	gen := c.generation.Add(1)
	samples := synth.NewSamples(c.synth.RenderTrack(track.Notes, track.Tempo))
	done := beep.Callback(func() {
		if c.generation.Load() == gen {
			c.playing.Store(false)
		}
	})

	c.vol = synth.WithVolume(beep.Seq(samples, done), c.volume)
	c.ctrl = &beep.Ctrl{Streamer: c.vol}
	c.playing.Store(true)
	c.out.add(c.ctrl)
	return nil
}

// Stop 实现 game.MusicChannel 接口
func (c *speakerChannel) Stop() {
	if c.ctrl == nil {
		return
	}
	c.generation.Add(1)
	speaker.Lock()
	c.ctrl.Paused = true
	c.ctrl.Streamer = nil
	speaker.Unlock()
	c.ctrl = nil
	c.vol = nil
	c.playing.Store(false)
}

// IsPlaying 实现 game.MusicChannel 接口
func (c *speakerChannel) IsPlaying() bool {
	return c.playing.Load()
}

// SetVolume 实现 game.MusicChannel 接口
func (c *speakerChannel) SetVolume(volume float64) {
	c.volume = volume
	if c.vol == nil {
		return
	}
	speaker.Lock()
	synth.SetLinearVolume(c.vol, volume)
	speaker.Unlock()
}

// Volume 实现 game.MusicChannel 接口
func (c *speakerChannel) Volume() float64 {
	return c.volume
}
