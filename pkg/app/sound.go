package app

import (
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2/audio"

	synth "github.com/gonewx/platformer/internal/audio"
	"github.com/gonewx/platformer/pkg/game"
)

// synthBank 用合成音实现 game.SoundBank
// 每个音效只渲染一次，播放器按音效缓存。
type synthBank struct {
	ctx     *audio.Context
	synth   *synth.Synth
	players map[game.SoundID]*audio.Player
}

var _ game.SoundBank = (*synthBank)(nil)

func newSynthBank(ctx *audio.Context) *synthBank {
	return &synthBank{
		ctx:     ctx,
		synth:   synth.NewSynth(ctx.SampleRate(), synth.WaveSquare),
		players: make(map[game.SoundID]*audio.Player),
	}
}

// PlaySound 实现 game.SoundBank 接口
func (b *synthBank) PlaySound(id game.SoundID, volume float64) bool {
	player, err := b.player(id)
	if err != nil {
		log.Printf("[SynthBank] Warning: %v", err)
		return false
	}

	player.SetVolume(volume)
	if err := player.Rewind(); err != nil {
		log.Printf("[SynthBank] Warning: Failed to rewind sound %s: %v", id, err)
	}
	player.Play()
	return true
}

func (b *synthBank) player(id game.SoundID) (*audio.Player, error) {
	if p, ok := b.players[id]; ok {
		return p, nil
	}
	notes, ok := synth.Effect(string(id))
	if !ok {
		return nil, fmt.Errorf("unknown sound %q", id)
	}
	p, err := b.ctx.NewPlayer(b.synth.Render(notes))
	if err != nil {
		return nil, fmt.Errorf("failed to create player for %s: %w", id, err)
	}
	b.players[id] = p
	return p, nil
}

// playerChannel 基于 ebiten audio.Player 的音乐通道
// 每次 Play 渲染曲目旋律并创建新的播放器，旧播放器被关闭。
type playerChannel struct {
	ctx    *audio.Context
	synth  *synth.Synth
	player *audio.Player
	volume float64
}

var _ game.MusicChannel = (*playerChannel)(nil)

func newPlayerChannel(ctx *audio.Context) *playerChannel {
	return &playerChannel{
		ctx:   ctx,
		synth: synth.NewSynth(ctx.SampleRate(), synth.WaveTriangle),
	}
}

// Play 实现 game.MusicChannel 接口
func (c *playerChannel) Play(track game.Track) error {
	if len(track.Notes) == 0 {
		return fmt.Errorf("track %q has no notes", track.ID)
	}
	c.Stop()

	p, err := c.ctx.NewPlayer(c.synth.RenderTrack(track.Notes, track.Tempo))
	if err != nil {
		return fmt.Errorf("failed to create player for track %s: %w", track.ID, err)
	}
	p.SetVolume(c.volume)
	p.Play()
	c.player = p
	return nil
}

// Stop 实现 game.MusicChannel 接口
func (c *playerChannel) Stop() {
	if c.player == nil {
		return
	}
	c.player.Pause()
	if err := c.player.Close(); err != nil {
		log.Printf("[MusicChannel] Warning: Failed to close player: %v", err)
	}
	c.player = nil
}

// IsPlaying 实现 game.MusicChannel 接口
func (c *playerChannel) IsPlaying() bool {
	return c.player != nil && c.player.IsPlaying()
}

// SetVolume 实现 game.MusicChannel 接口
func (c *playerChannel) SetVolume(volume float64) {
	c.volume = volume
	if c.player != nil {
		c.player.SetVolume(volume)
	}
}

// Volume 实现 game.MusicChannel 接口
func (c *playerChannel) Volume() float64 {
	return c.volume
}
