package audio

import (
	"fmt"
	"math"

	"github.com/gopxl/beep"
	beepeffects "github.com/gopxl/beep/effects"
)

// Samples 把渲染好的 PCM 数据包装成 beep.StreamSeeker
type Samples struct {
	data []byte
	pos  int // 以帧为单位
}

var _ beep.StreamSeeker = (*Samples)(nil)

// NewSamples 从 Stream 创建 beep 流，数据共享不复制
func NewSamples(s *Stream) *Samples {
	return &Samples{data: s.Bytes()}
}

// Stream 实现 beep.Streamer 接口
func (s *Samples) Stream(samples [][2]float64) (n int, ok bool) {
	total := s.Len()
	if s.pos >= total {
		return 0, false
	}
	for i := range samples {
		if s.pos >= total {
			return i, true
		}
		off := s.pos * bytesPerFrame
		left := int16(uint16(s.data[off]) | uint16(s.data[off+1])<<8)
		right := int16(uint16(s.data[off+2]) | uint16(s.data[off+3])<<8)
		samples[i][0] = float64(left) / (math.MaxInt16 + 1)
		samples[i][1] = float64(right) / (math.MaxInt16 + 1)
		s.pos++
	}
	return len(samples), true
}

// Err 实现 beep.Streamer 接口
func (s *Samples) Err() error { return nil }

// Len 帧数
func (s *Samples) Len() int {
	return len(s.data) / bytesPerFrame
}

// Position 当前帧位置
func (s *Samples) Position() int {
	return s.pos
}

// Seek 跳到第 p 帧
func (s *Samples) Seek(p int) error {
	if p < 0 || p > s.Len() {
		return fmt.Errorf("seek position %d out of range [0, %d]", p, s.Len())
	}
	s.pos = p
	return nil
}

// WithVolume 按 0~1 的线性音量包装流
// beep 的音量是以 2 为底的对数刻度，0 音量直接静音。
func WithVolume(s beep.Streamer, volume float64) *beepeffects.Volume {
	v := &beepeffects.Volume{Streamer: s, Base: 2}
	SetLinearVolume(v, volume)
	return v
}

// SetLinearVolume 修改已有音量效果的线性音量
// 流正在播放时，调用方需要持有 speaker.Lock。
func SetLinearVolume(v *beepeffects.Volume, volume float64) {
	if volume <= 0 {
		v.Silent = true
		v.Volume = 0
		return
	}
	v.Silent = false
	v.Volume = math.Log2(math.Min(volume, 1))
}
