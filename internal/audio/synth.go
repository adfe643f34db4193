// Package audio 合成音效和背景音乐旋律的 PCM 数据
//
// 游戏不带音频资源文件：音效和曲目都由简单的音符序列描述，
// 在这里渲染成 16 位小端立体声 PCM，交给 ebiten 或终端后端播放。
package audio

import (
	"fmt"
	"io"
	"math"
)

// DefaultSampleRate 默认采样率
const DefaultSampleRate = 48000

// 每个采样帧的字节数（16 位 × 2 声道）
const bytesPerFrame = 4

// 音符两端的淡入淡出时长，避免爆音
const edgeFadeSeconds = 0.005

// Rest 休止符
const Rest = math.MinInt32

// Note 一个音符：相对 A4 的半音数和时长
type Note struct {
	Semitone int
	Seconds  float64
}

// Wave 振荡器波形
type Wave int

const (
	WaveSine Wave = iota
	WaveSquare
	WaveTriangle
)

// NoteFrequency 返回相对 A4（440Hz）semitone 个半音的频率
func NoteFrequency(semitone int) float64 {
	return 440 * math.Pow(2, float64(semitone)/12)
}

// Sample 在相位 phase（0~1）处的波形值
func (w Wave) Sample(phase float64) float64 {
	switch w {
	case WaveSquare:
		if phase < 0.5 {
			return 0.6
		}
		return -0.6
	case WaveTriangle:
		return 4*math.Abs(phase-0.5) - 1
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

// Synth 按固定采样率渲染音符
type Synth struct {
	SampleRate int
	Wave       Wave
	Gain       float64
}

// NewSynth 创建合成器，sampleRate <= 0 时使用默认采样率
func NewSynth(sampleRate int, wave Wave) *Synth {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Synth{SampleRate: sampleRate, Wave: wave, Gain: 0.4}
}

// Render 把音符序列渲染成 PCM 流
func (s *Synth) Render(notes []Note) *Stream {
	frames := 0
	for _, n := range notes {
		frames += s.frames(n.Seconds)
	}

	data := make([]byte, 0, frames*bytesPerFrame)
	for _, n := range notes {
		data = s.appendNote(data, n)
	}
	return &Stream{data: data, sampleRate: int64(s.SampleRate)}
}

// RenderTrack 把曲目的音符（每拍一个）渲染成 PCM 流
// tempo <= 0 时按每分钟 120 拍。
func (s *Synth) RenderTrack(semitones []int, tempo float64) *Stream {
	if tempo <= 0 {
		tempo = 120
	}
	beat := 60 / tempo
	notes := make([]Note, len(semitones))
	for i, st := range semitones {
		notes[i] = Note{Semitone: st, Seconds: beat}
	}
	return s.Render(notes)
}

func (s *Synth) frames(seconds float64) int {
	if seconds <= 0 {
		return 0
	}
	return int(seconds * float64(s.SampleRate))
}

func (s *Synth) appendNote(data []byte, n Note) []byte {
	frames := s.frames(n.Seconds)
	fade := s.frames(edgeFadeSeconds)
	freq := 0.0
	if n.Semitone != Rest {
		freq = NoteFrequency(n.Semitone)
	}

	phase := 0.0
	for i := 0; i < frames; i++ {
		v := 0.0
		if freq > 0 {
			v = s.Wave.Sample(phase) * s.Gain
			if fade > 0 {
				if i < fade {
					v *= float64(i) / float64(fade)
				} else if frames-i < fade {
					v *= float64(frames-i) / float64(fade)
				}
			}
			phase += freq / float64(s.SampleRate)
			phase -= math.Floor(phase)
		}
		pcm := int16(v * math.MaxInt16)
		// 左右声道相同
		data = append(data, byte(pcm), byte(pcm>>8), byte(pcm), byte(pcm>>8))
	}
	return data
}

// Stream 渲染好的 PCM 数据（16 位有符号小端，立体声）
// 实现 io.ReadSeeker，可以直接交给 ebiten 的 audio.Player。
type Stream struct {
	data       []byte
	sampleRate int64
	offset     int64
}

// Read reads PCM data into p.
// Implements io.Reader interface.
func (d *Stream) Read(p []byte) (n int, err error) {
	if d.offset >= int64(len(d.data)) {
		return 0, io.EOF
	}

	n = copy(p, d.data[d.offset:])
	d.offset += int64(n)
	return n, nil
}

// Seek sets the offset for the next Read.
// Implements io.Seeker interface.
func (d *Stream) Seek(offset int64, whence int) (int64, error) {
	var newOffset int64

	switch whence {
	case io.SeekStart:
		newOffset = offset
	case io.SeekCurrent:
		newOffset = d.offset + offset
	case io.SeekEnd:
		newOffset = int64(len(d.data)) + offset
	default:
		return 0, fmt.Errorf("invalid whence: %d", whence)
	}

	if newOffset < 0 {
		return 0, fmt.Errorf("negative position: %d", newOffset)
	}

	d.offset = newOffset
	return newOffset, nil
}

// Length returns the total length of the PCM data in bytes.
func (d *Stream) Length() int64 {
	return int64(len(d.data))
}

// Bytes 返回全部 PCM 数据
func (d *Stream) Bytes() []byte {
	return d.data
}

// SampleRate returns the sample rate of the audio in Hz.
func (d *Stream) SampleRate() int64 {
	return d.sampleRate
}

// Seconds 数据时长
func (d *Stream) Seconds() float64 {
	if d.sampleRate == 0 {
		return 0
	}
	return float64(len(d.data)/bytesPerFrame) / float64(d.sampleRate)
}
