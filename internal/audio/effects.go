package audio

// 音效旋律，按音效名索引（与 game.SoundID 的取值一致）
var effects = map[string][]Note{
	"death":      {{Semitone: 3, Seconds: 0.08}, {Semitone: -2, Seconds: 0.08}, {Semitone: -9, Seconds: 0.2}},
	"new_life":   {{Semitone: 3, Seconds: 0.06}, {Semitone: 7, Seconds: 0.06}, {Semitone: 10, Seconds: 0.06}, {Semitone: 15, Seconds: 0.14}},
	"checkpoint": {{Semitone: 7, Seconds: 0.07}, {Semitone: 12, Seconds: 0.12}},
	"trap":       {{Semitone: -12, Seconds: 0.05}, {Semitone: -5, Seconds: 0.05}},
	"stomp":      {{Semitone: -5, Seconds: 0.04}, {Semitone: 0, Seconds: 0.06}},
	"collect":    {{Semitone: 12, Seconds: 0.04}, {Semitone: 19, Seconds: 0.07}},
	"jump":       {{Semitone: 0, Seconds: 0.03}, {Semitone: 5, Seconds: 0.05}},
	"footstep":   {{Semitone: -24, Seconds: 0.025}},
}

// Effect 返回音效的音符序列
func Effect(name string) ([]Note, bool) {
	notes, ok := effects[name]
	return notes, ok
}

// EffectNames 返回所有内置音效名
func EffectNames() []string {
	names := make([]string, 0, len(effects))
	for name := range effects {
		names = append(names, name)
	}
	return names
}
