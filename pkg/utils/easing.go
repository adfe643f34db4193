package utils

import "math"

// EasingFunc 把线性进度 t ∈ [0, 1] 映射为缓动后的进度
// 端点固定：f(0) = 0，f(1) = 1。
type EasingFunc = func(t float64) float64

func EaseLinear(t float64) float64 { return t }

// EaseInOut 两端切线为 0 的三次 Hermite 曲线 3t² - 2t³，陷阱尖刺伸缩的默认曲线
func EaseInOut(t float64) float64 {
	return t * t * (3 - 2*t)
}

func EaseInQuad(t float64) float64  { return t * t }
func EaseOutQuad(t float64) float64 { return 1 - (1-t)*(1-t) }

func EaseInCubic(t float64) float64  { return t * t * t }
func EaseOutCubic(t float64) float64 { return 1 - math.Pow(1-t, 3) }

// EaseInOutCubic 前半段 4t³，后半段与 EaseOutCubic 对称
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(2-2*t, 3)/2
}

// EaseOutExpo 1 - 2^(-10t)，t=1 时取精确的 1
func EaseOutExpo(t float64) float64 {
	if t >= 1 {
		return 1
	}
	return 1 - math.Pow(2, -10*t)
}

// 关卡文件中 easing 字段可用的名称
var easings = map[string]EasingFunc{
	"linear":         EaseLinear,
	"easeInOut":      EaseInOut,
	"easeInQuad":     EaseInQuad,
	"easeOutQuad":    EaseOutQuad,
	"easeInCubic":    EaseInCubic,
	"easeOutCubic":   EaseOutCubic,
	"easeInOutCubic": EaseInOutCubic,
	"easeOutExpo":    EaseOutExpo,
}

// EasingByName 按名称查找缓动函数
// 名称为空或未知时返回 EaseInOut，第二个返回值表示名称是否被识别（空名称视为有效）。
func EasingByName(name string) (EasingFunc, bool) {
	if fn, ok := easings[name]; ok {
		return fn, true
	}
	return EaseInOut, name == ""
}

// IsKnownEasing 供关卡校验使用
func IsKnownEasing(name string) bool {
	_, ok := EasingByName(name)
	return ok
}
