// Package types 定义共享的基础类型
// 这个包不依赖任何其他业务包，用于解决循环引用问题
package types

import "math"

// Vec2 二维向量（世界坐标，Y 轴向上）
type Vec2 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// V 构造 Vec2 的简写
func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add 向量相加
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub 向量相减
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale 向量数乘
func (v Vec2) Scale(k float64) Vec2 {
	return Vec2{X: v.X * k, Y: v.Y * k}
}

// Len 向量长度
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// LerpUnclamped 在 a 和 b 之间插值，t 不做范围限制（缓动曲线可能越界）
func LerpUnclamped(a, b Vec2, t float64) Vec2 {
	return Vec2{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// Sign 返回 x 的符号，0 视为正方向（与物理引擎的 Sign 约定一致）
func Sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

// Clamp 将 v 限制在 [lo, hi] 区间
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 将 v 限制在 [0, 1] 区间
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// Rect 轴对齐矩形，Center 为中心点，Half 为半宽/半高
type Rect struct {
	Center Vec2 `yaml:"center"`
	Half   Vec2 `yaml:"half"`
}

// RectAt 以中心点和尺寸构造矩形
func RectAt(center, size Vec2) Rect {
	return Rect{Center: center, Half: Vec2{X: size.X / 2, Y: size.Y / 2}}
}

// Min 左下角
func (r Rect) Min() Vec2 {
	return r.Center.Sub(r.Half)
}

// Max 右上角
func (r Rect) Max() Vec2 {
	return r.Center.Add(r.Half)
}

// Overlaps 判断两个矩形是否相交（边缘接触不算）
func (r Rect) Overlaps(o Rect) bool {
	return math.Abs(r.Center.X-o.Center.X) < r.Half.X+o.Half.X &&
		math.Abs(r.Center.Y-o.Center.Y) < r.Half.Y+o.Half.Y
}

// Contains 判断点是否在矩形内
func (r Rect) Contains(p Vec2) bool {
	return math.Abs(p.X-r.Center.X) <= r.Half.X && math.Abs(p.Y-r.Center.Y) <= r.Half.Y
}
