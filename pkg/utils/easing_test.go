package utils

import (
	"math"
	"testing"
)

const easingEpsilon = 1e-9

func TestEasingValues(t *testing.T) {
	tests := []struct {
		name string
		fn   EasingFunc
		at   float64
		want float64
	}{
		{"linear 中点", EaseLinear, 0.5, 0.5},
		{"easeInOut 四分之一", EaseInOut, 0.25, 0.15625},
		{"easeInOut 中点", EaseInOut, 0.5, 0.5},
		{"easeInQuad", EaseInQuad, 0.5, 0.25},
		{"easeOutQuad", EaseOutQuad, 0.5, 0.75},
		{"easeInCubic", EaseInCubic, 0.5, 0.125},
		{"easeOutCubic", EaseOutCubic, 0.5, 0.875},
		{"easeInOutCubic 前半", EaseInOutCubic, 0.25, 0.0625},
		{"easeInOutCubic 后半", EaseInOutCubic, 0.75, 0.9375},
		{"easeOutExpo 0.1", EaseOutExpo, 0.1, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.at); math.Abs(got-tt.want) > easingEpsilon {
				t.Errorf("f(%v) = %v, 期望 %v", tt.at, got, tt.want)
			}
		})
	}
}

// 所有命名曲线的端点都固定，且在区间内单调不减
func TestEasingEndpointsAndMonotonic(t *testing.T) {
	for name, fn := range easings {
		t.Run(name, func(t *testing.T) {
			if got := fn(0); math.Abs(got) > easingEpsilon {
				t.Errorf("f(0) = %v, 期望 0", got)
			}
			if got := fn(1); math.Abs(got-1) > easingEpsilon {
				t.Errorf("f(1) = %v, 期望 1", got)
			}
			prev := fn(0)
			for i := 1; i <= 100; i++ {
				v := fn(float64(i) / 100)
				if v < prev-easingEpsilon {
					t.Fatalf("f(%v) = %v 小于前一个值 %v", float64(i)/100, v, prev)
				}
				prev = v
			}
		})
	}
}

func TestEasingByName(t *testing.T) {
	tests := []struct {
		name      string
		wantKnown bool
		at        float64
		want      float64
	}{
		{"linear", true, 0.25, 0.25},
		{"easeOutCubic", true, 0.5, 0.875},
		{"", true, 0.25, 0.15625},        // 默认 EaseInOut
		{"bounce", false, 0.25, 0.15625}, // 未知名称回退到 EaseInOut
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, known := EasingByName(tt.name)
			if known != tt.wantKnown {
				t.Errorf("EasingByName(%q) known = %v, 期望 %v", tt.name, known, tt.wantKnown)
			}
			if got := fn(tt.at); math.Abs(got-tt.want) > 0.001 {
				t.Errorf("EasingByName(%q)(%v) = %v, 期望 %v", tt.name, tt.at, got, tt.want)
			}
			if IsKnownEasing(tt.name) != tt.wantKnown {
				t.Errorf("IsKnownEasing(%q) 与 EasingByName 不一致", tt.name)
			}
		})
	}
}
