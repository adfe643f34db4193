package scheduler

import "math"

// Step 任务中的一个步骤
// begin 在步骤第一次被执行时调用；update 返回 true 表示步骤完成，任务继续下一步，
// 返回 false 表示在此挂起，等待下一次 Update。
type Step interface {
	begin(c Clock)
	update(c Clock) bool
}

// Call 立即执行 fn，不挂起
func Call(fn func()) Step {
	return &callStep{fn: fn}
}

type callStep struct {
	fn func()
}

func (s *callStep) begin(Clock) {}

func (s *callStep) update(Clock) bool {
	if s.fn != nil {
		s.fn()
	}
	return true
}

// Wait 挂起 seconds 秒；seconds <= 0 时立即完成
func Wait(seconds float64) Step {
	return &waitStep{duration: seconds}
}

type waitStep struct {
	duration float64
	until    float64
}

func (s *waitStep) begin(c Clock) {
	s.until = c.Now + s.duration
}

func (s *waitStep) update(c Clock) bool {
	return s.duration <= 0 || c.Now >= s.until
}

// NextTick 挂起到下一个 tick
func NextTick() Step {
	return &nextTickStep{}
}

type nextTickStep struct {
	startTick uint64
}

func (s *nextTickStep) begin(c Clock) {
	s.startTick = c.Tick
}

func (s *nextTickStep) update(c Clock) bool {
	return c.Tick > s.startTick
}

// WaitUntil 挂起直到 cond 返回 true，或经过 timeout 秒
// timeout < 0 表示不设超时。cond 在开始的当个 tick 就会被检查一次。
func WaitUntil(cond func() bool, timeout float64) Step {
	return &waitUntilStep{cond: cond, timeout: timeout}
}

type waitUntilStep struct {
	cond    func() bool
	timeout float64
	start   float64
}

func (s *waitUntilStep) begin(c Clock) {
	s.start = c.Now
}

func (s *waitUntilStep) update(c Clock) bool {
	if s.cond != nil && s.cond() {
		return true
	}
	return s.timeout >= 0 && c.Now-s.start >= s.timeout
}

// Tween 在 duration 秒内每个 tick 以进度 p ∈ [0, 1] 调用 fn
// 最后一次调用保证 p == 1；duration <= 0 时立即以 p == 1 调用一次。
func Tween(duration float64, fn func(p float64)) Step {
	return &tweenStep{duration: duration, fn: fn}
}

type tweenStep struct {
	duration float64
	fn       func(p float64)
	start    float64
}

func (s *tweenStep) begin(c Clock) {
	s.start = c.Now
}

func (s *tweenStep) update(c Clock) bool {
	p := 1.0
	if s.duration > 0 {
		p = math.Min(1, math.Max(0, (c.Now-s.start)/s.duration))
	}
	if s.fn != nil {
		s.fn(p)
	}
	return p >= 1
}

// Every 以 interval 为间隔调用 fn 共 count 次（第一次在开始时立即调用），
// 最后一次调用之后再等待一个 interval 才完成。
// 如果一次 Update 跨越多个间隔，会补齐错过的调用。
func Every(interval float64, count int, fn func(i int)) Step {
	return &everyStep{interval: interval, count: count, fn: fn}
}

type everyStep struct {
	interval float64
	count    int
	fn       func(i int)
	next     float64
	fired    int
}

func (s *everyStep) begin(c Clock) {
	s.next = c.Now
	s.fired = 0
}

func (s *everyStep) update(c Clock) bool {
	for s.fired < s.count && c.Now >= s.next {
		if s.fn != nil {
			s.fn(s.fired)
		}
		s.fired++
		s.next += s.interval
	}
	return s.fired >= s.count && c.Now >= s.next
}

// RepeatCount 计算在 total 秒内以 interval 为间隔需要执行的次数
// 等价于 "t := 0; for t < total { ...; t += interval }" 的循环次数。
func RepeatCount(total, interval float64) int {
	if total <= 0 || interval <= 0 {
		return 0
	}
	// 减去一个很小的量，避免 5.0/0.1 这类浮点误差多算一次
	return int(math.Ceil(total/interval - 1e-9))
}
