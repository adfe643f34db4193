// Package scheduler 提供单线程协作式的定时任务调度
//
// 所有限时行为（陷阱序列、无敌闪烁、死亡序列、音乐交叉淡入淡出）都被建模为
// 由若干 Step 组成的任务。任务在挂起点让出控制权，在后续 tick 满足条件时恢复。
//
// 调度规则：
//   - 每个 key 同一时间最多只有一个任务；Start 同名任务会先取消旧任务
//   - Start 会立即同步执行新任务，直到遇到第一个挂起点
//   - 在 Update 过程中新启动的任务，从下一次 Update 开始恢复
//
// 调度器不是并发安全的，只能在模拟线程中使用。
package scheduler

import (
	"sort"
	"strings"
)

// Clock 任务步骤看到的时钟快照
type Clock struct {
	Now  float64 // 当前时间（秒）
	Tick uint64  // 当前 tick 序号
}

// Task 调度中的一个任务
type Task struct {
	key       string
	steps     []Step
	index     int
	started   bool
	done      bool
	cancelled bool
	onCancel  []func()
}

// Key 返回任务的 key
func (t *Task) Key() string {
	return t.key
}

// Done 任务是否已正常完成
func (t *Task) Done() bool {
	return t.done
}

// Cancelled 任务是否已被取消
func (t *Task) Cancelled() bool {
	return t.cancelled
}

// Alive 任务是否仍在运行
func (t *Task) Alive() bool {
	return !t.done && !t.cancelled
}

// OnCancel 注册取消回调
// 任务在完成前被取消时按注册顺序调用，用于撤销任务已经施加的副作用。
// 任务已结束时注册无效。
func (t *Task) OnCancel(fn func()) *Task {
	if fn != nil && t.Alive() {
		t.onCancel = append(t.onCancel, fn)
	}
	return t
}

// Scheduler 协作式调度器
type Scheduler struct {
	clock Clock
	tasks []*Task
	byKey map[string]*Task
}

// New 创建调度器，时钟从 0 开始
func New() *Scheduler {
	return &Scheduler{
		byKey: make(map[string]*Task),
	}
}

// Now 返回当前时间（秒）
func (s *Scheduler) Now() float64 {
	return s.clock.Now
}

// Tick 返回已执行的 Update 次数
func (s *Scheduler) Tick() uint64 {
	return s.clock.Tick
}

// Len 返回仍在运行的任务数量
func (s *Scheduler) Len() int {
	n := 0
	for _, t := range s.tasks {
		if t.Alive() {
			n++
		}
	}
	return n
}

// Running 判断 key 对应的任务是否仍在运行
func (s *Scheduler) Running(key string) bool {
	t, ok := s.byKey[key]
	return ok && t.Alive()
}

// Start 启动任务
// 同 key 的旧任务会先被取消（触发其 OnCancel 回调），然后新任务立即执行到第一个挂起点。
func (s *Scheduler) Start(key string, steps ...Step) *Task {
	s.Cancel(key)

	t := &Task{key: key, steps: steps}
	s.tasks = append(s.tasks, t)
	s.byKey[key] = t

	s.advance(t)
	if !t.Alive() {
		s.release(t)
	}
	return t
}

// Cancel 取消 key 对应的任务，返回是否真的取消了一个运行中的任务
func (s *Scheduler) Cancel(key string) bool {
	t, ok := s.byKey[key]
	if !ok {
		return false
	}
	delete(s.byKey, key)
	if !t.Alive() {
		return false
	}
	s.cancel(t)
	return true
}

// CancelPrefix 取消所有 key 以 prefix 开头的运行中任务，返回取消的数量
// 用于场景卸载时一次性撤销属于该场景的任务。
func (s *Scheduler) CancelPrefix(prefix string) int {
	var keys []string
	for key := range s.byKey {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	n := 0
	for _, key := range keys {
		if s.Cancel(key) {
			n++
		}
	}
	return n
}

// Clear 取消所有任务
func (s *Scheduler) Clear() {
	tasks := s.tasks
	s.tasks = nil
	s.byKey = make(map[string]*Task)
	for _, t := range tasks {
		if t.Alive() {
			s.cancel(t)
		}
	}
}

// Update 推进时钟并恢复所有满足条件的任务
func (s *Scheduler) Update(dt float64) {
	if dt < 0 {
		dt = 0
	}
	s.clock.Now += dt
	s.clock.Tick++

	// 快照：本次 Update 中新启动的任务不在其中
	snapshot := make([]*Task, len(s.tasks))
	copy(snapshot, s.tasks)

	for _, t := range snapshot {
		if !t.Alive() {
			continue
		}
		s.advance(t)
		if !t.Alive() {
			s.release(t)
		}
	}

	s.compact()
}

// advance 依次执行任务的步骤，直到某一步挂起或任务结束
func (s *Scheduler) advance(t *Task) {
	for t.Alive() {
		if t.index >= len(t.steps) {
			t.done = true
			t.onCancel = nil
			return
		}

		step := t.steps[t.index]
		if !t.started {
			step.begin(s.clock)
			t.started = true
		}

		finished := step.update(s.clock)
		if t.cancelled {
			// 步骤回调里取消了自己（例如重新 Start 同一个 key）
			return
		}
		if !finished {
			return
		}

		t.index++
		t.started = false
	}
}

func (s *Scheduler) cancel(t *Task) {
	t.cancelled = true
	callbacks := t.onCancel
	t.onCancel = nil
	for _, fn := range callbacks {
		fn()
	}
}

// release 释放已结束任务占用的 key
func (s *Scheduler) release(t *Task) {
	if cur, ok := s.byKey[t.key]; ok && cur == t {
		delete(s.byKey, t.key)
	}
}

func (s *Scheduler) compact() {
	alive := s.tasks[:0]
	for _, t := range s.tasks {
		if t.Alive() {
			alive = append(alive, t)
		}
	}
	for i := len(alive); i < len(s.tasks); i++ {
		s.tasks[i] = nil
	}
	s.tasks = alive
}
