package components

// AnimatorComponent 动画状态参数
// 模拟层只写入参数（bool 和一次性 trigger），由表现层消费并播放动画
type AnimatorComponent struct {
	Bools    map[string]bool
	Triggers []string
}

// NewAnimatorComponent 创建空的动画参数组件
func NewAnimatorComponent() *AnimatorComponent {
	return &AnimatorComponent{Bools: make(map[string]bool)}
}

// SetBool 设置 bool 参数
func (a *AnimatorComponent) SetBool(name string, value bool) {
	if name == "" {
		return
	}
	if a.Bools == nil {
		a.Bools = make(map[string]bool)
	}
	a.Bools[name] = value
}

// Bool 读取 bool 参数，未设置时为 false
func (a *AnimatorComponent) Bool(name string) bool {
	return a.Bools[name]
}

// SetTrigger 记录一次性 trigger
func (a *AnimatorComponent) SetTrigger(name string) {
	if name == "" {
		return
	}
	a.Triggers = append(a.Triggers, name)
}

// ConsumeTriggers 取出并清空所有待处理的 trigger
func (a *AnimatorComponent) ConsumeTriggers() []string {
	triggers := a.Triggers
	a.Triggers = nil
	return triggers
}
