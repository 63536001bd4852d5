package input

// Source 平台输入状态：按物理输入名称查询是否按住，每 Tick 每玩家轮询一次
type Source interface {
	IsHeld(physical string) bool
}

// SourceFunc 函数适配器
type SourceFunc func(physical string) bool

func (f SourceFunc) IsHeld(physical string) bool { return f(physical) }

// HeldSet 以集合保存当前按住的物理输入；非并发安全，只能在 Tick 线程中修改
type HeldSet struct {
	held map[string]struct{}
}

func NewHeldSet(names ...string) *HeldSet {
	h := &HeldSet{held: make(map[string]struct{}, len(names))}
	h.Press(names...)
	return h
}

func (h *HeldSet) IsHeld(physical string) bool {
	_, ok := h.held[physical]
	return ok
}

// Press 标记按下
func (h *HeldSet) Press(names ...string) {
	for _, n := range names {
		h.held[n] = struct{}{}
	}
}

// Release 标记松开
func (h *HeldSet) Release(names ...string) {
	for _, n := range names {
		delete(h.held, n)
	}
}

// Set 用 names 整体替换当前状态
func (h *HeldSet) Set(names ...string) {
	h.Clear()
	h.Press(names...)
}

// Clear 全部松开
func (h *HeldSet) Clear() {
	for n := range h.held {
		delete(h.held, n)
	}
}
