package input

// Sample 单个玩家单帧的输入采样，创建后不可变
type Sample struct {
	PlayerID int
	Frame    int64
	Held     Mask
	Pressed  Mask // Held 中本帧 0→1 的位，恒为 Held 的子集
}

// Capture 将平台输入按 KeyMap 归约为逻辑按键位集合
type Capture struct {
	keys KeyMap
}

// NewCapture 构造采样器；KeyMap 不完整时返回错误
func NewCapture(keys KeyMap) (*Capture, error) {
	if err := keys.Validate(); err != nil {
		return nil, err
	}
	cp := make(KeyMap, len(keys))
	for a, p := range keys {
		cp[a] = p
	}
	return &Capture{keys: cp}, nil
}

// Held 按位 OR 出当前按住的逻辑按键；按 Actions 固定顺序轮询
func (c *Capture) Held(src Source) Mask {
	if src == nil {
		return 0
	}
	var m Mask
	for _, a := range Actions {
		if src.IsHeld(c.keys[a]) {
			m |= a.Bit()
		}
	}
	return m
}

// Keys 返回映射副本
func (c *Capture) Keys() KeyMap {
	cp := make(KeyMap, len(c.keys))
	for a, p := range c.keys {
		cp[a] = p
	}
	return cp
}

// EdgeDetector 记住上一帧的 Held，推导本帧的 Pressed
type EdgeDetector struct {
	prev Mask
}

// Next pressed = held &^ prev，并更新 prev
func (e *EdgeDetector) Next(held Mask) Mask {
	pressed := held &^ e.prev
	e.prev = held
	return pressed
}

// Previous 上一帧的 Held
func (e *EdgeDetector) Previous() Mask { return e.prev }

// Reset 视为上一帧无按键（held[-1] = 0）
func (e *EdgeDetector) Reset() { e.prev = 0 }
