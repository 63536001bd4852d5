package input

import "strings"

// Action 逻辑按键（与物理按键解耦）
type Action uint8

const (
	Up Action = iota
	Down
	Left
	Right
	Light
	Heavy
	Special1
	Special2
	Special3
	Dash
	Grab
	Evade
	actionCount
)

// Actions 全部逻辑按键，按位序排列
var Actions = []Action{Up, Down, Left, Right, Light, Heavy, Special1, Special2, Special3, Dash, Grab, Evade}

var actionNames = [actionCount]string{
	Up:       "up",
	Down:     "down",
	Left:     "left",
	Right:    "right",
	Light:    "light",
	Heavy:    "heavy",
	Special1: "special1",
	Special2: "special2",
	Special3: "special3",
	Dash:     "dash",
	Grab:     "grab",
	Evade:    "evade",
}

func (a Action) String() string {
	if a < actionCount {
		return actionNames[a]
	}
	return "unknown"
}

// ParseAction 按名称查找逻辑按键（大小写不敏感）
func ParseAction(name string) (Action, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range actionNames {
		if n == name {
			return Action(i), true
		}
	}
	return 0, false
}

// Bit 该按键在 Mask 中对应的位
func (a Action) Bit() Mask { return 1 << Mask(a) }

// Mask 按键位集合，每个逻辑按键占一位
type Mask uint32

// MaskOf 由若干按键组成位集合
func MaskOf(actions ...Action) Mask {
	var m Mask
	for _, a := range actions {
		m |= a.Bit()
	}
	return m
}

// Has 是否包含 a
func (m Mask) Has(a Action) bool { return m&a.Bit() != 0 }

// HasAll 是否包含 o 的所有位
func (m Mask) HasAll(o Mask) bool { return m&o == o }

// Subset m 是否为 o 的子集
func (m Mask) Subset(o Mask) bool { return m&^o == 0 }

// String 以 "down|right|light" 形式输出，便于日志
func (m Mask) String() string {
	if m == 0 {
		return "none"
	}
	parts := make([]string, 0, 4)
	for _, a := range Actions {
		if m.Has(a) {
			parts = append(parts, a.String())
		}
	}
	return strings.Join(parts, "|")
}
