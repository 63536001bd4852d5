package state

import "fmt"

// ID 状态机状态标识：纯数据，行为通过查表获得，不做多态分派
type ID uint8

const (
	Idle ID = iota
	Walk
	Crouch
	Jump
	Attack
	Hitstun
	Blockstun
	Knockdown
	count
)

var names = [count]string{
	Idle:      "idle",
	Walk:      "walk",
	Crouch:    "crouch",
	Jump:      "jump",
	Attack:    "attack",
	Hitstun:   "hitstun",
	Blockstun: "blockstun",
	Knockdown: "knockdown",
}

func (id ID) String() string {
	if id < count {
		return names[id]
	}
	return fmt.Sprintf("state(%d)", uint8(id))
}

// Valid 是否为已知状态
func (id ID) Valid() bool { return id < count }

// Parse 按名称查找
func Parse(name string) (ID, bool) {
	for i, n := range names {
		if n == name {
			return ID(i), true
		}
	}
	return 0, false
}

// All 全部已知状态
func All() []ID {
	out := make([]ID, 0, count)
	for i := ID(0); i < count; i++ {
		out = append(out, i)
	}
	return out
}
