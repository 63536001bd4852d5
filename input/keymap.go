package input

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/ini.v1"
)

// ErrUnmapped 某个必需的逻辑按键没有映射到物理输入
var ErrUnmapped = errors.New("input: action not mapped")

// KeyMap 逻辑按键 → 物理输入名称（如 "s"、"pad0.a"）
type KeyMap map[Action]string

// NewKeyMap 构造并校验按键映射；任何缺失都是构造期致命错误
func NewKeyMap(m map[Action]string) (KeyMap, error) {
	km := make(KeyMap, len(m))
	for a, phys := range m {
		km[a] = strings.TrimSpace(phys)
	}
	if err := km.Validate(); err != nil {
		return nil, err
	}
	return km, nil
}

// Validate 检查每个逻辑按键都有非空的物理映射，聚合所有缺失项
func (km KeyMap) Validate() error {
	var err error
	for _, a := range Actions {
		if strings.TrimSpace(km[a]) == "" {
			err = multierr.Append(err, fmt.Errorf("%w: %s", ErrUnmapped, a))
		}
	}
	return err
}

// LoadKeyMap 从 ini 节读取映射，例如：
//
//	[p1.keys]
//	up = w
//	light = j
func LoadKeyMap(sec *ini.Section) (KeyMap, error) {
	raw := make(map[Action]string, len(Actions))
	var err error
	for _, key := range sec.Keys() {
		a, ok := ParseAction(key.Name())
		if !ok {
			err = multierr.Append(err, fmt.Errorf("input: [%s] unknown action %q", sec.Name(), key.Name()))
			continue
		}
		raw[a] = key.String()
	}
	if err != nil {
		return nil, err
	}
	km, err := NewKeyMap(raw)
	if err != nil {
		return nil, fmt.Errorf("input: [%s]: %w", sec.Name(), err)
	}
	return km, nil
}

// DefaultKeyMap 1P/2P 默认键盘布局（1 或 2）
func DefaultKeyMap(player int) KeyMap {
	if player == 2 {
		return KeyMap{
			Up: "up", Down: "down", Left: "left", Right: "right",
			Light: "kp1", Heavy: "kp2", Special1: "kp4", Special2: "kp5", Special3: "kp6",
			Dash: "kp3", Grab: "kp7", Evade: "kp8",
		}
	}
	return KeyMap{
		Up: "w", Down: "s", Left: "a", Right: "d",
		Light: "j", Heavy: "k", Special1: "u", Special2: "i", Special3: "o",
		Dash: "l", Grab: "h", Evade: "space",
	}
}
