package command

import "fmt"

// Type 高层指令类型（玩家意图）
type Type uint8

const (
	None Type = iota

	LightNeutral
	LightForward
	LightBack
	LightDown
	HeavyNeutral
	HeavyForward
	HeavyBack
	HeavyDown

	Dash
	HeavyDash
	Grab
	Evade
	Jump

	Special1
	Special1Down
	Special1Enhanced
	Special1DownEnhanced
	Special2
	Special2Down
	Special2Enhanced
	Special2DownEnhanced
	Special3
	Special3Down
	Special3Enhanced
	Special3DownEnhanced

	SuperOne
	SuperTwo
	SuperThree
	Ultimate

	typeCount
)

var typeNames = [typeCount]string{
	None:                 "none",
	LightNeutral:         "light_neutral",
	LightForward:         "light_forward",
	LightBack:            "light_back",
	LightDown:            "light_down",
	HeavyNeutral:         "heavy_neutral",
	HeavyForward:         "heavy_forward",
	HeavyBack:            "heavy_back",
	HeavyDown:            "heavy_down",
	Dash:                 "dash",
	HeavyDash:            "heavy_dash",
	Grab:                 "grab",
	Evade:                "evade",
	Jump:                 "jump",
	Special1:             "special1",
	Special1Down:         "special1_down",
	Special1Enhanced:     "special1_enhanced",
	Special1DownEnhanced: "special1_down_enhanced",
	Special2:             "special2",
	Special2Down:         "special2_down",
	Special2Enhanced:     "special2_enhanced",
	Special2DownEnhanced: "special2_down_enhanced",
	Special3:             "special3",
	Special3Down:         "special3_down",
	Special3Enhanced:     "special3_enhanced",
	Special3DownEnhanced: "special3_down_enhanced",
	SuperOne:             "super_one",
	SuperTwo:             "super_two",
	SuperThree:           "super_three",
	Ultimate:             "ultimate",
}

func (t Type) String() string {
	if t < typeCount {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// Types 除 None 外的全部指令类型
func Types() []Type {
	out := make([]Type, 0, typeCount-1)
	for t := None + 1; t < typeCount; t++ {
		out = append(out, t)
	}
	return out
}

// Command 检测到的指令，不可变值
type Command struct {
	Type  Type
	Frame int64
}

func (c Command) String() string { return fmt.Sprintf("%s@%d", c.Type, c.Frame) }
