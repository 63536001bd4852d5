package input

import (
	"fmt"
	"strconv"
	"strings"
)

// ScriptStep 连续 Frames 帧按住 Held 中的物理输入
type ScriptStep struct {
	Frames int64
	Held   []string
}

// Script 预先编排的输入序列，用于演示与确定性回放；每帧结束后由调用方 Advance
type Script struct {
	steps []ScriptStep
	frame int64
	total int64
}

func NewScript(steps ...ScriptStep) *Script {
	s := &Script{steps: steps}
	for _, st := range steps {
		s.total += st.Frames
	}
	return s
}

// ParseScript 解析 "帧数:输入,输入 帧数:" 形式，如 "3:s,d 1: 2:j"；空输入表示松开
func ParseScript(text string) (*Script, error) {
	var steps []ScriptStep
	for _, tok := range strings.Fields(text) {
		n, held, ok := strings.Cut(tok, ":")
		if !ok {
			return nil, fmt.Errorf("input: script step %q missing ':'", tok)
		}
		frames, err := strconv.ParseInt(n, 10, 64)
		if err != nil || frames <= 0 {
			return nil, fmt.Errorf("input: script step %q: bad frame count", tok)
		}
		st := ScriptStep{Frames: frames}
		if held != "" {
			st.Held = strings.Split(held, ",")
		}
		steps = append(steps, st)
	}
	return NewScript(steps...), nil
}

func (s *Script) IsHeld(physical string) bool {
	at := s.frame
	for _, st := range s.steps {
		if at < st.Frames {
			for _, h := range st.Held {
				if h == physical {
					return true
				}
			}
			return false
		}
		at -= st.Frames
	}
	return false
}

// Advance 进入下一帧
func (s *Script) Advance() { s.frame++ }

// Frame 当前帧（从 0 开始）
func (s *Script) Frame() int64 { return s.frame }

// Done 序列已播放完，之后恒为全部松开
func (s *Script) Done() bool { return s.frame >= s.total }

// Rewind 回到开头
func (s *Script) Rewind() { s.frame = 0 }
