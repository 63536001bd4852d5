package server

import "duelarena/input"

// Seat 对局中的一个席位（1P/2P），由远程手柄驱动；配置了脚本时无人占座也会行动
type Seat struct {
	ID      int
	Source  *input.HeldSet // 平台输入状态，只在 Tick 线程中修改
	Conn    *ClientConn    // 当前占用该席位的连接，空表示无人
	script  *input.Script
	piloted bool // 收到过手柄输入；只在 Tick 线程中读写
	lastSeq int64
}

func newSeat(id int, script *input.Script) *Seat {
	return &Seat{ID: id, Source: input.NewHeldSet(), script: script}
}

// IsHeld 手柄接管后只看手柄，否则按脚本
func (s *Seat) IsHeld(physical string) bool {
	if !s.piloted && s.script != nil {
		return s.script.IsHeld(physical)
	}
	return s.Source.IsHeld(physical)
}

// advance 脚本进入下一帧，播完后从头循环
func (s *Seat) advance() {
	if s.script == nil {
		return
	}
	s.script.Advance()
	if s.script.Done() {
		s.script.Rewind()
	}
}

// apply 写入一条手柄状态；序列号不大于已处理的视为旧消息
func (s *Seat) apply(in PadInput) bool {
	if in.Seq != 0 && in.Seq <= s.lastSeq {
		return false
	}
	if in.Seq != 0 {
		s.lastSeq = in.Seq
	}
	s.piloted = true
	s.Source.Set(in.Held...)
	return true
}

// release 离席：松开所有按键，序列号归零
func (s *Seat) release() {
	s.Conn = nil
	s.piloted = false
	s.lastSeq = 0
	s.Source.Clear()
}
