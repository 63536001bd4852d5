package match

import "duelarena/state"

// Logic 角色逻辑委托（状态机 / 招式执行）；在控制器之后、资源结算之前调用
type Logic interface {
	Tick(pc *PlayerContext, frame int64)
}

// Behavior 某个状态每帧的行为
type Behavior func(pc *PlayerContext, frame int64)

// Table 状态 id → 行为
type Table map[state.ID]Behavior

// DefaultTable 基础行为：待机不消费指令；硬直类状态在锁定结束后回到待机
func DefaultTable() Table {
	recoverIdle := func(pc *PlayerContext, _ int64) {
		s := pc.Snapshot()
		if s.CanAct() {
			s.SetState(state.Idle)
		}
	}
	return Table{
		state.Idle:      func(*PlayerContext, int64) {},
		state.Hitstun:   recoverIdle,
		state.Blockstun: recoverIdle,
		state.Knockdown: recoverIdle,
	}
}

// Machine 数据驱动的状态机：按 StateID 查表，查不到时回退到 Idle 并上报
type Machine struct {
	table  Table
	onMiss func(pc *PlayerContext, id state.ID)
}

// NewMachine table 为空时使用 DefaultTable；复制一份后补齐 Idle，不改动调用方的表
func NewMachine(table Table, onMiss func(pc *PlayerContext, id state.ID)) *Machine {
	if table == nil {
		table = DefaultTable()
	}
	own := make(Table, len(table)+1)
	for id, b := range table {
		own[id] = b
	}
	if _, ok := own[state.Idle]; !ok {
		own[state.Idle] = func(*PlayerContext, int64) {}
	}
	return &Machine{table: own, onMiss: onMiss}
}

// Resolve 查找行为；未命中时把快照切回 Idle
func (m *Machine) Resolve(pc *PlayerContext) Behavior {
	s := pc.Snapshot()
	if b, ok := m.table[s.StateID]; ok {
		return b
	}
	missed := s.StateID
	s.SetState(state.Idle)
	if m.onMiss != nil {
		m.onMiss(pc, missed)
	}
	return m.table[state.Idle]
}

// Tick 执行当前状态行为；状态未变化时 StateFrame 递增
func (m *Machine) Tick(pc *PlayerContext, frame int64) {
	s := pc.Snapshot()
	before := s.StateID
	m.Resolve(pc)(pc, frame)
	if s.StateID == before {
		s.StateFrame++
	}
}
