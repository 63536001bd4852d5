package match

import (
	"duelarena/character"
	"duelarena/command"
	"duelarena/fixed"
	"duelarena/player"
)

// PlayerContext 单个角色的组合根：独占控制器与资源追踪器，
// 通过下标引用对手（只读、非拥有），通过 match 访问共享帧计数。
type PlayerContext struct {
	id       int
	match    *Match
	opponent int // match.contexts 下标

	controller *Controller
	tracker    *player.Tracker
	character  *character.Data
	logic      Logic

	spawn       fixed.Vec2
	spawnFacing bool
}

// ID 玩家编号（1 或 2）
func (pc *PlayerContext) ID() int { return pc.id }

// Controller 输入管线
func (pc *PlayerContext) Controller() *Controller { return pc.controller }

// Buffer 指令缓冲的便捷访问
func (pc *PlayerContext) Buffer() *command.Buffer { return pc.controller.Buffer() }

// Tracker 资源追踪器
func (pc *PlayerContext) Tracker() *player.Tracker { return pc.tracker }

// Snapshot 本角色当前快照（可写，仅限本角色 Tick 内）
func (pc *PlayerContext) Snapshot() *player.Snapshot { return pc.tracker.Snapshot() }

// Character 角色数据（只读）
func (pc *PlayerContext) Character() *character.Data { return pc.character }

// Frame 当前帧号
func (pc *PlayerContext) Frame() int64 { return pc.match.FramesElapsed() }

// Opponent 对手的上一帧视图（只读副本）。
// P1 先于 P2 结算，为保证双方对称，任何一方读到的都是对手上一帧结束时的状态。
func (pc *PlayerContext) Opponent() *player.Snapshot {
	return pc.match.views[pc.opponent]
}

// Tick 严格顺序：面向对手 → 控制器（输入→指令）→ 角色逻辑（消费指令）→ 资源结算
func (pc *PlayerContext) Tick(frame int64) error {
	s := pc.Snapshot()
	pc.faceOpponent(s)

	res, err := pc.controller.Tick(frame, s.FacingRight, s.CanAct())
	if err != nil {
		return err
	}
	pc.match.report(pc, res)

	if pc.logic != nil {
		pc.logic.Tick(pc, frame)
	}
	pc.tracker.Tick(frame)
	return nil
}

// 落地且可行动时转向对手（依据对手上一帧位置）
func (pc *PlayerContext) faceOpponent(s *player.Snapshot) {
	opp := pc.Opponent()
	if opp == nil || !s.Grounded || !s.CanAct() {
		return
	}
	switch {
	case opp.Position.X > s.Position.X:
		s.FacingRight = true
	case opp.Position.X < s.Position.X:
		s.FacingRight = false
	}
}

// reset 重建开局快照并清空输入管线
func (pc *PlayerContext) reset() {
	pc.tracker.Restore(player.NewSnapshot(pc.id, pc.character.Stats, pc.spawn, pc.spawnFacing))
	pc.controller.Reset()
}
