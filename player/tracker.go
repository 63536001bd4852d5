package player

import (
	"duelarena/character"
	"duelarena/fixed"
)

// 连段伤害修正：每段 -10%，最低 30%
var (
	prorationStep  = fixed.FromMilli(100)
	prorationFloor = fixed.FromMilli(300)
)

// Tracker 在快照之上维护体力、能量、耐力、连段与锁定/无敌倒计时。
// 伤害、能量等数值由外部命中结算调用写入，这里只负责记账不变量。
type Tracker struct {
	snap  *Snapshot
	stats character.Stats
}

func NewTracker(snap *Snapshot, stats character.Stats) *Tracker {
	return &Tracker{snap: snap, stats: stats}
}

// Snapshot 当前快照（可写，仅限本角色自己的 Tick 内修改）
func (t *Tracker) Snapshot() *Snapshot { return t.snap }

// Stats 角色数值
func (t *Tracker) Stats() character.Stats { return t.stats }

// Restore 用给定快照替换当前状态（开局重置、回滚恢复）
func (t *Tracker) Restore(s *Snapshot) { t.snap = s }

// Tick 每帧资源衰减：锁定/无敌倒计时、耐力回复、被动冷却
func (t *Tracker) Tick(frame int64) {
	t.TickLockout()
	t.RegenStamina(frame)
	t.TickCooldowns()
}

// TickLockout 锁定与无敌帧各减一，下限 0
func (t *Tracker) TickLockout() {
	if t.snap.LockoutFrames > 0 {
		t.snap.LockoutFrames--
	}
	if t.snap.InvulnerableFrames > 0 {
		t.snap.InvulnerableFrames--
	}
}

// RegenStamina frame ≥ StaminaLockedUntil 时按回复速率回复，封顶 MaxStamina
func (t *Tracker) RegenStamina(frame int64) {
	s := t.snap
	if frame < s.StaminaLockedUntil || s.Stamina >= s.MaxStamina {
		return
	}
	s.Stamina = (s.Stamina + t.stats.StaminaRegen).Clamp(0, s.MaxStamina)
}

// TickCooldowns 按 id 有序递减被动冷却，归零的条目顺手清理
func (t *Tracker) TickCooldowns() {
	for _, id := range t.snap.CooldownIDs() {
		left := t.snap.Cooldowns[id] - 1
		if left <= 0 {
			delete(t.snap.Cooldowns, id)
			continue
		}
		t.snap.Cooldowns[id] = left
	}
}

// EndFrame 清除三个单帧战斗标记；必须在本帧所有系统读取之后、下一帧输入之前调用
func (t *Tracker) EndFrame() {
	t.snap.DamageThisFrame = false
	t.snap.HitThisFrame = false
	t.snap.BlockedThisFrame = false
}

// ApplyLockout 设置锁定帧（取较大值，不会缩短已有硬直）
func (t *Tracker) ApplyLockout(frames int32) {
	if frames > t.snap.LockoutFrames {
		t.snap.LockoutFrames = frames
	}
}

// ApplyInvulnerability 设置无敌帧（取较大值）
func (t *Tracker) ApplyInvulnerability(frames int32) {
	if frames > t.snap.InvulnerableFrames {
		t.snap.InvulnerableFrames = frames
	}
}

// Proration 当前连段数对应的伤害系数
func (t *Tracker) Proration() fixed.Scalar {
	scale := fixed.FromInt(1) - prorationStep*fixed.Scalar(t.snap.ComboCount)
	if scale < prorationFloor {
		return prorationFloor
	}
	return scale
}

// ApplyDamage 按连段修正扣血，返回实际伤害；无敌期间不受伤
func (t *Tracker) ApplyDamage(amount fixed.Scalar) fixed.Scalar {
	if amount <= 0 || !t.snap.CanBeHit() {
		return 0
	}
	dealt := amount.Mul(t.Proration())
	if dealt > t.snap.Health {
		dealt = t.snap.Health
	}
	t.snap.Health -= dealt
	t.snap.DamageThisFrame = true
	return dealt
}

// RegisterHit 被命中：连段数 +1，累计浮空点数
func (t *Tracker) RegisterHit(jugglePoints int32) {
	t.snap.ComboCount++
	if jugglePoints > 0 {
		t.snap.JugglePointsUsed += jugglePoints
	}
	t.snap.HitThisFrame = true
}

// RegisterBlock 本帧防御成功
func (t *Tracker) RegisterBlock() { t.snap.BlockedThisFrame = true }

// ResetCombo 连段结束
func (t *Tracker) ResetCombo() {
	t.snap.ComboCount = 0
	t.snap.JugglePointsUsed = 0
}

// GainMeter 增加能量，封顶 MaxMeter
func (t *Tracker) GainMeter(amount fixed.Scalar) {
	t.snap.Meter = (t.snap.Meter + amount).Clamp(0, MaxMeter)
}

// SpendMeter 能量不足或 amount 为负时返回 false 且不扣除
func (t *Tracker) SpendMeter(amount fixed.Scalar) bool {
	if amount < 0 || amount > t.snap.Meter {
		return false
	}
	t.snap.Meter -= amount
	return true
}

// SpendStamina 扣除耐力并在 StaminaLockFrames 内暂停回复；不足时返回 false
func (t *Tracker) SpendStamina(amount fixed.Scalar, frame int64) bool {
	if amount > t.snap.Stamina {
		return false
	}
	if amount > 0 {
		t.snap.Stamina -= amount
		t.snap.StaminaLockedUntil = frame + t.stats.StaminaLockFrames
	}
	return true
}

// SetCooldown 设置被动冷却；frames <= 0 视为清除
func (t *Tracker) SetCooldown(id string, frames int32) {
	if frames <= 0 {
		delete(t.snap.Cooldowns, id)
		return
	}
	if t.snap.Cooldowns == nil {
		t.snap.Cooldowns = make(map[string]int32)
	}
	t.snap.Cooldowns[id] = frames
}

// CooldownReady 该被动是否可用
func (t *Tracker) CooldownReady(id string) bool { return t.snap.Cooldowns[id] <= 0 }
