package player

import (
	"sort"

	"duelarena/character"
	"duelarena/fixed"
	"duelarena/state"
)

// 受击框尺寸占位：以后由角色数据驱动
var (
	HurtboxWidth  = fixed.FromInt(60)
	HurtboxHeight = fixed.FromInt(120)
)

// MaxMeter 能量槽上限
var MaxMeter = fixed.FromInt(100)

// HitboxSnapshot 当前生效的攻击判定
type HitboxSnapshot struct {
	Box       fixed.Rect
	Damage    fixed.Scalar
	Hitstun   int32
	ExpiresAt int64 // 最后生效的帧
}

// ProjectileSnapshot 飞行道具
type ProjectileSnapshot struct {
	ID        int32
	Position  fixed.Vec2
	Velocity  fixed.Vec2
	Damage    fixed.Scalar
	Remaining int32
}

// StatusSnapshot 状态效果（具体玩法由外部实现，这里只保存数据）
type StatusSnapshot struct {
	Kind      string
	Remaining int32
	Magnitude fixed.Scalar
}

// Snapshot 单个角色在某一帧的完整权威状态
type Snapshot struct {
	PlayerID int

	Position    fixed.Vec2
	Velocity    fixed.Vec2
	Grounded    bool
	FacingRight bool

	Health             fixed.Scalar
	MaxHealth          fixed.Scalar
	Meter              fixed.Scalar
	Stamina            fixed.Scalar
	MaxStamina         fixed.Scalar
	StaminaLockedUntil int64

	StateID            state.ID
	StateFrame         int32
	LockoutFrames      int32
	InvulnerableFrames int32
	CurrentMove        *character.Move // 指向角色数据，只读共享

	ComboCount       int32
	JugglePointsUsed int32
	DamageThisFrame  bool
	HitThisFrame     bool
	BlockedThisFrame bool

	Hitboxes    []HitboxSnapshot
	Projectiles []ProjectileSnapshot
	Statuses    []StatusSnapshot

	Cooldowns map[string]int32
}

// NewSnapshot 按角色数值创建开局状态
func NewSnapshot(playerID int, stats character.Stats, spawn fixed.Vec2, facingRight bool) *Snapshot {
	return &Snapshot{
		PlayerID:    playerID,
		Position:    spawn,
		Grounded:    true,
		FacingRight: facingRight,
		Health:      stats.MaxHealth,
		MaxHealth:   stats.MaxHealth,
		Stamina:     stats.MaxStamina,
		MaxStamina:  stats.MaxStamina,
		StateID:     state.Idle,
		Cooldowns:   make(map[string]int32),
	}
}

// CanAct ⇔ LockoutFrames == 0
func (s *Snapshot) CanAct() bool { return s.LockoutFrames == 0 }

// CanBeHit ⇔ InvulnerableFrames == 0
func (s *Snapshot) CanBeHit() bool { return s.InvulnerableFrames == 0 }

func (s *Snapshot) IsAirborne() bool { return !s.Grounded }

// IsKO 体力归零
func (s *Snapshot) IsKO() bool { return s.Health <= 0 }

// Hurtbox 按需计算：以 Position 为底边中点的固定尺寸矩形
func (s *Snapshot) Hurtbox() fixed.Rect {
	return fixed.AnchoredBottomCenter(s.Position, HurtboxWidth, HurtboxHeight)
}

// SetState 切换状态并清零状态帧计数
func (s *Snapshot) SetState(id state.ID) {
	if s.StateID != id {
		s.StateID = id
		s.StateFrame = 0
	}
}

// CooldownIDs 冷却表的有序键，逐帧遍历必须走这里
func (s *Snapshot) CooldownIDs() []string {
	ids := make([]string, 0, len(s.Cooldowns))
	for id := range s.Cooldowns {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone 深拷贝（CurrentMove 为共享只读引用，不复制）
func (s *Snapshot) Clone() *Snapshot {
	c := *s
	if s.Hitboxes != nil {
		c.Hitboxes = append([]HitboxSnapshot(nil), s.Hitboxes...)
	}
	if s.Projectiles != nil {
		c.Projectiles = append([]ProjectileSnapshot(nil), s.Projectiles...)
	}
	if s.Statuses != nil {
		c.Statuses = append([]StatusSnapshot(nil), s.Statuses...)
	}
	if s.Cooldowns != nil {
		c.Cooldowns = make(map[string]int32, len(s.Cooldowns))
		for k, v := range s.Cooldowns {
			c.Cooldowns[k] = v
		}
	}
	return &c
}
