package player

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duelarena/character"
	"duelarena/fixed"
	"duelarena/state"
)

var roster = character.Training()

func fullSnapshot() *Snapshot {
	return &Snapshot{
		PlayerID:           2,
		Position:           fixed.Vec2{X: 123456, Y: 7890},
		Velocity:           fixed.Vec2{X: -4500, Y: 12000},
		Grounded:           false,
		FacingRight:        true,
		Health:             fixed.FromMilli(812500),
		MaxHealth:          fixed.FromInt(1000),
		Meter:              fixed.FromMilli(42250),
		Stamina:            fixed.FromMilli(33300),
		MaxStamina:         fixed.FromInt(90),
		StaminaLockedUntil: 377,
		StateID:            state.Hitstun,
		StateFrame:         6,
		LockoutFrames:      9,
		InvulnerableFrames: 3,
		CurrentMove:        roster.Move(character.SlotSpecial2DownEnhanced),
		ComboCount:         4,
		JugglePointsUsed:   5,
		DamageThisFrame:    true,
		HitThisFrame:       true,
		BlockedThisFrame:   true,
		Hitboxes: []HitboxSnapshot{
			{Box: fixed.Rect{X: 1000, Y: 2000, W: 40000, H: 20000}, Damage: fixed.FromInt(90), Hitstun: 20, ExpiresAt: 380},
		},
		Projectiles: []ProjectileSnapshot{
			{ID: 7, Position: fixed.V(300, 80), Velocity: fixed.Vec2{X: 6500}, Damage: fixed.FromInt(60), Remaining: 45},
			{ID: 8, Position: fixed.V(310, 80), Velocity: fixed.Vec2{X: -6500}, Damage: fixed.FromInt(60), Remaining: 12},
		},
		Statuses: []StatusSnapshot{
			{Kind: "burn", Remaining: 120, Magnitude: fixed.FromMilli(1500)},
		},
		Cooldowns: map[string]int32{"parry": 30, "armor": 4},
	}
}

func TestRecordRoundTrip(t *testing.T) {
	orig := fullSnapshot()
	rec := orig.ToRecord()
	for _, k := range RecordFields {
		assert.Contains(t, rec, k)
	}
	assert.Len(t, rec, len(RecordFields))

	got, err := FromRecord(rec, roster.MoveByName)
	require.NoError(t, err)
	assert.Equal(t, orig, got)
}

func TestJSONRoundTrip(t *testing.T) {
	orig := fullSnapshot()
	b, err := json.Marshal(orig)
	require.NoError(t, err)

	got, err := DecodeJSON(b, roster.MoveByName)
	require.NoError(t, err)
	assert.Equal(t, orig, got)

	// 默认快照同样可往返
	def := NewSnapshot(1, roster.Stats, fixed.V(-200, 0), true)
	b, err = EncodeJSON(def)
	require.NoError(t, err)
	got, err = DecodeJSON(b, nil)
	require.NoError(t, err)
	assert.Equal(t, def, got)
}

func TestFromRecordErrors(t *testing.T) {
	rec := fullSnapshot().ToRecord()
	delete(rec, "meter")
	_, err := FromRecord(rec, roster.MoveByName)
	assert.ErrorIs(t, err, ErrRecord)
	assert.Contains(t, err.Error(), "meter")

	rec = fullSnapshot().ToRecord()
	_, err = FromRecord(rec, nil)
	assert.ErrorIs(t, err, ErrRecord)

	rec = fullSnapshot().ToRecord()
	rec["state_id"] = "flying"
	_, err = FromRecord(rec, roster.MoveByName)
	assert.ErrorIs(t, err, ErrRecord)

	rec = fullSnapshot().ToRecord()
	rec["hitboxes"] = [][]int64{{1, 2, 3}}
	_, err = FromRecord(rec, roster.MoveByName)
	assert.ErrorIs(t, err, ErrRecord)

	_, err = DecodeJSON([]byte(`{"player_id":`), nil)
	assert.ErrorIs(t, err, ErrRecord)
	_, err = DecodeJSON([]byte(`[1,2]`), nil)
	assert.ErrorIs(t, err, ErrRecord)
}

func TestSnapshotDerived(t *testing.T) {
	s := NewSnapshot(1, roster.Stats, fixed.V(100, 0), true)
	assert.True(t, s.CanAct())
	assert.True(t, s.CanBeHit())
	assert.False(t, s.IsAirborne())
	assert.Equal(t, fixed.Rect{X: fixed.FromInt(70), Y: 0, W: HurtboxWidth, H: HurtboxHeight}, s.Hurtbox())

	s.LockoutFrames = 1
	s.InvulnerableFrames = 1
	s.Grounded = false
	assert.False(t, s.CanAct())
	assert.False(t, s.CanBeHit())
	assert.True(t, s.IsAirborne())

	s.StateFrame = 10
	s.SetState(state.Idle)
	assert.Equal(t, int32(10), s.StateFrame)
	s.SetState(state.Attack)
	assert.Equal(t, int32(0), s.StateFrame)
}

func TestSnapshotClone(t *testing.T) {
	orig := fullSnapshot()
	c := orig.Clone()
	require.Equal(t, orig, c)

	c.Cooldowns["parry"] = 1
	c.Projectiles[0].Remaining = 0
	c.Statuses = append(c.Statuses, StatusSnapshot{Kind: "slow"})
	assert.Equal(t, int32(30), orig.Cooldowns["parry"])
	assert.Equal(t, int32(45), orig.Projectiles[0].Remaining)
	assert.Len(t, orig.Statuses, 1)
	assert.Same(t, orig.CurrentMove, c.CurrentMove)
}

func TestTrackerLockoutNeverNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		s := NewSnapshot(1, roster.Stats, fixed.Vec2{}, true)
		s.LockoutFrames = int32(rng.Intn(30))
		s.InvulnerableFrames = int32(rng.Intn(30))
		tr := NewTracker(s, roster.Stats)
		prevL, prevI := s.LockoutFrames, s.InvulnerableFrames
		steps := rng.Intn(60)
		for n := 0; n < steps; n++ {
			tr.TickLockout()
			require.GreaterOrEqual(t, s.LockoutFrames, int32(0))
			require.GreaterOrEqual(t, s.InvulnerableFrames, int32(0))
			require.LessOrEqual(t, s.LockoutFrames, prevL)
			require.LessOrEqual(t, s.InvulnerableFrames, prevI)
			prevL, prevI = s.LockoutFrames, s.InvulnerableFrames
		}
	}
}

func TestTrackerStaminaRegen(t *testing.T) {
	stats := roster.Stats
	s := NewSnapshot(1, stats, fixed.Vec2{}, true)
	tr := NewTracker(s, stats)

	require.True(t, tr.SpendStamina(fixed.FromInt(30), 100))
	assert.Equal(t, stats.MaxStamina-fixed.FromInt(30), s.Stamina)
	assert.Equal(t, 100+stats.StaminaLockFrames, s.StaminaLockedUntil)

	tr.RegenStamina(100 + stats.StaminaLockFrames - 1)
	assert.Equal(t, stats.MaxStamina-fixed.FromInt(30), s.Stamina)

	tr.RegenStamina(100 + stats.StaminaLockFrames)
	assert.Equal(t, stats.MaxStamina-fixed.FromInt(30)+stats.StaminaRegen, s.Stamina)

	for f := int64(0); f < 1000; f++ {
		tr.RegenStamina(200 + f)
	}
	assert.Equal(t, stats.MaxStamina, s.Stamina)

	assert.False(t, tr.SpendStamina(stats.MaxStamina+1, 2000))
	assert.Equal(t, stats.MaxStamina, s.Stamina)
}

func TestTrackerDamageAndCombo(t *testing.T) {
	s := NewSnapshot(1, roster.Stats, fixed.Vec2{}, true)
	tr := NewTracker(s, roster.Stats)

	assert.Equal(t, fixed.FromInt(100), tr.ApplyDamage(fixed.FromInt(100)))
	tr.RegisterHit(2)
	assert.True(t, s.DamageThisFrame)
	assert.True(t, s.HitThisFrame)

	// 第二段 90%
	assert.Equal(t, fixed.FromInt(90), tr.ApplyDamage(fixed.FromInt(100)))
	for i := 0; i < 10; i++ {
		tr.RegisterHit(1)
	}
	assert.Equal(t, fixed.FromMilli(300), tr.Proration())
	assert.Equal(t, int32(11), s.ComboCount)
	assert.Equal(t, int32(12), s.JugglePointsUsed)

	tr.ApplyInvulnerability(2)
	assert.Equal(t, fixed.Scalar(0), tr.ApplyDamage(fixed.FromInt(100)))

	tr.RegisterBlock()
	tr.EndFrame()
	assert.False(t, s.DamageThisFrame)
	assert.False(t, s.HitThisFrame)
	assert.False(t, s.BlockedThisFrame)

	tr.ResetCombo()
	assert.Equal(t, int32(0), s.ComboCount)
	assert.Equal(t, int32(0), s.JugglePointsUsed)

	s.InvulnerableFrames = 0
	dealt := tr.ApplyDamage(fixed.FromInt(5000))
	assert.Equal(t, fixed.FromInt(810), dealt)
	assert.True(t, s.IsKO())
}

func TestTrackerLockoutAndMeter(t *testing.T) {
	s := NewSnapshot(1, roster.Stats, fixed.Vec2{}, true)
	tr := NewTracker(s, roster.Stats)

	tr.ApplyLockout(10)
	tr.ApplyLockout(4)
	assert.Equal(t, int32(10), s.LockoutFrames)

	tr.GainMeter(fixed.FromInt(70))
	tr.GainMeter(fixed.FromInt(70))
	assert.Equal(t, MaxMeter, s.Meter)
	assert.False(t, tr.SpendMeter(fixed.FromInt(101)))
	assert.True(t, tr.SpendMeter(fixed.FromInt(50)))
	assert.Equal(t, fixed.FromInt(50), s.Meter)

	// 负数消耗不能把能量抬过上限
	tr.GainMeter(fixed.FromInt(30))
	assert.False(t, tr.SpendMeter(fixed.FromInt(-50)))
	assert.Equal(t, fixed.FromInt(80), s.Meter)
	assert.True(t, tr.SpendMeter(0))
	assert.Equal(t, fixed.FromInt(80), s.Meter)
}

func TestTrackerCooldowns(t *testing.T) {
	s := NewSnapshot(1, roster.Stats, fixed.Vec2{}, true)
	tr := NewTracker(s, roster.Stats)

	tr.SetCooldown("parry", 2)
	tr.SetCooldown("armor", 1)
	assert.False(t, tr.CooldownReady("parry"))
	assert.True(t, tr.CooldownReady("dodge"))

	tr.Tick(1)
	assert.Equal(t, map[string]int32{"parry": 1}, s.Cooldowns)
	tr.Tick(2)
	assert.Empty(t, s.Cooldowns)
	assert.True(t, tr.CooldownReady("parry"))

	tr.SetCooldown("armor", 5)
	tr.SetCooldown("armor", 0)
	assert.Empty(t, s.Cooldowns)

	bare := &Snapshot{PlayerID: 2}
	bt := NewTracker(bare, roster.Stats)
	assert.True(t, bt.CooldownReady("parry"))
	bt.SetCooldown("parry", 3)
	assert.Equal(t, map[string]int32{"parry": 3}, bare.Cooldowns)
	bt.TickCooldowns()
	assert.False(t, bt.CooldownReady("parry"))
}
