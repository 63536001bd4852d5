package player

import (
	"errors"
	"fmt"
	"sort"

	"duelarena/character"
	"duelarena/fixed"
	"duelarena/state"
)

// ErrRecord 记录缺字段或字段类型不符
var ErrRecord = errors.New("player: invalid snapshot record")

// Record 扁平结构化记录：字段名 → 基本类型或数组
type Record map[string]any

// MoveResolver 将招式槽位名解析为角色数据中的招式
type MoveResolver func(name string) (*character.Move, bool)

// RecordFields 记录中的全部字段；序列化不得遗漏任何一个
var RecordFields = []string{
	"player_id",
	"position", "velocity", "is_grounded", "facing_right",
	"health", "max_health", "meter", "stamina", "max_stamina", "stamina_locked_until",
	"state_id", "state_frame", "lockout_frames", "invulnerable_frames", "current_move",
	"combo_count", "juggle_points_used", "damage_this_frame", "hit_this_frame", "blocked_this_frame",
	"hitboxes", "projectiles", "status_kinds", "status_remaining", "status_magnitudes",
	"cooldown_ids", "cooldown_frames",
}

// ToRecord 展平为记录；实体列表按行存为整数数组，冷却表按 id 排序后拆成两个并行数组
func (s *Snapshot) ToRecord() Record {
	hitboxes := make([][]int64, 0, len(s.Hitboxes))
	for _, h := range s.Hitboxes {
		hitboxes = append(hitboxes, []int64{
			int64(h.Box.X), int64(h.Box.Y), int64(h.Box.W), int64(h.Box.H),
			int64(h.Damage), int64(h.Hitstun), h.ExpiresAt,
		})
	}
	projectiles := make([][]int64, 0, len(s.Projectiles))
	for _, p := range s.Projectiles {
		projectiles = append(projectiles, []int64{
			int64(p.ID), int64(p.Position.X), int64(p.Position.Y),
			int64(p.Velocity.X), int64(p.Velocity.Y), int64(p.Damage), int64(p.Remaining),
		})
	}
	kinds := make([]string, 0, len(s.Statuses))
	remaining := make([]int64, 0, len(s.Statuses))
	magnitudes := make([]int64, 0, len(s.Statuses))
	for _, st := range s.Statuses {
		kinds = append(kinds, st.Kind)
		remaining = append(remaining, int64(st.Remaining))
		magnitudes = append(magnitudes, int64(st.Magnitude))
	}
	ids := s.CooldownIDs()
	frames := make([]int64, 0, len(ids))
	for _, id := range ids {
		frames = append(frames, int64(s.Cooldowns[id]))
	}
	move := ""
	if s.CurrentMove != nil {
		move = s.CurrentMove.Slot.Name()
	}

	return Record{
		"player_id":            int64(s.PlayerID),
		"position":             []int64{int64(s.Position.X), int64(s.Position.Y)},
		"velocity":             []int64{int64(s.Velocity.X), int64(s.Velocity.Y)},
		"is_grounded":          s.Grounded,
		"facing_right":         s.FacingRight,
		"health":               int64(s.Health),
		"max_health":           int64(s.MaxHealth),
		"meter":                int64(s.Meter),
		"stamina":              int64(s.Stamina),
		"max_stamina":          int64(s.MaxStamina),
		"stamina_locked_until": s.StaminaLockedUntil,
		"state_id":             s.StateID.String(),
		"state_frame":          int64(s.StateFrame),
		"lockout_frames":       int64(s.LockoutFrames),
		"invulnerable_frames":  int64(s.InvulnerableFrames),
		"current_move":         move,
		"combo_count":          int64(s.ComboCount),
		"juggle_points_used":   int64(s.JugglePointsUsed),
		"damage_this_frame":    s.DamageThisFrame,
		"hit_this_frame":       s.HitThisFrame,
		"blocked_this_frame":   s.BlockedThisFrame,
		"hitboxes":             hitboxes,
		"projectiles":          projectiles,
		"status_kinds":         kinds,
		"status_remaining":     remaining,
		"status_magnitudes":    magnitudes,
		"cooldown_ids":         ids,
		"cooldown_frames":      frames,
	}
}

// FromRecord 从记录完整重建快照；缺字段即报错
func FromRecord(r Record, resolve MoveResolver) (*Snapshot, error) {
	d := decoder{r: r}
	s := &Snapshot{
		PlayerID:           int(d.integer("player_id")),
		Position:           d.vec("position"),
		Velocity:           d.vec("velocity"),
		Grounded:           d.boolean("is_grounded"),
		FacingRight:        d.boolean("facing_right"),
		Health:             fixed.Scalar(d.integer("health")),
		MaxHealth:          fixed.Scalar(d.integer("max_health")),
		Meter:              fixed.Scalar(d.integer("meter")),
		Stamina:            fixed.Scalar(d.integer("stamina")),
		MaxStamina:         fixed.Scalar(d.integer("max_stamina")),
		StaminaLockedUntil: d.integer("stamina_locked_until"),
		StateFrame:         int32(d.integer("state_frame")),
		LockoutFrames:      int32(d.integer("lockout_frames")),
		InvulnerableFrames: int32(d.integer("invulnerable_frames")),
		ComboCount:         int32(d.integer("combo_count")),
		JugglePointsUsed:   int32(d.integer("juggle_points_used")),
		DamageThisFrame:    d.boolean("damage_this_frame"),
		HitThisFrame:       d.boolean("hit_this_frame"),
		BlockedThisFrame:   d.boolean("blocked_this_frame"),
		Cooldowns:          make(map[string]int32),
	}

	stateName := d.str("state_id")
	if id, ok := state.Parse(stateName); ok {
		s.StateID = id
	} else if d.err == nil {
		d.fail("state_id", "unknown state %q", stateName)
	}

	if name := d.str("current_move"); name != "" {
		if resolve == nil {
			d.fail("current_move", "no resolver for move %q", name)
		} else if m, ok := resolve(name); ok {
			s.CurrentMove = m
		} else {
			d.fail("current_move", "unknown move %q", name)
		}
	}

	for _, row := range d.rows("hitboxes", 7) {
		s.Hitboxes = append(s.Hitboxes, HitboxSnapshot{
			Box:       fixed.Rect{X: fixed.Scalar(row[0]), Y: fixed.Scalar(row[1]), W: fixed.Scalar(row[2]), H: fixed.Scalar(row[3])},
			Damage:    fixed.Scalar(row[4]),
			Hitstun:   int32(row[5]),
			ExpiresAt: row[6],
		})
	}
	for _, row := range d.rows("projectiles", 7) {
		s.Projectiles = append(s.Projectiles, ProjectileSnapshot{
			ID:        int32(row[0]),
			Position:  fixed.Vec2{X: fixed.Scalar(row[1]), Y: fixed.Scalar(row[2])},
			Velocity:  fixed.Vec2{X: fixed.Scalar(row[3]), Y: fixed.Scalar(row[4])},
			Damage:    fixed.Scalar(row[5]),
			Remaining: int32(row[6]),
		})
	}

	kinds := d.strings("status_kinds")
	remaining := d.ints("status_remaining")
	magnitudes := d.ints("status_magnitudes")
	if len(kinds) != len(remaining) || len(kinds) != len(magnitudes) {
		d.fail("status_kinds", "status arrays differ in length")
	} else {
		for i := range kinds {
			s.Statuses = append(s.Statuses, StatusSnapshot{Kind: kinds[i], Remaining: int32(remaining[i]), Magnitude: fixed.Scalar(magnitudes[i])})
		}
	}

	ids := d.strings("cooldown_ids")
	frames := d.ints("cooldown_frames")
	if len(ids) != len(frames) {
		d.fail("cooldown_ids", "cooldown arrays differ in length")
	} else {
		for i, id := range ids {
			s.Cooldowns[id] = int32(frames[i])
		}
	}

	if d.err != nil {
		return nil, d.err
	}
	return s, nil
}

// decoder 逐字段取值并记录第一个错误；数值兼容 int/int64/float64（JSON 解码结果）
type decoder struct {
	r   Record
	err error
}

func (d *decoder) fail(key, format string, args ...any) {
	if d.err == nil {
		d.err = fmt.Errorf("%w: %s: %s", ErrRecord, key, fmt.Sprintf(format, args...))
	}
}

func (d *decoder) get(key string) (any, bool) {
	v, ok := d.r[key]
	if !ok {
		d.fail(key, "missing")
	}
	return v, ok
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), float64(int64(n)) == n
	}
	return 0, false
}

func (d *decoder) integer(key string) int64 {
	v, ok := d.get(key)
	if !ok {
		return 0
	}
	n, ok := toInt(v)
	if !ok {
		d.fail(key, "want integer, got %T", v)
	}
	return n
}

func (d *decoder) boolean(key string) bool {
	v, ok := d.get(key)
	if !ok {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		d.fail(key, "want bool, got %T", v)
	}
	return b
}

func (d *decoder) str(key string) string {
	v, ok := d.get(key)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		d.fail(key, "want string, got %T", v)
	}
	return s
}

func intSlice(v any) ([]int64, bool) {
	switch a := v.(type) {
	case []int64:
		return a, true
	case []any:
		out := make([]int64, 0, len(a))
		for _, e := range a {
			n, ok := toInt(e)
			if !ok {
				return nil, false
			}
			out = append(out, n)
		}
		return out, true
	}
	return nil, false
}

func (d *decoder) ints(key string) []int64 {
	v, ok := d.get(key)
	if !ok {
		return nil
	}
	out, ok := intSlice(v)
	if !ok {
		d.fail(key, "want integer array, got %T", v)
	}
	return out
}

func (d *decoder) strings(key string) []string {
	v, ok := d.get(key)
	if !ok {
		return nil
	}
	switch a := v.(type) {
	case []string:
		return a
	case []any:
		out := make([]string, 0, len(a))
		for _, e := range a {
			s, ok := e.(string)
			if !ok {
				d.fail(key, "want string array element, got %T", e)
				return nil
			}
			out = append(out, s)
		}
		return out
	}
	d.fail(key, "want string array, got %T", v)
	return nil
}

func (d *decoder) vec(key string) fixed.Vec2 {
	a := d.ints(key)
	if a == nil {
		return fixed.Vec2{}
	}
	if len(a) != 2 {
		d.fail(key, "want 2 components, got %d", len(a))
		return fixed.Vec2{}
	}
	return fixed.Vec2{X: fixed.Scalar(a[0]), Y: fixed.Scalar(a[1])}
}

func (d *decoder) rows(key string, width int) [][]int64 {
	v, ok := d.get(key)
	if !ok {
		return nil
	}
	var raw []any
	switch a := v.(type) {
	case [][]int64:
		for _, row := range a {
			raw = append(raw, row)
		}
	case []any:
		raw = a
	default:
		d.fail(key, "want array of rows, got %T", v)
		return nil
	}
	out := make([][]int64, 0, len(raw))
	for i, e := range raw {
		row, ok := intSlice(e)
		if !ok || len(row) != width {
			d.fail(key, "row %d: want %d integers", i, width)
			return nil
		}
		out = append(out, row)
	}
	return out
}

// Keys 记录键排序列表（编码时保证输出顺序稳定）
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
