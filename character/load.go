package character

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/ini.v1"

	"duelarena/fixed"
)

const movePrefix = "move."

var loadOptions = ini.LoadOptions{
	Insensitive:             false,
	IgnoreInlineComment:     false,
	SkipUnrecognizableLines: true,
	AllowShadows:            false,
}

// LoadFile 读取角色 ini 文件
func LoadFile(path string) (*Data, error) {
	f, err := ini.LoadSources(loadOptions, path)
	if err != nil {
		return nil, fmt.Errorf("character: failed to read %s: %w", path, err)
	}
	return Load(f)
}

// LoadBytes 从内存数据读取
func LoadBytes(b []byte) (*Data, error) {
	f, err := ini.LoadSources(loadOptions, b)
	if err != nil {
		return nil, fmt.Errorf("character: failed to read data: %w", err)
	}
	return Load(f)
}

// Load 解析角色定义：
//
//	[character]  id / name / display_name / description / portrait / color
//	[stats]      walk_speed / gravity / jump_force / weight / max_health / max_stamina / stamina_regen / stamina_lock_frames
//	[move.<slot>] startup / active / recovery / damage / hitstun / blockstun / meter_gain / meter_cost / stamina_cost / juggle / invulnerable / hitbox = x,y,w,h
func Load(f *ini.File) (*Data, error) {
	cs := f.Section("character")
	id := cs.Key("id").String()
	name := cs.Key("name").MustString(id)
	pres := Presentation{
		DisplayName: cs.Key("display_name").MustString(name),
		Description: cs.Key("description").String(),
		Portrait:    cs.Key("portrait").String(),
		Color:       cs.Key("color").String(),
	}

	stats, err := loadStats(f.Section("stats"))
	if err != nil {
		return nil, fmt.Errorf("character %s: %w", id, err)
	}

	var moves []*Move
	for _, sec := range f.Sections() {
		if !strings.HasPrefix(sec.Name(), movePrefix) {
			continue
		}
		slotName := strings.TrimPrefix(sec.Name(), movePrefix)
		slot, ok := ParseSlot(slotName)
		if !ok {
			err = multierr.Append(err, fmt.Errorf("character %s: unknown move slot %q", id, slotName))
			continue
		}
		m, merr := loadMove(slot, sec)
		if merr != nil {
			err = multierr.Append(err, fmt.Errorf("character %s: [%s]: %w", id, sec.Name(), merr))
			continue
		}
		moves = append(moves, m)
	}
	if err != nil {
		return nil, err
	}
	return New(id, name, stats, pres, moves)
}

func loadStats(sec *ini.Section) (Stats, error) {
	s := DefaultStats()
	fields := []struct {
		key string
		dst *fixed.Scalar
	}{
		{"walk_speed", &s.WalkSpeed},
		{"gravity", &s.Gravity},
		{"jump_force", &s.JumpForce},
		{"weight", &s.Weight},
		{"max_health", &s.MaxHealth},
		{"max_stamina", &s.MaxStamina},
		{"stamina_regen", &s.StaminaRegen},
	}
	var err error
	for _, fd := range fields {
		if e := scalarKey(sec, fd.key, fd.dst); e != nil {
			err = multierr.Append(err, e)
		}
	}
	if sec.HasKey("stamina_lock_frames") {
		v, e := sec.Key("stamina_lock_frames").Int64()
		if e != nil {
			err = multierr.Append(err, fmt.Errorf("stamina_lock_frames: %w", e))
		} else {
			s.StaminaLockFrames = v
		}
	}
	return s, err
}

func loadMove(slot Slot, sec *ini.Section) (*Move, error) {
	m := &Move{Slot: slot}
	ints := []struct {
		key string
		dst *int32
	}{
		{"startup", &m.Startup},
		{"active", &m.Active},
		{"recovery", &m.Recovery},
		{"hitstun", &m.Hitstun},
		{"blockstun", &m.Blockstun},
		{"juggle", &m.JugglePoints},
		{"invulnerable", &m.Invulnerable},
	}
	var err error
	for _, fd := range ints {
		if !sec.HasKey(fd.key) {
			continue
		}
		v, e := strconv.ParseInt(sec.Key(fd.key).String(), 10, 32)
		if e != nil || v < 0 {
			err = multierr.Append(err, fmt.Errorf("%s: invalid frame count %q", fd.key, sec.Key(fd.key).String()))
			continue
		}
		*fd.dst = int32(v)
	}
	scalars := []struct {
		key string
		dst *fixed.Scalar
	}{
		{"damage", &m.Damage},
		{"meter_gain", &m.MeterGain},
		{"meter_cost", &m.MeterCost},
		{"stamina_cost", &m.StaminaCost},
	}
	for _, fd := range scalars {
		if e := scalarKey(sec, fd.key, fd.dst); e != nil {
			err = multierr.Append(err, e)
		}
	}
	if sec.HasKey("hitbox") {
		parts := sec.Key("hitbox").Strings(",")
		if len(parts) != 4 {
			err = multierr.Append(err, fmt.Errorf("hitbox: want x,y,w,h, got %q", sec.Key("hitbox").String()))
		} else {
			dst := []*fixed.Scalar{&m.Hitbox.OffsetX, &m.Hitbox.OffsetY, &m.Hitbox.W, &m.Hitbox.H}
			for i, p := range parts {
				v, e := fixed.Parse(p)
				if e != nil {
					err = multierr.Append(err, fmt.Errorf("hitbox: %w", e))
					continue
				}
				*dst[i] = v
			}
		}
	}
	if m.Startup == 0 && m.Active == 0 {
		err = multierr.Append(err, fmt.Errorf("move has no startup or active frames"))
	}
	return m, err
}

func scalarKey(sec *ini.Section, key string, dst *fixed.Scalar) error {
	if !sec.HasKey(key) {
		return nil
	}
	v, err := fixed.Parse(sec.Key(key).String())
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = v
	return nil
}
