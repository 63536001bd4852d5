package character

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"duelarena/command"
	"duelarena/fixed"
)

// ErrMissingSlot 角色数据缺少某个招式槽位
var ErrMissingSlot = errors.New("character: move slot not populated")

// Slot 固定枚举的招式槽位
type Slot uint8

const (
	SlotLightNeutral Slot = iota
	SlotLightForward
	SlotLightBack
	SlotLightDown
	SlotHeavyNeutral
	SlotHeavyForward
	SlotHeavyBack
	SlotHeavyDown

	SlotSpecial1
	SlotSpecial1Down
	SlotSpecial1Enhanced
	SlotSpecial1DownEnhanced
	SlotSpecial2
	SlotSpecial2Down
	SlotSpecial2Enhanced
	SlotSpecial2DownEnhanced
	SlotSpecial3
	SlotSpecial3Down
	SlotSpecial3Enhanced
	SlotSpecial3DownEnhanced

	SlotSuperOne
	SlotSuperTwo
	SlotSuperThree
	SlotUltimate

	SlotDash
	SlotHeavyDash
	SlotGrab
	SlotEvade

	SlotCount
)

// 招式槽位与同名指令一一对应；Jump 不占槽位
var slotCommands = [SlotCount]command.Type{
	SlotLightNeutral:         command.LightNeutral,
	SlotLightForward:         command.LightForward,
	SlotLightBack:            command.LightBack,
	SlotLightDown:            command.LightDown,
	SlotHeavyNeutral:         command.HeavyNeutral,
	SlotHeavyForward:         command.HeavyForward,
	SlotHeavyBack:            command.HeavyBack,
	SlotHeavyDown:            command.HeavyDown,
	SlotSpecial1:             command.Special1,
	SlotSpecial1Down:         command.Special1Down,
	SlotSpecial1Enhanced:     command.Special1Enhanced,
	SlotSpecial1DownEnhanced: command.Special1DownEnhanced,
	SlotSpecial2:             command.Special2,
	SlotSpecial2Down:         command.Special2Down,
	SlotSpecial2Enhanced:     command.Special2Enhanced,
	SlotSpecial2DownEnhanced: command.Special2DownEnhanced,
	SlotSpecial3:             command.Special3,
	SlotSpecial3Down:         command.Special3Down,
	SlotSpecial3Enhanced:     command.Special3Enhanced,
	SlotSpecial3DownEnhanced: command.Special3DownEnhanced,
	SlotSuperOne:             command.SuperOne,
	SlotSuperTwo:             command.SuperTwo,
	SlotSuperThree:           command.SuperThree,
	SlotUltimate:             command.Ultimate,
	SlotDash:                 command.Dash,
	SlotHeavyDash:            command.HeavyDash,
	SlotGrab:                 command.Grab,
	SlotEvade:                command.Evade,
}

// Name 槽位名与指令名相同，如 "light_neutral"
func (s Slot) Name() string {
	if s < SlotCount {
		return slotCommands[s].String()
	}
	return fmt.Sprintf("slot(%d)", uint8(s))
}

func (s Slot) String() string { return s.Name() }

// Command 槽位对应的指令类型
func (s Slot) Command() command.Type {
	if s < SlotCount {
		return slotCommands[s]
	}
	return command.None
}

// SlotFor 指令对应的槽位；Jump / None 无槽位
func SlotFor(t command.Type) (Slot, bool) {
	for i, c := range slotCommands {
		if c == t {
			return Slot(i), true
		}
	}
	return 0, false
}

// ParseSlot 按名称查找槽位
func ParseSlot(name string) (Slot, bool) {
	for i := Slot(0); i < SlotCount; i++ {
		if i.Name() == name {
			return i, true
		}
	}
	return 0, false
}

// HitboxShape 相对角色位置的判定框（朝右时的偏移，朝左时镜像）
type HitboxShape struct {
	OffsetX, OffsetY fixed.Scalar
	W, H             fixed.Scalar
}

// Move 招式定义（帧数据与资源消耗），加载后只读
type Move struct {
	Slot         Slot
	Startup      int32
	Active       int32
	Recovery     int32
	Damage       fixed.Scalar
	Hitstun      int32
	Blockstun    int32
	MeterGain    fixed.Scalar
	MeterCost    fixed.Scalar
	StaminaCost  fixed.Scalar
	JugglePoints int32
	Invulnerable int32 // 起手无敌帧
	Hitbox       HitboxShape
}

// TotalFrames 起手 + 持续 + 收招
func (m *Move) TotalFrames() int32 { return m.Startup + m.Active + m.Recovery }

// Stats 角色数值常量
type Stats struct {
	WalkSpeed         fixed.Scalar
	Gravity           fixed.Scalar
	JumpForce         fixed.Scalar
	Weight            fixed.Scalar
	MaxHealth         fixed.Scalar
	MaxStamina        fixed.Scalar
	StaminaRegen      fixed.Scalar // 每帧回复量
	StaminaLockFrames int64        // 消耗体力后暂停回复的帧数
}

// DefaultStats 未配置时使用的默认值
func DefaultStats() Stats {
	return Stats{
		WalkSpeed:         fixed.FromMilli(4500),
		Gravity:           fixed.FromMilli(800),
		JumpForce:         fixed.FromInt(18),
		Weight:            fixed.FromInt(100),
		MaxHealth:         fixed.FromInt(1000),
		MaxStamina:        fixed.FromInt(100),
		StaminaRegen:      fixed.FromMilli(250),
		StaminaLockFrames: 45,
	}
}

// Presentation 展示用元数据，仿真不读取
type Presentation struct {
	DisplayName string
	Description string
	Portrait    string
	Color       string
}

// Data 静态角色数据，加载并校验后由所有使用方只读共享
type Data struct {
	ID           string
	Name         string
	Stats        Stats
	Presentation Presentation

	moves [SlotCount]*Move
}

// New 用给定招式构造角色数据并校验
func New(id, name string, stats Stats, pres Presentation, moves []*Move) (*Data, error) {
	d := &Data{ID: id, Name: name, Stats: stats, Presentation: pres}
	for _, m := range moves {
		if m == nil {
			continue
		}
		if m.Slot >= SlotCount {
			return nil, fmt.Errorf("character %s: invalid slot %d", id, m.Slot)
		}
		mv := *m
		d.moves[m.Slot] = &mv
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate 所有槽位必须填充，聚合列出缺失项
func (d *Data) Validate() error {
	var err error
	if d.ID == "" {
		err = multierr.Append(err, errors.New("character: empty id"))
	}
	for s := Slot(0); s < SlotCount; s++ {
		if d.moves[s] == nil {
			err = multierr.Append(err, fmt.Errorf("%w: %s/%s", ErrMissingSlot, d.ID, s))
		}
	}
	if d.Stats.MaxHealth <= 0 {
		err = multierr.Append(err, fmt.Errorf("character %s: max_health must be positive", d.ID))
	}
	if d.Stats.MaxStamina < 0 || d.Stats.MaxStamina > fixed.FromInt(100) {
		err = multierr.Append(err, fmt.Errorf("character %s: max_stamina must be within [0,100]", d.ID))
	}
	return err
}

// Move 按槽位查找招式
func (d *Data) Move(s Slot) *Move {
	if s >= SlotCount {
		return nil
	}
	return d.moves[s]
}

// MoveFor 按指令查找招式
func (d *Data) MoveFor(t command.Type) (*Move, bool) {
	s, ok := SlotFor(t)
	if !ok {
		return nil, false
	}
	m := d.moves[s]
	return m, m != nil
}

// MoveByName 按槽位名查找招式（快照反序列化时解析 current_move）
func (d *Data) MoveByName(name string) (*Move, bool) {
	s, ok := ParseSlot(name)
	if !ok {
		return nil, false
	}
	m := d.moves[s]
	return m, m != nil
}
