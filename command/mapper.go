package command

import "duelarena/input"

// Input 单帧映射输入
type Input struct {
	Held        input.Mask
	Pressed     input.Mask
	FacingRight bool
	// CanAct 仅随输入透传；锁定期间照常映射并入缓冲，合法性在消费时判断
	CanAct bool
}

// Forward 相对朝向的“前”
func (in Input) Forward() input.Action {
	if in.FacingRight {
		return input.Right
	}
	return input.Left
}

// Back 相对朝向的“后”
func (in Input) Back() input.Action {
	if in.FacingRight {
		return input.Left
	}
	return input.Right
}

func (in Input) downForward() bool { return in.Held.Has(input.Down) && in.Held.Has(in.Forward()) }
func (in Input) downBack() bool    { return in.Held.Has(input.Down) && in.Held.Has(in.Back()) }
func (in Input) down() bool        { return in.Held.Has(input.Down) }

// Rule 一条优先级规则：Match 为真时产出 Type
type Rule struct {
	Name  string
	Type  Type
	Match func(Input) bool
}

func pressed(actions ...input.Action) func(Input) bool {
	m := input.MaskOf(actions...)
	return func(in Input) bool { return in.Pressed.HasAll(m) }
}

func pressedWith(cond func(Input) bool, actions ...input.Action) func(Input) bool {
	p := pressed(actions...)
	return func(in Input) bool { return p(in) && cond(in) }
}

// DefaultRules 默认优先级表，自上而下求值，越具体越靠前
func DefaultRules() []Rule {
	rules := []Rule{
		{Name: "s1+s2+s3", Type: Ultimate, Match: pressed(input.Special1, input.Special2, input.Special3)},
		{Name: "s1+s2", Type: SuperOne, Match: pressed(input.Special1, input.Special2)},
		{Name: "s2+s3", Type: SuperTwo, Match: pressed(input.Special2, input.Special3)},
		{Name: "s1+s3", Type: SuperThree, Match: pressed(input.Special1, input.Special3)},
	}

	specials := []struct {
		button                    input.Action
		plain, down, enh, downEnh Type
	}{
		{input.Special1, Special1, Special1Down, Special1Enhanced, Special1DownEnhanced},
		{input.Special2, Special2, Special2Down, Special2Enhanced, Special2DownEnhanced},
		{input.Special3, Special3, Special3Down, Special3Enhanced, Special3DownEnhanced},
	}
	for _, s := range specials {
		rules = append(rules,
			Rule{Name: "2" + s.button.String() + "+heavy", Type: s.downEnh, Match: pressedWith(Input.down, s.button, input.Heavy)},
			Rule{Name: s.button.String() + "+heavy", Type: s.enh, Match: pressed(s.button, input.Heavy)},
		)
	}
	for _, s := range specials {
		rules = append(rules,
			Rule{Name: "2" + s.button.String(), Type: s.down, Match: pressedWith(Input.down, s.button)},
			Rule{Name: s.button.String(), Type: s.plain, Match: pressed(s.button)},
		)
	}

	rules = append(rules,
		Rule{Name: "dash+heavy", Type: HeavyDash, Match: pressed(input.Dash, input.Heavy)},
		Rule{Name: "grab", Type: Grab, Match: pressed(input.Grab)},
		Rule{Name: "evade", Type: Evade, Match: pressed(input.Evade)},
		Rule{Name: "dash", Type: Dash, Match: pressed(input.Dash)},
	)

	normals := []struct {
		button                   input.Action
		fwd, back, down, neutral Type
	}{
		{input.Heavy, HeavyForward, HeavyBack, HeavyDown, HeavyNeutral},
		{input.Light, LightForward, LightBack, LightDown, LightNeutral},
	}
	for _, n := range normals {
		b := n.button.String()
		rules = append(rules,
			Rule{Name: "3" + b, Type: n.fwd, Match: pressedWith(Input.downForward, n.button)},
			Rule{Name: "1" + b, Type: n.back, Match: pressedWith(Input.downBack, n.button)},
			Rule{Name: "2" + b, Type: n.down, Match: pressedWith(Input.down, n.button)},
			Rule{Name: "5" + b, Type: n.neutral, Match: pressed(n.button)},
		)
	}

	return append(rules, Rule{Name: "up", Type: Jump, Match: pressed(input.Up)})
}

// Mapper (held, pressed, facing, lockout) → 至多一个 Type 的全函数
type Mapper struct {
	rules []Rule
}

// NewMapper 使用给定规则表；为空时使用 DefaultRules
func NewMapper(rules ...Rule) *Mapper {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Mapper{rules: rules}
}

// Map 返回第一条命中规则的类型，无命中返回 None
func (m *Mapper) Map(in Input) Type {
	if r, ok := m.Match(in); ok {
		return r.Type
	}
	return None
}

// Match 返回第一条命中的规则
func (m *Mapper) Match(in Input) (Rule, bool) {
	if in.Pressed == 0 {
		return Rule{}, false
	}
	for _, r := range m.rules {
		if r.Match(in) {
			return r, true
		}
	}
	return Rule{}, false
}

// Rules 规则表副本（按优先级排列）
func (m *Mapper) Rules() []Rule {
	out := make([]Rule, len(m.rules))
	copy(out, m.rules)
	return out
}
