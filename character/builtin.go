package character

import "duelarena/fixed"

// Training 内置训练角色：所有槽位使用统一的基础帧数据，测试与演示用
func Training() *Data {
	moves := make([]*Move, 0, SlotCount)
	for s := Slot(0); s < SlotCount; s++ {
		m := &Move{
			Slot:         s,
			Startup:      5,
			Active:       3,
			Recovery:     10,
			Damage:       fixed.FromInt(40),
			Hitstun:      14,
			Blockstun:    8,
			MeterGain:    fixed.FromInt(4),
			JugglePoints: 1,
			Hitbox:       HitboxShape{OffsetX: fixed.FromInt(30), OffsetY: fixed.FromInt(60), W: fixed.FromInt(40), H: fixed.FromInt(20)},
		}
		switch {
		case s >= SlotSuperOne && s <= SlotUltimate:
			m.Damage = fixed.FromInt(250)
			m.MeterCost = fixed.FromInt(50)
			if s == SlotUltimate {
				m.MeterCost = fixed.FromInt(100)
			}
			m.Invulnerable = 6
		case s >= SlotSpecial1 && s <= SlotSpecial3DownEnhanced:
			m.Damage = fixed.FromInt(90)
			m.StaminaCost = fixed.FromInt(10)
			if (s-SlotSpecial1)%4 >= 2 {
				m.MeterCost = fixed.FromInt(25)
			}
		case s == SlotDash || s == SlotHeavyDash || s == SlotEvade:
			m.Damage = 0
			m.StaminaCost = fixed.FromInt(15)
		}
		moves = append(moves, m)
	}
	d, err := New("training", "Training Dummy", DefaultStats(), Presentation{DisplayName: "Training Dummy", Color: "#888888"}, moves)
	if err != nil {
		panic(err)
	}
	return d
}
