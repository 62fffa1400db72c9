package combat

// SynergyPresets is the registry of named team-wide synergy definitions
// a roster submission can reference by id, mirroring the way
// Archetypes lets a roster entry reference a unit preset by id.
var SynergyPresets = map[string]*SynergyDefinition{
	"guardians": {
		StaticBuffs: []StaticSynergyBuff{
			{Stat: StatDefense, Value: 15, ValueType: ValueFlat},
		},
		Hooks: []*SynergyTrigger{
			{
				Kind:            HookOnAllyHPBelow,
				Chance:          1.0,
				CooldownSeconds: 5,
				HPBelowPercent:  30,
				Effect: &SkillNode{
					Kind:      NodeShield,
					Selector:  TargetSelf,
					Amount:    80,
					ValueType: ValueFlat,
				},
			},
		},
	},
	"berserkers": {
		StaticBuffs: []StaticSynergyBuff{
			{Stat: StatAttack, Value: 20, ValueType: ValuePercentage},
		},
		Hooks: []*SynergyTrigger{
			{
				Kind:            HookOnAllyDeath,
				Chance:          1.0,
				CooldownSeconds: 0,
				Effect: &SkillNode{
					Kind:      NodeBuff,
					Selector:  TargetAllyTeam,
					Stat:      StatAttack,
					Amount:    10,
					ValueType: ValuePercentage,
					Duration:  10,
				},
			},
		},
	},
	"clerics": {
		Hooks: []*SynergyTrigger{
			{
				Kind:            HookPerSecond,
				Chance:          1.0,
				CooldownSeconds: 1,
				Effect: &SkillNode{
					Kind:      NodeHeal,
					Selector:  TargetLowestHPAlly,
					Amount:    25,
					ValueType: ValueFlat,
				},
			},
		},
	},
	"none": {},
}

// GetSynergy resolves a synergy preset id, falling back to an empty
// (no static buffs, no hooks) definition for unknown ids. Each call
// returns its own copy of the preset's hooks, so trigger counts and
// cooldowns start fresh in every combat.
func GetSynergy(id string) *SynergyDefinition {
	d, ok := SynergyPresets[id]
	if !ok {
		d = SynergyPresets["none"]
	}
	cp := &SynergyDefinition{StaticBuffs: d.StaticBuffs}
	for _, h := range d.Hooks {
		hc := *h
		cp.Hooks = append(cp.Hooks, &hc)
	}
	return cp
}
