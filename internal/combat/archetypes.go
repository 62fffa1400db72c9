package combat

// Archetype is a named starting stat preset for a unit. Callers
// building a UnitConfig can start from one of these instead of hand
// filling every numeric field — grounded on the teacher's Weapons
// registry, generalized from one-shot weapon stats into a full combat
// stat block (name, HP, attack, defense, mana economy).
type Archetype struct {
	ID            string
	Name          string
	MaxHP         int
	BaseAttack    int
	BaseDefense   int
	AttackSpeed   float64
	MaxMana       int
	ManaOnAttack  int
	ManaOnHit     int
	HPRegenPerSec int
}

// Archetypes is the registry of built-in unit presets.
var Archetypes = map[string]Archetype{
	"recruit": {
		ID: "recruit", Name: "Recruit",
		MaxHP: 600, BaseAttack: 40, BaseDefense: 10,
		AttackSpeed: 0.8, MaxMana: 0,
	},
	"knight": {
		ID: "knight", Name: "Knight",
		MaxHP: 900, BaseAttack: 55, BaseDefense: 25,
		AttackSpeed: 0.7, MaxMana: 100, ManaOnAttack: 8, ManaOnHit: 4,
	},
	"assassin": {
		ID: "assassin", Name: "Assassin",
		MaxHP: 550, BaseAttack: 80, BaseDefense: 8,
		AttackSpeed: 1.4, MaxMana: 80, ManaOnAttack: 12, ManaOnHit: 2,
	},
	"mage": {
		ID: "mage", Name: "Mage",
		MaxHP: 480, BaseAttack: 60, BaseDefense: 5,
		AttackSpeed: 0.6, MaxMana: 60, ManaOnAttack: 15,
	},
	"cleric": {
		ID: "cleric", Name: "Cleric",
		MaxHP: 650, BaseAttack: 35, BaseDefense: 15,
		AttackSpeed: 0.7, MaxMana: 90, ManaOnAttack: 10,
		HPRegenPerSec: 4,
	},
	"tank": {
		ID: "tank", Name: "Tank",
		MaxHP: 1400, BaseAttack: 30, BaseDefense: 45,
		AttackSpeed: 0.5, MaxMana: 120, ManaOnHit: 6,
	},
	"berserker": {
		ID: "berserker", Name: "Berserker",
		MaxHP: 800, BaseAttack: 70, BaseDefense: 12,
		AttackSpeed: 1.0, MaxMana: 70, ManaOnAttack: 10, ManaOnHit: 3,
	},
	"archer": {
		ID: "archer", Name: "Archer",
		MaxHP: 520, BaseAttack: 65, BaseDefense: 10,
		AttackSpeed: 1.1, MaxMana: 75, ManaOnAttack: 9,
	},
}

// GetArchetype returns the named preset, defaulting to "recruit" for
// unknown ids so a malformed roster entry never crashes initialization.
func GetArchetype(id string) Archetype {
	if a, ok := Archetypes[id]; ok {
		return a
	}
	return Archetypes["recruit"]
}

// AllArchetypes returns every registered preset.
func AllArchetypes() []Archetype {
	out := make([]Archetype, 0, len(Archetypes))
	for _, a := range Archetypes {
		out = append(out, a)
	}
	return out
}

// NewUnitConfig builds a UnitConfig from an archetype plus the
// per-instance identity/position fields every roster entry must supply.
func NewUnitConfig(archetypeID, id, name string, row Row, index, starLevel int, skill *SkillNode) UnitConfig {
	a := GetArchetype(archetypeID)
	return UnitConfig{
		ID:            id,
		Name:          name,
		Row:           row,
		Index:         index,
		StarLevel:     starLevel,
		MaxHP:         a.MaxHP * starMultiplier(starLevel) / 10,
		BaseAttack:    a.BaseAttack * starMultiplier(starLevel) / 10,
		BaseDefense:   a.BaseDefense,
		AttackSpeed:   a.AttackSpeed,
		MaxMana:       a.MaxMana,
		ManaOnAttack:  a.ManaOnAttack,
		ManaOnHit:     a.ManaOnHit,
		HPRegenPerSec: a.HPRegenPerSec,
		Skill:         skill,
	}
}

// starMultiplier scales HP/attack by star level: 1-star units use the
// archetype's base numbers, each additional star adds 50%.
func starMultiplier(starLevel int) int {
	if starLevel < 1 {
		starLevel = 1
	}
	return 10 + (starLevel-1)*5
}
