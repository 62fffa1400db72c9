package combat

// EffectKind is the closed set of active-modifier lifecycles a unit can
// carry (spec.md §3, "Effect (active modifier)").
type EffectKind uint8

const (
	EffectBuff EffectKind = iota
	EffectDebuff
	EffectShield
	EffectStun
	EffectDamageOverTime
)

// String returns the wire-format name of the effect kind.
func (k EffectKind) String() string {
	switch k {
	case EffectBuff:
		return "buff"
	case EffectDebuff:
		return "debuff"
	case EffectShield:
		return "shield"
	case EffectStun:
		return "stun"
	case EffectDamageOverTime:
		return "damage_over_time"
	default:
		return "unknown"
	}
}

// ValueType distinguishes a flat numeric modifier from one resolved as
// a percentage of the stat's value at application time.
type ValueType uint8

const (
	ValueFlat ValueType = iota
	ValuePercentage
)

// Effect is an active modifier on a unit. Every field here must be
// derivable from the application event that created it — the
// reconstructor rebuilds this struct from event payloads alone
// (spec.md §4.9).
type Effect struct {
	ID    string
	Kind  EffectKind
	Stat  Stat // meaningful for buff/debuff only
	Value float64
	ValueType ValueType

	// AppliedDelta is the exact signed integer applied to the stat at
	// application time (buff/debuff only). Expiration reverts exactly
	// this value — never a recomputation (spec.md §3 invariants).
	AppliedDelta int

	// Amount is the shield's remaining absorption pool snapshot at
	// application time (shield) or the per-tick damage (DoT).
	Amount int

	Interval       float64 // DoT seconds between ticks
	TicksRemaining int     // DoT ticks left
	NextTickTime   float64 // DoT: simulation seconds of the next tick
	DamageKind     DamageKind // DoT damage tag

	ExpiresAt float64 // simulation seconds; Infinity() for permanent
	Permanent bool

	Source string // applying unit id; "" for synergy-sourced effects
}

// Infinity is the sentinel expiry for permanent effects (synergy static
// buffs, and any effect with duration=∞ per spec.md §3).
const Infinity = 1e18

// Expired reports whether the effect's lifetime has elapsed at time now.
// Permanent effects never expire via this check — they are only
// removed by host death (spec.md §3, "Lifecycle").
func (e *Effect) Expired(now float64) bool {
	if e.Permanent {
		return false
	}
	return e.ExpiresAt <= now
}

// DamageKind tags a damage event for consumer presentation and
// conditional-predicate matching; it never changes arithmetic
// (GLOSSARY, "Damage kind").
type DamageKind uint8

const (
	DamagePhysical DamageKind = iota
	DamageMagical
	DamagePoison
	DamageHoly
	DamageTrue
)

// String returns the wire-format name of the damage kind.
func (d DamageKind) String() string {
	switch d {
	case DamagePhysical:
		return "physical"
	case DamageMagical:
		return "magical"
	case DamagePoison:
		return "poison"
	case DamageHoly:
		return "holy"
	case DamageTrue:
		return "true"
	default:
		return "unknown"
	}
}
