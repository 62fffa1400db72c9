package combat

import (
	"encoding/json"

	"github.com/google/uuid"
)

// EventType enum for event classification (spec.md §6, "closed set").
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeUnitsInit
	EventTypeStateSnapshot
	EventTypeUnitAttack
	EventTypeManaUpdate
	EventTypeSkillCast
	EventTypeUnitHeal
	EventTypeStatBuff
	EventTypeEffectExpired
	EventTypeShieldApplied
	EventTypeUnitStunned
	EventTypeDamageOverTimeApplied
	EventTypeDamageOverTimeTick
	EventTypeDamageOverTimeExpired
	EventTypeUnitDied
	EventTypeCombatEnd
)

// EventVersion for backwards compatibility in replay.
const EventVersion uint8 = 1

// Event is the sealed, authoritative record of one state-mutating
// operation. Every field here is load-bearing: consumers (including
// the reconstructor) must treat Seq, EventID, Timestamp and Payload as
// verbatim authoritative values (spec.md §4.1, §4.2).
type Event struct {
	Version   uint8     `json:"version"`
	Type      EventType `json:"type"`
	Seq       uint64    `json:"seq"`       // monotonic, starts at 1
	EventID   string    `json:"eventId"`   // unique per event, enables idempotent replay
	Timestamp float64   `json:"timestamp"` // simulation seconds
	Payload   []byte    `json:"payload"`   // JSON-encoded type-specific payload
}

// String returns a human-readable event type name.
func (t EventType) String() string {
	switch t {
	case EventTypeUnitsInit:
		return "units_init"
	case EventTypeStateSnapshot:
		return "state_snapshot"
	case EventTypeUnitAttack:
		return "unit_attack"
	case EventTypeManaUpdate:
		return "mana_update"
	case EventTypeSkillCast:
		return "skill_cast"
	case EventTypeUnitHeal:
		return "unit_heal"
	case EventTypeStatBuff:
		return "stat_buff"
	case EventTypeEffectExpired:
		return "effect_expired"
	case EventTypeShieldApplied:
		return "shield_applied"
	case EventTypeUnitStunned:
		return "unit_stunned"
	case EventTypeDamageOverTimeApplied:
		return "damage_over_time_applied"
	case EventTypeDamageOverTimeTick:
		return "damage_over_time_tick"
	case EventTypeDamageOverTimeExpired:
		return "damage_over_time_expired"
	case EventTypeUnitDied:
		return "unit_died"
	case EventTypeCombatEnd:
		return "combat_end"
	default:
		return "unknown"
	}
}

// Typed payloads for each event type (spec.md §4.2 table).

// DamageCause tags what triggered a damage event.
type DamageCause uint8

const (
	CauseAttack DamageCause = iota
	CauseSkill
	CauseDoT
)

func (c DamageCause) String() string {
	switch c {
	case CauseAttack:
		return "attack"
	case CauseSkill:
		return "skill"
	case CauseDoT:
		return "dot"
	default:
		return "unknown"
	}
}

// ManaReason tags why a mana_update event occurred.
type ManaReason uint8

const (
	ManaReasonAttack ManaReason = iota
	ManaReasonOnHit
	ManaReasonSkillCast
	ManaReasonRegen
	ManaReasonSkillEffect
)

func (r ManaReason) String() string {
	switch r {
	case ManaReasonAttack:
		return "attack"
	case ManaReasonOnHit:
		return "on_hit"
	case ManaReasonSkillCast:
		return "skill_cast"
	case ManaReasonRegen:
		return "regen"
	case ManaReasonSkillEffect:
		return "skill_effect"
	default:
		return "unknown"
	}
}

// UnitsInitPayload carries the full starting roster for reconstruction.
type UnitsInitPayload struct {
	Units []UnitInitEntry `json:"units"`
}

// UnitInitEntry is one unit's starting snapshot at combat initialization.
type UnitInitEntry struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Side        string  `json:"side"`
	Row         string  `json:"row"`
	Index       int     `json:"index"`
	StarLevel   int     `json:"starLevel"`
	MaxHP       int     `json:"maxHp"`
	Attack      int     `json:"attack"`
	Defense     int     `json:"defense"`
	AttackSpeed float64 `json:"attackSpeed"`
	MaxMana     int     `json:"maxMana"`
}

// DamagePayload is emit_damage's authoritative payload.
type DamagePayload struct {
	AttackerID     string      `json:"attackerId"`
	TargetID       string      `json:"targetId"`
	PreHP          int         `json:"preHp"`
	PostHP         int         `json:"postHp"`
	AppliedDamage  int         `json:"appliedDamage"`
	ShieldAbsorbed int         `json:"shieldAbsorbed"`
	DamageKind     string      `json:"damageKind"`
	Cause          DamageCause `json:"cause"`
}

// UnitHealPayload is emit_unit_heal's authoritative payload.
type UnitHealPayload struct {
	HealerID string `json:"healerId"`
	TargetID string `json:"targetId"`
	Amount   int    `json:"amount"`
	PreHP    int    `json:"preHp"`
	PostHP   int    `json:"postHp"`
}

// ManaUpdatePayload is emit_mana_update's authoritative payload.
type ManaUpdatePayload struct {
	UnitID   string     `json:"unitId"`
	PreMana  int        `json:"preMana"`
	PostMana int        `json:"postMana"`
	Delta    int        `json:"delta"`
	Reason   ManaReason `json:"reason"`
}

// StatBuffPayload is emit_stat_buff's authoritative payload.
type StatBuffPayload struct {
	UnitID       string  `json:"unitId"`
	Stat         string  `json:"stat"`
	Value        float64 `json:"value"`
	ValueType    string  `json:"valueType"`
	Duration     float64 `json:"duration"` // 0 means permanent
	Permanent    bool    `json:"permanent"`
	AppliedDelta int     `json:"appliedDelta"`
	EffectID     string  `json:"effectId"`
	IsDebuff     bool    `json:"isDebuff"`
	Source       string  `json:"source"`
}

// ShieldAppliedPayload is emit_shield_applied's authoritative payload.
type ShieldAppliedPayload struct {
	UnitID   string  `json:"unitId"`
	Amount   int     `json:"amount"`
	Duration float64 `json:"duration"`
	EffectID string  `json:"effectId"`
	Source   string  `json:"source"`
}

// UnitStunnedPayload is emit_unit_stunned's authoritative payload.
type UnitStunnedPayload struct {
	UnitID   string  `json:"unitId"`
	Duration float64 `json:"duration"`
	EffectID string  `json:"effectId"`
	Source   string  `json:"source"`
}

// DamageOverTimeAppliedPayload is emit_damage_over_time_applied's payload.
type DamageOverTimeAppliedPayload struct {
	UnitID     string `json:"unitId"`
	PerTick    int    `json:"perTick"`
	Interval   float64 `json:"interval"`
	TotalTicks int    `json:"totalTicks"`
	DamageKind string `json:"damageKind"`
	EffectID   string `json:"effectId"`
	Source     string `json:"source"`
}

// DamageOverTimeTickPayload is emit_damage_over_time_tick's payload.
type DamageOverTimeTickPayload struct {
	EffectID string `json:"effectId"`
	UnitID   string `json:"unitId"`
	PerTick  int    `json:"perTick"`
	TickIndex int   `json:"tickIndex"`
	PostHP   int    `json:"postHp"`
}

// EffectExpiredPayload is emit_effect_expired's payload.
type EffectExpiredPayload struct {
	UnitID        string `json:"unitId"`
	EffectID      string `json:"effectId"`
	EffectKind    string `json:"effectKind"`
	RevertedDelta int    `json:"revertedDelta"`
}

// DamageOverTimeExpiredPayload is emit_damage_over_time_expired's payload.
type DamageOverTimeExpiredPayload struct {
	UnitID   string `json:"unitId"`
	EffectID string `json:"effectId"`
}

// UnitDiedPayload is emit_unit_died's payload.
type UnitDiedPayload struct {
	UnitID   string `json:"unitId"`
	KillerID string `json:"killerId"`
}

// SkillCastPayload is emit_skill_cast's payload.
type SkillCastPayload struct {
	CasterID string `json:"casterId"`
	SkillID  string `json:"skillId"`
}

// StateSnapshotPayload is emit_state_snapshot's payload — the full
// per-unit authoritative snapshot (spec.md §4.8).
type StateSnapshotPayload struct {
	SimTime   float64          `json:"simTime"`
	TickIndex uint64           `json:"tickIndex"`
	Units     []UnitSnapshot   `json:"units"`
}

// UnitSnapshot is one unit's full authoritative state at snapshot time.
type UnitSnapshot struct {
	ID          string          `json:"id"`
	Alive       bool            `json:"alive"`
	HP          int             `json:"hp"`
	MaxHP       int             `json:"maxHp"`
	Mana        int             `json:"mana"`
	MaxMana     int             `json:"maxMana"`
	Shield      int             `json:"shield"`
	Attack      int             `json:"attack"`
	Defense     int             `json:"defense"`
	AttackSpeed float64         `json:"attackSpeed"`
	Effects     []EffectSnapshot `json:"effects"`
}

// EffectSnapshot is the authoritative snapshot of one active effect.
type EffectSnapshot struct {
	ID             string  `json:"id"`
	Kind           string  `json:"kind"`
	Stat           string  `json:"stat,omitempty"`
	AppliedDelta   int     `json:"appliedDelta,omitempty"`
	Amount         int     `json:"amount,omitempty"`
	TicksRemaining int     `json:"ticksRemaining,omitempty"`
	ExpiresAt      float64 `json:"expiresAt,omitempty"`
	Permanent      bool    `json:"permanent,omitempty"`
}

// CombatEndPayload is the terminal event's payload, mirroring the
// Result record returned from Simulate (spec.md §4.8, §6).
type CombatEndPayload struct {
	Winner           string  `json:"winner"` // "A", "B", or "draw"
	DurationSeconds  float64 `json:"durationSeconds"`
	TimedOut         bool    `json:"timedOut"`
	SurvivorsA       []SurvivorEntry `json:"survivorsA"`
	SurvivorsB       []SurvivorEntry `json:"survivorsB"`
	AggregateStars   int     `json:"aggregateStarsOnWinner"`
}

// SurvivorEntry reports one surviving unit's final HP.
type SurvivorEntry struct {
	UnitID string `json:"unitId"`
	HP     int    `json:"hp"`
}

// EncodePayload marshals a payload to JSON bytes.
func EncodePayload(payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// DecodePayload unmarshals an event's payload into the given target.
func DecodePayload(e Event, target interface{}) error {
	return json.Unmarshal(e.Payload, target)
}

// newEventID draws a UUID from the supplied random source. Combats
// that pass a deterministically seeded reader get byte-identical
// event ids across replays of the same rng_seed (spec.md §8,
// "Determinism").
func newEventID(randSource interface {
	Read(p []byte) (n int, err error)
}) string {
	id, err := uuid.NewRandomFromReader(randSource)
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
