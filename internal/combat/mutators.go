package combat

import "math"

// This file holds every function that is allowed to mutate Unit or
// Effect state. Each one follows the same shape: mutate the canonical
// struct fields first, then build the event payload from the
// POST-mutation values, then dispatch exactly once. Apart from the
// attack scheduler's NextAttackTime (attack_processor.go), nothing
// outside this file writes to a Unit's or Effect's exported fields
// (spec.md §4.2, "payloads always carry post-mutation values").

func applyStatDelta(u *Unit, stat Stat, delta int) {
	switch stat {
	case StatAttack:
		u.Attack += delta
	case StatDefense:
		u.Defense += delta
	case StatAttackSpeed:
		u.AttackSpeed += float64(delta)
	case StatMaxHP:
		u.MaxHP += delta
		u.HP += delta
		if u.HP < 0 {
			u.HP = 0
		}
	case StatMaxMana:
		u.MaxMana += delta
		if u.Mana > u.MaxMana {
			u.Mana = u.MaxMana
		}
	case StatHPRegen:
		u.hpRegenPerSec += delta
	}
}

func resolveDelta(base float64, value float64, vt ValueType) int {
	if vt == ValuePercentage {
		return int(math.Round(base * value / 100.0))
	}
	return int(math.Round(value))
}

// effectsAtCapacity reports whether u already carries
// ResourceLimits.MaxActiveEffects effects, in which case further
// applications are silently skipped rather than growing without
// bound (spec.md §5).
func (s *Simulator) effectsAtCapacity(u *Unit) bool {
	return len(u.Effects) >= s.limits.MaxActiveEffects
}

func statBase(u *Unit, stat Stat) float64 {
	switch stat {
	case StatAttack:
		return float64(u.Attack)
	case StatDefense:
		return float64(u.Defense)
	case StatAttackSpeed:
		return u.AttackSpeed
	case StatMaxHP:
		return float64(u.MaxHP)
	case StatMaxMana:
		return float64(u.MaxMana)
	case StatHPRegen:
		return float64(u.hpRegenPerSec)
	default:
		return 0
	}
}

// emitUnitsInit records the full starting roster. Must be the first
// event dispatched in any combat (spec.md §4.8, "Initialization order").
func (s *Simulator) emitUnitsInit() {
	entries := make([]UnitInitEntry, 0, len(s.allUnits))
	for _, u := range s.orderedUnits() {
		entries = append(entries, UnitInitEntry{
			ID:          u.ID,
			Name:        u.Name,
			Side:        u.Side.String(),
			Row:         rowString(u.Row),
			Index:       u.Index,
			StarLevel:   u.StarLevel,
			MaxHP:       u.MaxHP,
			Attack:      u.Attack,
			Defense:     u.Defense,
			AttackSpeed: u.AttackSpeed,
			MaxMana:     u.MaxMana,
		})
	}
	s.dispatcher.Dispatch(EventTypeUnitsInit, s.now, UnitsInitPayload{Units: entries})
}

func rowString(r Row) string {
	if r == RowFront {
		return "front"
	}
	return "back"
}

// emitDamage applies raw damage to shield then HP, floors the applied
// amount at 1 (spec.md §8, "floor damage"), and dispatches the
// post-mutation result. killed reports whether this damage brought
// the target to 0 HP.
func (s *Simulator) emitDamage(attacker *Unit, target *Unit, rawDamage float64, kind DamageKind, cause DamageCause) (killed bool) {
	applied := int(math.Floor(rawDamage))
	if applied < 1 {
		applied = 1
	}

	preHP := target.HP
	remaining := applied
	shieldAbsorbed := 0

	if target.Shield > 0 {
		shieldAbsorbed = remaining
		if shieldAbsorbed > target.Shield {
			shieldAbsorbed = target.Shield
		}
		target.Shield -= shieldAbsorbed
		remaining -= shieldAbsorbed
	}

	target.HP -= remaining
	if target.HP < 0 {
		target.HP = 0
	}

	attackerID := ""
	if attacker != nil {
		attackerID = attacker.ID
	}

	s.dispatcher.Dispatch(EventTypeUnitAttack, s.now, DamagePayload{
		AttackerID:     attackerID,
		TargetID:       target.ID,
		PreHP:          preHP,
		PostHP:         target.HP,
		AppliedDamage:  applied,
		ShieldAbsorbed: shieldAbsorbed,
		DamageKind:     kind.String(),
		Cause:          cause,
	})

	if target.HP == 0 && target.Alive {
		target.Alive = false
		s.emitUnitDied(target, attacker)
		return true
	}
	return false
}

// emitUnitHeal raises target's HP, clamped to MaxHP.
func (s *Simulator) emitUnitHeal(healer, target *Unit, amount int) {
	if !target.Alive || amount <= 0 {
		return
	}
	preHP := target.HP
	target.HP += amount
	if target.HP > target.MaxHP {
		target.HP = target.MaxHP
	}

	healerID := ""
	if healer != nil {
		healerID = healer.ID
	}

	s.dispatcher.Dispatch(EventTypeUnitHeal, s.now, UnitHealPayload{
		HealerID: healerID,
		TargetID: target.ID,
		Amount:   target.HP - preHP,
		PreHP:    preHP,
		PostHP:   target.HP,
	})
}

// emitManaUpdate adjusts a unit's mana, clamped to [0, MaxMana].
func (s *Simulator) emitManaUpdate(u *Unit, delta int, reason ManaReason) {
	if delta == 0 {
		return
	}
	preMana := u.Mana
	u.Mana += delta
	if u.Mana > u.MaxMana {
		u.Mana = u.MaxMana
	}
	if u.Mana < 0 {
		u.Mana = 0
	}
	if u.Mana == preMana {
		return
	}

	s.dispatcher.Dispatch(EventTypeManaUpdate, s.now, ManaUpdatePayload{
		UnitID:   u.ID,
		PreMana:  preMana,
		PostMana: u.Mana,
		Delta:    u.Mana - preMana,
		Reason:   reason,
	})
}

// emitStatBuff applies a buff or debuff, computing AppliedDelta from
// the unit's CURRENT stat value so percentage modifiers resolve once,
// at application time, never recomputed at expiry (spec.md §3,
// "Effect invariants").
func (s *Simulator) emitStatBuff(u *Unit, stat Stat, value float64, vt ValueType, duration float64, permanent bool, source string) *Effect {
	if s.effectsAtCapacity(u) {
		return nil
	}
	base := statBase(u, stat)
	delta := resolveDelta(base, value, vt)
	isDebuff := delta < 0

	applyStatDelta(u, stat, delta)

	eff := &Effect{
		ID:           newEffectID(s),
		Kind:         effectKindFor(isDebuff),
		Stat:         stat,
		Value:        value,
		ValueType:    vt,
		AppliedDelta: delta,
		Permanent:    permanent,
		Source:       source,
	}
	if permanent {
		eff.ExpiresAt = Infinity
	} else {
		eff.ExpiresAt = s.now + duration
	}
	u.Effects = append(u.Effects, eff)

	s.dispatcher.Dispatch(EventTypeStatBuff, s.now, StatBuffPayload{
		UnitID:       u.ID,
		Stat:         stat.String(),
		Value:        value,
		ValueType:    valueTypeString(vt),
		Duration:     duration,
		Permanent:    permanent,
		AppliedDelta: delta,
		EffectID:     eff.ID,
		IsDebuff:     isDebuff,
		Source:       source,
	})

	return eff
}

func effectKindFor(isDebuff bool) EffectKind {
	if isDebuff {
		return EffectDebuff
	}
	return EffectBuff
}

func valueTypeString(vt ValueType) string {
	if vt == ValuePercentage {
		return "percentage"
	}
	return "flat"
}

// emitShieldApplied grants target a new absorption pool. Each
// application adds its own shield effect record, and the pool stacks
// with any remaining pool from earlier shields.
func (s *Simulator) emitShieldApplied(target *Unit, amount int, duration float64, source string) *Effect {
	if s.effectsAtCapacity(target) {
		return nil
	}
	target.Shield += amount

	eff := &Effect{
		ID:        newEffectID(s),
		Kind:      EffectShield,
		Amount:    amount,
		ExpiresAt: s.now + duration,
		Source:    source,
	}
	target.Effects = append(target.Effects, eff)

	s.dispatcher.Dispatch(EventTypeShieldApplied, s.now, ShieldAppliedPayload{
		UnitID:   target.ID,
		Amount:   amount,
		Duration: duration,
		EffectID: eff.ID,
		Source:   source,
	})

	return eff
}

// emitUnitStunned applies a stun; re-stunning while already stunned
// extends StunUntil only if the new expiry is later.
func (s *Simulator) emitUnitStunned(target *Unit, duration float64, source string) *Effect {
	if s.effectsAtCapacity(target) {
		return nil
	}
	expiry := s.now + duration
	if expiry > target.StunUntil {
		target.StunUntil = expiry
	}

	eff := &Effect{
		ID:        newEffectID(s),
		Kind:      EffectStun,
		ExpiresAt: expiry,
		Source:    source,
	}
	target.Effects = append(target.Effects, eff)

	s.dispatcher.Dispatch(EventTypeUnitStunned, s.now, UnitStunnedPayload{
		UnitID:   target.ID,
		Duration: duration,
		EffectID: eff.ID,
		Source:   source,
	})

	return eff
}

// emitDamageOverTimeApplied registers a new DoT effect scheduled to
// tick `ticks` times, `interval` seconds apart, starting one interval
// from now.
func (s *Simulator) emitDamageOverTimeApplied(target *Unit, perTick int, interval float64, ticks int, kind DamageKind, source string) *Effect {
	if s.effectsAtCapacity(target) {
		return nil
	}
	eff := &Effect{
		ID:             newEffectID(s),
		Kind:           EffectDamageOverTime,
		Amount:         perTick,
		Interval:       interval,
		TicksRemaining: ticks,
		NextTickTime:   s.now + interval,
		DamageKind:     kind,
		ExpiresAt:      s.now + interval*float64(ticks),
		Source:         source,
	}
	target.Effects = append(target.Effects, eff)

	s.dispatcher.Dispatch(EventTypeDamageOverTimeApplied, s.now, DamageOverTimeAppliedPayload{
		UnitID:     target.ID,
		PerTick:    perTick,
		Interval:   interval,
		TotalTicks: ticks,
		DamageKind: kind.String(),
		EffectID:   eff.ID,
		Source:     source,
	})

	return eff
}

// tickDamageOverTime applies one DoT tick for eff on target, advances
// its schedule, and reports whether the tick killed the target.
func (s *Simulator) tickDamageOverTime(target *Unit, eff *Effect, tickIndex int) (killed bool) {
	preHP := target.HP
	applied := eff.Amount
	if applied < 1 {
		applied = 1
	}

	target.HP -= applied
	if target.HP < 0 {
		target.HP = 0
	}
	_ = preHP

	s.dispatcher.Dispatch(EventTypeDamageOverTimeTick, s.now, DamageOverTimeTickPayload{
		EffectID:  eff.ID,
		UnitID:    target.ID,
		PerTick:   applied,
		TickIndex: tickIndex,
		PostHP:    target.HP,
	})

	eff.TicksRemaining--
	eff.NextTickTime = s.now + eff.Interval

	if target.HP == 0 && target.Alive {
		target.Alive = false
		s.emitUnitDied(target, nil)
		return true
	}
	return false
}

// emitEffectExpired removes eff from target and, for buff/debuff kinds,
// reverts exactly the AppliedDelta recorded at application time. Shield
// pool is deliberately left untouched: expiring the shield's effect
// record never zeroes the absorption pool it already granted
// (spec.md §4.3, "Shield Semantics").
func (s *Simulator) emitEffectExpired(target *Unit, eff *Effect) {
	target.removeEffect(eff.ID)

	reverted := 0
	switch eff.Kind {
	case EffectBuff, EffectDebuff:
		reverted = -eff.AppliedDelta
		applyStatDelta(target, eff.Stat, reverted)
	case EffectStun:
		// StunUntil already elapsed; nothing to revert.
	case EffectShield, EffectDamageOverTime:
		// handled by emitShieldApplied's pool semantics / emitDamageOverTimeExpired.
	}

	s.dispatcher.Dispatch(EventTypeEffectExpired, s.now, EffectExpiredPayload{
		UnitID:        target.ID,
		EffectID:      eff.ID,
		EffectKind:    eff.Kind.String(),
		RevertedDelta: reverted,
	})
}

// emitDamageOverTimeExpired removes a DoT effect once its tick budget
// is exhausted, without applying any further damage.
func (s *Simulator) emitDamageOverTimeExpired(target *Unit, eff *Effect) {
	target.removeEffect(eff.ID)
	s.dispatcher.Dispatch(EventTypeDamageOverTimeExpired, s.now, DamageOverTimeExpiredPayload{
		UnitID:   target.ID,
		EffectID: eff.ID,
	})
}

// emitUnitDied marks a unit dead, ending every effect it still carries
// before the death event itself: DoTs end via
// emit_damage_over_time_expired, every other non-shield effect ends
// via emit_effect_expired, and shield effects are simply removed — the
// shield pool they granted was already absorbed or forfeited, and
// spec.md §4.2's emit_unit_died only requires an event for "every
// remaining non-shield effect" (every effect removal elsewhere in the
// protocol is preceded by one of these two events; this is no
// exception).
func (s *Simulator) emitUnitDied(target *Unit, killer *Unit) {
	killerID := ""
	if killer != nil {
		killerID = killer.ID
	}

	remaining := append([]*Effect(nil), target.Effects...)
	for _, eff := range remaining {
		switch eff.Kind {
		case EffectDamageOverTime:
			s.emitDamageOverTimeExpired(target, eff)
		case EffectShield:
			target.removeEffect(eff.ID)
		default:
			s.emitEffectExpired(target, eff)
		}
	}

	s.dispatcher.Dispatch(EventTypeUnitDied, s.now, UnitDiedPayload{
		UnitID:   target.ID,
		KillerID: killerID,
	})

	s.notifySynergyOfDeath(target)
}

// emitSkillCast records a skill cast. Its effects are recorded as
// whatever further mutator events the skill tree executor dispatches.
func (s *Simulator) emitSkillCast(caster *Unit, skillID string) {
	s.dispatcher.Dispatch(EventTypeSkillCast, s.now, SkillCastPayload{
		CasterID: caster.ID,
		SkillID:  skillID,
	})
}
