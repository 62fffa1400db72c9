package combat

import "fmt"

// reconstructedUnit mirrors only the fields a pure event consumer can
// derive from the event stream — never from game-design formulas
// (spec.md §4.9, "Reconstructor").
type reconstructedUnit struct {
	HP, MaxHP     int
	Mana, MaxMana int
	Shield        int
	Attack        int
	Defense       int
	AttackSpeed   float64
	Alive         bool
	effects       map[string]*Effect
}

// Diff describes one field where the reconstructed state disagreed
// with an authoritative snapshot.
type Diff struct {
	UnitID       string
	Field        string
	Reconstructed interface{}
	Snapshot     interface{}
}

func (d Diff) String() string {
	return fmt.Sprintf("unit %s: field %s reconstructed=%v snapshot=%v", d.UnitID, d.Field, d.Reconstructed, d.Snapshot)
}

// Reconstructor rebuilds combat state purely by replaying dispatched
// events — it never reads a Unit or Simulator directly. Used to prove
// the event log is a complete, sufficient description of the combat
// (spec.md §4.9, §8 "Reconstruction fidelity").
type Reconstructor struct {
	units map[string]*reconstructedUnit
}

// NewReconstructor creates an empty reconstructor, ready to replay
// from the first event of a combat (units_init).
func NewReconstructor() *Reconstructor {
	return &Reconstructor{units: make(map[string]*reconstructedUnit)}
}

// Apply folds one event into the reconstructed state. Events must be
// applied in ascending Seq order; out-of-order application produces
// undefined (and generally wrong) results.
func (r *Reconstructor) Apply(e Event) error {
	switch e.Type {
	case EventTypeUnitsInit:
		var p UnitsInitPayload
		if err := DecodePayload(e, &p); err != nil {
			return err
		}
		for _, u := range p.Units {
			r.units[u.ID] = &reconstructedUnit{
				HP: u.MaxHP, MaxHP: u.MaxHP,
				MaxMana: u.MaxMana,
				Attack:  u.Attack, Defense: u.Defense,
				AttackSpeed: u.AttackSpeed,
				Alive:       true,
				effects:     make(map[string]*Effect),
			}
		}

	case EventTypeUnitAttack:
		var p DamagePayload
		if err := DecodePayload(e, &p); err != nil {
			return err
		}
		u := r.units[p.TargetID]
		if u == nil {
			return fmt.Errorf("reconstructor: unit_attack references unknown unit %s", p.TargetID)
		}
		u.Shield -= p.ShieldAbsorbed
		u.HP = p.PostHP

	case EventTypeUnitHeal:
		var p UnitHealPayload
		if err := DecodePayload(e, &p); err != nil {
			return err
		}
		if u := r.units[p.TargetID]; u != nil {
			u.HP = p.PostHP
		}

	case EventTypeManaUpdate:
		var p ManaUpdatePayload
		if err := DecodePayload(e, &p); err != nil {
			return err
		}
		if u := r.units[p.UnitID]; u != nil {
			u.Mana = p.PostMana
		}

	case EventTypeStatBuff:
		var p StatBuffPayload
		if err := DecodePayload(e, &p); err != nil {
			return err
		}
		u := r.units[p.UnitID]
		if u == nil {
			return fmt.Errorf("reconstructor: stat_buff references unknown unit %s", p.UnitID)
		}
		applyReconstructedDelta(u, p.Stat, p.AppliedDelta)
		u.effects[p.EffectID] = &Effect{ID: p.EffectID, AppliedDelta: p.AppliedDelta, Stat: statFromString(p.Stat)}

	case EventTypeShieldApplied:
		var p ShieldAppliedPayload
		if err := DecodePayload(e, &p); err != nil {
			return err
		}
		u := r.units[p.UnitID]
		if u == nil {
			return fmt.Errorf("reconstructor: shield_applied references unknown unit %s", p.UnitID)
		}
		u.Shield += p.Amount
		u.effects[p.EffectID] = &Effect{ID: p.EffectID, Kind: EffectShield, Amount: p.Amount}

	case EventTypeUnitStunned:
		var p UnitStunnedPayload
		if err := DecodePayload(e, &p); err != nil {
			return err
		}
		if u := r.units[p.UnitID]; u != nil {
			u.effects[p.EffectID] = &Effect{ID: p.EffectID, Kind: EffectStun}
		}

	case EventTypeDamageOverTimeApplied:
		var p DamageOverTimeAppliedPayload
		if err := DecodePayload(e, &p); err != nil {
			return err
		}
		if u := r.units[p.UnitID]; u != nil {
			u.effects[p.EffectID] = &Effect{ID: p.EffectID, Kind: EffectDamageOverTime, Amount: p.PerTick, TicksRemaining: p.TotalTicks}
		}

	case EventTypeDamageOverTimeTick:
		var p DamageOverTimeTickPayload
		if err := DecodePayload(e, &p); err != nil {
			return err
		}
		u := r.units[p.UnitID]
		if u == nil {
			return fmt.Errorf("reconstructor: damage_over_time_tick references unknown unit %s", p.UnitID)
		}
		u.HP = p.PostHP
		if eff := u.effects[p.EffectID]; eff != nil {
			eff.TicksRemaining--
		}

	case EventTypeEffectExpired:
		var p EffectExpiredPayload
		if err := DecodePayload(e, &p); err != nil {
			return err
		}
		u := r.units[p.UnitID]
		if u == nil {
			return fmt.Errorf("reconstructor: effect_expired references unknown unit %s", p.UnitID)
		}
		if eff, ok := u.effects[p.EffectID]; ok {
			applyReconstructedDelta(u, eff.Stat.String(), p.RevertedDelta)
			delete(u.effects, p.EffectID)
		}

	case EventTypeDamageOverTimeExpired:
		var p DamageOverTimeExpiredPayload
		if err := DecodePayload(e, &p); err != nil {
			return err
		}
		if u := r.units[p.UnitID]; u != nil {
			delete(u.effects, p.EffectID)
		}

	case EventTypeUnitDied:
		var p UnitDiedPayload
		if err := DecodePayload(e, &p); err != nil {
			return err
		}
		if u := r.units[p.UnitID]; u != nil {
			u.Alive = false
			u.effects = make(map[string]*Effect)
		}
	}

	return nil
}

func applyReconstructedDelta(u *reconstructedUnit, stat string, delta int) {
	switch stat {
	case "attack":
		u.Attack += delta
	case "defense":
		u.Defense += delta
	case "attack_speed":
		u.AttackSpeed += float64(delta)
	case "max_hp":
		u.MaxHP += delta
		u.HP += delta
	case "max_mana":
		u.MaxMana += delta
	}
}

func statFromString(s string) Stat {
	switch s {
	case "attack":
		return StatAttack
	case "defense":
		return StatDefense
	case "attack_speed":
		return StatAttackSpeed
	case "max_hp":
		return StatMaxHP
	case "max_mana":
		return StatMaxMana
	case "hp_regen":
		return StatHPRegen
	default:
		return StatAttack
	}
}

// Validate compares the reconstructed state against an authoritative
// state_snapshot payload, returning every field that disagrees. An
// empty result means the event log alone was sufficient to rebuild
// this snapshot exactly (spec.md §8, "Reconstruction fidelity").
func (r *Reconstructor) Validate(snap StateSnapshotPayload) []Diff {
	var diffs []Diff
	for _, su := range snap.Units {
		u, ok := r.units[su.ID]
		if !ok {
			diffs = append(diffs, Diff{UnitID: su.ID, Field: "presence", Reconstructed: nil, Snapshot: su})
			continue
		}
		if u.HP != su.HP {
			diffs = append(diffs, Diff{su.ID, "hp", u.HP, su.HP})
		}
		if u.MaxHP != su.MaxHP {
			diffs = append(diffs, Diff{su.ID, "max_hp", u.MaxHP, su.MaxHP})
		}
		if u.Mana != su.Mana {
			diffs = append(diffs, Diff{su.ID, "mana", u.Mana, su.Mana})
		}
		if u.Shield != su.Shield {
			diffs = append(diffs, Diff{su.ID, "shield", u.Shield, su.Shield})
		}
		if u.Attack != su.Attack {
			diffs = append(diffs, Diff{su.ID, "attack", u.Attack, su.Attack})
		}
		if u.Defense != su.Defense {
			diffs = append(diffs, Diff{su.ID, "defense", u.Defense, su.Defense})
		}
		if u.Alive != su.Alive {
			diffs = append(diffs, Diff{su.ID, "alive", u.Alive, su.Alive})
		}
	}
	return diffs
}
