package combat

// processAttacks resolves every unit whose attack is due this tick, in
// deterministic side-then-index order (spec.md §4.5, "tie-break
// ordering"). A unit that is stunned or dead is skipped without
// rescheduling; it becomes eligible again once the stun lifts because
// NextAttackTime is left untouched.
func (s *Simulator) processAttacks() {
	for _, u := range s.orderedUnits() {
		if !u.Alive || u.Stunned(s.now) {
			continue
		}
		if u.NextAttackTime > s.now {
			continue
		}

		target := s.selectBasicAttackTarget(u)
		if target == nil {
			continue
		}

		s.resolveAttack(u, target)
		u.NextAttackTime = s.now + attackInterval(u)

		s.maybeCastSkill(u)
	}
}

func attackInterval(u *Unit) float64 {
	if u.AttackSpeed <= 0 {
		return 1.0
	}
	return 1.0 / u.AttackSpeed
}

func (s *Simulator) resolveAttack(attacker, target *Unit) {
	raw := float64(attacker.Attack - target.Defense)
	if raw < 1 {
		raw = 1
	}

	s.emitDamage(attacker, target, raw, DamagePhysical, CauseAttack)

	if attacker.Alive {
		s.emitManaUpdate(attacker, attacker.manaOnAttack, ManaReasonAttack)
	}
	if target.Alive && target.manaOnHit > 0 {
		s.emitManaUpdate(target, target.manaOnHit, ManaReasonOnHit)
	}
}

// maybeCastSkill casts u's skill once its mana pool is full: mana is
// reset to 0 first, then skill_cast is emitted and the skill tree runs
// (spec.md §4.4, "Skill cast trigger").
func (s *Simulator) maybeCastSkill(u *Unit) {
	if u.skill == nil || u.MaxMana <= 0 || u.Mana < u.MaxMana {
		return
	}

	s.emitManaUpdate(u, -u.Mana, ManaReasonSkillCast)
	s.emitSkillCast(u, skillIDFor(u))
	s.executeSkillNode(u, u.skill, 0)
}

func skillIDFor(u *Unit) string {
	return u.ID + "-skill"
}

// selectBasicAttackTarget resolves step 1 of the attack protocol
// (spec.md §4.5): the lowest-indexed alive enemy in the front row; if
// none survive, the lowest-indexed alive enemy in the back row. This
// ordering is part of the wire protocol — reconstructors rely on it —
// so it is never randomized.
func (s *Simulator) selectBasicAttackTarget(caster *Unit) *Unit {
	enemies := sideUnits(s, caster.Side.Opponent())
	if t := lowestIndexAlive(aliveInRow(enemies, RowFront)); t != nil {
		return t
	}
	return lowestIndexAlive(aliveInRow(enemies, RowBack))
}

// selectTarget resolves a single-unit TargetSelector against caster's
// current combat state, for callers that only ever need one unit
// (conditional predicates). Team/front-row selectors are multi-target
// and are resolved by selectTargets instead.
func (s *Simulator) selectTarget(caster *Unit, sel TargetSelector) *Unit {
	switch sel {
	case TargetSelf:
		if caster.Alive {
			return caster
		}
		return nil
	case TargetRandomEnemy:
		return s.pickEnemy(caster)
	case TargetLowestHPEnemy:
		return lowestHP(sideUnits(s, caster.Side.Opponent()))
	case TargetLowestHPAlly:
		return lowestHP(sideUnits(s, caster.Side))
	default:
		return s.pickEnemy(caster)
	}
}

// selectTargets resolves a TargetSelector to the full set of units it
// names (spec.md §4.4, "Target selectors"). team/front selectors
// return every qualifying unit, so a skill node applies to each of
// them; an empty result means the node is skipped silently.
func (s *Simulator) selectTargets(caster *Unit, sel TargetSelector) []*Unit {
	switch sel {
	case TargetSelf:
		if caster.Alive {
			return []*Unit{caster}
		}
		return nil
	case TargetRandomEnemy:
		return oneOrNone(s.pickEnemy(caster))
	case TargetEnemyTeam:
		return aliveUnits(sideUnits(s, caster.Side.Opponent()))
	case TargetEnemyFront:
		return aliveInRow(sideUnits(s, caster.Side.Opponent()), RowFront)
	case TargetAllyTeam:
		return aliveUnits(sideUnits(s, caster.Side))
	case TargetAllyFront:
		return aliveInRow(sideUnits(s, caster.Side), RowFront)
	case TargetLowestHPEnemy:
		return oneOrNone(lowestHP(sideUnits(s, caster.Side.Opponent())))
	case TargetLowestHPAlly:
		return oneOrNone(lowestHP(sideUnits(s, caster.Side)))
	default:
		return nil
	}
}

func oneOrNone(u *Unit) []*Unit {
	if u == nil {
		return nil
	}
	return []*Unit{u}
}

// pickEnemy draws a living enemy uniformly across the whole enemy
// team (spec.md §4.4, "random_enemy draws from alive enemies
// uniformly") — unlike the basic-attack protocol and enemy_front, it
// is never biased toward the front row.
func (s *Simulator) pickEnemy(caster *Unit) *Unit {
	return s.randomAlive(sideUnits(s, caster.Side.Opponent()))
}

func aliveInRow(units []*Unit, row Row) []*Unit {
	out := make([]*Unit, 0, len(units))
	for _, u := range units {
		if u.Alive && u.Row == row {
			out = append(out, u)
		}
	}
	return out
}

func aliveUnits(units []*Unit) []*Unit {
	out := make([]*Unit, 0, len(units))
	for _, u := range units {
		if u.Alive {
			out = append(out, u)
		}
	}
	return out
}

// lowestIndexAlive returns the alive unit with the smallest Index in
// units, or nil if none survive.
func lowestIndexAlive(units []*Unit) *Unit {
	var best *Unit
	for _, u := range units {
		if !u.Alive {
			continue
		}
		if best == nil || u.Index < best.Index {
			best = u
		}
	}
	return best
}

// randomAlive deterministically selects one living unit from units,
// using the simulator's seeded RNG (spec.md §8, "Determinism").
func (s *Simulator) randomAlive(units []*Unit) *Unit {
	alive := make([]*Unit, 0, len(units))
	for _, u := range units {
		if u.Alive {
			alive = append(alive, u)
		}
	}
	if len(alive) == 0 {
		return nil
	}
	return alive[s.rng.Intn(len(alive))]
}

func lowestHP(units []*Unit) *Unit {
	var best *Unit
	for _, u := range units {
		if !u.Alive {
			continue
		}
		if best == nil || u.HP < best.HP || (u.HP == best.HP && u.Index < best.Index) {
			best = u
		}
	}
	return best
}
