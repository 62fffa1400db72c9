package combat

// processDamageOverTime fires every DoT tick whose NextTickTime has
// arrived. A unit killed mid-pass stops ticking further DoTs this
// tick — emitUnitDied already cleared its effect list
// (spec.md §4.6, "host-death cascade").
func (s *Simulator) processDamageOverTime() {
	for _, u := range s.orderedUnits() {
		if !u.Alive {
			continue
		}

		dots := dotEffects(u)
		for i, eff := range dots {
			if eff.NextTickTime > s.now {
				continue
			}
			if s.tickDamageOverTime(u, eff, dotTickIndex(eff, i)) {
				break
			}
		}
	}
}

func dotEffects(u *Unit) []*Effect {
	out := make([]*Effect, 0, 2)
	for _, e := range u.Effects {
		if e.Kind == EffectDamageOverTime {
			out = append(out, e)
		}
	}
	return out
}

func dotTickIndex(eff *Effect, ordinal int) int {
	_ = ordinal
	return eff.TicksRemaining
}

// processExpirations removes every effect whose lifetime has elapsed
// as of now, reverting buff/debuff deltas and clearing exhausted DoTs.
// Shield effect records expire independently of the absorption pool
// they granted (spec.md §4.3).
func (s *Simulator) processExpirations() {
	for _, u := range s.orderedUnits() {
		if !u.Alive {
			continue
		}

		expired := make([]*Effect, 0, 2)
		exhaustedDoTs := make([]*Effect, 0, 2)
		for _, e := range u.Effects {
			if e.Kind == EffectDamageOverTime {
				if e.TicksRemaining <= 0 {
					exhaustedDoTs = append(exhaustedDoTs, e)
				}
				continue
			}
			if e.Expired(s.now) {
				expired = append(expired, e)
			}
		}

		for _, e := range exhaustedDoTs {
			s.emitDamageOverTimeExpired(u, e)
		}
		for _, e := range expired {
			s.emitEffectExpired(u, e)
		}
	}
}
