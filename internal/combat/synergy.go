package combat

// SynergyHookKind is the closed set of events a synergy trigger can
// react to, beyond its one-time static buffs at combat start
// (spec.md §4.7, "Synergy Engine").
type SynergyHookKind uint8

const (
	HookOnEnemyDeath SynergyHookKind = iota
	HookOnAllyDeath
	HookPerSecond
	HookOnAllyHPBelow
	HookOnCombatStart
)

// SynergyTrigger is one conditional synergy reaction: an effect tree
// applied to the owning side whenever its hook fires, gated by chance,
// a cooldown, and a lifetime trigger cap.
type SynergyTrigger struct {
	Kind            SynergyHookKind
	Chance          float64 // 0..1; 1 always fires
	CooldownSeconds float64
	MaxTriggers     int // 0 means unlimited
	HPBelowPercent  float64

	Effect *SkillNode

	lastFired    float64
	firedBefore  bool
	triggerCount int
}

// StaticSynergyBuff is a permanent team-wide modifier applied once,
// before the first tick, and emitted as a real stat_buff event per
// unit so the reconstructor can rebuild it purely from the log
// (spec.md §9, "no formulas at replay time").
type StaticSynergyBuff struct {
	Stat      Stat
	Value     float64
	ValueType ValueType
}

// SynergyDefinition bundles one side's static buffs and event-hooked
// triggers. Grounded on the teacher's team.go trait bonuses,
// generalized from a kill-count scoreboard into dispatched buff/skill
// events (spec.md §4.7).
type SynergyDefinition struct {
	StaticBuffs []StaticSynergyBuff
	Hooks       []*SynergyTrigger
}

func (s *Simulator) applyInitialSynergies() {
	s.applySideSynergy(s.unitsA, s.synergyA, HookOnCombatStart)
	s.applySideSynergy(s.unitsB, s.synergyB, HookOnCombatStart)
}

func (s *Simulator) applySideSynergy(units []*Unit, def *SynergyDefinition, startHook SynergyHookKind) {
	if def == nil {
		return
	}
	for _, u := range units {
		for _, buff := range def.StaticBuffs {
			s.emitStatBuff(u, buff.Stat, buff.Value, buff.ValueType, 0, true, "synergy")
		}
	}
	for _, hook := range def.Hooks {
		if hook.Kind == startHook {
			s.fireSynergyHook(units, hook)
		}
	}
}

// processSynergyHooks evaluates per-second and ally-HP-below hooks
// for both sides once per tick. Death-triggered hooks (on_enemy_death,
// on_ally_death) are evaluated inline in emitUnitDied via
// notifySynergyOfDeath, not here.
func (s *Simulator) processSynergyHooks() {
	s.evalPerSecond(s.unitsA, s.synergyA)
	s.evalPerSecond(s.unitsB, s.synergyB)
	s.evalHPBelow(s.unitsA, s.synergyA)
	s.evalHPBelow(s.unitsB, s.synergyB)
}

func (s *Simulator) evalPerSecond(units []*Unit, def *SynergyDefinition) {
	if def == nil {
		return
	}
	for _, hook := range def.Hooks {
		if hook.Kind != HookPerSecond {
			continue
		}
		// fire once per whole simulation-second boundary crossed.
		if int64(s.now) == int64(hook.lastFired) && hook.firedBefore {
			continue
		}
		s.tryFireHook(units, hook)
	}
}

func (s *Simulator) evalHPBelow(units []*Unit, def *SynergyDefinition) {
	if def == nil {
		return
	}
	for _, u := range units {
		if !u.Alive {
			continue
		}
		if u.MaxHP <= 0 || float64(u.HP)/float64(u.MaxHP)*100.0 >= hpBelowThreshold(def) {
			continue
		}
		for _, hook := range def.Hooks {
			if hook.Kind == HookOnAllyHPBelow {
				s.tryFireHook(units, hook)
			}
		}
	}
}

func hpBelowThreshold(def *SynergyDefinition) float64 {
	for _, h := range def.Hooks {
		if h.Kind == HookOnAllyHPBelow {
			return h.HPBelowPercent
		}
	}
	return 0
}

// notifySynergyOfDeath fires on_ally_death / on_enemy_death hooks for
// both sides in response to victim's death.
func (s *Simulator) notifySynergyOfDeath(victim *Unit) {
	allySide := victim.Side
	enemySide := victim.Side.Opponent()

	s.fireDeathHooks(sideUnits(s, allySide), s.synergyOf(allySide), HookOnAllyDeath)
	s.fireDeathHooks(sideUnits(s, enemySide), s.synergyOf(enemySide), HookOnEnemyDeath)
}

func (s *Simulator) synergyOf(side Side) *SynergyDefinition {
	if side == SideA {
		return s.synergyA
	}
	return s.synergyB
}

func (s *Simulator) fireDeathHooks(units []*Unit, def *SynergyDefinition, kind SynergyHookKind) {
	if def == nil {
		return
	}
	for _, hook := range def.Hooks {
		if hook.Kind == kind {
			s.tryFireHook(units, hook)
		}
	}
}

func (s *Simulator) tryFireHook(units []*Unit, hook *SynergyTrigger) {
	if hook.MaxTriggers > 0 && hook.triggerCount >= hook.MaxTriggers {
		return
	}
	if hook.firedBefore && s.now-hook.lastFired < hook.CooldownSeconds {
		return
	}
	if hook.Chance < 1.0 && s.rng.Float64() >= hook.Chance {
		return
	}
	s.fireSynergyHook(units, hook)
}

func (s *Simulator) fireSynergyHook(units []*Unit, hook *SynergyTrigger) {
	hook.lastFired = s.now
	hook.firedBefore = true
	hook.triggerCount++

	caster := firstAlive(units)
	if caster == nil || hook.Effect == nil {
		return
	}
	s.executeSkillNode(caster, hook.Effect, 0)
}

func firstAlive(units []*Unit) *Unit {
	for _, u := range units {
		if u.Alive {
			return u
		}
	}
	return nil
}
