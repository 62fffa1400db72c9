package combat

import (
	"testing"

	"battlecore/internal/config"
)

func newSynergySimulator(t *testing.T, synergyA *SynergyDefinition) (*Simulator, *Unit, *Unit) {
	t.Helper()
	rosterA := []UnitConfig{testUnitConfig("a1", RowFront)}
	rosterB := []UnitConfig{testUnitConfig("b1", RowFront)}
	sim, err := NewSimulator(rosterA, rosterB, synergyA, nil, 1, config.DefaultCombat(), config.DefaultLimits())
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	return sim, sim.unitsA[0], sim.unitsB[0]
}

// TestApplyInitialSynergiesAppliesStaticBuffsPermanently checks a
// side's static buffs are applied to every unit on that side before
// the first tick, as permanent effects.
func TestApplyInitialSynergiesAppliesStaticBuffsPermanently(t *testing.T) {
	def := &SynergyDefinition{
		StaticBuffs: []StaticSynergyBuff{
			{Stat: StatDefense, Value: 10, ValueType: ValueFlat},
		},
	}
	sim, unit, _ := newSynergySimulator(t, def)
	before := unit.Defense

	sim.applyInitialSynergies()

	if unit.Defense != before+10 {
		t.Errorf("expected Defense %d, got %d", before+10, unit.Defense)
	}
	if len(unit.Effects) != 1 {
		t.Fatalf("expected 1 effect, got %d", len(unit.Effects))
	}
	if !unit.Effects[0].Permanent {
		t.Error("synergy static buff should be permanent")
	}
	if unit.Effects[0].ExpiresAt != Infinity {
		t.Errorf("expected ExpiresAt Infinity, got %v", unit.Effects[0].ExpiresAt)
	}
}

// TestNotifySynergyOfDeathFiresAllyAndEnemyHooks checks a unit's death
// fires on_ally_death hooks for its own side and on_enemy_death hooks
// for the opposing side.
func TestNotifySynergyOfDeathFiresAllyAndEnemyHooks(t *testing.T) {
	var allyFired, enemyFired bool

	allyHook := &SynergyTrigger{Kind: HookOnAllyDeath, Chance: 1.0, Effect: &SkillNode{Kind: NodeBuff, Selector: TargetSelf, Stat: StatAttack, Amount: 1, ValueType: ValueFlat, Duration: 1}}
	enemyHook := &SynergyTrigger{Kind: HookOnEnemyDeath, Chance: 1.0, Effect: &SkillNode{Kind: NodeBuff, Selector: TargetSelf, Stat: StatAttack, Amount: 1, ValueType: ValueFlat, Duration: 1}}

	synergyA := &SynergyDefinition{Hooks: []*SynergyTrigger{allyHook}}
	rosterA := []UnitConfig{testUnitConfig("a1", RowFront)}
	rosterB := []UnitConfig{testUnitConfig("b1", RowFront)}
	sim, err := NewSimulator(rosterA, rosterB, synergyA, &SynergyDefinition{Hooks: []*SynergyTrigger{enemyHook}}, 1, config.DefaultCombat(), config.DefaultLimits())
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	a1, b1 := sim.unitsA[0], sim.unitsB[0]

	a1.Alive = false
	sim.notifySynergyOfDeath(a1)

	if allyHook.triggerCount != 1 {
		t.Errorf("expected on_ally_death hook to fire once, got %d", allyHook.triggerCount)
	}
	if enemyHook.triggerCount != 1 {
		t.Errorf("expected on_enemy_death hook to fire once, got %d", enemyHook.triggerCount)
	}
	allyFired = allyHook.firedBefore
	enemyFired = enemyHook.firedBefore
	if !allyFired || !enemyFired {
		t.Error("expected both hooks marked fired")
	}
	_ = b1
}

// TestTryFireHookRespectsMaxTriggers checks a hook stops firing once
// it has reached its lifetime trigger cap.
func TestTryFireHookRespectsMaxTriggers(t *testing.T) {
	hook := &SynergyTrigger{
		Kind:        HookPerSecond,
		Chance:      1.0,
		MaxTriggers: 2,
		Effect:      &SkillNode{Kind: NodeBuff, Selector: TargetSelf, Stat: StatAttack, Amount: 1, ValueType: ValueFlat, Duration: 1},
	}
	sim, unit, _ := newSynergySimulator(t, nil)
	units := []*Unit{unit}

	sim.tryFireHook(units, hook)
	sim.now = 10
	sim.tryFireHook(units, hook)
	sim.now = 20
	sim.tryFireHook(units, hook)

	if hook.triggerCount != 2 {
		t.Errorf("expected trigger count capped at 2, got %d", hook.triggerCount)
	}
}

// TestTryFireHookRespectsCooldown checks a hook does not refire before
// its cooldown has elapsed.
func TestTryFireHookRespectsCooldown(t *testing.T) {
	hook := &SynergyTrigger{
		Kind:            HookPerSecond,
		Chance:          1.0,
		CooldownSeconds: 5.0,
		Effect:          &SkillNode{Kind: NodeBuff, Selector: TargetSelf, Stat: StatAttack, Amount: 1, ValueType: ValueFlat, Duration: 1},
	}
	sim, unit, _ := newSynergySimulator(t, nil)
	units := []*Unit{unit}

	sim.now = 0
	sim.tryFireHook(units, hook)
	sim.now = 2 // within cooldown
	sim.tryFireHook(units, hook)

	if hook.triggerCount != 1 {
		t.Errorf("expected only 1 trigger within cooldown window, got %d", hook.triggerCount)
	}

	sim.now = 6 // cooldown elapsed
	sim.tryFireHook(units, hook)
	if hook.triggerCount != 2 {
		t.Errorf("expected a second trigger once cooldown elapses, got %d", hook.triggerCount)
	}
}
