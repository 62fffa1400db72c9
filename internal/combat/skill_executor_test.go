package combat

import (
	"testing"

	"battlecore/internal/config"
)

// TestExecuteSkillNodeBuffAppliesToSelf checks a self-targeted buff
// node mutates the caster via the stat-buff mutator.
func TestExecuteSkillNodeBuffAppliesToSelf(t *testing.T) {
	sim, caster, _ := newTestSimulator(t)
	before := caster.Attack

	node := &SkillNode{
		Kind:      NodeBuff,
		Selector:  TargetSelf,
		Stat:      StatAttack,
		Amount:    10,
		ValueType: ValueFlat,
		Duration:  5.0,
	}
	sim.executeSkillNode(caster, node, 0)

	if caster.Attack != before+10 {
		t.Errorf("expected Attack %d, got %d", before+10, caster.Attack)
	}
	if len(caster.Effects) != 1 {
		t.Fatalf("expected 1 active effect, got %d", len(caster.Effects))
	}
}

// TestExecuteSkillNodeConditionalGatesChildren checks a conditional
// node only executes its children when the predicate holds.
func TestExecuteSkillNodeConditionalGatesChildren(t *testing.T) {
	sim, caster, target := newTestSimulator(t)
	target.HP = target.MaxHP // predicate false: target is at full HP

	child := &SkillNode{
		Kind:      NodeBuff,
		Selector:  TargetSelf,
		Stat:      StatAttack,
		Amount:    99,
		ValueType: ValueFlat,
		Duration:  5.0,
	}
	node := &SkillNode{
		Kind: NodeConditional,
		Condition: Condition{
			Kind:    ConditionTargetHPBelowPercent,
			Percent: 50,
		},
		Children: []*SkillNode{child},
	}

	before := caster.Attack
	sim.executeSkillNode(caster, node, 0)
	if caster.Attack != before {
		t.Error("conditional with a false predicate should not run its children")
	}

	target.HP = target.MaxHP / 4 // predicate now true
	sim.executeSkillNode(caster, node, 0)
	if caster.Attack != before+99 {
		t.Errorf("expected Attack %d once the predicate holds, got %d", before+99, caster.Attack)
	}
}

// TestExecuteSkillNodeConditionalRunsElseWhenPredicateFalse checks a
// conditional node runs its Else branch when the predicate is false,
// and never runs both branches (spec.md §4.4,
// "conditional{predicate, then, else}").
func TestExecuteSkillNodeConditionalRunsElseWhenPredicateFalse(t *testing.T) {
	sim, caster, target := newTestSimulator(t)
	target.HP = target.MaxHP // predicate false: target is at full HP

	thenChild := &SkillNode{
		Kind:      NodeBuff,
		Selector:  TargetSelf,
		Stat:      StatAttack,
		Amount:    99,
		ValueType: ValueFlat,
		Duration:  5.0,
	}
	elseChild := &SkillNode{
		Kind:      NodeBuff,
		Selector:  TargetSelf,
		Stat:      StatDefense,
		Amount:    7,
		ValueType: ValueFlat,
		Duration:  5.0,
	}
	node := &SkillNode{
		Kind: NodeConditional,
		Condition: Condition{
			Kind:    ConditionTargetHPBelowPercent,
			Percent: 50,
		},
		Children: []*SkillNode{thenChild},
		Else:     []*SkillNode{elseChild},
	}

	beforeAttack, beforeDefense := caster.Attack, caster.Defense
	sim.executeSkillNode(caster, node, 0)

	if caster.Attack != beforeAttack {
		t.Error("then-branch should not run when the predicate is false")
	}
	if caster.Defense != beforeDefense+7 {
		t.Errorf("expected else-branch to apply, Defense %d, got %d", beforeDefense+7, caster.Defense)
	}
}

// TestExecuteSkillNodeRepeatRunsChildrenNTimes checks a repeat node
// executes its children back to back RepeatCount times.
func TestExecuteSkillNodeRepeatRunsChildrenNTimes(t *testing.T) {
	sim, caster, target := newTestSimulator(t)
	preHP := target.HP

	child := &SkillNode{
		Kind:       NodeDamage,
		Selector:   TargetRandomEnemy,
		Amount:     5,
		ValueType:  ValueFlat,
		DamageKind: DamageMagical,
	}
	node := &SkillNode{
		Kind:        NodeRepeat,
		RepeatCount: 3,
		Children:    []*SkillNode{child},
	}

	sim.executeSkillNode(caster, node, 0)

	if target.HP != preHP-15 {
		t.Errorf("expected HP %d after 3 hits of 5, got %d", preHP-15, target.HP)
	}
}

// TestExecuteSkillNodeDelayDefersChildren checks a delay node schedules
// its children instead of running them immediately, and that
// processScheduledActions fires them once the delay elapses.
func TestExecuteSkillNodeDelayDefersChildren(t *testing.T) {
	sim, caster, target := newTestSimulator(t)
	preHP := target.HP

	child := &SkillNode{
		Kind:       NodeDamage,
		Selector:   TargetRandomEnemy,
		Amount:     20,
		ValueType:  ValueFlat,
		DamageKind: DamagePhysical,
	}
	node := &SkillNode{
		Kind:         NodeDelay,
		DelaySeconds: 0.2,
		Children:     []*SkillNode{child},
	}

	sim.executeSkillNode(caster, node, 0)
	if target.HP != preHP {
		t.Error("delayed children should not run immediately")
	}

	sim.now = 0.1
	sim.processScheduledActions()
	if target.HP != preHP {
		t.Error("delayed children should not fire before their delay elapses")
	}

	sim.now = 0.25
	sim.processScheduledActions()
	if target.HP != preHP-20 {
		t.Errorf("expected HP %d once the delay elapses, got %d", preHP-20, target.HP)
	}
}

// TestMaybeCastSkillFiresOnceManaIsFullAndResetsIt checks the mana-gated
// cast trigger named in spec.md §4.4: a unit with a skill casts exactly
// once its mana pool fills, and mana resets to 0 afterward.
func TestMaybeCastSkillFiresOnceManaIsFullAndResetsIt(t *testing.T) {
	skill := &SkillNode{
		Kind:      NodeBuff,
		Selector:  TargetSelf,
		Stat:      StatDefense,
		Amount:    5,
		ValueType: ValueFlat,
		Duration:  5.0,
	}
	cfg := testUnitConfig("a1", RowFront)
	cfg.MaxMana = 10
	cfg.Skill = skill

	rosterA := []UnitConfig{cfg}
	rosterB := []UnitConfig{testUnitConfig("b1", RowFront)}

	sim, err := NewSimulator(rosterA, rosterB, nil, nil, 1, config.DefaultCombat(), config.DefaultLimits())
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	caster := sim.unitsA[0]
	caster.Mana = 10

	sim.maybeCastSkill(caster)

	if caster.Mana != 0 {
		t.Errorf("expected mana reset to 0 after cast, got %d", caster.Mana)
	}

	var sawCast bool
	for _, e := range sim.Log().All() {
		if e.Type == EventTypeSkillCast {
			sawCast = true
		}
	}
	if !sawCast {
		t.Error("expected a skill_cast event in the log")
	}
}
