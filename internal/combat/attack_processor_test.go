package combat

import (
	"testing"

	"battlecore/internal/config"
)

func unitConfigAt(id string, row Row, index int) UnitConfig {
	cfg := testUnitConfig(id, row)
	cfg.Index = index
	return cfg
}

// TestSelectBasicAttackTargetPrefersLowestIndexFrontRow checks the
// deterministic attack-targeting protocol (spec.md §4.5 step 1): the
// lowest-indexed alive front-row enemy, never a random draw.
func TestSelectBasicAttackTargetPrefersLowestIndexFrontRow(t *testing.T) {
	rosterA := []UnitConfig{unitConfigAt("a1", RowFront, 0)}
	rosterB := []UnitConfig{
		unitConfigAt("b-front-1", RowFront, 1),
		unitConfigAt("b-front-0", RowFront, 0),
		unitConfigAt("b-back-0", RowBack, 0),
	}
	sim, err := NewSimulator(rosterA, rosterB, nil, nil, 1, config.DefaultCombat(), config.DefaultLimits())
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	caster := sim.unitsA[0]

	for i := 0; i < 10; i++ {
		target := sim.selectBasicAttackTarget(caster)
		if target == nil || target.ID != "b-front-0" {
			got := "nil"
			if target != nil {
				got = target.ID
			}
			t.Fatalf("expected b-front-0 (lowest-indexed alive front-row enemy), got %s", got)
		}
	}
}

// TestSelectBasicAttackTargetFallsBackToBackRow checks step 1's
// fallback: once no front-row enemy survives, the lowest-indexed
// alive back-row enemy is targeted.
func TestSelectBasicAttackTargetFallsBackToBackRow(t *testing.T) {
	rosterA := []UnitConfig{unitConfigAt("a1", RowFront, 0)}
	rosterB := []UnitConfig{
		unitConfigAt("b-back-1", RowBack, 1),
		unitConfigAt("b-back-0", RowBack, 0),
	}
	sim, err := NewSimulator(rosterA, rosterB, nil, nil, 1, config.DefaultCombat(), config.DefaultLimits())
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	caster := sim.unitsA[0]

	target := sim.selectBasicAttackTarget(caster)
	if target == nil || target.ID != "b-back-0" {
		t.Fatalf("expected b-back-0, got %v", target)
	}
}

// TestSelectTargetsResolvesTeamWideSelectors checks that enemy_team and
// ally_team resolve to every qualifying alive unit, not a single unit
// (spec.md §4.4, "If the evaluated target set is empty...").
func TestSelectTargetsResolvesTeamWideSelectors(t *testing.T) {
	rosterA := []UnitConfig{
		unitConfigAt("a-front", RowFront, 0),
		unitConfigAt("a-back", RowBack, 1),
	}
	rosterB := []UnitConfig{
		unitConfigAt("b-front", RowFront, 0),
		unitConfigAt("b-back", RowBack, 1),
	}
	sim, err := NewSimulator(rosterA, rosterB, nil, nil, 1, config.DefaultCombat(), config.DefaultLimits())
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	caster := sim.unitsA[0]

	enemies := sim.selectTargets(caster, TargetEnemyTeam)
	if len(enemies) != 2 {
		t.Errorf("expected enemy_team to resolve to 2 units, got %d", len(enemies))
	}

	allies := sim.selectTargets(caster, TargetAllyTeam)
	if len(allies) != 2 {
		t.Errorf("expected ally_team to resolve to 2 units, got %d", len(allies))
	}

	enemyFront := sim.selectTargets(caster, TargetEnemyFront)
	if len(enemyFront) != 1 || enemyFront[0].ID != "b-front" {
		t.Errorf("expected enemy_front to resolve to [b-front], got %v", enemyFront)
	}

	// Killing the only front-row enemy must not fall back to the back
	// row for a team selector — an empty set just means the node skips.
	sim.unitsB[0].Alive = false
	enemyFront = sim.selectTargets(caster, TargetEnemyFront)
	if len(enemyFront) != 0 {
		t.Errorf("expected enemy_front to be empty once the front row is dead, got %v", enemyFront)
	}
}

// TestExecDamageNodeHitsEveryUnitInTeamSelector checks an AoE damage
// node with an enemy_team selector damages every living enemy, not
// just one.
func TestExecDamageNodeHitsEveryUnitInTeamSelector(t *testing.T) {
	rosterA := []UnitConfig{unitConfigAt("a1", RowFront, 0)}
	rosterB := []UnitConfig{
		unitConfigAt("b1", RowFront, 0),
		unitConfigAt("b2", RowBack, 1),
	}
	sim, err := NewSimulator(rosterA, rosterB, nil, nil, 1, config.DefaultCombat(), config.DefaultLimits())
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	caster := sim.unitsA[0]
	preHP1, preHP2 := sim.unitsB[0].HP, sim.unitsB[1].HP

	node := &SkillNode{
		Kind:       NodeDamage,
		Selector:   TargetEnemyTeam,
		Amount:     10,
		ValueType:  ValueFlat,
		DamageKind: DamageMagical,
	}
	sim.execDamageNode(caster, node)

	if sim.unitsB[0].HP != preHP1-10 {
		t.Errorf("expected b1 HP %d, got %d", preHP1-10, sim.unitsB[0].HP)
	}
	if sim.unitsB[1].HP != preHP2-10 {
		t.Errorf("expected b2 HP %d, got %d", preHP2-10, sim.unitsB[1].HP)
	}
}

// TestPickEnemyRandomSamplesAcrossFullTeamNotJustFrontRow checks
// random_enemy draws uniformly from every alive enemy (spec.md §4.4),
// rather than being biased toward the front row the way basic attacks
// and enemy_front are.
func TestPickEnemyRandomSamplesAcrossFullTeamNotJustFrontRow(t *testing.T) {
	rosterA := []UnitConfig{unitConfigAt("a1", RowFront, 0)}
	rosterB := []UnitConfig{
		unitConfigAt("b-front", RowFront, 0),
		unitConfigAt("b-back", RowBack, 1),
	}

	sawBack := false
	for seed := int64(1); seed < 200 && !sawBack; seed++ {
		sim, err := NewSimulator(rosterA, rosterB, nil, nil, seed, config.DefaultCombat(), config.DefaultLimits())
		if err != nil {
			t.Fatalf("NewSimulator: %v", err)
		}
		caster := sim.unitsA[0]
		if target := sim.pickEnemy(caster); target != nil && target.ID == "b-back" {
			sawBack = true
		}
	}

	if !sawBack {
		t.Error("expected random_enemy to eventually draw the back-row enemy across many seeds")
	}
}
