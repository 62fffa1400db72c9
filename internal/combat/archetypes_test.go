package combat

import "testing"

func TestGetArchetypeFallsBackToRecruitForUnknownID(t *testing.T) {
	got := GetArchetype("does-not-exist")
	want := Archetypes["recruit"]
	if got != want {
		t.Errorf("expected fallback to recruit preset, got %+v", got)
	}
}

func TestNewUnitConfigScalesByStarLevel(t *testing.T) {
	one := NewUnitConfig("knight", "k1", "Knight", RowFront, 0, 1, nil)
	three := NewUnitConfig("knight", "k1", "Knight", RowFront, 0, 3, nil)

	if three.MaxHP <= one.MaxHP {
		t.Errorf("expected a 3-star unit to have more MaxHP than a 1-star unit, got %d vs %d", three.MaxHP, one.MaxHP)
	}
	if three.BaseAttack <= one.BaseAttack {
		t.Errorf("expected a 3-star unit to have more attack, got %d vs %d", three.BaseAttack, one.BaseAttack)
	}
	// defense/attack speed/mana economy are not star-scaled
	if three.BaseDefense != one.BaseDefense {
		t.Errorf("expected defense unaffected by star level, got %d vs %d", three.BaseDefense, one.BaseDefense)
	}
}

func TestGetSynergyFallsBackToNoneForUnknownID(t *testing.T) {
	got := GetSynergy("does-not-exist")
	if len(got.StaticBuffs) != 0 || len(got.Hooks) != 0 {
		t.Errorf("expected an empty fallback synergy, got %+v", got)
	}
}

func TestGetSynergyReturnsNamedPreset(t *testing.T) {
	got := GetSynergy("guardians")
	if len(got.StaticBuffs) == 0 {
		t.Error("expected the guardians preset to carry at least one static buff")
	}
}
