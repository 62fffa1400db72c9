package combat

import "testing"

func TestNewUnitStartsAtFullHPZeroManaAlive(t *testing.T) {
	cfg := testUnitConfig("u1", RowFront)
	cfg.MaxMana = 50
	u := NewUnit(cfg, SideA)

	if u.HP != u.MaxHP {
		t.Errorf("expected HP == MaxHP at start, got %d/%d", u.HP, u.MaxHP)
	}
	if u.Mana != 0 {
		t.Errorf("expected Mana 0 at start, got %d", u.Mana)
	}
	if !u.Alive {
		t.Error("expected a freshly constructed unit to be alive")
	}
	if u.Side != SideA {
		t.Errorf("expected side A, got %s", u.Side)
	}
	if len(u.Effects) != 0 {
		t.Errorf("expected no starting effects, got %d", len(u.Effects))
	}
}

func TestUnitStunned(t *testing.T) {
	u := NewUnit(testUnitConfig("u1", RowFront), SideA)
	u.StunUntil = 5.0

	if !u.Stunned(2.0) {
		t.Error("expected unit stunned before StunUntil elapses")
	}
	if u.Stunned(5.0) {
		t.Error("expected unit not stunned once time reaches StunUntil")
	}
	if u.Stunned(10.0) {
		t.Error("expected unit not stunned well past StunUntil")
	}
}

func TestUnitEffectByIDAndRemoveEffect(t *testing.T) {
	u := NewUnit(testUnitConfig("u1", RowFront), SideA)
	eff := &Effect{ID: "eff-1", Kind: EffectBuff}
	u.Effects = append(u.Effects, eff)

	if u.EffectByID("eff-1") != eff {
		t.Error("expected EffectByID to find the appended effect")
	}
	if u.EffectByID("missing") != nil {
		t.Error("expected EffectByID to return nil for an unknown id")
	}

	removed := u.removeEffect("eff-1")
	if removed != eff {
		t.Error("expected removeEffect to return the removed effect")
	}
	if len(u.Effects) != 0 {
		t.Errorf("expected effect list empty after removal, got %d", len(u.Effects))
	}
	if u.removeEffect("eff-1") != nil {
		t.Error("expected a second removal of the same id to return nil")
	}
}

func TestSideOpponent(t *testing.T) {
	if SideA.Opponent() != SideB {
		t.Error("expected SideA's opponent to be SideB")
	}
	if SideB.Opponent() != SideA {
		t.Error("expected SideB's opponent to be SideA")
	}
}
