package combat

// executeSkillNode walks one skill tree node, resolving it into the
// corresponding mutator call(s), then recurses into its children in
// order. depth is tracked only for diagnostic purposes — the tree's
// shape was already validated against MaxSkillDepth/MaxSkillNodes at
// NewSimulator time (spec.md §4.4, §5).
func (s *Simulator) executeSkillNode(caster *Unit, node *SkillNode, depth int) {
	if node == nil || !caster.Alive {
		return
	}

	switch node.Kind {
	case NodeDamage:
		s.execDamageNode(caster, node)
	case NodeHeal:
		s.execHealNode(caster, node)
	case NodeShield:
		s.execShieldNode(caster, node)
	case NodeBuff, NodeDebuff:
		s.execBuffNode(caster, node)
	case NodeStun:
		s.execStunNode(caster, node)
	case NodeDamageOverTime:
		s.execDoTNode(caster, node)
	case NodeDelay:
		s.scheduleDelayed(caster, node.DelaySeconds, node.Children, depth+1)
		return // children run later, not now
	case NodeRepeat:
		for i := 0; i < node.RepeatCount; i++ {
			for _, child := range node.Children {
				s.executeSkillNode(caster, child, depth+1)
			}
		}
		return // children already walked above
	case NodeConditional:
		children := node.Children
		if !s.evalCondition(caster, node.Condition) {
			children = node.Else
		}
		for _, child := range children {
			s.executeSkillNode(caster, child, depth+1)
		}
		return // branch already walked above
	}

	for _, child := range node.Children {
		s.executeSkillNode(caster, child, depth+1)
	}
}

func (s *Simulator) execDamageNode(caster *Unit, node *SkillNode) {
	for _, target := range s.selectTargets(caster, node.Selector) {
		raw := float64(node.Amount)
		if node.ValueType == ValuePercentage {
			raw = float64(caster.Attack) * float64(node.Amount) / 100.0
		}
		s.emitDamage(caster, target, raw, node.DamageKind, CauseSkill)
	}
}

func (s *Simulator) execHealNode(caster *Unit, node *SkillNode) {
	for _, target := range s.selectTargets(caster, node.Selector) {
		amount := node.Amount
		if node.ValueType == ValuePercentage {
			amount = int(float64(target.MaxHP) * float64(node.Amount) / 100.0)
		}
		s.emitUnitHeal(caster, target, amount)
	}
}

func (s *Simulator) execShieldNode(caster *Unit, node *SkillNode) {
	for _, target := range s.selectTargets(caster, node.Selector) {
		s.emitShieldApplied(target, node.Amount, node.Duration, caster.ID)
	}
}

func (s *Simulator) execBuffNode(caster *Unit, node *SkillNode) {
	for _, target := range s.selectTargets(caster, node.Selector) {
		s.emitStatBuff(target, node.Stat, float64(node.Amount), node.ValueType, node.Duration, node.Permanent, caster.ID)
	}
}

func (s *Simulator) execStunNode(caster *Unit, node *SkillNode) {
	for _, target := range s.selectTargets(caster, node.Selector) {
		s.emitUnitStunned(target, node.Duration, caster.ID)
	}
}

func (s *Simulator) execDoTNode(caster *Unit, node *SkillNode) {
	for _, target := range s.selectTargets(caster, node.Selector) {
		s.emitDamageOverTimeApplied(target, node.Amount, node.Interval, node.Ticks, node.DamageKind, caster.ID)
	}
}

// evalCondition resolves a conditional node's predicate against the
// current combat state (spec.md §4.4, "Conditional predicates").
func (s *Simulator) evalCondition(caster *Unit, cond Condition) bool {
	switch cond.Kind {
	case ConditionCasterHPBelowPercent:
		return hpBelowPercent(caster, cond.Percent)
	case ConditionTargetHPBelowPercent:
		target := s.selectTarget(caster, TargetRandomEnemy)
		return target != nil && hpBelowPercent(target, cond.Percent)
	case ConditionHasEffect:
		for _, e := range caster.Effects {
			if e.Kind == cond.EffectKind {
				return true
			}
		}
		return false
	case ConditionAllyCountAbove:
		return aliveCount(sideUnits(s, caster.Side)) > cond.Count
	default:
		return false
	}
}

func hpBelowPercent(u *Unit, percent float64) bool {
	if u.MaxHP <= 0 {
		return false
	}
	return float64(u.HP)/float64(u.MaxHP)*100.0 < percent
}
