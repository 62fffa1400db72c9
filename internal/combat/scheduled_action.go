package combat

// scheduledAction is a skill-tree subtree whose execution was deferred
// by a NodeDelay ancestor. Each tick, every action whose FireTime has
// arrived runs its children and is removed — adapted from the
// teacher's per-tick projectile travel check, generalized from
// position-based collision to a simulation-time deadline
// (spec.md §4.4, "delay node").
type scheduledAction struct {
	FireTime float64
	Caster   *Unit
	Children []*SkillNode
	Depth    int
}

func (s *Simulator) scheduleDelayed(caster *Unit, delaySeconds float64, children []*SkillNode, depth int) {
	s.scheduled = append(s.scheduled, &scheduledAction{
		FireTime: s.now + delaySeconds,
		Caster:   caster,
		Children: children,
		Depth:    depth,
	})
}

// processScheduledActions fires every delayed skill action due this
// tick. A caster that has died since scheduling is skipped — a dead
// unit's pending skill continuations never resolve.
func (s *Simulator) processScheduledActions() {
	if len(s.scheduled) == 0 {
		return
	}

	remaining := s.scheduled[:0]
	for _, a := range s.scheduled {
		if a.FireTime > s.now {
			remaining = append(remaining, a)
			continue
		}
		if a.Caster.Alive {
			for _, child := range a.Children {
				s.executeSkillNode(a.Caster, child, a.Depth)
			}
		}
	}
	s.scheduled = remaining
}
