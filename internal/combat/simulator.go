package combat

import (
	"fmt"
	"math/rand"
	"sort"

	"battlecore/internal/config"
)

// Result is the terminal outcome of one Simulate call, mirroring
// CombatEndPayload (spec.md §4.8, §6).
type Result struct {
	Winner          string // "A", "B", or "draw"
	DurationSeconds float64
	TimedOut        bool
	SurvivorsA      []SurvivorEntry
	SurvivorsB      []SurvivorEntry
	Events          []Event
}

// Consume is implemented by anything that wants a live feed of events
// as they are dispatched, in addition to the authoritative Log
// returned in Result.Events.
type Consume func(Event)

// Simulator is the combat scheduler: it owns the fixed-tick loop, the
// dispatcher, the deterministic RNG, and the per-combat unit roster.
// One Simulator handles exactly one combat and is discarded afterward
// — no cross-combat state survives a call to Simulate
// (spec.md §9, Open Question "cross-combat state").
type Simulator struct {
	dispatcher *Dispatcher
	rng        *rand.Rand
	limits     config.ResourceLimits
	tickSeconds    float64
	snapshotPeriod float64
	timeoutSeconds float64

	now       float64
	tickIndex uint64

	unitsA   []*Unit
	unitsB   []*Unit
	allUnits map[string]*Unit

	scheduled []*scheduledAction
	synergyA  *SynergyDefinition
	synergyB  *SynergyDefinition

	nextEffectSeq uint64
	lastSnapshotSec int64
}

// deterministicReader draws bytes from a math/rand.Rand so event ids
// come from the same seeded RNG as target selection, and every random
// decision inside a combat derives from one rng_seed
// (spec.md §8, "Determinism").
type deterministicReader struct {
	rng *rand.Rand
}

func (d deterministicReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(d.rng.Intn(256))
	}
	return len(p), nil
}

// NewSimulator constructs a simulator for one combat. rosterA/rosterB
// are each side's starting units in roster order; Index on each
// UnitConfig should match its position for deterministic tie-breaks.
func NewSimulator(rosterA, rosterB []UnitConfig, synergyA, synergyB *SynergyDefinition, rngSeed int64, cfg config.CombatConfig, limits config.ResourceLimits) (*Simulator, error) {
	if len(rosterA) == 0 || len(rosterB) == 0 {
		return nil, fmt.Errorf("combat: both sides must field at least one unit")
	}
	if len(rosterA) > limits.MaxUnitsPerSide || len(rosterB) > limits.MaxUnitsPerSide {
		return nil, fmt.Errorf("combat: roster exceeds MaxUnitsPerSide=%d", limits.MaxUnitsPerSide)
	}
	for _, cfg := range append(append([]UnitConfig{}, rosterA...), rosterB...) {
		if cfg.Skill == nil {
			continue
		}
		if n := CountNodes(cfg.Skill); n > limits.MaxSkillNodes {
			return nil, fmt.Errorf("combat: unit %s skill tree exceeds MaxSkillNodes=%d (has %d)", cfg.ID, limits.MaxSkillNodes, n)
		}
		if d := Depth(cfg.Skill); d > limits.MaxSkillDepth {
			return nil, fmt.Errorf("combat: unit %s skill tree exceeds MaxSkillDepth=%d (has %d)", cfg.ID, limits.MaxSkillDepth, d)
		}
	}

	rng := rand.New(rand.NewSource(rngSeed))

	s := &Simulator{
		dispatcher:     NewDispatcher(deterministicReader{rng: rng}),
		rng:            rng,
		limits:         limits,
		tickSeconds:    cfg.TickSeconds,
		snapshotPeriod: cfg.SnapshotPeriod,
		timeoutSeconds: cfg.TimeoutSeconds,
		allUnits:       make(map[string]*Unit, len(rosterA)+len(rosterB)),
		lastSnapshotSec: -1,
		synergyA:       synergyA,
		synergyB:       synergyB,
	}

	for _, uc := range rosterA {
		u := NewUnit(uc, SideA)
		s.unitsA = append(s.unitsA, u)
		s.allUnits[u.ID] = u
	}
	for _, uc := range rosterB {
		u := NewUnit(uc, SideB)
		s.unitsB = append(s.unitsB, u)
		s.allUnits[u.ID] = u
	}

	return s, nil
}

// Subscribe registers a consumer that receives events as they are
// dispatched, bounded by the given buffer size.
func (s *Simulator) Subscribe(bufferSize int) *Consumer {
	return s.dispatcher.Subscribe(bufferSize)
}

// Log returns the authoritative event log for this combat.
func (s *Simulator) Log() *Log {
	return s.dispatcher.Log()
}

func newEffectID(s *Simulator) string {
	s.nextEffectSeq++
	return fmt.Sprintf("eff-%d", s.nextEffectSeq)
}

// orderedUnits returns every unit, side A first then side B, each
// ordered by Index — the deterministic iteration order used for
// initialization and tie-breaking (spec.md §4.5, "tie-break ordering").
func (s *Simulator) orderedUnits() []*Unit {
	out := make([]*Unit, 0, len(s.unitsA)+len(s.unitsB))
	out = append(out, s.unitsA...)
	out = append(out, s.unitsB...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Side != out[j].Side {
			return out[i].Side < out[j].Side
		}
		return out[i].Index < out[j].Index
	})
	return out
}

func sideUnits(s *Simulator, side Side) []*Unit {
	if side == SideA {
		return s.unitsA
	}
	return s.unitsB
}

func aliveCount(units []*Unit) int {
	n := 0
	for _, u := range units {
		if u.Alive {
			n++
		}
	}
	return n
}

func totalHP(units []*Unit) int {
	total := 0
	for _, u := range units {
		if u.Alive {
			total += u.HP
		}
	}
	return total
}

// Simulate runs the fixed-tick combat loop to completion: team wipe,
// simultaneous wipe (draw), or the hard timeout (spec.md §4.8,
// "Termination rules"). It returns the full event log alongside the
// structured Result.
func (s *Simulator) Simulate() Result {
	s.initialize()

	for {
		if done, result := s.checkTermination(); done {
			return result
		}
		s.step()
		if s.now >= s.timeoutSeconds {
			return s.finish(true)
		}
	}
}

func (s *Simulator) initialize() {
	s.emitUnitsInit()
	s.applyInitialSynergies()
	s.emitSnapshot()
	s.lastSnapshotSec = 0
}

func (s *Simulator) checkTermination() (bool, Result) {
	aAlive := aliveCount(s.unitsA)
	bAlive := aliveCount(s.unitsB)

	if aAlive == 0 || bAlive == 0 {
		return true, s.finish(false)
	}
	return false, Result{}
}

// step advances the simulation by one fixed tick, in the strict order
// required by spec.md §4.6: attacks, skill casts, DoT ticks,
// expirations, per-second synergy hooks, then snapshot.
func (s *Simulator) step() {
	s.now += s.tickSeconds
	s.tickIndex++

	s.processAttacks()
	s.processScheduledActions()
	s.processDamageOverTime()
	s.processExpirations()
	s.processSynergyHooks()
	s.maybeSnapshot()
}

func (s *Simulator) maybeSnapshot() {
	sec := int64(s.now / s.snapshotPeriod)
	if sec <= s.lastSnapshotSec {
		return
	}
	s.lastSnapshotSec = sec
	s.emitSnapshot()
}

func (s *Simulator) emitSnapshot() {
	units := make([]UnitSnapshot, 0, len(s.allUnits))
	for _, u := range s.orderedUnits() {
		units = append(units, unitSnapshotOf(u))
	}
	s.dispatcher.Dispatch(EventTypeStateSnapshot, s.now, StateSnapshotPayload{
		SimTime:   s.now,
		TickIndex: s.tickIndex,
		Units:     units,
	})
}

func unitSnapshotOf(u *Unit) UnitSnapshot {
	effects := make([]EffectSnapshot, 0, len(u.Effects))
	for _, e := range u.Effects {
		effects = append(effects, EffectSnapshot{
			ID:             e.ID,
			Kind:           e.Kind.String(),
			Stat:           statFieldOrEmpty(e),
			AppliedDelta:   e.AppliedDelta,
			Amount:         e.Amount,
			TicksRemaining: e.TicksRemaining,
			ExpiresAt:      e.ExpiresAt,
			Permanent:      e.Permanent,
		})
	}
	return UnitSnapshot{
		ID:          u.ID,
		Alive:       u.Alive,
		HP:          u.HP,
		MaxHP:       u.MaxHP,
		Mana:        u.Mana,
		MaxMana:     u.MaxMana,
		Shield:      u.Shield,
		Attack:      u.Attack,
		Defense:     u.Defense,
		AttackSpeed: u.AttackSpeed,
		Effects:     effects,
	}
}

func statFieldOrEmpty(e *Effect) string {
	if e.Kind == EffectBuff || e.Kind == EffectDebuff {
		return e.Stat.String()
	}
	return ""
}

func (s *Simulator) finish(timedOut bool) Result {
	winner := "draw"
	aAlive := aliveCount(s.unitsA)
	bAlive := aliveCount(s.unitsB)

	switch {
	case timedOut:
		aHP, bHP := totalHP(s.unitsA), totalHP(s.unitsB)
		switch {
		case aHP > bHP:
			winner = "A"
		case bHP > aHP:
			winner = "B"
		default:
			winner = "draw"
		}
	case aAlive > 0 && bAlive == 0:
		winner = "A"
	case bAlive > 0 && aAlive == 0:
		winner = "B"
	default:
		winner = "draw"
	}

	survivorsA := survivorEntries(s.unitsA)
	survivorsB := survivorEntries(s.unitsB)

	aggregateStars := 0
	switch winner {
	case "A":
		aggregateStars = aggregateStarLevel(s.unitsA)
	case "B":
		aggregateStars = aggregateStarLevel(s.unitsB)
	}

	s.dispatcher.Dispatch(EventTypeCombatEnd, s.now, CombatEndPayload{
		Winner:          winner,
		DurationSeconds: s.now,
		TimedOut:        timedOut,
		SurvivorsA:      survivorsA,
		SurvivorsB:      survivorsB,
		AggregateStars:  aggregateStars,
	})

	return Result{
		Winner:          winner,
		DurationSeconds: s.now,
		TimedOut:        timedOut,
		SurvivorsA:      survivorsA,
		SurvivorsB:      survivorsB,
		Events:          s.dispatcher.Log().All(),
	}
}

func survivorEntries(units []*Unit) []SurvivorEntry {
	out := make([]SurvivorEntry, 0, len(units))
	for _, u := range units {
		if u.Alive {
			out = append(out, SurvivorEntry{UnitID: u.ID, HP: u.HP})
		}
	}
	return out
}

func aggregateStarLevel(units []*Unit) int {
	total := 0
	for _, u := range units {
		if u.Alive {
			total += u.StarLevel
		}
	}
	return total
}
