package api

import (
	"errors"
	"sync"
	"time"

	"battlecore/internal/combat"
	"battlecore/internal/config"

	"github.com/google/uuid"
)

// ErrCombatNotFound is returned when a combat id has no matching entry.
var ErrCombatNotFound = errors.New("combat not found")

// ErrTooManyCombats is returned when the concurrent combat cap is reached.
var ErrTooManyCombats = errors.New("too many concurrent combats")

// UnitSpec is the wire-format roster entry accepted by POST /combats.
// It references a unit archetype by id rather than accepting a full
// stat block, so HTTP callers describe a roster compactly.
type UnitSpec struct {
	ArchetypeID string `json:"archetype"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	Row         string `json:"row"` // "front" or "back"
	Index       int    `json:"index"`
	StarLevel   int    `json:"starLevel"`
}

// StartCombatRequest is the decoded body of POST /combats.
type StartCombatRequest struct {
	RosterA   []UnitSpec `json:"rosterA"`
	RosterB   []UnitSpec `json:"rosterB"`
	SynergyA  string     `json:"synergyA"`
	SynergyB  string     `json:"synergyB"`
	Seed      int64      `json:"seed"`
}

// CombatHandle tracks one submitted combat's lifecycle: the running (or
// finished) simulator, its result once available, and its live
// dispatcher log for resumable event reads.
type CombatHandle struct {
	ID        string
	StartedAt time.Time

	mu       sync.RWMutex
	sim      *combat.Simulator
	result   *combat.Result
	done     bool
	runErr   error
}

func (h *CombatHandle) setResult(res combat.Result) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.result = &res
	h.done = true
}

// Status reports whether the combat has finished and its result, if any.
func (h *CombatHandle) Status() (done bool, result *combat.Result) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.done, h.result
}

// EventsSince returns every event dispatched after afterSeq.
func (h *CombatHandle) EventsSince(afterSeq uint64) []combat.Event {
	return h.sim.Log().Since(afterSeq)
}

// Subscribe registers a live consumer on the underlying dispatcher.
func (h *CombatHandle) Subscribe(bufferSize int) *combat.Consumer {
	return h.sim.Subscribe(bufferSize)
}

// Registry tracks submitted combats and enforces the server-wide
// concurrency cap (config.ServerConfig.MaxConcurrent), grounded on the
// teacher's single in-process game.Engine generalized to many
// independently running combats addressed by id.
type Registry struct {
	mu      sync.RWMutex
	combats map[string]*CombatHandle
	limits  config.ResourceLimits
	combat  config.CombatConfig
	maxRun  int
	running int
}

// NewRegistry creates an empty combat registry.
func NewRegistry(cfg config.AppConfig) *Registry {
	return &Registry{
		combats: make(map[string]*CombatHandle),
		limits:  cfg.Limits,
		combat:  cfg.Combat,
		maxRun:  cfg.Server.MaxConcurrent,
	}
}

// Start validates and builds a simulator from req, registers a handle
// for it, and runs the simulation in a background goroutine. It returns
// immediately with the handle so the caller can poll or stream events
// while the combat is still running.
func (r *Registry) Start(req StartCombatRequest) (*CombatHandle, error) {
	r.mu.Lock()
	if r.maxRun > 0 && r.running >= r.maxRun {
		r.mu.Unlock()
		return nil, ErrTooManyCombats
	}
	r.running++
	r.mu.Unlock()

	rosterA := toUnitConfigs(req.RosterA)
	rosterB := toUnitConfigs(req.RosterB)
	synergyA := combat.GetSynergy(req.SynergyA)
	synergyB := combat.GetSynergy(req.SynergyB)

	sim, err := combat.NewSimulator(rosterA, rosterB, synergyA, synergyB, req.Seed, r.combat, r.limits)
	if err != nil {
		r.mu.Lock()
		r.running--
		r.mu.Unlock()
		return nil, err
	}

	handle := &CombatHandle{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		sim:       sim,
	}

	r.mu.Lock()
	r.combats[handle.ID] = handle
	r.mu.Unlock()
	UpdateActiveCombats(r.ActiveCount())

	go func() {
		res := sim.Simulate()
		handle.setResult(res)
		RecordEventsDispatched(len(res.Events))
		r.mu.Lock()
		r.running--
		r.mu.Unlock()
		UpdateActiveCombats(r.ActiveCount())
	}()

	return handle, nil
}

// Get returns the handle for id, or ErrCombatNotFound.
func (r *Registry) Get(id string) (*CombatHandle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.combats[id]
	if !ok {
		return nil, ErrCombatNotFound
	}
	return h, nil
}

// EventsSince satisfies ipc.CombatSource, letting the Unix-socket
// publisher replay a resuming subscriber's backlog.
func (r *Registry) EventsSince(id string, since uint64) ([]combat.Event, bool) {
	h, err := r.Get(id)
	if err != nil {
		return nil, false
	}
	return h.EventsSince(since), true
}

// Subscribe satisfies ipc.CombatSource, letting the Unix-socket
// publisher attach a live consumer once a subscriber's backlog has
// been replayed.
func (r *Registry) Subscribe(id string, bufferSize int) (*combat.Consumer, bool) {
	h, err := r.Get(id)
	if err != nil {
		return nil, false
	}
	return h.Subscribe(bufferSize), true
}

// ActiveCount returns the number of combats currently running.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running
}

func toUnitConfigs(specs []UnitSpec) []combat.UnitConfig {
	out := make([]combat.UnitConfig, 0, len(specs))
	for _, s := range specs {
		row := combat.RowFront
		if s.Row == "back" {
			row = combat.RowBack
		}
		out = append(out, combat.NewUnitConfig(s.ArchetypeID, s.ID, s.Name, row, s.Index, s.StarLevel, nil))
	}
	return out
}
