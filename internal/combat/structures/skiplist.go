// This file implements a concurrent skip list with augmented span
// counts for rank queries, used to rank surviving units by
// final HP (and, at the roster level, by aggregate star total) once a
// combat ends.
//
// Origin: Pugh (1990), "Skip Lists: A Probabilistic Alternative to
// Balanced Trees". Redis ZSET uses this exact pattern for leaderboards.
package structures

import (
	"math/rand"
	"sync"
	"sync/atomic"
)

const (
	maxLevel          = 32
	levelProbability  = 0.25
)

// RankEntry is a scored entry in a RankList — one unit's id and the
// score it is ranked by (final HP, or aggregate star total).
type RankEntry struct {
	Key   string
	Score float64
}

type rankNode struct {
	entry RankEntry
	next  []*rankNode
	span  []int
}

// RankList is a concurrent skip list ordered by score, with span counts
// for rank queries. Entries are not ordered by key, so finding a key
// walks the bottom level. Multiple combats can share one RankList safely.
type RankList struct {
	head   *rankNode
	level  int32
	length int32
	mu     sync.RWMutex
	rng    *rand.Rand
}

// NewRankList creates an empty rank list. The level-selection RNG is
// seeded from seed so repeated ranking of identical inputs produces an
// identical skip-list shape; it never affects which entry ranks where,
// only internal node height, so this has no bearing on emitted events.
func NewRankList(seed int64) *RankList {
	head := &rankNode{
		next: make([]*rankNode, maxLevel),
		span: make([]int, maxLevel),
	}
	return &RankList{
		head:  head,
		level: 1,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

func (rl *RankList) randomLevel() int {
	level := 1
	for level < maxLevel && rl.rng.Float64() < levelProbability {
		level++
	}
	return level
}

// Insert adds or updates an entry by key. Higher scores rank first;
// ties break by key ascending.
func (rl *RankList) Insert(key string, score float64) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.removeLocked(key)
	rl.insertLocked(key, score)
}

func (rl *RankList) insertLocked(key string, score float64) {
	update := make([]*rankNode, maxLevel)
	rank := make([]int, maxLevel)

	x := rl.head
	for i := int(atomic.LoadInt32(&rl.level)) - 1; i >= 0; i-- {
		if i == int(rl.level)-1 {
			rank[i] = 0
		} else {
			rank[i] = rank[i+1]
		}

		for x.next[i] != nil && (x.next[i].entry.Score > score ||
			(x.next[i].entry.Score == score && x.next[i].entry.Key < key)) {
			rank[i] += x.span[i]
			x = x.next[i]
		}
		update[i] = x
	}

	if x.next[0] != nil && x.next[0].entry.Key == key {
		rl.removeNode(x.next[0], update)
		rl.insertLocked(key, score)
		return
	}

	newLevel := rl.randomLevel()
	currentLevel := int(rl.level)

	if newLevel > currentLevel {
		for i := currentLevel; i < newLevel; i++ {
			rank[i] = 0
			update[i] = rl.head
			update[i].span[i] = int(rl.length)
		}
		atomic.StoreInt32(&rl.level, int32(newLevel))
	}

	node := &rankNode{
		entry: RankEntry{Key: key, Score: score},
		next:  make([]*rankNode, newLevel),
		span:  make([]int, newLevel),
	}

	for i := 0; i < newLevel; i++ {
		node.next[i] = update[i].next[i]
		update[i].next[i] = node

		node.span[i] = update[i].span[i] - (rank[0] - rank[i])
		update[i].span[i] = (rank[0] - rank[i]) + 1
	}

	for i := newLevel; i < int(rl.level); i++ {
		update[i].span[i]++
	}

	atomic.AddInt32(&rl.length, 1)
}

// Remove deletes the entry with the given key. Reports whether it was present.
func (rl *RankList) Remove(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.removeLocked(key)
}

// removeLocked finds key on the bottom level, then descends by the
// entry's (score, key) position to collect the nodes to unlink.
func (rl *RankList) removeLocked(key string) bool {
	target := rl.findLocked(key)
	if target == nil {
		return false
	}

	update := make([]*rankNode, maxLevel)
	x := rl.head
	for i := int(rl.level) - 1; i >= 0; i-- {
		for x.next[i] != nil && ranksBefore(x.next[i].entry, target.entry) {
			x = x.next[i]
		}
		update[i] = x
	}

	rl.removeNode(target, update)
	return true
}

// findLocked returns the node holding key, or nil if it is absent.
func (rl *RankList) findLocked(key string) *rankNode {
	for n := rl.head.next[0]; n != nil; n = n.next[0] {
		if n.entry.Key == key {
			return n
		}
	}
	return nil
}

// ranksBefore reports whether a sorts ahead of b: higher score first,
// ties by key ascending.
func ranksBefore(a, b RankEntry) bool {
	return a.Score > b.Score || (a.Score == b.Score && a.Key < b.Key)
}

func (rl *RankList) removeNode(node *rankNode, update []*rankNode) {
	for i := 0; i < int(rl.level); i++ {
		if update[i].next[i] == node {
			update[i].span[i] += node.span[i] - 1
			update[i].next[i] = node.next[i]
		} else {
			update[i].span[i]--
		}
	}

	for rl.level > 1 && rl.head.next[rl.level-1] == nil {
		atomic.AddInt32(&rl.level, -1)
	}

	atomic.AddInt32(&rl.length, -1)
}

// GetRank returns the 1-indexed rank of key (1 = highest score), or 0 if absent.
func (rl *RankList) GetRank(key string) int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	target := rl.findLocked(key)
	if target == nil {
		return 0
	}

	rank := 0
	x := rl.head

	for i := int(rl.level) - 1; i >= 0; i-- {
		for x.next[i] != nil && (x.next[i] == target || ranksBefore(x.next[i].entry, target.entry)) {
			rank += x.span[i]
			x = x.next[i]
			if x == target {
				return rank
			}
		}
	}
	return 0
}

// Ordered returns all entries in rank order, highest score first.
func (rl *RankList) Ordered() []RankEntry {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	result := make([]RankEntry, 0, rl.length)
	x := rl.head.next[0]
	for x != nil {
		result = append(result, x.entry)
		x = x.next[0]
	}
	return result
}

// Length returns the number of entries.
func (rl *RankList) Length() int {
	return int(atomic.LoadInt32(&rl.length))
}
