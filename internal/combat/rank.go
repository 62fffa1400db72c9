package combat

import "battlecore/internal/combat/structures"

// RankSurvivors scores a Result's winning side by final HP, highest
// first, using the skip-list-backed RankList (adapted from the
// teacher's kill-count leaderboard into a post-combat survivor
// ranking). seed only affects internal skip-list balancing, never the
// resulting order.
func RankSurvivors(entries []SurvivorEntry, seed int64) []structures.RankEntry {
	rl := structures.NewRankList(seed)
	for _, e := range entries {
		rl.Insert(e.UnitID, float64(e.HP))
	}
	return rl.Ordered()
}

// RankByStars scores a set of rosters by aggregate star level, used to
// rank multiple simultaneous combats' winners against each other (for
// example, a tournament bracket feeding winners forward).
func RankByStars(rosterIDs []string, starTotals []int, seed int64) []structures.RankEntry {
	rl := structures.NewRankList(seed)
	for i, id := range rosterIDs {
		rl.Insert(id, float64(starTotals[i]))
	}
	return rl.Ordered()
}
