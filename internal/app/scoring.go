package app

import (
	"math"
	"sort"

	"archetype-bot/internal/domain"
)

// topCategories is how many leading categories the final report keeps.
const topCategories = 4

// Finalize converts accumulated category scores into the ranked top-4 report.
// Percentages are shares of the selected entries' score sum, so they total
// roughly 100 regardless of absolute strength. Ties break by category name
// ascending, which keeps the ranking deterministic across runs.
func Finalize(scores map[string]int) []domain.ReportEntry {
	entries := make([]domain.ReportEntry, 0, len(scores))
	for category, score := range scores {
		entries = append(entries, domain.ReportEntry{Category: category, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Category < entries[j].Category
	})

	if len(entries) > topCategories {
		entries = entries[:topCategories]
	}

	topSum := 0
	for _, e := range entries {
		topSum += e.Score
	}
	if topSum == 0 {
		topSum = 1
	}
	for i := range entries {
		entries[i].Percentage = int(math.Round(100 * float64(entries[i].Score) / float64(topSum)))
	}
	return entries
}
