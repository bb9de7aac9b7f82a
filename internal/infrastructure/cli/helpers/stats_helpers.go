package helpers

import (
	"sort"

	"github.com/doeshing/aura-go/internal/domain"
)

// CategoryStatistic is one row of the history usage report.
type CategoryStatistic struct {
	Category string
	Count    int
	Share    float64
}

// CalculateCategoryShares sorts counts by frequency and attaches each
// category's share of the total as a percentage.
// If limit is 0 or negative, returns all categories
func CalculateCategoryShares(counts []domain.CategoryCount, limit int) ([]CategoryStatistic, int) {
	total := 0
	stats := make([]CategoryStatistic, 0, len(counts))
	for _, c := range counts {
		total += c.Count
		stats = append(stats, CategoryStatistic{Category: categoryLabel(c.Category), Count: c.Count})
	}
	for i := range stats {
		stats[i].Share = CalculatePercentage(stats[i].Count, total)
	}
	sortStatisticsByFrequency(stats)

	if shouldLimitResults(limit, len(stats)) {
		return stats[:limit], total
	}
	return stats, total
}

func categoryLabel(category string) string {
	if category == "" {
		return "unmatched"
	}
	return category
}

// sortStatisticsByFrequency sorts statistics by count (descending) then by name (ascending)
func sortStatisticsByFrequency(stats []CategoryStatistic) {
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count == stats[j].Count {
			return stats[i].Category < stats[j].Category
		}
		return stats[i].Count > stats[j].Count
	})
}

// shouldLimitResults checks if we should limit the results based on the limit and actual length
func shouldLimitResults(limit int, actualLength int) bool {
	return limit > 0 && actualLength > limit
}

// CalculatePercentage returns part as a percentage of total.
func CalculatePercentage(part int, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(part) / float64(total) * 100.0
}

// CalculateSuccessRate calculates the success rate of history entries as a percentage
func CalculateSuccessRate(entries []domain.HistoryEntry) float64 {
	successful := 0
	for _, e := range entries {
		if e.Status == domain.StatusSuccess {
			successful++
		}
	}
	return CalculatePercentage(successful, len(entries))
}
