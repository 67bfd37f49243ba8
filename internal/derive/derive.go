// Package derive holds the pure derivation engine: the due-date alert
// classifier and the statistics reducer. Nothing here touches storage or the
// network; the same inputs always produce the same output.
package derive

import (
	"math"
	"sort"

	"pm-dashboard-api/internal/models"
)

// Alert classifies how urgent an upcoming service date is.
type Alert string

const (
	AlertOverdue Alert = "overdue"
	AlertNear    Alert = "near"
	AlertNone    Alert = "none"
)

// NearWindowDays is the inclusive look-ahead window for a "near" alert.
const NearWindowDays = 15

// Classify maps a possibly-missing or malformed due date to an alert level.
// Both sides are truncated to local midnight, so a due date of today counts
// as near, not overdue. Bad input fails soft to AlertNone.
func Classify(due string, today models.Clock) Alert {
	target, ok := models.ParseDate(due)
	if !ok {
		return AlertNone
	}
	now := models.Truncate(today())
	diffDays := int(math.Round(target.Sub(now).Hours() / 24))
	switch {
	case diffDays < 0:
		return AlertOverdue
	case diffDays <= NearWindowDays:
		return AlertNear
	default:
		return AlertNone
	}
}

// DeptCount is one department histogram bucket.
type DeptCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TrendPoint is one daily-trend bucket. Label carries the display-formatted
// date for chart axes; Date keeps the raw grouped value.
type TrendPoint struct {
	Date  string `json:"date"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Stats is the aggregate view over one category-filtered record set. It is
// recomputed on demand and never persisted.
type Stats struct {
	Total          int          `json:"total"`
	CompletionRate int          `json:"completionRate"`
	OverdueCount   int          `json:"overdueCount"`
	NearDueCount   int          `json:"nearDueCount"`
	BrokenCount    int          `json:"brokenCount"`
	DeptStats      []DeptCount  `json:"deptStats"`
	DailyTrend     []TrendPoint `json:"dailyTrend"`
}

// Compute reduces an ordered, already category-filtered record slice to its
// aggregate statistics. Ties in both sorts keep first-seen input order.
func Compute(records []models.PMRecord, catalog *models.Catalog, today models.Clock) Stats {
	stats := Stats{
		DeptStats:  []DeptCount{},
		DailyTrend: []TrendPoint{},
	}

	completed := 0
	deptIndex := map[string]int{}
	trendIndex := map[string]int{}

	for i := range records {
		rec := &records[i]
		stats.Total++
		if rec.Status == models.StatusCompleted {
			completed++
		}

		// Missing departments are excluded from grouping, not bucketed
		// as "unknown".
		if rec.Department != "" {
			if idx, ok := deptIndex[rec.Department]; ok {
				stats.DeptStats[idx].Count++
			} else {
				deptIndex[rec.Department] = len(stats.DeptStats)
				stats.DeptStats = append(stats.DeptStats, DeptCount{Name: rec.Department, Count: 1})
			}
		}

		if rec.Date != "" {
			if idx, ok := trendIndex[rec.Date]; ok {
				stats.DailyTrend[idx].Count++
			} else {
				trendIndex[rec.Date] = len(stats.DailyTrend)
				stats.DailyTrend = append(stats.DailyTrend, TrendPoint{
					Date:  rec.Date,
					Label: models.FormatDisplay(rec.Date),
					Count: 1,
				})
			}
		}

		switch Classify(rec.NextPMDate, today) {
		case AlertOverdue:
			stats.OverdueCount++
		case AlertNear:
			stats.NearDueCount++
		}

		if catalog.IsBroken(rec.DeviceStatus) {
			stats.BrokenCount++
		}
	}

	if stats.Total > 0 {
		stats.CompletionRate = int(math.Round(float64(completed) / float64(stats.Total) * 100))
	}

	sort.SliceStable(stats.DeptStats, func(i, j int) bool {
		return stats.DeptStats[i].Count > stats.DeptStats[j].Count
	})

	// Chronological, not lexical on the display label: unparseable raw
	// values sort after real dates, by raw value among themselves.
	sort.SliceStable(stats.DailyTrend, func(i, j int) bool {
		ti, iok := models.ParseDate(stats.DailyTrend[i].Date)
		tj, jok := models.ParseDate(stats.DailyTrend[j].Date)
		switch {
		case iok && jok:
			return ti.Before(tj)
		case iok:
			return true
		case jok:
			return false
		default:
			return stats.DailyTrend[i].Date < stats.DailyTrend[j].Date
		}
	})

	return stats
}

// FilterByDevice returns the records of one category, preserving order.
// Zero-id records are skipped the way the dashboard skips null rows.
func FilterByDevice(records []models.PMRecord, device string) []models.PMRecord {
	out := make([]models.PMRecord, 0, len(records))
	for _, rec := range records {
		if rec.ID == "" {
			continue
		}
		if device == "" || rec.Device == device {
			out = append(out, rec)
		}
	}
	return out
}
