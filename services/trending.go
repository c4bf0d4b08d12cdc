package services

import (
	"sort"
	"time"
)

const (
	trendingWindow = 7 * 24 * time.Hour
	trendingLimit  = 10
)

// TrendingScore weighs upvotes double against comments and decays with
// age. The +1 keeps brand-new issues finite and means the score keeps
// falling even without new engagement.
func TrendingScore(upvotes, comments int64, hoursOld int64) float64 {
	return (2*float64(upvotes) + float64(comments)) / (float64(hoursOld) + 1)
}

// TrendingWindowStart returns the oldest created_at still eligible.
func TrendingWindowStart(now time.Time) time.Time {
	return now.Add(-trendingWindow)
}

type TrendingIssue struct {
	IssueRow
	HoursOld int64   `json:"hours_old"`
	Score    float64 `json:"-"`
}

// RankTrending scores rows from the last 7 days and returns the top 10 by
// descending score.
func RankTrending(rows []IssueRow, now time.Time) []TrendingIssue {
	out := make([]TrendingIssue, 0, len(rows))
	for _, row := range rows {
		hours := int64(now.Sub(row.CreatedAt).Hours())
		if hours < 0 {
			hours = 0
		}
		out = append(out, TrendingIssue{
			IssueRow: row,
			HoursOld: hours,
			Score:    TrendingScore(row.Upvotes, row.Comments, hours),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > trendingLimit {
		out = out[:trendingLimit]
	}
	return out
}
