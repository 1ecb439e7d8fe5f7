// Package ranking orders feed posts.
package ranking

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/emilythestrangee/eliza-news/backend/internal/models"
)

type Mode string

const (
	Hot Mode = "hot"
	New Mode = "new"
	Top Mode = "top"
)

// ParseMode maps a query value to a Mode. Anything unrecognised is Hot.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case New:
		return New
	case Top:
		return Top
	default:
		return Hot
	}
}

// HotScore is points divided by age in hours, with ages under one hour
// counted as one hour.
func HotScore(p models.Post, now time.Time) float64 {
	age := now.Sub(p.CreatedAt).Hours()
	return float64(p.Points) / math.Max(age, 1)
}

// Rank returns a sorted copy of posts. The sort is stable, so equal keys keep
// their input order; callers should not rely on that as a total order.
func Rank(posts []models.Post, mode Mode, now time.Time) []models.Post {
	out := make([]models.Post, len(posts))
	copy(out, posts)

	var less func(i, j int) bool
	switch mode {
	case New:
		less = func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) }
	case Top:
		less = func(i, j int) bool { return out[i].Points > out[j].Points }
	default:
		less = func(i, j int) bool { return HotScore(out[i], now) > HotScore(out[j], now) }
	}

	sort.SliceStable(out, less)
	return out
}
