package eventmodels

import (
	"sort"
	"time"
)

type ExpirationDate string

func NewExpirationDate(t time.Time) ExpirationDate {
	return ExpirationDate(t.Format("2006-01-02"))
}

// TermPoint is the mean near-the-money implied volatility of one expiration.
type TermPoint struct {
	Expiration time.Time
	DTE        int
	IV         float64
	Count      int
}

type TermStructure map[ExpirationDate]TermPoint

// Sorted returns the points ordered by days to expiration.
func (ts TermStructure) Sorted() []TermPoint {
	points := make([]TermPoint, 0, len(ts))
	for _, p := range ts {
		points = append(points, p)
	}

	sort.Slice(points, func(i, j int) bool {
		if points[i].DTE == points[j].DTE {
			return points[i].Expiration.Before(points[j].Expiration)
		}

		return points[i].DTE < points[j].DTE
	})

	return points
}
