package service

import (
	"fmt"
	"time"
)

// numberRetryBudget bounds how often a document number collision is retried
// before the operation fails with entity.ErrDuplicate.
const numberRetryBudget = 5

// documentNumber formats a human-readable document number: prefix, local
// date, then a 4-digit daily sequence, e.g. TRF-20260829-0007.
func documentNumber(prefix string, t time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, t.Format("20060102"), seq)
}

// localMidnight returns the start of t's day in its location.
func localMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
